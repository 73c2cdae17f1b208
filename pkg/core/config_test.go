package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "info", cfg.Settings.MinSeverity)
	assert.Equal(t, "console", cfg.Settings.Output)
	assert.Contains(t, cfg.Settings.Exclude, "vendor/**")
	assert.False(t, cfg.Settings.Tests)
	require.NoError(t, cfg.Validate())
}

func TestConfigGetMinSeverity(t *testing.T) {
	tests := []struct {
		input    string
		expected Severity
	}{
		{"info", SeverityInfo},
		{"warning", SeverityWarning},
		{"error", SeverityError},
		{"invalid", SeverityInfo}, // defaults to info on error
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Settings.MinSeverity = tt.input
			assert.Equal(t, tt.expected, cfg.GetMinSeverity())
		})
	}
}

func TestConfigIsRuleEnabled(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.IsRuleEnabled("deadcode", "unused-param"))
	assert.True(t, cfg.IsCategoryEnabled("unknown"))

	cat := cfg.Categories["deadcode"]
	cat.Rules = map[string]RuleConfig{
		"unused-param": {Enabled: boolPtr(false)},
		"other":        {Severity: "error"},
	}
	cfg.Categories["deadcode"] = cat
	assert.False(t, cfg.IsRuleEnabled("deadcode", "unused-param"))
	assert.True(t, cfg.IsRuleEnabled("deadcode", "other"))

	cat.Enabled = false
	cfg.Categories["deadcode"] = cat
	assert.False(t, cfg.IsRuleEnabled("deadcode", "other"))
}

func TestConfigRuleSeverity(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, SeverityWarning, cfg.RuleSeverity("deadcode", "unused-param", SeverityWarning))

	cat := cfg.Categories["deadcode"]
	cat.SeverityOverride = "info"
	cfg.Categories["deadcode"] = cat
	assert.Equal(t, SeverityInfo, cfg.RuleSeverity("deadcode", "unused-param", SeverityWarning))

	cat.Rules = map[string]RuleConfig{"unused-param": {Severity: "error"}}
	cfg.Categories["deadcode"] = cat
	assert.Equal(t, SeverityError, cfg.RuleSeverity("deadcode", "unused-param", SeverityWarning))
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"vendor/**", "vendor", true},
		{"vendor/**", "vendor/a/b.go", true},
		{"vendor/**", "pkg/vendor/a.go", false},
		{"**/testdata/**", "pkg/x/testdata/src/a.go", true},
		{"**/testdata/**", "testdata/a.go", true},
		{"**/*.pb.go", "api/v1/svc.pb.go", true},
		{"**/*.pb.go", "svc.pb.go", true},
		{"pkg/*.go", "pkg/a.go", true},
		{"pkg/*.go", "pkg/sub/a.go", false},
		{"[", "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchGlob(tt.pattern, tt.name))
		})
	}
}

func TestConfigShouldExclude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.Exclude = []string{
		"vendor/**",
		"*_gen.go",
		"internal/legacy/*.go",
	}

	assert.True(t, cfg.ShouldExclude("vendor/pkg/a.go"))
	assert.True(t, cfg.ShouldExclude("pkg/enum_gen.go"))
	assert.True(t, cfg.ShouldExclude("internal/legacy/old.go"))
	assert.False(t, cfg.ShouldExclude("internal/legacy/sub/old.go"))
	assert.False(t, cfg.ShouldExclude("pkg/main.go"))
}

func TestExceptionMatches(t *testing.T) {
	v := NewViolation("unused-param", "deadcode", "/repo/pkg/legacy/api.go", 12, SeverityWarning, "msg").
		WithFunction("Handle")

	tests := []struct {
		name string
		exc  Exception
		want bool
	}{
		{"empty", Exception{}, false},
		{"base name", Exception{File: "api.go"}, true},
		{"glob", Exception{File: "**/legacy/*.go"}, true},
		{"line match", Exception{File: "api.go", Line: 12}, true},
		{"line mismatch", Exception{File: "api.go", Line: 13}, false},
		{"function", Exception{Function: "Handle"}, true},
		{"function mismatch", Exception{Function: "Other"}, false},
		{"file and function", Exception{File: "api.go", Function: "Other"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.exc.Matches(v))
		})
	}
}

func TestConfigIsExcepted(t *testing.T) {
	cfg := DefaultConfig()
	cat := cfg.Categories["deadcode"]
	cat.Rules = map[string]RuleConfig{
		"unused-param": {Exceptions: []Exception{{Function: "ServeHTTP", Reason: "interface"}}},
	}
	cfg.Categories["deadcode"] = cat

	hit := NewViolation("unused-param", "deadcode", "a.go", 1, SeverityWarning, "m").WithFunction("ServeHTTP")
	miss := NewViolation("unused-param", "deadcode", "a.go", 1, SeverityWarning, "m").WithFunction("Run")
	assert.True(t, cfg.IsExcepted(hit))
	assert.False(t, cfg.IsExcepted(miss))
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".paramprune.yaml")

	configContent := `version: 1
settings:
  min_severity: warning
  output: json
  tests: true
  build_tags: [integration]
  workers: 2
  exclude:
    - "gen/**"
categories:
  deadcode:
    enabled: true
    rules:
      unused-param:
        severity: error
        settings:
          skip_exported: true
        exceptions:
          - function: ServeHTTP
            reason: satisfies http.Handler
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "warning", cfg.Settings.MinSeverity)
	assert.Equal(t, "json", cfg.Settings.Output)
	assert.True(t, cfg.Settings.Tests)
	assert.Equal(t, []string{"integration"}, cfg.Settings.BuildTags)
	assert.Equal(t, 2, cfg.Settings.Workers)
	assert.Equal(t, true, cfg.RuleSettings("deadcode", "unused-param")["skip_exported"])
	assert.True(t, cfg.IsRuleEnabled("deadcode", "unused-param"))
	assert.Len(t, cfg.GetRuleExceptions("deadcode", "unused-param"), 1)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".paramprune.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("settings: [unterminated"), 0644))

	_, err := LoadConfig(configPath)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad severity", func(c *Config) { c.Settings.MinSeverity = "loud" }, "min_severity"},
		{"bad output", func(c *Config) { c.Settings.Output = "xml" }, "output"},
		{"negative workers", func(c *Config) { c.Settings.Workers = -1 }, "workers"},
		{"bad pattern", func(c *Config) { c.Settings.Exclude = []string{"["} }, "exclude"},
		{"bad rule severity", func(c *Config) {
			c.Categories["deadcode"] = CategoryConfig{Enabled: true, Rules: map[string]RuleConfig{
				"unused-param": {Severity: "fatal"},
			}}
		}, "unused-param.severity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestFindConfig(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "sub", "dir")
	err := os.MkdirAll(subDir, 0755)
	require.NoError(t, err)

	configPath := filepath.Join(tmpDir, "paramprune.yaml")
	err = os.WriteFile(configPath, []byte("version: 1"), 0644)
	require.NoError(t, err)

	// Find from subdir should find parent config
	found, err := FindConfig(subDir)
	require.NoError(t, err)
	assert.Equal(t, configPath, found)

	// The dotted name wins in the same directory
	dotted := filepath.Join(tmpDir, ".paramprune.yaml")
	require.NoError(t, os.WriteFile(dotted, []byte("version: 1"), 0644))
	found, err = FindConfig(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, dotted, found)
}

func TestMergeConfigs(t *testing.T) {
	base := DefaultConfig()
	base.Categories["deadcode"] = CategoryConfig{Enabled: true, Rules: map[string]RuleConfig{
		"unused-param": {Severity: "info"},
	}}

	override := &Config{
		Settings: SettingsConfig{
			MinSeverity: "warning",
			Exclude:     []string{"custom/**"},
			Tests:       true,
			Workers:     3,
		},
		Categories: map[string]CategoryConfig{
			"deadcode": {Enabled: true, Rules: map[string]RuleConfig{
				"other": {Enabled: boolPtr(false)},
			}},
			"custom": {Enabled: false},
		},
	}

	result := MergeConfigs(base, override)

	assert.Equal(t, 1, result.Version)
	assert.Equal(t, "warning", result.Settings.MinSeverity)
	assert.Equal(t, "console", result.Settings.Output)
	assert.Equal(t, []string{"custom/**"}, result.Settings.Exclude)
	assert.True(t, result.Settings.Tests)
	assert.Equal(t, 3, result.Settings.Workers)
	assert.False(t, result.IsCategoryEnabled("custom"))
	assert.Equal(t, SeverityInfo, result.RuleSeverity("deadcode", "unused-param", SeverityWarning))
	assert.False(t, result.IsRuleEnabled("deadcode", "other"))
	// base is left untouched
	assert.NotContains(t, base.Categories["deadcode"].Rules, "other")
}

func TestLoadConfigWithDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadConfigWithDefaults(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Settings.MinSeverity)
	assert.True(t, cfg.IsRuleEnabled("deadcode", "unused-param"))
}
