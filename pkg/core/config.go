package core

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileNames are the file names FindConfig looks for, in order
var ConfigFileNames = []string{".paramprune.yaml", "paramprune.yaml"}

// Config represents the paramprune configuration
type Config struct {
	Version    int                       `yaml:"version"`
	Settings   SettingsConfig            `yaml:"settings"`
	Categories map[string]CategoryConfig `yaml:"categories"`
}

// SettingsConfig contains global settings
type SettingsConfig struct {
	Exclude     []string `yaml:"exclude"`
	MinSeverity string   `yaml:"min_severity"`
	Output      string   `yaml:"output"`
	Tests       bool     `yaml:"tests"`                // Load test variants of packages
	BuildTags   []string `yaml:"build_tags,omitempty"` // Passed to the build system as -tags
	Workers     int      `yaml:"workers,omitempty"`    // 0 = GOMAXPROCS
}

// CategoryConfig contains category-specific settings
type CategoryConfig struct {
	Enabled          bool                  `yaml:"enabled"`
	SeverityOverride string                `yaml:"severity_override,omitempty"`
	Settings         map[string]any        `yaml:"settings,omitempty"` // Shared by all rules of the category
	Rules            map[string]RuleConfig `yaml:"rules,omitempty"`
}

// RuleConfig contains rule-specific settings
type RuleConfig struct {
	Enabled    *bool          `yaml:"enabled,omitempty"` // nil = enabled
	Severity   string         `yaml:"severity,omitempty"`
	Settings   map[string]any `yaml:"settings,omitempty"`
	Exceptions []Exception    `yaml:"exceptions,omitempty"`
}

// Exception defines when a rule should be skipped
type Exception struct {
	File     string `yaml:"file,omitempty"`     // Glob pattern
	Line     int    `yaml:"line,omitempty"`     // Only with File
	Function string `yaml:"function,omitempty"` // Function name
	Reason   string `yaml:"reason,omitempty"`
}

// Matches reports whether the exception covers the violation
func (e Exception) Matches(v *Violation) bool {
	if e.File == "" && e.Function == "" {
		return false
	}
	if e.File != "" {
		if !MatchGlob(e.File, filepath.ToSlash(v.File)) && !MatchGlob(e.File, filepath.Base(v.File)) {
			return false
		}
		if e.Line > 0 && e.Line != v.Line {
			return false
		}
	}
	if e.Function != "" && e.Function != v.Function {
		return false
	}
	return true
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Settings: SettingsConfig{
			Exclude: []string{
				"vendor/**",
				".git/**",
				"**/testdata/**",
			},
			MinSeverity: "info",
			Output:      "console",
		},
		Categories: map[string]CategoryConfig{
			"deadcode": {Enabled: true},
		},
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// FindConfig searches for .paramprune.yaml in the directory and its parents
func FindConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}
	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return "", nil
		}
		dir = parent
	}
}

// LoadConfigWithDefaults loads config and merges with defaults
func LoadConfigWithDefaults(projectRoot string) (*Config, error) {
	cfg := DefaultConfig()

	configPath, err := FindConfig(projectRoot)
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		projectCfg, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = MergeConfigs(cfg, projectCfg)
	}

	return cfg, nil
}

// MergeConfigs merges two configs, with override taking precedence
func MergeConfigs(base, override *Config) *Config {
	result := &Config{
		Version:    override.Version,
		Settings:   base.Settings,
		Categories: make(map[string]CategoryConfig),
	}
	if result.Version == 0 {
		result.Version = base.Version
	}

	if len(override.Settings.Exclude) > 0 {
		result.Settings.Exclude = override.Settings.Exclude
	}
	if override.Settings.MinSeverity != "" {
		result.Settings.MinSeverity = override.Settings.MinSeverity
	}
	if override.Settings.Output != "" {
		result.Settings.Output = override.Settings.Output
	}
	if override.Settings.Tests {
		result.Settings.Tests = true
	}
	if len(override.Settings.BuildTags) > 0 {
		result.Settings.BuildTags = override.Settings.BuildTags
	}
	if override.Settings.Workers > 0 {
		result.Settings.Workers = override.Settings.Workers
	}

	for name, cat := range base.Categories {
		result.Categories[name] = cat
	}

	for name, cat := range override.Categories {
		existing, ok := result.Categories[name]
		if !ok {
			result.Categories[name] = cat
			continue
		}
		existing.Enabled = cat.Enabled
		if cat.SeverityOverride != "" {
			existing.SeverityOverride = cat.SeverityOverride
		}
		if cat.Settings != nil {
			existing.Settings = cat.Settings
		}
		if cat.Rules != nil {
			rules := make(map[string]RuleConfig, len(existing.Rules)+len(cat.Rules))
			for ruleName, ruleCfg := range existing.Rules {
				rules[ruleName] = ruleCfg
			}
			for ruleName, ruleCfg := range cat.Rules {
				rules[ruleName] = ruleCfg
			}
			existing.Rules = rules
		}
		result.Categories[name] = existing
	}

	return result
}

// Validate checks the values that are not free-form
func (c *Config) Validate() error {
	if _, err := ParseSeverity(c.Settings.MinSeverity); err != nil {
		return fmt.Errorf("settings.min_severity: %w", err)
	}
	switch c.Settings.Output {
	case "", "console", "summary", "json":
	default:
		return fmt.Errorf("settings.output: unknown format %q", c.Settings.Output)
	}
	if c.Settings.Workers < 0 {
		return fmt.Errorf("settings.workers: must not be negative, got %d", c.Settings.Workers)
	}
	for _, pattern := range c.Settings.Exclude {
		if _, err := path.Match(strings.ReplaceAll(pattern, "**", "*"), ""); err != nil {
			return fmt.Errorf("settings.exclude: bad pattern %q: %w", pattern, err)
		}
	}
	for catName, cat := range c.Categories {
		if cat.SeverityOverride != "" {
			if _, err := ParseSeverity(cat.SeverityOverride); err != nil {
				return fmt.Errorf("categories.%s.severity_override: %w", catName, err)
			}
		}
		for ruleName, rule := range cat.Rules {
			if rule.Severity == "" {
				continue
			}
			if _, err := ParseSeverity(rule.Severity); err != nil {
				return fmt.Errorf("categories.%s.rules.%s.severity: %w", catName, ruleName, err)
			}
		}
	}
	return nil
}

// IsCategoryEnabled checks if a category is enabled
func (c *Config) IsCategoryEnabled(name string) bool {
	if cat, ok := c.Categories[name]; ok {
		return cat.Enabled
	}
	return true // Enabled by default
}

// IsRuleEnabled checks if a specific rule is enabled
func (c *Config) IsRuleEnabled(category, rule string) bool {
	if !c.IsCategoryEnabled(category) {
		return false
	}
	ruleCfg, ok := c.ruleConfig(category, rule)
	if !ok || ruleCfg.Enabled == nil {
		return true
	}
	return *ruleCfg.Enabled
}

// RuleSettings returns the free-form settings of a rule
func (c *Config) RuleSettings(category, rule string) map[string]any {
	ruleCfg, _ := c.ruleConfig(category, rule)
	return ruleCfg.Settings
}

// RuleSeverity returns the configured severity for a rule. The rule level
// wins over the category override; fallback is returned when neither is set
// or the value does not parse.
func (c *Config) RuleSeverity(category, rule string, fallback Severity) Severity {
	if ruleCfg, ok := c.ruleConfig(category, rule); ok && ruleCfg.Severity != "" {
		if sev, err := ParseSeverity(ruleCfg.Severity); err == nil {
			return sev
		}
	}
	if cat, ok := c.Categories[category]; ok && cat.SeverityOverride != "" {
		if sev, err := ParseSeverity(cat.SeverityOverride); err == nil {
			return sev
		}
	}
	return fallback
}

// GetRuleExceptions returns exceptions for a specific rule
func (c *Config) GetRuleExceptions(category, rule string) []Exception {
	ruleCfg, _ := c.ruleConfig(category, rule)
	return ruleCfg.Exceptions
}

// IsExcepted reports whether a rule exception covers the violation
func (c *Config) IsExcepted(v *Violation) bool {
	for _, e := range c.GetRuleExceptions(v.Category, v.Rule) {
		if e.Matches(v) {
			return true
		}
	}
	return false
}

func (c *Config) ruleConfig(category, rule string) (RuleConfig, bool) {
	cat, ok := c.Categories[category]
	if !ok || cat.Rules == nil {
		return RuleConfig{}, false
	}
	ruleCfg, ok := cat.Rules[rule]
	return ruleCfg, ok
}

// GetMinSeverity returns the minimum severity level
func (c *Config) GetMinSeverity() Severity {
	sev, err := ParseSeverity(c.Settings.MinSeverity)
	if err != nil {
		return SeverityInfo
	}
	return sev
}

// ShouldExclude checks if a slash-separated path relative to the project
// root matches one of the exclude patterns
func (c *Config) ShouldExclude(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range c.Settings.Exclude {
		if MatchGlob(pattern, relPath) {
			return true
		}
		// Also try matching against the base name
		if !strings.Contains(pattern, "/") && MatchGlob(pattern, path.Base(relPath)) {
			return true
		}
	}
	return false
}

// MatchGlob matches a slash-separated name against a path.Match pattern in
// which a "**" segment matches any number of directories. A trailing "/**"
// also matches the directory itself.
func MatchGlob(pattern, name string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pattern, name []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(name); i++ {
				if matchSegments(rest, name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		ok, err := path.Match(pattern[0], name[0])
		if err != nil || !ok {
			return false
		}
		pattern, name = pattern[1:], name[1:]
	}
	return len(name) == 0
}
