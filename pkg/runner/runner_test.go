package runner

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiseeq/paramprune/pkg/core"
	"github.com/aiseeq/paramprune/pkg/rules"
	"github.com/aiseeq/paramprune/pkg/rules/unusedparam"
	"github.com/aiseeq/paramprune/pkg/testutil"
)

const runnerModule = `
-- go.mod --
module example.com/m

go 1.22
-- a/a.go --
package a

func foo(x int, y string) string { return y }

func Use() string { return foo(1, "s") }
-- b/b.go --
package b

func skipMe(z int) {}

func keep(w int) {}
-- c/c.go --
package c

func Clean(v int) int { return v }
`

func newRunner(t *testing.T, cfg *core.Config) (*Runner, string) {
	t.Helper()
	dir := testutil.WriteArchive(t, runnerModule)

	registry := rules.NewRegistry()
	require.NoError(t, registry.Register(unusedparam.NewRule()))

	r := New(dir, cfg)
	r.Registry = registry
	return r, dir
}

func locations(t *testing.T, dir string, vs core.ViolationList) []string {
	t.Helper()
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		rel, err := filepath.Rel(dir, v.File)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel)+" "+v.Message)
	}
	return out
}

func TestRunnerRun(t *testing.T) {
	r, dir := newRunner(t, nil)
	r.Workers = 2

	violations, stats, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a/a.go Parameter 'x' is unused!",
		"a/a.go Fixing parameter 'x' in foo",
		"a/a.go Fixing argument index 0 at call site foo",
		"b/b.go Parameter 'z' is unused!",
		"b/b.go Fixing parameter 'z' in skipMe",
		"b/b.go Parameter 'w' is unused!",
		"b/b.go Fixing parameter 'w' in keep",
	}, locations(t, dir, violations))

	assert.Equal(t, 3, stats.PackagesAnalyzed)
	assert.Equal(t, 3, stats.FilesAnalyzed)
	assert.Equal(t, 1, stats.RulesRun)
	assert.Equal(t, 4, stats.FixesAvailable)
	for _, v := range violations {
		assert.Equal(t, core.SeverityWarning, v.Severity)
	}
}

func TestRunnerPatterns(t *testing.T) {
	r, dir := newRunner(t, nil)

	violations, stats, err := r.Run(context.Background(), []string{"./a"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PackagesAnalyzed)
	assert.Len(t, locations(t, dir, violations), 3)
}

func TestRunnerExceptionsAndSeverity(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Categories["deadcode"] = core.CategoryConfig{
		Enabled: true,
		Rules: map[string]core.RuleConfig{
			unusedparam.RuleName: {
				Severity: "error",
				Exceptions: []core.Exception{
					{File: "b/*.go", Function: "skipMe", Reason: "kept for API symmetry"},
				},
			},
		},
	}
	r, dir := newRunner(t, cfg)

	violations, _, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	got := locations(t, dir, violations)
	assert.Len(t, got, 5)
	assert.NotContains(t, got, "b/b.go Parameter 'z' is unused!")
	for _, v := range violations {
		assert.Equal(t, core.SeverityError, v.Severity)
	}
}

func TestRunnerMinSeverity(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Settings.MinSeverity = "error"
	r, _ := newRunner(t, cfg)

	violations, stats, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, violations)
	assert.Zero(t, stats.FixesAvailable)
}

func TestRunnerRuleSettings(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Categories["deadcode"] = core.CategoryConfig{
		Enabled:  true,
		Settings: map[string]any{"skip_exported": true},
	}
	r, dir := newRunner(t, cfg)

	violations, _, err := r.Run(context.Background(), []string{"./b"})
	require.NoError(t, err)
	assert.Len(t, locations(t, dir, violations), 4, "unexported functions are still reported")
}

func TestRunnerDisabledCategory(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Categories["deadcode"] = core.CategoryConfig{Enabled: false}
	r, _ := newRunner(t, cfg)

	violations, stats, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, violations)
	assert.Zero(t, stats.RulesRun)
}

func TestRunnerProgress(t *testing.T) {
	r, _ := newRunner(t, nil)
	var buf bytes.Buffer
	r.Progress = true
	r.ProgressWriter = &buf

	_, _, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestRunnerCanceled(t *testing.T) {
	r, _ := newRunner(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := r.Run(ctx, nil)
	assert.Error(t, err)
}

func TestRelPath(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, "a/b.go", relPath(root, filepath.Join(root, "a", "b.go")))
	assert.Equal(t, "/elsewhere/x.go", relPath(root, "/elsewhere/x.go"))
	assert.Equal(t, "x.go", relPath("", "x.go"))
}
