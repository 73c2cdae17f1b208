package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiseeq/paramprune/pkg/testutil"
)

const cliSource = `package a

func foo(x int, y string) string { return y }

func Use() string {
	return foo(1, "s") + foo(2, "t")
}
`

const cliModule = `
-- go.mod --
module example.com/m

go 1.22
-- a/a.go --
` + cliSource

const cliFixed = `package a

func foo(y string) string { return y }

func Use() string {
	return foo("s") + foo("t")
}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheck(t *testing.T) {
	dir := testutil.WriteArchive(t, cliModule)

	out, err := execute(t, "check", "-C", dir, "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, filepath.Join("a", "a.go"))
	assert.Contains(t, out, "3:6: [WARNING] Parameter 'x' is unused! (unused-param)")
	assert.Contains(t, out, "Fix: Remove unused parameter 'x'")
	assert.Contains(t, out, "SUMMARY: 4 issues found")
	assert.Contains(t, out, "Fixes available: 3")
}

func TestCheckJSON(t *testing.T) {
	dir := testutil.WriteArchive(t, cliModule)

	out, err := execute(t, "check", "-C", dir, "-o", "json", "./a")
	require.NoError(t, err)

	var report struct {
		Violations []struct {
			Message string `json:"message"`
		} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Violations, 4)
}

func TestCheckFailsOnErrors(t *testing.T) {
	dir := testutil.WriteArchive(t, cliModule+`-- .paramprune.yaml --
version: 1
categories:
  deadcode:
    enabled: true
    rules:
      unused-param:
        severity: error
`)

	_, err := execute(t, "check", "-C", dir, "-o", "summary")
	assert.ErrorIs(t, err, errIssuesFound)
}

func TestCheckInvalidFlags(t *testing.T) {
	dir := testutil.WriteArchive(t, cliModule)

	_, err := execute(t, "check", "-C", dir, "-o", "xml")
	assert.ErrorContains(t, err, "settings.output")
}

func TestFixDryRun(t *testing.T) {
	dir := testutil.WriteArchive(t, cliModule)

	out, err := execute(t, "fix", "-C", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "PROPOSED FIXES (3 changes in 1 files)")
	assert.Contains(t, out, "Run without --dry-run to apply changes.")
	assert.Equal(t, cliSource, testutil.ReadFile(t, dir, "a/a.go"))
}

func TestFixApply(t *testing.T) {
	dir := testutil.WriteArchive(t, cliModule)

	out, err := execute(t, "fix", "-C", dir, "--dry-run=false", "--force")
	require.NoError(t, err)

	assert.Contains(t, out, "Applied 3 fixes in 1 files.")
	assert.Equal(t, cliFixed, testutil.ReadFile(t, dir, "a/a.go"))

	// Nothing left to do on a second run
	out, err = execute(t, "fix", "-C", dir, "--dry-run=false", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "No issues found that can be fixed.")
}

func TestRulesAndExplain(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "[deadcode]")
	assert.Contains(t, out, "unused-param")
	assert.Contains(t, out, "(auto-fix)")

	out, err = execute(t, "explain", "unused-param")
	require.NoError(t, err)
	assert.Contains(t, out, "RULE: unused-param")
	assert.Contains(t, out, "AUTO-FIX: Available")
	assert.Contains(t, out, "SETTINGS:")
	assert.Contains(t, out, "skip_interface_methods")
	assert.Contains(t, out, "do not report functions used as values")

	_, err = execute(t, "explain", "no-such-rule")
	assert.ErrorContains(t, err, "unknown rule")
}

func TestInitAndConfig(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "config", "validate", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No configuration file found")

	out, err = execute(t, "init", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Created")
	_, err = os.Stat(filepath.Join(dir, ".paramprune.yaml"))
	require.NoError(t, err)

	_, err = execute(t, "init", "-C", dir)
	assert.ErrorContains(t, err, "already exists")

	out, err = execute(t, "config", "validate", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")

	out, err = execute(t, "config", "show", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "# deadcode: enabled")
	assert.Contains(t, out, "unused-param:")
	assert.Contains(t, out, "skip_generated: true")
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("settings:\n  min_severity: loud\n"), 0644))

	_, err := execute(t, "config", "validate", "--config", path)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestConfigValidateRejectsUnknownRuleSetting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "typo.yaml")
	cfg := `categories:
  deadcode:
    enabled: true
    rules:
      unused-param:
        settings:
          skip_exportd: true
`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))

	_, err := execute(t, "config", "validate", "--config", path)
	assert.ErrorContains(t, err, "categories.deadcode.rules.unused-param.settings")
	assert.ErrorContains(t, err, "skip_exportd")
}

func TestFixApplyNeighbouringAndVariadic(t *testing.T) {
	dir := testutil.WriteArchive(t, `
-- go.mod --
module example.com/m

go 1.22
-- a/a.go --
package a

func g(x, y, z int) int { return x }

func w(a int, rest ...string) int { return a }

func two() (int, int) { return 1, 2 }

func pair(x, y int) int { return x }

func Use(xs []string) int {
	return g(4, 5, 6) + w(1, "x", "y") + w(2, xs...) + pair(two())
}
`)

	_, err := execute(t, "fix", "-C", dir, "--dry-run=false", "--force")
	require.NoError(t, err)

	assert.Equal(t, `package a

func g(x int) int { return x }

func w(a int) int { return a }

func two() (int, int) { return 1, 2 }

func pair(x, y int) int { return x }

func Use(xs []string) int {
	return g(4) + w(1) + w(2) + pair(two())
}
`, testutil.ReadFile(t, dir, "a/a.go"))
}
