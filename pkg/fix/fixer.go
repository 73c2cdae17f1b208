package fix

import (
	"fmt"
	"go/format"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/aiseeq/paramprune/pkg/core"
)

// FixResult represents the result of applying fixes to one file
type FixResult struct {
	File         string
	FixesApplied int
	FixesSkipped int // Overlapping fixes left for a later run
	Fixes        []*core.Fix
	Content      []byte // New file content, also filled in dry-run mode
	Error        error
}

// FilePlan is the merged set of edits for one file
type FilePlan struct {
	File  string
	Fixes []*core.Fix
	Edits []core.Edit
	Error error // Set when the edits conflict
}

// Engine applies fixes to files
type Engine struct {
	dryRun  bool
	verbose bool
	logger  *zap.Logger
}

// NewEngine creates a new fix engine
func NewEngine(dryRun, verbose bool) *Engine {
	return &Engine{
		dryRun:  dryRun,
		verbose: verbose,
		logger:  zap.NewNop(),
	}
}

// WithLogger sets the logger
func (e *Engine) WithLogger(logger *zap.Logger) *Engine {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// CheckGitStatus checks for uncommitted changes
func (e *Engine) CheckGitStatus(projectRoot string) (bool, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = projectRoot
	output, err := cmd.Output()
	if err != nil {
		// Not a git repo or git not available - skip check
		e.logger.Debug("git status unavailable", zap.Error(err))
		return false, nil
	}
	return len(strings.TrimSpace(string(output))) > 0, nil
}

// Collect returns the fixes attached to violations
func Collect(violations core.ViolationList) []*core.Fix {
	return violations.Fixes()
}

// Plan groups fixes per file and merges their edits. Plans are ordered by
// file name, fixes within a plan by position.
func (e *Engine) Plan(fixes []*core.Fix) []FilePlan {
	byFile := make(map[string][]*core.Fix)
	for _, f := range fixes {
		byFile[f.File] = append(byFile[f.File], f)
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	plans := make([]FilePlan, 0, len(files))
	for _, file := range files {
		fileFixes := sortFixes(byFile[file])
		plan := FilePlan{File: file, Fixes: fileFixes}
		var edits []core.Edit
		for _, f := range fileFixes {
			edits = append(edits, f.Edits...)
		}
		plan.Edits, plan.Error = MergeEdits(edits)
		plans = append(plans, plan)
	}
	return plans
}

func sortFixes(fixes []*core.Fix) []*core.Fix {
	sorted := make([]*core.Fix, len(fixes))
	copy(sorted, fixes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return firstOffset(sorted[i]) < firstOffset(sorted[j])
	})
	return sorted
}

func firstOffset(f *core.Fix) int {
	if len(f.Edits) == 0 {
		return -1
	}
	first := f.Edits[0].Start
	for _, e := range f.Edits[1:] {
		if e.Start < first {
			first = e.Start
		}
	}
	return first
}

// ApplyFixes applies fixes to files
func (e *Engine) ApplyFixes(fixes []*core.Fix) []FixResult {
	plans := e.Plan(fixes)
	results := make([]FixResult, 0, len(plans))
	for _, plan := range plans {
		results = append(results, e.applyToFile(plan))
	}
	return results
}

func (e *Engine) applyToFile(plan FilePlan) FixResult {
	result := FixResult{
		File:  plan.File,
		Fixes: plan.Fixes,
	}

	content, err := os.ReadFile(plan.File)
	if err != nil {
		result.Error = fmt.Errorf("read file: %w", err)
		return result
	}

	out, err := rewrite(content, plan.Edits, plan.Error)
	if err == nil {
		result.FixesApplied = len(plan.Fixes)
	} else {
		// The combined edits do not produce valid Go. Apply the fixes that
		// stand on their own; a rerun picks up the rest.
		e.logger.Debug("falling back to non-overlapping fixes",
			zap.String("file", plan.File), zap.Error(err))
		kept, skipped := nonOverlapping(plan.Fixes)
		var edits []core.Edit
		for _, f := range kept {
			edits = append(edits, f.Edits...)
		}
		merged, mergeErr := MergeEdits(edits)
		out, err = rewrite(content, merged, mergeErr)
		if err != nil {
			result.Error = fmt.Errorf("apply fixes: %w", err)
			return result
		}
		result.FixesApplied = len(kept)
		result.FixesSkipped = len(skipped)
	}
	result.Content = out

	if e.verbose {
		e.logger.Info("fixed file",
			zap.String("file", plan.File),
			zap.Int("applied", result.FixesApplied),
			zap.Int("skipped", result.FixesSkipped),
			zap.Bool("dry_run", e.dryRun))
	}

	if e.dryRun {
		return result
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(plan.File); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(plan.File, out, mode); err != nil {
		result.Error = fmt.Errorf("write file: %w", err)
		return result
	}

	return result
}

// rewrite applies merged edits and gofmt's the result
func rewrite(content []byte, edits []core.Edit, planErr error) ([]byte, error) {
	if planErr != nil {
		return nil, planErr
	}
	out, err := ApplyEdits(content, edits)
	if err != nil {
		return nil, err
	}
	formatted, err := format.Source(out)
	if err != nil {
		return nil, fmt.Errorf("result does not parse: %w", err)
	}
	return formatted, nil
}

// Preview formats fixes for display
func (e *Engine) Preview(fixes []*core.Fix) string {
	if len(fixes) == 0 {
		return "No fixes available.\n"
	}

	plans := e.Plan(fixes)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("PROPOSED FIXES (%d changes in %d files):\n\n", len(fixes), len(plans)))

	cwd, _ := os.Getwd()
	for _, plan := range plans {
		relPath := plan.File
		if cwd != "" {
			if rel, err := filepath.Rel(cwd, plan.File); err == nil && !strings.HasPrefix(rel, "..") {
				relPath = rel
			}
		}

		content, err := os.ReadFile(plan.File)
		if err != nil {
			sb.WriteString(fmt.Sprintf("  %s: %v\n\n", relPath, err))
			continue
		}

		for _, f := range plan.Fixes {
			before, after := previewLines(content, f)
			sb.WriteString(fmt.Sprintf("  %s:%d [%s]\n", relPath, f.Line, f.Message))
			sb.WriteString(fmt.Sprintf("    - %s\n", before))
			sb.WriteString(fmt.Sprintf("    + %s\n", after))
			sb.WriteString("\n")
		}
	}

	if e.dryRun {
		sb.WriteString("Run without --dry-run to apply changes.\n")
	}

	return sb.String()
}

// previewLines returns the lines touched by a fix before and after applying
// it on its own. Line breaks inside the span are shown as "⏎".
func previewLines(content []byte, f *core.Fix) (string, string) {
	if len(f.Edits) == 0 {
		return "", ""
	}
	start, end := f.Edits[0].Start, f.Edits[0].End
	for _, e := range f.Edits[1:] {
		if e.Start < start {
			start = e.Start
		}
		if e.End > end {
			end = e.End
		}
	}
	if start < 0 || end > len(content) || start > end {
		return "", ""
	}

	lineStart := strings.LastIndexByte(string(content[:start]), '\n') + 1
	lineEnd := len(content)
	if i := strings.IndexByte(string(content[end:]), '\n'); i >= 0 {
		lineEnd = end + i
	}

	before := string(content[lineStart:lineEnd])
	shifted := make([]core.Edit, 0, len(f.Edits))
	for _, e := range f.Edits {
		shifted = append(shifted, core.Edit{Start: e.Start - lineStart, End: e.End - lineStart, NewText: e.NewText})
	}
	merged, err := MergeEdits(shifted)
	if err != nil {
		return oneLine(before), ""
	}
	after, err := ApplyEdits([]byte(before), merged)
	if err != nil {
		return oneLine(before), ""
	}
	return oneLine(before), oneLine(string(after))
}

func oneLine(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\t", "    "), "\n", "⏎")
}
