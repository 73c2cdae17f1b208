package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/aiseeq/paramprune/pkg/core"
)

const outputLineWidth = 60

// Stats contains analysis statistics
type Stats struct {
	PackagesAnalyzed int     `json:"packages_analyzed"`
	PackagesSkipped  int     `json:"packages_skipped"`
	FilesAnalyzed    int     `json:"files_analyzed"`
	RulesRun         int     `json:"rules_run"`
	FixesAvailable   int     `json:"fixes_available"`
	Duration         float64 `json:"duration_seconds"`
}

// Writer renders the result of a run
type Writer interface {
	Write(violations core.ViolationList, stats Stats) error
}

// ConsoleOutput writes violations to console with colors
type ConsoleOutput struct {
	writer  io.Writer
	root    string
	verbose bool
}

// NewConsoleOutput creates a new console output
func NewConsoleOutput() *ConsoleOutput {
	return &ConsoleOutput{
		writer: os.Stdout,
	}
}

// WithWriter sets a custom writer
func (c *ConsoleOutput) WithWriter(w io.Writer) *ConsoleOutput {
	c.writer = w
	return c
}

// WithRoot makes file names relative to root
func (c *ConsoleOutput) WithRoot(root string) *ConsoleOutput {
	c.root = root
	return c
}

// WithVerbose also prints the edit of every fix
func (c *ConsoleOutput) WithVerbose(v bool) *ConsoleOutput {
	c.verbose = v
	return c
}

// WithNoColor disables colors
func (c *ConsoleOutput) WithNoColor(v bool) *ConsoleOutput {
	if v {
		color.NoColor = true
	}
	return c
}

// Write outputs violations to console
func (c *ConsoleOutput) Write(violations core.ViolationList, stats Stats) error {
	if len(violations) == 0 {
		c.printSuccess(stats)
		return nil
	}

	c.printHeader(stats)
	c.printViolations(violations)
	c.printSummary(violations, stats)

	return nil
}

func (c *ConsoleOutput) printHeader(stats Stats) {
	fmt.Fprintln(c.writer)
	fmt.Fprintln(c.writer, "PARAMPRUNE RESULTS")
	fmt.Fprintln(c.writer, strings.Repeat("=", outputLineWidth))
	fmt.Fprintf(c.writer, "Packages analyzed: %d\n", stats.PackagesAnalyzed)
	if stats.PackagesSkipped > 0 {
		fmt.Fprintf(c.writer, "Packages skipped: %d\n", stats.PackagesSkipped)
	}
	fmt.Fprintln(c.writer)
}

func (c *ConsoleOutput) printSuccess(stats Stats) {
	green := color.New(color.FgGreen, color.Bold)

	fmt.Fprintln(c.writer)
	green.Fprintln(c.writer, "No unused parameters found!")
	fmt.Fprintf(c.writer, "Packages analyzed: %d\n", stats.PackagesAnalyzed)
	fmt.Fprintln(c.writer)
}

func (c *ConsoleOutput) printViolations(violations core.ViolationList) {
	byFile := make(map[string]core.ViolationList)
	for _, v := range violations {
		byFile[v.File] = append(byFile[v.File], v)
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	cyan := color.New(color.FgCyan, color.Bold)
	for _, file := range files {
		cyan.Fprintf(c.writer, "%s\n", byFile[file][0].RelativeFile(c.root))

		// Keep reporting order within a file: the warning first, then its fixes
		for _, v := range byFile[file].Sorted() {
			c.printViolation(v)
		}

		fmt.Fprintln(c.writer)
	}
}

func severityColor(s core.Severity) *color.Color {
	switch s {
	case core.SeverityError:
		return color.New(color.FgRed, color.Bold)
	case core.SeverityWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgBlue)
	}
}

func (c *ConsoleOutput) printViolation(v *core.Violation) {
	gray := color.New(color.FgHiBlack)

	if v.Column > 0 {
		gray.Fprintf(c.writer, "  %d:%d: ", v.Line, v.Column)
	} else {
		gray.Fprintf(c.writer, "  %d: ", v.Line)
	}
	severityColor(v.Severity).Fprintf(c.writer, "[%s] ", v.Severity.Label())
	fmt.Fprintf(c.writer, "%s ", v.Message)
	gray.Fprintf(c.writer, "(%s)\n", v.Rule)

	if v.Code != "" {
		gray.Fprintf(c.writer, "     > %s\n", strings.TrimSpace(v.Code))
	}

	if v.Fix != nil {
		green := color.New(color.FgGreen)
		green.Fprintf(c.writer, "     Fix: %s\n", v.Fix.Message)
		if c.verbose {
			for _, e := range v.Fix.Edits {
				gray.Fprintf(c.writer, "       delete bytes %d-%d\n", e.Start, e.End)
			}
		}
	}
}

func (c *ConsoleOutput) printSummary(violations core.ViolationList, stats Stats) {
	counts := violations.CountBySeverity()

	fmt.Fprintln(c.writer, strings.Repeat("-", outputLineWidth))
	fmt.Fprintf(c.writer, "SUMMARY: %d issues found\n", len(violations))

	for _, sev := range []core.Severity{core.SeverityError, core.SeverityWarning, core.SeverityInfo} {
		if count := counts[sev]; count > 0 {
			severityColor(sev).Fprintf(c.writer, "  %s: %d\n", sev.Label(), count)
		}
	}
	if stats.FixesAvailable > 0 {
		fmt.Fprintf(c.writer, "  Fixes available: %d (run 'paramprune fix')\n", stats.FixesAvailable)
	}

	fmt.Fprintln(c.writer)
}
