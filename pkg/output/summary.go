package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/aiseeq/paramprune/pkg/core"
)

const topFunctionsLimit = 5

// SummaryOutput writes a compact summary for AI agents
type SummaryOutput struct {
	writer io.Writer
}

// NewSummaryOutput creates a new summary output
func NewSummaryOutput() *SummaryOutput {
	return &SummaryOutput{
		writer: os.Stdout,
	}
}

// WithWriter sets a custom writer
func (s *SummaryOutput) WithWriter(w io.Writer) *SummaryOutput {
	s.writer = w
	return s
}

// Write outputs a compact summary
func (s *SummaryOutput) Write(violations core.ViolationList, stats Stats) error {
	s.printHeader(violations, stats)

	if len(violations) > 0 {
		s.printTopFunctions(violations)
	}

	fmt.Fprintf(s.writer, "Packages analyzed: %d | Duration: %.2fs\n", stats.PackagesAnalyzed, stats.Duration)
	return nil
}

func (s *SummaryOutput) printHeader(violations core.ViolationList, stats Stats) {
	counts := violations.CountBySeverity()

	fmt.Fprintln(s.writer, "PARAMPRUNE SUMMARY")
	fmt.Fprintln(s.writer, "==================")
	fmt.Fprintf(s.writer, "Error: %d | Warning: %d | Info: %d | Fixes: %d\n",
		counts[core.SeverityError],
		counts[core.SeverityWarning],
		counts[core.SeverityInfo],
		stats.FixesAvailable,
	)
	fmt.Fprintln(s.writer)
}

type funcCount struct {
	name  string
	file  string
	count int
}

func (s *SummaryOutput) printTopFunctions(violations core.ViolationList) {
	counts := buildFuncCounts(violations)
	if len(counts) == 0 {
		return
	}

	fmt.Fprintln(s.writer, "TOP FUNCTIONS:")
	limit := topFunctionsLimit
	if len(counts) < limit {
		limit = len(counts)
	}
	for i := 0; i < limit; i++ {
		fc := counts[i]
		fmt.Fprintf(s.writer, "%d. %s (%s): %d unused parameters\n", i+1, fc.name, fc.file, fc.count)
	}
	fmt.Fprintln(s.writer)
}

// buildFuncCounts counts the plain findings per function; fix-carrying
// violations repeat a finding once per declaration or call site.
func buildFuncCounts(violations core.ViolationList) []funcCount {
	type key struct{ name, file string }
	byFunc := make(map[key]int)
	for _, v := range violations {
		if v.Fix != nil || v.Function == "" {
			continue
		}
		byFunc[key{v.Function, v.File}]++
	}

	counts := make([]funcCount, 0, len(byFunc))
	for k, n := range byFunc {
		counts = append(counts, funcCount{name: k.name, file: k.file, count: n})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		if counts[i].file != counts[j].file {
			return counts[i].file < counts[j].file
		}
		return counts[i].name < counts[j].name
	})

	return counts
}
