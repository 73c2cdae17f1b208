package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aiseeq/paramprune/pkg/core"
)

// JSONOutput writes violations as one JSON document
type JSONOutput struct {
	writer io.Writer
}

type jsonReport struct {
	Stats      Stats              `json:"stats"`
	Summary    map[string]int     `json:"summary"`
	Violations core.ViolationList `json:"violations"`
}

// NewJSONOutput creates a new JSON output
func NewJSONOutput() *JSONOutput {
	return &JSONOutput{writer: os.Stdout}
}

// WithWriter sets a custom writer
func (j *JSONOutput) WithWriter(w io.Writer) *JSONOutput {
	j.writer = w
	return j
}

// Write encodes the report
func (j *JSONOutput) Write(violations core.ViolationList, stats Stats) error {
	summary := make(map[string]int)
	for sev, n := range violations.CountBySeverity() {
		summary[sev.String()] = n
	}
	if violations == nil {
		violations = core.ViolationList{}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Stats:      stats,
		Summary:    summary,
		Violations: violations,
	})
}

// New returns the writer for a format name: console, summary or json
func New(format string, w io.Writer, root string, noColor, verbose bool) (Writer, error) {
	switch format {
	case "", "console":
		return NewConsoleOutput().WithWriter(w).WithRoot(root).WithNoColor(noColor).WithVerbose(verbose), nil
	case "summary":
		return NewSummaryOutput().WithWriter(w), nil
	case "json":
		return NewJSONOutput().WithWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want console, summary or json)", format)
	}
}
