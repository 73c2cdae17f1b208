package core

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Violation represents a single issue found by a rule
type Violation struct {
	// Rule identification
	Rule     string `json:"rule"`     // Rule name (e.g., "unused-param")
	Category string `json:"category"` // Category name (e.g., "deadcode")

	// Location
	File   string `json:"file"`   // Absolute or relative file path
	Line   int    `json:"line"`   // Line number (1-based)
	Column int    `json:"column"` // Column number (1-based, 0 = unknown)

	// Severity
	Severity Severity `json:"severity"`

	// Description
	Message  string `json:"message"`
	Function string `json:"function,omitempty"` // Function the finding belongs to

	// Optional source rewrite
	Fix *Fix `json:"fix,omitempty"`

	Code    string         `json:"code,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// NewViolation creates a new violation with required fields
func NewViolation(rule, category, file string, line int, severity Severity, message string) *Violation {
	return &Violation{
		Rule:     rule,
		Category: category,
		File:     file,
		Line:     line,
		Severity: severity,
		Message:  message,
		Context:  make(map[string]any),
	}
}

// WithFix attaches a source rewrite to the violation
func (v *Violation) WithFix(fix *Fix) *Violation {
	v.Fix = fix
	return v
}

// WithFunction records the function the violation belongs to
func (v *Violation) WithFunction(name string) *Violation {
	v.Function = name
	return v
}

// WithCode adds the code snippet to the violation
func (v *Violation) WithCode(code string) *Violation {
	v.Code = code
	return v
}

// WithColumn adds column information
func (v *Violation) WithColumn(col int) *Violation {
	v.Column = col
	return v
}

// WithContext adds context metadata
func (v *Violation) WithContext(key string, value any) *Violation {
	if v.Context == nil {
		v.Context = make(map[string]any)
	}
	v.Context[key] = value
	return v
}

// Location returns a formatted location string (file:line or file:line:col)
func (v *Violation) Location() string {
	if v.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", v.File, v.Line, v.Column)
	}
	return fmt.Sprintf("%s:%d", v.File, v.Line)
}

// RelativeFile returns the file path relative to the given root
func (v *Violation) RelativeFile(root string) string {
	if root == "" {
		return v.File
	}
	rel, err := filepath.Rel(root, v.File)
	if err != nil {
		return v.File
	}
	return rel
}

// String returns a human-readable representation
func (v *Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s (%s)", v.Severity.Label(), v.Location(), v.Message, v.Rule)
}

// key identifies a violation for deduplication. Test variants of a package
// report the same finding twice.
func (v *Violation) key() string {
	k := fmt.Sprintf("%s|%s|%d|%d|%s", v.Rule, v.File, v.Line, v.Column, v.Message)
	if v.Fix != nil {
		for _, e := range v.Fix.Edits {
			k += fmt.Sprintf("|%d-%d:%s", e.Start, e.End, e.NewText)
		}
	}
	return k
}

// ViolationList is a slice of violations with helper methods
type ViolationList []*Violation

// BySeverity returns violations filtered by minimum severity
func (vl ViolationList) BySeverity(minSeverity Severity) ViolationList {
	result := make(ViolationList, 0, len(vl))
	for _, v := range vl {
		if v.Severity.IsAtLeast(minSeverity) {
			result = append(result, v)
		}
	}
	return result
}

// ByRule returns violations filtered by rule name
func (vl ViolationList) ByRule(rule string) ViolationList {
	result := make(ViolationList, 0)
	for _, v := range vl {
		if v.Rule == rule {
			result = append(result, v)
		}
	}
	return result
}

// Filter returns the violations for which keep returns true
func (vl ViolationList) Filter(keep func(*Violation) bool) ViolationList {
	result := make(ViolationList, 0, len(vl))
	for _, v := range vl {
		if keep(v) {
			result = append(result, v)
		}
	}
	return result
}

// Dedupe drops repeated violations, keeping the first occurrence
func (vl ViolationList) Dedupe() ViolationList {
	seen := make(map[string]bool, len(vl))
	result := make(ViolationList, 0, len(vl))
	for _, v := range vl {
		k := v.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, v)
	}
	return result
}

// Sorted returns a copy ordered by file, line and column. Violations at the
// same position keep their reporting order.
func (vl ViolationList) Sorted() ViolationList {
	result := make(ViolationList, len(vl))
	copy(result, vl)
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return result
}

// Fixes returns the fixes attached to the violations
func (vl ViolationList) Fixes() []*Fix {
	var fixes []*Fix
	for _, v := range vl {
		if v.Fix != nil {
			fixes = append(fixes, v.Fix)
		}
	}
	return fixes
}

// CountBySeverity returns a map of severity to count
func (vl ViolationList) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, v := range vl {
		counts[v.Severity]++
	}
	return counts
}

// CountByRule returns a map of rule to count
func (vl ViolationList) CountByRule() map[string]int {
	counts := make(map[string]int)
	for _, v := range vl {
		counts[v.Rule]++
	}
	return counts
}

// HasErrors returns true if there's at least one error-level violation
func (vl ViolationList) HasErrors() bool {
	for _, v := range vl {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}
