package rules

import (
	"go/token"

	"github.com/aiseeq/paramprune/pkg/core"
)

// Rule checks one type-checked package at a time
type Rule interface {
	Name() string
	Category() string
	Description() string
	DefaultSeverity() core.Severity

	// Configure replaces the settings of the rule. Empty settings restore
	// the defaults.
	Configure(settings map[string]any) error

	AnalyzeUnit(unit *core.Unit) []*core.Violation
}

// BaseRule carries the metadata of a rule and builds its violations
type BaseRule struct {
	name            string
	category        string
	description     string
	defaultSeverity core.Severity
}

// NewBaseRule creates a new base rule
func NewBaseRule(name, category, description string, severity core.Severity) *BaseRule {
	return &BaseRule{
		name:            name,
		category:        category,
		description:     description,
		defaultSeverity: severity,
	}
}

func (r *BaseRule) Name() string                   { return r.name }
func (r *BaseRule) Category() string               { return r.category }
func (r *BaseRule) Description() string            { return r.description }
func (r *BaseRule) DefaultSeverity() core.Severity { return r.defaultSeverity }

// ViolationAt creates a violation of this rule located at pos in unit
func (r *BaseRule) ViolationAt(unit *core.Unit, pos token.Pos, message string) *core.Violation {
	p := unit.Position(pos)
	return core.NewViolation(r.name, r.category, p.Filename, p.Line, r.defaultSeverity, message).
		WithColumn(p.Column)
}

// AutoFixer is implemented by rules whose violations carry a core.Fix that
// the fix engine can apply
type AutoFixer interface {
	Rule
	SuggestsFixes() bool
}

// SettingsDescriber is implemented by rules with typed settings
type SettingsDescriber interface {
	Rule
	Settings() []Setting
}

// RuleInfo describes a rule for the rules and explain commands
type RuleInfo struct {
	Name        string
	Category    string
	Description string
	Severity    core.Severity
	HasAutoFix  bool
	Settings    []Setting
}

// GetRuleInfo extracts info from a rule
func GetRuleInfo(r Rule) RuleInfo {
	info := RuleInfo{
		Name:        r.Name(),
		Category:    r.Category(),
		Description: r.Description(),
		Severity:    r.DefaultSeverity(),
	}
	if f, ok := r.(AutoFixer); ok {
		info.HasAutoFix = f.SuggestsFixes()
	}
	if d, ok := r.(SettingsDescriber); ok {
		info.Settings = d.Settings()
	}
	return info
}
