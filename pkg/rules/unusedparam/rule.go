package unusedparam

import (
	"bytes"
	"go/token"

	"go.uber.org/zap"

	"github.com/aiseeq/paramprune/pkg/core"
	"github.com/aiseeq/paramprune/pkg/rules"
)

// RuleName is the registry name of the rule
const RuleName = "unused-param"

func init() {
	rules.Register(NewRule())
}

// Rule detects function parameters that are never used and suggests
// removing them from every declaration and call site of the function
type Rule struct {
	*rules.BaseRule
	opts Options
}

// NewRule creates the rule
func NewRule() *Rule {
	return &Rule{
		BaseRule: rules.NewBaseRule(
			RuleName,
			"deadcode",
			"Detects function parameters that are never used in the function body and removes them from declarations and call sites",
			core.SeverityWarning,
		),
		opts: DefaultOptions(),
	}
}

// SuggestsFixes reports that violations carry removal fixes
func (r *Rule) SuggestsFixes() bool {
	return true
}

// Configure decodes the rule settings on top of DefaultOptions
func (r *Rule) Configure(settings map[string]any) error {
	opts := DefaultOptions()
	if err := rules.DecodeSettings(settings, &opts); err != nil {
		return err
	}
	r.opts = opts
	return nil
}

// Options returns the checker options in effect
func (r *Rule) Options() Options {
	return r.opts
}

// Settings documents the keys Configure accepts
func (r *Rule) Settings() []rules.Setting {
	return rules.DescribeSettings(DefaultOptions())
}

// AnalyzeUnit checks one package
func (r *Rule) AnalyzeUnit(unit *core.Unit) []*core.Violation {
	diags := NewChecker(unit, r.Options()).Run()
	if len(diags) == 0 {
		return nil
	}

	lines := newLineCache(unit)
	violations := make([]*core.Violation, 0, len(diags))
	for _, d := range diags {
		v := r.ViolationAt(unit, d.Pos, d.Message).
			WithFunction(d.Function).
			WithContext("param", d.Param)
		if code := lines.line(d.Pos); code != "" {
			v.WithCode(code)
		}
		if d.Fix != nil {
			fix, err := core.NewRemovalFix(unit.Fset, d.Fix.Message, d.Fix.Range)
			if err != nil {
				// Report without a fix rather than dropping the finding.
				unit.Logger.Warn("cannot build fix",
					zap.String("location", v.Location()),
					zap.Error(err))
			} else {
				v.WithFix(fix).WithContext("edit", d.Fix.Range.Kind.String())
			}
		}
		violations = append(violations, v)
	}
	return violations
}

// lineCache serves source lines for code snippets, reading each file once
type lineCache struct {
	unit  *core.Unit
	files map[string][][]byte
}

func newLineCache(unit *core.Unit) *lineCache {
	return &lineCache{unit: unit, files: make(map[string][][]byte)}
}

func (c *lineCache) line(pos token.Pos) string {
	if c.unit.ReadFile == nil {
		return ""
	}
	p := c.unit.Position(pos)
	lines, ok := c.files[p.Filename]
	if !ok {
		data, err := c.unit.ReadFile(p.Filename)
		if err == nil {
			lines = bytes.Split(data, []byte("\n"))
		}
		c.files[p.Filename] = lines
	}
	if p.Line < 1 || p.Line > len(lines) {
		return ""
	}
	return string(bytes.TrimSpace(lines[p.Line-1]))
}
