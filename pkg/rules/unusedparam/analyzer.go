package unusedparam

import (
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/aiseeq/paramprune/pkg/core"
)

const analyzerDoc = `report unused function parameters and suggest removing them

The unusedparam analyzer reports parameters that are never referenced in
the body of their function. Each report comes with suggested fixes that
remove the parameter from the declaration and the corresponding argument
from every call site in the package that resolves statically to it.`

// Analyzer runs the checker as a go/analysis pass
var Analyzer = &analysis.Analyzer{
	Name:     "unusedparam",
	Doc:      analyzerDoc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var analyzerOptions = DefaultOptions()

func init() {
	Analyzer.Flags.BoolVar(&analyzerOptions.SkipExported, "skip-exported", analyzerOptions.SkipExported,
		"do not report exported functions and methods")
	Analyzer.Flags.BoolVar(&analyzerOptions.SkipAddressTaken, "skip-address-taken", analyzerOptions.SkipAddressTaken,
		"do not report functions used as values")
	Analyzer.Flags.BoolVar(&analyzerOptions.SkipGenerated, "skip-generated", analyzerOptions.SkipGenerated,
		"do not report functions declared in generated files")
	Analyzer.Flags.BoolVar(&analyzerOptions.SkipInterfaceMethods, "skip-interface-methods", analyzerOptions.SkipInterfaceMethods,
		"do not report methods that implement an interface method")
}

func run(pass *analysis.Pass) (any, error) {
	in := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	unit := core.NewUnit(pass.Pkg.Path(), pass.Fset, pass.Files, pass.Pkg, pass.TypesInfo).WithInspector(in)
	if pass.ReadFile != nil {
		unit.ReadFile = pass.ReadFile
	}

	for _, d := range NewChecker(unit, analyzerOptions).Run() {
		diag := analysis.Diagnostic{
			Pos:     d.Pos,
			Message: d.Message,
		}
		if d.Fix != nil {
			diag.SuggestedFixes = []analysis.SuggestedFix{{
				Message: d.Fix.Message,
				TextEdits: []analysis.TextEdit{{
					Pos: d.Fix.Range.Pos,
					End: d.Fix.Range.End,
				}},
			}}
		}
		pass.Report(diag)
	}
	return nil, nil
}
