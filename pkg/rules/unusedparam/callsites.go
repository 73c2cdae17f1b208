package unusedparam

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/types/typeutil"

	"github.com/aiseeq/paramprune/pkg/core"
)

// callSite is a call whose callee was resolved statically
type callSite struct {
	call *ast.CallExpr
	// offset is the number of leading arguments that are not parameters of
	// the callee: 1 for method expressions such as T.M(recv, x).
	offset int
}

// callIndex maps canonical functions to their call sites and declarations
// within one unit. Both lists are in source order.
type callIndex struct {
	calls map[*types.Func][]callSite
	decls map[*types.Func][]*ast.FuncDecl
}

// canonical collapses instantiations of generic functions and methods onto
// their declared object
func canonical(fn *types.Func) *types.Func {
	if fn == nil {
		return nil
	}
	return fn.Origin()
}

// buildCallIndex walks every file of the unit once
func buildCallIndex(unit *core.Unit) *callIndex {
	idx := &callIndex{
		calls: make(map[*types.Func][]callSite),
		decls: make(map[*types.Func][]*ast.FuncDecl),
	}
	info := unit.Info

	filter := []ast.Node{(*ast.CallExpr)(nil), (*ast.FuncDecl)(nil)}
	unit.Inspector().Preorder(filter, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.FuncDecl:
			if fn, ok := info.Defs[n.Name].(*types.Func); ok {
				key := canonical(fn)
				idx.decls[key] = append(idx.decls[key], n)
			}
		case *ast.CallExpr:
			// Interface methods, function values and conversions have no
			// static callee.
			fn := typeutil.StaticCallee(info, n)
			if fn == nil {
				return
			}
			key := canonical(fn)
			idx.calls[key] = append(idx.calls[key], callSite{call: n, offset: argOffset(info, n)})
		}
	})
	return idx
}

// argOffset reports how many receiver arguments precede the parameters
func argOffset(info *types.Info, call *ast.CallExpr) int {
	sel, ok := ast.Unparen(calleeExpr(call.Fun)).(*ast.SelectorExpr)
	if !ok {
		return 0
	}
	if s, ok := info.Selections[sel]; ok && s.Kind() == types.MethodExpr {
		return 1
	}
	return 0
}

// calleeExpr strips explicit instantiation from a call's function expression
func calleeExpr(fun ast.Expr) ast.Expr {
	for {
		switch f := ast.Unparen(fun).(type) {
		case *ast.IndexExpr:
			fun = f.X
		case *ast.IndexListExpr:
			fun = f.X
		default:
			return f
		}
	}
}

// Calls returns the recorded call sites of fn
func (idx *callIndex) Calls(fn *types.Func) []callSite {
	return idx.calls[canonical(fn)]
}

// Decls returns the declaration group of fn
func (idx *callIndex) Decls(fn *types.Func) []*ast.FuncDecl {
	return idx.decls[canonical(fn)]
}
