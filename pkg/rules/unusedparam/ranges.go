package unusedparam

import (
	"go/ast"
	"go/token"

	"github.com/aiseeq/paramprune/pkg/core"
)

// removalRange returns the span that removes curr from a comma-separated
// list along with exactly one separator. prev and next are the neighbouring
// elements (nil at the ends of the list) and closing is the position of the
// list's closing delimiter.
func removalRange(prev, curr, next ast.Node, closing token.Pos) core.RemovalRange {
	switch {
	case next != nil:
		// "a, b" -> "b": up to the start of the following element.
		return core.RemovalRange{Pos: curr.Pos(), End: next.Pos(), Kind: core.CharRange}
	case prev != nil:
		// "a, b" -> "a": from the end of the preceding element.
		return core.RemovalRange{Pos: prev.End(), End: curr.End(), Kind: core.TokenRange}
	default:
		// Sole element. A multi-line list may carry a trailing comma after
		// it, which has to go as well.
		end := curr.End()
		if closing.IsValid() && closing > end {
			end = closing
		}
		return core.RemovalRange{Pos: curr.Pos(), End: end, Kind: core.TokenRange}
	}
}

// indexSet holds the indices of list elements that are being removed
type indexSet map[int]bool

// span is a synthetic node covering [pos, end)
type span struct{ pos, end token.Pos }

func (s span) Pos() token.Pos { return s.pos }
func (s span) End() token.Pos { return s.end }

// pruneRange returns the span that removes the elements lo..hi of list
// given that every element in removed goes as well. The separator is taken
// from the side that keeps an element, so the ranges of all removed elements
// are disjoint and together leave a well-formed list.
func pruneRange[N ast.Node](list []N, lo, hi int, removed indexSet, closing token.Pos) core.RemovalRange {
	curr := span{list[lo].Pos(), list[hi].End()}
	var next ast.Node
	if hi+1 < len(list) {
		next = list[hi+1]
	}
	if lo > 0 && !keeps(removed, hi+1, len(list)) && keeps(removed, 0, lo) {
		return removalRange(list[lo-1], curr, nil, closing)
	}
	return removalRange(nil, curr, next, closing)
}

// keeps reports whether any index in [from, to) is not removed
func keeps(removed indexSet, from, to int) bool {
	for j := from; j < to; j++ {
		if !removed[j] {
			return true
		}
	}
	return false
}

// param locates a parameter by its flattened index in a function type
type param struct {
	field    *ast.Field
	fieldIdx int
	nameIdx  int // -1 for an unnamed parameter
}

// name returns the identifier of the parameter, or nil when unnamed
func (p param) name() *ast.Ident {
	if p.nameIdx < 0 {
		return nil
	}
	return p.field.Names[p.nameIdx]
}

// pos returns where diagnostics about the parameter are reported
func (p param) pos() token.Pos {
	if id := p.name(); id != nil {
		return id.Pos()
	}
	return p.field.Type.Pos()
}

// params flattens a parameter list so that "a, b int" yields two entries
func params(ftype *ast.FuncType) []param {
	if ftype == nil || ftype.Params == nil {
		return nil
	}
	var out []param
	for fi, field := range ftype.Params.List {
		if len(field.Names) == 0 {
			out = append(out, param{field: field, fieldIdx: fi, nameIdx: -1})
			continue
		}
		for ni := range field.Names {
			out = append(out, param{field: field, fieldIdx: fi, nameIdx: ni})
		}
	}
	return out
}

// paramRemoval returns the span that removes parameter i of ps, the
// flattened parameters of list, while the parameters in removed go as well.
// A name that shares its field with a kept name is removed from that field so
// the type stays; otherwise the whole field goes.
func paramRemoval(list *ast.FieldList, ps []param, i int, removed indexSet) core.RemovalRange {
	p := ps[i]
	if len(p.field.Names) > 1 {
		first := i - p.nameIdx
		names := make(indexSet)
		for j := range p.field.Names {
			if removed[first+j] {
				names[j] = true
			}
		}
		if len(names) < len(p.field.Names) {
			return pruneRange(p.field.Names, p.nameIdx, p.nameIdx, names, token.NoPos)
		}
	}

	fields := make(indexSet)
	for fi := range list.List {
		fields[fi] = true
	}
	for j, q := range ps {
		if !removed[j] {
			delete(fields, q.fieldIdx)
		}
	}
	fields[p.fieldIdx] = true
	return pruneRange(list.List, p.fieldIdx, p.fieldIdx, fields, list.Closing)
}

// argRemoval returns the span that removes the arguments lo..hi of a call
// while the arguments in removed go as well. The "..." of a spread call
// belongs to the last argument.
func argRemoval(call *ast.CallExpr, lo, hi int, removed indexSet) core.RemovalRange {
	args := make([]ast.Node, len(call.Args))
	for j, a := range call.Args {
		args[j] = a
	}
	if call.Ellipsis.IsValid() && len(args) > 0 {
		last := args[len(args)-1]
		args[len(args)-1] = span{last.Pos(), call.Ellipsis + token.Pos(len(token.ELLIPSIS.String()))}
	}
	return pruneRange(args, lo, hi, removed, call.Rparen)
}
