package unusedparam

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"go.uber.org/zap"

	"github.com/aiseeq/paramprune/pkg/core"
)

// Options narrow down which functions are checked. The zero value checks
// every function with a body.
type Options struct {
	// SkipExported leaves exported functions and methods alone; callers in
	// other packages cannot be rewritten.
	SkipExported bool `yaml:"skip_exported" help:"do not report exported functions and methods"`
	// SkipAddressTaken leaves functions alone whose value is used outside
	// of a call, since their signature may have to match a func type.
	SkipAddressTaken bool `yaml:"skip_address_taken" help:"do not report functions used as values"`
	// SkipGenerated leaves functions declared in generated files alone.
	SkipGenerated bool `yaml:"skip_generated" help:"do not report functions declared in generated files"`
	// SkipInterfaceMethods leaves methods alone that implement a method of
	// an interface named in the package.
	SkipInterfaceMethods bool `yaml:"skip_interface_methods" help:"do not report methods that implement an interface method"`
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{SkipGenerated: true, SkipInterfaceMethods: true}
}

// Diagnostic is one finding of the checker
type Diagnostic struct {
	Pos      token.Pos
	Message  string
	Function string // Name of the function owning the parameter
	Param    string
	Fix      *Fix // nil for the plain warning
}

// Fix removes one element from a parameter or argument list
type Fix struct {
	Message string
	Range   core.RemovalRange
}

// Checker finds unused parameters in one unit
type Checker struct {
	unit   *core.Unit
	opts   Options
	logger *zap.Logger

	index       *callIndex
	indexBuilds int

	addrTaken map[*types.Func]bool
	ifaces    []*types.Interface
}

// NewChecker creates a checker for unit
func NewChecker(unit *core.Unit, opts Options) *Checker {
	logger := unit.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		unit:   unit,
		opts:   opts,
		logger: logger.With(zap.String("unit", unit.ID)),
	}
}

// Run checks every function declaration of the unit and returns the
// diagnostics in reporting order
func (c *Checker) Run() []Diagnostic {
	var diags []Diagnostic
	c.unit.Inspector().Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		diags = append(diags, c.check(n.(*ast.FuncDecl))...)
	})
	return diags
}

func (c *Checker) check(decl *ast.FuncDecl) []Diagnostic {
	// Body-less declarations (assembly stubs) cannot use anything.
	if decl.Body == nil || decl.Type.Params == nil || len(decl.Type.Params.List) == 0 {
		return nil
	}
	fn, ok := c.unit.Info.Defs[decl.Name].(*types.Func)
	if !ok {
		return nil
	}
	if c.skip(decl, fn) {
		return nil
	}

	ps := params(decl.Type)
	var unused []int
	for i, p := range ps {
		id := p.name()
		if id == nil || id.Name == "_" {
			continue
		}
		if v, ok := c.unit.Info.Defs[id].(*types.Var); ok && !c.unit.IsReferenced(v) {
			unused = append(unused, i)
		}
	}
	if len(unused) == 0 {
		return nil
	}

	idx := c.callIndex()
	sig := fn.Type().(*types.Signature)
	sites := idx.Calls(fn)

	// Fixes are all or nothing per function: one call that cannot be
	// rewritten would leave the package broken.
	pruned := make(indexSet)
	if site, reason := c.unpairable(sig, sites); reason != "" {
		c.logger.Debug("reporting without fixes",
			zap.String("func", fn.FullName()),
			zap.String("reason", reason),
			zap.String("pos", c.unit.Position(site.call.Pos()).String()))
	} else {
		for _, i := range unused {
			pruned[i] = true
		}
	}

	var diags []Diagnostic
	for _, i := range unused {
		name := ps[i].name().Name
		diags = append(diags, Diagnostic{
			Pos:      decl.Name.Pos(),
			Message:  fmt.Sprintf("Parameter '%s' is unused!", name),
			Function: fn.Name(),
			Param:    name,
		})
		if pruned[i] {
			diags = append(diags, c.fixes(fn, sig, i, name, sites, pruned)...)
		}
	}
	return diags
}

func (c *Checker) skip(decl *ast.FuncDecl, fn *types.Func) bool {
	switch {
	case c.unit.IsExcluded(decl.Pos()):
		return true
	case c.opts.SkipGenerated && c.unit.IsGenerated(decl.Pos()):
		return true
	case c.opts.SkipExported && decl.Name.IsExported():
		return true
	case c.opts.SkipAddressTaken && c.addressTaken(fn):
		c.logger.Debug("skipping function used as a value", zap.String("func", fn.FullName()))
		return true
	case c.opts.SkipInterfaceMethods && c.interfaceMethod(fn):
		c.logger.Debug("skipping interface method", zap.String("func", fn.FullName()))
		return true
	}
	return false
}

// fixes emits the removal of parameter i of fn from each declaration of fn
// and of the matching argument from each call site. pruned holds every
// parameter of fn that is removed along with i.
func (c *Checker) fixes(fn *types.Func, sig *types.Signature, i int, name string, sites []callSite, pruned indexSet) []Diagnostic {
	funcName := fn.Name()
	fixMsg := fmt.Sprintf("Remove unused parameter '%s'", name)
	var diags []Diagnostic

	for _, d := range c.callIndex().Decls(fn) {
		ps := params(d.Type)
		if len(ps) != sig.Params().Len() {
			c.logger.Debug("declaration does not match signature",
				zap.String("func", funcName), zap.Int("params", len(ps)))
			continue
		}
		p := ps[i]
		diags = append(diags, Diagnostic{
			Pos:      p.pos(),
			Message:  fmt.Sprintf("Fixing parameter '%s' in %s", name, funcName),
			Function: funcName,
			Param:    name,
			Fix: &Fix{
				Message: fixMsg,
				Range:   paramRemoval(d.Type.Params, ps, i, pruned),
			},
		})
	}

	n := sig.Params().Len()
	variadicTail := sig.Variadic() && i == n-1
	for _, site := range sites {
		args := site.call.Args
		lo, hi := i+site.offset, i+site.offset
		if variadicTail && !site.call.Ellipsis.IsValid() {
			hi = len(args) - 1
		}
		if lo > hi || lo >= len(args) {
			// Nothing was passed for the variadic parameter.
			continue
		}
		removed := make(indexSet)
		for j := site.offset; j < len(args); j++ {
			if pruned[min(j-site.offset, n-1)] {
				removed[j] = true
			}
		}
		diags = append(diags, Diagnostic{
			Pos:      args[lo].Pos(),
			Message:  fmt.Sprintf("Fixing argument index %d at call site %s", i, funcName),
			Function: funcName,
			Param:    name,
			Fix: &Fix{
				Message: fixMsg,
				Range:   argRemoval(site.call, lo, hi, removed),
			},
		})
	}

	return diags
}

// unpairable returns the first call site whose arguments cannot be paired
// with the parameters of sig one to one, and why
func (c *Checker) unpairable(sig *types.Signature, sites []callSite) (callSite, string) {
	for _, site := range sites {
		if reason := c.arityMismatch(sig, site); reason != "" {
			return site, reason
		}
	}
	return callSite{}, ""
}

// arityMismatch explains why the arguments of a call cannot be paired with
// the parameters, or returns "" when they can. Past the last fixed
// parameter, arguments belong to the variadic one.
func (c *Checker) arityMismatch(sig *types.Signature, site callSite) string {
	n := sig.Params().Len()
	args := site.call.Args[site.offset:]
	for _, a := range args {
		if _, ok := c.unit.Info.TypeOf(a).(*types.Tuple); ok {
			return "multi-value argument"
		}
	}
	switch {
	case site.call.Ellipsis.IsValid() && len(args) != n:
		return "spread call with mismatched arguments"
	case sig.Variadic() && len(args) < n-1:
		return "too few arguments"
	case !sig.Variadic() && len(args) != n:
		return "argument count differs from parameter count"
	}
	return ""
}

// callIndex builds the call-site index on first use
func (c *Checker) callIndex() *callIndex {
	if c.index == nil {
		c.index = buildCallIndex(c.unit)
		c.indexBuilds++
		c.logger.Debug("built call index",
			zap.Int("functions", len(c.index.decls)),
			zap.Int("callees", len(c.index.calls)))
	}
	return c.index
}

// addressTaken reports whether fn is referred to anywhere other than the
// function position of a call
func (c *Checker) addressTaken(fn *types.Func) bool {
	if c.addrTaken == nil {
		c.addrTaken = make(map[*types.Func]bool)
		called := make(map[*ast.Ident]bool)
		c.unit.Inspector().Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
			switch f := calleeExpr(n.(*ast.CallExpr).Fun).(type) {
			case *ast.Ident:
				called[f] = true
			case *ast.SelectorExpr:
				called[f.Sel] = true
			}
		})
		for id, obj := range c.unit.Info.Uses {
			if f, ok := obj.(*types.Func); ok && !called[id] {
				c.addrTaken[canonical(f)] = true
			}
		}
	}
	return c.addrTaken[canonical(fn)]
}

// interfaceMethod reports whether fn is a method that implements a method of
// an interface named in the unit
func (c *Checker) interfaceMethod(fn *types.Func) bool {
	recv := fn.Type().(*types.Signature).Recv()
	if recv == nil {
		return false
	}
	if c.ifaces == nil {
		c.ifaces = collectInterfaces(c.unit.Info)
	}

	t := recv.Type()
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	if named, ok := t.(*types.Named); ok && named.TypeArgs().Len() > 0 {
		// Implements is unspecified for generic receivers.
		return false
	}
	for _, iface := range c.ifaces {
		if !declares(iface, fn.Name()) {
			continue
		}
		if types.Implements(t, iface) || types.Implements(types.NewPointer(t), iface) {
			return true
		}
	}
	return false
}

// collectInterfaces returns the non-empty interfaces that appear as types
// in the unit, the unit's own and imported ones alike
func collectInterfaces(info *types.Info) []*types.Interface {
	seen := make(map[*types.Interface]bool)
	out := []*types.Interface{}
	add := func(t types.Type) {
		iface, ok := t.Underlying().(*types.Interface)
		if ok && iface.NumMethods() > 0 && !seen[iface] {
			seen[iface] = true
			out = append(out, iface)
		}
	}
	for _, tv := range info.Types {
		if tv.IsType() {
			add(tv.Type)
		}
	}
	for _, obj := range info.Defs {
		if tn, ok := obj.(*types.TypeName); ok {
			add(tn.Type())
		}
	}
	return out
}

func declares(iface *types.Interface, name string) bool {
	for i := 0; i < iface.NumMethods(); i++ {
		if iface.Method(i).Name() == name {
			return true
		}
	}
	return false
}
