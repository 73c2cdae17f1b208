// Package unusedparam finds function parameters that are never used in the
// function body.
//
// For every such parameter it reports a warning at the function name and a
// removal fix for the parameter in each declaration of the function and for
// the matching argument at each call site within the same package. Call
// sites are matched through static callee resolution, so calls through
// interfaces or function values are not rewritten.
//
// A parameter named _ or left unnamed is considered intentionally unused.
// When a call cannot be paired with the parameters one to one, for example
// because it passes a multi-value expression, the function keeps its
// warnings but gets no fixes and the reason is logged at debug level.
// Removing the variadic parameter removes every argument passed for it.
//
// The fixes of one function never overlap: when neighbouring parameters go
// together, each takes the separator on the side of a parameter that stays.
// They can therefore be applied all at once, by paramprune fix as well as
// by the -fix flag of paramprune-vet.
//
// Methods that implement a method of an interface named in the package are
// skipped by default (skip_interface_methods), since dropping a parameter
// would take them out of the interface's method set. Interfaces the package
// only satisfies implicitly, such as through a call to a function taking an
// interface, are not detected.
//
// The checker is exposed both as a paramprune rule registered under the name
// "unused-param" and as a go/analysis Analyzer.
package unusedparam
