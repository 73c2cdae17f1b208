package testutil

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Checked is an in-memory package parsed and type-checked for tests
type Checked struct {
	Fset  *token.FileSet
	Files []*ast.File
	Pkg   *types.Package
	Info  *types.Info
	Src   map[string][]byte
}

// TypeCheck parses and type-checks the given sources as one package. Files
// are processed in name order.
func TypeCheck(t testing.TB, sources map[string]string) *Checked {
	t.Helper()

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	c := &Checked{
		Fset: token.NewFileSet(),
		Info: &types.Info{
			Types:      make(map[ast.Expr]types.TypeAndValue),
			Defs:       make(map[*ast.Ident]types.Object),
			Uses:       make(map[*ast.Ident]types.Object),
			Selections: make(map[*ast.SelectorExpr]*types.Selection),
			Instances:  make(map[*ast.Ident]types.Instance),
		},
		Src: make(map[string][]byte, len(sources)),
	}
	for _, name := range names {
		f, err := parser.ParseFile(c.Fset, name, sources[name], parser.ParseComments)
		require.NoError(t, err, "parse %s", name)
		c.Files = append(c.Files, f)
		c.Src[name] = []byte(sources[name])
	}

	conf := types.Config{Importer: importer.Default()}
	pkg, err := conf.Check("example.com/p", c.Fset, c.Files, c.Info)
	require.NoError(t, err, "type-check")
	c.Pkg = pkg
	return c
}

// ReadFile serves the checked sources by name
func (c *Checked) ReadFile(name string) ([]byte, error) {
	if data, ok := c.Src[name]; ok {
		return data, nil
	}
	return nil, &missingFileError{name}
}

type missingFileError struct{ name string }

func (e *missingFileError) Error() string { return "no such test file: " + e.name }
