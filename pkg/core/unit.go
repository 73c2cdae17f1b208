package core

import (
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/tools/go/ast/inspector"
)

// Unit is one type-checked package: the scope within which declarations and
// call sites are matched
type Unit struct {
	ID    string // Package ID as reported by the build system
	Fset  *token.FileSet
	Files []*ast.File
	Pkg   *types.Package
	Info  *types.Info

	// ReadFile returns the bytes of a source file. Defaults to os.ReadFile.
	ReadFile func(filename string) ([]byte, error)
	Logger   *zap.Logger

	excluded map[string]bool

	inspectOnce sync.Once
	inspector   *inspector.Inspector

	refOnce    sync.Once
	referenced map[*types.Var]bool
}

// NewUnit creates a unit from already parsed and type-checked files. Info
// must at least record Defs, Uses and Selections.
func NewUnit(id string, fset *token.FileSet, files []*ast.File, pkg *types.Package, info *types.Info) *Unit {
	return &Unit{
		ID:       id,
		Fset:     fset,
		Files:    files,
		Pkg:      pkg,
		Info:     info,
		ReadFile: os.ReadFile,
		Logger:   zap.NewNop(),
		excluded: make(map[string]bool),
	}
}

// WithInspector reuses an inspector built elsewhere over the same files
func (u *Unit) WithInspector(in *inspector.Inspector) *Unit {
	u.inspectOnce.Do(func() { u.inspector = in })
	return u
}

// WithLogger sets the logger used by rules analysing the unit
func (u *Unit) WithLogger(logger *zap.Logger) *Unit {
	if logger != nil {
		u.Logger = logger
	}
	return u
}

// Inspector returns the traversal helper over all files of the unit
func (u *Unit) Inspector() *inspector.Inspector {
	u.inspectOnce.Do(func() { u.inspector = inspector.New(u.Files) })
	return u.inspector
}

// IsReferenced reports whether any identifier in the unit refers to v.
// Reads, writes and taking the address all count.
func (u *Unit) IsReferenced(v *types.Var) bool {
	u.refOnce.Do(func() {
		u.referenced = make(map[*types.Var]bool)
		for _, obj := range u.Info.Uses {
			if vr, ok := obj.(*types.Var); ok {
				u.referenced[vr] = true
			}
		}
	})
	return u.referenced[v]
}

// Position resolves pos against the unit's file set
func (u *Unit) Position(pos token.Pos) token.Position {
	return u.Fset.Position(pos)
}

// FileOf returns the file containing pos, or nil
func (u *Unit) FileOf(pos token.Pos) *ast.File {
	for _, f := range u.Files {
		if f.FileStart <= pos && pos <= f.FileEnd {
			return f
		}
	}
	return nil
}

// IsGenerated reports whether pos lies in a file carrying the standard
// "Code generated ... DO NOT EDIT." header
func (u *Unit) IsGenerated(pos token.Pos) bool {
	f := u.FileOf(pos)
	return f != nil && ast.IsGenerated(f)
}

// Exclude marks a file as excluded from reporting. Calls inside it are
// still visible to the rules.
func (u *Unit) Exclude(filename string) {
	if u.excluded == nil {
		u.excluded = make(map[string]bool)
	}
	u.excluded[filepath.Clean(filename)] = true
}

// IsExcluded reports whether pos lies in an excluded file
func (u *Unit) IsExcluded(pos token.Pos) bool {
	if len(u.excluded) == 0 || !pos.IsValid() {
		return false
	}
	return u.excluded[filepath.Clean(u.Fset.Position(pos).Filename)]
}

// Filenames returns the names of the unit's files in order
func (u *Unit) Filenames() []string {
	names := make([]string, 0, len(u.Files))
	for _, f := range u.Files {
		names = append(names, u.Fset.File(f.FileStart).Name())
	}
	return names
}
