package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"
)

// LoadMode is what the loader asks the build system for
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedModule

// Loader turns package patterns into type-checked units
type Loader struct {
	projectRoot string
	config      *Config
	logger      *zap.Logger

	// Statistics
	stats LoaderStats
	mu    sync.Mutex
}

// LoaderStats contains statistics about a load
type LoaderStats struct {
	TotalPackages   int
	LoadedPackages  int
	SkippedPackages int
	ErrorPackages   int
	ExcludedFiles   int
	Errors          []string
}

// NewLoader creates a loader rooted at projectRoot
func NewLoader(projectRoot string, config *Config) *Loader {
	if config == nil {
		config = DefaultConfig()
	}
	return &Loader{
		projectRoot: projectRoot,
		config:      config,
		logger:      zap.NewNop(),
	}
}

// WithLogger sets the logger
func (l *Loader) WithLogger(logger *zap.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Load loads and type-checks the packages matching patterns. Packages that
// fail to load or type-check are skipped and counted; Load itself only
// fails when the build system cannot be queried.
func (l *Loader) Load(ctx context.Context, patterns ...string) ([]*Unit, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     l.projectRoot,
		Tests:   l.config.Settings.Tests,
	}
	if len(l.config.Settings.BuildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(l.config.Settings.BuildTags, ",")}
	}

	l.logger.Debug("loading packages",
		zap.Strings("patterns", patterns),
		zap.String("dir", l.projectRoot),
		zap.Bool("tests", cfg.Tests))

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	pkgs = selectVariants(pkgs)

	units := make([]*Unit, 0, len(pkgs))
	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if unit := l.toUnit(pkg); unit != nil {
			units = append(units, unit)
		}
	}

	return units, nil
}

func (l *Loader) toUnit(pkg *packages.Package) *Unit {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stats.TotalPackages++

	if len(pkg.Errors) > 0 {
		l.stats.ErrorPackages++
		for _, e := range pkg.Errors {
			l.stats.Errors = append(l.stats.Errors, e.Error())
		}
		l.logger.Warn("skipping package with errors",
			zap.String("package", pkg.ID),
			zap.Int("errors", len(pkg.Errors)),
			zap.String("first", pkg.Errors[0].Error()))
		return nil
	}
	if len(pkg.Syntax) == 0 || pkg.Types == nil || pkg.TypesInfo == nil {
		l.stats.SkippedPackages++
		l.logger.Debug("skipping package without sources", zap.String("package", pkg.ID))
		return nil
	}

	unit := NewUnit(pkg.ID, pkg.Fset, pkg.Syntax, pkg.Types, pkg.TypesInfo).WithLogger(l.logger)

	excluded := 0
	for _, name := range unit.Filenames() {
		if l.config.ShouldExclude(l.relPath(name)) {
			unit.Exclude(name)
			excluded++
		}
	}
	l.stats.ExcludedFiles += excluded
	if excluded == len(pkg.Syntax) {
		l.stats.SkippedPackages++
		l.logger.Debug("skipping fully excluded package", zap.String("package", pkg.ID))
		return nil
	}

	l.stats.LoadedPackages++
	return unit
}

func (l *Loader) relPath(filename string) string {
	if l.projectRoot == "" {
		return filename
	}
	root, err := filepath.Abs(l.projectRoot)
	if err != nil {
		return filename
	}
	rel, err := filepath.Rel(root, filename)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filename
	}
	return rel
}

// Stats returns the load statistics
func (l *Loader) Stats() LoaderStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// selectVariants drops packages covered by a test variant. With tests
// enabled the build system reports "p", "p [p.test]" and the generated
// "p.test" main; the middle one is a superset of the first.
func selectVariants(pkgs []*packages.Package) []*packages.Package {
	hasTestVariant := make(map[string]bool)
	for _, pkg := range pkgs {
		if pkg.ID != pkg.PkgPath && pkg.ID == fmt.Sprintf("%s [%s.test]", pkg.PkgPath, pkg.PkgPath) {
			hasTestVariant[pkg.PkgPath] = true
		}
	}

	result := make([]*packages.Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if pkg.Name == "main" && strings.HasSuffix(pkg.ID, ".test") {
			continue
		}
		if pkg.ID == pkg.PkgPath && hasTestVariant[pkg.PkgPath] {
			continue
		}
		result = append(result, pkg)
	}
	return result
}
