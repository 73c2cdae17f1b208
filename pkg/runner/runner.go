// Package runner loads packages, runs the enabled rules over them and
// collects the filtered violations.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aiseeq/paramprune/pkg/core"
	"github.com/aiseeq/paramprune/pkg/output"
	"github.com/aiseeq/paramprune/pkg/rules"
)

// Runner analyses the packages below Root
type Runner struct {
	Root     string
	Config   *core.Config
	Logger   *zap.Logger
	Registry *rules.Registry // nil = global registry

	Progress       bool
	ProgressWriter io.Writer // defaults to stderr
	Workers        int       // 0 = settings.workers, then NumCPU
}

// New creates a runner for root
func New(root string, cfg *core.Config) *Runner {
	return &Runner{Root: root, Config: cfg}
}

// Run loads the packages matching patterns and analyses them concurrently.
// The returned violations are deduplicated and ordered by position.
func (r *Runner) Run(ctx context.Context, patterns []string) (core.ViolationList, output.Stats, error) {
	start := time.Now()
	var stats output.Stats

	cfg := r.Config
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := r.Registry
	if registry == nil {
		registry = rules.GlobalRegistry()
	}

	if err := registry.ConfigureAll(cfg); err != nil {
		return nil, stats, fmt.Errorf("configure rules: %w", err)
	}
	enabled := registry.GetEnabled(cfg)
	stats.RulesRun = len(enabled)
	if len(enabled) == 0 {
		logger.Warn("no rules enabled")
		return nil, stats, nil
	}

	loader := core.NewLoader(r.Root, cfg).WithLogger(logger)
	units, err := loader.Load(ctx, patterns...)
	if err != nil {
		return nil, stats, err
	}
	ls := loader.Stats()
	stats.PackagesAnalyzed = len(units)
	stats.PackagesSkipped = ls.SkippedPackages + ls.ErrorPackages
	for _, u := range units {
		stats.FilesAnalyzed += len(u.Files)
	}

	bar := r.progressBar(len(units))

	results := make([]core.ViolationList, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers(cfg))
	for i, unit := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = analyzeUnit(unit, enabled, cfg, logger)
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	var all core.ViolationList
	for _, vs := range results {
		all = append(all, vs...)
	}

	minSeverity := cfg.GetMinSeverity()
	all = all.Filter(func(v *core.Violation) bool {
		if !v.Severity.IsAtLeast(minSeverity) {
			return false
		}
		rel := *v
		rel.File = relPath(r.Root, v.File)
		return !cfg.IsExcepted(&rel)
	}).Dedupe().Sorted()

	stats.FixesAvailable = len(all.Fixes())
	stats.Duration = time.Since(start).Seconds()

	logger.Debug("analysis complete",
		zap.Int("packages", stats.PackagesAnalyzed),
		zap.Int("violations", len(all)),
		zap.Duration("took", time.Since(start)))

	return all, stats, nil
}

func analyzeUnit(unit *core.Unit, enabled []rules.Rule, cfg *core.Config, logger *zap.Logger) core.ViolationList {
	unit.WithLogger(logger.With(zap.String("package", unit.ID)))

	var out core.ViolationList
	for _, rule := range enabled {
		for _, v := range rule.AnalyzeUnit(unit) {
			v.Severity = cfg.RuleSeverity(rule.Category(), rule.Name(), v.Severity)
			out = append(out, v)
		}
	}
	return out
}

func (r *Runner) workers(cfg *core.Config) int {
	switch {
	case r.Workers > 0:
		return r.Workers
	case cfg.Settings.Workers > 0:
		return cfg.Settings.Workers
	default:
		return runtime.NumCPU()
	}
}

func (r *Runner) progressBar(total int) *progressbar.ProgressBar {
	if !r.Progress || total == 0 {
		return nil
	}
	w := r.ProgressWriter
	if w == nil {
		w = os.Stderr
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("analyzing packages"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func relPath(root, file string) string {
	if root == "" {
		return file
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return file
	}
	rel, err := filepath.Rel(abs, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return file
	}
	return filepath.ToSlash(rel)
}
