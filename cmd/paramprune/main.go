package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/aiseeq/paramprune/pkg/core"
	"github.com/aiseeq/paramprune/pkg/fix"
	"github.com/aiseeq/paramprune/pkg/output"
	"github.com/aiseeq/paramprune/pkg/rules"
	"github.com/aiseeq/paramprune/pkg/runner"

	// Rule packages - imported for init() registration
	_ "github.com/aiseeq/paramprune/pkg/rules/unusedparam"
)

var version = "dev"

const (
	defaultFilePermissions = 0644
	defaultTimeout         = 5 * time.Minute
)

// errIssuesFound makes the process exit non-zero without printing anything
var errIssuesFound = errors.New("issues found")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errIssuesFound) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// app holds the flags shared by all commands
type app struct {
	// Global flags
	dir       string
	config    string
	debug     bool
	noColor   bool
	progress  bool
	tests     bool
	buildTags []string
	timeout   time.Duration

	// Check command flags
	minSeverity string
	output      string
	verbose     bool

	// Fix command flags
	dryRun bool
	force  bool

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "paramprune",
		Short: "paramprune - find and remove unused function parameters",
		Long: `paramprune reports function parameters that are never used and rewrites
the declaration together with every call site in the same package.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(a.debug)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.dir, "dir", "C", ".", "Project directory packages are resolved from")
	pf.StringVar(&a.config, "config", "", "Configuration file (default: nearest .paramprune.yaml)")
	pf.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&a.progress, "progress", false, "Show a progress bar on stderr")
	pf.BoolVar(&a.tests, "tests", false, "Also analyze test files")
	pf.StringSliceVar(&a.buildTags, "tags", nil, "Build tags to load packages with")
	pf.DurationVar(&a.timeout, "timeout", defaultTimeout, "Give up after this long")

	checkCmd := &cobra.Command{
		Use:   "check [packages...]",
		Short: "Report unused parameters",
		Long:  "Report unused parameters in the packages matching the patterns (default ./...).",
		RunE:  a.runCheck,
	}
	checkCmd.Flags().StringVarP(&a.minSeverity, "min-severity", "s", "", "Minimum severity (info, warning, error)")
	checkCmd.Flags().StringVarP(&a.output, "output", "o", "", "Output format (console, json, summary)")
	checkCmd.Flags().BoolVarP(&a.verbose, "verbose", "v", false, "Show the edits of every fix")

	fixCmd := &cobra.Command{
		Use:   "fix [packages...]",
		Short: "Remove unused parameters and the matching call arguments",
		Long: `Remove unused parameters from declarations and the matching arguments
from every call site in the same package.
By default runs in dry-run mode to show what would be changed.
Use --dry-run=false to apply the fixes.`,
		RunE: a.runFix,
	}
	fixCmd.Flags().BoolVar(&a.dryRun, "dry-run", true, "Show what would be fixed without applying")
	fixCmd.Flags().BoolVar(&a.force, "force", false, "Apply fixes even with uncommitted changes")
	fixCmd.Flags().BoolVarP(&a.verbose, "verbose", "v", false, "Show detailed output")

	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "List available rules",
		RunE:  a.runRules,
	}

	explainCmd := &cobra.Command{
		Use:   "explain <rule>",
		Short: "Explain a specific rule",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runExplain,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize .paramprune.yaml configuration",
		RunE:  a.runInit,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE:  a.runConfigShow,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE:  a.runConfigValidate,
	})

	rootCmd.AddCommand(checkCmd, fixCmd, rulesCmd, explainCmd, initCmd, configCmd)
	return rootCmd
}

// newLogger returns a development logger for --debug and a quiet
// production logger otherwise
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func (a *app) projectRoot() (string, error) {
	root, err := filepath.Abs(a.dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}
	return root, nil
}

// loadConfig returns the effective configuration: defaults, then the
// config file, then flags
func (a *app) loadConfig(projectRoot string) (*core.Config, error) {
	var cfg *core.Config
	if a.config != "" {
		fileCfg, err := core.LoadConfig(a.config)
		if err != nil {
			return nil, err
		}
		cfg = core.MergeConfigs(core.DefaultConfig(), fileCfg)
	} else {
		var err error
		cfg, err = core.LoadConfigWithDefaults(projectRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if a.minSeverity != "" {
		cfg.Settings.MinSeverity = a.minSeverity
	}
	if a.output != "" {
		cfg.Settings.Output = a.output
	}
	if a.tests {
		cfg.Settings.Tests = true
	}
	if len(a.buildTags) > 0 {
		cfg.Settings.BuildTags = a.buildTags
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (a *app) analyze(cmd *cobra.Command, projectRoot string, cfg *core.Config, patterns []string) (core.ViolationList, output.Stats, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()

	r := runner.New(projectRoot, cfg)
	r.Logger = a.logger
	r.Progress = a.progress
	r.ProgressWriter = cmd.ErrOrStderr()

	violations, stats, err := r.Run(ctx, patterns)
	if err != nil {
		return nil, stats, fmt.Errorf("analysis failed: %w", err)
	}
	return violations, stats, nil
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	projectRoot, err := a.projectRoot()
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig(projectRoot)
	if err != nil {
		return err
	}

	violations, stats, err := a.analyze(cmd, projectRoot, cfg, args)
	if err != nil {
		return err
	}

	out, err := output.New(cfg.Settings.Output, cmd.OutOrStdout(), projectRoot, a.noColor, a.verbose)
	if err != nil {
		return err
	}
	if err := out.Write(violations, stats); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	if violations.HasErrors() {
		return errIssuesFound
	}
	return nil
}

func (a *app) runFix(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	projectRoot, err := a.projectRoot()
	if err != nil {
		return err
	}

	dryRun := a.dryRun
	engine := fix.NewEngine(dryRun, a.verbose).WithLogger(a.logger)

	// Check for uncommitted changes
	hasChanges, err := engine.CheckGitStatus(projectRoot)
	if err != nil {
		a.logger.Warn("could not check git status", zap.Error(err))
	}
	if hasChanges && !a.force && !dryRun {
		fmt.Fprintln(w, "WARNING: You have uncommitted changes.")
		fmt.Fprintln(w, "Use --force to apply fixes anyway, or commit your changes first.")
		fmt.Fprintln(w, "Running in dry-run mode instead.")
		dryRun = true
		engine = fix.NewEngine(dryRun, a.verbose).WithLogger(a.logger)
	}

	cfg, err := a.loadConfig(projectRoot)
	if err != nil {
		return err
	}

	violations, _, err := a.analyze(cmd, projectRoot, cfg, args)
	if err != nil {
		return err
	}

	fixes := fix.Collect(violations)
	if len(fixes) == 0 {
		fmt.Fprintln(w, "No issues found that can be fixed.")
		return nil
	}

	fmt.Fprint(w, engine.Preview(fixes))

	if dryRun {
		return nil
	}

	results := engine.ApplyFixes(fixes)
	return reportFixResults(w, results, a.verbose)
}

func reportFixResults(w io.Writer, results []fix.FixResult, verbose bool) error {
	totalFixed, totalSkipped, failed := 0, 0, 0
	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(w, "Error fixing %s: %v\n", result.File, result.Error)
			continue
		}
		totalFixed += result.FixesApplied
		totalSkipped += result.FixesSkipped
		if verbose {
			fmt.Fprintf(w, "Fixed %d issues in %s\n", result.FixesApplied, result.File)
		}
	}

	fmt.Fprintf(w, "\nApplied %d fixes in %d files.\n", totalFixed, len(results)-failed)
	if totalSkipped > 0 {
		fmt.Fprintf(w, "Skipped %d overlapping fixes; run fix again to apply them.\n", totalSkipped)
	}
	if failed > 0 {
		return fmt.Errorf("failed to fix %d files", failed)
	}
	return nil
}

func (a *app) runRules(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	allRules := rules.All()

	if len(allRules) == 0 {
		fmt.Fprintln(w, "No rules found.")
		return nil
	}

	fmt.Fprintln(w, "AVAILABLE RULES")
	fmt.Fprintln(w, "===============")

	currentCategory := ""
	for _, r := range allRules {
		if r.Category() != currentCategory {
			currentCategory = r.Category()
			fmt.Fprintf(w, "\n[%s]\n", currentCategory)
		}

		info := rules.GetRuleInfo(r)
		autofix := ""
		if info.HasAutoFix {
			autofix = " (auto-fix)"
		}

		fmt.Fprintf(w, "  %-20s %s [%s]%s\n",
			info.Name,
			info.Description,
			info.Severity.Label(),
			autofix,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d rules\n", len(allRules))
	return nil
}

func (a *app) runExplain(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	ruleName := args[0]

	rule, ok := rules.Get(ruleName)
	if !ok {
		return fmt.Errorf("unknown rule: %s", ruleName)
	}

	info := rules.GetRuleInfo(rule)

	fmt.Fprintf(w, "RULE: %s\n", info.Name)
	fmt.Fprintf(w, "CATEGORY: %s\n", info.Category)
	fmt.Fprintf(w, "SEVERITY: %s\n", info.Severity.Label())
	if info.HasAutoFix {
		fmt.Fprintln(w, "AUTO-FIX: Available")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "DESCRIPTION:")
	fmt.Fprintf(w, "  %s\n", info.Description)

	if len(info.Settings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "SETTINGS:")
		for _, s := range info.Settings {
			fmt.Fprintf(w, "  %-24s %-6v %s\n", s.Key, s.Default, s.Help)
		}
	}

	return nil
}

const initConfig = `# paramprune configuration

version: 1

settings:
  exclude:
    - vendor/**
    - .git/**
    - "**/testdata/**"
  min_severity: info
  output: console
  tests: false

categories:
  deadcode:
    enabled: true
    rules:
      unused-param:
        settings:
          skip_exported: false
          skip_address_taken: false
          skip_generated: true
          skip_interface_methods: true
        # exceptions:
        #   - file: "internal/legacy/*.go"
        #     function: Handle
        #     reason: signature fixed by an external interface
`

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	projectRoot, err := a.projectRoot()
	if err != nil {
		return err
	}

	filename := filepath.Join(projectRoot, core.ConfigFileNames[0])
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("%s already exists", filename)
	}

	if err := os.WriteFile(filename, []byte(initConfig), defaultFilePermissions); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", filename)
	return nil
}

func (a *app) runConfigShow(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	projectRoot, err := a.projectRoot()
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig(projectRoot)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Effective configuration:")
	fmt.Fprintln(w)

	names := make([]string, 0, len(cfg.Categories))
	for name := range cfg.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		status := "enabled"
		if !cfg.Categories[name].Enabled {
			status = "disabled"
		}
		fmt.Fprintf(w, "# %s: %s\n", name, status)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func (a *app) runConfigValidate(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	configPath := a.config
	if configPath == "" {
		projectRoot, err := a.projectRoot()
		if err != nil {
			return err
		}
		configPath, err = core.FindConfig(projectRoot)
		if err != nil {
			return err
		}
	}

	if configPath == "" {
		fmt.Fprintln(w, "No configuration file found")
		return nil
	}

	cfg, err := core.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	merged := core.MergeConfigs(core.DefaultConfig(), cfg)
	if err := merged.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := rules.ConfigureAll(merged); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Fprintf(w, "Configuration valid: %s\n", configPath)
	return nil
}
