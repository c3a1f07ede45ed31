package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakoblorz/create-devhub/internal/config"
	"github.com/jakoblorz/create-devhub/internal/filesystem"
	"github.com/jakoblorz/create-devhub/internal/logging"
	"github.com/jakoblorz/create-devhub/internal/models"
	"github.com/jakoblorz/create-devhub/internal/pipeline"
	"github.com/jakoblorz/create-devhub/internal/runner"
	"github.com/jakoblorz/create-devhub/internal/templates"
	"github.com/jakoblorz/create-devhub/internal/tui"
	"github.com/jakoblorz/create-devhub/internal/tui/collect"
	"github.com/jakoblorz/create-devhub/internal/workspace"
)

// Collector fills in the options that were not fixed by flags, environment
// or config file.
type Collector interface {
	Collect(ctx context.Context, opts models.Options, fixed collect.Fixed) (models.Options, error)
}

// progressReporter is a pipeline.Reporter that owns terminal output until
// closed.
type progressReporter interface {
	pipeline.Reporter
	Close() error
}

// CreateCommand scaffolds a new workspace.
type CreateCommand struct {
	fs           filesystem.FileSystem
	newRunner    func(*zap.Logger) runner.Runner
	newCollector func(cmd *cobra.Command, detected []runner.Detection) Collector
	templates    *templates.Library
	configDirs   []string
	terminal     bool
}

// Option configures the create command.
type Option func(*CreateCommand)

// WithRunner replaces the OS process runner.
func WithRunner(r runner.Runner) Option {
	return func(c *CreateCommand) {
		c.newRunner = func(*zap.Logger) runner.Runner { return r }
	}
}

// WithCollector replaces the huh prompts.
func WithCollector(col Collector) Option {
	return func(c *CreateCommand) {
		c.newCollector = func(*cobra.Command, []runner.Detection) Collector { return col }
	}
}

// WithConfigDirs sets where .devhub.yaml and .env are searched.
func WithConfigDirs(dirs ...string) Option {
	return func(c *CreateCommand) {
		c.configDirs = dirs
	}
}

// WithTerminal overrides TTY detection on stdout.
func WithTerminal(enabled bool) Option {
	return func(c *CreateCommand) {
		c.terminal = enabled
	}
}

// NewRootCommand creates the create-devhub command
func NewRootCommand(fs filesystem.FileSystem, options ...Option) *cobra.Command {
	c := &CreateCommand{
		fs: fs,
		newRunner: func(logger *zap.Logger) runner.Runner {
			return runner.NewOSRunner(logger)
		},
		templates:  templates.New(),
		configDirs: config.DefaultSearchPaths(),
		terminal:   isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
	c.newCollector = func(cmd *cobra.Command, detected []runner.Detection) Collector {
		return collect.NewFlow(detected,
			collect.WithAccessible(!c.terminal),
			collect.WithIO(cmd.InOrStdin(), cmd.ErrOrStderr()),
		)
	}
	for _, option := range options {
		option(c)
	}

	cobraCmd := &cobra.Command{
		Use:   "create-devhub [project-name]",
		Short: "Scaffold a Turborepo monorepo",
		Long: `Scaffold a Turborepo monorepo with a web app, optional docs site,
HTTP and WebSocket servers, shared TypeScript config and Tailwind CSS.

Options not given as flags are read from DEVHUB_* environment variables,
.env and .devhub.yaml, and prompted for unless --yes is set.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.Run,
	}
	config.RegisterFlags(cobraCmd.Flags())

	return cobraCmd
}

// Run executes the create command
func (c *CreateCommand) Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()

	cwd, err := c.fs.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	// A .devhub.yaml in an ancestor directory applies to everything below it.
	dirs := c.configDirs
	if path, found, err := workspace.FindFileUp(c.fs, cwd, config.FileName+".yaml"); err == nil && found {
		dirs = append([]string{filepath.Dir(path)}, dirs...)
	}

	loader := config.NewLoader(dirs...)
	if err := loader.Load(cmd.Flags()); err != nil {
		return err
	}
	if len(args) == 1 {
		loader.SetProjectName(args[0])
	}

	runID, err := logging.NewRunID()
	if err != nil {
		return fmt.Errorf("failed to generate run id: %w", err)
	}
	logger, err := logging.New(logging.Config{
		Verbose: loader.Bool(config.KeyVerbose),
		Format:  loader.String(config.KeyLogFormat),
		Output:  cmd.ErrOrStderr(),
	}, runID)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if path := loader.ConfigFile(); path != "" {
		logger.Debug("using config file", zap.String("path", path))
	}

	opts, err := loader.Options()
	if err != nil {
		return err
	}

	fixed := collect.Fixed(loader.Fixed())

	// Fail before prompting when the name is already known.
	if fixed[collect.FieldName] {
		if err := c.checkTarget(cwd, opts); err != nil {
			return err
		}
	}

	r := c.newRunner(logger)

	if !loader.Bool(config.KeyYes) {
		detected := runner.DetectPackageManagers(ctx, r)
		opts, err = c.newCollector(cmd, detected).Collect(ctx, opts, fixed)
		if err != nil {
			return err
		}
	}
	if err := c.checkTarget(cwd, opts); err != nil {
		return err
	}

	root := filepath.Join(cwd, opts.ProjectName)
	logger.Info("scaffolding workspace",
		zap.String("root", root),
		zap.String("frontend", opts.Frontend.String()),
		zap.String("http", opts.HTTPServer.String()),
		zap.Bool("docs", opts.IncludeDocs),
		zap.Bool("ws", opts.IncludeWS),
		zap.Bool("tailwind", opts.IncludeTailwind),
		zap.String("package_manager", opts.PackageManager.String()),
	)

	quiet := loader.Bool(config.KeyQuiet)
	reporter := c.reporter(cmd.OutOrStdout(), quiet)

	env := &pipeline.Env{
		Options:   opts,
		Root:      root,
		FS:        c.fs,
		Runner:    r,
		Templates: c.templates,
		Logger:    logger,
	}
	result, runErr := pipeline.New(pipeline.Steps(opts), pipeline.WithReporter(reporter)).Run(ctx, env)
	if err := reporter.Close(); err != nil {
		logger.Warn("progress output failed", zap.Error(err))
	}
	if runErr != nil {
		logger.Error("scaffolding failed", zap.Error(runErr))
		return runErr
	}
	logger.Debug("pipeline finished",
		zap.Strings("completed", result.Completed),
		zap.Strings("skipped", result.Skipped),
	)

	if quiet {
		return nil
	}

	ws := workspace.New(c.fs, root, workspace.WithStrictWorkspaces(true))
	if err := ws.Detect(); err != nil {
		logger.Warn("failed to inspect generated workspace", zap.Error(err))
	} else {
		logger.Debug("detected workspace projects",
			zap.Int("apps", len(ws.ProjectsOfType(models.ProjectTypeApp))),
			zap.Int("packages", len(ws.ProjectsOfType(models.ProjectTypePackage))),
			zap.Strings("names", ws.GetProjectNames()),
		)
	}

	report, err := tui.RenderSummary(tui.Summary{
		Options:  opts,
		Projects: ws.Projects,
		Duration: time.Since(started),
	})
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), report)

	return nil
}

func (c *CreateCommand) checkTarget(cwd string, opts models.Options) error {
	if err := models.ValidateProjectName(opts.ProjectName); err != nil {
		return err
	}
	return workspace.EnsureEmptyTarget(c.fs, filepath.Join(cwd, opts.ProjectName))
}

func (c *CreateCommand) reporter(out io.Writer, quiet bool) progressReporter {
	switch {
	case quiet:
		return silentReporter{}
	case c.terminal:
		return tui.NewSpinnerReporter(out)
	default:
		return tui.NewPlainReporter(out)
	}
}

type silentReporter struct{}

func (silentReporter) StepStarted(pipeline.Step)       {}
func (silentReporter) StepSucceeded(pipeline.Step)     {}
func (silentReporter) StepSkipped(pipeline.Step)       {}
func (silentReporter) StepFailed(pipeline.Step, error) {}
func (silentReporter) Close() error                    { return nil }

// Execute runs the root command against the real filesystem and processes.
func Execute(ctx context.Context) error {
	fs := filesystem.NewOSFileSystem()

	rootCmd := NewRootCommand(fs)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, collect.ErrAborted) {
			return err
		}
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
