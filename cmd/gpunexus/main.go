package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/oklog/run"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/gpunexus/internal/config"
	"github.com/san-kum/gpunexus/internal/explain"
	"github.com/san-kum/gpunexus/internal/gpu"
	"github.com/san-kum/gpunexus/internal/log"
	loglogrus "github.com/san-kum/gpunexus/internal/log/logrus"
	"github.com/san-kum/gpunexus/internal/parallel"
	"github.com/san-kum/gpunexus/internal/pipeline"
	"github.com/san-kum/gpunexus/internal/tui"
)

// Version is set via ldflags.
var Version = "dev"

type rootOptions struct {
	configPath string
	debug      bool
	logFormat  string
	logFile    string
	theme      string

	stdout io.Writer
	stderr io.Writer

	cfg     *config.Config
	logger  log.Logger
	closers []io.Closer
}

func (o *rootOptions) close() {
	for _, c := range o.closers {
		c.Close()
	}
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "gpunexus",
		Short:         "interactive GPU architecture, pipeline and parallelism lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file path (yaml)")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.StringVar(&opts.logFormat, "log-format", "text", "log format (text|json)")
	pf.StringVar(&opts.logFile, "log-file", "", "append logs to this file")
	pf.StringVar(&opts.theme, "theme", config.DefaultTheme, "color theme")

	root.AddCommand(
		newRaceCommand(opts),
		newBenchCommand(opts),
		newTopicsCommand(opts),
		newExplainCommand(opts),
		newAskCommand(opts),
		newPresetsCommand(opts),
		newConfigCommand(opts),
	)
	root.SetOut(opts.stdout)
	root.SetErr(opts.stderr)
	return root
}

// setup loads the config, applies explicitly set flags and builds the logger.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("theme") || cfg.Theme == "" {
		cfg.Theme = o.theme
	}
	if flags.Changed("debug") {
		cfg.Log.Debug = o.debug
	}
	if flags.Changed("log-format") || cfg.Log.Format == "" {
		cfg.Log.Format = o.logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = o.logFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	o.cfg = cfg

	// The TUI owns the terminal, so it only logs to a file.
	out := o.stderr
	if !cmd.HasParent() {
		out = nil
	}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("could not open log file: %w", err)
		}
		o.closers = append(o.closers, f)
		out = f
	}
	o.logger = getLogger(cfg.Log, out)
	return nil
}

func getLogger(cfg config.LogConfig, out io.Writer) log.Logger {
	if out == nil {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = out
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if cfg.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch cfg.Format {
	case "json":
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})
	logger.Debugf("Debug level is enabled")
	return logger
}

// newRequester builds the explanation requester. Without a credential no
// remote client is created and every call returns its fallback text.
func newRequester(ctx context.Context, opts *rootOptions) (*explain.Requester, error) {
	key := opts.cfg.APIKey()
	rc := explain.RequesterConfig{APIKey: key, Logger: opts.logger}
	if key == "" {
		opts.logger.Warningf("no API key in $%s or $%s, assistant answers are disabled", opts.cfg.Assistant.APIKeyEnv, config.FallbackAPIKeyEnv)
		return explain.NewRequester(rc)
	}

	gen, err := explain.NewGemini(ctx, explain.GeminiConfig{APIKey: key, Model: opts.cfg.Assistant.Model})
	if err != nil {
		return nil, err
	}
	rc.Generator = gen
	return explain.NewRequester(rc)
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	sim, err := parallel.New(opts.cfg.Parallel(), parallel.WithLogger(opts.logger))
	if err != nil {
		return err
	}
	requester, err := newRequester(ctx, opts)
	if err != nil {
		return err
	}

	return tui.Run(ctx, tui.Deps{
		Simulator: sim,
		Pipeline:  pipeline.New(gpu.Stages(), opts.cfg.Pipeline.Interval),
		Requester: requester,
		Theme:     opts.cfg.Theme,
		Logger:    opts.logger,
	})
}

// Run runs the main application.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts := &rootOptions{stdout: stdout, stderr: stderr, logger: log.Noop}
	defer opts.close()

	root := newRootCommand(opts)
	root.SetArgs(args)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				opts.logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				return root.ExecuteContext(ctx)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

func main() {
	if err := Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
