package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bsaid97/go-seoul-density-map/config"
	"github.com/bsaid97/go-seoul-density-map/pipeline"
)

type options struct {
	configPath string
	envPath    string
	excel      string
	sheet      string
	url        string
	out        string
	export     string
	timeout    time.Duration
	noOpen     bool
	verbose    bool
	progress   bool
	// logger builds the zap logger; nil means newLogger.
	logger     func(config.LoggingConfig) (*zap.Logger, error)
}

// errLogged marks an error already reported through the logger.
type errLogged struct{ error }

func (e errLogged) Unwrap() error { return e.error }

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "seoulmap",
		Short:         "Build a population density map of Seoul's administrative dongs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			build := opts.logger
			if build == nil {
				build = newLogger
			}
			logger, err := build(cfg.Logging)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := run(cmd.Context(), cfg, logger); err != nil {
				logger.Error("Build failed", zap.Error(err))
				return errLogged{err}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.envPath, "env", ".env", "dotenv file with SEOULMAP_* overrides")
	flags.StringVar(&opts.excel, "excel", "", "statistics workbook (.xlsx)")
	flags.StringVar(&opts.sheet, "sheet", "", "sheet name or zero-based index")
	flags.StringVar(&opts.url, "url", "", "boundary GeoJSON URL or local path")
	flags.StringVarP(&opts.out, "out", "o", "", "output HTML file")
	flags.StringVar(&opts.export, "export", "", "also write a zip with GeoJSON and shapefile")
	flags.DurationVar(&opts.timeout, "timeout", 0, "boundary fetch timeout")
	flags.BoolVar(&opts.noOpen, "no-open", false, "do not open the map in a browser")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&opts.progress, "progress", false, "show a spinner while fetching")

	return cmd
}

// loadConfig layers defaults, the YAML file, the environment and flags,
// in that order.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.envPath); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("excel") {
		cfg.Workbook.Path = opts.excel
	}
	if flags.Changed("sheet") {
		cfg.Workbook.Sheet = opts.sheet
	}
	if flags.Changed("url") {
		cfg.Boundary.URL = opts.url
	}
	if flags.Changed("out") {
		cfg.Output.HTMLPath = opts.out
	}
	if flags.Changed("export") {
		cfg.Output.ExportPath = opts.export
	}
	if flags.Changed("timeout") {
		cfg.Boundary.Timeout = opts.timeout
	}
	if opts.noOpen {
		cfg.Output.OpenBrowser = false
	}
	if opts.progress {
		cfg.Output.Progress = true
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("=== Starting Seoul density map build ===")

	result, err := pipeline.Run(ctx, cfg, logger)
	if err != nil {
		return err
	}

	path, err := filepath.Abs(result.HTMLPath)
	if err != nil {
		path = result.HTMLPath
	}
	logger.Info("[OK] Saved "+path,
		zap.Int("features", result.Features),
		zap.Int("matched", result.Join.Matched),
		zap.Int("districts", result.Districts))

	if cfg.Output.OpenBrowser {
		if err := browser.OpenFile(path); err != nil {
			logger.Debug("Could not open browser", zap.Error(err))
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(&options{}).ExecuteContext(ctx); err != nil {
		// Errors raised before the logger exists still reach the terminal.
		if !errors.As(err, new(errLogged)) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		stop()
		os.Exit(1)
	}
}
