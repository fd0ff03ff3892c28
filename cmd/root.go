package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamusis/novagen/internal/assembler"
	"github.com/kamusis/novagen/internal/catalog"
	"github.com/kamusis/novagen/internal/config"
	"github.com/kamusis/novagen/internal/logging"
)

var (
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "novagen",
	Short:         "novagen: rank design-system snippets and merge them into one component",
	SilenceUsage:  true, // don't print usage on operational errors
	SilenceErrors: true, // Execute prints the error once
	Long: `novagen ranks the snippets of a design-system component catalog against
a free-text request and merges the best matches into a single React component,
using a generative model when one is configured and a deterministic merger
otherwise. Results are cached per query.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.novagen/novagen.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log_level)")
}

// Execute is called by main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the --config file, or ~/.novagen/novagen.yaml.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'novagen init' to write a default one.", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg and --log-level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	return logging.New(level, cfg.LogJSON)
}

// loadCatalog loads the configured catalog, or the embedded one.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load catalog: %w", err)
	}
	return cat, nil
}

// session is the config, logger and wired components a command runs with.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	comps  *assembler.Components
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	comps, err := assembler.FromConfig(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, comps: comps}, nil
}

func (s *session) Close() {
	if err := s.comps.Close(); err != nil {
		s.logger.Warn("cannot close cache", zap.Error(err))
	}
	_ = s.logger.Sync()
}
