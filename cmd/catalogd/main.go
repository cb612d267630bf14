package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/projcat/internal/catalog"
	"github.com/dshills/projcat/internal/config"
	"github.com/dshills/projcat/internal/logging"
	"github.com/dshills/projcat/internal/searcher"
	"github.com/dshills/projcat/internal/storage"
	"github.com/dshills/projcat/internal/taxonomy"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "catalogd",
	Short: "Project catalog server",
	Long: `catalogd stores projects with category-tagged labels and answers filtered,
fuzzy-ranked queries over HTTP and MCP.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("catalogd version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to YAML config file (env vars with prefix "+config.EnvPrefix+" override it)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired components shared by the subcommands
type app struct {
	config   *config.Config
	logger   *zap.Logger
	store    *storage.SQLiteStorage
	taxonomy *taxonomy.Taxonomy
	service  *catalog.Service
}

// newApp loads configuration and opens the store. Callers must Close it.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}

	tax := taxonomy.Default()
	if cfg.Taxonomy.Path != "" {
		tax, err = taxonomy.Load(cfg.Taxonomy.Path)
		if err != nil {
			return nil, err
		}
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	logger.Info("catalog opened",
		zap.String("path", cfg.Storage.Path),
		zap.String("driver", storage.DriverName),
		zap.String("build_mode", storage.BuildMode),
		zap.Strings("categories", tax.Categories()),
	)

	s := searcher.NewSearcher(store, tax, logger, searcher.Options{
		CacheSize: cfg.Search.CacheSize,
		CacheTTL:  cfg.Search.CacheTTL,
	})

	return &app{
		config:   cfg,
		logger:   logger,
		store:    store,
		taxonomy: tax,
		service:  catalog.NewService(store, tax, s, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close catalog", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
