package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/JonMunkholm/certvault/internal/config"
	"github.com/JonMunkholm/certvault/internal/core"
	"github.com/JonMunkholm/certvault/internal/logging"
	"github.com/JonMunkholm/certvault/internal/store"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const programName = "certvault"

// app carries what every subcommand needs once flags and config are loaded.
type app struct {
	envFile string
	debug   bool

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error(programName+" failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Store and look up certificate records",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	rootCmd.PersistentFlags().
		StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment (empty to skip)")
	rootCmd.PersistentFlags().
		BoolVarP(&a.debug, "debug", "D", false, "enable debug logging")

	rootCmd.AddCommand(a.serveCommand())
	rootCmd.AddCommand(a.migrateCommand())
	rootCmd.AddCommand(a.importCommand())

	return rootCmd
}

// load reads the dotenv file, the configuration and sets up logging.
func (a *app) load() error {
	if a.envFile != "" {
		// Overload: values in the file win over the inherited environment
		err := godotenv.Overload(a.envFile)
		switch {
		case err == nil:
			slog.Info("loaded env file (overwriting existing env vars)", "path", a.envFile)
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("no env file found, using environment variables", "path", a.envFile)
		default:
			return fmt.Errorf("load env file %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return err
	}
	if a.debug {
		cfg.Logging.Level = "debug"
	}

	a.cfg = cfg
	a.logger = logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	a.logger.Debug("configuration loaded", "config", cfg.String())
	return nil
}

// openService opens the configured store and builds the service on top of it.
// The caller must Close the returned backend.
func (a *app) openService(ctx context.Context) (*core.Service, store.Backend, *prometheus.Registry, error) {
	backend, err := store.Open(ctx, a.cfg.Database, a.logger)
	if err != nil {
		return nil, nil, nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	service := core.NewService(backend, a.cfg.Import, registry)
	return service, backend, registry, nil
}
