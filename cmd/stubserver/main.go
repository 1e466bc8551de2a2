package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatsync/internal/app"
	"github.com/vovakirdan/chatsync/internal/config"
	applog "github.com/vovakirdan/chatsync/internal/log"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath        string
		addr              string
		dbPath            string
		logLevel          string
		readHeaderTimeout time.Duration
		shutdownTimeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:          "stubserver",
		Short:        "Reference chat backend for local development",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootLogger := applog.New("info")
			cfg, path, err := config.Load(bootLogger, configPath)
			if err != nil {
				bootLogger.Error().Err(err).Msg("load config")
				return err
			}
			cfg.UpdateFrom(config.Config{
				LogLevel: logLevel,
				Stub: config.StubConfig{
					Addr:              addr,
					DatabasePath:      dbPath,
					ReadHeaderTimeout: readHeaderTimeout,
					ShutdownTimeout:   shutdownTimeout,
				},
			})
			if err := cfg.Validate(); err != nil {
				bootLogger.Error().Err(err).Msg("invalid config")
				return err
			}

			logger := applog.New(cfg.LogLevel)
			logger.Info().Str("config", path).Msg("configuration loaded")

			server, err := app.NewServer(cfg.Stub, logger)
			if err != nil {
				logger.Error().Err(err).Msg("init server")
				return err
			}

			logger.Info().Str("addr", cfg.Stub.Addr).Msg("starting chat stub server")
			if err := server.Run(cmd.Context()); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "config file (default ./chatsync.yaml)")
	flags.StringVar(&addr, "addr", "", "HTTP listen address")
	flags.StringVar(&dbPath, "db", "", "sqlite database path")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flags.DurationVar(&readHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	flags.DurationVar(&shutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	return cmd
}
