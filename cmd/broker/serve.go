package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gogotex/pubsub/backend/broker/internal/config"
	"github.com/gogotex/pubsub/backend/broker/internal/server"
	"github.com/gogotex/pubsub/backend/broker/pkg/logger"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the broker HTTP server",
	Long: `Start the broker HTTP server.

Configuration is read from the environment (and the --env-file dotenv file):
  SERVER_PORT               - listen port (default: 5001)
  SERVER_HOST               - listen host (default: 0.0.0.0)
  LOG_LEVEL                 - debug, info, warn, error
  LOG_FORMAT                - json or console
  REDIS_HOST / REDIS_PORT   - optional redis for rate limiting
  RATE_LIMIT_ENABLED        - enable per-client rate limiting
  DISPATCH_TIMEOUT_SECONDS  - per-delivery timeout, 0 for none`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigFrom(envFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	logger.Infof("config loaded: env=%s redis=%v rate_limit=%v", cfg.Server.Environment, cfg.Redis.Host != "", cfg.RateLimit.Enabled)

	srv, err := server.New(cfg, logger.Logger())
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run (blocks until shutdown)
	return srv.Run(ctx)
}
