package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/guiyumin/narrify/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server that summarizes videos on request.

Examples:
  narrify serve              # Start server on the configured port (default 8000)
  narrify serve -p 9000      # Start server on port 9000

API Endpoints:
  GET  /api/health           # Health check
  POST /api/summarize        # {"video_id": "..."} -> summary
  GET  /api/records          # Stored summaries, newest first`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP listen port (default: 8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Resolve port (flag > config)
	port := servePort
	if port == 0 {
		port = cfg.Server.Port
	}

	st, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	logger := slog.Default()
	opts := server.Options{
		Port:           port,
		APIKey:         cfg.Server.APIKey,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Records:        st,
		Logger:         logger,
	}

	// Listing still works without AI keys, so a wiring failure only disables summarize
	pipeline, err := newPipeline(cfg, st, logger)
	if err != nil {
		opts.Unavailable = err
	} else {
		opts.Pipeline = pipeline
	}

	srv := server.NewServer(opts)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("shutdown failed", slog.Any("error", err))
		}
	}()

	return srv.Start()
}
