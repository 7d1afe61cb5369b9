package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/shutterbook/simulator/internal/core/api"
	"github.com/shutterbook/simulator/internal/core/auth"
	"github.com/shutterbook/simulator/internal/core/config"
	"github.com/shutterbook/simulator/internal/core/db"
	"github.com/shutterbook/simulator/internal/core/httpapi"
	"github.com/shutterbook/simulator/internal/core/server"
	"github.com/shutterbook/simulator/internal/core/store"
	"github.com/shutterbook/simulator/internal/simulator"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTimeout   = 10 * time.Minute
	httpShutdownTimeout  = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin gRPC API and the public simulator API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("admin-host", "0.0.0.0", "admin gRPC server host")
	serveCmd.Flags().Int("admin-port", 50051, "admin gRPC server port")
	serveCmd.Flags().String("http-host", "0.0.0.0", "public HTTP server host")
	serveCmd.Flags().Int("http-port", 8080, "public HTTP server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(cmd, map[string]string{
		"admin_api.host":  "admin-host",
		"admin_api.port":  "admin-port",
		"public_api.host": "http-host",
		"public_api.port": "http-port",
	})
	if err != nil {
		return err
	}
	logger := initLogger(cfg.Logging, cmd.ErrOrStderr())

	location, err := cfg.Pricing.LoadLocation()
	if err != nil {
		return err
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := requireMigrations(ctx, database); err != nil {
		return err
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set SB_HMAC_SECRET environment variable)")
	}

	st := store.New(queries, location, logger)
	authenticator := auth.NewAuthenticator(secrets, queries)

	service, err := api.NewFormBuilderService(st, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	grpcServer, err := server.NewGRPCServer(&cfg.AdminAPI, service, authenticator, logger)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := httpapi.NewIPRateLimiter(httpapi.RateLimiterConfig{
		RequestsPerSecond: cfg.PublicAPI.RequestsPerSecond,
		BurstSize:         cfg.PublicAPI.Burst,
	})
	sim := simulator.New(st, location, logger)
	httpServer, err := server.NewHTTPServer(&cfg.PublicAPI, httpapi.NewRouter(sim, database, limiter, logger))
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	go sweepLimiter(ctx, limiter)

	logger.Info().
		Str("version", Version).
		Str("admin_addr", fmt.Sprintf("%s:%d", cfg.AdminAPI.Host, cfg.AdminAPI.Port)).
		Str("http_addr", httpServer.Addr()).
		Str("location", location.String()).
		Msg("Starting shutterbook")

	errChan := make(chan error, 2)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()
	go func() {
		errChan <- httpServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-errChan:
		logger.Error().Err(runErr).Msg("Server stopped unexpectedly")
	case <-sigChan:
		logger.Info().Msg("Shutting down gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server forced to shutdown")
	}
	if err := grpcServer.Shutdown(context.Background()); err != nil {
		logger.Error().Err(err).Msg("gRPC server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
	return runErr
}

// sweepLimiter drops idle per-IP limiters until ctx ends.
func sweepLimiter(ctx context.Context, limiter *httpapi.IPRateLimiter) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep(limiterIdleTimeout)
		}
	}
}
