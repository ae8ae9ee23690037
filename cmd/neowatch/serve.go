package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"neo-overwatch/api"
	"neo-overwatch/api/middleware"
	"neo-overwatch/api/services"
	"neo-overwatch/pkg/config"
	"neo-overwatch/pkg/logger"
	embeddednats "neo-overwatch/pkg/services/embedded-nats"
	"neo-overwatch/pkg/services/workers"
	"neo-overwatch/pkg/shared"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve lookups and queries over HTTP and NATS",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP port (default 8080)")
	serveCmd.Flags().Bool("nats", true, "run the embedded NATS server and workers")
	serveCmd.Flags().Int("nats-port", 0, "NATS client port, -1 for a random port (default 4222)")
	_ = viper.BindPFlag("http.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("nats.enabled", serveCmd.Flags().Lookup("nats"))
	_ = viper.BindPFlag("nats.port", serveCmd.Flags().Lookup("nats-port"))

	rootCmd.AddCommand(serveCmd)
}

func startNATS(cfg config.NATSConfig, log *logger.Logger) (*embeddednats.EmbeddedNATS, error) {
	natsCfg := embeddednats.DefaultConfig()
	natsCfg.Port = cfg.Port
	natsCfg.DataDir = cfg.DataDir

	en, err := embeddednats.New(natsCfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedded NATS: %w", err)
	}
	if err := en.Start(); err != nil {
		return nil, fmt.Errorf("failed to start embedded NATS: %w", err)
	}
	if err := en.CreateEventStreams(); err != nil {
		_ = en.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create event streams: %w", err)
	}
	return en, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	database, err := loadDatabase(ctx, cfg, appLog)
	if err != nil {
		return err
	}

	var (
		publisher services.EventPublisher
		health    api.HealthChecker
		natsSrv   *embeddednats.EmbeddedNATS
		manager   *workers.Manager
	)
	if cfg.NATS.Enabled {
		natsSrv, err = startNATS(cfg.NATS, appLog)
		if err != nil {
			return err
		}
		publisher, health = natsSrv, natsSrv

		manager, err = workers.NewManager(natsSrv, database, appLog)
		if err != nil {
			_ = natsSrv.Shutdown(context.Background())
			return fmt.Errorf("failed to create worker manager: %w", err)
		}
		if err := manager.Start(); err != nil {
			_ = natsSrv.Shutdown(context.Background())
			return fmt.Errorf("failed to start workers: %w", err)
		}

		stats := database.Stats()
		if err := natsSrv.PublishEvent(shared.EventTypeLoaded, shared.SubjectEventLoaded, map[string]interface{}{
			"source":     cfg.Source,
			"neos":       stats.NEOs,
			"approaches": stats.Approaches,
			"orphans":    stats.Orphans,
		}); err != nil {
			appLog.Warn("failed to publish load event", "error", err)
		}
	} else {
		appLog.Info("NATS disabled")
	}

	mux := http.NewServeMux()
	api.NewHandlers(database, publisher, appLog).RegisterRoutes(mux, cfg.APIToken, health)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      middleware.CORS(middleware.RequestLogger(appLog)(mux)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLog.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if manager != nil {
			if err := manager.Stop(); err != nil {
				errs = append(errs, err)
			}
		}
		if natsSrv != nil {
			if err := natsSrv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	appLog.Info("shutdown complete")
	return nil
}
