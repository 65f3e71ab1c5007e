package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpadapter "github.com/chiwei-platform/lifecycle-tracker/internal/adapter/http"
	"github.com/chiwei-platform/lifecycle-tracker/internal/service"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	store, err := a.openStore(ctx)
	if err != nil {
		a.log.Error("failed to open store", zap.Error(err))
		return err
	}

	// Catalog client (answers 503 when no api key is configured)
	catalog := a.catalogClient()
	go catalog.Start(ctx)

	// Services
	techSvc := service.NewTechnologyService(store.Technologies())
	serverSvc := service.NewServerService(store.Servers(), store.Technologies())
	appSvc := service.NewApplicationService(store.Applications(), store.Servers(), store.Technologies())
	remSvc := service.NewRemediationService(store.Remediations(), store.Servers(), store.Technologies())
	dashSvc := service.NewDashboardService(store, a.metrics)
	catalogSvc := service.NewCatalogService(catalog, store.Technologies(), store.Servers(), a.log)

	// Scheduled catalog import
	if spec := a.cfg.Catalog.SyncSchedule; spec != "" {
		if !a.cfg.Catalog.Enabled() {
			a.log.Warn("catalog sync schedule ignored, no api key configured", zap.String("schedule", spec))
		} else if err := catalogSvc.StartSync(ctx, spec); err != nil {
			return err
		}
	}

	// HTTP routes
	handler := httpadapter.NewRouter(
		httpadapter.NewTechnologyHandler(techSvc),
		httpadapter.NewServerHandler(serverSvc),
		httpadapter.NewApplicationHandler(appSvc),
		httpadapter.NewRemediationHandler(remSvc),
		httpadapter.NewDashboardHandler(dashSvc),
		httpadapter.NewCatalogHandler(catalogSvc),
		httpadapter.RouterOptions{
			APIToken:        a.cfg.HTTP.APIToken,
			RateLimit:       a.cfg.HTTP.RateLimit.Requests,
			RateLimitWindow: a.cfg.HTTP.RateLimit.Window,
			Metrics:         a.metrics.Handler(),
			Observer:        a.metrics,
		},
		a.log,
	)

	srv := &http.Server{
		Addr:              ":" + a.cfg.HTTP.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("environment", a.cfg.Environment),
			zap.String("data_source", a.cfg.DataSource),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.log.Error("server error", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	// Graceful shutdown
	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server shutdown error", zap.Error(err))
		return err
	}
	return nil
}
