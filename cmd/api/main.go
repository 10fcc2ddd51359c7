package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/visitor-access/internal/api/http"
	"github.com/spec-kit/visitor-access/internal/api/http/handlers"
	"github.com/spec-kit/visitor-access/internal/config"
	"github.com/spec-kit/visitor-access/internal/events"
	"github.com/spec-kit/visitor-access/internal/observability"
	"github.com/spec-kit/visitor-access/internal/persistence"
	"github.com/spec-kit/visitor-access/internal/service"
	"github.com/spec-kit/visitor-access/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	store, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer store.Close() //nolint:errcheck

	dispatcher := events.NewInMemoryDispatcher(logger)
	auditService := service.NewAuditService(dispatcher, logger, metrics)
	worker.StartAuditWorker(auditService)

	accessService := service.NewAccessService(service.AccessDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
		Location:   cfg.Report.Location,
	})
	if err := accessService.Load(ctx); err != nil {
		logger.Fatal("failed to load state", zap.Error(err))
	}
	metrics.SetActiveVisits(len(accessService.ListActive()))

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Driver, store),
		Visitors: handlers.NewVisitorsHandler(accessService),
		Visits:   handlers.NewVisitsHandler(accessService),
		Reports:  handlers.NewReportsHandler(accessService),
		Gatherer: registry,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", zap.Error(err))
	}
}
