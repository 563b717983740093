package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "ecoroute/docs"
	"ecoroute/internal/broker"
	"ecoroute/internal/config"
	"ecoroute/internal/geometry"
	"ecoroute/internal/handlers"
	"ecoroute/internal/hub"
	"ecoroute/internal/logger"
	"ecoroute/internal/models"
	"ecoroute/internal/ordering"
	"ecoroute/internal/repository"
	"ecoroute/internal/server"
	"ecoroute/internal/service"

	"golang.org/x/sync/errgroup"
)

// @title        EcoRoute API
// @version      1.0
// @description  Live waste-bin telemetry, collection alerts and route planning.
// @BasePath     /
func main() {
	// load configs/config.yml, .env and ECOROUTE_* overrides
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel, logger.FormatConsole).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// wire dependencies
	repos := repository.NewRepository(models.Position{Lat: cfg.Store.DefaultLat, Lng: cfg.Store.DefaultLng}, cfg.Events.Capacity)
	notes := hub.New()

	sub, err := broker.New(cfg.Broker, log)
	if err != nil {
		log.Fatalw("failed to init broker", "err", err)
	}
	orderer, err := ordering.NewGemini(ctx, ordering.Config{
		APIKey: cfg.Ordering.APIKey,
		Model:  cfg.Ordering.Model,
	}, log.Named("ordering"))
	if err != nil {
		log.Fatalw("failed to init ordering client", "err", err)
	}
	geo := geometry.NewOSRM(geometry.Config{
		BaseURL: cfg.Geometry.BaseURL,
		Profile: cfg.Geometry.Profile,
		Timeout: cfg.Geometry.Timeout,
	}, nil)

	services := service.NewService(repos, service.Deps{
		Orderer:      orderer,
		Geometry:     geo,
		Notifier:     notes,
		Link:         sub,
		OfflineAfter: cfg.Staleness.OfflineAfter,
		OrderTimeout: cfg.Ordering.Timeout,
		Log:          log,
	})
	apiHandler := handlers.NewHandler(services, notes, log).WithInterval(cfg.WS.Interval)

	srv := server.New(server.Timeouts{
		ReadHeader: cfg.HTTP.ReadHeaderTimeout,
		Write:      cfg.HTTP.WriteTimeout,
		Idle:       cfg.HTTP.IdleTimeout,
	})

	g, gctx := errgroup.WithContext(ctx)

	// telemetry: one goroutine, receipt order
	g.Go(func() error {
		return sub.Run(gctx, func(payload []byte, receivedAt time.Time) {
			services.Telemetry.Ingest(context.WithoutCancel(gctx), payload, receivedAt)
		})
	})

	g.Go(func() error {
		services.Staleness.Run(gctx, cfg.Staleness.Tick)
		return nil
	})

	runHTTPServer(g, srv, cfg.Port, apiHandler, log)
	waitForShutdown(gctx, g, srv, cfg.HTTP.ShutdownTimeout, log)

	log.Infow("starting", "port", cfg.Port, "broker", cfg.Broker.Kind, "topic", cfg.Broker.Topic)
	if err := g.Wait(); err != nil {
		log.Errorw("stopped with error", "err", err)
		os.Exit(1)
	}
	log.Infow("stopped")
}

// runHTTPServer serves the API until the server is shut down.
func runHTTPServer(g *errgroup.Group, srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	g.Go(func() error {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Errorw("error starting server", "err", err)
			return err
		}
		return nil
	})
}

// waitForShutdown stops the HTTP server once a signal arrives or any
// background worker fails.
func waitForShutdown(ctx context.Context, g *errgroup.Group, srv *server.Server, timeout time.Duration, log *logger.Logger) {
	g.Go(func() error {
		<-ctx.Done()
		log.Infow("shutting down server...")

		// allow in-flight requests to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorw("server forced to shutdown", "err", err)
			return err
		}
		return nil
	})
}
