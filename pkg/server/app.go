package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"AlbionPulse/internal/aggregate"
	"AlbionPulse/internal/ingest"
	"AlbionPulse/internal/usecase"
	pkgch "AlbionPulse/pkg/clickhouse"
	"AlbionPulse/pkg/config"
	xhttp "AlbionPulse/pkg/http"
	pkgkafka "AlbionPulse/pkg/kafka"
	applogger "AlbionPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	adapter    *ingest.Adapter
	updater    *aggregate.Updater
	consumer   *pkgkafka.Consumer
	handlers   []pkgkafka.MessageHandler
	chClient   *pkgch.Client
	httpServer *xhttp.Server
	processor  *usecase.QuoteProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	adapter *ingest.Adapter,
	updater *aggregate.Updater,
	consumer *pkgkafka.Consumer,
	handlers []pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	httpHandler xhttp.Handler,
	processor *usecase.QuoteProcessor,
) *App {
	srv := xhttp.NewServer(httpHandler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
	return &App{
		cfg:        cfg,
		log:        log,
		adapter:    adapter,
		updater:    updater,
		consumer:   consumer,
		handlers:   handlers,
		chClient:   chClient,
		httpServer: srv,
		processor:  processor,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the push-feed subscriber
	if a.adapter != nil {
		if err := a.adapter.Start(ctx); err != nil {
			a.log.Error("ingest adapter start error", applogger.Error(err))
		} else {
			a.log.Info("ingest adapter started", applogger.String("url", a.cfg.Ingest.WebSocketURL))
		}
	}

	// Start consumer if configured
	if a.consumer != nil && len(a.handlers) > 0 {
		for _, h := range a.handlers {
			a.consumer.RegisterHandler(h)
		}
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.Int("handlers", len(a.handlers)))
	}

	// Start the periodic aggregation job
	if a.updater != nil {
		a.updater.Start(ctx)
		a.log.Info("aggregation updater started",
			applogger.Duration("interval", a.cfg.Aggregation.Interval))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services. The ingest subscription stops
// first; in-flight aggregation runs to completion.
func (a *App) shutdown(ctx context.Context) error {
	if a.adapter != nil {
		if err := a.adapter.Stop(); err != nil {
			a.log.Warn("ingest adapter stop error", applogger.Error(err))
		}
	}

	if a.updater != nil {
		a.updater.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.processor != nil {
		a.processor.Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
