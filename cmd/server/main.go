package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockmonitor/internal/app"
	"github.com/mamadbah2/stockmonitor/internal/config"
	"github.com/mamadbah2/stockmonitor/internal/scheduler"
	"github.com/mamadbah2/stockmonitor/internal/server/handlers"
	"github.com/mamadbah2/stockmonitor/internal/server/router"
	whatsappsvc "github.com/mamadbah2/stockmonitor/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/stockmonitor/pkg/clients/whatsapp"
	"github.com/mamadbah2/stockmonitor/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(logger.Options{Level: cfg.Log.Level, Development: cfg.Log.Development}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(initCtx, cfg, baseLogger)
	cancelInit()
	if err != nil {
		baseLogger.Fatal("failed to init application", zap.Error(err))
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close connections", zap.Error(err))
		}
	}()

	var (
		broadcaster    scheduler.Broadcaster
		webhookHandler *handlers.WebhookHandler
	)
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, application.Reporting, cfg.Monitor.ConsumptionDays, logger.Named(baseLogger, "svc.whatsapp"))
		broadcaster = messagingSvc
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, logger.Named(baseLogger, "handlers.whatsapp"))
	} else {
		baseLogger.Warn("whatsapp token missing, webhook and notifications disabled")
	}

	sched := scheduler.NewScheduler(*cfg, application.Reporting, broadcaster, logger.Named(baseLogger, "scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	var notifier handlers.Notifier
	if broadcaster != nil {
		notifier = sched
	}
	stockHandler := handlers.NewStockHandler(application.Reporting, notifier, cfg.Monitor.ConsumptionDays, logger.Named(baseLogger, "handlers.stock"))
	engine := router.New(webhookHandler, stockHandler, logger.Named(baseLogger, "router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("source", cfg.Monitor.Source))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
