package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"palantir/internal/commons"
	"palantir/internal/config"
	"palantir/internal/infrastructure/logger"
	"palantir/internal/infrastructure/metrics"
	"palantir/internal/infrastructure/mysql"
	"palantir/internal/infrastructure/rabbitmq"
	"palantir/internal/notification"
	"palantir/internal/server"
	"palantir/internal/tracking"
	"palantir/internal/waitlist"
)

func main() {
	cfg, err := commons.LoadConfig("internal/config/config.yaml")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	var db *sql.DB
	if cfg.Storage.Driver != config.StorageDriverMemory {
		db, err = mysql.NewConnection(cfg.Database)
		if err != nil {
			zapLogger.Fatal("connecting to database", zap.Error(err))
		}
		defer db.Close()
		zapLogger.Info("database connected")
	}

	m := metrics.New()

	var gateway notification.Gateway = notification.NewLogGateway(zapLogger)
	if cfg.RabbitMQ.Enabled {
		conn, err := rabbitmq.NewConnection(cfg.RabbitMQ)
		if err != nil {
			zapLogger.Fatal("connecting to rabbitmq", zap.Error(err))
		}
		defer conn.Close()
		gateway = notification.NewRabbitMQGateway(conn.Channel(), cfg.RabbitMQ.Exchange)
		zapLogger.Info("rabbitmq connected", zap.String("exchange", cfg.RabbitMQ.Exchange))
	}
	gateway = notification.NewCircuitBreakerGateway(gateway, notification.BreakerSettings{
		Name:             "notification-gateway",
		Timeout:          cfg.Notification.BreakerTimeout,
		FailureThreshold: cfg.Notification.BreakerFailures,
	}, m, zapLogger)

	dispatcher := notification.NewDispatcher(notification.DispatcherSettings{
		Workers:     cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
		SendTimeout: cfg.Notification.SendTimeout,
	}, m, zapLogger)

	trackingModule, err := tracking.NewModule(db, cfg, gateway, dispatcher, m, zapLogger)
	if err != nil {
		zapLogger.Fatal("building tracking module", zap.Error(err))
	}

	waitlistCtrl, err := waitlist.NewModule(db, cfg, m, zapLogger)
	if err != nil {
		zapLogger.Fatal("building waitlist module", zap.Error(err))
	}

	router := server.NewRouter(m.Handler(), zapLogger, trackingModule.Controller, waitlistCtrl)

	srv := server.New(cfg.Server, router, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		zapLogger.Error("server stopped with error", zap.Error(err))
	}

	dispatcher.Close()
	zapLogger.Info("server stopped gracefully")
}
