package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/taskhive/taskhive-backend/config"
	"github.com/taskhive/taskhive-backend/internal/bootstrap"
	"github.com/taskhive/taskhive-backend/internal/logging"
	"github.com/taskhive/taskhive-backend/internal/worker"
)

func main() {
	once := flag.Bool("once", false, "run the purge once and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.WaitForDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.DSN(),
		MaxConns: int32(cfg.Database.MaxConns),
	}, logger)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	purger := worker.NewPurger(db, logger, cfg.Worker.RetentionDays)

	if *once {
		if err := purger.Run(ctx); err != nil {
			logger.Fatal("purge failed", zap.Error(err))
		}
		return
	}

	sched := worker.NewScheduler(logger)
	if err := sched.Add(cfg.Worker.PurgeSchedule, "retention-purge", purger.Run); err != nil {
		logger.Fatal("schedule purge", zap.Error(err))
	}
	sched.Start()
	logger.Info("worker started",
		zap.String("purge_schedule", cfg.Worker.PurgeSchedule),
		zap.Int("retention_days", cfg.Worker.RetentionDays))

	<-ctx.Done()
	logger.Info("worker stopping")
	<-sched.Stop().Done()
	logger.Info("worker stopped")
}
