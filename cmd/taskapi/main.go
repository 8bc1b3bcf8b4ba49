package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"task-manager/internal/config"
	"task-manager/internal/idempotency"
	"task-manager/internal/notify"
	"task-manager/internal/repository"
	"task-manager/internal/server"
	"task-manager/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatalf("db: %v", err)
	}
	defer func() {
		if err := repository.Close(db); err != nil {
			logger.WithError(err).Warn("close db")
		}
	}()
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatalf("db handle: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	deps := server.Deps{
		Tasks:      service.NewTaskService(taskRepo, userRepo, categoryRepo),
		Users:      service.NewUserService(userRepo),
		Categories: service.NewCategoryService(categoryRepo),
		DB:         sqlDB,
	}

	if cfg.RedisURL != "" {
		store, err := idempotency.Open(ctx, cfg.RedisURL, cfg.IdempotencyTTL)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer store.Close()
		deps.Idempotency = store
		logger.WithField("ttl", cfg.IdempotencyTTL).Info("idempotency keys enabled")
	}

	if cfg.DigestEnabled() {
		scheduler, err := startDigest(cfg, logger, service.NewDigestService(userRepo, taskRepo, categoryRepo, logger))
		if err != nil {
			logger.Fatalf("digest: %v", err)
		}
		defer scheduler.Stop()
	}

	srv := server.New(deps, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to shutdown server")
	}
	logger.Info("shutdown complete")
}

// startDigest schedules the open-task digest and starts the scheduler.
func startDigest(cfg config.Config, logger *log.Logger, digest *service.DigestService) (*service.SchedulerService, error) {
	var notifier service.Notifier = notify.NewLog(logger)
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		logger.WithField("bot", tg.Username()).Info("telegram digest enabled")
		notifier = tg
	}

	job := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sent, err := digest.SendAll(jobCtx, notifier, time.Now())
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("digest run failed")
			return
		}
		logger.WithField("sent", sent).Info("digest run complete")
	}

	scheduler := service.NewSchedulerService(time.Local, logger)
	var err error
	if cfg.DigestTime != "" {
		_, err = scheduler.ScheduleDaily(cfg.DigestTime, job)
	} else {
		_, err = scheduler.ScheduleInterval(cfg.DigestInterval, job)
	}
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	return scheduler, nil
}
