package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"taskmind/internal/bot"
	"taskmind/internal/config"
	"taskmind/internal/interpreter"
	"taskmind/internal/repository"
	"taskmind/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	db, err := repository.NewDB(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	interp := interpreter.NewClient(interpreter.Config{
		APIKey:      cfg.OpenRouter.APIKey,
		BaseURL:     cfg.OpenRouter.BaseURL,
		Model:       cfg.OpenRouter.Model,
		MaxTokens:   cfg.OpenRouter.MaxTokens,
		Temperature: cfg.OpenRouter.Temperature,
	}, logger)

	clockSvc := service.NewClockService(settingsRepo)
	taskSvc := service.NewTaskService(taskRepo, logger)
	editSvc := service.NewEditService(taskRepo, interp, logger)

	telegramBot, err := bot.New(cfg.Telegram.Token, clockSvc, taskSvc, editSvc, interp, settingsRepo, logger)
	if err != nil {
		logger.Fatal("create bot", zap.Error(err))
	}

	reminderSvc := service.NewReminderService(taskRepo, settingsRepo, telegramBot, logger)

	scheduler := service.NewScheduler(time.UTC, logger)
	tick := time.Duration(cfg.Scheduler.TickSeconds) * time.Second
	if _, err := scheduler.ScheduleInterval(tick, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		reminderSvc.Tick(jobCtx)
	}); err != nil {
		logger.Fatal("schedule reminders", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info("task bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("bot stopped", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
