package cli

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"taskflow/internal/config"
	"taskflow/internal/logger"
	"taskflow/internal/repository"
	"taskflow/internal/service"
)

// app wires the services every command works with.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	tasks     *service.TaskService
	history   *service.HistoryService
	theme     *service.ThemeService
	reminders *service.ReminderService
	close     func() error
}

// newApp is replaced in tests to share one in-memory store across commands.
var newApp = openApp

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	if verbose {
		log = logger.New(logger.Config{Level: "debug", Encoding: cfg.Logger.Encoding})
	}

	kv, closeStore, err := repository.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	a := buildApp(cfg, kv, log)
	a.close = func() error {
		_ = log.Sync()
		return closeStore()
	}
	return a, nil
}

func buildApp(cfg config.Config, kv repository.KeyValueStore, log *zap.Logger, opts ...service.Option) *app {
	tasks := service.NewTaskService(repository.NewTaskRepository(kv), log, opts...)
	history := service.NewHistoryService(tasks)
	return &app{
		cfg:       cfg,
		logger:    log,
		tasks:     tasks,
		history:   history,
		theme:     service.NewThemeService(repository.NewSettingsRepository(kv), log),
		reminders: service.NewReminderService(tasks, history),
		close:     func() error { return nil },
	}
}

// withApp opens the app for the duration of one command.
func withApp(fn func(a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			a.logger.Warn("close storage", zap.Error(err))
		}
	}()
	return fn(a)
}

// printNotifier prints notices to the command output.
type printNotifier struct {
	w io.Writer
}

func (n printNotifier) Notify(_ context.Context, title, description string) {
	fmt.Fprintf(n.w, "%s %s\n", title, description)
}
