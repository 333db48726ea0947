package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskflow/internal/bot"
	"taskflow/internal/service"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot with the day reset and report scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				return serve(cmd.Context(), a)
			})
		},
	}
}

func serve(parent context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}

	telegramBot, err := bot.New(a.cfg.TelegramToken, a.cfg.TelegramChatID, bot.Services{
		Tasks:     a.tasks,
		History:   a.history,
		Theme:     a.theme,
		Reminders: a.reminders,
	}, a.logger)
	if err != nil {
		return err
	}

	notifier := service.Notifiers{service.NewLogNotifier(a.logger), telegramBot}
	scheduler := service.NewSchedulerService(a.cfg.Location, a.logger)

	resetID, err := scheduler.ScheduleDaily(a.cfg.ResetTime, service.DayResetJob(a.tasks, notifier, a.logger))
	if err != nil {
		return err
	}
	if a.cfg.ReportInterval > 0 {
		now := func() time.Time { return time.Now().In(a.cfg.Location) }
		if _, err := scheduler.ScheduleInterval(a.cfg.ReportInterval, service.ReportJob(a.reminders, now, telegramBot.SendReport, a.logger)); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	a.logger.Info("taskflow started", zap.Time("next_reset", scheduler.Next(resetID)))
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("shutdown complete")
	return nil
}
