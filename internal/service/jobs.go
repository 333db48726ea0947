package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const jobTimeout = 30 * time.Second

// DayResetJob returns a cron job that runs ResetToday and notifies on success.
func DayResetJob(tasks *TaskService, notifier Notifier, logger *zap.Logger) func() {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := tasks.ResetToday(ctx); err != nil {
			logger.Error("scheduled day reset failed", zap.Error(err))
			return
		}
		NoticeReset().Send(ctx, notifier)
	}
}

// ReportJob returns a cron job that builds a summary and hands it to send.
func ReportJob(reminders *ReminderService, now func() time.Time, send func(ctx context.Context, text string) error, logger *zap.Logger) func() {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		text, err := reminders.DailySummary(ctx, now())
		if err != nil {
			logger.Error("build summary", zap.Error(err))
			return
		}
		if err := send(ctx, text); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("send summary", zap.Error(err))
		}
	}
}
