package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"taskflow/internal/model"
)

// ReminderService builds human-readable summaries for periodic notifications.
type ReminderService struct {
	tasks   *TaskService
	history *HistoryService
}

func NewReminderService(tasks *TaskService, history *HistoryService) *ReminderService {
	return &ReminderService{tasks: tasks, history: history}
}

// DailySummary renders the today view and counters as Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	stats, err := s.tasks.Stats(ctx)
	if err != nil {
		return "", err
	}
	today, err := s.tasks.Filtered(ctx, model.FilterToday)
	if err != nil {
		return "", err
	}
	doneToday, err := s.history.CompletedOn(ctx, now)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily summary</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02")))
	builder.WriteString(fmt.Sprintf("📊 %d active · %d for today · %d completed · %d archived\n\n",
		stats.Total, stats.Today, stats.Completed, stats.Archived))

	builder.WriteString("🔥 <b>Today</b>\n")
	if len(today) == 0 {
		builder.WriteString("— nothing selected for today\n")
	} else {
		pending := 0
		for _, task := range today {
			builder.WriteString(formatSummaryLine(task))
			if !task.IsCompleted {
				pending++
			}
		}
		builder.WriteString(fmt.Sprintf("\n⏳ %d of %d still pending\n", pending, len(today)))
	}

	builder.WriteString(fmt.Sprintf("\n✅ Completed today: %d\n", len(doneToday)))

	return strings.TrimSpace(builder.String()), nil
}

func formatSummaryLine(task model.Task) string {
	icon := "⬜"
	if task.IsCompleted {
		icon = "✅"
	}
	line := fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(task.Title)))
	if task.IsFixed {
		line += " <i>(fixed)</i>"
	}
	return line + "\n"
}
