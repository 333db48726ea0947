package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskflow/internal/model"
)

// Notifier shows a short, non-blocking confirmation to the user.
type Notifier interface {
	Notify(ctx context.Context, title, description string)
}

// LogNotifier writes notices to the log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, title, description string) {
	n.logger.Info(title, zap.String("description", description))
}

// Notice is a title and description pair for a Notifier.
type Notice struct {
	Title       string
	Description string
}

// Send delivers the notice through n. A nil notifier drops it.
func (m Notice) Send(ctx context.Context, n Notifier) {
	if n == nil {
		return
	}
	n.Notify(ctx, m.Title, m.Description)
}

func NoticeAdded(task model.Task) Notice {
	return Notice{"Task added!", fmt.Sprintf("%q was added to your list.", task.Title)}
}

func NoticeUpdated() Notice {
	return Notice{"Task updated!", "Your changes were saved."}
}

func NoticeDeleted(task model.Task) Notice {
	return Notice{"Task deleted!", fmt.Sprintf("%q was removed permanently.", task.Title)}
}

func NoticeArchived(task model.Task) Notice {
	return Notice{"Task archived!", fmt.Sprintf("%q was archived.", task.Title)}
}

func NoticeUnarchived(task model.Task) Notice {
	return Notice{"Task unarchived!", fmt.Sprintf("%q was restored.", task.Title)}
}

// NoticeToday describes a today toggle given the task state after the toggle.
func NoticeToday(task model.Task) Notice {
	if task.IsSelectedForToday {
		return Notice{"Added to today!", fmt.Sprintf("%q was added to today's tasks.", task.Title)}
	}
	return Notice{"Removed from today!", fmt.Sprintf("%q was removed from today's tasks.", task.Title)}
}

// NoticeCompletion describes a completion toggle given the task state after the toggle.
func NoticeCompletion(task model.Task) Notice {
	if task.IsCompleted {
		return Notice{"Task completed! 🎉", fmt.Sprintf("Well done! %q is complete.", task.Title)}
	}
	return Notice{"Task reopened!", fmt.Sprintf("%q is pending again.", task.Title)}
}

func NoticeReset() Notice {
	return Notice{"Day reset!", "All tasks were cleared from today."}
}

// Notifiers fans a notice out to several notifiers.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, title, description string) {
	for _, n := range ns {
		if n != nil {
			n.Notify(ctx, title, description)
		}
	}
}
