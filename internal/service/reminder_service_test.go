package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/repository"
)

func TestReminderService_DailySummary(t *testing.T) {
	svc, clock := newTestService(t, repository.NewMemoryStore())
	reminders := NewReminderService(svc, NewHistoryService(svc))
	ctx := context.Background()

	all, err := svc.All(ctx)
	require.NoError(t, err)
	_, err = svc.ToggleToday(ctx, all[0].ID)
	require.NoError(t, err)

	mine, err := svc.Add(ctx, TaskInput{Title: "Call <mom>"})
	require.NoError(t, err)
	_, err = svc.ToggleToday(ctx, mine.ID)
	require.NoError(t, err)
	_, err = svc.ToggleCompletion(ctx, mine.ID)
	require.NoError(t, err)

	text, err := reminders.DailySummary(ctx, clock.Now())
	require.NoError(t, err)

	assert.Contains(t, text, "📋 <b>Daily summary</b>")
	assert.Contains(t, text, "2025-03-10")
	assert.Contains(t, text, "20 active · 2 for today · 1 completed · 0 archived")
	assert.Contains(t, text, "⬜ "+all[0].Title+" <i>(fixed)</i>")
	assert.Contains(t, text, "✅ Call &lt;mom&gt;")
	assert.Contains(t, text, "⏳ 1 of 2 still pending")
	assert.Contains(t, text, "✅ Completed today: 1")
}

func TestReminderService_EmptyToday(t *testing.T) {
	svc, clock := newTestService(t, repository.NewMemoryStore())
	reminders := NewReminderService(svc, NewHistoryService(svc))

	text, err := reminders.DailySummary(context.Background(), clock.Now())
	require.NoError(t, err)
	assert.Contains(t, text, "nothing selected for today")
	assert.NotContains(t, text, "still pending")
}
