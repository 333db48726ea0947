package service

import (
	"context"
	"sort"
	"time"

	"taskflow/internal/model"
)

// HistoryService groups completed tasks by the day they were completed.
type HistoryService struct {
	tasks *TaskService
}

func NewHistoryService(tasks *TaskService) *HistoryService {
	return &HistoryService{tasks: tasks}
}

// CompletedOn returns the tasks completed on the calendar day of day,
// evaluated in day's location, ordered by completion time.
func (s *HistoryService) CompletedOn(ctx context.Context, day time.Time) ([]model.Task, error) {
	completed, err := s.tasks.Filtered(ctx, model.FilterHistory)
	if err != nil {
		return nil, err
	}

	var result []model.Task
	for _, task := range completed {
		if sameDay(*task.CompletedAt, day) {
			result = append(result, task)
		}
	}
	sortByCompletion(result)
	return result, nil
}

// Month aggregates completions for every day of month's calendar month.
func (s *HistoryService) Month(ctx context.Context, month time.Time) (model.MonthHistory, error) {
	completed, err := s.tasks.Filtered(ctx, model.FilterHistory)
	if err != nil {
		return model.MonthHistory{}, err
	}

	loc := month.Location()
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc)
	days := daysInMonth(month.Month(), month.Year())

	history := model.MonthHistory{
		Month: first,
		Days:  make([]model.DayHistory, days),
	}
	for i := range history.Days {
		history.Days[i].Date = first.AddDate(0, 0, i)
	}

	for _, task := range completed {
		at := task.CompletedAt.In(loc)
		if at.Year() != first.Year() || at.Month() != first.Month() {
			continue
		}
		day := &history.Days[at.Day()-1]
		day.Tasks = append(day.Tasks, task)
		day.CompletedCount++
		history.TotalCompleted++
	}

	for i := range history.Days {
		day := &history.Days[i]
		if day.CompletedCount == 0 {
			continue
		}
		sortByCompletion(day.Tasks)
		history.ActiveDays++
		history.HighlightedDays = append(history.HighlightedDays, day.Date)
	}
	if history.ActiveDays > 0 {
		history.DailyAverage = float64(history.TotalCompleted) / float64(history.ActiveDays)
	}
	return history, nil
}

func sameDay(at, day time.Time) bool {
	at = at.In(day.Location())
	y1, m1, d1 := at.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func sortByCompletion(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CompletedAt.Before(*tasks[j].CompletedAt)
	})
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	firstOfNextMonth := firstOfMonth.AddDate(0, 1, 0)
	lastOfMonth := firstOfNextMonth.AddDate(0, 0, -1)
	return lastOfMonth.Day()
}
