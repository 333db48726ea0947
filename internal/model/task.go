package model

import (
	"strings"
	"time"
)

// Task represents a single item in the planner.
type Task struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	IsFixed            bool       `json:"isFixed"`
	IsCompleted        bool       `json:"isCompleted"`
	IsSelectedForToday bool       `json:"isSelectedForToday"`
	IsArchived         bool       `json:"isArchived"`
	CreatedAt          time.Time  `json:"createdAt"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	Category           string     `json:"category,omitempty"`
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}

// Matches reports whether term occurs in the title or description, ignoring case.
func (t Task) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}

// Patch holds the fields a caller may change on an existing task.
// Nil fields are left as they are.
type Patch struct {
	Title              *string
	Description        *string
	Category           *string
	IsCompleted        *bool
	IsSelectedForToday *bool
	IsArchived         *bool
}

// Stats are counters shown next to each view.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Today     int `json:"today"`
	Archived  int `json:"archived"`
}

// Filter selects one of the task views.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterToday     Filter = "today"
	FilterCompleted Filter = "completed"
	FilterArchived  Filter = "archived"
	FilterHistory   Filter = "history"
)

// Filters lists every view in display order.
var Filters = []Filter{FilterAll, FilterToday, FilterCompleted, FilterArchived, FilterHistory}

// ParseFilter maps user input to a Filter. Empty input means FilterAll.
func ParseFilter(raw string) (Filter, error) {
	value := Filter(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if f == value {
			return f, nil
		}
	}
	return "", WrapError(ErrCodeInvalid, "unknown filter "+string(value), ErrUnknownFilter)
}

// Visible reports whether a task belongs to the given view.
func (f Filter) Visible(t Task) bool {
	switch f {
	case FilterToday:
		return t.IsSelectedForToday && !t.IsArchived
	case FilterCompleted:
		return t.IsCompleted && !t.IsArchived
	case FilterArchived:
		return t.IsArchived
	case FilterHistory:
		return t.CompletedAt != nil
	default:
		return !t.IsArchived
	}
}
