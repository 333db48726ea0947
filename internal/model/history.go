package model

import "time"

// DayHistory groups the tasks completed on one calendar day.
type DayHistory struct {
	Date           time.Time `json:"date"`
	Tasks          []Task    `json:"tasks"`
	CompletedCount int       `json:"completedCount"`
}

// MonthHistory aggregates completions over a calendar month.
type MonthHistory struct {
	Month           time.Time    `json:"month"`
	Days            []DayHistory `json:"days"`
	TotalCompleted  int          `json:"totalCompleted"`
	ActiveDays      int          `json:"activeDays"`
	DailyAverage    float64      `json:"dailyAverage"`
	HighlightedDays []time.Time  `json:"highlightedDays"`
}
