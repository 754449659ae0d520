package model

import "time"

type UserStats struct {
	EventStats struct {
		Total     int `json:"total"`
		Recurring int `json:"recurring"`
		Pomodoro  int `json:"pomodoro"`
	} `json:"event_stats"`
	ActivityStats struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
		Pending   int `json:"pending"`
		Late      int `json:"late"`
	} `json:"activity_stats"`
	NoteStats struct {
		Total          int            `json:"total"`
		CategoryCounts map[string]int `json:"category_counts"`
	} `json:"note_stats"`
	WorkoutStats struct {
		Total     int `json:"total"`
		TotalReps int `json:"total_reps"`
	} `json:"workout_stats"`
	MediaCount   int64 `json:"media_count"`
	SessionStats struct {
		Active         int       `json:"active"`
		LastActive     time.Time `json:"last_active"`
		AccountCreated time.Time `json:"account_created"`
	} `json:"session_stats"`
}
