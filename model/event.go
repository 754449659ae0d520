package model

import "time"

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Recurrence describes how an event repeats. At least one of Count or Until ends it.
type Recurrence struct {
	Frequency Frequency  `bson:"frequency" json:"frequency"`
	Interval  int        `bson:"interval" json:"interval"`
	Count     int        `bson:"count,omitempty" json:"count,omitempty"`
	Until     *time.Time `bson:"until,omitempty" json:"until,omitempty"`
}

type Pomodoro struct {
	StudyMinutes    int `bson:"study_minutes" json:"study_minutes"`
	BreakMinutes    int `bson:"break_minutes" json:"break_minutes"`
	Cycles          int `bson:"cycles" json:"cycles"`
	CompletedCycles int `bson:"completed_cycles" json:"completed_cycles"`
}

// Done reports whether every planned cycle has been completed.
func (p *Pomodoro) Done() bool {
	return p != nil && p.CompletedCycles >= p.Cycles
}

type Event struct {
	ID           string      `bson:"_id" json:"id"`
	Title        string      `bson:"title" json:"title"`
	Description  string      `bson:"description,omitempty" json:"description,omitempty"`
	Location     string      `bson:"location,omitempty" json:"location,omitempty"`
	Date         time.Time   `bson:"date" json:"date"`
	Duration     int         `bson:"duration" json:"duration"` // minutes
	AllDay       bool        `bson:"all_day" json:"all_day"`
	IsRecurring  bool        `bson:"is_recurring" json:"is_recurring"`
	Recurrence   *Recurrence `bson:"recurrence,omitempty" json:"recurrence,omitempty"`
	IsPomodoro   bool        `bson:"is_pomodoro" json:"is_pomodoro"`
	Pomodoro     *Pomodoro   `bson:"pomodoro,omitempty" json:"pomodoro,omitempty"`
	NotifyBefore int         `bson:"notify_before" json:"notify_before"` // minutes, 0 disables reminders
	Author       string      `bson:"author" json:"author"`
	GroupList    []string    `bson:"group_list" json:"group_list"`
	CreatedAt    time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at" json:"updated_at"`
}

// End returns the end of the event's first occurrence.
func (e *Event) End() time.Time {
	return e.Date.Add(e.Length())
}

// Length is the span of one occurrence. All-day events span a full day.
func (e *Event) Length() time.Duration {
	if e.AllDay {
		return 24 * time.Hour
	}
	return time.Duration(e.Duration) * time.Minute
}

// VisibleTo reports whether username authored the event or is in its group.
func (e *Event) VisibleTo(username string) bool {
	return e.Author == username || contains(e.GroupList, username)
}

// Occurrence is one materialised instance of an event. It is never stored.
type Occurrence struct {
	EventID string    `json:"event_id"`
	Index   int       `json:"index"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Event   *Event    `json:"-"`
}

// EventInput is the body of event create and update requests.
type EventInput struct {
	Title        *string     `json:"title" binding:"omitempty,max=200"`
	Description  *string     `json:"description" binding:"omitempty,max=5000"`
	Location     *string     `json:"location" binding:"omitempty,max=200"`
	Date         *time.Time  `json:"date"`
	Duration     *int        `json:"duration" binding:"omitempty,min=0"`
	AllDay       *bool       `json:"all_day"`
	IsRecurring  *bool       `json:"is_recurring"`
	Recurrence   *Recurrence `json:"recurrence"`
	IsPomodoro   *bool       `json:"is_pomodoro"`
	Pomodoro     *Pomodoro   `json:"pomodoro"`
	NotifyBefore *int        `json:"notify_before" binding:"omitempty,min=0"`
	GroupList    *[]string   `json:"group_list"`
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
