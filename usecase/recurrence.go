package usecase

import (
	"sort"
	"time"

	"selfie/model"
)

// MaxOccurrences bounds the length of any recurring series.
const MaxOccurrences = 1000

// Expand materialises the occurrences of e that overlap [from, to). A zero
// from or to leaves that side of the window open. Occurrence k starts k
// intervals after the base date, so month-end clamping never accumulates.
func Expand(e *model.Event, from, to time.Time) []model.Occurrence {
	length := e.Length()
	overlaps := func(start time.Time) bool {
		end := start.Add(length)
		if !to.IsZero() && !start.Before(to) {
			return false
		}
		if !from.IsZero() && !end.After(from) {
			return false
		}
		return true
	}

	if !e.IsRecurring || e.Recurrence == nil {
		if !overlaps(e.Date) {
			return nil
		}
		return []model.Occurrence{newOccurrence(e, 0, e.Date)}
	}

	r := e.Recurrence
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	var out []model.Occurrence
	for k := 0; k < MaxOccurrences; k++ {
		if r.Count > 0 && k >= r.Count {
			break
		}
		start := shift(e.Date, r.Frequency, k*interval)
		if r.Until != nil && start.After(*r.Until) {
			break
		}
		if !to.IsZero() && !start.Before(to) {
			break
		}
		if overlaps(start) {
			out = append(out, newOccurrence(e, k, start))
		}
	}
	return out
}

// ExpandAll expands every event and orders the result by start time.
func ExpandAll(events []*model.Event, from, to time.Time) []model.Occurrence {
	var out []model.Occurrence
	for _, e := range events {
		out = append(out, Expand(e, from, to)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].EventID < out[j].EventID
	})
	return out
}

func newOccurrence(e *model.Event, index int, start time.Time) model.Occurrence {
	return model.Occurrence{
		EventID: e.ID,
		Index:   index,
		Start:   start,
		End:     start.Add(e.Length()),
		Event:   e,
	}
}

// shift moves base forward by n units of freq.
func shift(base time.Time, freq model.Frequency, n int) time.Time {
	switch freq {
	case model.FrequencyDaily:
		return base.AddDate(0, 0, n)
	case model.FrequencyWeekly:
		return base.AddDate(0, 0, 7*n)
	case model.FrequencyMonthly:
		return addMonthsClamped(base, n)
	case model.FrequencyYearly:
		return addMonthsClamped(base, 12*n)
	}
	return base
}

// addMonthsClamped adds n months, pinning the day to the target month's last
// day when it is shorter (Jan 31 + 1 month = Feb 28 or 29).
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	first := time.Date(y, m+time.Month(n), 1, hh, mm, ss, t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
