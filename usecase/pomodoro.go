package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"selfie/model"
)

// PomodoroPlan is one way to split a time budget into study/break cycles.
type PomodoroPlan struct {
	StudyMinutes int `json:"study_minutes"`
	BreakMinutes int `json:"break_minutes"`
	Cycles       int `json:"cycles"`
	TotalMinutes int `json:"total_minutes"`
	Leftover     int `json:"leftover_minutes"`
}

var pomodoroSplits = []struct{ study, rest int }{
	{25, 5},
	{30, 5},
	{35, 5},
	{40, 10},
	{45, 10},
	{50, 10},
}

// PlanPomodoro proposes splits of total minutes, tightest fit first.
func PlanPomodoro(total int) ([]PomodoroPlan, error) {
	smallest := pomodoroSplits[0].study + pomodoroSplits[0].rest
	if total < smallest {
		return nil, model.NewValidationError("total", "must be at least %d minutes", smallest)
	}
	if total > 24*60 {
		return nil, model.NewValidationError("total", "must be at most %d minutes", 24*60)
	}

	plans := make([]PomodoroPlan, 0, len(pomodoroSplits))
	for _, split := range pomodoroSplits {
		cycle := split.study + split.rest
		cycles := total / cycle
		if cycles == 0 {
			continue
		}
		plans = append(plans, PomodoroPlan{
			StudyMinutes: split.study,
			BreakMinutes: split.rest,
			Cycles:       cycles,
			TotalMinutes: cycles * cycle,
			Leftover:     total - cycles*cycle,
		})
	}

	sort.SliceStable(plans, func(i, j int) bool {
		if plans[i].Leftover != plans[j].Leftover {
			return plans[i].Leftover < plans[j].Leftover
		}
		return plans[i].StudyMinutes < plans[j].StudyMinutes
	})
	return plans, nil
}

// startOfDay truncates t to midnight in t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CarryOver moves username's unfinished one-off Pomodoro events dated before
// today (at virtual now) to the same clock time today. Recurring series keep
// their base date.
func (s *EventService) CarryOver(ctx context.Context, username string, now time.Time) ([]*model.Event, error) {
	today := startOfDay(now.UTC())
	stale, err := s.events.ListUnfinishedPomodoro(ctx, username, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list pomodoro events: %w", err)
	}

	moved := make([]*model.Event, 0, len(stale))
	for _, e := range stale {
		if e.IsRecurring || e.Pomodoro.Done() {
			continue
		}
		hh, mm, ss := e.Date.UTC().Clock()
		e.Date = time.Date(today.Year(), today.Month(), today.Day(), hh, mm, ss, 0, time.UTC)
		e.UpdatedAt = s.now().UTC()
		if err := s.events.Update(ctx, e); err != nil {
			return moved, fmt.Errorf("failed to move event %s: %w", e.ID, err)
		}
		moved = append(moved, e)
	}
	if len(moved) > 0 {
		slog.Info("pomodoro events carried over", "username", username, "count", len(moved))
	}
	return moved, nil
}

// CarryOverAll runs CarryOver for every author with unfinished Pomodoro
// events, each at their own virtual time.
func (s *EventService) CarryOverAll(ctx context.Context) error {
	authors, err := s.events.PomodoroAuthors(ctx)
	if err != nil {
		return err
	}
	for _, username := range authors {
		user, err := s.users.FindByUsername(ctx, username)
		if err != nil {
			slog.Warn("skipping pomodoro carry-over", "username", username, "error", err)
			continue
		}
		if _, err := s.CarryOver(ctx, username, user.Now(s.now())); err != nil {
			slog.Error("pomodoro carry-over failed", "username", username, "error", err)
		}
	}
	return nil
}
