package usecase

import (
	"context"
	"testing"
	"time"

	"selfie/model"
	"selfie/testutils"
)

func TestPlanPomodoro(t *testing.T) {
	plans, err := PlanPomodoro(60)
	if err != nil {
		t.Fatalf("PlanPomodoro() error = %v", err)
	}
	if len(plans) != 6 {
		t.Fatalf("expected 6 plans, got %d", len(plans))
	}

	first := plans[0]
	if first.StudyMinutes != 25 || first.BreakMinutes != 5 || first.Cycles != 2 || first.Leftover != 0 {
		t.Errorf("first plan = %+v, want 2x 25/5 with no leftover", first)
	}
	if plans[1].StudyMinutes != 50 || plans[1].Leftover != 0 {
		t.Errorf("second plan = %+v, want 50/10 with no leftover", plans[1])
	}
	for i := 1; i < len(plans); i++ {
		if plans[i].Leftover < plans[i-1].Leftover {
			t.Errorf("plans not ordered by leftover at %d", i)
		}
	}
}

func TestPlanPomodoro_RejectsOutOfRange(t *testing.T) {
	for _, total := range []int{0, 29, 24*60 + 1} {
		if _, err := PlanPomodoro(total); !model.IsValidation(err) {
			t.Errorf("PlanPomodoro(%d) error = %v, want validation error", total, err)
		}
	}
}

func TestCarryOver(t *testing.T) {
	ctx := context.Background()
	users := testutils.NewUserRepo()
	events := testutils.NewEventRepo()
	seedUsers(t, users, "alice", "bob")
	svc := NewEventService(events, users, func() time.Time { return testNow })

	pomodoro := func(id, author string, at time.Time, done int) *model.Event {
		e := &model.Event{
			ID: id, Title: id, Author: author, Date: at, Duration: 60, IsPomodoro: true,
			Pomodoro: &model.Pomodoro{StudyMinutes: 25, BreakMinutes: 5, Cycles: 2, CompletedCycles: done},
		}
		if err := events.Create(ctx, e); err != nil {
			t.Fatal(err)
		}
		return e
	}
	pomodoro("stale", "alice", time.Date(2024, 3, 8, 9, 30, 0, 0, time.UTC), 1)
	pomodoro("finished", "alice", time.Date(2024, 3, 8, 9, 30, 0, 0, time.UTC), 2)
	pomodoro("today", "alice", time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), 0)
	pomodoro("other", "bob", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), 0)

	moved, err := svc.CarryOver(ctx, "alice", testNow)
	if err != nil {
		t.Fatalf("CarryOver() error = %v", err)
	}
	if len(moved) != 1 || moved[0].ID != "stale" {
		t.Fatalf("moved = %+v, want only the stale event", moved)
	}

	stale, _ := events.FindByID(ctx, "stale")
	if want := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC); !stale.Date.Equal(want) {
		t.Errorf("stale event date = %v, want %v", stale.Date, want)
	}
	if stale.Pomodoro.CompletedCycles != 1 {
		t.Errorf("completed cycles changed to %d", stale.Pomodoro.CompletedCycles)
	}
	finished, _ := events.FindByID(ctx, "finished")
	if finished.Date.Day() != 8 {
		t.Errorf("finished event moved to %v", finished.Date)
	}
	other, _ := events.FindByID(ctx, "other")
	if other.Date.Day() != 1 {
		t.Errorf("another author's event moved to %v", other.Date)
	}
}

func TestCarryOver_LeavesRecurringSeries(t *testing.T) {
	ctx := context.Background()
	users := testutils.NewUserRepo()
	events := testutils.NewEventRepo()
	seedUsers(t, users, "alice")
	svc := NewEventService(events, users, func() time.Time { return testNow })

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	until := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)
	e := &model.Event{
		ID: "series", Title: "daily study", Author: "alice", Date: start, Duration: 60,
		IsRecurring: true, Recurrence: &model.Recurrence{Frequency: model.FrequencyDaily, Interval: 1, Until: &until},
		IsPomodoro: true, Pomodoro: &model.Pomodoro{StudyMinutes: 25, BreakMinutes: 5, Cycles: 2},
	}
	if err := events.Create(ctx, e); err != nil {
		t.Fatal(err)
	}
	window := func() int {
		got, _ := events.FindByID(ctx, "series")
		return len(Expand(got, start, testNow))
	}
	before := window()

	moved, err := svc.CarryOver(ctx, "alice", testNow)
	if err != nil {
		t.Fatalf("CarryOver() error = %v", err)
	}
	if len(moved) != 0 {
		t.Errorf("moved = %+v, want none", moved)
	}
	got, _ := events.FindByID(ctx, "series")
	if !got.Date.Equal(start) {
		t.Errorf("series date = %v, want %v", got.Date, start)
	}
	if after := window(); after != before || before != 9 {
		t.Errorf("occurrences before = %d, after = %d, want 9 both times", before, after)
	}

	authors, err := events.PomodoroAuthors(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(authors) != 0 {
		t.Errorf("PomodoroAuthors() = %v, want none for a recurring series", authors)
	}
}

func TestCarryOverAll_UsesVirtualTime(t *testing.T) {
	ctx := context.Background()
	users := testutils.NewUserRepo()
	events := testutils.NewEventRepo()
	seeded := seedUsers(t, users, "alice")
	if err := users.SetTimeOffset(ctx, seeded["alice"].UserID, 48*time.Hour); err != nil {
		t.Fatal(err)
	}
	svc := NewEventService(events, users, func() time.Time { return testNow })

	e := &model.Event{
		ID: "p", Title: "study", Author: "alice", Date: time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC), Duration: 60,
		IsPomodoro: true, Pomodoro: &model.Pomodoro{StudyMinutes: 25, BreakMinutes: 5, Cycles: 2},
	}
	if err := events.Create(ctx, e); err != nil {
		t.Fatal(err)
	}

	if err := svc.CarryOverAll(ctx); err != nil {
		t.Fatalf("CarryOverAll() error = %v", err)
	}
	got, _ := events.FindByID(ctx, "p")
	if want := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC); !got.Date.Equal(want) {
		t.Errorf("event date = %v, want %v", got.Date, want)
	}
}
