package usecase

import (
	"context"
	"testing"
	"time"

	"selfie/model"
	"selfie/services"
	"selfie/testutils"
)

type reminderFixture struct {
	dispatcher *ReminderDispatcher
	users      *testutils.UserRepo
	events     *testutils.EventRepo
	activities *testutils.ActivityRepo
	sender     *testutils.PushSender
	clock      *testutils.Clock
	alice      *model.User
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()
	f := &reminderFixture{
		users:      testutils.NewUserRepo(),
		events:     testutils.NewEventRepo(),
		activities: testutils.NewActivityRepo(),
		sender:     testutils.NewPushSender(),
		clock:      testutils.NewClock(testNow),
	}
	f.alice = seedUsers(t, f.users, "alice")["alice"]
	push := NewPushService(f.users, f.sender, f.clock.Now)
	if err := push.Subscribe(context.Background(), f.alice.UserID, subscription("https://push.example.com/a")); err != nil {
		t.Fatal(err)
	}
	f.alice, _ = f.users.FindByID(context.Background(), f.alice.UserID)

	ledger := services.NewReminderLedger(nil, time.Hour)
	f.dispatcher = NewReminderDispatcher(f.users, f.events, f.activities, push, ledger,
		2*time.Minute, 30*time.Minute, f.clock.Now)
	return f
}

func TestReminderDispatcher_Due(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()

	add := func(e *model.Event) {
		e.Author = "alice"
		if e.Duration == 0 {
			e.Duration = 30
		}
		if err := f.events.Create(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	// Triggers at 15:00 exactly.
	add(&model.Event{ID: "due", Title: "Standup", Date: testNow.Add(15 * time.Minute), NotifyBefore: 15})
	// Triggered at 14:55, outside the two minute window.
	add(&model.Event{ID: "old", Title: "Old", Date: testNow.Add(10 * time.Minute), NotifyBefore: 15})
	// Triggers at 15:01.
	add(&model.Event{ID: "early", Title: "Early", Date: testNow.Add(16 * time.Minute), NotifyBefore: 15})
	add(&model.Event{ID: "silent", Title: "Silent", Date: testNow.Add(15 * time.Minute)})
	// Second daily occurrence triggers now.
	add(&model.Event{ID: "daily", Title: "Pills", Date: testNow.Add(-24*time.Hour + 5*time.Minute), NotifyBefore: 5,
		IsRecurring: true, Recurrence: &model.Recurrence{Frequency: model.FrequencyDaily, Interval: 1, Count: 3}})

	if err := f.activities.Create(ctx, &model.Activity{ID: "task", Title: "Essay", Author: "alice", EndDate: testNow.Add(29 * time.Minute)}); err != nil {
		t.Fatal(err)
	}
	if err := f.activities.Create(ctx, &model.Activity{ID: "done", Title: "Done", Author: "alice", EndDate: testNow.Add(29 * time.Minute), Completed: true}); err != nil {
		t.Fatal(err)
	}

	due, err := f.dispatcher.Due(ctx, f.alice, testNow)
	if err != nil {
		t.Fatalf("Due() error = %v", err)
	}
	got := map[string]bool{}
	for _, r := range due {
		got[r.Message.Tag] = true
	}
	want := []string{"event-due", "event-daily", "activity-task"}
	if len(due) != len(want) {
		t.Fatalf("Due() returned %d reminders %v, want %v", len(due), got, want)
	}
	for _, tag := range want {
		if !got[tag] {
			t.Errorf("missing reminder %s", tag)
		}
	}
}

func TestReminderDispatcher_RunSendsOnce(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()

	e := &model.Event{ID: "e1", Title: "Call", Author: "alice", Date: testNow.Add(10 * time.Minute), Duration: 30, NotifyBefore: 10}
	if err := f.events.Create(ctx, e); err != nil {
		t.Fatal(err)
	}

	if err := f.dispatcher.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	f.clock.Advance(time.Minute)
	if err := f.dispatcher.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	sent := f.sender.Deliveries()
	if len(sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(sent))
	}
	if sent[0].Kind != "event" || sent[0].Message.Body != "Call at 15:10 (in 10 min)" {
		t.Errorf("unexpected notification %+v", sent[0])
	}
}

func TestReminderDispatcher_RunUsesVirtualTime(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()

	if err := f.users.SetTimeOffset(ctx, f.alice.UserID, 24*time.Hour); err != nil {
		t.Fatal(err)
	}
	e := &model.Event{ID: "e1", Title: "Tomorrow", Author: "alice", Date: testNow.Add(24*time.Hour + 5*time.Minute), Duration: 30, NotifyBefore: 5}
	if err := f.events.Create(ctx, e); err != nil {
		t.Fatal(err)
	}

	if err := f.dispatcher.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n := len(f.sender.Deliveries()); n != 1 {
		t.Errorf("sent %d notifications at virtual time, want 1", n)
	}
}
