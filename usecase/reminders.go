package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"selfie/model"
	"selfie/services"
	"selfie/utils"
)

// ReminderDispatcher sends due event and activity reminders over Web Push.
type ReminderDispatcher struct {
	users        UserRepository
	events       EventRepository
	activities   ActivityRepository
	push         *PushService
	ledger       ReminderLedger
	window       time.Duration
	activityLead time.Duration
	now          Clock
}

func NewReminderDispatcher(users UserRepository, events EventRepository, activities ActivityRepository, push *PushService, ledger ReminderLedger, window, activityLead time.Duration, now Clock) *ReminderDispatcher {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = 2 * time.Minute
	}
	return &ReminderDispatcher{
		users:        users,
		events:       events,
		activities:   activities,
		push:         push,
		ledger:       ledger,
		window:       window,
		activityLead: activityLead,
		now:          now,
	}
}

// Reminder is one notification due for a user.
type Reminder struct {
	Key     string
	Kind    string
	Message services.PushMessage
}

// Run checks every subscribed user once, at that user's virtual time.
func (d *ReminderDispatcher) Run(ctx context.Context) error {
	users, err := d.users.ListSubscribed(ctx)
	if err != nil {
		utils.ReminderRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to list subscribed users: %w", err)
	}

	sent := 0
	for _, user := range users {
		if ctx.Err() != nil {
			break
		}
		reminders, err := d.Due(ctx, user, user.Now(d.now()))
		if err != nil {
			slog.Error("failed to collect reminders", "user_id", user.UserID, "error", err)
			continue
		}
		for _, r := range reminders {
			fresh, err := d.ledger.Claim(ctx, r.Key)
			if err != nil {
				slog.Warn("reminder ledger unavailable", "error", err)
				continue
			}
			if !fresh {
				continue
			}
			sent += d.push.Notify(ctx, user, r.Kind, r.Message)
		}
	}

	utils.ReminderRuns.WithLabelValues("ok").Inc()
	if sent > 0 {
		slog.Info("reminders dispatched", "users", len(users), "sent", sent)
	}
	return nil
}

// Due lists the reminders whose trigger time falls in (now-window, now].
func (d *ReminderDispatcher) Due(ctx context.Context, user *model.User, now time.Time) ([]Reminder, error) {
	windowStart := now.Add(-d.window)
	var out []Reminder

	events, err := d.events.ListVisible(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if e.NotifyBefore <= 0 {
			continue
		}
		lead := time.Duration(e.NotifyBefore) * time.Minute
		// Occurrences starting in (windowStart+lead, now+lead] trigger now.
		for _, occ := range Expand(e, windowStart.Add(lead), now.Add(lead).Add(time.Nanosecond)) {
			trigger := occ.Start.Add(-lead)
			if !trigger.After(windowStart) || trigger.After(now) {
				continue
			}
			out = append(out, Reminder{
				Key:  services.ReminderKey(user.UserID, e.ID, occ.Start),
				Kind: "event",
				Message: services.PushMessage{
					Title: e.Title,
					Body:  describeOccurrence(e.Title, occ.Start, lead),
					URL:   "/calendar?event=" + e.ID,
					Tag:   "event-" + e.ID,
				},
			})
		}
	}

	if d.activityLead > 0 {
		activities, err := d.activities.ListVisible(ctx, user.Username)
		if err != nil {
			return nil, err
		}
		for _, a := range activities {
			if a.Completed {
				continue
			}
			trigger := a.EndDate.Add(-d.activityLead)
			if !trigger.After(windowStart) || trigger.After(now) {
				continue
			}
			out = append(out, Reminder{
				Key:  services.ReminderKey(user.UserID, a.ID, a.EndDate),
				Kind: "activity",
				Message: services.PushMessage{
					Title: a.Title,
					Body:  fmt.Sprintf("%s is due at %s", a.Title, a.EndDate.UTC().Format("Jan 2 15:04")),
					URL:   "/activities?id=" + a.ID,
					Tag:   "activity-" + a.ID,
				},
			})
		}
	}
	return out, nil
}
