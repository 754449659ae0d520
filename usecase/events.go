package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"selfie/model"
	"selfie/utils"
)

type EventService struct {
	events EventRepository
	users  UserRepository
	now    Clock
}

func NewEventService(events EventRepository, users UserRepository, now Clock) *EventService {
	if now == nil {
		now = time.Now
	}
	return &EventService{events: events, users: users, now: now}
}

// List returns every event visible to username.
func (s *EventService) List(ctx context.Context, username string) ([]*model.Event, error) {
	return s.events.ListVisible(ctx, username)
}

// Occurrences expands every visible event inside [from, to).
func (s *EventService) Occurrences(ctx context.Context, username string, from, to time.Time) ([]model.Occurrence, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	events, err := s.events.ListVisible(ctx, username)
	if err != nil {
		return nil, err
	}
	return ExpandAll(events, from, to), nil
}

// EventOccurrences expands a single visible event inside [from, to).
func (s *EventService) EventOccurrences(ctx context.Context, username, id string, from, to time.Time) ([]model.Occurrence, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	event, err := s.Get(ctx, username, id)
	if err != nil {
		return nil, err
	}
	return Expand(event, from, to), nil
}

func checkWindow(from, to time.Time) error {
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return model.NewValidationError("to", "must be after from")
	}
	return nil
}

// Get returns the event if username may see it, else ErrNotFound.
func (s *EventService) Get(ctx context.Context, username, id string) (*model.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.VisibleTo(username) {
		return nil, model.ErrNotFound
	}
	return event, nil
}

// owned loads an event for mutation: invisible is ErrNotFound, visible but
// not authored is ErrForbidden.
func (s *EventService) owned(ctx context.Context, username, id string) (*model.Event, error) {
	event, err := s.Get(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if event.Author != username {
		return nil, model.ErrForbidden
	}
	return event, nil
}

func (s *EventService) Create(ctx context.Context, username string, in model.EventInput) (*model.Event, error) {
	now := s.now().UTC()
	event := &model.Event{
		ID:        utils.NewID(),
		Author:    username,
		GroupList: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Title == nil {
		return nil, model.NewValidationError("title", "is required")
	}
	if in.Date == nil {
		return nil, model.NewValidationError("date", "is required")
	}
	if err := s.apply(ctx, event, in); err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	utils.TrackResourceOperation("event", "create")
	return event, nil
}

func (s *EventService) Update(ctx context.Context, username, id string, in model.EventInput) (*model.Event, error) {
	event, err := s.owned(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, event, in); err != nil {
		return nil, err
	}
	event.UpdatedAt = s.now().UTC()
	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	utils.TrackResourceOperation("event", "update")
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, username, id string) error {
	if _, err := s.owned(ctx, username, id); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	utils.TrackResourceOperation("event", "delete")
	return nil
}

// RecordPomodoro stores how many cycles of a Pomodoro event are done.
func (s *EventService) RecordPomodoro(ctx context.Context, username, id string, completed int) (*model.Event, error) {
	event, err := s.owned(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if !event.IsPomodoro || event.Pomodoro == nil {
		return nil, model.NewValidationError("pomodoro", "event is not a pomodoro session")
	}
	if completed < 0 || completed > event.Pomodoro.Cycles {
		return nil, model.NewValidationError("completed_cycles", "must be between 0 and %d", event.Pomodoro.Cycles)
	}
	event.Pomodoro.CompletedCycles = completed
	event.UpdatedAt = s.now().UTC()
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	utils.TrackResourceOperation("event", "pomodoro_progress")
	return event, nil
}

// apply merges in into event and validates the result.
func (s *EventService) apply(ctx context.Context, event *model.Event, in model.EventInput) error {
	if in.Title != nil {
		event.Title = *in.Title
	}
	title, err := requireTitle(event.Title)
	if err != nil {
		return err
	}
	event.Title = title

	if in.Description != nil {
		event.Description = strings.TrimSpace(*in.Description)
	}
	if in.Location != nil {
		event.Location = strings.TrimSpace(*in.Location)
	}
	if in.Date != nil {
		event.Date = in.Date.UTC()
	}
	if in.Duration != nil {
		event.Duration = *in.Duration
	}
	if in.AllDay != nil {
		event.AllDay = *in.AllDay
	}
	if in.NotifyBefore != nil {
		event.NotifyBefore = *in.NotifyBefore
	}
	if in.IsRecurring != nil {
		event.IsRecurring = *in.IsRecurring
	}
	if in.Recurrence != nil {
		r := *in.Recurrence
		event.Recurrence = &r
	}
	if in.IsPomodoro != nil {
		event.IsPomodoro = *in.IsPomodoro
	}
	if in.Pomodoro != nil {
		p := *in.Pomodoro
		if event.Pomodoro != nil && in.Pomodoro.CompletedCycles == 0 {
			p.CompletedCycles = event.Pomodoro.CompletedCycles
		}
		event.Pomodoro = &p
	}
	if in.GroupList != nil {
		event.GroupList = normalizeMembers(*in.GroupList, event.Author)
		if err := requireUsers(ctx, s.users, "group_list", event.GroupList); err != nil {
			return err
		}
	}

	return validateEvent(event)
}

func validateEvent(e *model.Event) error {
	if e.Date.IsZero() {
		return model.NewValidationError("date", "is required")
	}
	if e.AllDay {
		if e.Duration < 0 {
			return model.NewValidationError("duration", "cannot be negative")
		}
	} else if e.Duration < 1 {
		return model.NewValidationError("duration", "must be at least 1 minute")
	}
	if e.NotifyBefore < 0 {
		return model.NewValidationError("notify_before", "cannot be negative")
	}

	if e.IsRecurring {
		r := e.Recurrence
		if r == nil {
			return model.NewValidationError("recurrence", "is required for recurring events")
		}
		if !r.Frequency.Valid() {
			return model.NewValidationError("recurrence.frequency", "must be daily, weekly, monthly or yearly")
		}
		if r.Interval == 0 {
			r.Interval = 1
		}
		if r.Interval < 1 {
			return model.NewValidationError("recurrence.interval", "must be at least 1")
		}
		if r.Count < 0 {
			return model.NewValidationError("recurrence.count", "cannot be negative")
		}
		if r.Count == 0 && r.Until == nil {
			return model.NewValidationError("recurrence", "needs a count or an until date")
		}
		if r.Until != nil {
			until := r.Until.UTC()
			if until.Before(e.Date) {
				return model.NewValidationError("recurrence.until", "must not be before the event date")
			}
			r.Until = &until
		}
	} else {
		e.Recurrence = nil
	}

	if e.IsPomodoro {
		p := e.Pomodoro
		if p == nil {
			return model.NewValidationError("pomodoro", "is required for pomodoro events")
		}
		if p.StudyMinutes < 1 || p.BreakMinutes < 1 || p.Cycles < 1 {
			return model.NewValidationError("pomodoro", "study, break and cycles must be positive")
		}
		if p.CompletedCycles < 0 || p.CompletedCycles > p.Cycles {
			return model.NewValidationError("pomodoro.completed_cycles", "must be between 0 and %d", p.Cycles)
		}
	} else {
		e.Pomodoro = nil
	}
	return nil
}
