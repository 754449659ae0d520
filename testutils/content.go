package testutils

import (
	"context"
	"time"

	"selfie/model"
)

func visible(author string, group []string, username string) bool {
	return author == username || containsString(group, username)
}

// EventRepo is an in-memory event repository.
type EventRepo struct {
	*memStore[model.Event]
}

func NewEventRepo() *EventRepo {
	return &EventRepo{newMemStore(
		func(e *model.Event) string { return e.ID },
		func(e *model.Event) *model.Event {
			c := *e
			c.GroupList = cloneStrings(e.GroupList)
			if e.Recurrence != nil {
				r := *e.Recurrence
				c.Recurrence = &r
			}
			if e.Pomodoro != nil {
				p := *e.Pomodoro
				c.Pomodoro = &p
			}
			return &c
		},
	)}
}

func (r *EventRepo) Create(_ context.Context, e *model.Event) error { return r.insert(e) }
func (r *EventRepo) FindByID(_ context.Context, id string) (*model.Event, error) {
	return r.get(id)
}
func (r *EventRepo) Update(_ context.Context, e *model.Event) error { return r.put(e) }
func (r *EventRepo) Delete(_ context.Context, id string) error      { return r.remove(id) }

func (r *EventRepo) ListVisible(_ context.Context, username string) ([]*model.Event, error) {
	events := r.filter(func(e *model.Event) bool { return visible(e.Author, e.GroupList, username) })
	sortBy(events, func(a, b *model.Event) bool { return a.Date.Before(b.Date) })
	return events, nil
}

func (r *EventRepo) ListByAuthor(_ context.Context, username string) ([]*model.Event, error) {
	return r.filter(func(e *model.Event) bool { return e.Author == username }), nil
}

func unfinishedPomodoro(e *model.Event) bool {
	return e.IsPomodoro && !e.IsRecurring && e.Pomodoro != nil && e.Pomodoro.CompletedCycles < e.Pomodoro.Cycles
}

func (r *EventRepo) ListUnfinishedPomodoro(_ context.Context, username string, before time.Time) ([]*model.Event, error) {
	return r.filter(func(e *model.Event) bool {
		return e.Author == username && unfinishedPomodoro(e) && e.Date.Before(before)
	}), nil
}

func (r *EventRepo) PomodoroAuthors(_ context.Context) ([]string, error) {
	var authors []string
	for _, e := range r.filter(unfinishedPomodoro) {
		if !containsString(authors, e.Author) {
			authors = append(authors, e.Author)
		}
	}
	return authors, nil
}

func (r *EventRepo) DeleteByAuthor(_ context.Context, username string) (int64, error) {
	return r.removeWhere(func(e *model.Event) bool { return e.Author == username }), nil
}

func (r *EventRepo) RemoveMember(_ context.Context, username string) (int64, error) {
	return r.updateWhere(func(e *model.Event) bool {
		var removed bool
		e.GroupList, removed = removeString(e.GroupList, username)
		return removed
	}), nil
}

// ActivityRepo is an in-memory activity repository.
type ActivityRepo struct {
	*memStore[model.Activity]
}

func NewActivityRepo() *ActivityRepo {
	return &ActivityRepo{newMemStore(
		func(a *model.Activity) string { return a.ID },
		func(a *model.Activity) *model.Activity {
			c := *a
			c.GroupList = cloneStrings(a.GroupList)
			if a.CompletedAt != nil {
				t := *a.CompletedAt
				c.CompletedAt = &t
			}
			return &c
		},
	)}
}

func (r *ActivityRepo) Create(_ context.Context, a *model.Activity) error { return r.insert(a) }
func (r *ActivityRepo) FindByID(_ context.Context, id string) (*model.Activity, error) {
	return r.get(id)
}
func (r *ActivityRepo) Update(_ context.Context, a *model.Activity) error { return r.put(a) }
func (r *ActivityRepo) Delete(_ context.Context, id string) error         { return r.remove(id) }

func (r *ActivityRepo) ListVisible(_ context.Context, username string) ([]*model.Activity, error) {
	activities := r.filter(func(a *model.Activity) bool { return visible(a.Author, a.GroupList, username) })
	sortBy(activities, func(a, b *model.Activity) bool { return a.EndDate.Before(b.EndDate) })
	return activities, nil
}

func (r *ActivityRepo) ListByAuthor(_ context.Context, username string) ([]*model.Activity, error) {
	return r.filter(func(a *model.Activity) bool { return a.Author == username }), nil
}

func (r *ActivityRepo) DeleteByAuthor(_ context.Context, username string) (int64, error) {
	return r.removeWhere(func(a *model.Activity) bool { return a.Author == username }), nil
}

func (r *ActivityRepo) RemoveMember(_ context.Context, username string) (int64, error) {
	return r.updateWhere(func(a *model.Activity) bool {
		var removed bool
		a.GroupList, removed = removeString(a.GroupList, username)
		return removed
	}), nil
}

// NoteRepo is an in-memory note repository.
type NoteRepo struct {
	*memStore[model.Note]
}

func NewNoteRepo() *NoteRepo {
	return &NoteRepo{newMemStore(
		func(n *model.Note) string { return n.ID },
		func(n *model.Note) *model.Note {
			c := *n
			c.Categories = cloneStrings(n.Categories)
			c.SpecificAccess = cloneStrings(n.SpecificAccess)
			return &c
		},
	)}
}

func (r *NoteRepo) Create(_ context.Context, n *model.Note) error { return r.insert(n) }
func (r *NoteRepo) FindByID(_ context.Context, id string) (*model.Note, error) {
	return r.get(id)
}
func (r *NoteRepo) Update(_ context.Context, n *model.Note) error { return r.put(n) }
func (r *NoteRepo) Delete(_ context.Context, id string) error     { return r.remove(id) }

func (r *NoteRepo) ListVisible(_ context.Context, username, category string) ([]*model.Note, error) {
	return r.filter(func(n *model.Note) bool {
		return n.VisibleTo(username) && (category == "" || containsString(n.Categories, category))
	}), nil
}

func (r *NoteRepo) ListByAuthor(_ context.Context, username string) ([]*model.Note, error) {
	return r.filter(func(n *model.Note) bool { return n.Author == username }), nil
}

func (r *NoteRepo) DeleteByAuthor(_ context.Context, username string) (int64, error) {
	return r.removeWhere(func(n *model.Note) bool { return n.Author == username }), nil
}

func (r *NoteRepo) RemoveMember(_ context.Context, username string) (int64, error) {
	return r.updateWhere(func(n *model.Note) bool {
		var removed bool
		n.SpecificAccess, removed = removeString(n.SpecificAccess, username)
		if removed && n.AccessType == model.AccessSpecific && len(n.SpecificAccess) == 0 {
			n.AccessType = model.AccessPrivate
		}
		return removed
	}), nil
}

// WorkoutRepo is an in-memory workout repository.
type WorkoutRepo struct {
	*memStore[model.Workout]
}

func NewWorkoutRepo() *WorkoutRepo {
	return &WorkoutRepo{newMemStore(
		func(w *model.Workout) string { return w.ID },
		func(w *model.Workout) *model.Workout { c := *w; return &c },
	)}
}

func (r *WorkoutRepo) Create(_ context.Context, w *model.Workout) error { return r.insert(w) }
func (r *WorkoutRepo) FindByID(_ context.Context, id string) (*model.Workout, error) {
	return r.get(id)
}
func (r *WorkoutRepo) Update(_ context.Context, w *model.Workout) error { return r.put(w) }
func (r *WorkoutRepo) Delete(_ context.Context, id string) error        { return r.remove(id) }

func (r *WorkoutRepo) ListByAuthor(_ context.Context, username string) ([]*model.Workout, error) {
	workouts := r.filter(func(w *model.Workout) bool { return w.Author == username })
	sortBy(workouts, func(a, b *model.Workout) bool { return a.CreatedAt.After(b.CreatedAt) })
	return workouts, nil
}

func (r *WorkoutRepo) DeleteByAuthor(_ context.Context, username string) (int64, error) {
	return r.removeWhere(func(w *model.Workout) bool { return w.Author == username }), nil
}

// MediaRepo is an in-memory media repository.
type MediaRepo struct {
	*memStore[model.Media]
}

func NewMediaRepo() *MediaRepo {
	return &MediaRepo{newMemStore(
		func(m *model.Media) string { return m.ID },
		func(m *model.Media) *model.Media {
			c := *m
			c.Data = append([]byte(nil), m.Data...)
			return &c
		},
	)}
}

func (r *MediaRepo) Create(_ context.Context, m *model.Media) error { return r.insert(m) }
func (r *MediaRepo) FindByID(_ context.Context, id string) (*model.Media, error) {
	return r.get(id)
}
func (r *MediaRepo) Delete(_ context.Context, id string) error { return r.remove(id) }

func (r *MediaRepo) ListByAuthor(_ context.Context, username string) ([]*model.Media, error) {
	media := r.filter(func(m *model.Media) bool { return m.Author == username })
	for _, m := range media {
		m.Data = nil
	}
	sortBy(media, func(a, b *model.Media) bool { return a.CreatedAt.After(b.CreatedAt) })
	return media, nil
}

func (r *MediaRepo) CountByAuthor(_ context.Context, username string) (int64, error) {
	return int64(len(r.filter(func(m *model.Media) bool { return m.Author == username }))), nil
}

func (r *MediaRepo) DeleteByAuthor(_ context.Context, username string) (int64, error) {
	return r.removeWhere(func(m *model.Media) bool { return m.Author == username }), nil
}
