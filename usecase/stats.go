package usecase

import (
	"context"
	"time"

	"selfie/model"
)

type StatsService struct {
	users      UserRepository
	sessions   SessionRepository
	events     EventRepository
	activities ActivityRepository
	notes      NoteRepository
	workouts   WorkoutRepository
	media      MediaRepository
	now        Clock
}

func NewStatsService(deps UserDeps, now Clock) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{
		users:      deps.Users,
		sessions:   deps.Sessions,
		events:     deps.Events,
		activities: deps.Activities,
		notes:      deps.Notes,
		workouts:   deps.Workouts,
		media:      deps.Media,
		now:        now,
	}
}

// ForUser summarises what userID authored; lateness is judged at virtualNow.
func (s *StatsService) ForUser(ctx context.Context, userID string, virtualNow time.Time) (*model.UserStats, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := &model.UserStats{}

	events, err := s.events.ListByAuthor(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	stats.EventStats.Total = len(events)
	for _, e := range events {
		if e.IsRecurring {
			stats.EventStats.Recurring++
		}
		if e.IsPomodoro {
			stats.EventStats.Pomodoro++
		}
	}

	activities, err := s.activities.ListByAuthor(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	stats.ActivityStats.Total = len(activities)
	for _, a := range activities {
		switch {
		case a.Completed:
			stats.ActivityStats.Completed++
		case a.Late(virtualNow):
			stats.ActivityStats.Late++
			stats.ActivityStats.Pending++
		default:
			stats.ActivityStats.Pending++
		}
	}

	notes, err := s.notes.ListByAuthor(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	stats.NoteStats.Total = len(notes)
	stats.NoteStats.CategoryCounts = make(map[string]int)
	for _, n := range notes {
		for _, c := range n.Categories {
			stats.NoteStats.CategoryCounts[c]++
		}
	}

	workouts, err := s.workouts.ListByAuthor(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	stats.WorkoutStats.Total = len(workouts)
	for _, w := range workouts {
		stats.WorkoutStats.TotalReps += w.Reps
	}

	if stats.MediaCount, err = s.media.CountByAuthor(ctx, user.Username); err != nil {
		return nil, err
	}

	sessions, err := s.sessions.ListActive(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	stats.SessionStats.Active = len(sessions)
	if len(sessions) > 0 {
		stats.SessionStats.LastActive = sessions[0].LastActivityAt
	}
	stats.SessionStats.AccountCreated = user.CreatedAt

	return stats, nil
}
