package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"selfie/model"
	"selfie/services"
)

type UserService struct {
	users      UserRepository
	sessions   SessionRepository
	events     EventRepository
	activities ActivityRepository
	notes      NoteRepository
	workouts   WorkoutRepository
	media      MediaRepository
	auth       *AuthService
	now        Clock
}

// UserDeps groups the repositories account deletion cascades through.
type UserDeps struct {
	Users      UserRepository
	Sessions   SessionRepository
	Events     EventRepository
	Activities ActivityRepository
	Notes      NoteRepository
	Workouts   WorkoutRepository
	Media      MediaRepository
}

type UserOption func(*UserService)

func WithUserClock(clock Clock) UserOption {
	return func(s *UserService) { s.now = clock }
}

func NewUserService(deps UserDeps, auth *AuthService, opts ...UserOption) *UserService {
	s := &UserService{
		users:      deps.Users,
		sessions:   deps.Sessions,
		events:     deps.Events,
		activities: deps.Activities,
		notes:      deps.Notes,
		workouts:   deps.Workouts,
		media:      deps.Media,
		auth:       auth,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies the non-nil fields of in.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in model.UserUpdate) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, model.NewValidationError("email", "cannot be empty")
		}
		user.Email = email
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Surname != nil {
		user.Surname = strings.TrimSpace(*in.Surname)
	}
	if in.Birthday != nil {
		if in.Birthday.After(s.now()) {
			return nil, model.NewValidationError("birthday", "cannot be in the future")
		}
		user.Birthday = in.Birthday
	}
	if in.AvatarID != nil {
		avatar := strings.TrimSpace(*in.AvatarID)
		if avatar != "" {
			media, err := s.media.FindByID(ctx, avatar)
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					return nil, model.NewValidationError("avatar_id", "unknown media")
				}
				return nil, err
			}
			if media.Author != user.Username || !strings.HasPrefix(media.MimeType, "image/") {
				return nil, model.NewValidationError("avatar_id", "must be one of your images")
			}
		}
		user.AvatarID = avatar
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, fmt.Errorf("email already in use: %w", model.ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password, stores the new one and ends
// every other session.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentSessionID, current, next string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !services.ComparePasswords(user.Password, current) {
		return model.ErrInvalidCredentials
	}
	if current == next {
		return model.NewValidationError("new_password", "must differ from the current password")
	}

	hashed, err := services.HashPassword(next)
	if err != nil {
		if errors.Is(err, services.ErrWeakPassword) {
			return model.NewValidationError("new_password", "%s", err.Error())
		}
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hashed, s.now().UTC()); err != nil {
		return err
	}

	sessions, err := s.sessions.ListActive(ctx, userID, s.now())
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if session.SessionID == currentSessionID {
			continue
		}
		if err := s.auth.endSessions(ctx, session.SessionID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the account and everything it authored, and takes the user
// out of other people's sharing lists.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.auth.LogoutAll(ctx, userID); err != nil {
		return err
	}

	steps := []struct {
		name string
		run  func() (int64, error)
	}{
		{"events", func() (int64, error) { return s.events.DeleteByAuthor(ctx, user.Username) }},
		{"event groups", func() (int64, error) { return s.events.RemoveMember(ctx, user.Username) }},
		{"activities", func() (int64, error) { return s.activities.DeleteByAuthor(ctx, user.Username) }},
		{"activity groups", func() (int64, error) { return s.activities.RemoveMember(ctx, user.Username) }},
		{"notes", func() (int64, error) { return s.notes.DeleteByAuthor(ctx, user.Username) }},
		{"note access", func() (int64, error) { return s.notes.RemoveMember(ctx, user.Username) }},
		{"workouts", func() (int64, error) { return s.workouts.DeleteByAuthor(ctx, user.Username) }},
		{"media", func() (int64, error) { return s.media.DeleteByAuthor(ctx, user.Username) }},
		{"sessions", func() (int64, error) { return s.sessions.DeleteByUser(ctx, userID) }},
	}
	for _, step := range steps {
		n, err := step.run()
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", step.name, err)
		}
		slog.Debug("account cleanup", "user_id", userID, "step", step.name, "affected", n)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	slog.Info("user deleted", "user_id", userID, "username", user.Username)
	return nil
}

// SearchUsernames lists usernames by prefix, for sharing pickers.
func (s *UserService) SearchUsernames(ctx context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.users.SearchUsernames(ctx, strings.TrimSpace(prefix), limit)
}

// TimeOffset serves the time machine middleware.
func (s *UserService) TimeOffset(ctx context.Context, userID string) (time.Duration, error) {
	return s.users.TimeOffset(ctx, userID)
}

// TimeMachineState reports the offset and the resulting virtual time.
type TimeMachineState struct {
	Offset        time.Duration `json:"-"`
	OffsetSeconds int64         `json:"offset_seconds"`
	Now           time.Time     `json:"now"`
	RealNow       time.Time     `json:"real_now"`
	Active        bool          `json:"active"`
}

func newTimeMachineState(real time.Time, offset time.Duration) *TimeMachineState {
	return &TimeMachineState{
		Offset:        offset,
		OffsetSeconds: int64(offset / time.Second),
		Now:           real.Add(offset),
		RealNow:       real,
		Active:        offset != 0,
	}
}

func (s *UserService) TimeMachine(ctx context.Context, userID string) (*TimeMachineState, error) {
	offset, err := s.users.TimeOffset(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newTimeMachineState(s.now().UTC(), offset), nil
}

// TravelTo sets the offset so that the user's now becomes target.
func (s *UserService) TravelTo(ctx context.Context, userID string, target time.Time) (*TimeMachineState, error) {
	if target.IsZero() {
		return nil, model.NewValidationError("date", "is required")
	}
	real := s.now().UTC()
	offset := target.Sub(real).Truncate(time.Second)
	if err := s.users.SetTimeOffset(ctx, userID, offset); err != nil {
		return nil, err
	}
	slog.Info("time machine moved", "user_id", userID, "offset", offset.String())
	return newTimeMachineState(real, offset), nil
}

func (s *UserService) ResetTimeMachine(ctx context.Context, userID string) (*TimeMachineState, error) {
	if err := s.users.SetTimeOffset(ctx, userID, 0); err != nil {
		return nil, err
	}
	return newTimeMachineState(s.now().UTC(), 0), nil
}
