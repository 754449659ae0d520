package usecase

import (
	"context"
	"time"

	"selfie/model"
	"selfie/services"
)

// Repositories are implemented by package repository and, for tests, testutils.

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	TimeOffset(ctx context.Context, userID string) (time.Duration, error)
	ExistingUsernames(ctx context.Context, usernames []string) ([]string, error)
	SearchUsernames(ctx context.Context, prefix string, limit int) ([]string, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID, hashedPassword string, at time.Time) error
	SetTimeOffset(ctx context.Context, userID string, offset time.Duration) error
	SetPendingTwoFactor(ctx context.Context, userID, secret string) error
	EnableTwoFactor(ctx context.Context, userID, secret string, recoveryCodes []string) error
	DisableTwoFactor(ctx context.Context, userID string) error
	ConsumeRecoveryCode(ctx context.Context, userID, hashedCode string) (bool, error)
	AddPushSubscription(ctx context.Context, userID string, sub model.PushSubscription) error
	RemovePushSubscription(ctx context.Context, userID, endpoint string) error
	ListSubscribed(ctx context.Context) ([]*model.User, error)
	Delete(ctx context.Context, userID string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, sessionID string) (*model.Session, error)
	ListActive(ctx context.Context, userID string, now time.Time) ([]*model.Session, error)
	Rotate(ctx context.Context, sessionID, oldJTI, newJTI string, at, expiresAt time.Time) error
	End(ctx context.Context, sessionID string) error
	EndAll(ctx context.Context, userID string) ([]string, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	FindByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
	ListVisible(ctx context.Context, username string) ([]*model.Event, error)
	ListByAuthor(ctx context.Context, username string) ([]*model.Event, error)
	ListUnfinishedPomodoro(ctx context.Context, username string, before time.Time) ([]*model.Event, error)
	PomodoroAuthors(ctx context.Context) ([]string, error)
	DeleteByAuthor(ctx context.Context, username string) (int64, error)
	RemoveMember(ctx context.Context, username string) (int64, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	FindByID(ctx context.Context, id string) (*model.Activity, error)
	Update(ctx context.Context, activity *model.Activity) error
	Delete(ctx context.Context, id string) error
	ListVisible(ctx context.Context, username string) ([]*model.Activity, error)
	ListByAuthor(ctx context.Context, username string) ([]*model.Activity, error)
	DeleteByAuthor(ctx context.Context, username string) (int64, error)
	RemoveMember(ctx context.Context, username string) (int64, error)
}

type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	FindByID(ctx context.Context, id string) (*model.Note, error)
	Update(ctx context.Context, note *model.Note) error
	Delete(ctx context.Context, id string) error
	ListVisible(ctx context.Context, username, category string) ([]*model.Note, error)
	ListByAuthor(ctx context.Context, username string) ([]*model.Note, error)
	DeleteByAuthor(ctx context.Context, username string) (int64, error)
	RemoveMember(ctx context.Context, username string) (int64, error)
}

type WorkoutRepository interface {
	Create(ctx context.Context, workout *model.Workout) error
	FindByID(ctx context.Context, id string) (*model.Workout, error)
	Update(ctx context.Context, workout *model.Workout) error
	Delete(ctx context.Context, id string) error
	ListByAuthor(ctx context.Context, username string) ([]*model.Workout, error)
	DeleteByAuthor(ctx context.Context, username string) (int64, error)
}

type MediaRepository interface {
	Create(ctx context.Context, media *model.Media) error
	FindByID(ctx context.Context, id string) (*model.Media, error)
	ListByAuthor(ctx context.Context, username string) ([]*model.Media, error)
	CountByAuthor(ctx context.Context, username string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByAuthor(ctx context.Context, username string) (int64, error)
}

// TokenRevoker is satisfied by *services.TokenBlacklist.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	RevokeSession(ctx context.Context, ttl time.Duration, sessionIDs ...string) error
}

// SessionCache is satisfied by *services.SessionCache.
type SessionCache interface {
	SetSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	DeleteSession(ctx context.Context, sessionIDs ...string) error
}

// PushSender is satisfied by *services.PushSender.
type PushSender interface {
	Enabled() bool
	PublicKey() string
	Send(ctx context.Context, kind string, sub model.PushSubscription, msg services.PushMessage) error
}

// ReminderLedger is satisfied by *services.ReminderLedger.
type ReminderLedger interface {
	Claim(ctx context.Context, key string) (bool, error)
}

// Clock returns the real current time.
type Clock func() time.Time
