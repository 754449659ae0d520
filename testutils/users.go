package testutils

import (
	"context"
	"strings"
	"time"

	"selfie/model"
)

// UserRepo is an in-memory user repository with unique username and email.
type UserRepo struct {
	*memStore[model.User]
}

func NewUserRepo() *UserRepo {
	return &UserRepo{newMemStore(
		func(u *model.User) string { return u.UserID },
		func(u *model.User) *model.User {
			c := *u
			c.RecoveryCodes = cloneStrings(u.RecoveryCodes)
			if u.PushSubscriptions != nil {
				c.PushSubscriptions = append([]model.PushSubscription{}, u.PushSubscriptions...)
			}
			if u.Birthday != nil {
				b := *u.Birthday
				c.Birthday = &b
			}
			return &c
		},
	)}
}

func (r *UserRepo) taken(user *model.User) bool {
	return len(r.filter(func(u *model.User) bool {
		return u.UserID != user.UserID && (u.Username == user.Username || u.Email == user.Email)
	})) > 0
}

func (r *UserRepo) Create(_ context.Context, user *model.User) error {
	if r.taken(user) {
		return model.ErrConflict
	}
	return r.insert(user)
}

func (r *UserRepo) FindByID(_ context.Context, userID string) (*model.User, error) {
	return r.get(userID)
}

func (r *UserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	users := r.filter(func(u *model.User) bool { return u.Username == username })
	if len(users) == 0 {
		return nil, model.ErrNotFound
	}
	return users[0], nil
}

func (r *UserRepo) TimeOffset(_ context.Context, userID string) (time.Duration, error) {
	u, err := r.get(userID)
	if err != nil {
		return 0, err
	}
	return u.TimeOffset, nil
}

func (r *UserRepo) ExistingUsernames(_ context.Context, usernames []string) ([]string, error) {
	var found []string
	for _, u := range r.filter(func(u *model.User) bool { return containsString(usernames, u.Username) }) {
		found = append(found, u.Username)
	}
	return found, nil
}

func (r *UserRepo) SearchUsernames(_ context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.ToLower(prefix)
	users := r.filter(func(u *model.User) bool {
		return strings.HasPrefix(strings.ToLower(u.Username), prefix)
	})
	sortBy(users, func(a, b *model.User) bool { return a.Username < b.Username })
	names := make([]string, 0, len(users))
	for _, u := range users {
		if len(names) == limit {
			break
		}
		names = append(names, u.Username)
	}
	return names, nil
}

func (r *UserRepo) Update(_ context.Context, user *model.User) error {
	if r.taken(user) {
		return model.ErrConflict
	}
	return r.put(user)
}

func (r *UserRepo) UpdatePassword(_ context.Context, userID, hashedPassword string, at time.Time) error {
	return r.mutate(userID, func(u *model.User) error {
		u.Password = hashedPassword
		u.LastPasswordChange = at
		u.UpdatedAt = at
		return nil
	})
}

func (r *UserRepo) SetTimeOffset(_ context.Context, userID string, offset time.Duration) error {
	return r.mutate(userID, func(u *model.User) error {
		u.TimeOffset = offset
		return nil
	})
}

func (r *UserRepo) SetPendingTwoFactor(_ context.Context, userID, secret string) error {
	return r.mutate(userID, func(u *model.User) error {
		u.TwoFactorPendingSecret = secret
		return nil
	})
}

func (r *UserRepo) EnableTwoFactor(_ context.Context, userID, secret string, codes []string) error {
	return r.mutate(userID, func(u *model.User) error {
		u.TwoFactorEnabled = true
		u.TwoFactorSecret = secret
		u.TwoFactorPendingSecret = ""
		u.RecoveryCodes = cloneStrings(codes)
		return nil
	})
}

func (r *UserRepo) DisableTwoFactor(_ context.Context, userID string) error {
	return r.mutate(userID, func(u *model.User) error {
		u.TwoFactorEnabled = false
		u.TwoFactorSecret = ""
		u.TwoFactorPendingSecret = ""
		u.RecoveryCodes = nil
		return nil
	})
}

func (r *UserRepo) ConsumeRecoveryCode(_ context.Context, userID, hashedCode string) (bool, error) {
	consumed := false
	err := r.mutate(userID, func(u *model.User) error {
		u.RecoveryCodes, consumed = removeString(u.RecoveryCodes, hashedCode)
		return nil
	})
	return consumed, err
}

func (r *UserRepo) AddPushSubscription(_ context.Context, userID string, sub model.PushSubscription) error {
	return r.mutate(userID, func(u *model.User) error {
		kept := u.PushSubscriptions[:0:0]
		for _, s := range u.PushSubscriptions {
			if s.Endpoint != sub.Endpoint {
				kept = append(kept, s)
			}
		}
		u.PushSubscriptions = append(kept, sub)
		return nil
	})
}

func (r *UserRepo) RemovePushSubscription(_ context.Context, userID, endpoint string) error {
	return r.mutate(userID, func(u *model.User) error {
		kept := u.PushSubscriptions[:0:0]
		for _, s := range u.PushSubscriptions {
			if s.Endpoint != endpoint {
				kept = append(kept, s)
			}
		}
		u.PushSubscriptions = kept
		return nil
	})
}

func (r *UserRepo) ListSubscribed(_ context.Context) ([]*model.User, error) {
	return r.filter(func(u *model.User) bool { return len(u.PushSubscriptions) > 0 }), nil
}

func (r *UserRepo) Delete(_ context.Context, userID string) error {
	return r.remove(userID)
}

// SessionRepo is an in-memory session repository.
type SessionRepo struct {
	*memStore[model.Session]
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{newMemStore(
		func(s *model.Session) string { return s.SessionID },
		func(s *model.Session) *model.Session { c := *s; return &c },
	)}
}

func (r *SessionRepo) Create(_ context.Context, session *model.Session) error {
	return r.insert(session)
}

func (r *SessionRepo) FindByID(_ context.Context, sessionID string) (*model.Session, error) {
	return r.get(sessionID)
}

func (r *SessionRepo) ListActive(_ context.Context, userID string, now time.Time) ([]*model.Session, error) {
	sessions := r.filter(func(s *model.Session) bool {
		return s.UserID == userID && s.IsActive && s.ExpiresAt.After(now)
	})
	sortBy(sessions, func(a, b *model.Session) bool { return a.LastActivityAt.After(b.LastActivityAt) })
	return sessions, nil
}

func (r *SessionRepo) Rotate(_ context.Context, sessionID, oldJTI, newJTI string, at, expiresAt time.Time) error {
	err := r.mutate(sessionID, func(s *model.Session) error {
		if s.RefreshJTI != oldJTI || !s.IsActive {
			return model.ErrRefreshTokenReused
		}
		s.RefreshJTI = newJTI
		s.LastActivityAt = at
		s.ExpiresAt = expiresAt
		return nil
	})
	if err == model.ErrNotFound {
		return model.ErrRefreshTokenReused
	}
	return err
}

func (r *SessionRepo) End(_ context.Context, sessionID string) error {
	return r.mutate(sessionID, func(s *model.Session) error {
		s.IsActive = false
		return nil
	})
}

func (r *SessionRepo) EndAll(_ context.Context, userID string) ([]string, error) {
	var ids []string
	r.updateWhere(func(s *model.Session) bool {
		if s.UserID != userID || !s.IsActive {
			return false
		}
		s.IsActive = false
		ids = append(ids, s.SessionID)
		return true
	})
	return ids, nil
}

func (r *SessionRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	return r.removeWhere(func(s *model.Session) bool { return s.UserID == userID }), nil
}
