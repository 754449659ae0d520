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
	"selfie/utils"
)

// ClientInfo describes the device a session is opened from.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// AuthResult is returned by signup, login and refresh. When RequiresTwoFactor
// is set, no session was opened and the token fields are empty.
type AuthResult struct {
	User              *model.User
	Session           *model.Session
	AccessToken       string
	RefreshToken      string
	AccessExpiresIn   time.Duration
	RequiresTwoFactor bool
}

type AuthService struct {
	users       UserRepository
	sessions    SessionRepository
	tokens      *services.TokenService
	revoker     TokenRevoker
	cache       SessionCache
	twoFactor   *TwoFactorService
	maxSessions int
	now         Clock
}

type AuthOption func(*AuthService)

func WithAuthClock(clock Clock) AuthOption {
	return func(s *AuthService) { s.now = clock }
}

func WithSessionCache(cache SessionCache) AuthOption {
	return func(s *AuthService) { s.cache = cache }
}

func WithTokenRevoker(revoker TokenRevoker) AuthOption {
	return func(s *AuthService) { s.revoker = revoker }
}

func NewAuthService(users UserRepository, sessions SessionRepository, tokens *services.TokenService, twoFactor *TwoFactorService, maxSessions int, opts ...AuthOption) *AuthService {
	if maxSessions <= 0 {
		maxSessions = 5
	}
	s := &AuthService{
		users:       users,
		sessions:    sessions,
		tokens:      tokens,
		twoFactor:   twoFactor,
		maxSessions: maxSessions,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup creates the account and opens its first session.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest, client ClientInfo) (*AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	if !utils.ValidateUsername(username) {
		return nil, model.NewValidationError("username", "must be 3-30 letters, digits, dots, dashes or underscores")
	}

	hashed, err := services.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, services.ErrWeakPassword) {
			return nil, model.NewValidationError("password", "%s", err.Error())
		}
		return nil, err
	}

	now := s.now().UTC()
	user := &model.User{
		UserID:             utils.NewID(),
		Username:           username,
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		Password:           hashed,
		Name:               strings.TrimSpace(req.Name),
		Surname:            strings.TrimSpace(req.Surname),
		Birthday:           req.Birthday,
		CreatedAt:          now,
		UpdatedAt:          now,
		LastPasswordChange: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrConflict) {
			utils.TrackAuthAttempt("failure", "signup")
			return nil, fmt.Errorf("username or email already in use: %w", model.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	utils.TrackAuthAttempt("success", "signup")
	slog.Info("user registered", "user_id", user.UserID, "username", user.Username)

	return s.openSession(ctx, user, client)
}

// Login checks credentials and, when enabled, the second factor.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, client ClientInfo) (*AuthResult, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.TrackAuthAttempt("failure", "login")
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if !services.ComparePasswords(user.Password, req.Password) {
		utils.TrackAuthAttempt("failure", "login")
		return nil, model.ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		if strings.TrimSpace(req.TwoFactorCode) == "" {
			return &AuthResult{User: user, RequiresTwoFactor: true}, nil
		}
		ok, err := s.twoFactor.Verify(ctx, user, req.TwoFactorCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			utils.TrackAuthAttempt("failure", "2fa")
			return nil, model.ErrInvalidTwoFactorCode
		}
		utils.TrackAuthAttempt("success", "2fa")
	}

	if err := s.enforceSessionLimit(ctx, user.UserID); err != nil {
		return nil, err
	}

	utils.TrackAuthAttempt("success", "login")
	return s.openSession(ctx, user, client)
}

// enforceSessionLimit ends the least recently active sessions so that a new
// one fits under the limit.
func (s *AuthService) enforceSessionLimit(ctx context.Context, userID string) error {
	active, err := s.sessions.ListActive(ctx, userID, s.now())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	for len(active) >= s.maxSessions {
		oldest := active[len(active)-1]
		if err := s.endSessions(ctx, oldest.SessionID); err != nil {
			return err
		}
		slog.Info("ended least active session", "user_id", userID, "session_id", oldest.SessionID)
		active = active[:len(active)-1]
	}
	return nil
}

func (s *AuthService) openSession(ctx context.Context, user *model.User, client ClientInfo) (*AuthResult, error) {
	now := s.now().UTC()
	session := &model.Session{
		SessionID:      utils.NewID(),
		UserID:         user.UserID,
		DisplayName:    utils.GenerateSessionName(client.UserAgent),
		DeviceInfo:     utils.DescribeDevice(client.UserAgent),
		IPAddress:      client.IPAddress,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.tokens.RefreshTTL()),
		LastActivityAt: now,
		IsActive:       true,
	}

	refresh, jti, err := s.tokens.GenerateRefreshToken(user, session.SessionID)
	if err != nil {
		return nil, err
	}
	session.RefreshJTI = jti

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.cacheSession(ctx, session)

	access, err := s.tokens.GenerateAccessToken(user, session.SessionID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:            user,
		Session:         session,
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresIn: s.tokens.AccessTTL(),
	}, nil
}

// Refresh rotates the refresh token. Presenting a token that was already
// rotated out ends the session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		utils.TrackAuthAttempt("failure", "refresh")
		return nil, err
	}

	session, err := s.loadSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrSessionInactive
		}
		return nil, err
	}
	if !session.IsActive || session.UserID != claims.UserID || !s.now().Before(session.ExpiresAt) {
		utils.TrackAuthAttempt("failure", "refresh")
		return nil, model.ErrSessionInactive
	}

	if session.RefreshJTI != claims.ID {
		return nil, s.reuseDetected(ctx, session)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrSessionInactive
		}
		return nil, err
	}

	refresh, newJTI, err := s.tokens.GenerateRefreshToken(user, session.SessionID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.tokens.RefreshTTL())
	if err := s.sessions.Rotate(ctx, session.SessionID, claims.ID, newJTI, now, expiresAt); err != nil {
		if errors.Is(err, model.ErrRefreshTokenReused) {
			return nil, s.reuseDetected(ctx, session)
		}
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}

	session.RefreshJTI = newJTI
	session.LastActivityAt = now
	session.ExpiresAt = expiresAt
	s.cacheSession(ctx, session)

	access, err := s.tokens.GenerateAccessToken(user, session.SessionID)
	if err != nil {
		return nil, err
	}

	utils.TrackAuthAttempt("success", "refresh")
	return &AuthResult{
		User:            user,
		Session:         session,
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresIn: s.tokens.AccessTTL(),
	}, nil
}

func (s *AuthService) reuseDetected(ctx context.Context, session *model.Session) error {
	utils.TrackAuthAttempt("failure", "refresh_reuse")
	slog.Warn("refresh token reuse detected, ending session",
		"user_id", session.UserID, "session_id", session.SessionID)
	if err := s.endSessions(ctx, session.SessionID); err != nil {
		slog.Error("failed to end session after reuse", "session_id", session.SessionID, "error", err)
	}
	return model.ErrRefreshTokenReused
}

// Logout ends the refresh token's session and revokes the access token. Both
// tokens are optional and bad tokens are ignored, so repeated calls succeed.
func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	if accessToken != "" {
		if claims, err := s.tokens.ParseAccessToken(accessToken); err == nil && s.revoker != nil {
			if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				slog.Warn("failed to blacklist access token", "error", err)
			}
		}
	}

	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil
	}

	session, err := s.loadSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		return err
	}
	if session.UserID != claims.UserID || !session.IsActive {
		return nil
	}
	return s.endSessions(ctx, session.SessionID)
}

// ListSessions returns the user's active sessions, most recently used first.
func (s *AuthService) ListSessions(ctx context.Context, userID string) ([]*model.Session, error) {
	return s.sessions.ListActive(ctx, userID, s.now())
}

// EndSession ends one of the user's own sessions.
func (s *AuthService) EndSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.UserID != userID || !session.IsActive {
		return model.ErrNotFound
	}
	return s.endSessions(ctx, sessionID)
}

// LogoutAll ends every session of the user, the current one included.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int, error) {
	ids, err := s.sessions.EndAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to end sessions: %w", err)
	}
	s.forgetSessions(ctx, ids...)
	return len(ids), nil
}

func (s *AuthService) endSessions(ctx context.Context, sessionID string) error {
	if err := s.sessions.End(ctx, sessionID); err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to end session: %w", err)
	}
	s.forgetSessions(ctx, sessionID)
	return nil
}

// forgetSessions drops cached copies and rejects outstanding access tokens.
func (s *AuthService) forgetSessions(ctx context.Context, sessionIDs ...string) {
	if len(sessionIDs) == 0 {
		return
	}
	if s.cache != nil {
		if err := s.cache.DeleteSession(ctx, sessionIDs...); err != nil {
			slog.Warn("failed to drop cached sessions", "error", err)
		}
	}
	if s.revoker != nil {
		if err := s.revoker.RevokeSession(ctx, s.tokens.AccessTTL(), sessionIDs...); err != nil {
			slog.Warn("failed to revoke session tokens", "error", err)
		}
	}
}

func (s *AuthService) loadSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSession(ctx, sessionID)
		if err != nil {
			slog.Warn("session cache lookup failed", "session_id", sessionID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}
	return s.sessions.FindByID(ctx, sessionID)
}

func (s *AuthService) cacheSession(ctx context.Context, session *model.Session) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetSession(ctx, session); err != nil {
		slog.Warn("failed to cache session", "session_id", session.SessionID, "error", err)
	}
}
