package services

import (
	"errors"
	"fmt"
	"time"

	"selfie/model"
	"selfie/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	SessionID string `json:"sid"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the HMAC access and refresh tokens.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// GenerateAccessToken issues a short-lived token for API calls.
func (s *TokenService) GenerateAccessToken(user *model.User, sessionID string) (string, error) {
	token, _, err := s.generate(user.UserID, user.Username, sessionID, TokenTypeAccess, s.accessTTL)
	if err == nil {
		utils.TokenUsage.WithLabelValues(TokenTypeAccess, "generated").Inc()
	}
	return token, err
}

// GenerateRefreshToken issues a long-lived token and returns its jti so the
// session can pin the current one.
func (s *TokenService) GenerateRefreshToken(user *model.User, sessionID string) (string, string, error) {
	token, jti, err := s.generate(user.UserID, user.Username, sessionID, TokenTypeRefresh, s.refreshTTL)
	if err == nil {
		utils.TokenUsage.WithLabelValues(TokenTypeRefresh, "generated").Inc()
	}
	return token, jti, err
}

func (s *TokenService) generate(userID, username, sessionID, tokenType string, ttl time.Duration) (string, string, error) {
	now := s.now()
	jti := uuid.NewString()
	claims := Claims{
		UserID:    userID,
		Username:  username,
		SessionID: sessionID,
		Type:      tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, jti, nil
}

// ParseAccessToken validates an access token. Expiry maps to model.ErrTokenExpired,
// everything else to model.ErrTokenInvalid.
func (s *TokenService) ParseAccessToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, TokenTypeAccess)
}

func (s *TokenService) ParseRefreshToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, TokenTypeRefresh)
}

func (s *TokenService) parse(tokenString, tokenType string) (*Claims, error) {
	if tokenString == "" {
		return nil, model.ErrTokenMissing
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		utils.TokenUsage.WithLabelValues(tokenType, "rejected").Inc()
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}

	if claims.Type != tokenType || claims.UserID == "" {
		utils.TokenUsage.WithLabelValues(tokenType, "rejected").Inc()
		return nil, fmt.Errorf("%w: unexpected token type %q", model.ErrTokenInvalid, claims.Type)
	}

	return claims, nil
}

// ExpiresIn reports how long until the token's exp, clamped at zero.
func (s *TokenService) ExpiresIn(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	if d := claims.ExpiresAt.Time.Sub(s.now()); d > 0 {
		return d
	}
	return 0
}
