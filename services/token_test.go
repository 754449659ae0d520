package services

import (
	"errors"
	"testing"
	"time"

	"selfie/model"
)

func TestTokenService(t *testing.T) {
	svc := NewTokenService("secret", "selfie", 15*time.Minute, 7*24*time.Hour)
	user := &model.User{UserID: "u1", Username: "alice"}

	access, err := svc.GenerateAccessToken(user, "s1")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	refresh, jti, err := svc.GenerateRefreshToken(user, "s1")
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	claims, err := svc.ParseAccessToken(access)
	if err != nil {
		t.Fatalf("ParseAccessToken() error = %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" || claims.SessionID != "s1" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if d := svc.ExpiresIn(claims); d <= 14*time.Minute || d > 15*time.Minute {
		t.Errorf("ExpiresIn() = %v", d)
	}

	rc, err := svc.ParseRefreshToken(refresh)
	if err != nil || rc.ID != jti {
		t.Fatalf("ParseRefreshToken() = %+v, %v; want jti %s", rc, err, jti)
	}

	tests := []struct {
		name  string
		parse func(string) (*Claims, error)
		token string
		want  error
	}{
		{"empty", svc.ParseAccessToken, "", model.ErrTokenMissing},
		{"garbage", svc.ParseAccessToken, "not.a.jwt", model.ErrTokenInvalid},
		{"refresh as access", svc.ParseAccessToken, refresh, model.ErrTokenInvalid},
		{"access as refresh", svc.ParseRefreshToken, access, model.ErrTokenInvalid},
		{"other secret", NewTokenService("other", "selfie", time.Minute, time.Hour).ParseAccessToken, access, model.ErrTokenInvalid},
		{"other issuer", NewTokenService("secret", "someone", time.Minute, time.Hour).ParseAccessToken, access, model.ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.parse(tt.token); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("secret", "selfie", time.Minute, time.Hour)
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateAccessToken(&model.User{UserID: "u1"}, "s1")
	if err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := svc.ParseAccessToken(token); !errors.Is(err, model.ErrTokenExpired) {
		t.Errorf("ParseAccessToken() error = %v, want ErrTokenExpired", err)
	}
}
