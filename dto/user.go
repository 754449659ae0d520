package dto

import (
	"time"

	"selfie/model"
)

type UserLink struct {
	Href   string `json:"href"`
	Method string `json:"method,omitempty"` // Optional: GET, POST, PUT, DELETE, PATCH
}

type UserProfileResponse struct {
	ID               string              `json:"id"`
	Username         string              `json:"username"`
	Email            string              `json:"email"`
	Name             string              `json:"name,omitempty"`
	Surname          string              `json:"surname,omitempty"`
	Birthday         *time.Time          `json:"birthday,omitempty"`
	AvatarURL        string              `json:"avatar_url,omitempty"`
	TwoFactorEnabled bool                `json:"two_factor_enabled"`
	PushDevices      int                 `json:"push_devices"`
	CreatedAt        time.Time           `json:"created_at"`
	Links            map[string]UserLink `json:"_links,omitempty"` // HAL UserLinks
}

// ToUserProfileResponse renders user; baseURL turns the avatar id into a link.
func ToUserProfileResponse(user *model.User, baseURL string, links map[string]UserLink) UserProfileResponse {
	resp := UserProfileResponse{
		ID:               user.UserID,
		Username:         user.Username,
		Email:            user.Email,
		Name:             user.Name,
		Surname:          user.Surname,
		Birthday:         user.Birthday,
		TwoFactorEnabled: user.TwoFactorEnabled,
		PushDevices:      len(user.PushSubscriptions),
		CreatedAt:        user.CreatedAt,
		Links:            links,
	}
	if user.AvatarID != "" {
		resp.AvatarURL = MediaURL(baseURL, user.AvatarID)
	}
	return resp
}

// ProfileLinks are the account actions a profile response advertises.
func ProfileLinks() map[string]UserLink {
	return map[string]UserLink{
		"self":     {Href: "/api/users/me", Method: "GET"},
		"update":   {Href: "/api/users/me", Method: "PATCH"},
		"password": {Href: "/api/users/me/password", Method: "POST"},
		"sessions": {Href: "/api/sessions", Method: "GET"},
		"delete":   {Href: "/api/users/me", Method: "DELETE"},
	}
}

type SessionResponse struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	DeviceInfo   string    `json:"device_info"`
	IPAddress    string    `json:"ip_address"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
	Current      bool      `json:"current"`
}

func ToSessionResponse(s *model.Session, currentID string) SessionResponse {
	return SessionResponse{
		ID:           s.SessionID,
		DisplayName:  s.DisplayName,
		DeviceInfo:   s.DeviceInfo,
		IPAddress:    s.IPAddress,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivityAt,
		ExpiresAt:    s.ExpiresAt,
		Current:      s.SessionID == currentID,
	}
}

func ToSessionResponses(sessions []*model.Session, currentID string) []SessionResponse {
	out := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = ToSessionResponse(s, currentID)
	}
	return out
}

// AuthResponse carries a fresh access token. The refresh token travels only
// in the HTTP-only cookie.
type AuthResponse struct {
	AccessToken string               `json:"access_token"`
	TokenType   string               `json:"token_type"`
	ExpiresIn   int64                `json:"expires_in"`
	User        *UserProfileResponse `json:"user,omitempty"`
	Session     *SessionResponse     `json:"session,omitempty"`
}
