package model

import "time"

type PushKeys struct {
	P256dh string `bson:"p256dh" json:"p256dh" binding:"required"`
	Auth   string `bson:"auth" json:"auth" binding:"required"`
}

// PushSubscription is a browser Web Push endpoint registered by a user.
type PushSubscription struct {
	Endpoint  string    `bson:"endpoint" json:"endpoint" binding:"required,url"`
	Keys      PushKeys  `bson:"keys" json:"keys" binding:"required"`
	UserAgent string    `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type User struct {
	UserID    string     `bson:"_id" json:"user_id"`
	Username  string     `bson:"username" json:"username"`
	Email     string     `bson:"email" json:"email"`
	Password  string     `bson:"password" json:"-"`
	Name      string     `bson:"name" json:"name"`
	Surname   string     `bson:"surname" json:"surname"`
	Birthday  *time.Time `bson:"birthday,omitempty" json:"birthday,omitempty"`
	AvatarID  string     `bson:"avatar_id,omitempty" json:"avatar_id,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`

	LastPasswordChange time.Time `bson:"last_password_change,omitempty" json:"-"`

	// TimeOffset shifts the user's "now" for the time machine.
	TimeOffset time.Duration `bson:"time_offset" json:"-"`

	PushSubscriptions []PushSubscription `bson:"push_subscriptions,omitempty" json:"-"`

	TwoFactorEnabled       bool     `bson:"two_factor_enabled" json:"two_factor_enabled"`
	TwoFactorSecret        string   `bson:"two_factor_secret,omitempty" json:"-"`
	TwoFactorPendingSecret string   `bson:"two_factor_pending_secret,omitempty" json:"-"`
	RecoveryCodes          []string `bson:"recovery_codes,omitempty" json:"-"`
}

// Now returns the user's virtual time for a given real instant.
func (u *User) Now(real time.Time) time.Time {
	if u == nil {
		return real
	}
	return real.Add(u.TimeOffset)
}

// UserUpdate carries the profile fields a user may change. Nil fields are left untouched.
type UserUpdate struct {
	Email    *string    `json:"email" binding:"omitempty,email"`
	Name     *string    `json:"name" binding:"omitempty,max=100"`
	Surname  *string    `json:"surname" binding:"omitempty,max=100"`
	Birthday *time.Time `json:"birthday"`
	AvatarID *string    `json:"avatar_id"`
}

type SignupRequest struct {
	Username string     `json:"username" binding:"required,username"`
	Password string     `json:"password" binding:"required,password"`
	Email    string     `json:"email" binding:"required,email"`
	Name     string     `json:"name" binding:"max=100"`
	Surname  string     `json:"surname" binding:"max=100"`
	Birthday *time.Time `json:"birthday"`
}

type LoginRequest struct {
	Username      string `json:"username" binding:"required"`
	Password      string `json:"password" binding:"required"`
	TwoFactorCode string `json:"two_factor_code"`
}
