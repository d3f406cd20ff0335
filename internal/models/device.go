package models

import "time"

// Device is one login session's client context, not a durable hardware identity.
// A new row is inserted on every login.
type Device struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	UserAgent  string    `json:"user_agent"`
	IP         string    `json:"ip"`
	LastActive time.Time `json:"last_active"`
	IsActive   bool      `json:"is_active"`
}

type RefreshToken struct {
	Token     string    `json:"-"`
	UserID    int       `json:"user_id"`
	DeviceID  int       `json:"device_id"`
	ExpiresAt time.Time `json:"expires_at"`

	// populated by lookups that join users and roles
	User *User `json:"-"`
}
