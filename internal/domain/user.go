package domain

import (
	"time"
)

type User struct {
	ID               int64
	TelegramID       int64
	TelegramUsername string
	VpnID            *int64
	IsActive         bool
	ExpiresAt        *time.Time
	Balance          int64
	Settings         map[string]string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasActiveSubscription reports whether the account is enabled and has paid
// time left.
func (u *User) HasActiveSubscription() bool {
	if !u.IsActive || u.ExpiresAt == nil {
		return false
	}
	return u.ExpiresAt.After(time.Now())
}
