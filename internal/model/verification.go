package model

import "time"

// PhoneVerification is a pending SMS code. At most one row per user; a new
// request replaces the old one.
type PhoneVerification struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	PhoneNumber string    `json:"phone_number"`
	Code        string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expired reports whether the code is past its expiry at the given instant.
func (v *PhoneVerification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
