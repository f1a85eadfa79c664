package model

import "time"

// UserSettings is the single per-user row holding notification delivery
// state: the web push subscription, the push gate, and the timestamp of
// the last successful push (the throttle anchor). last_push_sent advances
// only on confirmed delivery and is never rolled back.
type UserSettings struct {
	UserID        int64      `json:"user_id"`
	PushEnabled   bool       `json:"push_enabled"`
	PushEndpoint  string     `json:"push_endpoint,omitempty"`
	PushP256dh    string     `json:"-"`
	PushAuth      string     `json:"-"`
	LastPushSent  *time.Time `json:"last_push_sent,omitempty"`
	LastActive    *time.Time `json:"last_active,omitempty"`
	PhoneNumber   string     `json:"phone_number,omitempty"`
	PhoneVerified bool       `json:"phone_verified"`
	WelcomedAt    *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// HasSubscription reports whether a complete push subscription is on file.
func (s *UserSettings) HasSubscription() bool {
	return s.PushEndpoint != "" && s.PushP256dh != "" && s.PushAuth != ""
}
