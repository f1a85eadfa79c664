package model

import "time"

// In-app notification severities. Overdue and critical headlines are tagged
// urgent; everything else is a plain reminder.
const (
	SeverityUrgent   = "urgent"
	SeverityReminder = "reminder"
	SeverityInfo     = "info"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Severity  string    `json:"severity"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
