package model

import "time"

// Compliance item categories. Purely descriptive; the reminder logic only
// looks at the due date.
const (
	CategoryTax         = "tax"
	CategoryImmigration = "immigration"
	CategoryParking     = "parking"
	CategoryLicense     = "license"
	CategoryInsurance   = "insurance"
	CategoryRenewal     = "renewal"
	CategoryOther       = "other"
)

// Compliance item statuses. Reminder sweeps consider active, pending, and
// unset; archived and done items are never scanned.
const (
	ItemStatusActive   = "active"
	ItemStatusPending  = "pending"
	ItemStatusUnset    = "unset"
	ItemStatusArchived = "archived"
	ItemStatusDone     = "done"
)

type ComplianceItem struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Status    string     `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	PayURL    string     `json:"pay_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Scannable reports whether the item's status makes it eligible for
// reminder sweeps.
func (i *ComplianceItem) Scannable() bool {
	switch i.Status {
	case ItemStatusActive, ItemStatusPending, ItemStatusUnset:
		return true
	}
	return false
}
