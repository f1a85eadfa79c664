package urgency

import "time"

type Tier string

const (
	TierOverdue  Tier = "overdue"
	TierCritical Tier = "critical"
	TierUrgent   Tier = "urgent"
	TierWarning  Tier = "warning"
	TierUpcoming Tier = "upcoming"
	TierNone     Tier = "none"
)

// Level is the classification of a deadline: its display tier, the minimum
// number of hours that must pass before the user may be notified again, and
// the glyph used as a title prefix.
type Level struct {
	Tier     Tier
	MinHours int
	Glyph    string
}

// Notifiable reports whether a deadline at this level should ever trigger a
// notification. Anything more than 30 days out (or with no due date) is quiet.
func (l Level) Notifiable() bool {
	return l.Tier != TierNone
}

// Classify maps days-until-due to a Level. Negative means overdue. The table
// is evaluated top to bottom, first match wins.
//
// The interval inside the critical band is two-level: due today or tomorrow
// re-notifies after 6 hours, 2-3 days out after 12. The display tier is the
// same for all four; only the cadence tightens.
func Classify(daysUntilDue int) Level {
	switch {
	case daysUntilDue < 0:
		return Level{Tier: TierOverdue, MinHours: 12, Glyph: "🚨"}
	case daysUntilDue <= 1:
		return Level{Tier: TierCritical, MinHours: 6, Glyph: "⏰"}
	case daysUntilDue <= 3:
		return Level{Tier: TierCritical, MinHours: 12, Glyph: "⏰"}
	case daysUntilDue <= 7:
		return Level{Tier: TierUrgent, MinHours: 24, Glyph: "⚠️"}
	case daysUntilDue <= 14:
		return Level{Tier: TierWarning, MinHours: 48, Glyph: "📅"}
	case daysUntilDue <= 30:
		return Level{Tier: TierUpcoming, MinHours: 168, Glyph: "🔔"}
	default:
		return Level{Tier: TierNone}
	}
}

// DaysUntil returns the whole number of calendar days between now and due.
// Each value's calendar date is read in its own location, so an item due
// later today is 0 days out and one that slipped past midnight is -1
// regardless of the hour, the server timezone, or DST transitions.
func DaysUntil(due, now time.Time) int {
	dy, dm, dd := due.Date()
	ny, nm, nd := now.Date()
	d := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(d.Sub(n) / (24 * time.Hour))
}
