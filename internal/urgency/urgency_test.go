package urgency

import (
	"testing"
	"time"
)

func TestClassifyOverdue(t *testing.T) {
	for _, d := range []int{-1, -2, -30, -365} {
		lvl := Classify(d)
		if lvl.Tier != TierOverdue {
			t.Errorf("Classify(%d).Tier = %q, want %q", d, lvl.Tier, TierOverdue)
		}
		if lvl.MinHours != 12 {
			t.Errorf("Classify(%d).MinHours = %d, want 12", d, lvl.MinHours)
		}
	}
}

func TestClassifyCritical(t *testing.T) {
	// Due today and tomorrow use the tighter 6-hour cadence; 2-3 days out
	// share the tier but relax to 12 hours.
	tests := []struct {
		days     int
		minHours int
	}{
		{0, 6},
		{1, 6},
		{2, 12},
		{3, 12},
	}
	for _, tt := range tests {
		lvl := Classify(tt.days)
		if lvl.Tier != TierCritical {
			t.Errorf("Classify(%d).Tier = %q, want %q", tt.days, lvl.Tier, TierCritical)
		}
		if lvl.MinHours != tt.minHours {
			t.Errorf("Classify(%d).MinHours = %d, want %d", tt.days, lvl.MinHours, tt.minHours)
		}
	}
}

func TestClassifyBands(t *testing.T) {
	tests := []struct {
		days     int
		tier     Tier
		minHours int
	}{
		{4, TierUrgent, 24},
		{7, TierUrgent, 24},
		{8, TierWarning, 48},
		{14, TierWarning, 48},
		{15, TierUpcoming, 168},
		{30, TierUpcoming, 168},
	}
	for _, tt := range tests {
		lvl := Classify(tt.days)
		if lvl.Tier != tt.tier {
			t.Errorf("Classify(%d).Tier = %q, want %q", tt.days, lvl.Tier, tt.tier)
		}
		if lvl.MinHours != tt.minHours {
			t.Errorf("Classify(%d).MinHours = %d, want %d", tt.days, lvl.MinHours, tt.minHours)
		}
	}
}

func TestClassifyFarFuture(t *testing.T) {
	for _, d := range []int{31, 60, 1000} {
		lvl := Classify(d)
		if lvl.Tier != TierNone {
			t.Errorf("Classify(%d).Tier = %q, want %q", d, lvl.Tier, TierNone)
		}
		if lvl.Notifiable() {
			t.Errorf("Classify(%d) should not be notifiable", d)
		}
	}
}

func TestClassifyNotifiable(t *testing.T) {
	if !Classify(0).Notifiable() {
		t.Error("same-day deadline should be notifiable")
	}
	if !Classify(-5).Notifiable() {
		t.Error("overdue deadline should be notifiable")
	}
	if Classify(31).Notifiable() {
		t.Error("31 days out should not be notifiable")
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"later today", time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC), 0},
		{"earlier today", time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC), 0},
		{"tomorrow", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), 1},
		{"yesterday late", time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC), -1},
		{"two weeks out", time.Date(2026, 3, 24, 9, 0, 0, 0, time.UTC), 14},
		{"a month overdue", time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC), -30},
	}
	for _, tt := range tests {
		if got := DaysUntil(tt.due, now); got != tt.want {
			t.Errorf("%s: DaysUntil = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestDaysUntilWestOfUTC(t *testing.T) {
	// Stored due dates are bare calendar dates parsed as midnight UTC. On a
	// server west of UTC that instant falls on the previous local day; the
	// day count must still come from the calendar dates themselves.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	due := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"due today, local noon", time.Date(2026, 3, 16, 12, 0, 0, 0, loc), 0},
		{"due today, local morning", time.Date(2026, 3, 16, 1, 0, 0, 0, loc), 0},
		{"due tomorrow, local evening", time.Date(2026, 3, 15, 23, 0, 0, 0, loc), 1},
		{"one day overdue", time.Date(2026, 3, 17, 8, 0, 0, 0, loc), -1},
	}
	for _, tt := range tests {
		if got := DaysUntil(due, tt.now); got != tt.want {
			t.Errorf("%s: DaysUntil = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestDaysUntilAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// March 8 2026 is a 23-hour day in New York. Counting calendar dates must
	// not lose a day to the missing hour.
	now := time.Date(2026, 3, 7, 9, 0, 0, 0, loc)
	due := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	if got := DaysUntil(due, now); got != 2 {
		t.Errorf("DaysUntil across spring forward = %d, want 2", got)
	}
}
