package urgency

import (
	"strings"
	"testing"
)

func TestComposeEmpty(t *testing.T) {
	title, body := Compose(nil)
	if title != "" || body != "" {
		t.Errorf("Compose(nil) = (%q, %q), want empty pair", title, body)
	}
}

func TestComposeSingleOverdue(t *testing.T) {
	title, body := Compose([]Item{{Name: "Passport", DaysUntilDue: -2}})

	if !strings.Contains(title, "Passport") {
		t.Errorf("title = %q, want it to name the item", title)
	}
	if !strings.Contains(title, "2 days overdue") {
		t.Errorf("title = %q, want %q in it", title, "2 days overdue")
	}
	if body != "Tap to review your deadlines." {
		t.Errorf("body = %q, want the fallback line", body)
	}
}

func TestComposeSingleDayOverdue(t *testing.T) {
	title, _ := Compose([]Item{{Name: "Parking Ticket", DaysUntilDue: -1}})
	if !strings.Contains(title, "1 day overdue") {
		t.Errorf("title = %q, want singular %q", title, "1 day overdue")
	}
}

func TestComposeHeadlineAndBuckets(t *testing.T) {
	title, body := Compose([]Item{
		{Name: "Visa", DaysUntilDue: 0},
		{Name: "Lease", DaysUntilDue: 5},
		{Name: "Tax Return", DaysUntilDue: 20},
	})

	if !strings.Contains(title, "Visa") {
		t.Errorf("title = %q, want headline Visa", title)
	}
	if !strings.Contains(title, "due TODAY") {
		t.Errorf("title = %q, want %q", title, "due TODAY")
	}
	if !strings.Contains(body, "1 due this week") {
		t.Errorf("body = %q, want %q in it", body, "1 due this week")
	}
	if !strings.Contains(body, "1 coming up") {
		t.Errorf("body = %q, want %q in it", body, "1 coming up")
	}
}

func TestComposeMoreInHeadlineBucket(t *testing.T) {
	title, body := Compose([]Item{
		{Name: "Work Permit", DaysUntilDue: -4},
		{Name: "Health Card", DaysUntilDue: -1},
		{Name: "Study Permit", DaysUntilDue: -9},
		{Name: "Car Insurance", DaysUntilDue: 6},
		{Name: "Tax Return", DaysUntilDue: 5},
		{Name: "SIN Renewal", DaysUntilDue: 4},
	})

	// Most overdue item headlines; the two other overdue ones count as "more".
	if !strings.Contains(title, "Study Permit") {
		t.Errorf("title = %q, want headline Study Permit", title)
	}
	if !strings.Contains(body, "2 more overdue") {
		t.Errorf("body = %q, want %q in it", body, "2 more overdue")
	}
	if !strings.Contains(body, "3 due this week") {
		t.Errorf("body = %q, want %q in it", body, "3 due this week")
	}
}

func TestComposeTomorrow(t *testing.T) {
	title, _ := Compose([]Item{{Name: "Visa", DaysUntilDue: 1}})
	if !strings.Contains(title, "due TOMORROW") {
		t.Errorf("title = %q, want %q", title, "due TOMORROW")
	}
}

func TestComposeTieBreakFirstSeen(t *testing.T) {
	title, _ := Compose([]Item{
		{Name: "First", DaysUntilDue: 3},
		{Name: "Second", DaysUntilDue: 3},
	})
	if !strings.Contains(title, "First") {
		t.Errorf("title = %q, want the first-seen item to win the tie", title)
	}
}

func TestComposeIdempotent(t *testing.T) {
	items := []Item{
		{Name: "Visa", DaysUntilDue: 0},
		{Name: "Lease", DaysUntilDue: 5},
	}
	t1, b1 := Compose(items)
	t2, b2 := Compose(items)
	if t1 != t2 || b1 != b2 {
		t.Errorf("Compose not stable: (%q, %q) vs (%q, %q)", t1, b1, t2, b2)
	}
}
