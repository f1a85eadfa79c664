package urgency

import (
	"fmt"
	"strings"
)

// Item is a notifiable deadline as the composer sees it: a display name and
// the precomputed days-until-due.
type Item struct {
	Name         string
	DaysUntilDue int
}

// bucket groups items for the body summary. Critical and urgent are separate
// buckets so "due soon" and "due this week" counts stay distinct.
type bucket int

const (
	bucketOverdue bucket = iota
	bucketCritical
	bucketUrgent
	bucketLater
)

func bucketFor(days int) bucket {
	switch {
	case days < 0:
		return bucketOverdue
	case days <= 3:
		return bucketCritical
	case days <= 7:
		return bucketUrgent
	default:
		return bucketLater
	}
}

var bucketLabels = map[bucket]string{
	bucketOverdue:  "overdue",
	bucketCritical: "due soon",
	bucketUrgent:   "due this week",
	bucketLater:    "coming up",
}

// Compose builds the push title and body for a user's notifiable items.
// The single most urgent item (smallest days-until-due, first seen wins ties)
// headlines the title; every other item is summarized as a per-bucket count
// in the body. An empty item list yields an empty title and body, which the
// caller must treat as "do not send".
func Compose(items []Item) (title, body string) {
	if len(items) == 0 {
		return "", ""
	}

	headline := 0
	for i, it := range items {
		if it.DaysUntilDue < items[headline].DaysUntilDue {
			headline = i
		}
	}

	head := items[headline]
	title = fmt.Sprintf("%s %s: %s", Classify(head.DaysUntilDue).Glyph, head.Name, duePhrase(head.DaysUntilDue))

	var counts [4]int
	for i, it := range items {
		if i == headline {
			continue
		}
		counts[bucketFor(it.DaysUntilDue)]++
	}

	headBucket := bucketFor(head.DaysUntilDue)
	var parts []string
	for b := bucketOverdue; b <= bucketLater; b++ {
		n := counts[b]
		if n == 0 {
			continue
		}
		label := bucketLabels[b]
		if b == headBucket {
			// Same bucket as the headline: "2 more overdue", not "2 overdue".
			label = "more " + label
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, label))
	}

	if len(parts) == 0 {
		return title, "Tap to review your deadlines."
	}
	return title, "Plus: " + strings.Join(parts, ", ") + "."
}

func duePhrase(days int) string {
	switch {
	case days == -1:
		return "1 day overdue"
	case days < 0:
		return fmt.Sprintf("%d days overdue", -days)
	case days == 0:
		return "due TODAY"
	case days == 1:
		return "due TOMORROW"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}
