package reminder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cityhelper/cityhelper/internal/model"
	"github.com/cityhelper/cityhelper/internal/push"
	"github.com/cityhelper/cityhelper/internal/store"
	"github.com/cityhelper/cityhelper/internal/urgency"
)

// ErrNotConfigured is returned when a sweep is attempted without push
// credentials. Nothing is read or written in that case.
var ErrNotConfigured = errors.New("reminder: push delivery not configured")

// Sender delivers one push payload. push.Service implements it; tests swap
// in a fake.
type Sender interface {
	Send(sub push.Subscription, payload push.Payload) error
}

// Broadcaster forwards a freshly written in-app notification to connected
// clients. May be nil.
type Broadcaster interface {
	Notify(userID int64, n model.Notification)
}

// Results are the counters accumulated over one sweep.
type Results struct {
	UsersChecked int `json:"users_checked"`
	ItemsChecked int `json:"items_checked"`
	PushSent     int `json:"push_sent"`
	InAppWritten int `json:"in_app_written"`
}

// Runner performs reminder sweeps: for every user with push enabled it
// classifies their deadlines, throttles on the most urgent tier, composes
// one summary notification, and dispatches it.
type Runner struct {
	settings  *store.SettingsStore
	items     *store.ItemStore
	notifs    *store.NotificationStore
	sender    Sender
	broadcast Broadcaster
	logger    *slog.Logger
	now       func() time.Time
}

func NewRunner(settings *store.SettingsStore, items *store.ItemStore, notifs *store.NotificationStore, sender Sender, broadcast Broadcaster, logger *slog.Logger) *Runner {
	return &Runner{
		settings:  settings,
		items:     items,
		notifs:    notifs,
		sender:    sender,
		broadcast: broadcast,
		logger:    logger,
		now:       time.Now,
	}
}

// Run performs one sweep. Per-user failures are isolated: a delivery or
// storage error for one user never aborts the others.
func (r *Runner) Run(ctx context.Context) (Results, error) {
	var res Results

	if r.sender == nil {
		return res, ErrNotConfigured
	}

	targets, err := r.settings.ListPushTargets()
	if err != nil {
		return res, err
	}

	for _, user := range targets {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.UsersChecked++
		r.sweepUser(user, &res)
	}
	return res, nil
}

func (r *Runner) sweepUser(user model.UserSettings, res *Results) {
	now := r.now()

	items, err := r.items.ListNotifiable(user.UserID)
	if err != nil {
		r.logger.Error("list notifiable items", "user_id", user.UserID, "error", err)
		return
	}

	var notifiable []urgency.Item
	headline := urgency.Level{Tier: urgency.TierNone}
	for _, it := range items {
		if it.DueDate == nil {
			// Malformed date surfaced as nil; the item sits out this sweep.
			continue
		}
		res.ItemsChecked++

		days := urgency.DaysUntil(*it.DueDate, now)
		lvl := urgency.Classify(days)
		if !lvl.Notifiable() {
			continue
		}
		if len(notifiable) == 0 || days < mostUrgent(notifiable) {
			headline = lvl
		}
		notifiable = append(notifiable, urgency.Item{Name: it.Name, DaysUntilDue: days})
	}

	if len(notifiable) == 0 {
		return
	}

	// Throttle on the headline tier. The read happens before composing so a
	// failed send leaves the anchor untouched for the next sweep.
	if user.LastPushSent != nil {
		hoursSince := now.Sub(*user.LastPushSent).Hours()
		if hoursSince < float64(headline.MinHours) {
			return
		}
	}

	title, body := urgency.Compose(notifiable)
	if title == "" {
		return
	}

	err = r.sender.Send(push.Subscription{
		Endpoint: user.PushEndpoint,
		P256dh:   user.PushP256dh,
		Auth:     user.PushAuth,
	}, push.Payload{
		Title: title,
		Body:  body,
		URL:   "/dashboard",
		Tag:   "deadline-reminder",
	})

	switch {
	case errors.Is(err, push.ErrExpired):
		// Dead endpoint: stop wasting attempts until the user re-subscribes.
		if err := r.settings.ClearPushSubscription(user.UserID); err != nil {
			r.logger.Error("clear expired subscription", "user_id", user.UserID, "error", err)
		}
	case err != nil:
		// Transient: no state change, the next sweep retries naturally.
		r.logger.Warn("push delivery failed", "user_id", user.UserID, "error", err)
	default:
		if err := r.settings.SetLastPushSent(user.UserID, now); err != nil {
			r.logger.Error("advance throttle anchor", "user_id", user.UserID, "error", err)
		}
		res.PushSent++

		n, err := r.notifs.Insert(user.UserID, title, body, severityFor(headline.Tier))
		if err != nil {
			r.logger.Error("write in-app notification", "user_id", user.UserID, "error", err)
			return
		}
		res.InAppWritten++
		if r.broadcast != nil {
			r.broadcast.Notify(user.UserID, *n)
		}
	}
}

func mostUrgent(items []urgency.Item) int {
	min := items[0].DaysUntilDue
	for _, it := range items[1:] {
		if it.DaysUntilDue < min {
			min = it.DaysUntilDue
		}
	}
	return min
}

func severityFor(tier urgency.Tier) string {
	switch tier {
	case urgency.TierOverdue, urgency.TierCritical:
		return model.SeverityUrgent
	default:
		return model.SeverityReminder
	}
}
