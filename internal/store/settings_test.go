package store

import (
	"testing"
	"time"

	"github.com/cityhelper/cityhelper/internal/database"
)

func setupSettingsTestDB(t *testing.T) (*SettingsStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	result, err := db.Exec("INSERT INTO users (email) VALUES ('test@example.com')")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	userID, _ := result.LastInsertId()
	return NewSettingsStore(db), userID
}

func TestSettingsGetMissing(t *testing.T) {
	s, uid := setupSettingsTestDB(t)

	st, err := s.Get(uid)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if st != nil {
		t.Error("expected nil for missing settings row")
	}
}

func TestSettingsSetPushSubscription(t *testing.T) {
	s, uid := setupSettingsTestDB(t)

	if err := s.SetPushSubscription(uid, "https://push.example.com/e1", "p256", "auth"); err != nil {
		t.Fatalf("set subscription: %v", err)
	}

	st, err := s.Get(uid)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if st == nil {
		t.Fatal("expected settings row")
	}
	if !st.PushEnabled {
		t.Error("push should be enabled after subscribing")
	}
	if !st.HasSubscription() {
		t.Error("expected a complete subscription on file")
	}

	// Re-subscribing replaces the keys on the same row.
	if err := s.SetPushSubscription(uid, "https://push.example.com/e2", "p2", "a2"); err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}
	st, _ = s.Get(uid)
	if st.PushEndpoint != "https://push.example.com/e2" {
		t.Errorf("endpoint = %q, want replaced", st.PushEndpoint)
	}
}

func TestSettingsClearPushSubscriptionKeepsThrottle(t *testing.T) {
	s, uid := setupSettingsTestDB(t)

	s.SetPushSubscription(uid, "https://push.example.com/e1", "p", "a")
	sent := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if err := s.SetLastPushSent(uid, sent); err != nil {
		t.Fatalf("set last push sent: %v", err)
	}

	if err := s.ClearPushSubscription(uid); err != nil {
		t.Fatalf("clear subscription: %v", err)
	}

	st, _ := s.Get(uid)
	if st.HasSubscription() {
		t.Error("subscription should be cleared")
	}
	if st.LastPushSent == nil || !st.LastPushSent.Equal(sent) {
		t.Errorf("last_push_sent = %v, want untouched %v", st.LastPushSent, sent)
	}
}

func TestSettingsDisablePushDropsSubscription(t *testing.T) {
	s, uid := setupSettingsTestDB(t)

	s.SetPushSubscription(uid, "https://push.example.com/e1", "p", "a")
	if err := s.SetPushEnabled(uid, false); err != nil {
		t.Fatalf("disable push: %v", err)
	}

	st, _ := s.Get(uid)
	if st.PushEnabled {
		t.Error("push should be disabled")
	}
	if st.HasSubscription() {
		t.Error("subscription should be dropped on disable")
	}
}

func TestSettingsListPushTargets(t *testing.T) {
	s, uid := setupSettingsTestDB(t)

	// Second and third users: one disabled, one with no subscription.
	r2, _ := s.db.Exec("INSERT INTO users (email) VALUES ('two@example.com')")
	uid2, _ := r2.LastInsertId()
	r3, _ := s.db.Exec("INSERT INTO users (email) VALUES ('three@example.com')")
	uid3, _ := r3.LastInsertId()

	s.SetPushSubscription(uid, "https://push.example.com/e1", "p", "a")
	s.SetPushSubscription(uid2, "https://push.example.com/e2", "p", "a")
	s.SetPushEnabled(uid2, false)
	s.SetPushEnabled(uid3, true)

	targets, err := s.ListPushTargets()
	if err != nil {
		t.Fatalf("list push targets: %v", err)
	}
	if len(targets) != 1 {
		t.Fatalf("len = %d, want 1", len(targets))
	}
	if targets[0].UserID != uid {
		t.Errorf("target = user %d, want %d", targets[0].UserID, uid)
	}
}

func TestSettingsSetPhone(t *testing.T) {
	s, uid := setupSettingsTestDB(t)

	if err := s.SetPhone(uid, "+14165550100", true); err != nil {
		t.Fatalf("set phone: %v", err)
	}
	st, _ := s.Get(uid)
	if st.PhoneNumber != "+14165550100" || !st.PhoneVerified {
		t.Errorf("phone = (%q, %v), want verified number", st.PhoneNumber, st.PhoneVerified)
	}
}

func TestSettingsMarkWelcomedOnce(t *testing.T) {
	s, uid := setupSettingsTestDB(t)
	s.Ensure(uid)

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := s.MarkWelcomed(uid, first); err != nil {
		t.Fatalf("mark welcomed: %v", err)
	}
	// A second call must not move the timestamp.
	s.MarkWelcomed(uid, first.Add(24*time.Hour))

	st, _ := s.Get(uid)
	if st.WelcomedAt == nil || !st.WelcomedAt.Equal(first) {
		t.Errorf("welcomed_at = %v, want %v", st.WelcomedAt, first)
	}
}
