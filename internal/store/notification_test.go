package store

import (
	"testing"
	"time"

	"github.com/cityhelper/cityhelper/internal/database"
	"github.com/cityhelper/cityhelper/internal/model"
)

func setupNotificationTestDB(t *testing.T) (*NotificationStore, int64) {
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
	return NewNotificationStore(db), userID
}

func TestNotificationInsert(t *testing.T) {
	s, uid := setupNotificationTestDB(t)

	n, err := s.Insert(uid, "⏰ Visa: due TODAY", "Tap to review your deadlines.", model.SeverityUrgent)
	if err != nil {
		t.Fatalf("insert notification: %v", err)
	}
	if n.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if n.Severity != model.SeverityUrgent {
		t.Errorf("severity = %q, want %q", n.Severity, model.SeverityUrgent)
	}
	if n.Read {
		t.Error("new notification should be unread")
	}
}

func TestNotificationUnreadCountAndMarkRead(t *testing.T) {
	s, uid := setupNotificationTestDB(t)

	n1, _ := s.Insert(uid, "a", "", model.SeverityReminder)
	s.Insert(uid, "b", "", model.SeverityReminder)

	count, err := s.UnreadCount(uid)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 2 {
		t.Errorf("unread = %d, want 2", count)
	}

	if err := s.MarkRead(n1.ID, uid); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	count, _ = s.UnreadCount(uid)
	if count != 1 {
		t.Errorf("unread = %d, want 1", count)
	}

	if err := s.MarkAllRead(uid); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	count, _ = s.UnreadCount(uid)
	if count != 0 {
		t.Errorf("unread = %d, want 0", count)
	}
}

func TestNotificationListNewestFirst(t *testing.T) {
	s, uid := setupNotificationTestDB(t)

	s.Insert(uid, "first", "", model.SeverityInfo)
	s.Insert(uid, "second", "", model.SeverityInfo)

	list, err := s.ListByUser(uid, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Title != "second" {
		t.Errorf("first entry = %q, want newest first", list[0].Title)
	}
}

func TestNotificationDeleteOlderThan(t *testing.T) {
	s, uid := setupNotificationTestDB(t)

	s.Insert(uid, "old", "", model.SeverityInfo)
	// Future cutoff removes everything inserted so far.
	deleted, err := s.DeleteOlderThan(time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}
