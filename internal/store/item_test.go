package store

import (
	"testing"
	"time"

	"github.com/cityhelper/cityhelper/internal/database"
	"github.com/cityhelper/cityhelper/internal/model"
	"github.com/cityhelper/cityhelper/internal/vault"
)

func setupItemTestDB(t *testing.T, cipher *vault.Cipher) (*ItemStore, int64) {
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

	return NewItemStore(db, cipher), userID
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestItemCreate(t *testing.T) {
	s, uid := setupItemTestDB(t, nil)

	it, err := s.Create(uid, "Tax Return", model.CategoryTax, date(2026, 4, 30), "", "file by end of April", "")
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if it.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if it.Name != "Tax Return" {
		t.Errorf("name = %q, want %q", it.Name, "Tax Return")
	}
	if it.Status != model.ItemStatusActive {
		t.Errorf("status = %q, want default %q", it.Status, model.ItemStatusActive)
	}
	if it.DueDate == nil || !it.DueDate.Equal(*date(2026, 4, 30)) {
		t.Errorf("due date = %v, want 2026-04-30", it.DueDate)
	}
}

func TestItemCreateNoDueDate(t *testing.T) {
	s, uid := setupItemTestDB(t, nil)

	it, err := s.Create(uid, "Health Card", model.CategoryOther, nil, "", "", "")
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if it.DueDate != nil {
		t.Errorf("due date = %v, want nil", it.DueDate)
	}
}

func TestItemEncryptedAtRest(t *testing.T) {
	cipher, err := vault.NewCipher("test-passphrase")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	s, uid := setupItemTestDB(t, cipher)

	it, err := s.Create(uid, "Study Permit", model.CategoryImmigration, nil, "", "IRCC file A-123", "")
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if it.Name != "Study Permit" || it.Notes != "IRCC file A-123" {
		t.Errorf("round trip = (%q, %q), want plaintext back", it.Name, it.Notes)
	}

	// The column itself must not hold the plaintext.
	var rawName string
	if err := s.db.QueryRow(`SELECT name FROM compliance_items WHERE id = ?`, it.ID).Scan(&rawName); err != nil {
		t.Fatalf("read raw name: %v", err)
	}
	if rawName == "Study Permit" {
		t.Error("item name stored in plaintext despite cipher")
	}
}

func TestItemListNotifiable(t *testing.T) {
	s, uid := setupItemTestDB(t, nil)

	s.Create(uid, "Visa", model.CategoryImmigration, date(2026, 3, 1), model.ItemStatusActive, "", "")
	s.Create(uid, "Lease", model.CategoryOther, date(2026, 6, 1), model.ItemStatusPending, "", "")
	s.Create(uid, "No Date", model.CategoryOther, nil, model.ItemStatusActive, "", "")
	s.Create(uid, "Archived", model.CategoryParking, date(2026, 3, 2), model.ItemStatusArchived, "", "")
	s.Create(uid, "Done", model.CategoryTax, date(2026, 3, 3), model.ItemStatusDone, "", "")

	items, err := s.ListNotifiable(uid)
	if err != nil {
		t.Fatalf("list notifiable: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		if !it.Scannable() {
			t.Errorf("item %q has non-scannable status %q", it.Name, it.Status)
		}
		if it.DueDate == nil {
			t.Errorf("item %q has no due date", it.Name)
		}
	}
}

func TestItemMalformedDueDateExcluded(t *testing.T) {
	s, uid := setupItemTestDB(t, nil)

	// Bypass the store to plant a corrupt date.
	_, err := s.db.Exec(
		`INSERT INTO compliance_items (user_id, name, due_date) VALUES (?, 'Broken', 'not-a-date')`, uid,
	)
	if err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}

	items, err := s.ListNotifiable(uid)
	if err != nil {
		t.Fatalf("list notifiable: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	if items[0].DueDate != nil {
		t.Error("malformed due date should surface as nil, excluding the item from urgency")
	}
}

func TestItemUpdate(t *testing.T) {
	s, uid := setupItemTestDB(t, nil)

	it, _ := s.Create(uid, "Parking Ticket", model.CategoryParking, date(2026, 3, 15), "", "", "")
	updated, err := s.Update(it.ID, uid, "Parking Ticket #442", model.CategoryParking, date(2026, 3, 20), model.ItemStatusPending, "disputed", "https://pay.example.com")
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Name != "Parking Ticket #442" {
		t.Errorf("name = %q, want updated", updated.Name)
	}
	if updated.Status != model.ItemStatusPending {
		t.Errorf("status = %q, want %q", updated.Status, model.ItemStatusPending)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(*date(2026, 3, 20)) {
		t.Errorf("due date = %v, want 2026-03-20", updated.DueDate)
	}
}

func TestItemDelete(t *testing.T) {
	s, uid := setupItemTestDB(t, nil)

	it, _ := s.Create(uid, "Visa", model.CategoryImmigration, nil, "", "", "")
	if err := s.Delete(it.ID, uid); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	got, err := s.GetByID(it.ID, uid)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestItemOwnershipScoped(t *testing.T) {
	s, uid := setupItemTestDB(t, nil)

	result, _ := s.db.Exec("INSERT INTO users (email) VALUES ('other@example.com')")
	otherID, _ := result.LastInsertId()

	it, _ := s.Create(uid, "Visa", model.CategoryImmigration, nil, "", "", "")

	got, err := s.GetByID(it.ID, otherID)
	if err != nil {
		t.Fatalf("get as other user: %v", err)
	}
	if got != nil {
		t.Error("items must not be readable across users")
	}
}
