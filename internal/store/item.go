package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cityhelper/cityhelper/internal/model"
	"github.com/cityhelper/cityhelper/internal/vault"
)

const dueDateLayout = "2006-01-02"

// ItemStore persists compliance items. When a field cipher is supplied the
// name and notes columns are encrypted at rest; category, status, and due
// date stay plain so queries work.
type ItemStore struct {
	db     *sql.DB
	cipher *vault.Cipher
}

func NewItemStore(db *sql.DB, cipher *vault.Cipher) *ItemStore {
	return &ItemStore{db: db, cipher: cipher}
}

const itemCols = `id, user_id, name, category, due_date, status, notes, pay_url, created_at, updated_at`

func (s *ItemStore) scanItem(scanner interface{ Scan(...any) error }) (*model.ComplianceItem, error) {
	var it model.ComplianceItem
	var due sql.NullString

	err := scanner.Scan(
		&it.ID, &it.UserID, &it.Name, &it.Category, &due,
		&it.Status, &it.Notes, &it.PayURL, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if due.Valid && due.String != "" {
		d, err := time.Parse(dueDateLayout, due.String)
		if err != nil {
			// A malformed date excludes the item from urgency computation,
			// not the whole row.
			slog.Warn("malformed due date", "item_id", it.ID, "value", due.String)
		} else {
			it.DueDate = &d
		}
	}

	if it.Name, err = s.cipher.DecryptString(it.Name); err != nil {
		return nil, fmt.Errorf("decrypt item name: %w", err)
	}
	if it.Notes, err = s.cipher.DecryptString(it.Notes); err != nil {
		return nil, fmt.Errorf("decrypt item notes: %w", err)
	}
	return &it, nil
}

func (s *ItemStore) Create(userID int64, name, category string, dueDate *time.Time, status, notes, payURL string) (*model.ComplianceItem, error) {
	if status == "" {
		status = model.ItemStatusActive
	}

	encName, err := s.cipher.EncryptString(name)
	if err != nil {
		return nil, fmt.Errorf("encrypt item name: %w", err)
	}
	encNotes, err := s.cipher.EncryptString(notes)
	if err != nil {
		return nil, fmt.Errorf("encrypt item notes: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO compliance_items (user_id, name, category, due_date, status, notes, pay_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, encName, category, dueDateArg(dueDate), status, encNotes, payURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert compliance item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *ItemStore) GetByID(id, userID int64) (*model.ComplianceItem, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM compliance_items WHERE id = ? AND user_id = ?`, id, userID)
	it, err := s.scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get compliance item: %w", err)
	}
	return it, nil
}

func (s *ItemStore) ListByUser(userID int64) ([]model.ComplianceItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM compliance_items WHERE user_id = ? ORDER BY due_date IS NULL, due_date, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list compliance items: %w", err)
	}
	defer rows.Close()
	return s.collectItems(rows)
}

// ListNotifiable returns the user's items eligible for a reminder sweep:
// a due date is set and the status is active, pending, or unset. Rows
// whose due date fails to parse come back with a nil DueDate; the caller
// skips them.
func (s *ItemStore) ListNotifiable(userID int64) ([]model.ComplianceItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM compliance_items
		 WHERE user_id = ? AND due_date IS NOT NULL AND due_date != ''
		   AND status IN (?, ?, ?)
		 ORDER BY due_date, id`,
		userID, model.ItemStatusActive, model.ItemStatusPending, model.ItemStatusUnset,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifiable items: %w", err)
	}
	defer rows.Close()
	return s.collectItems(rows)
}

func (s *ItemStore) Update(id, userID int64, name, category string, dueDate *time.Time, status, notes, payURL string) (*model.ComplianceItem, error) {
	encName, err := s.cipher.EncryptString(name)
	if err != nil {
		return nil, fmt.Errorf("encrypt item name: %w", err)
	}
	encNotes, err := s.cipher.EncryptString(notes)
	if err != nil {
		return nil, fmt.Errorf("encrypt item notes: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE compliance_items
		 SET name = ?, category = ?, due_date = ?, status = ?, notes = ?, pay_url = ?, updated_at = datetime('now')
		 WHERE id = ? AND user_id = ?`,
		encName, category, dueDateArg(dueDate), status, encNotes, payURL, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update compliance item: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *ItemStore) SetStatus(id, userID int64, status string) error {
	_, err := s.db.Exec(
		`UPDATE compliance_items SET status = ?, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
		status, id, userID,
	)
	if err != nil {
		return fmt.Errorf("set item status: %w", err)
	}
	return nil
}

func (s *ItemStore) Delete(id, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM compliance_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete compliance item: %w", err)
	}
	return nil
}

func (s *ItemStore) collectItems(rows *sql.Rows) ([]model.ComplianceItem, error) {
	var items []model.ComplianceItem
	for rows.Next() {
		it, err := s.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan compliance item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func dueDateArg(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.Format(dueDateLayout)
}
