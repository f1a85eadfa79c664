package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cityhelper/cityhelper/internal/model"
)

type VerificationStore struct {
	db *sql.DB
}

func NewVerificationStore(db *sql.DB) *VerificationStore {
	return &VerificationStore{db: db}
}

const verificationCols = `id, user_id, phone_number, code, expires_at, created_at`

func scanVerification(scanner interface{ Scan(...any) error }) (*model.PhoneVerification, error) {
	var v model.PhoneVerification
	err := scanner.Scan(&v.ID, &v.UserID, &v.PhoneNumber, &v.Code, &v.ExpiresAt, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Replace drops any pending verification for the user and stores a new one.
func (s *VerificationStore) Replace(userID int64, phone, code string, expiresAt time.Time) (*model.PhoneVerification, error) {
	_, err := s.db.Exec(`DELETE FROM phone_verifications WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("delete previous verification: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO phone_verifications (user_id, phone_number, code, expires_at) VALUES (?, ?, ?, ?)`,
		userID, phone, code, expiresAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert verification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+verificationCols+` FROM phone_verifications WHERE id = ?`, id)
	return scanVerification(row)
}

// GetByUser returns the pending verification for the user, or nil.
func (s *VerificationStore) GetByUser(userID int64) (*model.PhoneVerification, error) {
	row := s.db.QueryRow(`SELECT `+verificationCols+` FROM phone_verifications WHERE user_id = ?`, userID)
	v, err := scanVerification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get verification: %w", err)
	}
	return v, nil
}

func (s *VerificationStore) Delete(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM phone_verifications WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete verification: %w", err)
	}
	return nil
}
