package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cityhelper/cityhelper/internal/model"
)

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

const settingsCols = `user_id, push_enabled, push_endpoint, push_p256dh, push_auth,
	last_push_sent, last_active, phone_number, phone_verified, welcomed_at, created_at, updated_at`

func scanSettings(scanner interface{ Scan(...any) error }) (*model.UserSettings, error) {
	var st model.UserSettings
	var pushEnabled, phoneVerified int
	var lastPush, lastActive, welcomed sql.NullTime

	err := scanner.Scan(
		&st.UserID, &pushEnabled, &st.PushEndpoint, &st.PushP256dh, &st.PushAuth,
		&lastPush, &lastActive, &st.PhoneNumber, &phoneVerified, &welcomed,
		&st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	st.PushEnabled = pushEnabled != 0
	st.PhoneVerified = phoneVerified != 0
	if lastPush.Valid {
		st.LastPushSent = &lastPush.Time
	}
	if lastActive.Valid {
		st.LastActive = &lastActive.Time
	}
	if welcomed.Valid {
		st.WelcomedAt = &welcomed.Time
	}
	return &st, nil
}

// Get returns the settings row for a user, or nil if none exists yet.
func (s *SettingsStore) Get(userID int64) (*model.UserSettings, error) {
	row := s.db.QueryRow(`SELECT `+settingsCols+` FROM user_settings WHERE user_id = ?`, userID)
	st, err := scanSettings(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user settings: %w", err)
	}
	return st, nil
}

// Ensure creates the settings row for a user if it does not exist.
func (s *SettingsStore) Ensure(userID int64) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO user_settings (user_id) VALUES (?)`, userID)
	if err != nil {
		return fmt.Errorf("ensure user settings: %w", err)
	}
	return nil
}

// SetPushSubscription upserts the subscription triple and enables push.
func (s *SettingsStore) SetPushSubscription(userID int64, endpoint, p256dh, auth string) error {
	_, err := s.db.Exec(
		`INSERT INTO user_settings (user_id, push_enabled, push_endpoint, push_p256dh, push_auth)
		 VALUES (?, 1, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   push_enabled = 1,
		   push_endpoint = excluded.push_endpoint,
		   push_p256dh = excluded.push_p256dh,
		   push_auth = excluded.push_auth,
		   updated_at = datetime('now')`,
		userID, endpoint, p256dh, auth,
	)
	if err != nil {
		return fmt.Errorf("set push subscription: %w", err)
	}
	return nil
}

// ClearPushSubscription drops the subscription triple. last_push_sent is
// deliberately left alone; it is never rolled back.
func (s *SettingsStore) ClearPushSubscription(userID int64) error {
	_, err := s.db.Exec(
		`UPDATE user_settings
		 SET push_endpoint = '', push_p256dh = '', push_auth = '', updated_at = datetime('now')
		 WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("clear push subscription: %w", err)
	}
	return nil
}

// SetPushEnabled toggles the push gate. Disabling also drops the subscription.
func (s *SettingsStore) SetPushEnabled(userID int64, enabled bool) error {
	var err error
	if enabled {
		_, err = s.db.Exec(
			`INSERT INTO user_settings (user_id, push_enabled) VALUES (?, 1)
			 ON CONFLICT(user_id) DO UPDATE SET push_enabled = 1, updated_at = datetime('now')`,
			userID,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE user_settings
			 SET push_enabled = 0, push_endpoint = '', push_p256dh = '', push_auth = '', updated_at = datetime('now')
			 WHERE user_id = ?`,
			userID,
		)
	}
	if err != nil {
		return fmt.Errorf("set push enabled: %w", err)
	}
	return nil
}

// SetLastPushSent advances the throttle anchor. Called only after confirmed
// delivery.
func (s *SettingsStore) SetLastPushSent(userID int64, t time.Time) error {
	_, err := s.db.Exec(
		`UPDATE user_settings SET last_push_sent = ?, updated_at = datetime('now') WHERE user_id = ?`,
		t.UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("set last push sent: %w", err)
	}
	return nil
}

// TouchLastActive records user activity (called from auth middleware).
func (s *SettingsStore) TouchLastActive(userID int64, t time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO user_settings (user_id, last_active) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET last_active = excluded.last_active`,
		userID, t.UTC(),
	)
	if err != nil {
		return fmt.Errorf("touch last active: %w", err)
	}
	return nil
}

// SetPhone stores the verified phone number.
func (s *SettingsStore) SetPhone(userID int64, phone string, verified bool) error {
	v := 0
	if verified {
		v = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO user_settings (user_id, phone_number, phone_verified) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   phone_number = excluded.phone_number,
		   phone_verified = excluded.phone_verified,
		   updated_at = datetime('now')`,
		userID, phone, v,
	)
	if err != nil {
		return fmt.Errorf("set phone: %w", err)
	}
	return nil
}

// MarkWelcomed records that the welcome email went out.
func (s *SettingsStore) MarkWelcomed(userID int64, t time.Time) error {
	_, err := s.db.Exec(
		`UPDATE user_settings SET welcomed_at = ? WHERE user_id = ? AND welcomed_at IS NULL`,
		t.UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("mark welcomed: %w", err)
	}
	return nil
}

// ListPushTargets returns settings rows for every user with push enabled and
// a complete subscription on file — the reminder sweep's input set.
func (s *SettingsStore) ListPushTargets() ([]model.UserSettings, error) {
	rows, err := s.db.Query(
		`SELECT ` + settingsCols + ` FROM user_settings
		 WHERE push_enabled = 1 AND push_endpoint != '' AND push_p256dh != '' AND push_auth != ''
		 ORDER BY user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list push targets: %w", err)
	}
	defer rows.Close()

	var targets []model.UserSettings
	for rows.Next() {
		st, err := scanSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user settings: %w", err)
		}
		targets = append(targets, *st)
	}
	return targets, rows.Err()
}
