package store

import (
	"database/sql"
	"fmt"

	"github.com/cityhelper/cityhelper/internal/model"
)

type BillingStore struct {
	db *sql.DB
}

func NewBillingStore(db *sql.DB) *BillingStore {
	return &BillingStore{db: db}
}

const subscriptionCols = `id, email, stripe_customer_id, stripe_subscription_id, tier, status, created_at, updated_at`

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.Subscription, error) {
	var sub model.Subscription
	err := scanner.Scan(
		&sub.ID, &sub.Email, &sub.StripeCustomerID, &sub.StripeSubscriptionID,
		&sub.Tier, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upsert records a subscription keyed by the Stripe subscription ID.
func (s *BillingStore) Upsert(email, customerID, subscriptionID, tier, status string) (*model.Subscription, error) {
	_, err := s.db.Exec(
		`INSERT INTO subscriptions (email, stripe_customer_id, stripe_subscription_id, tier, status)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(stripe_subscription_id) DO UPDATE SET
		   email = CASE WHEN excluded.email != '' THEN excluded.email ELSE email END,
		   stripe_customer_id = excluded.stripe_customer_id,
		   tier = excluded.tier,
		   status = excluded.status,
		   updated_at = datetime('now')`,
		email, customerID, subscriptionID, tier, status,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert subscription: %w", err)
	}
	return s.GetByStripeID(subscriptionID)
}

// SetStatus updates the status for a Stripe subscription ID.
func (s *BillingStore) SetStatus(subscriptionID, status string) error {
	_, err := s.db.Exec(
		`UPDATE subscriptions SET status = ?, updated_at = datetime('now') WHERE stripe_subscription_id = ?`,
		status, subscriptionID,
	)
	if err != nil {
		return fmt.Errorf("set subscription status: %w", err)
	}
	return nil
}

func (s *BillingStore) GetByStripeID(subscriptionID string) (*model.Subscription, error) {
	row := s.db.QueryRow(
		`SELECT `+subscriptionCols+` FROM subscriptions WHERE stripe_subscription_id = ?`,
		subscriptionID,
	)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (s *BillingStore) GetByEmail(email string) (*model.Subscription, error) {
	row := s.db.QueryRow(
		`SELECT `+subscriptionCols+` FROM subscriptions WHERE email = ? ORDER BY updated_at DESC LIMIT 1`,
		email,
	)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription by email: %w", err)
	}
	return sub, nil
}
