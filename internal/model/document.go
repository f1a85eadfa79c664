package model

import "time"

// Document is the metadata row for an encrypted file in the vault. The
// object key is a UUID; the ciphertext lives in S3-compatible storage.
type Document struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ObjectKey   string    `json:"object_key"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
