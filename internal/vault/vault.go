package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// ErrNotConfigured is returned when the vault has no object storage backing.
var ErrNotConfigured = errors.New("vault not configured")

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible object storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Manager stores user documents encrypted in S3-compatible storage. Blobs
// are sealed with the vault passphrase before upload; the object key is an
// opaque UUID under the owner's prefix.
type Manager struct {
	cfg        S3Config
	passphrase string
	client     s3Client
}

// NewManager creates a vault manager. With incomplete S3 credentials the
// manager is unconfigured and every operation returns ErrNotConfigured.
func NewManager(cfg S3Config, passphrase string) *Manager {
	m := &Manager{cfg: cfg, passphrase: passphrase}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		m.client = newS3Client(cfg)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Configured reports whether object storage is available.
func (m *Manager) Configured() bool {
	return m.client != nil
}

// Store encrypts data and uploads it, returning the generated object key.
func (m *Manager) Store(ctx context.Context, userID int64, data []byte) (string, error) {
	if m.client == nil {
		return "", ErrNotConfigured
	}

	sealed, err := Encrypt(data, m.passphrase)
	if err != nil {
		return "", fmt.Errorf("seal document: %w", err)
	}

	key := fmt.Sprintf("documents/%d/%s", userID, uuid.NewString())

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(m.cfg.Bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(sealed),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("upload document: %w", err)
	}
	return key, nil
}

// Fetch downloads and decrypts the object at key.
func (m *Manager) Fetch(ctx context.Context, key string) ([]byte, error) {
	if m.client == nil {
		return nil, ErrNotConfigured
	}

	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download document: %w", err)
	}
	defer out.Body.Close()

	sealed, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read document body: %w", err)
	}

	data, err := Decrypt(sealed, m.passphrase)
	if err != nil {
		return nil, fmt.Errorf("unseal document: %w", err)
	}
	return data, nil
}

// Remove deletes the object at key.
func (m *Manager) Remove(ctx context.Context, key string) error {
	if m.client == nil {
		return ErrNotConfigured
	}

	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
