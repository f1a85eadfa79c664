package vault

import (
	"bytes"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt 2: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)

	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	original := []byte("scanned passport, page one")

	sealed, err := Encrypt(original, "hunter2")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, original) {
		t.Error("ciphertext contains plaintext")
	}

	plain, err := Decrypt(sealed, "hunter2")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(plain, original) {
		t.Errorf("round trip = %q, want %q", plain, original)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), "right")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := Decrypt(sealed, "wrong"); err == nil {
		t.Error("expected error decrypting with wrong passphrase")
	}
}

func TestDecryptTruncated(t *testing.T) {
	if _, err := Decrypt([]byte("short"), "pass"); err == nil {
		t.Error("expected error for truncated blob")
	}
}

func TestFieldCipherRoundTrip(t *testing.T) {
	c, err := NewCipher("field-passphrase")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	sealed, err := c.EncryptString("Tax Return 2026")
	if err != nil {
		t.Fatalf("encrypt string: %v", err)
	}
	if sealed == "Tax Return 2026" {
		t.Error("value not encrypted")
	}

	plain, err := c.DecryptString(sealed)
	if err != nil {
		t.Fatalf("decrypt string: %v", err)
	}
	if plain != "Tax Return 2026" {
		t.Errorf("round trip = %q, want %q", plain, "Tax Return 2026")
	}
}

func TestNilCipherPassthrough(t *testing.T) {
	var c *Cipher

	sealed, err := c.EncryptString("plain")
	if err != nil || sealed != "plain" {
		t.Errorf("nil cipher encrypt = (%q, %v), want passthrough", sealed, err)
	}
	plain, err := c.DecryptString("plain")
	if err != nil || plain != "plain" {
		t.Errorf("nil cipher decrypt = (%q, %v), want passthrough", plain, err)
	}
}

func TestNewCipherEmptyPassphrase(t *testing.T) {
	c, err := NewCipher("")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	if c != nil {
		t.Error("empty passphrase should yield a nil (no-op) cipher")
	}
}
