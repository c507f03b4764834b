package storage

import (
	"encoding/base64"
	"testing"
)

func TestEncryption(t *testing.T) {
	// Generate a 32-byte key (AES-256)
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	enc, err := NewEncryption(key)
	if err != nil {
		t.Fatalf("Failed to create encryption: %v", err)
	}

	plaintext := []byte("my-secret-api-key-12345")
	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	decrypted, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Failed to decrypt: %v", err)
	}

	if string(decrypted) != string(plaintext) {
		t.Errorf("Decrypted text doesn't match original. Got %s, want %s", decrypted, plaintext)
	}
}

func TestEncryptionFromBase64(t *testing.T) {
	keyBase64, err := GenerateKey(32)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	enc, err := NewEncryptionFromBase64(keyBase64)
	if err != nil {
		t.Fatalf("Failed to create encryption from base64: %v", err)
	}

	ciphertext, err := enc.EncryptString("sk-test-credential")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	decrypted, err := enc.DecryptString(ciphertext)
	if err != nil {
		t.Fatalf("Failed to decrypt: %v", err)
	}

	if decrypted != "sk-test-credential" {
		t.Errorf("Decrypted text doesn't match original. Got %s", decrypted)
	}
}

func TestEncryptionInvalidKeySize(t *testing.T) {
	if _, err := NewEncryption(make([]byte, 15)); err == nil {
		t.Error("Expected error for 15-byte key, got nil")
	}

	if _, err := NewEncryptionFromBase64(""); err == nil {
		t.Error("Expected error for empty key, got nil")
	}

	if _, err := NewEncryptionFromBase64("not-valid-base64!!!"); err == nil {
		t.Error("Expected error for invalid base64 key, got nil")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	keyBase64, err := GenerateKey(32)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	enc, err := NewEncryptionFromBase64(keyBase64)
	if err != nil {
		t.Fatalf("Failed to create encryption: %v", err)
	}

	ciphertext, err := enc.EncryptString("secret")
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}

	// flip a byte past the nonce
	raw, _ := base64.StdEncoding.DecodeString(ciphertext)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := enc.DecryptString(tampered); err == nil {
		t.Error("Expected error decrypting tampered ciphertext, got nil")
	}
}
