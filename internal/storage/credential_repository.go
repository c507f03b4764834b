package storage

import (
	"context"
	"fmt"

	"nexusai/internal/providers"
)

// CredentialRepository stores provider API keys in Postgres, AES-GCM
// encrypted at rest. It satisfies the same store contract as FileStore
// so a deployment picks one or the other.
type CredentialRepository struct {
	db     *DB
	cipher *Encryption
}

// NewCredentialRepository creates a new credential repository.
func NewCredentialRepository(db *DB, cipher *Encryption) *CredentialRepository {
	return &CredentialRepository{db: db, cipher: cipher}
}

// EnsureSchema creates the credentials table if it does not exist.
func (r *CredentialRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS gateway_credentials (
			provider_id       TEXT PRIMARY KEY,
			api_key_encrypted TEXT NOT NULL,
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := r.db.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create credentials table: %w", err)
	}
	return nil
}

// Save replaces the stored credential set with the given map inside
// one transaction.
func (r *CredentialRepository) Save(ctx context.Context, credentials map[providers.ProviderID]string) error {
	tx, err := r.db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM gateway_credentials`); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	query := `
		INSERT INTO gateway_credentials (provider_id, api_key_encrypted, updated_at)
		VALUES ($1, $2, now())
	`
	for id, key := range credentials {
		sealed, err := r.cipher.EncryptString(key)
		if err != nil {
			return fmt.Errorf("failed to encrypt credential for %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, query, string(id), sealed); err != nil {
			return fmt.Errorf("failed to insert credential for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit credentials: %w", err)
	}
	return nil
}

// Load reads and decrypts all stored credentials.
func (r *CredentialRepository) Load(ctx context.Context) (map[providers.ProviderID]string, error) {
	rows := []struct {
		ProviderID string `db:"provider_id"`
		Encrypted  string `db:"api_key_encrypted"`
	}{}

	query := `SELECT provider_id, api_key_encrypted FROM gateway_credentials`
	if err := r.db.conn.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	credentials := make(map[providers.ProviderID]string, len(rows))
	for _, row := range rows {
		key, err := r.cipher.DecryptString(row.Encrypted)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt credential for %s: %w", row.ProviderID, err)
		}
		credentials[providers.ProviderID(row.ProviderID)] = key
	}
	return credentials, nil
}
