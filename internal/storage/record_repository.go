package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"nexusai/internal/models"
)

// RecordRepository handles generation-history database operations
type RecordRepository struct {
	db *DB
}

// NewRecordRepository creates a new generation record repository
func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// EnsureSchema creates the history table if it does not exist.
func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS generation_records (
			id           UUID PRIMARY KEY,
			provider_id  TEXT NOT NULL,
			capability   TEXT NOT NULL,
			prompt_hash  TEXT NOT NULL,
			prompt_chars INTEGER NOT NULL,
			success      BOOLEAN NOT NULL,
			error_detail TEXT NOT NULL DEFAULT '',
			duration_ms  BIGINT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := r.db.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create generation_records table: %w", err)
	}
	return nil
}

// Create inserts a single generation record
func (r *RecordRepository) Create(ctx context.Context, rec *models.GenerationRecord) error {
	query := `
		INSERT INTO generation_records (
			id, provider_id, capability, prompt_hash, prompt_chars,
			success, error_detail, duration_ms, created_at
		) VALUES (
			:id, :provider_id, :capability, :prompt_hash, :prompt_chars,
			:success, :error_detail, :duration_ms, :created_at
		)
	`
	if _, err := r.db.conn.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to insert generation record: %w", err)
	}
	return nil
}

// GetByID retrieves a generation record by id
func (r *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationRecord, error) {
	var rec models.GenerationRecord
	query := `
		SELECT id, provider_id, capability, prompt_hash, prompt_chars,
		       success, error_detail, duration_ms, created_at
		FROM generation_records
		WHERE id = $1
	`

	err := r.db.conn.GetContext(ctx, &rec, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get generation record: %w", err)
	}

	return &rec, nil
}

// ListRecent returns the most recent generation records
func (r *RecordRepository) ListRecent(ctx context.Context, limit int) ([]*models.GenerationRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, provider_id, capability, prompt_hash, prompt_chars,
		       success, error_detail, duration_ms, created_at
		FROM generation_records
		ORDER BY created_at DESC
		LIMIT $1
	`

	var records []*models.GenerationRecord
	if err := r.db.conn.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list generation records: %w", err)
	}

	return records, nil
}
