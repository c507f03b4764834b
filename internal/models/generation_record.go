package models

import (
	"time"

	"github.com/google/uuid"

	"nexusai/internal/providers"
	"nexusai/internal/utils"
)

// GenerationRecord is the audit entry written for every generation attempt.
// It carries a prompt fingerprint instead of the prompt text so the history
// table never holds user content.
type GenerationRecord struct {
	ID          uuid.UUID            `db:"id" json:"id"`
	Provider    providers.ProviderID `db:"provider_id" json:"provider_id"`
	Capability  providers.Capability `db:"capability" json:"capability"`
	PromptHash  string               `db:"prompt_hash" json:"prompt_hash"`
	PromptChars int                  `db:"prompt_chars" json:"prompt_chars"`
	Success     bool                 `db:"success" json:"success"`
	ErrorDetail string               `db:"error_detail" json:"error_detail,omitempty"`
	DurationMS  int64                `db:"duration_ms" json:"duration_ms"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
}

// NewGenerationRecord builds a record for a finished generation attempt.
func NewGenerationRecord(provider providers.ProviderID, capability providers.Capability, prompt string, duration time.Duration, netErr *providers.NetworkError) GenerationRecord {
	rec := GenerationRecord{
		ID:          uuid.New(),
		Provider:    provider,
		Capability:  capability,
		PromptHash:  utils.HashString(prompt),
		PromptChars: len(prompt),
		Success:     netErr == nil,
		DurationMS:  duration.Milliseconds(),
		CreatedAt:   time.Now().UTC(),
	}
	if netErr != nil {
		rec.ErrorDetail = netErr.Error()
	}
	return rec
}
