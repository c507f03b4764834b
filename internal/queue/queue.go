package queue

import (
	"context"
	"time"

	"nexusai/internal/models"
)

// Package queue buffers generation-history records between capability
// calls and the batch writer, with two backends:
//
//  1. Memory queue (channel-based): no persistence, no external
//     dependencies; the default for standalone deployments.
//  2. Redis queue (list-based): survives restarts and supports
//     distributed workers.
//
// The batch writer drains records in batches and inserts them into
// Postgres; records that repeatedly fail to insert land in the dead
// letter queue.

// Queue buffers generation records for asynchronous persistence.
type Queue interface {
	// Enqueue adds a record to the queue.
	Enqueue(ctx context.Context, rec models.GenerationRecord) error

	// DequeueBatch retrieves up to maxItems records, waiting at most
	// timeout for the first one. An empty batch means the timeout
	// elapsed with nothing queued.
	DequeueBatch(ctx context.Context, maxItems int, timeout time.Duration) ([]models.GenerationRecord, error)

	// Length returns the current queue length.
	Length(ctx context.Context) (int, error)

	// Close shuts down the queue.
	Close() error
}

// DeadLetterQueue holds records the writer gave up on.
type DeadLetterQueue interface {
	// Add stores a failed record with its error.
	Add(ctx context.Context, rec models.GenerationRecord, err error) error

	// List retrieves up to maxItems dead letter entries.
	List(ctx context.Context, maxItems int) ([]DeadLetterItem, error)

	// Remove deletes an entry by id.
	Remove(ctx context.Context, id string) error

	// Close shuts down the dead letter queue.
	Close() error
}

// DeadLetterItem wraps a record that could not be persisted.
type DeadLetterItem struct {
	ID        string                  `json:"id"`
	Record    models.GenerationRecord `json:"record"`
	Error     string                  `json:"error"`
	Timestamp time.Time               `json:"timestamp"`
	Retries   int                     `json:"retries"`
}

// Config holds queue configuration.
type Config struct {
	// BatchSize is the maximum number of records per batch.
	BatchSize int

	// BatchTimeout is how long the writer waits before flushing a
	// partial batch.
	BatchTimeout time.Duration

	// MaxRetries is the maximum number of insert attempts per batch.
	MaxRetries int

	// RetryBackoff is the initial backoff between insert attempts.
	RetryBackoff time.Duration

	// UseRedis selects the Redis backend over the in-memory one.
	UseRedis bool

	// RedisAddr, RedisPassword and RedisDB configure the Redis
	// connection when UseRedis is set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// QueueName is the name/key for the queue.
	QueueName string
}

// DefaultConfig returns the default configuration for a named queue.
func DefaultConfig(queueName string) *Config {
	return &Config{
		BatchSize:    100,
		BatchTimeout: 5 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 1 * time.Second,
		UseRedis:     false,
		QueueName:    queueName,
	}
}
