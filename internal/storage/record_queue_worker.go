package storage

import (
	"context"
	"fmt"
	"time"

	"nexusai/internal/models"
	"nexusai/internal/queue"
	"nexusai/internal/utils"
)

// RecordWriter persists one generation record. RecordRepository is the
// production implementation; tests substitute a fake.
type RecordWriter interface {
	Create(ctx context.Context, rec *models.GenerationRecord) error
}

// RecordQueueWorker drains the generation-history queue into the
// record writer in batches. It implements the manager's Recorder
// contract, so capability calls hand off records without blocking on
// the database.
type RecordQueueWorker struct {
	queue       queue.Queue
	dlq         queue.DeadLetterQueue
	writer      RecordWriter
	config      *queue.Config
	logger      *utils.Logger
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewRecordQueueWorker creates a new history worker
func NewRecordQueueWorker(q queue.Queue, dlq queue.DeadLetterQueue, writer RecordWriter, config *queue.Config) *RecordQueueWorker {
	if config == nil {
		config = queue.DefaultConfig("generation_history")
	}

	return &RecordQueueWorker{
		queue:       q,
		dlq:         dlq,
		writer:      writer,
		config:      config,
		logger:      utils.NewLogger("history-worker"),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Record enqueues one generation record for asynchronous persistence.
func (w *RecordQueueWorker) Record(ctx context.Context, rec models.GenerationRecord) error {
	return w.queue.Enqueue(ctx, rec)
}

// Start starts the worker goroutine
func (w *RecordQueueWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop gracefully stops the worker
func (w *RecordQueueWorker) Stop() error {
	close(w.stopChan)
	<-w.stoppedChan
	return nil
}

func (w *RecordQueueWorker) run(ctx context.Context) {
	defer close(w.stoppedChan)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("history worker stopping")
			return
		case <-ctx.Done():
			w.logger.Info("history worker context cancelled")
			return
		default:
			w.processBatch(ctx)
		}
	}
}

func (w *RecordQueueWorker) processBatch(ctx context.Context) {
	batch, err := w.queue.DequeueBatch(ctx, w.config.BatchSize, w.config.BatchTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("failed to dequeue generation records", "error", err.Error())
		time.Sleep(1 * time.Second) // back off on error
		return
	}

	if len(batch) == 0 {
		return
	}

	w.logger.Debug("processing history batch", "count", fmt.Sprintf("%d", len(batch)))

	for i := range batch {
		if err := w.processRecord(ctx, &batch[i]); err != nil {
			w.logger.Error("failed to persist generation record", "error", err.Error())
		}
	}
}

// processRecord inserts a single record with retries, moving it to the
// dead letter queue when attempts run out.
func (w *RecordQueueWorker) processRecord(ctx context.Context, rec *models.GenerationRecord) error {
	var lastErr error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := w.config.RetryBackoff * time.Duration(1<<uint(attempt-1))
			w.logger.Debug("retrying generation record", "attempt", fmt.Sprintf("%d", attempt))
			time.Sleep(backoff)
		}

		if err := w.writer.Create(ctx, rec); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	if w.dlq != nil {
		if err := w.dlq.Add(ctx, *rec, lastErr); err != nil {
			w.logger.Error("failed to add to dead letter queue", "error", err.Error())
		} else {
			w.logger.Warn("generation record moved to DLQ", "record_id", rec.ID.String())
		}
	}

	return fmt.Errorf("%w: %v", queue.ErrMaxRetriesExceeded, lastErr)
}

// QueueLength returns the current queue length
func (w *RecordQueueWorker) QueueLength(ctx context.Context) (int, error) {
	return w.queue.Length(ctx)
}

// DeadLetterItems returns entries from the dead letter queue
func (w *RecordQueueWorker) DeadLetterItems(ctx context.Context, maxItems int) ([]queue.DeadLetterItem, error) {
	if w.dlq == nil {
		return nil, fmt.Errorf("dead letter queue not configured")
	}
	return w.dlq.List(ctx, maxItems)
}

// RetryDeadLetterItem re-enqueues a failed record by dead-letter id
func (w *RecordQueueWorker) RetryDeadLetterItem(ctx context.Context, id string) error {
	if w.dlq == nil {
		return fmt.Errorf("dead letter queue not configured")
	}

	items, err := w.dlq.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list dead letter items: %w", err)
	}

	for _, item := range items {
		if item.ID == id {
			if err := w.queue.Enqueue(ctx, item.Record); err != nil {
				return fmt.Errorf("failed to re-enqueue record: %w", err)
			}
			if err := w.dlq.Remove(ctx, id); err != nil {
				return fmt.Errorf("failed to remove from DLQ: %w", err)
			}
			return nil
		}
	}

	return queue.ErrItemNotFound
}
