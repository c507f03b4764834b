package queue

import "errors"

var (
	// ErrQueueClosed is returned when operating on a closed queue.
	ErrQueueClosed = errors.New("queue is closed")

	// ErrItemNotFound is returned when a dead letter entry is missing.
	ErrItemNotFound = errors.New("item not found")

	// ErrMaxRetriesExceeded is returned when a batch exhausts its
	// insert attempts.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
