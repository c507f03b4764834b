package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusai/internal/providers"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func TestRedisQueue_EnqueueDequeue(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	q := NewRedisQueueWithClient(client, DefaultConfig("history-test"))
	defer q.Close()
	ctx := context.Background()

	rec := testRecord(providers.ProviderDeepSeek)
	require.NoError(t, q.Enqueue(ctx, rec))
	require.NoError(t, q.Enqueue(ctx, testRecord(providers.ProviderClaude)))

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, length)

	batch, err := q.DequeueBatch(ctx, 10, time.Second)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, rec.ID, batch[0].ID)
	assert.Equal(t, rec.PromptHash, batch[0].PromptHash)
	assert.Equal(t, providers.ProviderClaude, batch[1].Provider)
}

func TestRedisQueue_BatchSizeLimit(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	q := NewRedisQueueWithClient(client, DefaultConfig("history-test"))
	defer q.Close()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, q.Enqueue(ctx, testRecord(providers.ProviderGemini)))
	}

	batch, err := q.DequeueBatch(ctx, 3, time.Second)
	require.NoError(t, err)
	assert.Len(t, batch, 3)

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, length)
}

func TestRedisQueue_DequeueTimeout(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	q := NewRedisQueueWithClient(client, DefaultConfig("history-test"))
	defer q.Close()

	batch, err := q.DequeueBatch(context.Background(), 10, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestRedisDeadLetterQueue(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	dlq := NewRedisDeadLetterQueueWithClient(client, DefaultConfig("history-test"))
	defer dlq.Close()
	ctx := context.Background()

	rec := testRecord(providers.ProviderGrok)
	require.NoError(t, dlq.Add(ctx, rec, errors.New("db unavailable")))

	items, err := dlq.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, rec.ID, items[0].Record.ID)
	assert.Equal(t, "db unavailable", items[0].Error)

	require.NoError(t, dlq.Remove(ctx, items[0].ID))

	items, err = dlq.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}
