package queue

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImmediateQueueDeliversDetachedFromCaller(t *testing.T) {
	var (
		mu       sync.Mutex
		received []map[string]any
		names    []string
		ctxErr   error
	)
	q := NewImmediateQueue(func(ctx context.Context, name string, payload map[string]any) {
		mu.Lock()
		defer mu.Unlock()
		names = append(names, name)
		received = append(received, payload)
		ctxErr = ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, q.Enqueue(ctx, "generate_roadmap", map[string]any{"jobId": "abc"}))
	require.NoError(t, q.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	require.Equal(t, []string{"generate_roadmap"}, names)
	require.Equal(t, "abc", received[0]["jobId"])
	require.NoError(t, ctxErr)
}

func TestImmediateQueueWithoutHandlerDropsJobs(t *testing.T) {
	q := NewImmediateQueue(nil)
	require.NoError(t, q.Enqueue(context.Background(), "generate_roadmap", "not a map"))
	require.NoError(t, q.Close())

	done := make(chan map[string]any, 1)
	q.SetHandler(func(_ context.Context, _ string, payload map[string]any) { done <- payload })
	require.NoError(t, q.Enqueue(context.Background(), "generate_roadmap", "not a map"))
	require.NoError(t, q.Close())
	require.Empty(t, <-done)
}
