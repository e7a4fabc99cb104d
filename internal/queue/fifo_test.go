package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedPushPop(t *testing.T) {
	q := NewBounded[int](2)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, 1))
	require.NoError(t, q.Push(ctx, 2))
	assert.False(t, q.TryPush(3), "queue at capacity should reject TryPush")

	v, ok := q.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = q.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestBoundedPushBlocksUntilSpace(t *testing.T) {
	q := NewBounded[int](1)
	ctx := context.Background()
	require.NoError(t, q.Push(ctx, 1))

	done := make(chan struct{})
	go func() {
		_ = q.Push(ctx, 2)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Push on a full queue returned before space was freed")
	case <-time.After(50 * time.Millisecond):
	}

	_, _ = q.Pop(ctx)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("blocked Push did not unblock after Pop freed space")
	}
}

func TestBoundedPushCtxCancel(t *testing.T) {
	q := NewBounded[int](1)
	require.NoError(t, q.Push(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := q.Push(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBoundedDrainAll(t *testing.T) {
	q := NewBounded[int](5)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Push(ctx, i))
	}

	n := q.DrainAll()
	assert.Equal(t, 3, n)
	assert.Equal(t, 0, q.Len())

	_, ok := q.Pop(timeoutCtx(t, 20*time.Millisecond))
	assert.False(t, ok)
}

func timeoutCtx(t *testing.T, d time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}
