package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroadcaster_Subscribe(t *testing.T) {
	t.Run("subscribe creates active subscriber", func(t *testing.T) {
		b := NewMemoryBroadcaster[string]()
		defer b.Close()

		sub := b.Subscribe(context.Background())
		require.NotNil(t, sub)
		require.NotNil(t, sub.Receive(context.Background()))
		assert.Equal(t, 1, b.Len())
	})

	t.Run("subscribe after close returns closed subscriber", func(t *testing.T) {
		b := NewMemoryBroadcaster[string]()
		require.NoError(t, b.Close())

		sub := b.Subscribe(context.Background())
		_, ok := <-sub.Receive(context.Background())
		assert.False(t, ok)
	})

	t.Run("new subscriber starts from latest message", func(t *testing.T) {
		b := NewMemoryBroadcaster[string]()
		defer b.Close()

		require.NoError(t, b.Broadcast(context.Background(), Message[string]{Data: "v1"}))
		require.NoError(t, b.Broadcast(context.Background(), Message[string]{Data: "v2"}))

		sub := b.Subscribe(context.Background())
		msg := <-sub.Receive(context.Background())
		assert.Equal(t, "v2", msg.Data)

		latest, ok := b.Latest()
		require.True(t, ok)
		assert.Equal(t, "v2", latest.Data)
	})

	t.Run("context cancellation unsubscribes", func(t *testing.T) {
		b := NewMemoryBroadcaster[string]()
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		sub := b.Subscribe(ctx)
		cancel()

		require.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 5*time.Millisecond)

		_, ok := <-sub.Receive(context.Background())
		assert.False(t, ok)
	})
}

func TestMemoryBroadcaster_Conflation(t *testing.T) {
	t.Run("rapid pushes deliver only the latest snapshot", func(t *testing.T) {
		b := NewMemoryBroadcaster[[]string]()
		defer b.Close()

		ctx := context.Background()
		sub := b.Subscribe(ctx)

		require.NoError(t, b.Broadcast(ctx, Message[[]string]{Data: []string{"u1", "u2"}}))
		require.NoError(t, b.Broadcast(ctx, Message[[]string]{Data: []string{"u1", "u2", "u3"}}))

		msg := <-sub.Receive(ctx)
		assert.Equal(t, []string{"u1", "u2", "u3"}, msg.Data)

		select {
		case extra := <-sub.Receive(ctx):
			t.Fatalf("unexpected extra message: %v", extra.Data)
		default:
		}
	})

	t.Run("each subscriber gets its own mailbox", func(t *testing.T) {
		b := NewMemoryBroadcaster[int]()
		defer b.Close()

		ctx := context.Background()
		fast := b.Subscribe(ctx)
		slow := b.Subscribe(ctx)

		for i := 1; i <= 3; i++ {
			require.NoError(t, b.Broadcast(ctx, Message[int]{Data: i}))
			assert.Equal(t, i, (<-fast.Receive(ctx)).Data)
		}
		assert.Equal(t, 3, (<-slow.Receive(ctx)).Data)
	})

	t.Run("concurrent broadcasts never block", func(t *testing.T) {
		b := NewMemoryBroadcaster[int]()
		defer b.Close()

		ctx := context.Background()
		sub := b.Subscribe(ctx)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = b.Broadcast(ctx, Message[int]{Data: i})
			}(i)
		}
		wg.Wait()

		latest, ok := b.Latest()
		require.True(t, ok)
		assert.Equal(t, latest.Data, (<-sub.Receive(ctx)).Data)
	})
}

func TestMemoryBroadcaster_Close(t *testing.T) {
	t.Run("subscriber close is idempotent and detaches", func(t *testing.T) {
		b := NewMemoryBroadcaster[string]()
		defer b.Close()

		sub := b.Subscribe(context.Background())
		require.NoError(t, sub.Close())
		require.NoError(t, sub.Close())
		assert.Equal(t, 0, b.Len())

		require.NoError(t, b.Broadcast(context.Background(), Message[string]{Data: "after"}))
		_, ok := <-sub.Receive(context.Background())
		assert.False(t, ok)
	})

	t.Run("broadcaster close closes subscribers", func(t *testing.T) {
		b := NewMemoryBroadcaster[string]()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub := b.Subscribe(ctx)
		require.NoError(t, b.Close())
		require.NoError(t, b.Close())

		_, ok := <-sub.Receive(ctx)
		assert.False(t, ok)
		assert.NoError(t, b.Broadcast(ctx, Message[string]{Data: "ignored"}))
	})
}
