package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestWriterExecutesWrites(t *testing.T) {
	t.Parallel()

	writer := NewWriter(WriterConfig{}, testLogger())

	var executed atomic.Int32
	for i := 0; i < 5; i++ {
		err := writer.Enqueue("upsert", func(ctx context.Context) error {
			executed.Add(1)
			return nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close(context.Background()))
	assert.Equal(t, int32(5), executed.Load())
}

func TestWriterCloseDrainsQueue(t *testing.T) {
	t.Parallel()

	writer := NewWriter(WriterConfig{QueueSize: 16}, testLogger())

	var executed atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, writer.Enqueue("upsert", func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			executed.Add(1)
			return nil
		}))
	}

	require.NoError(t, writer.Close(context.Background()))
	assert.Equal(t, int32(10), executed.Load(), "Close waits for queued writes")
}

func TestWriterEnqueueAfterClose(t *testing.T) {
	t.Parallel()

	writer := NewWriter(WriterConfig{}, testLogger())
	require.NoError(t, writer.Close(context.Background()))

	err := writer.Enqueue("upsert", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWriterClosed)

	// Closing twice is a no-op.
	assert.NoError(t, writer.Close(context.Background()))
}

func TestWriterFailuresAreSwallowed(t *testing.T) {
	t.Parallel()

	writer := NewWriter(WriterConfig{}, testLogger())

	var after atomic.Bool
	require.NoError(t, writer.Enqueue("upsert", func(ctx context.Context) error {
		return errors.New("connection refused")
	}))
	require.NoError(t, writer.Enqueue("upsert", func(ctx context.Context) error {
		after.Store(true)
		return nil
	}))

	require.NoError(t, writer.Close(context.Background()))
	assert.True(t, after.Load(), "a failed write must not stall the queue")
}

func TestWriterRetryPolicy(t *testing.T) {
	t.Parallel()

	retryOnce := func(ctx context.Context, attempt int, err error) bool {
		return attempt < 2
	}
	writer := NewWriter(WriterConfig{Retry: retryOnce}, testLogger())

	var attempts atomic.Int32
	require.NoError(t, writer.Enqueue("upsert", func(ctx context.Context) error {
		attempts.Add(1)
		return errors.New("transient")
	}))

	require.NoError(t, writer.Close(context.Background()))
	assert.Equal(t, int32(2), attempts.Load())
}

func TestWriterEnqueueRacesClose(t *testing.T) {
	t.Parallel()

	// Hammer Enqueue from several goroutines while Close runs. Every call
	// must either land or report ErrWriterClosed/ErrQueueFull; a send on the
	// closed queue would panic and fail the race detector run.
	for i := 0; i < 20; i++ {
		writer := NewWriter(WriterConfig{QueueSize: 4}, testLogger())

		var wg sync.WaitGroup
		start := make(chan struct{})
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for j := 0; j < 50; j++ {
					err := writer.Enqueue("upsert", func(ctx context.Context) error { return nil })
					if err != nil {
						assert.True(t,
							errors.Is(err, ErrWriterClosed) || errors.Is(err, ErrQueueFull),
							"unexpected enqueue error: %v", err)
					}
				}
			}()
		}

		close(start)
		require.NoError(t, writer.Close(context.Background()))
		wg.Wait()

		err := writer.Enqueue("upsert", func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, err, ErrWriterClosed)
	}
}

func TestWriterQueueFull(t *testing.T) {
	t.Parallel()

	writer := NewWriter(WriterConfig{QueueSize: 1, WorkerCount: 1}, testLogger())

	block := make(chan struct{})
	// Occupy the single worker.
	require.NoError(t, writer.Enqueue("upsert", func(ctx context.Context) error {
		<-block
		return nil
	}))

	// Fill the buffer, then overflow it.
	var sawFull bool
	for i := 0; i < 10; i++ {
		if err := writer.Enqueue("upsert", func(ctx context.Context) error { return nil }); err != nil {
			assert.ErrorIs(t, err, ErrQueueFull)
			sawFull = true
			break
		}
	}
	assert.True(t, sawFull, "overflowing the queue reports ErrQueueFull")

	close(block)
	require.NoError(t, writer.Close(context.Background()))
}
