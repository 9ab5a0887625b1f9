// Package task provides the write-behind persistence queue. Review stores
// update their in-memory state synchronously and hand durable writes to a
// Writer, so the caller never blocks on storage latency. Failed writes are
// logged and dropped; durable state may transiently lag in-memory state.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors returned by the Writer
var (
	ErrWriterClosed = errors.New("writer is closed")
	ErrQueueFull    = errors.New("write queue is full")
)

// RetryPolicy decides whether a failed write should be attempted again.
// attempt is 1-based. The default policy never retries; the hook exists so
// retry/backoff can be added without changing the write path.
type RetryPolicy func(ctx context.Context, attempt int, err error) bool

// NoRetry is the default RetryPolicy: failed writes are logged and dropped.
func NoRetry(ctx context.Context, attempt int, err error) bool {
	return false
}

// writeTask is one pending durable write.
type writeTask struct {
	id uuid.UUID
	op string
	fn func(ctx context.Context) error
}

// WriterConfig holds configuration options for the Writer.
type WriterConfig struct {
	// QueueSize is the buffered channel capacity. Zero or negative
	// defaults to 64.
	QueueSize int

	// WorkerCount determines how many concurrent workers drain the queue.
	// Zero or negative defaults to 1. Writes for the same record key are
	// only ordered with a single worker.
	WorkerCount int

	// WriteTimeout bounds each write attempt. Zero defaults to 5 seconds.
	WriteTimeout time.Duration

	// Retry decides whether failed writes are re-attempted. Nil means
	// NoRetry.
	Retry RetryPolicy
}

// Writer is a bounded write-behind queue with worker goroutines.
type Writer struct {
	queue        chan writeTask
	workerCount  int
	writeTimeout time.Duration
	retry        RetryPolicy
	logger       *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewWriter creates a Writer and starts its workers.
func NewWriter(config WriterConfig, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}

	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}

	writeTimeout := config.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}

	retry := config.Retry
	if retry == nil {
		retry = NoRetry
	}

	w := &Writer{
		queue:        make(chan writeTask, queueSize),
		workerCount:  workerCount,
		writeTimeout: writeTimeout,
		retry:        retry,
		logger:       logger.With(slog.String("component", "write_queue")),
	}

	w.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go w.worker()
	}

	return w
}

// Enqueue submits a durable write. It never blocks: if the queue is full the
// write is dropped with a warning, leaving the durable store stale until the
// next write for the same key.
func (w *Writer) Enqueue(op string, fn func(ctx context.Context) error) error {
	t := writeTask{id: uuid.New(), op: op, fn: fn}

	// The send must stay under the mutex: Close closes the channel under
	// the same mutex, and a send that raced past a separate closed check
	// would panic.
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}

	select {
	case w.queue <- t:
		return nil
	default:
		w.logger.Warn("write queue full, dropping write",
			slog.String("write_id", t.id.String()),
			slog.String("op", op),
			slog.Int("queue_cap", cap(w.queue)))
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(w.queue))
	}
}

// Close stops accepting writes and waits for queued writes to drain, up to
// the context deadline.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("write queue drain interrupted: %w", ctx.Err())
	}
}

func (w *Writer) worker() {
	defer w.wg.Done()

	for t := range w.queue {
		w.execute(t)
	}
}

func (w *Writer) execute(t writeTask) {
	attempt := 0
	for {
		attempt++

		ctx, cancel := context.WithTimeout(context.Background(), w.writeTimeout)
		err := t.fn(ctx)
		cancel()

		if err == nil {
			return
		}

		w.logger.Warn("durable write failed",
			slog.String("write_id", t.id.String()),
			slog.String("op", t.op),
			slog.Int("attempt", attempt),
			slog.Any("error", err))

		if !w.retry(context.Background(), attempt, err) {
			return
		}
	}
}
