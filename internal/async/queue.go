// Package async runs document processing off the caller's goroutine on a
// bounded worker queue.
package async

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rubilakse/docparse/internal/entity"
	"github.com/rubilakse/docparse/internal/extract"
)

// Job is one file submitted for background processing.
type Job struct {
	File        extract.File
	SubmittedAt time.Time
	TraceID     string
}

// FileProcessor turns one input file into a parsed document.
type FileProcessor interface {
	ProcessFile(ctx context.Context, f extract.File) (entity.ParsedDocument, error)
}

// Sink receives each successfully parsed document, typically a repository Save.
type Sink func(ctx context.Context, doc *entity.ParsedDocument) error

type Queue struct {
	proc    FileProcessor
	sink    Sink
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	processed atomic.Uint64
	failed    atomic.Uint64

	mu     sync.Mutex
	closed bool
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewQueue starts the worker goroutines immediately. sink may be nil when
// callers only want the processing side effects logged.
func NewQueue(proc FileProcessor, sink Sink, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		sink:    sink,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("queue.worker_started", "worker_id", workerID)

				for job := range q.ch {
					q.handle(workerID, job)
				}

				q.logger.Info("queue.worker_stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue) handle(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	doc, err := q.proc.ProcessFile(ctx, job.File)
	if err != nil {
		q.failed.Add(1)
		q.logger.Error("queue.process_failed", "worker_id", workerID, "file", job.File.Name, "error", err)
		return
	}
	if q.sink != nil {
		if err := q.sink(ctx, &doc); err != nil {
			q.failed.Add(1)
			q.logger.Error("queue.sink_failed", "worker_id", workerID, "file", job.File.Name, "error", err)
			return
		}
	}
	q.processed.Add(1)
	q.logger.Info("queue.processed", "worker_id", workerID, "file", job.File.Name, "method", doc.Method)
}

// Stats reports how many jobs completed and how many failed in either
// the processor or the sink.
func (q *Queue) Stats() (processed, failed uint64) {
	return q.processed.Load(), q.failed.Load()
}

// Enqueue submits a job, blocking when the buffer is full. Jobs submitted
// after Shutdown are dropped.
func (q *Queue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue_after_shutdown", "file", job.File.Name)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queue.enqueued", "file", job.File.Name)
	default:
		q.logger.Warn("queue.full_backpressure", "file", job.File.Name)
		q.ch <- job
	}
	return nil
}

// Shutdown stops intake and waits for in-flight jobs until ctx expires.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown_interrupted")
	case <-done:
		q.logger.Info("queue.drained")
	}
}
