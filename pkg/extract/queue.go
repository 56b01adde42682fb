package extract

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// Job is one queued extraction request.
type Job struct {
	DocumentID  uint
	SubmittedAt time.Time
}

// Queue runs extraction jobs on a bounded worker pool. Enqueue applies
// backpressure instead of spawning unbounded goroutines.
type Queue struct {
	svc        *Service
	jobs       chan Job
	workers    int
	jobTimeout time.Duration

	wg sync.WaitGroup

	// mu guards closed and the send on jobs so a submission racing Shutdown
	// cannot hit a closed channel.
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
			q.jobs = make(chan Job, n)
		}
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.jobTimeout = d
		}
	}
}

func NewQueue(svc *Service, opts ...Option) *Queue {
	q := &Queue{
		svc:        svc,
		jobs:       make(chan Job, 64),
		workers:    2,
		jobTimeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(q)
	}
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	log.Printf("extract: queue started (workers=%d capacity=%d)", q.workers, cap(q.jobs))
	return q
}

var ErrQueueFull = errors.New("extraction queue full")

// Enqueue submits a document for extraction. It never blocks: a full queue
// returns ErrQueueFull so the caller can surface backpressure.
func (q *Queue) Enqueue(docID uint) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.New("extraction queue shutting down")
	}
	select {
	case q.jobs <- Job{DocumentID: docID, SubmittedAt: time.Now()}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for job := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), q.jobTimeout)
		start := time.Now()
		if err := q.svc.Process(ctx, job.DocumentID); err != nil {
			log.Printf("extract: worker %d document %d failed after %s: %v",
				id, job.DocumentID, time.Since(start).Round(time.Millisecond), err)
		} else {
			log.Printf("extract: worker %d document %d done in %s (queued %s)",
				id, job.DocumentID, time.Since(start).Round(time.Millisecond),
				start.Sub(job.SubmittedAt).Round(time.Millisecond))
		}
		cancel()
	}
}

// Shutdown stops accepting jobs and waits for in-flight work, bounded by ctx.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
