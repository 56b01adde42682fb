package extract

import (
	"context"
	"testing"
	"time"

	"github.com/shouniet/medpetrx/models"
)

func TestQueueProcessesJobs(t *testing.T) {
	db := newTestDB(t)
	doc := seedDocument(t, db, models.ExtractionPending)
	svc := NewService(db, nil).WithTextExtractor(fakeText{text: bondVetSnippet})
	q := NewQueue(svc, WithWorkers(1), WithQueueSize(4))

	if err := q.Enqueue(doc.ID); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	got := reload(t, db, doc.ID)
	if got.ExtractionStatus != models.ExtractionCompleted {
		t.Fatalf("status = %s, want completed", got.ExtractionStatus)
	}
}

func TestQueueBackpressure(t *testing.T) {
	db := newTestDB(t)
	// Block the single worker so the buffered slot fills up.
	release := make(chan struct{})
	svc := NewService(db, nil).WithTextExtractor(blockingText{release: release})
	doc := seedDocument(t, db, models.ExtractionPending)
	q := NewQueue(svc, WithWorkers(1), WithQueueSize(1))

	// With one blocked worker and one buffered slot, at most two submissions
	// can succeed before ErrQueueFull.
	full := false
	for i := 0; i < 4; i++ {
		err := q.Enqueue(doc.ID)
		if err == ErrQueueFull {
			full = true
			break
		}
		if err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if !full {
		t.Fatal("queue never reported backpressure")
	}
	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestQueueEnqueueDuringShutdown(t *testing.T) {
	db := newTestDB(t)
	doc := seedDocument(t, db, models.ExtractionCompleted)
	q := NewQueue(NewService(db, nil), WithWorkers(1), WithQueueSize(4))

	// Hammer Enqueue while Shutdown closes the channel. Submissions may be
	// accepted or refused, but none may panic on a closed channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			_ = q.Enqueue(doc.ID)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	<-done
}

func TestQueueRejectsAfterShutdown(t *testing.T) {
	db := newTestDB(t)
	q := NewQueue(NewService(db, nil), WithWorkers(1))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := q.Enqueue(1); err == nil {
		t.Fatal("expected enqueue to fail after shutdown")
	}
}

type blockingText struct {
	release chan struct{}
}

func (b blockingText) Text(string) (string, error) {
	<-b.release
	return bondVetSnippet, nil
}
