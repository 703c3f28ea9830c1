package inmemory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ovolkov/billflow/internal/jobs"
)

func reconcileJob(owner, obligation string) *jobs.ReconcileJob {
	return &jobs.ReconcileJob{
		Type:         jobs.JobTypeReconcileObligation,
		OwnerID:      owner,
		ObligationID: obligation,
	}
}

func TestQueue_PublishAndProcess(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 2, 0, store)
	defer q.Close()

	var processed atomic.Int32
	done := make(chan struct{})
	handler := func(ctx context.Context, job jobs.Job) error {
		if processed.Add(1) == 1 {
			close(done)
		}
		return nil
	}

	ctx := context.Background()
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := reconcileJob("owner-1", "ob-1")
	if err := q.PublishReconcile(ctx, job); err != nil {
		t.Fatalf("PublishReconcile failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed in time")
	}

	if job.JobID == "" {
		t.Error("expected job ID assigned on publish")
	}

	// Poll the store for the terminal status.
	deadline := time.Now().Add(2 * time.Second)
	for {
		saved, err := store.GetJob(ctx, job.JobID)
		if err != nil {
			t.Fatalf("GetJob failed: %v", err)
		}
		if saved.Status == jobs.JobStatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job status = %s, want completed", saved.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestQueue_DebounceDropsDuplicateKeys(t *testing.T) {
	q := NewQueue(10, 1, time.Minute, nil)
	defer q.Close()

	var mu sync.Mutex
	var seen []string
	started := make(chan struct{}, 4)
	handler := func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		seen = append(seen, job.GetID())
		mu.Unlock()
		started <- struct{}{}
		return nil
	}

	ctx := context.Background()
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Same key twice inside the window: second publish is a silent no-op.
	if err := q.PublishReconcile(ctx, reconcileJob("owner-1", "ob-1")); err != nil {
		t.Fatalf("first publish failed: %v", err)
	}
	if err := q.PublishReconcile(ctx, reconcileJob("owner-1", "ob-1")); err != nil {
		t.Fatalf("duplicate publish failed: %v", err)
	}
	// A different key passes through.
	if err := q.PublishReconcile(ctx, reconcileJob("owner-1", "ob-2")); err != nil {
		t.Fatalf("distinct publish failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("expected two processed jobs")
		}
	}

	// Give a dropped duplicate a moment to (incorrectly) surface.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Errorf("processed %d jobs, want 2 (duplicate dropped)", len(seen))
	}
}

func TestQueue_RetryBypassesDebounce(t *testing.T) {
	q := NewQueue(10, 1, time.Minute, nil)
	defer q.Close()

	var attempts atomic.Int32
	succeeded := make(chan struct{})
	handler := func(ctx context.Context, job jobs.Job) error {
		if attempts.Add(1) == 1 {
			return errors.New("transient failure")
		}
		close(succeeded)
		return nil
	}

	ctx := context.Background()
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := reconcileJob("owner-1", "ob-1")
	job.MaxRetries = 2
	if err := q.PublishReconcile(ctx, job); err != nil {
		t.Fatalf("PublishReconcile failed: %v", err)
	}

	// The retry republishes the same key inside the debounce window and must
	// not be dropped.
	select {
	case <-succeeded:
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not run")
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestQueue_StopWaitsForInflightJobs(t *testing.T) {
	q := NewQueue(10, 1, 0, nil)

	release := make(chan struct{})
	var finished atomic.Bool
	handler := func(ctx context.Context, job jobs.Job) error {
		<-release
		finished.Store(true)
		return nil
	}

	ctx := context.Background()
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := q.PublishReconcile(ctx, reconcileJob("owner-1", "ob-1")); err != nil {
		t.Fatalf("PublishReconcile failed: %v", err)
	}

	// Let the worker pick the job up, then release it mid-shutdown.
	time.Sleep(50 * time.Millisecond)
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !finished.Load() {
		t.Error("expected in-flight job to finish before Stop returned")
	}
}

func TestQueue_PublishAfterCloseFails(t *testing.T) {
	q := NewQueue(10, 1, 0, nil)
	if err := q.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := q.PublishReconcile(context.Background(), reconcileJob("owner-1", "ob-1")); err == nil {
		t.Error("expected publish on closed queue to fail")
	}
}
