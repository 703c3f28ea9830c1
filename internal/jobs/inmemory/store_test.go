package inmemory

import (
	"context"
	"testing"

	"github.com/ovolkov/billflow/internal/jobs"
)

func TestStore_SaveAndGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	job := &jobs.ReconcileJob{
		JobID:        "job-1",
		Type:         jobs.JobTypeReconcileObligation,
		OwnerID:      "owner-1",
		ObligationID: "ob-1",
		Status:       jobs.JobStatusPending,
	}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	got, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.OwnerID != "owner-1" || got.Status != jobs.JobStatusPending {
		t.Errorf("unexpected job: %+v", got)
	}

	// Returned copies must not alias stored state.
	got.Status = jobs.JobStatusFailed
	again, _ := s.GetJob(ctx, "job-1")
	if again.Status != jobs.JobStatusPending {
		t.Error("GetJob returned an aliased job")
	}

	if err := s.SaveJob(ctx, &jobs.ReconcileJob{}); err == nil {
		t.Error("expected error for job without ID")
	}
	if _, err := s.GetJob(ctx, "job-nope"); err == nil {
		t.Error("expected error for unknown job")
	}
}

func TestStore_ListJobs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	seed := []*jobs.ReconcileJob{
		{JobID: "j1", Type: jobs.JobTypeReconcileObligation, OwnerID: "owner-1", Status: jobs.JobStatusPending},
		{JobID: "j2", Type: jobs.JobTypeReconcileObligation, OwnerID: "owner-1", Status: jobs.JobStatusCompleted},
		{JobID: "j3", Type: jobs.JobTypeRebuildSummary, OwnerID: "owner-2", Status: jobs.JobStatusPending},
	}
	for _, j := range seed {
		if err := s.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   int
	}{
		{"no filter", jobs.JobFilter{}, 3},
		{"by owner", jobs.JobFilter{OwnerID: "owner-1"}, 2},
		{"by type", jobs.JobFilter{Type: jobs.JobTypeRebuildSummary}, 1},
		{"by status", jobs.JobFilter{Status: jobs.JobStatusPending}, 2},
		{"owner and status", jobs.JobFilter{OwnerID: "owner-1", Status: jobs.JobStatusCompleted}, 1},
		{"limit", jobs.JobFilter{Limit: 2}, 2},
		{"offset past end", jobs.JobFilter{Offset: 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListJobs failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d jobs, want %d", len(got), tt.want)
			}
		})
	}
}

func TestStore_UpdateJobStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	job := &jobs.ReconcileJob{JobID: "job-1", OwnerID: "owner-1", Status: jobs.JobStatusRunning}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	if err := s.UpdateJobStatus(ctx, "job-1", jobs.JobStatusFailed, "boom"); err != nil {
		t.Fatalf("UpdateJobStatus failed: %v", err)
	}

	got, _ := s.GetJob(ctx, "job-1")
	if got.Status != jobs.JobStatusFailed || got.Error != "boom" {
		t.Errorf("unexpected job after update: %+v", got)
	}

	if err := s.UpdateJobStatus(ctx, "job-nope", jobs.JobStatusFailed, ""); err == nil {
		t.Error("expected error for unknown job")
	}
}
