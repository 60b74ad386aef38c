package service

import (
	"context"
	"testing"
	"time"

	"cleaning_robot/internal/models"
)

type recordingLogRepo struct {
	fakeLogRepo
	lastFrom   time.Time
	lastTo     time.Time
	lastStatus string
	lastLimit  int
}

func (r *recordingLogRepo) List(ctx context.Context, from, to time.Time, status string, limit int) ([]models.CleaningLog, error) {
	r.lastFrom = from
	r.lastTo = to
	r.lastStatus = status
	r.lastLimit = limit
	return r.entries, nil
}

func TestCleaningLog_List_NormalizesFilter(t *testing.T) {
	repo := &recordingLogRepo{}
	svc := NewCleaningLogService(repo)

	loc, _ := time.LoadLocation("Asia/Tokyo")
	from := time.Date(2025, 8, 1, 9, 0, 0, 0, loc)
	to := time.Date(2025, 8, 31, 9, 0, 0, 0, loc)

	if _, err := svc.List(context.Background(), LogFilter{
		From:   from,
		To:     to,
		Status: "  Completed ",
		Limit:  10,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.lastFrom.Location() != time.UTC || repo.lastTo.Location() != time.UTC {
		t.Fatalf("expected UTC bounds")
	}
	if repo.lastStatus != models.SessionCompleted {
		t.Fatalf("expected normalized status, got %q", repo.lastStatus)
	}
	if repo.lastLimit != 10 {
		t.Fatalf("expected limit passthrough, got %d", repo.lastLimit)
	}
}

func TestCleaningLog_List_RejectsInvertedRange(t *testing.T) {
	svc := NewCleaningLogService(&recordingLogRepo{})

	_, err := svc.List(context.Background(), LogFilter{
		From: time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatalf("expected error for From > To")
	}
}

func TestCleaningLog_List_RejectsUnknownStatus(t *testing.T) {
	svc := NewCleaningLogService(&recordingLogRepo{})

	if _, err := svc.List(context.Background(), LogFilter{Status: "aborted"}); err == nil {
		t.Fatalf("expected error for unknown status filter")
	}
}

func TestCleaningLog_List_EmptyFilterAllowed(t *testing.T) {
	repo := &recordingLogRepo{}
	svc := NewCleaningLogService(repo)

	if _, err := svc.List(context.Background(), LogFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.lastFrom.IsZero() || !repo.lastTo.IsZero() || repo.lastStatus != "" {
		t.Fatalf("empty filter must pass through unchanged")
	}
}
