package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cleaning_robot/internal/models"
)

func TestMonitoring_GetState_BaselineWhenEmpty(t *testing.T) {
	svc := NewMonitoringService(&fakeStateRepo{})

	st, err := svc.GetState(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.ID != 1 || st.Status != models.StatusIdle {
		t.Fatalf("expected idle baseline, got %+v", st)
	}
	if st.IsCleaning || st.Progress != 0 {
		t.Fatalf("baseline must not be cleaning, got %+v", st)
	}
}

func TestMonitoring_GetState_PassesThroughAndNormalizesUTC(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Tokyo")
	svc := NewMonitoringService(&fakeStateRepo{loadResp: models.RobotState{
		ID:          1,
		Status:      models.StatusSpray,
		Progress:    60,
		IsCleaning:  true,
		CurrentMode: models.ModeSprayOnly,
		UpdatedAt:   time.Date(2025, 8, 27, 12, 0, 0, 0, loc),
	}})

	st, err := svc.GetState(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Status != models.StatusSpray || st.Progress != 60 {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.UpdatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", st.UpdatedAt.Location())
	}
}

func TestMonitoring_GetState_ErrorPropagates(t *testing.T) {
	svc := NewMonitoringService(&fakeStateRepo{loadErr: errors.New("db down")})
	if _, err := svc.GetState(context.Background()); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
