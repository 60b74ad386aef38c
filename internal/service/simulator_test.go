package service

import (
	"context"
	"testing"
	"time"

	"cleaning_robot/internal/models"
)

func TestSimulator_Run_TicksUntilCanceled(t *testing.T) {
	srepo := &fakeStateRepo{loadResp: activeState(models.ModeMopOnly, 0)}
	robot := NewRobotService(srepo, &fakeLogRepo{}, nil, Config{ProgressStep: 1})
	sim := NewSimulatorService(robot)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sim.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	// Let a few ticks land, then stop the loop.
	deadline := time.After(2 * time.Second)
	for {
		if srepo.saveCount() >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("simulator never advanced progress")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("simulator did not stop on context cancellation")
	}

	st := lastSavedState(t, srepo)
	if st.Progress < 3 {
		t.Fatalf("expected at least 3 progress steps, got %d", st.Progress)
	}
}
