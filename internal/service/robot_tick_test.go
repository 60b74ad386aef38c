package service

import (
	"context"
	"testing"
	"time"

	"cleaning_robot/internal/models"
)

func TestTick_InitializesBaselineOnFreshDatabase(t *testing.T) {
	svc, srepo, _, bc := newTestRobot(models.RobotState{})

	if err := svc.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := lastSavedState(t, srepo)
	if st.ID != 1 || st.Status != models.StatusIdle || st.IsCleaning {
		t.Fatalf("expected idle baseline, got %+v", st)
	}
	if len(bc.events) != 0 {
		t.Fatalf("baseline init must not broadcast")
	}
}

func TestTick_AdvancesProgressAndBroadcasts(t *testing.T) {
	svc, srepo, _, bc := newTestRobot(activeState(models.ModeMopOnly, 40))

	if err := svc.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := lastSavedState(t, srepo)
	if st.Progress != 45 { // step is 5 in the test config
		t.Fatalf("expected progress 45, got %d", st.Progress)
	}
	updates := bc.byType(models.EventStatusUpdate)
	if len(updates) != 1 {
		t.Fatalf("expected one status_update, got %d", len(updates))
	}
	if updates[0].RobotState == nil || updates[0].RobotState.Progress != 45 {
		t.Fatalf("status_update must carry the committed snapshot")
	}
}

func TestTick_NoProgressWhilePaused(t *testing.T) {
	st := activeState(models.ModeMopOnly, 40)
	st.Status = models.StatusPaused
	st.PauseReason = models.PauseUserRequest
	svc, srepo, _, bc := newTestRobot(st)

	if err := svc.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(srepo.savedCalls) != 0 {
		t.Fatalf("paused tick must not save")
	}
	if len(bc.events) != 0 {
		t.Fatalf("paused tick must not broadcast")
	}
}

func TestTick_NoProgressWhileIdle(t *testing.T) {
	svc, srepo, _, _ := newTestRobot(models.RobotState{ID: 1, Status: models.StatusIdle})

	if err := svc.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(srepo.savedCalls) != 0 {
		t.Fatalf("idle tick must not save")
	}
}

// Ticking from 95 to 100 must produce exactly one completed log entry and
// exactly one cleaning_complete broadcast, then reset the state.
func TestTick_CompletionAtHundred(t *testing.T) {
	svc, srepo, lrepo, bc := newTestRobot(activeState(models.ModeSprayOnly, 95))
	ctx := context.Background()

	if err := svc.Tick(ctx, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(lrepo.entries) != 1 {
		t.Fatalf("expected exactly one log entry, got %d", len(lrepo.entries))
	}
	entry := lrepo.entries[0]
	if entry.Status != models.SessionCompleted {
		t.Fatalf("expected completed, got %s", entry.Status)
	}
	if entry.Progress != 100 {
		t.Fatalf("expected final progress 100, got %d", entry.Progress)
	}
	if entry.DurationSec < 59 || entry.DurationSec > 61 {
		t.Fatalf("expected ~60s duration, got %d", entry.DurationSec)
	}

	done := bc.byType(models.EventCleaningComplete)
	if len(done) != 1 {
		t.Fatalf("expected exactly one cleaning_complete, got %d", len(done))
	}
	if done[0].DurationSec != entry.DurationSec {
		t.Fatalf("broadcast duration %d != log duration %d", done[0].DurationSec, entry.DurationSec)
	}

	st := lastSavedState(t, srepo)
	if st.Status != models.StatusIdle || st.IsCleaning || st.Progress != 0 || st.CurrentMode != "" {
		t.Fatalf("expected reset idle state, got %+v", st)
	}
	assertCleaningInvariant(t, st)

	// Further ticks are no-ops: no second entry, no second broadcast.
	if err := svc.Tick(ctx, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lrepo.entries) != 1 || len(bc.byType(models.EventCleaningComplete)) != 1 {
		t.Fatalf("completion must fire exactly once")
	}
}

func TestTick_ObstacleGraceResumes(t *testing.T) {
	st := activeState(models.ModeMopOnly, 30)
	st.Status = models.StatusPaused
	st.PauseReason = models.PauseObstacle
	st.ObstacleDetected = true
	since := time.Now().UTC().Add(-5 * time.Second) // past the 3s grace
	st.ObstacleSince = &since
	svc, srepo, _, bc := newTestRobot(st)

	if err := svc.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved := lastSavedState(t, srepo)
	if saved.ObstacleDetected {
		t.Fatalf("expected obstacle flag cleared")
	}
	if saved.ObstacleSince != nil {
		t.Fatalf("expected obstacle timestamp cleared")
	}
	if saved.Status != models.StatusMopping {
		t.Fatalf("expected resumed mopping, got %s", saved.Status)
	}
	if saved.PauseReason != "" {
		t.Fatalf("expected pause reason cleared")
	}
	// Same tick also advances progress, since the robot is active again.
	if saved.Progress != 35 {
		t.Fatalf("expected progress 35, got %d", saved.Progress)
	}

	infos := bc.byType(models.EventInfo)
	if len(infos) != 1 {
		t.Fatalf("expected one resume info event, got %d", len(infos))
	}
	if infos[0].RobotState == nil || infos[0].RobotState.Status != models.StatusMopping {
		t.Fatalf("resume event must carry the committed snapshot")
	}
}

func TestTick_ObstacleWithinGraceStaysPaused(t *testing.T) {
	st := activeState(models.ModeMopOnly, 30)
	st.Status = models.StatusPaused
	st.PauseReason = models.PauseObstacle
	st.ObstacleDetected = true
	since := time.Now().UTC().Add(-time.Second) // inside the 3s grace
	st.ObstacleSince = &since
	svc, srepo, _, _ := newTestRobot(st)

	if err := svc.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(srepo.savedCalls) != 0 {
		t.Fatalf("nothing should change inside the grace window")
	}
}
