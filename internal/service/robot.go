package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cleaning_robot/internal/models"
	"cleaning_robot/internal/repository"
)

// ErrInvalidTelemetry marks agent reports that failed validation. They are
// rejected before touching the store.
var ErrInvalidTelemetry = errors.New("invalid telemetry")

// Rejection messages surfaced to the panel on precondition failures.
const (
	msgAlreadyCleaning = "Robot is already cleaning"
	msgNotCleaning     = "Robot is not cleaning"
	msgCannotPause     = "Cannot pause robot"
	msgCannotResume    = "Cannot resume robot"
)

// RobotService owns every write to the robot state: user commands, agent
// telemetry and simulator ticks all funnel through its mutex. All fields
// of the state row are updated together as one record, so a single lock
// is the whole concurrency story.
type RobotService struct {
	mu        sync.Mutex
	stateRepo repository.StateRepo
	logRepo   repository.CleaningLogRepo
	bc        Broadcaster

	progressStep  int
	obstacleGrace time.Duration
}

func NewRobotService(stateRepo repository.StateRepo, logRepo repository.CleaningLogRepo, bc Broadcaster, cfg Config) *RobotService {
	cfg = cfg.withDefaults()
	return &RobotService{
		stateRepo:     stateRepo,
		logRepo:       logRepo,
		bc:            bc,
		progressStep:  cfg.ProgressStep,
		obstacleGrace: cfg.ObstacleGrace,
	}
}

// baselineState is the idle snapshot used before the first persisted row.
func baselineState(now time.Time) models.RobotState {
	return models.RobotState{
		ID:        1,
		Status:    models.StatusIdle,
		UpdatedAt: now,
	}
}

// loadOrInit reads the state row, substituting an idle baseline when the
// table is still empty.
func (s *RobotService) loadOrInit(ctx context.Context, now time.Time) (models.RobotState, error) {
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.RobotState{}, err
	}
	if st.ID == 0 {
		st = baselineState(now)
	}
	return st, nil
}

// publish sends events to the hub after a mutation has been committed.
func (s *RobotService) publish(events []models.Event) {
	if s.bc == nil {
		return
	}
	for _, e := range events {
		s.bc.Broadcast(e)
	}
}

// snapshot returns a copy for embedding in events, detached from the
// struct the caller keeps mutating.
func snapshot(st models.RobotState) *models.RobotState {
	c := st
	return &c
}

// Execute validates a panel command against the current state and applies
// it. Precondition failures are not errors: they come back as
// Success=false with an explanation and the unchanged state.
func (s *RobotService) Execute(ctx context.Context, p CommandParams) (CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	st, err := s.loadOrInit(ctx, now)
	if err != nil {
		return CommandResult{}, err
	}

	var (
		res    CommandResult
		events []models.Event
	)
	switch p.Command {
	case CommandStart:
		res, events = s.applyStart(&st, p.Mode, now)
	case CommandStop:
		res, events, err = s.applyStop(ctx, &st, now)
		if err != nil {
			return CommandResult{}, err
		}
	case CommandPause:
		res, events = s.applyPause(&st, now)
	case CommandResume:
		res, events = s.applyResume(&st, now)
	default:
		return CommandResult{
			Success: false,
			Message: fmt.Sprintf("unknown command %q", p.Command),
			State:   st,
		}, nil
	}

	if !res.Success {
		return res, nil
	}

	st.PendingCommand = p.Command
	st.CommandSeq++
	st.UpdatedAt = now
	if err := s.stateRepo.Save(ctx, st); err != nil {
		return CommandResult{}, err
	}
	res.State = st

	s.publish(events)
	return res, nil
}

func (s *RobotService) applyStart(st *models.RobotState, mode string, now time.Time) (CommandResult, []models.Event) {
	if st.IsCleaning {
		return CommandResult{Success: false, Message: msgAlreadyCleaning, State: *st}, nil
	}
	if mode == "" {
		mode = models.ModeFullClean
	}
	if !models.ValidMode(mode) {
		return CommandResult{
			Success: false,
			Message: fmt.Sprintf("unknown cleaning mode %q", mode),
			State:   *st,
		}, nil
	}

	st.IsCleaning = true
	st.Status = models.ActivePhase(mode)
	st.CurrentMode = mode
	st.Progress = 0
	st.StartTime = &now
	st.PauseReason = ""

	return CommandResult{Success: true, Message: "Cleaning started"}, []models.Event{{
		Type:       models.EventInfo,
		Message:    fmt.Sprintf("Starting %s cycle...", strings.ReplaceAll(mode, "_", " ")),
		RobotState: snapshot(*st),
	}}
}

func (s *RobotService) applyStop(ctx context.Context, st *models.RobotState, now time.Time) (CommandResult, []models.Event, error) {
	if !st.IsCleaning {
		return CommandResult{Success: false, Message: msgNotCleaning, State: *st}, nil, nil
	}

	if _, err := s.closeSession(ctx, st, now); err != nil {
		return CommandResult{}, nil, err
	}

	return CommandResult{Success: true, Message: "Cleaning stopped"}, []models.Event{{
		Type:       models.EventInfo,
		Message:    "Cleaning stopped by user",
		RobotState: snapshot(*st),
	}}, nil
}

func (s *RobotService) applyPause(st *models.RobotState, now time.Time) (CommandResult, []models.Event) {
	if !st.IsCleaning || st.Status == models.StatusPaused {
		return CommandResult{Success: false, Message: msgCannotPause, State: *st}, nil
	}

	st.Status = models.StatusPaused
	st.PauseReason = models.PauseUserRequest

	return CommandResult{Success: true, Message: "Cleaning paused"}, []models.Event{{
		Type:       models.EventInfo,
		Message:    "Cleaning paused by user",
		RobotState: snapshot(*st),
	}}
}

func (s *RobotService) applyResume(st *models.RobotState, now time.Time) (CommandResult, []models.Event) {
	if !st.IsCleaning || st.Status != models.StatusPaused || st.ObstacleDetected {
		return CommandResult{Success: false, Message: msgCannotResume, State: *st}, nil
	}

	st.Status = models.ActivePhase(st.CurrentMode)
	st.PauseReason = ""

	return CommandResult{Success: true, Message: "Cleaning resumed"}, []models.Event{{
		Type:       models.EventInfo,
		Message:    "Cleaning resumed",
		RobotState: snapshot(*st),
	}}
}

// closeSession appends the history entry for the active session, resets
// the state to idle and returns the entry. The entry is completed only
// when the full cycle ran.
func (s *RobotService) closeSession(ctx context.Context, st *models.RobotState, now time.Time) (models.CleaningLog, error) {
	outcome := models.SessionInterrupted
	if st.Progress >= 100 {
		outcome = models.SessionCompleted
	}

	started := now
	if st.StartTime != nil {
		started = st.StartTime.UTC()
	}

	entry := models.CleaningLog{
		Mode:        st.CurrentMode,
		Status:      outcome,
		StartTime:   started,
		EndTime:     now,
		DurationSec: int(now.Sub(started).Seconds()),
		Progress:    st.Progress,
	}
	if err := s.logRepo.Append(ctx, entry); err != nil {
		return models.CleaningLog{}, err
	}

	st.IsCleaning = false
	st.Status = models.StatusIdle
	st.Progress = 0
	st.CurrentMode = ""
	st.StartTime = nil
	st.PauseReason = ""
	return entry, nil
}

// validateTelemetry rejects malformed agent reports before they reach the
// store.
func validateTelemetry(t models.Telemetry) error {
	if t.RobotID == "" {
		return fmt.Errorf("%w: missing robot_id", ErrInvalidTelemetry)
	}
	if !models.ValidStatus(t.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTelemetry, t.Status)
	}
	if t.Progress < 0 || t.Progress > 100 {
		return fmt.Errorf("%w: progress %d out of range", ErrInvalidTelemetry, t.Progress)
	}
	if t.CurrentMode != "" && !models.ValidMode(t.CurrentMode) {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidTelemetry, t.CurrentMode)
	}
	if (t.Status == models.StatusIdle) == t.IsCleaning {
		return fmt.Errorf("%w: is_cleaning=%t contradicts status %q", ErrInvalidTelemetry, t.IsCleaning, t.Status)
	}
	return nil
}

// IngestTelemetry overwrites the store with an agent report. A fresh
// obstacle pauses the session and raises an alert; the simulator clears
// the flag again once the grace window passes. A report that takes the
// robot out of active cleaning closes the session into the history log.
//
// The report and the command poll run on independent cadences, so a
// report may be produced before the agent's next poll. CommandAck is the
// tie-breaker: while a command is pending, a report acking an older
// sequence is stale and leaves the store untouched, otherwise it would
// erase the command and roll the state back to the pre-command snapshot.
func (s *RobotService) IngestTelemetry(ctx context.Context, t models.Telemetry) (models.RobotState, error) {
	if err := validateTelemetry(t); err != nil {
		return models.RobotState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	st, err := s.loadOrInit(ctx, now)
	if err != nil {
		return models.RobotState{}, err
	}

	if st.PendingCommand != "" && t.CommandAck < st.CommandSeq {
		return st, nil
	}

	var events []models.Event

	wasCleaning := st.IsCleaning
	st.Status = t.Status
	st.Progress = t.Progress
	st.IsCleaning = t.IsCleaning
	if t.CurrentMode != "" {
		st.CurrentMode = t.CurrentMode
	}

	if wasCleaning && !t.IsCleaning {
		// The agent ended the session on its own (cycle finished or a
		// local stop). Every exit from active cleaning lands in history.
		entry, err := s.closeSession(ctx, &st, now)
		if err != nil {
			return models.RobotState{}, err
		}
		if entry.Status == models.SessionCompleted {
			events = append(events, models.Event{
				Type:        models.EventCleaningComplete,
				Message:     "Cleaning cycle completed successfully!",
				DurationSec: entry.DurationSec,
			})
		}
	}

	switch {
	case t.ObstacleDetected && st.IsCleaning:
		if !st.ObstacleDetected {
			events = append(events, models.Event{
				Type:       models.EventAlert,
				Message:    "Obstacle detected! Robot paused for safety.",
				RobotState: nil, // filled in below, after the pause is applied
			})
		}
		// Every sighting restarts the grace window.
		st.ObstacleDetected = true
		st.ObstacleSince = &now
		st.Status = models.StatusPaused
		st.PauseReason = models.PauseObstacle
	case !t.ObstacleDetected && st.ObstacleDetected:
		// Agent reports a clear path; keep the flag until the grace
		// window elapses so the simulator can resume deliberately.
	}

	st.PendingCommand = ""
	st.UpdatedAt = now
	if err := s.stateRepo.Save(ctx, st); err != nil {
		return models.RobotState{}, err
	}

	for i := range events {
		events[i].RobotState = snapshot(st)
	}
	events = append(events, models.Event{
		Type:       models.EventStatusUpdate,
		RobotState: snapshot(st),
	})
	s.publish(events)

	return st, nil
}

// Tick advances an active session by one progress step and handles the
// obstacle grace window. The simulator calls it on a fixed cadence.
func (s *RobotService) Tick(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now = now.UTC()
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return err
	}
	if st.ID == 0 {
		// First tick on a fresh database: persist the idle baseline.
		return s.stateRepo.Save(ctx, baselineState(now))
	}

	var events []models.Event
	changed := false

	// Obstacle cleared long enough ago: resume the interrupted phase.
	if st.ObstacleDetected && st.ObstacleSince != nil && now.Sub(*st.ObstacleSince) >= s.obstacleGrace {
		st.ObstacleDetected = false
		st.ObstacleSince = nil
		if st.IsCleaning && st.Status == models.StatusPaused && st.PauseReason == models.PauseObstacle {
			st.Status = models.ActivePhase(st.CurrentMode)
			st.PauseReason = ""
		}
		events = append(events, models.Event{
			Type:       models.EventInfo,
			Message:    "Path clear. Resuming cleaning...",
			RobotState: nil, // snapshot taken after all mutations
		})
		changed = true
	}

	if st.IsCleaning && st.Status != models.StatusPaused {
		st.Progress += s.progressStep
		if st.Progress >= 100 {
			st.Progress = 100
			entry, err := s.closeSession(ctx, &st, now)
			if err != nil {
				return err
			}
			events = append(events, models.Event{
				Type:        models.EventCleaningComplete,
				Message:     "Cleaning cycle completed successfully!",
				DurationSec: entry.DurationSec,
			})
		} else {
			events = append(events, models.Event{Type: models.EventStatusUpdate})
		}
		changed = true
	}

	if !changed {
		return nil
	}

	st.UpdatedAt = now
	if err := s.stateRepo.Save(ctx, st); err != nil {
		return err
	}

	for i := range events {
		events[i].RobotState = snapshot(st)
	}
	s.publish(events)
	return nil
}
