// Command agent is a stand-in for the robot firmware: it polls the panel
// backend for pending commands on one interval and reports telemetry on
// another, the two deliberately uncoordinated, just like the real device.
// It also runs the local safety loop (obstacle pause/resume) so behavior
// matches what the store-side logic expects from the agent.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cleaning_robot/internal/logger"
	"cleaning_robot/internal/models"
)

const (
	defaultServer     = "http://localhost:8080"
	defaultPoll       = 2 * time.Second
	defaultReport     = 5 * time.Second
	maxBackoff        = 30 * time.Second
	obstacleChance    = 0.1 // per report tick while cleaning
	obstacleGrace     = 3 * time.Second
	progressPerReport = 2
)

func main() {
	var (
		server  = flag.String("server", defaultServer, "panel backend base URL")
		robotID = flag.String("robot-id", "cleanbot-01", "robot identifier")
		poll    = flag.Duration("poll", defaultPoll, "command poll interval")
		report  = flag.Duration("report", defaultReport, "telemetry report interval")
	)
	flag.Parse()

	log := logger.Get(logger.InfoLevel)

	a := &agent{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: *server,
		robotID: *robotID,
		log:     log,
		status:  models.StatusIdle,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.pollCommands(ctx, *poll)
	go a.reportTelemetry(ctx, *report)

	log.Infow("agent running", "server", *server, "robot_id", *robotID)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()
}

// agent mirrors the robot's local state. The backend's copy may lag by up
// to one poll interval; the agent is authoritative for actuation.
type agent struct {
	client  *http.Client
	baseURL string
	robotID string
	log     *logger.Logger

	mu            sync.Mutex
	status        string
	mode          string
	progress      int
	isCleaning    bool
	obstacle      bool
	obstacleSince time.Time
	startedAt     time.Time
	bootedAt      time.Time
	ackSeq        int // last command sequence observed; echoed in telemetry
}

// statusResponse is the shape of GET /api/robot/status.
type statusResponse struct {
	RobotState     models.RobotState `json:"robot_state"`
	PendingCommand string            `json:"pending_command"`
	CommandSeq     int               `json:"command_seq"`
}

// pollCommands fetches pending commands on a fixed cadence, with bounded
// exponential backoff plus jitter while the backend is unreachable.
func (a *agent) pollCommands(ctx context.Context, interval time.Duration) {
	delay := interval
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(withJitter(delay)):
		}

		resp, err := a.fetchStatus(ctx)
		if err != nil {
			a.log.Warnw("command poll failed", "err", err, "retry_in", delay)
			delay = min(delay*2, maxBackoff)
			continue
		}
		delay = interval

		if resp.PendingCommand != "" {
			a.applyCommand(resp.PendingCommand, resp.RobotState.CurrentMode, resp.CommandSeq)
		} else {
			a.ackUpTo(resp.CommandSeq)
		}
	}
}

func (a *agent) fetchStatus(ctx context.Context) (statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/robot/status", nil)
	if err != nil {
		return statusResponse{}, err
	}
	res, err := a.client.Do(req)
	if err != nil {
		return statusResponse{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return statusResponse{}, fmt.Errorf("status poll: unexpected HTTP %d", res.StatusCode)
	}
	var out statusResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return statusResponse{}, err
	}
	return out, nil
}

// ackUpTo advances the acknowledged command sequence without applying
// anything; the next telemetry report carries it.
func (a *agent) ackUpTo(seq int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if seq > a.ackSeq {
		a.ackSeq = seq
	}
}

// applyCommand mutates the local mirror the same way the backend's state
// machine does, so the next telemetry report converges. The sequence is
// acknowledged even when the command is a no-op locally: observed is
// observed.
func (a *agent) applyCommand(cmd, mode string, seq int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if seq <= a.ackSeq {
		return // already applied this command
	}
	a.ackSeq = seq

	switch cmd {
	case "start":
		if a.isCleaning {
			return
		}
		if mode == "" {
			mode = models.ModeFullClean
		}
		a.isCleaning = true
		a.mode = mode
		a.status = models.ActivePhase(mode)
		a.progress = 0
		a.startedAt = time.Now()
		a.log.Infow("starting cycle", "mode", mode)
	case "stop":
		if !a.isCleaning {
			return
		}
		a.isCleaning = false
		a.status = models.StatusIdle
		a.progress = 0
		a.mode = ""
		a.obstacle = false
		a.log.Infow("cycle stopped")
	case "pause":
		if a.isCleaning && a.status != models.StatusPaused {
			a.status = models.StatusPaused
			a.log.Infow("cycle paused")
		}
	case "resume":
		if a.isCleaning && a.status == models.StatusPaused && !a.obstacle {
			a.status = models.ActivePhase(a.mode)
			a.log.Infow("cycle resumed")
		}
	}
}

// reportTelemetry advances the local cycle and posts the snapshot. The
// local safety loop lives here: obstacles pause actuation immediately,
// without waiting for a network round trip.
func (a *agent) reportTelemetry(ctx context.Context, interval time.Duration) {
	a.bootedAt = time.Now()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			a.step(now)
			if err := a.postTelemetry(ctx); err != nil {
				a.log.Warnw("telemetry report failed", "err", err)
			}
		}
	}
}

// step runs one actuation tick: obstacle handling first, then progress.
func (a *agent) step(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.obstacle && now.Sub(a.obstacleSince) >= obstacleGrace {
		a.obstacle = false
		if a.isCleaning && a.status == models.StatusPaused {
			a.status = models.ActivePhase(a.mode)
			a.log.Infow("path clear, resuming")
		}
	}

	if !a.isCleaning || a.status == models.StatusPaused {
		return
	}

	if rand.Float64() < obstacleChance {
		a.obstacle = true
		a.obstacleSince = now
		a.status = models.StatusPaused
		a.log.Warnw("obstacle detected, pausing")
		return
	}

	a.progress += progressPerReport
	if a.progress >= 100 {
		// Hold at 100 so the completion report is truthful; a start
		// command resets progress for the next cycle.
		a.progress = 100
		a.isCleaning = false
		a.status = models.StatusIdle
		a.mode = ""
		a.log.Infow("cycle complete")
	}
}

func (a *agent) postTelemetry(ctx context.Context) error {
	a.mu.Lock()
	t := models.Telemetry{
		RobotID:          a.robotID,
		Status:           a.status,
		Progress:         a.progress,
		IsCleaning:       a.isCleaning,
		ObstacleDetected: a.obstacle,
		CurrentMode:      a.mode,
		CommandAck:       a.ackSeq,
		UptimeSec:        int(time.Since(a.bootedAt).Seconds()),
		Sensors: map[string]float64{
			"battery_pct": 80 + 20*rand.Float64(),
			"water_level": rand.Float64(),
		},
	}
	a.mu.Unlock()

	body, err := json.Marshal(t)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/robot/status", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("telemetry post: unexpected HTTP %d", res.StatusCode)
	}
	return nil
}

// withJitter spreads retries by ±20% so reconnecting agents don't align.
func withJitter(d time.Duration) time.Duration {
	f := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * f)
}
