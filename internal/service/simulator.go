package service

import (
	"context"
	"time"
)

// SimulatorService drives the cleaning cycle forward in the absence of a
// physical robot: it ticks the RobotService on a fixed cadence so progress
// advances and obstacle pauses resolve. A real deployment keeps it running
// too, since the grace-window resume lives in the tick path.
type SimulatorService struct {
	robot *RobotService
}

func NewSimulatorService(robot *RobotService) *SimulatorService {
	return &SimulatorService{robot: robot}
}

// Run ticks at the given interval until ctx is canceled. Tick errors are
// transient (the next tick retries from the persisted state), so the loop
// never exits on its own.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			_ = s.robot.Tick(ctx, now)
		}
	}
}
