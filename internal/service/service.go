package service

import (
	"context"
	"time"

	"cleaning_robot/internal/models"
	"cleaning_robot/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Robot is the command gateway plus the agent-facing ingest path. Both
// mutate the same state row and are serialized inside the implementation.
type Robot interface {
	Execute(ctx context.Context, p CommandParams) (CommandResult, error)
	IngestTelemetry(ctx context.Context, t models.Telemetry) (models.RobotState, error)
}

// Monitoring exposes read-only state for status polling and the ws handshake.
type Monitoring interface {
	GetState(ctx context.Context) (models.RobotState, error)
}

// CleaningLog exposes the append-only session history with filtering.
type CleaningLog interface {
	List(ctx context.Context, f LogFilter) ([]models.CleaningLog, error)
}

// Simulator runs the background loop that advances cleaning progress and
// clears obstacle pauses. Stop via context cancellation in main().
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Broadcaster pushes realtime events to connected viewers. State mutations
// emit events through this interface; the websocket hub is the consumer.
type Broadcaster interface {
	Broadcast(e models.Event)
}

// Config carries the tunables the services need from the config file.
type Config struct {
	ProgressStep  int           // percent added per simulator tick
	ObstacleGrace time.Duration // delay before auto-resume after an obstacle
	SigningKey    string
	TokenTTL      time.Duration
}

const (
	defaultProgressStep  = 2
	defaultObstacleGrace = 3 * time.Second
)

func (c Config) withDefaults() Config {
	if c.ProgressStep <= 0 {
		c.ProgressStep = defaultProgressStep
	}
	if c.ObstacleGrace <= 0 {
		c.ObstacleGrace = defaultObstacleGrace
	}
	return c
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Robot
	Monitoring
	CleaningLog
	Simulator
	Authorization
}

// NewService wires the repository layer and the broadcaster into concrete
// services. The RobotService is shared with the simulator so that all
// state writes go through one lock.
func NewService(repos *repository.Repository, bc Broadcaster, cfg Config) *Service {
	cfg = cfg.withDefaults()
	robot := NewRobotService(repos.StateRepo, repos.LogRepo, bc, cfg)
	return &Service{
		Robot:         robot,
		Monitoring:    NewMonitoringService(repos.StateRepo),
		CleaningLog:   NewCleaningLogService(repos.LogRepo),
		Simulator:     NewSimulatorService(robot),
		Authorization: NewAuthService(repos.Auth, cfg),
	}
}
