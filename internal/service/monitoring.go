package service

import (
	"context"
	"time"

	"cleaning_robot/internal/models"
	"cleaning_robot/internal/repository"
)

type MonitoringService struct {
	stateRepo repository.StateRepo
}

func NewMonitoringService(stateRepo repository.StateRepo) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo}
}

// GetState returns the latest persisted robot state. If no state is
// persisted yet, returns an idle baseline snapshot. This read path is the
// re-sync point for viewers that missed realtime updates.
func (s *MonitoringService) GetState(ctx context.Context) (models.RobotState, error) {
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.RobotState{}, err
	}
	if state.ID == 0 {
		return baselineState(time.Now().UTC()), nil
	}
	state.UpdatedAt = state.UpdatedAt.UTC()
	return state, nil
}
