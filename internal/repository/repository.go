package repository

import (
	"context"
	"database/sql"
	"time"

	"cleaning_robot/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// StateRepo persists the single RobotState row.
type StateRepo interface {
	Save(ctx context.Context, s models.RobotState) error
	Load(ctx context.Context) (models.RobotState, error)
}

// CleaningLogRepo is the append-only session history.
type CleaningLogRepo interface {
	Append(ctx context.Context, l models.CleaningLog) error
	List(ctx context.Context, from, to time.Time, status string, limit int) ([]models.CleaningLog, error)
}

type Repository struct {
	StateRepo StateRepo
	LogRepo   CleaningLogRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		LogRepo:   NewCleaningLogSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
