package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cleaning_robot/internal/models"
	"cleaning_robot/internal/repository"
)

type CleaningLogService struct {
	logRepo repository.CleaningLogRepo
}

func NewCleaningLogService(logRepo repository.CleaningLogRepo) *CleaningLogService {
	return &CleaningLogService{logRepo: logRepo}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates the
// time range and outcome filter.
func normalizeAndValidateFilter(f LogFilter) (LogFilter, error) {
	f.From = normalizeToUTC(f.From)
	f.To = normalizeToUTC(f.To)

	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return LogFilter{}, errInvalidTimeRange
	}

	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	switch f.Status {
	case "", models.SessionCompleted, models.SessionInterrupted:
	default:
		return LogFilter{}, fmt.Errorf("invalid status filter %q", f.Status)
	}
	return f, nil
}

// List returns session history entries, most recent first.
func (s *CleaningLogService) List(ctx context.Context, f LogFilter) ([]models.CleaningLog, error) {
	f, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.logRepo.List(ctx, f.From, f.To, f.Status, f.Limit)
}
