package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"household-planner/internal/calendar"
	"household-planner/internal/metrics"
	"household-planner/internal/model"
)

// RollForwardResult counts what a roll-forward pass changed.
type RollForwardResult struct {
	Moved             int `json:"moved"`
	HiddenAsDuplicate int `json:"hidden_as_duplicate"`
}

// RollForwardUnfinishedToToday carries abandoned past occurrences onto today.
// Per task only the earliest stale occurrence moves; the others are hidden. A task
// that already has a row today keeps it and all of its stale rows are hidden.
func (s *PlannerService) RollForwardUnfinishedToToday(ctx context.Context, now time.Time) (RollForwardResult, error) {
	var result RollForwardResult
	today := calendar.StartOfDay(now)

	stale, err := s.occurrenceRepo.ListStaleIncomplete(ctx, today)
	if err != nil || len(stale) == 0 {
		return result, err
	}

	var taskOrder []uint
	byTask := make(map[uint][]model.Occurrence)
	for _, occ := range stale {
		if _, seen := byTask[occ.TaskID]; !seen {
			taskOrder = append(taskOrder, occ.TaskID)
		}
		byTask[occ.TaskID] = append(byTask[occ.TaskID], occ)
	}

	hasToday, err := s.occurrenceRepo.TaskIDsWithOccurrenceOn(ctx, taskOrder, today)
	if err != nil {
		return result, err
	}

	var toHide []uint
	for _, taskID := range taskOrder {
		rows := byTask[taskID]
		if hasToday[taskID] {
			for _, occ := range rows {
				toHide = append(toHide, occ.ID)
			}
			continue
		}

		err := s.occurrenceRepo.MoveDate(ctx, rows[0].ID, today)
		switch {
		case err == nil:
			result.Moved++
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// A concurrent materialization created today's row first.
			toHide = append(toHide, rows[0].ID)
		default:
			return result, err
		}
		for _, occ := range rows[1:] {
			toHide = append(toHide, occ.ID)
		}
	}

	if err := s.occurrenceRepo.Hide(ctx, toHide); err != nil {
		return result, err
	}
	result.HiddenAsDuplicate = len(toHide)

	metrics.AddRolledForward(result.Moved, result.HiddenAsDuplicate)
	s.logger.Info("Rolled forward unfinished occurrences",
		zap.String("today", calendar.DayKey(today)),
		zap.Int("moved", result.Moved),
		zap.Int("hidden", result.HiddenAsDuplicate),
	)
	return result, nil
}
