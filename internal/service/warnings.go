package service

import (
	"context"
	"time"

	"household-planner/internal/calendar"
	"household-planner/internal/model"
)

// PlanningWarning is the dashboard view of a cadence running out of cycle time
// while some of its tasks are still unscheduled.
type PlanningWarning struct {
	Cadence           model.Cadence `json:"cadence"`
	RemainingFraction float64       `json:"remaining_fraction"`
	UnscheduledTasks  []string      `json:"unscheduled_tasks"`
	CycleStart        time.Time     `json:"cycle_start"`
	CycleEnd          time.Time     `json:"cycle_end"`
}

// GetDashboardPlanningWarnings flags each non-daily cadence whose remaining cycle
// fraction is at or below threshold and that still has an unscheduled task.
func (s *CascadeService) GetDashboardPlanningWarnings(ctx context.Context, now time.Time, threshold float64) ([]PlanningWarning, error) {
	var warnings []PlanningWarning
	for _, cadence := range model.Cadences[1:] {
		start, end, err := calendar.CycleRange(cadence, now)
		if err != nil {
			return nil, err
		}
		fraction := RemainingFraction(now, start, end)
		if fraction > threshold {
			continue
		}

		tasks, err := s.taskRepo.ListByCadence(ctx, cadence)
		if err != nil {
			return nil, err
		}
		if len(tasks) == 0 {
			continue
		}
		scheduled, err := s.occurrenceRepo.DistinctScheduledTaskIDs(ctx, cadence, start, end)
		if err != nil {
			return nil, err
		}
		taken := make(map[uint]bool, len(scheduled))
		for _, id := range scheduled {
			taken[id] = true
		}

		var unscheduled []string
		for _, task := range tasks {
			if !taken[task.ID] {
				unscheduled = append(unscheduled, task.Title)
			}
		}
		if len(unscheduled) == 0 {
			continue
		}
		warnings = append(warnings, PlanningWarning{
			Cadence:           cadence,
			RemainingFraction: fraction,
			UnscheduledTasks:  unscheduled,
			CycleStart:        start,
			CycleEnd:          end,
		})
	}
	return warnings, nil
}

// RemainingFraction is 1 - clamp(elapsed/length, 0, 1); degenerate cycles report 0.
func RemainingFraction(now, start, end time.Time) float64 {
	length := end.Sub(start)
	if length <= 0 {
		return 0
	}
	elapsed := float64(now.Sub(start)) / float64(length)
	switch {
	case elapsed < 0:
		elapsed = 0
	case elapsed > 1:
		elapsed = 1
	}
	return 1 - elapsed
}
