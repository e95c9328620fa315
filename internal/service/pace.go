package service

import (
	"context"
	"time"

	"household-planner/internal/calendar"
	"household-planner/internal/metrics"
	"household-planner/internal/model"
)

// PaceWarning flags a cadence with more unscheduled tasks than scheduling
// opportunities left in its cycle.
type PaceWarning struct {
	Cadence        model.Cadence `json:"cadence"`
	TotalTasks     int           `json:"total_tasks"`
	ScheduledTasks int           `json:"scheduled_tasks"`
	RemainingTasks int           `json:"remaining_tasks"`
	RemainingSlots int           `json:"remaining_slots"`
	CycleStart     time.Time     `json:"cycle_start"`
	CycleEnd       time.Time     `json:"cycle_end"`
}

// CheckCascadePace evaluates every cadence slower than DAILY. It is a pacing
// signal only and never blocks scheduling.
func (s *CascadeService) CheckCascadePace(ctx context.Context, now time.Time) ([]PaceWarning, error) {
	var warnings []PaceWarning
	for _, cadence := range model.Cadences[1:] {
		start, end, err := calendar.CycleRange(cadence, now)
		if err != nil {
			return nil, err
		}
		tasks, err := s.taskRepo.ListByCadence(ctx, cadence)
		if err != nil {
			return nil, err
		}
		scheduled, err := s.occurrenceRepo.DistinctScheduledTaskIDs(ctx, cadence, start, end)
		if err != nil {
			return nil, err
		}

		remainingTasks := len(tasks) - len(scheduled)
		if remainingTasks < 0 {
			remainingTasks = 0
		}
		remainingSlots := RemainingSlots(cadence, now, s.pace)
		metrics.SetPace(cadence.Label(), remainingTasks, remainingSlots)

		if remainingTasks > remainingSlots {
			warnings = append(warnings, PaceWarning{
				Cadence:        cadence,
				TotalTasks:     len(tasks),
				ScheduledTasks: len(scheduled),
				RemainingTasks: remainingTasks,
				RemainingSlots: remainingSlots,
				CycleStart:     start,
				CycleEnd:       end,
			})
		}
	}
	return warnings, nil
}

// RemainingSlots estimates the scheduling opportunities left in the cycle of
// cadence c containing now. Units differ per cadence: days for WEEKLY, calendar
// weeks touching the month for MONTHLY, months for YEARLY, and configured
// days-per-slot divisors for the rest. Today counts as remaining.
func RemainingSlots(c model.Cadence, now time.Time, opts PaceOptions) int {
	_, end, err := calendar.CycleRange(c, now)
	if err != nil {
		return 0
	}
	remainingDays := calendar.DaysBetween(now, end)

	switch c {
	case model.CadenceWeekly:
		return remainingDays
	case model.CadenceBiweekly:
		return ceilDiv(remainingDays, opts.BiweeklyDaysPerSlot)
	case model.CadenceMonthly:
		return ceilDiv(calendar.DaysBetween(calendar.StartOfWeek(now), end), 7)
	case model.CadenceBimonthly:
		return ceilDiv(remainingDays, opts.BimonthlyDaysPerSlot)
	case model.CadenceSemiannual:
		return ceilDiv(remainingDays, opts.SemiannualDaysPerSlot)
	case model.CadenceYearly:
		return 12 - int(now.UTC().Month()) + 1
	default:
		return remainingDays
	}
}

func ceilDiv(n, d int) int {
	if d <= 0 {
		d = 1
	}
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}
