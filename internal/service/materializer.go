package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"household-planner/internal/calendar"
	"household-planner/internal/metrics"
	"household-planner/internal/model"
	"household-planner/internal/repository"
)

// MaxHorizonDays caps how far ahead one materialization call may write.
const MaxHorizonDays = 90

// materializationWindow returns [start, end) for a call: start is now's civil day,
// end defaults to the next day and never exceeds start+MaxHorizonDays.
func materializationWindow(now time.Time, through *time.Time) (time.Time, time.Time) {
	start := calendar.StartOfDay(now)
	end := calendar.StartOfNextDay(now)
	if through != nil {
		end = through.UTC()
	}
	if limit := calendar.AddDays(start, MaxHorizonDays); end.After(limit) {
		end = limit
	}
	return start, end
}

// occursOn reports whether the materializer owns the (task, day) slot.
func occursOn(task model.Task, day time.Time) bool {
	switch task.Cadence {
	case model.CadenceDaily:
		return true
	case model.CadenceWeekly:
		return task.PinnedWeekday != nil && calendar.WeekdayIndex(day) == *task.PinnedWeekday
	case model.CadenceBiweekly:
		if task.PinnedWeekday == nil || task.AnchorDate == nil {
			return false
		}
		if calendar.WeekdayIndex(day) != *task.PinnedWeekday {
			return false
		}
		offset := calendar.DaysBetween(*task.AnchorDate, day)
		return offset >= 0 && offset%14 == 0
	default:
		return false
	}
}

// EnsureDailyOccurrences gives every DAILY task one occurrence per day in
// [now's day, through), or just now's day when through is nil.
func (s *PlannerService) EnsureDailyOccurrences(ctx context.Context, now time.Time, through *time.Time) (int, error) {
	tasks, err := s.taskRepo.ListByCadence(ctx, model.CadenceDaily)
	if err != nil {
		return 0, err
	}
	start, end := materializationWindow(now, through)
	return s.materialize(ctx, "daily", tasks, start, end)
}

// EnsurePinnedWeeklyOccurrences materializes WEEKLY tasks on their pinned weekday.
func (s *PlannerService) EnsurePinnedWeeklyOccurrences(ctx context.Context, now time.Time, through *time.Time) (int, error) {
	tasks, err := s.taskRepo.ListPinned(ctx, model.CadenceWeekly)
	if err != nil {
		return 0, err
	}
	start, end := materializationWindow(now, through)
	return s.materialize(ctx, "weekly", tasks, start, end)
}

// EnsurePinnedBiweeklyOccurrences materializes BIWEEKLY tasks every 14 days from
// their anchor, never before it.
func (s *PlannerService) EnsurePinnedBiweeklyOccurrences(ctx context.Context, now time.Time, through *time.Time) (int, error) {
	tasks, err := s.taskRepo.ListPinned(ctx, model.CadenceBiweekly)
	if err != nil {
		return 0, err
	}
	start, end := materializationWindow(now, through)
	return s.materialize(ctx, "biweekly", tasks, start, end)
}

func (s *PlannerService) materialize(ctx context.Context, kind string, tasks []model.Task, start, end time.Time) (int, error) {
	if len(tasks) == 0 || !start.Before(end) {
		return 0, nil
	}

	days := calendar.Days(start, end)
	taskIDs := make([]uint, 0, len(tasks))
	var candidates []model.Occurrence
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
		for _, day := range days {
			if !occursOn(task, day) {
				continue
			}
			candidates = append(candidates, model.Occurrence{
				TaskID: task.ID,
				Date:   day,
				Slot:   task.Cadence,
			})
		}
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	existing, err := s.occurrenceRepo.ExistingKeys(ctx, taskIDs, start, end)
	if err != nil {
		return 0, err
	}
	missing := candidates[:0:0]
	for _, c := range candidates {
		if _, ok := existing[repository.KeyOf(c)]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		s.logger.Debug("Occurrences already materialized",
			zap.String("kind", kind),
			zap.Int("candidates", len(candidates)),
		)
		return 0, nil
	}

	inserted, err := s.occurrenceRepo.InsertOrSkip(ctx, missing)
	if err != nil {
		return inserted, err
	}
	metrics.AddMaterialized(kind, inserted)
	s.logger.Info("Occurrences materialized",
		zap.String("kind", kind),
		zap.String("from", calendar.DayKey(start)),
		zap.String("to", calendar.DayKey(end)),
		zap.Int("candidates", len(candidates)),
		zap.Int("inserted", inserted),
	)
	return inserted, nil
}
