package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"household-planner/internal/calendar"
	"household-planner/internal/metrics"
	"household-planner/internal/model"
	"household-planner/internal/repository"
)

// PlannerService owns the occurrence grid: materialization, roll-forward and the
// manual schedule/complete/delete commands.
type PlannerService struct {
	taskRepo       *repository.TaskRepository
	occurrenceRepo *repository.OccurrenceRepository
	completionRepo *repository.CompletionRepository
	horizonDays    int
	logger         *zap.Logger
}

func NewPlannerService(
	taskRepo *repository.TaskRepository,
	occurrenceRepo *repository.OccurrenceRepository,
	completionRepo *repository.CompletionRepository,
	horizonDays int,
	logger *zap.Logger,
) *PlannerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if horizonDays < 1 {
		horizonDays = 1
	}
	return &PlannerService{
		taskRepo:       taskRepo,
		occurrenceRepo: occurrenceRepo,
		completionRepo: completionRepo,
		horizonDays:    horizonDays,
		logger:         logger,
	}
}

// PlanningPass summarizes one PreparePlanningDay run.
type PlanningPass struct {
	Daily       int               `json:"daily_created"`
	Weekly      int               `json:"weekly_created"`
	Biweekly    int               `json:"biweekly_created"`
	RollForward RollForwardResult `json:"roll_forward"`
}

// PreparePlanningDay materializes the grid from today over the configured horizon
// and then rolls unfinished past occurrences forward.
func (s *PlannerService) PreparePlanningDay(ctx context.Context, now time.Time) (PlanningPass, error) {
	var pass PlanningPass
	started := time.Now()
	defer func() {
		metrics.PlanningPassDuration.Observe(time.Since(started).Seconds())
	}()

	through := calendar.AddDays(calendar.StartOfDay(now), s.horizonDays)

	var err error
	if pass.Daily, err = s.EnsureDailyOccurrences(ctx, now, &through); err != nil {
		return pass, fmt.Errorf("materialize daily: %w", err)
	}
	if pass.Weekly, err = s.EnsurePinnedWeeklyOccurrences(ctx, now, &through); err != nil {
		return pass, fmt.Errorf("materialize weekly: %w", err)
	}
	if pass.Biweekly, err = s.EnsurePinnedBiweeklyOccurrences(ctx, now, &through); err != nil {
		return pass, fmt.Errorf("materialize biweekly: %w", err)
	}
	if pass.RollForward, err = s.RollForwardUnfinishedToToday(ctx, now); err != nil {
		return pass, fmt.Errorf("roll forward: %w", err)
	}
	return pass, nil
}

// ScheduleInput describes a manual or suggestion-driven placement of a task.
type ScheduleInput struct {
	TaskID uint
	Date   time.Time
	// Slot defaults to the task's own cadence.
	Slot      model.Cadence
	Suggested bool
}

// ScheduleTask places a task on a day. Scheduling an already present (task, day)
// is a no-op; a hidden row for that day is made visible again.
func (s *PlannerService) ScheduleTask(ctx context.Context, in ScheduleInput) (*model.Occurrence, error) {
	task, err := s.taskRepo.FindByID(ctx, in.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	slot := in.Slot
	if slot == "" {
		slot = task.Cadence
	}
	if !slot.Valid() {
		return nil, fmt.Errorf("%w: slot %q", ErrUnknownCadence, slot)
	}
	if slot.Rank() > task.Cadence.Rank() {
		return nil, fmt.Errorf("%w: a %s task cannot fill a slower %s slot", ErrInvalidTask, task.Cadence.Label(), slot.Label())
	}

	day := calendar.StartOfDay(in.Date)
	inserted, err := s.occurrenceRepo.InsertOrSkip(ctx, []model.Occurrence{{
		TaskID:    task.ID,
		Date:      day,
		Slot:      slot,
		Suggested: in.Suggested,
	}})
	if err != nil {
		return nil, err
	}

	occ, err := s.occurrenceRepo.FindByTaskAndDate(ctx, task.ID, day)
	if err != nil {
		return nil, fmt.Errorf("load scheduled occurrence: %w", err)
	}
	if inserted == 0 && occ.Hidden {
		if err := s.occurrenceRepo.Reveal(ctx, occ.ID, slot, in.Suggested); err != nil {
			return nil, err
		}
		occ.Hidden, occ.Slot, occ.Suggested = false, slot, in.Suggested
	}
	metrics.AddMaterialized("manual", inserted)
	return occ, nil
}

// DeleteOccurrence removes an occurrence and any completion tied to it. Slots the
// materializer owns are hidden instead so they are not recreated for that day.
// It reports whether the row was hidden rather than deleted.
func (s *PlannerService) DeleteOccurrence(ctx context.Context, id uint) (bool, error) {
	occ, err := s.occurrenceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrOccurrenceNotFound
		}
		return false, err
	}

	if err := s.completionRepo.DeleteByOccurrence(ctx, occ.ID); err != nil {
		return false, err
	}

	if !occ.Suggested && occursOn(occ.Task, occ.Date) {
		if err := s.occurrenceRepo.Hide(ctx, []uint{occ.ID}); err != nil {
			return false, err
		}
		s.logger.Info("Occurrence hidden", zap.Uint("occurrence_id", occ.ID))
		return true, nil
	}

	if err := s.occurrenceRepo.Delete(ctx, occ.ID); err != nil {
		return false, err
	}
	s.logger.Info("Occurrence deleted", zap.Uint("occurrence_id", occ.ID))
	return false, nil
}

// CompleteOccurrence records that a member finished a scheduled occurrence.
func (s *PlannerService) CompleteOccurrence(ctx context.Context, userID, occurrenceID uint, at time.Time, notes string) (*model.Completion, error) {
	occ, err := s.occurrenceRepo.FindByID(ctx, occurrenceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOccurrenceNotFound
		}
		return nil, err
	}
	if occ.Hidden {
		return nil, ErrOccurrenceNotFound
	}

	done, err := s.completionRepo.CompletedOccurrenceIDs(ctx, []uint{occ.ID})
	if err != nil {
		return nil, err
	}
	if done[occ.ID] {
		return nil, ErrAlreadyCompleted
	}

	completion := model.Completion{
		TaskID:       occ.TaskID,
		OccurrenceID: &occ.ID,
		UserID:       userID,
		CompletedAt:  at.UTC(),
		Notes:        notes,
	}
	if err := s.completionRepo.Create(ctx, &completion); err != nil {
		// A concurrent tap recorded it between the check and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyCompleted
		}
		return nil, err
	}
	return &completion, nil
}

// AgendaItem is one visible occurrence with its completion state.
type AgendaItem struct {
	Occurrence model.Occurrence `json:"occurrence"`
	Completed  bool             `json:"completed"`
}

// Agenda lists the visible occurrences of now's civil day, fastest slot first.
func (s *PlannerService) Agenda(ctx context.Context, now time.Time) ([]AgendaItem, error) {
	rows, err := s.occurrenceRepo.ListVisibleBetween(ctx, calendar.StartOfDay(now), calendar.StartOfNextDay(now))
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	done, err := s.completionRepo.CompletedOccurrenceIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]AgendaItem, 0, len(rows))
	for _, rank := range model.Cadences {
		for _, row := range rows {
			if row.Slot == rank {
				items = append(items, AgendaItem{Occurrence: row, Completed: done[row.ID]})
			}
		}
	}
	return items, nil
}
