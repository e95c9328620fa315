package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"household-planner/internal/calendar"
	"household-planner/internal/model"
	"household-planner/internal/repository"
)

// AbsenceInput declares an inclusive absence range for a member.
type AbsenceInput struct {
	UserID uint
	Start  time.Time
	End    time.Time
	Reason string
}

// StreakSummary is a member's current streak as of a day.
type StreakSummary struct {
	UserID    uint `json:"user_id"`
	Days      int  `json:"days"`
	OnAbsence bool `json:"on_absence"`
}

// AbsenceService manages absence periods and the streaks they protect.
type AbsenceService struct {
	absenceRepo    *repository.AbsenceRepository
	completionRepo *repository.CompletionRepository
	logger         *zap.Logger
}

func NewAbsenceService(absenceRepo *repository.AbsenceRepository, completionRepo *repository.CompletionRepository, logger *zap.Logger) *AbsenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbsenceService{absenceRepo: absenceRepo, completionRepo: completionRepo, logger: logger}
}

// CreateAbsence stores a new period unless it overlaps one the member already declared.
func (s *AbsenceService) CreateAbsence(ctx context.Context, in AbsenceInput) (*model.AbsencePeriod, error) {
	start := calendar.StartOfDay(in.Start)
	end := calendar.StartOfDay(in.End)
	if end.Before(start) {
		return nil, ErrInvalidAbsenceRange
	}

	overlapping, err := s.absenceRepo.ListOverlapping(ctx, in.UserID, start, end)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, fmt.Errorf("%w: %s..%s", ErrAbsenceOverlap,
			calendar.DayKey(overlapping[0].StartDate), calendar.DayKey(overlapping[0].EndDate))
	}

	period := model.AbsencePeriod{
		UserID:    in.UserID,
		StartDate: start,
		EndDate:   end,
		Reason:    in.Reason,
	}
	if err := s.absenceRepo.Create(ctx, &period); err != nil {
		return nil, err
	}
	return &period, nil
}

func (s *AbsenceService) ListAbsences(ctx context.Context, userID uint) ([]model.AbsencePeriod, error) {
	return s.absenceRepo.ListByUser(ctx, userID)
}

// IsUserOnAbsence reports whether now's civil day falls inside one of the member's periods.
func (s *AbsenceService) IsUserOnAbsence(ctx context.Context, userID uint, now time.Time) (bool, error) {
	today := calendar.StartOfDay(now)
	periods, err := s.absenceRepo.ListOverlapping(ctx, userID, today, today)
	if err != nil {
		return false, err
	}
	return len(periods) > 0, nil
}

// UserStreak computes a member's streak from their completions and absences.
func (s *AbsenceService) UserStreak(ctx context.Context, userID uint, now time.Time) (StreakSummary, error) {
	summary := StreakSummary{UserID: userID}

	completions, err := s.completionRepo.CompletionTimesByUser(ctx, userID)
	if err != nil {
		return summary, err
	}
	periods, err := s.absenceRepo.ListByUser(ctx, userID)
	if err != nil {
		return summary, err
	}

	absenceDays := BuildAbsenceDayKeySet(periods)
	summary.Days = ComputeStreakDays(completions, now, absenceDays)
	_, summary.OnAbsence = absenceDays[calendar.DayKey(now)]
	return summary, nil
}
