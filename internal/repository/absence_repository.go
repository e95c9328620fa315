package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"household-planner/internal/model"
)

// AbsenceRepository stores members' declared absence periods.
type AbsenceRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAbsenceRepository(db *gorm.DB, logger *zap.Logger) *AbsenceRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbsenceRepository{db: db, logger: logger}
}

func (r *AbsenceRepository) Create(ctx context.Context, period *model.AbsencePeriod) error {
	if err := r.db.WithContext(ctx).Create(period).Error; err != nil {
		return fmt.Errorf("create absence: %w", err)
	}
	r.logger.Info("Absence declared",
		zap.Uint("user_id", period.UserID),
		zap.Time("start", period.StartDate),
		zap.Time("end", period.EndDate),
	)
	return nil
}

func (r *AbsenceRepository) ListByUser(ctx context.Context, userID uint) ([]model.AbsencePeriod, error) {
	var periods []model.AbsencePeriod
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("start_date ASC").
		Find(&periods).Error; err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}
	return periods, nil
}

// ListOverlapping returns the member's periods intersecting the inclusive range [from, to].
func (r *AbsenceRepository) ListOverlapping(ctx context.Context, userID uint, from, to time.Time) ([]model.AbsencePeriod, error) {
	var periods []model.AbsencePeriod
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_date <= ? AND end_date >= ?", userID, to, from).
		Order("start_date ASC").
		Find(&periods).Error; err != nil {
		return nil, fmt.Errorf("list overlapping absences: %w", err)
	}
	return periods, nil
}
