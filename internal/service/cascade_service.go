package service

import (
	"go.uber.org/zap"

	"household-planner/internal/repository"
)

// PaceOptions holds the days-per-opportunity divisors used by the pace forecast.
type PaceOptions struct {
	BiweeklyDaysPerSlot   int
	BimonthlyDaysPerSlot  int
	SemiannualDaysPerSlot int
}

func DefaultPaceOptions() PaceOptions {
	return PaceOptions{
		BiweeklyDaysPerSlot:   7,
		BimonthlyDaysPerSlot:  30,
		SemiannualDaysPerSlot: 60,
	}
}

// CascadeService answers the read-only planning questions: which slower task
// should fill a slot, and which cadences are falling behind.
type CascadeService struct {
	taskRepo       *repository.TaskRepository
	occurrenceRepo *repository.OccurrenceRepository
	completionRepo *repository.CompletionRepository
	pace           PaceOptions
	logger         *zap.Logger
}

func NewCascadeService(
	taskRepo *repository.TaskRepository,
	occurrenceRepo *repository.OccurrenceRepository,
	completionRepo *repository.CompletionRepository,
	pace PaceOptions,
	logger *zap.Logger,
) *CascadeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CascadeService{
		taskRepo:       taskRepo,
		occurrenceRepo: occurrenceRepo,
		completionRepo: completionRepo,
		pace:           pace,
		logger:         logger,
	}
}
