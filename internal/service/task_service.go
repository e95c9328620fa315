package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"household-planner/internal/calendar"
	"household-planner/internal/model"
	"household-planner/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title         string
	Description   string
	Cadence       model.Cadence
	PinnedWeekday *int
	AnchorDate    *time.Time
	AssigneeIDs   []uint
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo       *repository.TaskRepository
	userRepo       *repository.UserRepository
	completionRepo *repository.CompletionRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, userRepo *repository.UserRepository, completionRepo *repository.CompletionRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, userRepo: userRepo, completionRepo: completionRepo}
}

func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	if err := validateTaskInput(&input); err != nil {
		return nil, err
	}

	assignees, err := s.userRepo.FindByIDs(ctx, input.AssigneeIDs)
	if err != nil {
		return nil, err
	}
	if len(assignees) != len(uniqueIDs(input.AssigneeIDs)) {
		return nil, fmt.Errorf("%w: unknown assignee", ErrInvalidTask)
	}

	task := model.Task{
		Title:         input.Title,
		Description:   input.Description,
		Cadence:       input.Cadence,
		PinnedWeekday: input.PinnedWeekday,
		AnchorDate:    input.AnchorDate,
		Assignees:     assignees,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func validateTaskInput(input *TaskInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if !input.Cadence.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCadence, input.Cadence)
	}

	if input.PinnedWeekday != nil {
		if !input.Cadence.SupportsPinnedWeekday() {
			return fmt.Errorf("%w: only weekly and biweekly tasks can be pinned to a weekday", ErrInvalidTask)
		}
		if wd := *input.PinnedWeekday; wd < 0 || wd > 6 {
			return fmt.Errorf("%w: weekday must be 0 (Monday) to 6 (Sunday), got %d", ErrInvalidTask, wd)
		}
	}

	if input.AnchorDate != nil {
		if input.Cadence != model.CadenceBiweekly {
			return fmt.Errorf("%w: only biweekly tasks take an anchor date", ErrInvalidTask)
		}
		anchor := calendar.StartOfDay(*input.AnchorDate)
		input.AnchorDate = &anchor
	}

	if input.Cadence == model.CadenceBiweekly && input.PinnedWeekday != nil {
		if input.AnchorDate == nil {
			return fmt.Errorf("%w: a pinned biweekly task needs an anchor date", ErrInvalidTask)
		}
		if calendar.WeekdayIndex(*input.AnchorDate) != *input.PinnedWeekday {
			return fmt.Errorf("%w: anchor %s does not fall on the pinned weekday", ErrInvalidTask, calendar.DayKey(*input.AnchorDate))
		}
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.taskRepo.List(ctx)
}

func (s *TaskService) GetTask(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	return task, err
}

// CompleteTask records an ad-hoc completion that is not tied to a scheduled occurrence.
func (s *TaskService) CompleteTask(ctx context.Context, userID, taskID uint, completedAt time.Time, notes string) (*model.Completion, error) {
	if _, err := s.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	completion := model.Completion{
		TaskID:      taskID,
		UserID:      userID,
		CompletedAt: completedAt.UTC(),
		Notes:       notes,
	}
	if err := s.completionRepo.Create(ctx, &completion); err != nil {
		return nil, err
	}
	return &completion, nil
}

// DeleteTask removes a task with its whole history.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint) error {
	err := s.taskRepo.Delete(ctx, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTaskNotFound
	}
	return err
}
