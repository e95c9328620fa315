package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-planner/internal/model"
)

func TestValidateTaskInput(t *testing.T) {
	monday := date(2026, 2, 9)
	tuesday := date(2026, 2, 10)
	tests := []struct {
		name    string
		input   TaskInput
		wantErr error
	}{
		{"plain daily", TaskInput{Title: "Dishes", Cadence: model.CadenceDaily}, nil},
		{"blank title", TaskInput{Title: "   ", Cadence: model.CadenceDaily}, ErrInvalidTask},
		{"unknown cadence", TaskInput{Title: "Dishes", Cadence: "HOURLY"}, ErrUnknownCadence},
		{"pinned weekly", TaskInput{Title: "Vacuum", Cadence: model.CadenceWeekly, PinnedWeekday: ptr(0)}, nil},
		{"pinned monthly", TaskInput{Title: "Oven", Cadence: model.CadenceMonthly, PinnedWeekday: ptr(0)}, ErrInvalidTask},
		{"weekday out of range", TaskInput{Title: "Vacuum", Cadence: model.CadenceWeekly, PinnedWeekday: ptr(7)}, ErrInvalidTask},
		{"anchor on weekly", TaskInput{Title: "Vacuum", Cadence: model.CadenceWeekly, AnchorDate: &monday}, ErrInvalidTask},
		{"pinned biweekly without anchor", TaskInput{Title: "Sheets", Cadence: model.CadenceBiweekly, PinnedWeekday: ptr(0)}, ErrInvalidTask},
		{"anchor on other weekday", TaskInput{Title: "Sheets", Cadence: model.CadenceBiweekly, PinnedWeekday: ptr(0), AnchorDate: &tuesday}, ErrInvalidTask},
		{"pinned biweekly", TaskInput{Title: "Sheets", Cadence: model.CadenceBiweekly, PinnedWeekday: ptr(0), AnchorDate: &monday}, nil},
		{"unpinned biweekly", TaskInput{Title: "Sheets", Cadence: model.CadenceBiweekly}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			err := validateTaskInput(&input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateTask_WithAssignees(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	anna := env.user(t, "Anna")
	ivan := env.user(t, "Ivan")

	task, err := env.taskSvc.CreateTask(ctx, TaskInput{
		Title:       "  Windows ",
		Cadence:     model.CadenceMonthly,
		AssigneeIDs: []uint{anna.ID, ivan.ID, anna.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Windows", task.Title)

	loaded, err := env.taskSvc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Assignees, 2)
	assert.True(t, loaded.AssignedTo(ivan.ID))

	_, err = env.taskSvc.CreateTask(ctx, TaskInput{Title: "Ghost", Cadence: model.CadenceDaily, AssigneeIDs: []uint{999}})
	assert.ErrorIs(t, err, ErrInvalidTask)
}

func TestCompleteAndDeleteTask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	anna := env.user(t, "Anna")
	oven := env.task(t, "Oven", model.CadenceMonthly)
	env.schedule(t, oven.ID, date(2026, 2, 10), "")

	_, err := env.taskSvc.CompleteTask(ctx, anna.ID, 999, date(2026, 2, 10), "")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	completion, err := env.taskSvc.CompleteTask(ctx, anna.ID, oven.ID, date(2026, 2, 10), "")
	require.NoError(t, err)
	assert.Nil(t, completion.OccurrenceID)

	require.NoError(t, env.taskSvc.DeleteTask(ctx, oven.ID))
	assert.Empty(t, env.allOccurrences(t))
	_, err = env.taskSvc.GetTask(ctx, oven.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, env.taskSvc.DeleteTask(ctx, oven.ID), ErrTaskNotFound)

	tasks, err := env.taskSvc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
