package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-planner/internal/model"
)

func TestScheduleTask_DefaultsSlotAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	oven := env.task(t, "Oven", model.CadenceMonthly)

	first, err := env.planner.ScheduleTask(ctx, ScheduleInput{TaskID: oven.ID, Date: time.Date(2026, 2, 10, 17, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, model.CadenceMonthly, first.Slot)
	assert.Equal(t, date(2026, 2, 10), first.Date.UTC())

	second, err := env.planner.ScheduleTask(ctx, ScheduleInput{TaskID: oven.ID, Date: date(2026, 2, 10)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, env.allOccurrences(t), 1)
}

func TestScheduleTask_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	vacuum := env.task(t, "Vacuum", model.CadenceWeekly)

	_, err := env.planner.ScheduleTask(ctx, ScheduleInput{TaskID: 999, Date: date(2026, 2, 10)})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = env.planner.ScheduleTask(ctx, ScheduleInput{TaskID: vacuum.ID, Date: date(2026, 2, 10), Slot: "HOURLY"})
	assert.ErrorIs(t, err, ErrUnknownCadence)

	_, err = env.planner.ScheduleTask(ctx, ScheduleInput{TaskID: vacuum.ID, Date: date(2026, 2, 10), Slot: model.CadenceMonthly})
	assert.ErrorIs(t, err, ErrInvalidTask, "a weekly task cannot fill a monthly slot")

	occ, err := env.planner.ScheduleTask(ctx, ScheduleInput{TaskID: vacuum.ID, Date: date(2026, 2, 10), Slot: model.CadenceDaily, Suggested: true})
	require.NoError(t, err)
	assert.Equal(t, model.CadenceDaily, occ.Slot)
	assert.True(t, occ.Suggested)
}

func TestDeleteOccurrence_HidesMaterializedSlotAndRevealsOnSchedule(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	dishes := env.task(t, "Dishes", model.CadenceDaily)
	anna := env.user(t, "Anna")
	now := date(2026, 2, 7)

	_, err := env.planner.EnsureDailyOccurrences(ctx, now, nil)
	require.NoError(t, err)
	rows := env.allOccurrences(t)
	require.Len(t, rows, 1)

	_, err = env.planner.CompleteOccurrence(ctx, anna.ID, rows[0].ID, now, "")
	require.NoError(t, err)

	hidden, err := env.planner.DeleteOccurrence(ctx, rows[0].ID)
	require.NoError(t, err)
	assert.True(t, hidden)

	created, err := env.planner.EnsureDailyOccurrences(ctx, now, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, created, "hidden slot stays hidden")

	done, err := env.completions.CompletedOccurrenceIDs(ctx, []uint{rows[0].ID})
	require.NoError(t, err)
	assert.False(t, done[rows[0].ID], "completion goes with the occurrence")

	agenda, err := env.planner.Agenda(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, agenda)

	occ := env.schedule(t, dishes.ID, now, "")
	assert.Equal(t, rows[0].ID, occ.ID)
	assert.False(t, occ.Hidden)

	agenda, err = env.planner.Agenda(ctx, now)
	require.NoError(t, err)
	require.Len(t, agenda, 1)
	assert.False(t, agenda[0].Completed)
}

func TestDeleteOccurrence_RemovesSuggestedRow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	oven := env.task(t, "Oven", model.CadenceMonthly)
	anna := env.user(t, "Anna")

	occ, err := env.planner.ScheduleTask(ctx, ScheduleInput{TaskID: oven.ID, Date: date(2026, 2, 10), Slot: model.CadenceWeekly, Suggested: true})
	require.NoError(t, err)
	_, err = env.planner.CompleteOccurrence(ctx, anna.ID, occ.ID, date(2026, 2, 10), "shiny")
	require.NoError(t, err)

	hidden, err := env.planner.DeleteOccurrence(ctx, occ.ID)
	require.NoError(t, err)
	assert.False(t, hidden)
	assert.Empty(t, env.allOccurrences(t))

	var completions int64
	require.NoError(t, env.db.Model(&model.Completion{}).Count(&completions).Error)
	assert.Zero(t, completions)

	_, err = env.planner.DeleteOccurrence(ctx, occ.ID)
	assert.ErrorIs(t, err, ErrOccurrenceNotFound)
}

func TestCompleteOccurrence(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	oven := env.task(t, "Oven", model.CadenceMonthly)
	anna := env.user(t, "Anna")
	occ := env.schedule(t, oven.ID, date(2026, 2, 10), "")

	completion, err := env.planner.CompleteOccurrence(ctx, anna.ID, occ.ID, time.Date(2026, 2, 10, 19, 0, 0, 0, time.UTC), "done")
	require.NoError(t, err)
	assert.Equal(t, oven.ID, completion.TaskID)
	require.NotNil(t, completion.OccurrenceID)
	assert.Equal(t, occ.ID, *completion.OccurrenceID)

	_, err = env.planner.CompleteOccurrence(ctx, anna.ID, occ.ID, date(2026, 2, 10), "")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	_, err = env.planner.CompleteOccurrence(ctx, anna.ID, 999, date(2026, 2, 10), "")
	assert.ErrorIs(t, err, ErrOccurrenceNotFound)
}

func TestAgenda_OrderedBySlot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	monday := date(2026, 2, 9)
	yearly := env.task(t, "Chimney", model.CadenceYearly)
	oven := env.task(t, "Oven", model.CadenceMonthly)
	env.pinned(t, "Vacuum", model.CadenceWeekly, 0, nil)
	env.task(t, "Dishes", model.CadenceDaily)

	env.schedule(t, yearly.ID, monday, "")
	env.schedule(t, oven.ID, monday, model.CadenceWeekly)
	_, err := env.planner.PreparePlanningDay(ctx, monday)
	require.NoError(t, err)

	agenda, err := env.planner.Agenda(ctx, time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var slots []model.Cadence
	var titles []string
	for _, item := range agenda {
		slots = append(slots, item.Occurrence.Slot)
		titles = append(titles, item.Occurrence.Task.Title)
	}
	assert.Equal(t, []model.Cadence{model.CadenceDaily, model.CadenceWeekly, model.CadenceWeekly, model.CadenceYearly}, slots)
	assert.Equal(t, "Dishes", titles[0])
	assert.Equal(t, "Chimney", titles[3])
	assert.ElementsMatch(t, []string{"Oven", "Vacuum"}, titles[1:3])
}
