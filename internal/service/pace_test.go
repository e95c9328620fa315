package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-planner/internal/model"
)

func TestRemainingSlots(t *testing.T) {
	opts := DefaultPaceOptions()
	tests := []struct {
		name    string
		cadence model.Cadence
		now     time.Time
		want    int
	}{
		{"weekly on monday", model.CadenceWeekly, date(2026, 2, 9), 7},
		{"weekly on sunday", model.CadenceWeekly, time.Date(2026, 2, 8, 22, 0, 0, 0, time.UTC), 1},
		{"biweekly last two days", model.CadenceBiweekly, date(2026, 2, 7), 1},
		{"biweekly first day", model.CadenceBiweekly, date(2026, 2, 9), 2},
		{"monthly counts touching weeks", model.CadenceMonthly, date(2026, 2, 1), 5},
		{"monthly last week", model.CadenceMonthly, date(2026, 2, 27), 1},
		{"bimonthly", model.CadenceBimonthly, date(2026, 2, 7), 1},
		{"semiannual", model.CadenceSemiannual, date(2026, 2, 7), 3},
		{"yearly january", model.CadenceYearly, date(2026, 1, 15), 12},
		{"yearly december", model.CadenceYearly, date(2026, 12, 10), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemainingSlots(tt.cadence, tt.now, opts))
		})
	}
}

func TestRemainingSlots_ConfigurableDivisors(t *testing.T) {
	opts := PaceOptions{BiweeklyDaysPerSlot: 1, BimonthlyDaysPerSlot: 7, SemiannualDaysPerSlot: 0}
	assert.Equal(t, 2, RemainingSlots(model.CadenceBiweekly, date(2026, 2, 7), opts))
	assert.Equal(t, 4, RemainingSlots(model.CadenceBimonthly, date(2026, 2, 7), opts))
	assert.Equal(t, 144, RemainingSlots(model.CadenceSemiannual, date(2026, 2, 7), opts), "non-positive divisor counts days")
}

func TestCheckCascadePace_YearlyInDecember(t *testing.T) {
	env := newTestEnv(t)
	env.task(t, "Chimney", model.CadenceYearly)
	env.task(t, "Boiler service", model.CadenceYearly)
	env.task(t, "Smoke alarms", model.CadenceYearly)

	warnings, err := env.cascade.CheckCascadePace(context.Background(), date(2026, 12, 10))
	require.NoError(t, err)
	require.Len(t, warnings, 1)

	w := warnings[0]
	assert.Equal(t, model.CadenceYearly, w.Cadence)
	assert.Equal(t, 3, w.TotalTasks)
	assert.Equal(t, 0, w.ScheduledTasks)
	assert.Equal(t, 3, w.RemainingTasks)
	assert.Equal(t, 1, w.RemainingSlots)
	assert.Equal(t, date(2026, 1, 1), w.CycleStart)
	assert.Equal(t, date(2027, 1, 1), w.CycleEnd)
}

func TestCheckCascadePace_ScheduledTasksRelievePressure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.task(t, "Chimney", model.CadenceYearly)
	b := env.task(t, "Boiler service", model.CadenceYearly)
	env.task(t, "Smoke alarms", model.CadenceYearly)

	env.schedule(t, a.ID, date(2026, 3, 1), model.CadenceSemiannual)
	env.schedule(t, b.ID, date(2026, 12, 12), model.CadenceSemiannual)

	warnings, err := env.cascade.CheckCascadePace(ctx, date(2026, 12, 10))
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestCheckCascadePace_NoTasks(t *testing.T) {
	env := newTestEnv(t)
	warnings, err := env.cascade.CheckCascadePace(context.Background(), date(2026, 12, 31))
	require.NoError(t, err)
	assert.Empty(t, warnings)
}
