package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-planner/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStartOfDay_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2026, 2, 8, 1, 30, 0, 0, loc) // 2026-02-07 22:30 UTC

	assert.Equal(t, date(2026, 2, 7), StartOfDay(in))
	assert.Equal(t, date(2026, 2, 8), StartOfNextDay(in))
}

func TestWeekdayIndex_MondayFirst(t *testing.T) {
	assert.Equal(t, 0, WeekdayIndex(date(2026, 2, 9))) // Monday
	assert.Equal(t, 5, WeekdayIndex(date(2026, 2, 7))) // Saturday
	assert.Equal(t, 6, WeekdayIndex(date(2026, 2, 8))) // Sunday
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday", time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC), date(2026, 2, 9)},
		{"saturday", time.Date(2026, 2, 7, 14, 30, 0, 0, time.UTC), date(2026, 2, 2)},
		{"sunday", time.Date(2026, 2, 8, 23, 59, 0, 0, time.UTC), date(2026, 2, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StartOfWeek(tt.in))
			assert.Equal(t, tt.want.AddDate(0, 0, 7), EndOfWeek(tt.in))
		})
	}
}

func TestStartOfBiWeek_PairsByISOWeek(t *testing.T) {
	// 2026-02-02 is ISO week 6 (even), so its pair started on week 5.
	assert.Equal(t, date(2026, 1, 26), StartOfBiWeek(date(2026, 2, 7)))
	assert.Equal(t, date(2026, 2, 9), EndOfBiWeek(date(2026, 2, 7)))

	// 2026-02-09 is ISO week 7 (odd) and opens a new pair.
	assert.Equal(t, date(2026, 2, 9), StartOfBiWeek(date(2026, 2, 12)))
	assert.Equal(t, date(2026, 2, 23), EndOfBiWeek(date(2026, 2, 12)))
}

func TestMonthBoundaries(t *testing.T) {
	in := time.Date(2026, 3, 17, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, date(2026, 3, 1), StartOfMonth(in))
	assert.Equal(t, date(2026, 4, 1), EndOfMonth(in))
	assert.Equal(t, date(2026, 3, 1), StartOfBiMonth(in))
	assert.Equal(t, date(2026, 5, 1), EndOfBiMonth(in))
	assert.Equal(t, date(2026, 1, 1), StartOfHalfYear(in))
	assert.Equal(t, date(2026, 7, 1), EndOfHalfYear(in))
	assert.Equal(t, date(2026, 1, 1), StartOfYear(in))
	assert.Equal(t, date(2027, 1, 1), EndOfYear(in))
}

func TestStartOfBiMonth_SecondMonthOfPair(t *testing.T) {
	assert.Equal(t, date(2026, 11, 1), StartOfBiMonth(date(2026, 12, 31)))
	assert.Equal(t, date(2027, 1, 1), EndOfBiMonth(date(2026, 12, 31)))
	assert.Equal(t, date(2026, 7, 1), StartOfHalfYear(date(2026, 12, 31)))
}

func TestCycleRange_ContainsNowAndHasNominalLength(t *testing.T) {
	instants := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 7, 14, 30, 0, 0, time.UTC),
		time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC),
		time.Date(2026, 12, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2028, 2, 29, 12, 0, 0, 0, time.UTC),
	}
	nominal := map[model.Cadence]func(start, end time.Time) bool{
		model.CadenceDaily:      func(s, e time.Time) bool { return e.Sub(s) == Day },
		model.CadenceWeekly:     func(s, e time.Time) bool { return e.Sub(s) == 7*Day },
		model.CadenceBiweekly:   func(s, e time.Time) bool { return e.Sub(s) == 14*Day },
		model.CadenceMonthly:    func(s, e time.Time) bool { return s.AddDate(0, 1, 0).Equal(e) },
		model.CadenceBimonthly:  func(s, e time.Time) bool { return s.AddDate(0, 2, 0).Equal(e) },
		model.CadenceSemiannual: func(s, e time.Time) bool { return s.AddDate(0, 6, 0).Equal(e) },
		model.CadenceYearly:     func(s, e time.Time) bool { return s.AddDate(1, 0, 0).Equal(e) },
	}

	for _, c := range model.Cadences {
		for _, in := range instants {
			start, end, err := CycleRange(c, in)
			require.NoError(t, err)
			assert.False(t, in.Before(start), "%s: start %s after %s", c, start, in)
			assert.True(t, in.Before(end), "%s: end %s not after %s", c, end, in)
			assert.True(t, nominal[c](start, end), "%s: unexpected span %s..%s", c, start, end)
		}
	}
}

func TestCycleRange_UnknownCadence(t *testing.T) {
	_, _, err := CycleRange(model.Cadence("HOURLY"), time.Now())
	assert.Error(t, err)
}

func TestDayKey(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	assert.Equal(t, "2026-02-08", DayKey(time.Date(2026, 2, 7, 20, 0, 0, 0, loc)))
	assert.Equal(t, "2026-02-07", DayKey(date(2026, 2, 7)))
}

func TestDaysAndDaysBetween(t *testing.T) {
	days := Days(time.Date(2026, 2, 7, 14, 0, 0, 0, time.UTC), date(2026, 2, 10))
	require.Len(t, days, 3)
	assert.Equal(t, date(2026, 2, 7), days[0])
	assert.Equal(t, date(2026, 2, 9), days[2])

	assert.Equal(t, 14, DaysBetween(date(2026, 2, 8), date(2026, 2, 22)))
	assert.Equal(t, -1, DaysBetween(date(2026, 2, 8), date(2026, 2, 7)))
}
