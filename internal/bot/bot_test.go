package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-planner/internal/model"
	"household-planner/internal/service"
)

func TestParseID(t *testing.T) {
	id, err := parseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestPlanCallbackRoundTrip(t *testing.T) {
	data := planCallback(17, model.CadenceWeekly)
	assert.Equal(t, "plan:17:WEEKLY", data)
	assert.LessOrEqual(t, len(data), 64, "telegram callback data limit")

	id, slot, err := parsePlanCallback(data)
	require.NoError(t, err)
	assert.Equal(t, uint(17), id)
	assert.Equal(t, model.CadenceWeekly, slot)

	_, _, err = parsePlanCallback("plan:17")
	assert.Error(t, err)
	_, _, err = parsePlanCallback("plan:17:HOURLY")
	assert.Error(t, err)
}

func TestParseAwayArgs(t *testing.T) {
	from, to, err := parseAwayArgs("2026-07-01 2026-07-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC), to)

	from, to, err = parseAwayArgs("2026-07-01")
	require.NoError(t, err)
	assert.Equal(t, from, to)

	for _, bad := range []string{"", "2026-07-01T10:00:00", "tomorrow", "2026-07-01 2026-07-02 2026-07-03"} {
		_, _, err := parseAwayArgs(bad)
		assert.Error(t, err, bad)
	}
}

func TestPluralDays(t *testing.T) {
	cases := map[int]string{0: "дней", 1: "день", 2: "дня", 5: "дней", 11: "дней", 12: "дней", 21: "день", 22: "дня", 111: "дней"}
	for n, want := range cases {
		assert.Equal(t, want, pluralDays(n), n)
	}
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Мыть окна", shortTitle("  мыть\nокна ", 20))
	assert.Equal(t, "Пропылес…", shortTitle("пропылесосить ковры", 9))
}

func TestFormatSuggestion(t *testing.T) {
	last := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	text := formatSuggestion(model.CadenceWeekly, &service.Suggestion{
		Task:            model.Task{Title: "oven <deep>"},
		SourceCadence:   model.CadenceBiweekly,
		LastCompletedAt: &last,
	})
	assert.Contains(t, text, "Oven &lt;deep&gt;")
	assert.Contains(t, text, "15.01.2026")

	text = formatSuggestion(model.CadenceWeekly, &service.Suggestion{Task: model.Task{Title: "Fridge"}, SourceCadence: model.CadenceBiweekly})
	assert.Contains(t, text, "ни разу")
}

func TestFormatPace(t *testing.T) {
	assert.Contains(t, formatPace(nil), "Темп нормальный")

	text := formatPace([]service.PaceWarning{{Cadence: model.CadenceYearly, TotalTasks: 3, RemainingTasks: 3, RemainingSlots: 1}})
	assert.Contains(t, text, "ежегодно: задач 3 из 3, возможностей 1")
}
