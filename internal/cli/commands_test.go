package cli

import (
	"encoding/json"
	"testing"
	"time"

	"household-planner/internal/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustExecute(t *testing.T, cfg string, args ...string) string {
	t.Helper()
	out, err := execute(t, cfg, args...)
	require.NoError(t, err, out)
	return out
}

func TestHouseholdWorkflow(t *testing.T) {
	cfg := writeTestConfig(t)

	out := mustExecute(t, cfg, "user", "add", "--name", "Anna")
	assert.Contains(t, out, "Added member #1 Anna")

	out = mustExecute(t, cfg, "task", "add", "--title", "Dishes", "--cadence", "daily")
	assert.Contains(t, out, "Created task #1 Dishes [daily]")
	out = mustExecute(t, cfg, "task", "add", "--title", "Oven", "--cadence", "monthly", "--assignee", "1")
	assert.Contains(t, out, "Oven [monthly] -> Anna")
	mustExecute(t, cfg, "task", "add", "--title", "Vacuum", "--cadence", "weekly", "--weekday", "sat")

	out = mustExecute(t, cfg, "--format", "json", "plan", "--date", "2026-02-07")
	var planResp struct {
		Status string `json:"status"`
		Data   struct {
			Daily  int `json:"daily_created"`
			Weekly int `json:"weekly_created"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &planResp))
	assert.Equal(t, "ok", planResp.Status)
	assert.Equal(t, 7, planResp.Data.Daily, "default horizon is a week")
	assert.Equal(t, 1, planResp.Data.Weekly)

	out = mustExecute(t, cfg, "suggest", "biweekly", "--date", "2026-02-07", "--user", "1", "--schedule")
	assert.Contains(t, out, "Suggested #2 Oven (monthly, last done never)")
	assert.Contains(t, out, "on 2026-02-07")

	out = mustExecute(t, cfg, "occurrence", "list", "--date", "2026-02-07")
	assert.Contains(t, out, "Dishes")
	assert.Contains(t, out, "Vacuum")
	assert.Contains(t, out, "Oven (suggested)")

	out = mustExecute(t, cfg, "occurrence", "complete", "1", "--user", "1", "--at", "2026-02-07T18:00:00Z")
	assert.Contains(t, out, "Completed occurrence #1")

	_, err := execute(t, cfg, "occurrence", "complete", "1", "--user", "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out = mustExecute(t, cfg, "streak", "--user", "1", "--date", "2026-02-07")
	assert.Contains(t, out, "Member #1: 1 day streak")

	out = mustExecute(t, cfg, "absence", "add", "--user", "1", "--from", "2026-02-10", "--to", "2026-02-12", "--reason", "trip")
	assert.Contains(t, out, "2026-02-10..2026-02-12")

	_, err = execute(t, cfg, "absence", "add", "--user", "1", "--from", "2026-02-12")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out = mustExecute(t, cfg, "absence", "list", "--user", "1")
	assert.Contains(t, out, "trip")

	out = mustExecute(t, cfg, "occurrence", "delete", "1")
	assert.Contains(t, out, "Hid occurrence #1")

	out = mustExecute(t, cfg, "task", "list")
	assert.Contains(t, out, "Vacuum [weekly] on sat")
}

func TestPaceAndWarningsCommands(t *testing.T) {
	cfg := writeTestConfig(t)
	for _, title := range []string{"Chimney", "Boiler", "Alarms"} {
		mustExecute(t, cfg, "task", "add", "--title", title, "--cadence", "yearly")
	}

	out := mustExecute(t, cfg, "pace", "--date", "2026-12-10")
	assert.Contains(t, out, "yearly")
	assert.Contains(t, out, "3 of 3 tasks left, 1 slots left")

	out = mustExecute(t, cfg, "pace", "--date", "2026-01-10")
	assert.Contains(t, out, "On pace")

	out = mustExecute(t, cfg, "warnings", "--date", "2026-12-28")
	assert.Contains(t, out, "unscheduled: Chimney, Boiler, Alarms")

	out = mustExecute(t, cfg, "warnings", "--date", "2026-12-28", "--threshold", "0")
	assert.Contains(t, out, "No warnings")
}

func TestCommandInputErrors(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := execute(t, cfg, "plan", "--date", "2026-02-07T10:00:00")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, cfg, "task", "add", "--title", "Oven", "--cadence", "monthly", "--weekday", "mon")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = execute(t, cfg, "suggest", "hourly")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, cfg, "occurrence", "schedule", "--task", "99")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = execute(t, cfg, "streak")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestParseWeekday(t *testing.T) {
	tests := map[string]int{"0": 0, "6": 6, "mon": 0, "Sunday": 6, "thu": 3}
	for raw, want := range tests {
		got, err := parseWeekday(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, bad := range []string{"7", "-1", "mo", "noon"} {
		_, err := parseWeekday(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolveInstant(t *testing.T) {
	got, err := resolveInstant("2026-02-07T14:30+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 7, 12, 30, 0, 0, time.UTC), got)

	got, err = resolveInstant("2026-02-07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC), got)

	_, err = resolveInstant("2026-02-07T14:30")
	assert.ErrorIs(t, err, calendar.ErrInvalidDateFormat)
}
