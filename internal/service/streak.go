package service

import (
	"time"

	"household-planner/internal/calendar"
	"household-planner/internal/model"
)

// ComputeStreakDays counts consecutive completed civil days ending at now's day.
// Absence days are transparent: they neither count nor break the streak.
func ComputeStreakDays(completions []time.Time, now time.Time, absenceDays map[string]struct{}) int {
	done := make(map[string]struct{}, len(completions))
	for _, at := range completions {
		done[calendar.DayKey(at)] = struct{}{}
	}

	streak := 0
	for day := calendar.StartOfDay(now); ; day = calendar.AddDays(day, -1) {
		key := calendar.DayKey(day)
		if _, away := absenceDays[key]; away {
			continue
		}
		if _, ok := done[key]; !ok {
			return streak
		}
		streak++
	}
}

// BuildAbsenceDayKeySet expands inclusive absence periods into day keys.
// Overlapping periods are tolerated.
func BuildAbsenceDayKeySet(periods []model.AbsencePeriod) map[string]struct{} {
	days := make(map[string]struct{})
	for _, p := range periods {
		end := calendar.StartOfDay(p.EndDate)
		for d := calendar.StartOfDay(p.StartDate); !d.After(end); d = calendar.AddDays(d, 1) {
			days[calendar.DayKey(d)] = struct{}{}
		}
	}
	return days
}
