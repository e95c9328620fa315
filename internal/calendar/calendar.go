// Package calendar holds the UTC civil-date arithmetic shared by the planner.
// Every "End" function returns an exclusive bound.
package calendar

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"

	"household-planner/internal/model"
)

const (
	Day = 24 * time.Hour

	dayKeyLayout = "2006-01-02"
)

var utcMonday = &now.Config{
	WeekStartDay: time.Monday,
	TimeLocation: time.UTC,
}

func at(t time.Time) *now.Now {
	return utcMonday.With(t.UTC())
}

func StartOfDay(t time.Time) time.Time {
	return at(t).BeginningOfDay()
}

func StartOfNextDay(t time.Time) time.Time {
	return AddDays(StartOfDay(t), 1)
}

// AddDays shifts a civil date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.UTC().AddDate(0, 0, n)
}

// WeekdayIndex returns the Monday-first weekday index (Monday=0..Sunday=6).
func WeekdayIndex(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}

func StartOfWeek(t time.Time) time.Time {
	return at(t).BeginningOfWeek()
}

func EndOfWeek(t time.Time) time.Time {
	return AddDays(StartOfWeek(t), 7)
}

// StartOfBiWeek pairs weeks by ISO week number: an even week is the second half
// of a pair, so its bi-week starts on the previous Monday.
func StartOfBiWeek(t time.Time) time.Time {
	start := StartOfWeek(t)
	if _, week := start.ISOWeek(); week%2 == 0 {
		return AddDays(start, -7)
	}
	return start
}

func EndOfBiWeek(t time.Time) time.Time {
	return AddDays(StartOfBiWeek(t), 14)
}

func StartOfMonth(t time.Time) time.Time {
	return at(t).BeginningOfMonth()
}

func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0)
}

// StartOfBiMonth pairs months as Jan-Feb, Mar-Apr, and so on.
func StartOfBiMonth(t time.Time) time.Time {
	month := StartOfMonth(t)
	offset := (int(month.Month()) - 1) % 2
	return month.AddDate(0, -offset, 0)
}

func EndOfBiMonth(t time.Time) time.Time {
	return StartOfBiMonth(t).AddDate(0, 2, 0)
}

func StartOfHalfYear(t time.Time) time.Time {
	return at(t).BeginningOfHalf()
}

func EndOfHalfYear(t time.Time) time.Time {
	return StartOfHalfYear(t).AddDate(0, 6, 0)
}

func StartOfYear(t time.Time) time.Time {
	return at(t).BeginningOfYear()
}

func EndOfYear(t time.Time) time.Time {
	return StartOfYear(t).AddDate(1, 0, 0)
}

// CycleRange returns the [start, end) calendar window of cadence c that contains t.
func CycleRange(c model.Cadence, t time.Time) (time.Time, time.Time, error) {
	switch c {
	case model.CadenceDaily:
		return StartOfDay(t), StartOfNextDay(t), nil
	case model.CadenceWeekly:
		return StartOfWeek(t), EndOfWeek(t), nil
	case model.CadenceBiweekly:
		return StartOfBiWeek(t), EndOfBiWeek(t), nil
	case model.CadenceMonthly:
		return StartOfMonth(t), EndOfMonth(t), nil
	case model.CadenceBimonthly:
		return StartOfBiMonth(t), EndOfBiMonth(t), nil
	case model.CadenceSemiannual:
		return StartOfHalfYear(t), EndOfHalfYear(t), nil
	case model.CadenceYearly:
		return StartOfYear(t), EndOfYear(t), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("no cycle for cadence %q", c)
	}
}

// DayKey formats the UTC civil day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayKeyLayout)
}

// DaysBetween counts whole civil days from the day of a to the day of b.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)) / Day)
}

// Days lists every civil day in [from, to).
func Days(from, to time.Time) []time.Time {
	var days []time.Time
	for d := StartOfDay(from); d.Before(to); d = AddDays(d, 1) {
		days = append(days, d)
	}
	return days
}
