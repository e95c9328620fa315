package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidDateFormat is returned for inputs that are not a civil date or a
// zoned ISO datetime. Zone-less datetimes are rejected rather than guessed.
var ErrInvalidDateFormat = errors.New("invalid date format")

var (
	civilDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	zonelessPattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`)
)

// zonedLayouts are the ISO datetime forms accepted with an explicit offset or Z.
// Fractional seconds are accepted by the layouts that carry seconds.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
}

// ParseCivilDate converts user or API input into a UTC-midnight civil date.
func ParseCivilDate(input string) (time.Time, error) {
	t, err := ParseInstant(input)
	if err != nil {
		return time.Time{}, err
	}
	return StartOfDay(t), nil
}

// ParseInstant accepts the same inputs as ParseCivilDate but keeps the time of
// day of zoned datetimes. A bare date is its UTC midnight.
func ParseInstant(input string) (time.Time, error) {
	raw := strings.TrimSpace(input)
	switch {
	case raw == "":
		return time.Time{}, fmt.Errorf("%w: empty input", ErrInvalidDateFormat)
	case civilDatePattern.MatchString(raw):
		t, err := time.Parse(dayKeyLayout, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, input)
		}
		return t, nil
	case zonelessPattern.MatchString(raw):
		return time.Time{}, fmt.Errorf("%w: %q has no timezone offset", ErrInvalidDateFormat, input)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, input)
}

// CivilDate normalizes an instant to its UTC civil day.
func CivilDate(t time.Time) time.Time {
	return StartOfDay(t)
}

// ParseDayKey is the inverse of DayKey.
func ParseDayKey(key string) (time.Time, error) {
	if !civilDatePattern.MatchString(key) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, key)
	}
	return ParseCivilDate(key)
}
