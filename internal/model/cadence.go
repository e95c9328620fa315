package model

import (
	"fmt"
	"strings"
)

// Cadence is the recurrence class of a task.
type Cadence string

const (
	CadenceDaily      Cadence = "DAILY"
	CadenceWeekly     Cadence = "WEEKLY"
	CadenceBiweekly   Cadence = "BIWEEKLY"
	CadenceMonthly    Cadence = "MONTHLY"
	CadenceBimonthly  Cadence = "BIMONTHLY"
	CadenceSemiannual Cadence = "SEMIANNUAL"
	CadenceYearly     Cadence = "YEARLY"
)

// Cadences lists every cadence from fastest to slowest.
var Cadences = []Cadence{
	CadenceDaily,
	CadenceWeekly,
	CadenceBiweekly,
	CadenceMonthly,
	CadenceBimonthly,
	CadenceSemiannual,
	CadenceYearly,
}

// Rank returns the position of c in the fast-to-slow chain, or -1 for an unknown cadence.
func (c Cadence) Rank() int {
	for i, candidate := range Cadences {
		if candidate == c {
			return i
		}
	}
	return -1
}

func (c Cadence) Valid() bool {
	return c.Rank() >= 0
}

// SupportsPinnedWeekday reports whether tasks of this cadence may be pinned to a weekday.
func (c Cadence) SupportsPinnedWeekday() bool {
	return c == CadenceWeekly || c == CadenceBiweekly
}

// SourceCadence returns the next slower cadence, which supplies tasks for a vacant slot of c.
// YEARLY is terminal.
func SourceCadence(c Cadence) (Cadence, bool) {
	rank := c.Rank()
	if rank < 0 || rank+1 >= len(Cadences) {
		return "", false
	}
	return Cadences[rank+1], true
}

// ParseCadence accepts a cadence name in any letter case.
func ParseCadence(raw string) (Cadence, error) {
	c := Cadence(strings.ToUpper(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown cadence %q", raw)
	}
	return c, nil
}

func (c Cadence) Label() string {
	return strings.ToLower(string(c))
}
