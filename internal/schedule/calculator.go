// Package schedule computes concrete dose times from a reminder's frequency
// rule. All functions are pure so schedules can be recomputed on every
// reminder mutation.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"medminder/internal/models"
)

// TimeOfDay is a wall-clock hour and minute with 24-hour semantics.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String formats the time as "15:04".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// AddHours returns the time shifted by n hours, wrapping modulo 24.
func (t TimeOfDay) AddHours(n int) TimeOfDay {
	h := (t.Hour + n) % 24
	if h < 0 {
		h += 24
	}
	return TimeOfDay{Hour: h, Minute: t.Minute}
}

// ParseError reports a first-dose time that is outside the accepted formats.
// Callers must treat the reminder's schedule as empty rather than guess.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable time of day: %q", e.Input)
}

// twelveHourTable is the fixed top-of-hour mapping from 12-hour display
// strings to 24-hour values. Inputs outside this set are rejected; there is
// deliberately no general 12-hour parser.
var twelveHourTable = map[string]int{
	"12:00 AM": 0, "1:00 AM": 1, "2:00 AM": 2, "3:00 AM": 3,
	"4:00 AM": 4, "5:00 AM": 5, "6:00 AM": 6, "7:00 AM": 7,
	"8:00 AM": 8, "9:00 AM": 9, "10:00 AM": 10, "11:00 AM": 11,
	"12:00 PM": 12, "1:00 PM": 13, "2:00 PM": 14, "3:00 PM": 15,
	"4:00 PM": 16, "5:00 PM": 17, "6:00 PM": 18, "7:00 PM": 19,
	"8:00 PM": 20, "9:00 PM": 21, "10:00 PM": 22, "11:00 PM": 23,
}

// ParseTimeOfDay parses either a 24-hour "15:04" string or one of the 24
// fixed 12-hour display strings ("8:00 AM", "8:00 a.m.").
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	trimmed := strings.TrimSpace(s)
	if parsed, err := time.Parse("15:04", trimmed); err == nil {
		return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
	}

	norm := strings.ToUpper(trimmed)
	norm = strings.ReplaceAll(norm, "A.M.", "AM")
	norm = strings.ReplaceAll(norm, "P.M.", "PM")
	norm = strings.Join(strings.Fields(norm), " ")
	if hour, ok := twelveHourTable[norm]; ok {
		return TimeOfDay{Hour: hour}, nil
	}
	return TimeOfDay{}, &ParseError{Input: s}
}

// ComputeDoseTimes returns dosesPerDay times starting at first, spaced
// 24/dosesPerDay hours apart using integer division (24/5 doses are 4 hours
// apart, not 4.8), wrapping modulo 24. Non-positive counts yield an empty
// schedule, which callers display as "pending: 0" rather than an error.
func ComputeDoseTimes(first TimeOfDay, dosesPerDay int) []TimeOfDay {
	if dosesPerDay <= 0 {
		return nil
	}
	gap := 24 / dosesPerDay
	out := make([]TimeOfDay, 0, dosesPerDay)
	for i := 0; i < dosesPerDay; i++ {
		out = append(out, first.AddHours(gap*i))
	}
	return out
}

// ComputeEveryNHours spaces doses exactly everyN hours apart starting at
// first. The dose count is fixed at 24/everyN (integer division) even when
// accumulation rolls past midnight into next-day wall-clock.
func ComputeEveryNHours(first TimeOfDay, everyN int) []TimeOfDay {
	if everyN <= 0 {
		return nil
	}
	count := 24 / everyN
	if count == 0 {
		return nil
	}
	// Accumulate via calendar arithmetic so rollover behaves like the
	// device clock would.
	cursor := time.Date(2000, time.January, 1, first.Hour, first.Minute, 0, 0, time.UTC)
	out := make([]TimeOfDay, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, TimeOfDay{Hour: cursor.Hour(), Minute: cursor.Minute()})
		cursor = cursor.Add(time.Duration(everyN) * time.Hour)
	}
	return out
}

// ForReminder computes the daily dose times for a reminder. An unparseable
// first-dose time or non-positive frequency degrades to an empty schedule.
func ForReminder(r *models.Reminder) []TimeOfDay {
	first, err := ParseTimeOfDay(r.FirstDoseTime)
	if err != nil {
		return nil
	}
	switch r.FrequencyMode {
	case models.FrequencyEveryHours:
		return ComputeEveryNHours(first, r.Frequency)
	default:
		return ComputeDoseTimes(first, r.Frequency)
	}
}
