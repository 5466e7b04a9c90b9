package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RevisionType distinguishes the two parallel copies of a month's schedule.
type RevisionType string

const (
	// RevisionPrimary is the forward-looking template revision.
	RevisionPrimary RevisionType = "primary"
	// RevisionActual is the realized, hand-edited ground truth.
	RevisionActual RevisionType = "actual"
)

// Valid reports whether the revision type is one of the two known kinds.
func (t RevisionType) Valid() bool {
	return t == RevisionPrimary || t == RevisionActual
}

// Opposite returns the other revision kind.
func (t RevisionType) Opposite() RevisionType {
	if t == RevisionActual {
		return RevisionPrimary
	}
	return RevisionActual
}

// RevisionKey addresses one stored month revision.
type RevisionKey string

// ScheduleKey identifies a calendar month. Month is zero based (0-11).
type ScheduleKey struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// NewScheduleKey normalises month overflow into the year, so month -1
// becomes December of the previous year and month 12 January of the next.
func NewScheduleKey(month, year int) ScheduleKey {
	for month < 0 {
		month += 12
		year--
	}
	year += month / 12
	month %= 12
	return ScheduleKey{Month: month, Year: year}
}

// NextMonthKey returns the key of the following month.
func (k ScheduleKey) NextMonthKey() ScheduleKey {
	return NewScheduleKey(k.Month+1, k.Year)
}

// PrevMonthKey returns the key of the preceding month.
func (k ScheduleKey) PrevMonthKey() ScheduleKey {
	return NewScheduleKey(k.Month-1, k.Year)
}

// RevisionKey derives the storage address for one revision of this month.
func (k ScheduleKey) RevisionKey(t RevisionType) RevisionKey {
	return RevisionKey(fmt.Sprintf("%d_%d_%s", k.Month, k.Year, t))
}

// IsInFuture reports whether the month starts after the month containing now.
func (k ScheduleKey) IsInFuture(now time.Time) bool {
	if k.Year != now.Year() {
		return k.Year > now.Year()
	}
	return k.Month > int(now.Month())-1
}

// DaysInMonth returns the number of calendar days in the month.
func (k ScheduleKey) DaysInMonth() int {
	return time.Date(k.Year, time.Month(k.Month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// Dates enumerates the calendar days of the month, 1..N.
func (k ScheduleKey) Dates() []int {
	n := k.DaysInMonth()
	dates := make([]int, n)
	for i := range dates {
		dates[i] = i + 1
	}
	return dates
}

// Weekday returns the weekday of the given day of month, Monday = 0.
func (k ScheduleKey) Weekday(day int) int {
	wd := time.Date(k.Year, time.Month(k.Month+1), day, 0, 0, 0, 0, time.UTC).Weekday()
	return (int(wd) + 6) % 7
}

// ParseRevisionKey splits a storage address back into its schedule key and
// revision type.
func ParseRevisionKey(key RevisionKey) (ScheduleKey, RevisionType, error) {
	parts := strings.Split(string(key), "_")
	if len(parts) != 3 {
		return ScheduleKey{}, "", fmt.Errorf("malformed revision key %q", key)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return ScheduleKey{}, "", fmt.Errorf("malformed revision key %q: %w", key, err)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return ScheduleKey{}, "", fmt.Errorf("malformed revision key %q: %w", key, err)
	}
	t := RevisionType(parts[2])
	if !t.Valid() {
		return ScheduleKey{}, "", fmt.Errorf("unknown revision type %q", parts[2])
	}
	return ScheduleKey{Month: month, Year: year}, t, nil
}
