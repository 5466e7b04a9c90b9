package models

import (
	"fmt"
	"strings"
)

// ErrorKind discriminates schedule rule violations.
type ErrorKind string

const (
	KindAlwaysAtLeastOneNurse    ErrorKind = "AlwaysAtLeastOneNurse"
	KindWorkerNumberDuringDay    ErrorKind = "WorkerNumberDuringDay"
	KindWorkerNumberDuringNight  ErrorKind = "WorkerNumberDuringNight"
	KindDisallowedShiftSequence  ErrorKind = "DisallowedShiftSequence"
	KindLackingLongBreak         ErrorKind = "LackingLongBreak"
	KindWorkerUnderTime          ErrorKind = "WorkerUnderTime"
	KindWorkerOvertime           ErrorKind = "WorkerOvertime"
	KindUnknownShiftCode         ErrorKind = "UnknownShiftCode"
)

// ErrorLevel classifies violation severity.
type ErrorLevel string

const (
	// LevelCritical marks an infeasible or non-compliant schedule.
	LevelCritical ErrorLevel = "critical"
	// LevelWarning marks operational issues that do not block saving.
	LevelWarning ErrorLevel = "warning"
)

// HourSegment is a contiguous [From, To) hour-of-day range.
type HourSegment struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ScheduleError is the closed union of scheduling rule violations. Only the
// variant types in this package implement it.
type ScheduleError interface {
	Kind() ErrorKind
	Level() ErrorLevel

	isScheduleError()
}

// NotEnoughNurses reports hour segments of a day with no nurse on duty.
type NotEnoughNurses struct {
	Day      int           `json:"day"`
	Segments []HourSegment `json:"segments"`
}

// NotEnoughWorkersDay reports day-window (06-22) understaffing.
type NotEnoughWorkersDay struct {
	Day      int           `json:"day"`
	Required int           `json:"required"`
	Actual   int           `json:"actual"`
	Segments []HourSegment `json:"segments,omitempty"`
}

// NotEnoughWorkersNight reports night-window (22-06) understaffing.
type NotEnoughWorkersNight struct {
	Day      int           `json:"day"`
	Required int           `json:"required"`
	Actual   int           `json:"actual"`
	Segments []HourSegment `json:"segments,omitempty"`
}

// DisallowedShiftSequence reports a next-day shift starting before the legal
// rest threshold after the previous day's shift.
type DisallowedShiftSequence struct {
	Worker        string    `json:"worker"`
	Day           int       `json:"day"`
	Preceding     ShiftCode `json:"preceding"`
	Succeeding    ShiftCode `json:"succeeding"`
	HoursTooEarly int       `json:"hours_too_early"`
}

// LackingLongBreak reports a week with no sufficiently long rest break.
type LackingLongBreak struct {
	Worker string `json:"worker"`
	Week   int    `json:"week"`
}

// WorkerUnderTime reports hours short of the required norm.
type WorkerUnderTime struct {
	Worker string `json:"worker"`
	Hours  int    `json:"hours"`
}

// WorkerOvertime reports hours above the required norm.
type WorkerOvertime struct {
	Worker string `json:"worker"`
	Hours  int    `json:"hours"`
}

// UnknownShiftCode reports a code outside the active catalogue; downstream
// accounting treats the day as free.
type UnknownShiftCode struct {
	Worker string `json:"worker"`
	Day    int    `json:"day"`
	Actual string `json:"actual"`
}

func (NotEnoughNurses) Kind() ErrorKind         { return KindAlwaysAtLeastOneNurse }
func (NotEnoughWorkersDay) Kind() ErrorKind     { return KindWorkerNumberDuringDay }
func (NotEnoughWorkersNight) Kind() ErrorKind   { return KindWorkerNumberDuringNight }
func (DisallowedShiftSequence) Kind() ErrorKind { return KindDisallowedShiftSequence }
func (LackingLongBreak) Kind() ErrorKind        { return KindLackingLongBreak }
func (WorkerUnderTime) Kind() ErrorKind         { return KindWorkerUnderTime }
func (WorkerOvertime) Kind() ErrorKind          { return KindWorkerOvertime }
func (UnknownShiftCode) Kind() ErrorKind        { return KindUnknownShiftCode }

func (NotEnoughNurses) Level() ErrorLevel         { return LevelCritical }
func (NotEnoughWorkersDay) Level() ErrorLevel     { return LevelCritical }
func (NotEnoughWorkersNight) Level() ErrorLevel   { return LevelCritical }
func (DisallowedShiftSequence) Level() ErrorLevel { return LevelCritical }
func (LackingLongBreak) Level() ErrorLevel        { return LevelCritical }
func (WorkerUnderTime) Level() ErrorLevel         { return LevelCritical }
func (WorkerOvertime) Level() ErrorLevel          { return LevelCritical }
func (UnknownShiftCode) Level() ErrorLevel        { return LevelWarning }

func (NotEnoughNurses) isScheduleError()         {}
func (NotEnoughWorkersDay) isScheduleError()     {}
func (NotEnoughWorkersNight) isScheduleError()   {}
func (DisallowedShiftSequence) isScheduleError() {}
func (LackingLongBreak) isScheduleError()        {}
func (WorkerUnderTime) isScheduleError()         {}
func (WorkerOvertime) isScheduleError()          {}
func (UnknownShiftCode) isScheduleError()        {}

// GroupedErrors collects violations by rule kind.
type GroupedErrors map[ErrorKind][]ScheduleError

// GroupErrors buckets an ordered error list by kind, preserving order within
// each bucket.
func GroupErrors(errs []ScheduleError) GroupedErrors {
	grouped := make(GroupedErrors)
	for _, e := range errs {
		grouped[e.Kind()] = append(grouped[e.Kind()], e)
	}
	return grouped
}

// ErrorMessage renders a language-neutral human message for a violation.
// The switch is exhaustive over the closed union.
func ErrorMessage(e ScheduleError) string {
	switch v := e.(type) {
	case NotEnoughNurses:
		return fmt.Sprintf("no nurse on duty on day %d during %s", v.Day+1, formatSegments(v.Segments))
	case NotEnoughWorkersDay:
		msg := fmt.Sprintf("not enough workers during the day on day %d: required %d, actual %d", v.Day+1, v.Required, v.Actual)
		if len(v.Segments) > 0 {
			msg += " in " + formatSegments(v.Segments)
		}
		return msg
	case NotEnoughWorkersNight:
		msg := fmt.Sprintf("not enough workers during the night on day %d: required %d, actual %d", v.Day+1, v.Required, v.Actual)
		if len(v.Segments) > 0 {
			msg += " in " + formatSegments(v.Segments)
		}
		return msg
	case DisallowedShiftSequence:
		return fmt.Sprintf("worker %s: shift %s on day %d starts %d hours too early after shift %s",
			v.Worker, v.Succeeding, v.Day+2, v.HoursTooEarly, v.Preceding)
	case LackingLongBreak:
		return fmt.Sprintf("worker %s has no long break in week %d", v.Worker, v.Week+1)
	case WorkerUnderTime:
		return fmt.Sprintf("worker %s is %d hours under time", v.Worker, v.Hours)
	case WorkerOvertime:
		return fmt.Sprintf("worker %s has %d hours overtime", v.Worker, v.Hours)
	case UnknownShiftCode:
		return fmt.Sprintf("unknown shift value %q for worker %s on day %d, treated as free", v.Actual, v.Worker, v.Day+1)
	default:
		return fmt.Sprintf("unrecognised schedule error kind %s", e.Kind())
	}
}

func formatSegments(segments []HourSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, fmt.Sprintf("%d-%d", s.From, s.To))
	}
	return strings.Join(parts, ", ")
}
