package models

import (
	"fmt"
	"sort"

	apperrors "github.com/mzurek/ward-roster-api/pkg/errors"
)

// FrozenShift marks a worker's day as resistant to template overwrites.
type FrozenShift struct {
	Worker string `json:"worker"`
	Day    int    `json:"day"`
}

// MonthInfo carries the per-day arrays of one schedule container. All arrays
// are parallel to the shift rows.
type MonthInfo struct {
	Dates          []int         `json:"dates"`
	ChildrenNumber []int         `json:"children_number"`
	ExtraWorkers   []int         `json:"extra_workers"`
	FrozenShifts   []FrozenShift `json:"frozen_shifts"`
}

// Clone returns a deep copy of the month info.
func (m MonthInfo) Clone() MonthInfo {
	return MonthInfo{
		Dates:          cloneSlice(m.Dates),
		ChildrenNumber: cloneSlice(m.ChildrenNumber),
		ExtraWorkers:   cloneSlice(m.ExtraWorkers),
		FrozenShifts:   cloneSlice(m.FrozenShifts),
	}
}

// ScheduleInfo identifies a week-aligned schedule instance.
type ScheduleInfo struct {
	UUID        string `json:"uuid"`
	MonthNumber int    `json:"month_number"`
	Year        int    `json:"year"`
}

// MonthDataModel is one calendar month's stored data. Shift rows span exactly
// the calendar days of the month.
type MonthDataModel struct {
	ScheduleKey     ScheduleKey            `json:"schedule_key"`
	Shifts          map[string][]ShiftCode `json:"shifts"`
	MonthInfo       MonthInfo              `json:"month_info"`
	EmployeeInfo    WorkersInfo            `json:"employee_info"`
	IsAutoGenerated bool                   `json:"is_auto_generated"`
	IsCorrupted     bool                   `json:"is_corrupted"`
}

// ScheduleDataModel is the week-aligned superset of a month used for editing
// and validation. Row length is always a multiple of 7 (28, 35 or 42).
type ScheduleDataModel struct {
	ScheduleInfo    ScheduleInfo           `json:"schedule_info"`
	Shifts          map[string][]ShiftCode `json:"shifts"`
	MonthInfo       MonthInfo              `json:"month_info"`
	EmployeeInfo    WorkersInfo            `json:"employee_info"`
	IsAutoGenerated bool                   `json:"is_auto_generated"`
	IsCorrupted     bool                   `json:"is_corrupted"`
}

// Key returns the schedule key of the month the schedule is built around.
func (s ScheduleDataModel) Key() ScheduleKey {
	return ScheduleKey{Month: s.ScheduleInfo.MonthNumber, Year: s.ScheduleInfo.Year}
}

// Clone returns a deep copy of the schedule snapshot.
func (s ScheduleDataModel) Clone() ScheduleDataModel {
	return ScheduleDataModel{
		ScheduleInfo:    s.ScheduleInfo,
		Shifts:          CloneShifts(s.Shifts),
		MonthInfo:       s.MonthInfo.Clone(),
		EmployeeInfo:    s.EmployeeInfo.Clone(),
		IsAutoGenerated: s.IsAutoGenerated,
		IsCorrupted:     s.IsCorrupted,
	}
}

// Clone returns a deep copy of the month model.
func (m MonthDataModel) Clone() MonthDataModel {
	return MonthDataModel{
		ScheduleKey:     m.ScheduleKey,
		Shifts:          CloneShifts(m.Shifts),
		MonthInfo:       m.MonthInfo.Clone(),
		EmployeeInfo:    m.EmployeeInfo.Clone(),
		IsAutoGenerated: m.IsAutoGenerated,
		IsCorrupted:     m.IsCorrupted,
	}
}

// IsEmpty reports whether the month carries no roster data at all. Empty
// months are never persisted.
func (m MonthDataModel) IsEmpty() bool {
	return len(m.Shifts) == 0 &&
		len(m.EmployeeInfo.Type) == 0 &&
		len(m.MonthInfo.Dates) == 0
}

// WorkerNames returns the roster's worker names in ascending order.
func (m MonthDataModel) WorkerNames() []string {
	return sortedWorkerNames(m.Shifts)
}

// WorkerNames returns the roster's worker names in ascending order.
func (s ScheduleDataModel) WorkerNames() []string {
	return sortedWorkerNames(s.Shifts)
}

// NewEmptyMonth synthesizes an auto-generated month: every worker from the
// base roster gets an all-free row and per-day counters start at zero.
func NewEmptyMonth(key ScheduleKey, base MonthDataModel) MonthDataModel {
	dates := key.Dates()
	shifts := make(map[string][]ShiftCode, len(base.Shifts))
	for worker := range base.Shifts {
		row := make([]ShiftCode, len(dates))
		for i := range row {
			row[i] = ShiftFree
		}
		shifts[worker] = row
	}
	return MonthDataModel{
		ScheduleKey: key,
		Shifts:      shifts,
		MonthInfo: MonthInfo{
			Dates:          dates,
			ChildrenNumber: make([]int, len(dates)),
			ExtraWorkers:   make([]int, len(dates)),
			FrozenShifts:   []FrozenShift{},
		},
		EmployeeInfo:    base.EmployeeInfo.Clone(),
		IsAutoGenerated: true,
	}
}

// ValidateMonth checks the structural invariants of a month container before
// it is accepted into the pipeline. Violations are fatal.
func ValidateMonth(m MonthDataModel, catalogue ShiftCatalogue) error {
	wantLen := m.ScheduleKey.DaysInMonth()
	if len(m.MonthInfo.Dates) != wantLen {
		return structural(fmt.Sprintf("month %d/%d has %d dates, want %d",
			m.ScheduleKey.Month, m.ScheduleKey.Year, len(m.MonthInfo.Dates), wantLen))
	}
	for i, d := range m.MonthInfo.Dates {
		if d != i+1 {
			return structural(fmt.Sprintf("dates must enumerate 1..%d, found %d at index %d", wantLen, d, i))
		}
	}
	if err := validateContainer(m.Shifts, m.EmployeeInfo, len(m.MonthInfo.Dates)); err != nil {
		return err
	}
	// Unknown codes are fatal at the storage boundary. In-memory schedules
	// carry them through so the validator can surface them as warnings.
	for worker, row := range m.Shifts {
		for day, code := range row {
			if !catalogue.Contains(code) {
				return structural(fmt.Sprintf("worker %q has unknown shift code %q on day index %d", worker, code, day))
			}
		}
	}
	return nil
}

// ValidateSchedule checks the structural invariants of a week-aligned
// schedule container. Shift codes outside the catalogue pass here; they are
// reported as validation warnings instead.
func ValidateSchedule(s ScheduleDataModel, _ ShiftCatalogue) error {
	n := len(s.MonthInfo.Dates)
	if n == 0 || n%7 != 0 {
		return structural(fmt.Sprintf("schedule length %d is not a whole number of weeks", n))
	}
	return validateContainer(s.Shifts, s.EmployeeInfo, n)
}

func validateContainer(shifts map[string][]ShiftCode, info WorkersInfo, wantLen int) error {
	for worker, row := range shifts {
		if len(row) != wantLen {
			return structural(fmt.Sprintf("worker %q has %d shifts, want %d", worker, len(row), wantLen))
		}
		if _, ok := info.Type[worker]; !ok {
			return structural(fmt.Sprintf("worker %q has shifts but no employee type", worker))
		}
	}
	for worker := range info.Type {
		if _, ok := shifts[worker]; !ok {
			return structural(fmt.Sprintf("worker %q has an employee type but no shift row", worker))
		}
	}
	return nil
}

func structural(msg string) error {
	return apperrors.Clone(apperrors.ErrStructuralIntegrity, msg)
}

// CloneShifts deep-copies a shift row map.
func CloneShifts(src map[string][]ShiftCode) map[string][]ShiftCode {
	if src == nil {
		return nil
	}
	dst := make(map[string][]ShiftCode, len(src))
	for worker, row := range src {
		dst[worker] = cloneSlice(row)
	}
	return dst
}

func cloneSlice[T any](src []T) []T {
	if src == nil {
		return nil
	}
	dst := make([]T, len(src))
	copy(dst, src)
	return dst
}

func sortedWorkerNames(shifts map[string][]ShiftCode) []string {
	names := make([]string, 0, len(shifts))
	for worker := range shifts {
		names = append(names, worker)
	}
	sort.Strings(names)
	return names
}
