package service

import (
	"fmt"

	"github.com/mzurek/ward-roster-api/internal/models"
	apperrors "github.com/mzurek/ward-roster-api/pkg/errors"
)

// ScheduleEdit is the closed union of schedule mutations. Every edit is a
// pure transition: it leaves the input snapshot untouched and yields a brand
// new one.
type ScheduleEdit interface {
	isEdit()
}

// ChangeShiftEdit assigns a shift code to one worker on one day index of the
// week-aligned schedule.
type ChangeShiftEdit struct {
	Worker string           `json:"worker"`
	Day    int              `json:"day"`
	Code   models.ShiftCode `json:"code"`
}

// AddWorkerEdit introduces a worker with an all-free row.
type AddWorkerEdit struct {
	Worker   string              `json:"worker"`
	Type     models.WorkerType   `json:"type"`
	Contract models.ContractType `json:"contract"`
	Norm     int                 `json:"norm"`
	Team     string              `json:"team"`
}

// RemoveWorkerEdit drops a worker from the roster.
type RemoveWorkerEdit struct {
	Worker string `json:"worker"`
}

// UpdateWorkerNormEdit changes a worker's contractual monthly hours.
type UpdateWorkerNormEdit struct {
	Worker string `json:"worker"`
	Norm   int    `json:"norm"`
}

// ToggleFrozenEdit flips the frozen flag of one worker's day.
type ToggleFrozenEdit struct {
	Worker string `json:"worker"`
	Day    int    `json:"day"`
}

// SetChildrenNumberEdit updates the registered children count for a day.
type SetChildrenNumberEdit struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}

// SetExtraWorkersEdit updates the extra worker count for a day.
type SetExtraWorkersEdit struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}

func (ChangeShiftEdit) isEdit()       {}
func (AddWorkerEdit) isEdit()         {}
func (RemoveWorkerEdit) isEdit()      {}
func (UpdateWorkerNormEdit) isEdit()  {}
func (ToggleFrozenEdit) isEdit()      {}
func (SetChildrenNumberEdit) isEdit() {}
func (SetExtraWorkersEdit) isEdit()   {}

// EditService applies schedule edits as pure transitions.
type EditService struct {
	catalogue models.ShiftCatalogue
}

// NewEditService builds the edit applier.
func NewEditService(catalogue models.ShiftCatalogue) *EditService {
	if catalogue == nil {
		catalogue = models.DefaultShifts
	}
	return &EditService{catalogue: catalogue}
}

// Apply produces the snapshot resulting from one edit. The input snapshot is
// never mutated.
func (s *EditService) Apply(snapshot models.ScheduleDataModel, edit ScheduleEdit) (models.ScheduleDataModel, error) {
	next := snapshot.Clone()
	switch e := edit.(type) {
	case ChangeShiftEdit:
		row, ok := next.Shifts[e.Worker]
		if !ok {
			return models.ScheduleDataModel{}, invalidEdit(fmt.Sprintf("unknown worker %q", e.Worker))
		}
		if e.Day < 0 || e.Day >= len(row) {
			return models.ScheduleDataModel{}, invalidEdit(fmt.Sprintf("day index %d out of range", e.Day))
		}
		if !s.catalogue.Contains(e.Code) {
			return models.ScheduleDataModel{}, invalidEdit(fmt.Sprintf("unknown shift code %q", e.Code))
		}
		row[e.Day] = e.Code
	case AddWorkerEdit:
		if e.Worker == "" {
			return models.ScheduleDataModel{}, invalidEdit("worker name is required")
		}
		if _, exists := next.Shifts[e.Worker]; exists {
			return models.ScheduleDataModel{}, invalidEdit(fmt.Sprintf("worker %q already exists", e.Worker))
		}
		row := make([]models.ShiftCode, len(next.MonthInfo.Dates))
		for i := range row {
			row[i] = models.ShiftFree
		}
		next.Shifts[e.Worker] = row
		if next.EmployeeInfo.Type == nil {
			next.EmployeeInfo.Type = map[string]models.WorkerType{}
		}
		if next.EmployeeInfo.Contract == nil {
			next.EmployeeInfo.Contract = map[string]models.ContractType{}
		}
		if next.EmployeeInfo.Norm == nil {
			next.EmployeeInfo.Norm = map[string]int{}
		}
		if next.EmployeeInfo.Team == nil {
			next.EmployeeInfo.Team = map[string]string{}
		}
		next.EmployeeInfo.Type[e.Worker] = e.Type
		next.EmployeeInfo.Contract[e.Worker] = e.Contract
		next.EmployeeInfo.Norm[e.Worker] = e.Norm
		next.EmployeeInfo.Team[e.Worker] = e.Team
	case RemoveWorkerEdit:
		if _, exists := next.Shifts[e.Worker]; !exists {
			return models.ScheduleDataModel{}, invalidEdit(fmt.Sprintf("unknown worker %q", e.Worker))
		}
		delete(next.Shifts, e.Worker)
		delete(next.EmployeeInfo.Type, e.Worker)
		delete(next.EmployeeInfo.Contract, e.Worker)
		delete(next.EmployeeInfo.Norm, e.Worker)
		delete(next.EmployeeInfo.Team, e.Worker)
	case UpdateWorkerNormEdit:
		if _, exists := next.Shifts[e.Worker]; !exists {
			return models.ScheduleDataModel{}, invalidEdit(fmt.Sprintf("unknown worker %q", e.Worker))
		}
		if next.EmployeeInfo.Norm == nil {
			next.EmployeeInfo.Norm = map[string]int{}
		}
		next.EmployeeInfo.Norm[e.Worker] = e.Norm
	case ToggleFrozenEdit:
		if _, exists := next.Shifts[e.Worker]; !exists {
			return models.ScheduleDataModel{}, invalidEdit(fmt.Sprintf("unknown worker %q", e.Worker))
		}
		if e.Day < 0 || e.Day >= len(next.MonthInfo.Dates) {
			return models.ScheduleDataModel{}, invalidEdit(fmt.Sprintf("day index %d out of range", e.Day))
		}
		next.MonthInfo.FrozenShifts = toggleFrozen(next.MonthInfo.FrozenShifts, e.Worker, e.Day)
	case SetChildrenNumberEdit:
		if e.Day < 0 || e.Day >= len(next.MonthInfo.ChildrenNumber) {
			return models.ScheduleDataModel{}, invalidEdit(fmt.Sprintf("day index %d out of range", e.Day))
		}
		if e.Count < 0 {
			return models.ScheduleDataModel{}, invalidEdit("children number must not be negative")
		}
		next.MonthInfo.ChildrenNumber[e.Day] = e.Count
	case SetExtraWorkersEdit:
		if e.Day < 0 || e.Day >= len(next.MonthInfo.ExtraWorkers) {
			return models.ScheduleDataModel{}, invalidEdit(fmt.Sprintf("day index %d out of range", e.Day))
		}
		if e.Count < 0 {
			return models.ScheduleDataModel{}, invalidEdit("extra workers must not be negative")
		}
		next.MonthInfo.ExtraWorkers[e.Day] = e.Count
	default:
		return models.ScheduleDataModel{}, invalidEdit("unsupported edit")
	}
	return next, nil
}

func toggleFrozen(frozen []models.FrozenShift, worker string, day int) []models.FrozenShift {
	for i, f := range frozen {
		if f.Worker == worker && f.Day == day {
			return append(frozen[:i:i], frozen[i+1:]...)
		}
	}
	return append(frozen, models.FrozenShift{Worker: worker, Day: day})
}

func invalidEdit(msg string) error {
	return apperrors.Clone(apperrors.ErrValidation, msg)
}
