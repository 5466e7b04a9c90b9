package dto

import "github.com/mzurek/ward-roster-api/internal/models"

// EditType enumerates the roster edit operations accepted over the API.
type EditType string

const (
	EditChangeShift    EditType = "change_shift"
	EditAddWorker      EditType = "add_worker"
	EditRemoveWorker   EditType = "remove_worker"
	EditUpdateNorm     EditType = "update_norm"
	EditToggleFrozen   EditType = "toggle_frozen"
	EditSetChildren    EditType = "set_children"
	EditSetExtraWorker EditType = "set_extra_workers"
)

// EditRequest captures POST /schedules/:year/:month/edits payload. Fields
// beyond Type are interpreted per edit type.
type EditRequest struct {
	Type     EditType            `json:"type" validate:"required,oneof=change_shift add_worker remove_worker update_norm toggle_frozen set_children set_extra_workers"`
	Worker   string              `json:"worker,omitempty"`
	Day      *int                `json:"day,omitempty" validate:"omitempty,min=0"`
	Code     models.ShiftCode    `json:"code,omitempty"`
	Kind     models.WorkerType   `json:"kind,omitempty" validate:"omitempty,oneof=NURSE OTHER"`
	Contract models.ContractType `json:"contract,omitempty" validate:"omitempty,oneof=EMPLOYMENT_CONTRACT CIVIL_CONTRACT"`
	Norm     *int                `json:"norm,omitempty" validate:"omitempty,min=0"`
	Team     string              `json:"team,omitempty"`
	Value    *int                `json:"value,omitempty" validate:"omitempty,min=0"`
}

// SaveScheduleRequest captures PUT /schedules/:year/:month payload. Schedule
// is optional; when omitted the revision's current working snapshot is saved.
type SaveScheduleRequest struct {
	Schedule *models.ScheduleDataModel `json:"schedule,omitempty"`
}

// ImportResponse is returned after a successful shift-table upload.
type ImportResponse struct {
	Month  models.MonthDataModel `json:"month"`
	Issues []ImportIssue         `json:"issues"`
}

// ImportIssue mirrors a single recoverable upload problem.
type ImportIssue struct {
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}
