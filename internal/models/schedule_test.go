package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mzurek/ward-roster-api/pkg/errors"
)

func validMonth(key ScheduleKey) MonthDataModel {
	days := key.DaysInMonth()
	row := make([]ShiftCode, days)
	for i := range row {
		row[i] = ShiftFree
	}
	return MonthDataModel{
		ScheduleKey: key,
		Shifts:      map[string][]ShiftCode{"Anna": row},
		MonthInfo: MonthInfo{
			Dates:          key.Dates(),
			ChildrenNumber: make([]int, days),
			ExtraWorkers:   make([]int, days),
			FrozenShifts:   []FrozenShift{},
		},
		EmployeeInfo: WorkersInfo{
			Type:     map[string]WorkerType{"Anna": WorkerTypeNurse},
			Contract: map[string]ContractType{"Anna": ContractEmployment},
			Norm:     map[string]int{"Anna": 160},
			Team:     map[string]string{"Anna": "A"},
		},
	}
}

func TestValidateMonthAcceptsWellFormed(t *testing.T) {
	month := validMonth(ScheduleKey{Month: 1, Year: 2021})
	require.NoError(t, ValidateMonth(month, DefaultShifts))
}

func TestValidateMonthRejectsWrongRowLength(t *testing.T) {
	month := validMonth(ScheduleKey{Month: 1, Year: 2021})
	month.Shifts["Anna"] = month.Shifts["Anna"][:10]

	err := ValidateMonth(month, DefaultShifts)
	require.Error(t, err)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrStructuralIntegrity.Code, appErr.Code)
}

func TestValidateMonthRejectsNonContiguousDates(t *testing.T) {
	month := validMonth(ScheduleKey{Month: 1, Year: 2021})
	month.MonthInfo.Dates[3] = 9

	assert.Error(t, ValidateMonth(month, DefaultShifts))
}

func TestValidateMonthRejectsOrphanRowsAndTypes(t *testing.T) {
	month := validMonth(ScheduleKey{Month: 1, Year: 2021})
	month.EmployeeInfo.Type["Beata"] = WorkerTypeOther
	assert.Error(t, ValidateMonth(month, DefaultShifts), "type without a shift row")

	month = validMonth(ScheduleKey{Month: 1, Year: 2021})
	delete(month.EmployeeInfo.Type, "Anna")
	assert.Error(t, ValidateMonth(month, DefaultShifts), "shift row without a type")
}

func TestValidateMonthRejectsUnknownCode(t *testing.T) {
	month := validMonth(ScheduleKey{Month: 1, Year: 2021})
	month.Shifts["Anna"][4] = ShiftCode("X")

	assert.Error(t, ValidateMonth(month, DefaultShifts))
}

func TestValidateScheduleRequiresWholeWeeks(t *testing.T) {
	schedule := ScheduleDataModel{
		ScheduleInfo: ScheduleInfo{MonthNumber: 1, Year: 2021},
		Shifts:       map[string][]ShiftCode{},
		MonthInfo:    MonthInfo{Dates: make([]int, 30)},
	}
	assert.Error(t, ValidateSchedule(schedule, DefaultShifts))

	schedule.MonthInfo.Dates = make([]int, 0)
	assert.Error(t, ValidateSchedule(schedule, DefaultShifts))
}

func TestValidateScheduleToleratesUnknownCodes(t *testing.T) {
	row := make([]ShiftCode, 28)
	for i := range row {
		row[i] = ShiftFree
	}
	row[3] = ShiftCode("X")
	schedule := ScheduleDataModel{
		ScheduleInfo: ScheduleInfo{MonthNumber: 1, Year: 2021},
		Shifts:       map[string][]ShiftCode{"Anna": row},
		MonthInfo:    MonthInfo{Dates: make([]int, 28)},
		EmployeeInfo: WorkersInfo{
			Type: map[string]WorkerType{"Anna": WorkerTypeNurse},
		},
	}

	assert.NoError(t, ValidateSchedule(schedule, DefaultShifts),
		"codes outside the catalogue surface as validation warnings, not structural failures")
}

func TestNewEmptyMonth(t *testing.T) {
	base := validMonth(ScheduleKey{Month: 0, Year: 2021})
	key := ScheduleKey{Month: 1, Year: 2021}

	month := NewEmptyMonth(key, base)

	assert.True(t, month.IsAutoGenerated)
	assert.Equal(t, key, month.ScheduleKey)
	require.Len(t, month.Shifts["Anna"], 28)
	for _, code := range month.Shifts["Anna"] {
		assert.Equal(t, ShiftFree, code)
	}
	assert.Equal(t, key.Dates(), month.MonthInfo.Dates)
	assert.Equal(t, base.EmployeeInfo.Norm["Anna"], month.EmployeeInfo.Norm["Anna"])
	require.NoError(t, ValidateMonth(month, DefaultShifts))
}

func TestCloneIsDeep(t *testing.T) {
	month := validMonth(ScheduleKey{Month: 1, Year: 2021})
	clone := month.Clone()

	clone.Shifts["Anna"][0] = ShiftDay
	clone.MonthInfo.ChildrenNumber[0] = 9
	clone.EmployeeInfo.Norm["Anna"] = 1

	assert.Equal(t, ShiftFree, month.Shifts["Anna"][0])
	assert.Equal(t, 0, month.MonthInfo.ChildrenNumber[0])
	assert.Equal(t, 160, month.EmployeeInfo.Norm["Anna"])
}

func TestWorkerNamesSorted(t *testing.T) {
	month := validMonth(ScheduleKey{Month: 1, Year: 2021})
	month.Shifts["Celina"] = month.Shifts["Anna"]
	month.Shifts["Beata"] = month.Shifts["Anna"]

	assert.Equal(t, []string{"Anna", "Beata", "Celina"}, month.WorkerNames())
}

func TestGroupErrorsPreservesOrder(t *testing.T) {
	errs := []ScheduleError{
		WorkerOvertime{Worker: "Anna", Hours: 4},
		NotEnoughNurses{Day: 0, Segments: []HourSegment{{From: 0, To: 7}}},
		WorkerOvertime{Worker: "Beata", Hours: 2},
	}

	grouped := GroupErrors(errs)
	require.Len(t, grouped[KindWorkerOvertime], 2)
	assert.Equal(t, "Anna", grouped[KindWorkerOvertime][0].(WorkerOvertime).Worker)
	assert.Equal(t, "Beata", grouped[KindWorkerOvertime][1].(WorkerOvertime).Worker)
	assert.Len(t, grouped[KindAlwaysAtLeastOneNurse], 1)
}
