package service

import (
	"github.com/mzurek/ward-roster-api/internal/models"
)

// normAdjustmentHours is the per-day norm correction applied when an absence
// day is added to or removed from the actual schedule.
const normAdjustmentHours = 8

// WorkerHoursInput carries everything needed to account one worker's month.
// The shift arrays may be week-extended; borrowed neighbour days never affect
// the totals.
type WorkerHoursInput struct {
	ActualShifts  []models.ShiftCode
	PrimaryShifts []models.ShiftCode
	Norm          int
	Contract      models.ContractType
	Key           models.ScheduleKey
	Dates         []int
}

// HoursService turns a worker's shift sequence into required/actual/overtime
// hour totals.
type HoursService struct {
	catalogue models.ShiftCatalogue
}

// NewHoursService builds the calculator.
func NewHoursService(catalogue models.ShiftCatalogue) *HoursService {
	if catalogue == nil {
		catalogue = models.DefaultShifts
	}
	return &HoursService{catalogue: catalogue}
}

// Calculate computes the hour aggregate for one worker. It never fails:
// oversized or undersized arrays are a normal product of week extension and
// are processed index by index.
func (s *HoursService) Calculate(in WorkerHoursInput) models.WorkerHourInfo {
	monthStart, monthEnd := currentMonthRange(in.Dates, in.Key)
	if len(in.Dates) == 0 {
		monthStart, monthEnd = 0, len(in.ActualShifts)
	}

	actual := 0
	for i := monthStart; i < monthEnd && i < len(in.ActualShifts); i++ {
		actual += s.catalogue.Duration(in.ActualShifts[i])
	}

	required := in.Norm
	if len(in.PrimaryShifts) > 0 && in.Contract == models.ContractEmployment {
		for i := monthStart; i < monthEnd; i++ {
			if i >= len(in.ActualShifts) || i >= len(in.PrimaryShifts) || i >= len(in.Dates) {
				break
			}
			if in.Key.Weekday(in.Dates[i]) >= 5 {
				continue
			}
			actualAbsent := s.catalogue.IsNormAdjusting(in.ActualShifts[i])
			primaryAbsent := s.catalogue.IsNormAdjusting(in.PrimaryShifts[i])
			switch {
			case actualAbsent && !primaryAbsent:
				required -= normAdjustmentHours
			case primaryAbsent && !actualAbsent:
				required += normAdjustmentHours
			}
		}
	}

	return models.NewWorkerHourInfo(required, actual)
}

// CalculateAll accounts every worker of a week-aligned schedule. Primary rows
// are matched by worker name; workers absent from the primary schedule get no
// norm adjustment.
func (s *HoursService) CalculateAll(schedule models.ScheduleDataModel, primary map[string][]models.ShiftCode) map[string]models.WorkerHourInfo {
	key := schedule.Key()
	result := make(map[string]models.WorkerHourInfo, len(schedule.Shifts))
	for worker, row := range schedule.Shifts {
		result[worker] = s.Calculate(WorkerHoursInput{
			ActualShifts:  row,
			PrimaryShifts: primary[worker],
			Norm:          schedule.EmployeeInfo.Norm[worker],
			Contract:      schedule.EmployeeInfo.Contract[worker],
			Key:           key,
			Dates:         schedule.MonthInfo.Dates,
		})
	}
	return result
}

// currentMonthRange locates the [start, end) index span of the schedule's
// own calendar month inside a possibly week-extended date array.
func currentMonthRange(dates []int, key models.ScheduleKey) (int, int) {
	start := indexOf(dates, 1)
	if start < 0 {
		start = 0
	}
	end := start + key.DaysInMonth()
	if end > len(dates) {
		end = len(dates)
	}
	return start, end
}
