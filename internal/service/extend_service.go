package service

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mzurek/ward-roster-api/internal/models"
	apperrors "github.com/mzurek/ward-roster-api/pkg/errors"
)

// ExtendService stitches a calendar month to full-week boundaries by
// borrowing days from its neighbours, and crops the result back.
type ExtendService struct {
	catalogue models.ShiftCatalogue
	logger    *zap.Logger
}

// NewExtendService builds the extender.
func NewExtendService(catalogue models.ShiftCatalogue, logger *zap.Logger) *ExtendService {
	if catalogue == nil {
		catalogue = models.DefaultShifts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtendService{catalogue: catalogue, logger: logger}
}

// MissingFullWeekDays computes how many days must be borrowed from the
// previous and next months so that the month's first day lands at the start
// of a week row and its last day at the end of one. Weeks start on Monday.
func MissingFullWeekDays(key models.ScheduleKey) (fromPrev, fromNext int) {
	fromPrev = key.Weekday(1)
	fromNext = 6 - key.Weekday(key.DaysInMonth())
	return fromPrev, fromNext
}

// Extend produces the week-aligned schedule for curr, borrowing the trailing
// days of prev and the leading days of next. Rows absent on either side are
// substituted with free shifts and zero counters.
func (s *ExtendService) Extend(prev, curr, next models.MonthDataModel) (models.ScheduleDataModel, error) {
	if err := models.ValidateMonth(curr, s.catalogue); err != nil {
		return models.ScheduleDataModel{}, err
	}

	fromPrev, fromNext := MissingFullWeekDays(curr.ScheduleKey)

	shifts := make(map[string][]models.ShiftCode, len(curr.Shifts))
	for worker, row := range curr.Shifts {
		shifts[worker] = extendRow(prev.Shifts[worker], fromPrev, row, next.Shifts[worker], fromNext, models.ShiftFree)
	}

	info := models.MonthInfo{
		Dates:          extendRow(prev.MonthInfo.Dates, fromPrev, curr.MonthInfo.Dates, next.MonthInfo.Dates, fromNext, 0),
		ChildrenNumber: extendRow(prev.MonthInfo.ChildrenNumber, fromPrev, curr.MonthInfo.ChildrenNumber, next.MonthInfo.ChildrenNumber, fromNext, 0),
		ExtraWorkers:   extendRow(prev.MonthInfo.ExtraWorkers, fromPrev, curr.MonthInfo.ExtraWorkers, next.MonthInfo.ExtraWorkers, fromNext, 0),
		FrozenShifts:   []models.FrozenShift{},
	}

	schedule := models.ScheduleDataModel{
		ScheduleInfo: models.ScheduleInfo{
			UUID:        uuid.NewString(),
			MonthNumber: curr.ScheduleKey.Month,
			Year:        curr.ScheduleKey.Year,
		},
		Shifts:          shifts,
		MonthInfo:       info,
		EmployeeInfo:    curr.EmployeeInfo.Clone(),
		IsAutoGenerated: curr.IsAutoGenerated,
		IsCorrupted:     curr.IsCorrupted,
	}
	if err := models.ValidateSchedule(schedule, s.catalogue); err != nil {
		return models.ScheduleDataModel{}, err
	}
	return schedule, nil
}

// Crop slices a week-aligned schedule back to its own calendar month. It is
// the exact left inverse of Extend over the month's date range.
func (s *ExtendService) Crop(schedule models.ScheduleDataModel) (models.MonthDataModel, error) {
	key := schedule.Key()
	monthStart := indexOf(schedule.MonthInfo.Dates, 1)
	if monthStart < 0 {
		return models.MonthDataModel{}, apperrors.Clone(apperrors.ErrStructuralIntegrity,
			"schedule dates do not contain the first day of the month")
	}
	monthLen := key.DaysInMonth()
	if monthStart+monthLen > len(schedule.MonthInfo.Dates) {
		return models.MonthDataModel{}, apperrors.Clone(apperrors.ErrStructuralIntegrity,
			"schedule is shorter than its own calendar month")
	}

	shifts := make(map[string][]models.ShiftCode, len(schedule.Shifts))
	for worker, row := range schedule.Shifts {
		shifts[worker] = slicePart(row, monthStart, monthLen)
	}

	month := models.MonthDataModel{
		ScheduleKey: key,
		Shifts:      shifts,
		MonthInfo: models.MonthInfo{
			Dates:          slicePart(schedule.MonthInfo.Dates, monthStart, monthLen),
			ChildrenNumber: slicePart(schedule.MonthInfo.ChildrenNumber, monthStart, monthLen),
			ExtraWorkers:   slicePart(schedule.MonthInfo.ExtraWorkers, monthStart, monthLen),
			FrozenShifts:   cropFrozen(schedule.MonthInfo.FrozenShifts, monthStart, monthLen),
		},
		EmployeeInfo:    schedule.EmployeeInfo.Clone(),
		IsAutoGenerated: schedule.IsAutoGenerated,
		IsCorrupted:     schedule.IsCorrupted,
	}
	if err := models.ValidateMonth(month, s.catalogue); err != nil {
		return models.MonthDataModel{}, err
	}
	return month, nil
}

// extendRow concatenates the trailing fromPrev entries of prev, the whole of
// curr and the leading fromNext entries of next, filling absent sides with
// the default value.
func extendRow[T any](prev []T, fromPrev int, curr []T, next []T, fromNext int, def T) []T {
	out := make([]T, 0, fromPrev+len(curr)+fromNext)
	for i := 0; i < fromPrev; i++ {
		idx := len(prev) - fromPrev + i
		if idx >= 0 && idx < len(prev) {
			out = append(out, prev[idx])
		} else {
			out = append(out, def)
		}
	}
	out = append(out, curr...)
	for i := 0; i < fromNext; i++ {
		if i < len(next) {
			out = append(out, next[i])
		} else {
			out = append(out, def)
		}
	}
	return out
}

func slicePart[T any](src []T, start, length int) []T {
	if start >= len(src) {
		return []T{}
	}
	end := start + length
	if end > len(src) {
		end = len(src)
	}
	out := make([]T, end-start)
	copy(out, src[start:end])
	return out
}

func cropFrozen(frozen []models.FrozenShift, monthStart, monthLen int) []models.FrozenShift {
	out := make([]models.FrozenShift, 0, len(frozen))
	for _, f := range frozen {
		if f.Day >= monthStart && f.Day < monthStart+monthLen {
			out = append(out, models.FrozenShift{Worker: f.Worker, Day: f.Day - monthStart})
		}
	}
	return out
}

func indexOf(values []int, want int) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}
