package service

import (
	"github.com/mzurek/ward-roster-api/internal/models"
)

// ErrorMessageModel is the transport form of a schedule error: the kind
// discriminant plus a rendered language-neutral message and the addressing
// context the UI groups by.
type ErrorMessageModel struct {
	Kind    models.ErrorKind  `json:"kind"`
	Level   models.ErrorLevel `json:"level"`
	Message string            `json:"message"`
	// Date is the calendar day the error displays under, resolved from the
	// day's own entry in month_info.dates rather than an index heuristic.
	Date   int    `json:"date,omitempty"`
	Worker string `json:"worker,omitempty"`
	Week   int    `json:"week,omitempty"`
}

// RenderErrors converts violations into transport messages, grouped by kind.
// The dispatch is exhaustive over the closed error union.
func RenderErrors(errs []models.ScheduleError, schedule models.ScheduleDataModel) map[models.ErrorKind][]ErrorMessageModel {
	grouped := make(map[models.ErrorKind][]ErrorMessageModel)
	for _, e := range errs {
		msg := ErrorMessageModel{
			Kind:    e.Kind(),
			Level:   e.Level(),
			Message: models.ErrorMessage(e),
		}
		switch v := e.(type) {
		case models.NotEnoughNurses:
			msg.Date = calendarDate(schedule, v.Day)
		case models.NotEnoughWorkersDay:
			msg.Date = calendarDate(schedule, v.Day)
		case models.NotEnoughWorkersNight:
			msg.Date = calendarDate(schedule, v.Day)
		case models.DisallowedShiftSequence:
			msg.Date = calendarDate(schedule, v.Day+1)
			msg.Worker = v.Worker
		case models.LackingLongBreak:
			msg.Worker = v.Worker
			msg.Week = v.Week
		case models.WorkerUnderTime:
			msg.Worker = v.Worker
		case models.WorkerOvertime:
			msg.Worker = v.Worker
		case models.UnknownShiftCode:
			msg.Date = calendarDate(schedule, v.Day)
			msg.Worker = v.Worker
		}
		grouped[e.Kind()] = append(grouped[e.Kind()], msg)
	}
	return grouped
}

func calendarDate(schedule models.ScheduleDataModel, day int) int {
	if day < 0 || day >= len(schedule.MonthInfo.Dates) {
		return 0
	}
	return schedule.MonthInfo.Dates[day]
}
