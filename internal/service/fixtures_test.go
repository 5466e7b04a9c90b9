package service

import (
	"context"
	"sync"

	"github.com/mzurek/ward-roster-api/internal/models"
)

// febKey is February 2021: 28 days, starting on a Monday and ending on a
// Sunday, so week extension borrows nothing on either side.
var febKey = models.ScheduleKey{Month: 1, Year: 2021}

func freeRow(days int) []models.ShiftCode {
	row := make([]models.ShiftCode, days)
	for i := range row {
		row[i] = models.ShiftFree
	}
	return row
}

func monthFixture(key models.ScheduleKey, workers ...string) models.MonthDataModel {
	days := key.DaysInMonth()
	month := models.MonthDataModel{
		ScheduleKey: key,
		Shifts:      map[string][]models.ShiftCode{},
		MonthInfo: models.MonthInfo{
			Dates:          key.Dates(),
			ChildrenNumber: make([]int, days),
			ExtraWorkers:   make([]int, days),
			FrozenShifts:   []models.FrozenShift{},
		},
		EmployeeInfo: models.WorkersInfo{
			Type:     map[string]models.WorkerType{},
			Contract: map[string]models.ContractType{},
			Norm:     map[string]int{},
			Team:     map[string]string{},
		},
	}
	for _, worker := range workers {
		month.Shifts[worker] = freeRow(days)
		month.EmployeeInfo.Type[worker] = models.WorkerTypeNurse
		month.EmployeeInfo.Contract[worker] = models.ContractEmployment
		month.EmployeeInfo.Norm[worker] = 0
		month.EmployeeInfo.Team[worker] = "A"
	}
	return month
}

func scheduleFixture(key models.ScheduleKey, workers ...string) models.ScheduleDataModel {
	month := monthFixture(key, workers...)
	return models.ScheduleDataModel{
		ScheduleInfo: models.ScheduleInfo{UUID: "test", MonthNumber: key.Month, Year: key.Year},
		Shifts:       month.Shifts,
		MonthInfo:    month.MonthInfo,
		EmployeeInfo: month.EmployeeInfo,
	}
}

func kindErrors(errs []models.ScheduleError, kind models.ErrorKind) []models.ScheduleError {
	var out []models.ScheduleError
	for _, e := range errs {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// fakeGateway is an in-memory RevisionGateway recording every write.
type fakeGateway struct {
	mu     sync.Mutex
	months map[models.RevisionKey]models.MonthDataModel
	puts   []models.RevisionKey
	getErr error
	putErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{months: map[models.RevisionKey]models.MonthDataModel{}}
}

func (g *fakeGateway) Get(ctx context.Context, key models.RevisionKey) (*models.MonthDataModel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getErr != nil {
		return nil, g.getErr
	}
	month, ok := g.months[key]
	if !ok {
		return nil, nil
	}
	clone := month.Clone()
	return &clone, nil
}

func (g *fakeGateway) Put(ctx context.Context, key models.RevisionKey, month models.MonthDataModel) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.putErr != nil {
		return g.putErr
	}
	g.months[key] = month.Clone()
	g.puts = append(g.puts, key)
	return nil
}

func (g *fakeGateway) ListAll(ctx context.Context) (map[models.RevisionKey]models.MonthDataModel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[models.RevisionKey]models.MonthDataModel, len(g.months))
	for k, v := range g.months {
		out[k] = v.Clone()
	}
	return out, nil
}

func (g *fakeGateway) putCount(key models.RevisionKey) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, k := range g.puts {
		if k == key {
			n++
		}
	}
	return n
}
