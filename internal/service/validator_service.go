package service

import (
	"go.uber.org/zap"

	"github.com/mzurek/ward-roster-api/internal/models"
)

const (
	dayWindowStart   = 6
	dayWindowEnd     = 22
	nightWindowStart = 22
	nightWindowEnd   = 6
	hoursPerDay      = 24
	daysPerWeek      = 7

	// longBreakHours is the minimum contiguous off-duty span each worker
	// needs within every week of the schedule.
	longBreakHours = 35
)

// ValidatorConfig tunes staffing minimums and overtime reporting.
type ValidatorConfig struct {
	// DayChildrenPerWorker is how many children one worker covers in the
	// 06-22 window.
	DayChildrenPerWorker int
	// NightChildrenPerWorker is how many children one worker covers in the
	// 22-06 window.
	NightChildrenPerWorker int
	// OvertimeToleranceHours suppresses over/undertime findings within the
	// tolerance band.
	OvertimeToleranceHours int
}

// DefaultValidatorConfig mirrors the ward's statutory staffing ratios.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		DayChildrenPerWorker:   3,
		NightChildrenPerWorker: 5,
		OvertimeToleranceHours: 0,
	}
}

// ValidatorService evaluates a week-aligned schedule against every
// scheduling rule and reports the complete violation set.
type ValidatorService struct {
	catalogue models.ShiftCatalogue
	hours     *HoursService
	cfg       ValidatorConfig
	logger    *zap.Logger
}

// NewValidatorService builds the validator.
func NewValidatorService(catalogue models.ShiftCatalogue, hours *HoursService, cfg ValidatorConfig, logger *zap.Logger) *ValidatorService {
	if catalogue == nil {
		catalogue = models.DefaultShifts
	}
	if hours == nil {
		hours = NewHoursService(catalogue)
	}
	if cfg.DayChildrenPerWorker <= 0 {
		cfg.DayChildrenPerWorker = 3
	}
	if cfg.NightChildrenPerWorker <= 0 {
		cfg.NightChildrenPerWorker = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidatorService{catalogue: catalogue, hours: hours, cfg: cfg, logger: logger}
}

// Validate runs the full rule catalogue over an immutable snapshot. Rule
// violations are always fully collected, never short-circuited, and the
// result order is deterministic for a given snapshot.
func (s *ValidatorService) Validate(schedule models.ScheduleDataModel, primary map[string][]models.ShiftCode) []models.ScheduleError {
	days := len(schedule.MonthInfo.Dates)
	workers := schedule.WorkerNames()
	cov := s.buildCoverage(schedule, workers, days)

	var errs []models.ScheduleError
	errs = append(errs, s.checkNurseCoverage(cov, days)...)
	errs = append(errs, s.checkDayStaffing(schedule, cov, days)...)
	errs = append(errs, s.checkNightStaffing(schedule, cov, days)...)
	errs = append(errs, s.checkShiftSequences(schedule, workers, days)...)
	errs = append(errs, s.checkLongBreaks(schedule, workers, days)...)
	errs = append(errs, s.checkWorkerTimes(schedule, workers, primary)...)
	errs = append(errs, s.checkUnknownCodes(schedule, workers)...)
	return errs
}

// coverage holds per-day, per-hour on-duty counts.
type coverage struct {
	nurses  [][]int
	workers [][]int
}

func (s *ValidatorService) buildCoverage(schedule models.ScheduleDataModel, workers []string, days int) coverage {
	cov := coverage{
		nurses:  make([][]int, days),
		workers: make([][]int, days),
	}
	for d := 0; d < days; d++ {
		cov.nurses[d] = make([]int, hoursPerDay)
		cov.workers[d] = make([]int, hoursPerDay)
	}
	for _, worker := range workers {
		isNurse := schedule.EmployeeInfo.Type[worker] == models.WorkerTypeNurse
		for d, code := range schedule.Shifts[worker] {
			shift, ok := s.catalogue[code]
			if !ok || !shift.IsWorking {
				continue
			}
			for h := shift.From; h < shift.From+shift.Duration; h++ {
				day, hour := d+h/hoursPerDay, h%hoursPerDay
				if day >= days {
					break
				}
				cov.workers[day][hour]++
				if isNurse {
					cov.nurses[day][hour]++
				}
			}
		}
	}
	return cov
}

func (s *ValidatorService) checkNurseCoverage(cov coverage, days int) []models.ScheduleError {
	var errs []models.ScheduleError
	for d := 0; d < days; d++ {
		segments := gapSegments(cov.nurses[d], 0, hoursPerDay, 1, 0)
		if len(segments) > 0 {
			errs = append(errs, models.NotEnoughNurses{Day: d, Segments: segments})
		}
	}
	return errs
}

func (s *ValidatorService) checkDayStaffing(schedule models.ScheduleDataModel, cov coverage, days int) []models.ScheduleError {
	var errs []models.ScheduleError
	for d := 0; d < days; d++ {
		required := requiredWorkers(dayValue(schedule.MonthInfo.ChildrenNumber, d), s.cfg.DayChildrenPerWorker)
		if required == 0 {
			continue
		}
		extra := dayValue(schedule.MonthInfo.ExtraWorkers, d)
		segments := gapSegments(cov.workers[d], dayWindowStart, dayWindowEnd, required, extra)
		if len(segments) == 0 {
			continue
		}
		actual := extra + minInWindow(cov.workers[d], dayWindowStart, dayWindowEnd)
		errs = append(errs, models.NotEnoughWorkersDay{Day: d, Required: required, Actual: actual, Segments: segments})
	}
	return errs
}

func (s *ValidatorService) checkNightStaffing(schedule models.ScheduleDataModel, cov coverage, days int) []models.ScheduleError {
	var errs []models.ScheduleError
	for d := 0; d < days; d++ {
		required := requiredWorkers(dayValue(schedule.MonthInfo.ChildrenNumber, d), s.cfg.NightChildrenPerWorker)
		if required == 0 {
			continue
		}
		// The night of day d spans 22-24 on d and 0-6 on d+1.
		counts := make([]int, 0, 8)
		for h := nightWindowStart; h < hoursPerDay; h++ {
			counts = append(counts, cov.workers[d][h])
		}
		if d+1 < days {
			for h := 0; h < nightWindowEnd; h++ {
				counts = append(counts, cov.workers[d+1][h])
			}
		}
		segments := gapSegments(counts, 0, len(counts), required, 0)
		if len(segments) == 0 {
			continue
		}
		for i := range segments {
			segments[i].From = (nightWindowStart + segments[i].From) % hoursPerDay
			segments[i].To = (nightWindowStart + segments[i].To) % hoursPerDay
		}
		actual := minInWindow(counts, 0, len(counts))
		errs = append(errs, models.NotEnoughWorkersNight{Day: d, Required: required, Actual: actual, Segments: segments})
	}
	return errs
}

func (s *ValidatorService) checkShiftSequences(schedule models.ScheduleDataModel, workers []string, days int) []models.ScheduleError {
	var errs []models.ScheduleError
	for d := 0; d+1 < days; d++ {
		for _, worker := range workers {
			row := schedule.Shifts[worker]
			if d+1 >= len(row) {
				continue
			}
			prev, prevOK := s.catalogue[row[d]]
			next, nextOK := s.catalogue[row[d+1]]
			if !prevOK || !nextOK || !prev.IsWorking || !next.IsWorking {
				continue
			}
			rest := restBetween(prev, next)
			if rest >= prev.RequiredRest {
				continue
			}
			errs = append(errs, models.DisallowedShiftSequence{
				Worker:        worker,
				Day:           d,
				Preceding:     prev.Code,
				Succeeding:    next.Code,
				HoursTooEarly: prev.RequiredRest - rest,
			})
		}
	}
	return errs
}

func (s *ValidatorService) checkLongBreaks(schedule models.ScheduleDataModel, workers []string, days int) []models.ScheduleError {
	var errs []models.ScheduleError
	weeks := days / daysPerWeek
	for w := 0; w < weeks; w++ {
		weekStart := w * daysPerWeek * hoursPerDay
		weekEnd := weekStart + daysPerWeek*hoursPerDay
		for _, worker := range workers {
			if s.longestBreak(schedule.Shifts[worker], weekStart, weekEnd) < longBreakHours {
				errs = append(errs, models.LackingLongBreak{Worker: worker, Week: w})
			}
		}
	}
	return errs
}

// longestBreak finds the longest contiguous off-duty span, in hours, inside
// the [start, end) hour window of the schedule timeline.
func (s *ValidatorService) longestBreak(row []models.ShiftCode, start, end int) int {
	type interval struct{ from, to int }
	var busy []interval
	for d, code := range row {
		shift, ok := s.catalogue[code]
		if !ok || !shift.IsWorking {
			continue
		}
		from := d*hoursPerDay + shift.From
		to := from + shift.Duration
		if to <= start || from >= end {
			continue
		}
		if from < start {
			from = start
		}
		if to > end {
			to = end
		}
		busy = append(busy, interval{from, to})
	}
	// Rows are walked day by day, so intervals are already ordered by start.
	longest, cursor := 0, start
	for _, b := range busy {
		if b.from-cursor > longest {
			longest = b.from - cursor
		}
		if b.to > cursor {
			cursor = b.to
		}
	}
	if end-cursor > longest {
		longest = end - cursor
	}
	return longest
}

func (s *ValidatorService) checkWorkerTimes(schedule models.ScheduleDataModel, workers []string, primary map[string][]models.ShiftCode) []models.ScheduleError {
	hours := s.hours.CalculateAll(schedule, primary)
	var errs []models.ScheduleError
	for _, worker := range workers {
		info := hours[worker]
		switch {
		case info.Overtime < -s.cfg.OvertimeToleranceHours:
			errs = append(errs, models.WorkerUnderTime{Worker: worker, Hours: -info.Overtime})
		case info.Overtime > s.cfg.OvertimeToleranceHours:
			errs = append(errs, models.WorkerOvertime{Worker: worker, Hours: info.Overtime})
		}
	}
	return errs
}

func (s *ValidatorService) checkUnknownCodes(schedule models.ScheduleDataModel, workers []string) []models.ScheduleError {
	var errs []models.ScheduleError
	for _, worker := range workers {
		for d, code := range schedule.Shifts[worker] {
			if !s.catalogue.Contains(code) {
				errs = append(errs, models.UnknownShiftCode{Worker: worker, Day: d, Actual: string(code)})
			}
		}
	}
	return errs
}

// gapSegments returns the contiguous sub-segments of [from, to) where the
// hourly count plus the flat bonus stays below the required minimum.
func gapSegments(counts []int, from, to, required, bonus int) []models.HourSegment {
	var segments []models.HourSegment
	open := -1
	for h := from; h < to; h++ {
		short := counts[h]+bonus < required
		if short && open < 0 {
			open = h
		}
		if !short && open >= 0 {
			segments = append(segments, models.HourSegment{From: open, To: h})
			open = -1
		}
	}
	if open >= 0 {
		segments = append(segments, models.HourSegment{From: open, To: to})
	}
	return segments
}

// restBetween computes the off-duty hours between a shift on day d and a
// shift on day d+1.
func restBetween(prev, next models.Shift) int {
	prevEnd := prev.From + prev.Duration // on the day-d timeline
	nextStart := hoursPerDay + next.From
	rest := nextStart - prevEnd
	if rest < 0 {
		return 0
	}
	return rest
}

func requiredWorkers(children, perWorker int) int {
	if children <= 0 {
		return 0
	}
	return (children + perWorker - 1) / perWorker
}

func dayValue(values []int, day int) int {
	if day < 0 || day >= len(values) {
		return 0
	}
	return values[day]
}

func minInWindow(counts []int, from, to int) int {
	if from >= to || from >= len(counts) {
		return 0
	}
	minimum := counts[from]
	for h := from + 1; h < to && h < len(counts); h++ {
		if counts[h] < minimum {
			minimum = counts[h]
		}
	}
	return minimum
}
