package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mzurek/ward-roster-api/internal/models"
	apperrors "github.com/mzurek/ward-roster-api/pkg/errors"
)

// ViewCache caches assembled schedule views. Get reports whether the lookup
// was a hit.
type ViewCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// engineObserver receives engine run timings.
type engineObserver interface {
	ObserveEngineRun(rule string, duration time.Duration)
}

// ScheduleView is the full result of one engine pass over a snapshot:
// the week-aligned schedule, per-worker hour aggregates and the complete
// violation set grouped by rule kind.
type ScheduleView struct {
	Schedule models.ScheduleDataModel                 `json:"schedule"`
	Hours    map[string]models.WorkerHourInfo         `json:"hours"`
	Errors   map[models.ErrorKind][]ErrorMessageModel `json:"errors"`

	// FromCache marks views served from the view cache. Not serialized.
	FromCache bool `json:"-"`
}

// RosterService orchestrates the scheduling pipeline: load and extend a
// month, run the hour and validation engines, apply edits with undo/redo,
// and save through the revision coordinator.
type RosterService struct {
	revisions *RevisionService
	extender  *ExtendService
	hours     *HoursService
	validator *ValidatorService
	edits     *EditService
	cache     ViewCache
	metrics   engineObserver
	logger    *zap.Logger

	cacheTTL        time.Duration
	historyCapacity int

	mu      sync.Mutex
	tracked map[models.RevisionKey]*trackedSchedule
}

// trackedSchedule couples one revision's edit history with the primary rows
// its hour accounting compares against. mu serializes all access on a
// per-revision basis so concurrent requests for the same key cannot race on
// the load-and-install sequence.
type trackedSchedule struct {
	mu          sync.Mutex
	history     *History
	primaryRows map[string][]models.ShiftCode
}

// RosterConfig tunes the orchestrator.
type RosterConfig struct {
	HistoryCapacity int
	CacheTTL        time.Duration
}

// NewRosterService wires the pipeline.
func NewRosterService(
	revisions *RevisionService,
	extender *ExtendService,
	hours *HoursService,
	validator *ValidatorService,
	edits *EditService,
	cache ViewCache,
	metrics engineObserver,
	logger *zap.Logger,
	cfg RosterConfig,
) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = DefaultHistoryCapacity
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &RosterService{
		revisions:       revisions,
		extender:        extender,
		hours:           hours,
		validator:       validator,
		edits:           edits,
		cache:           cache,
		metrics:         metrics,
		logger:          logger,
		cacheTTL:        cfg.CacheTTL,
		historyCapacity: cfg.HistoryCapacity,
	}
}

// Assemble returns the current view of a month revision. When the revision
// has an edit history the cursor snapshot wins; otherwise the month is loaded
// from storage, extended to week boundaries and fed through the engine.
func (s *RosterService) Assemble(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*ScheduleView, error) {
	tracked := s.trackedFor(key.RevisionKey(t))
	tracked.mu.Lock()
	defer tracked.mu.Unlock()
	return s.assembleLocked(ctx, key, t, tracked)
}

// assembleLocked runs the load-and-install sequence. Callers hold tracked.mu
// so a concurrent request for the same revision cannot install a second
// initial snapshot.
func (s *RosterService) assembleLocked(ctx context.Context, key models.ScheduleKey, t models.RevisionType, tracked *trackedSchedule) (*ScheduleView, error) {
	if snapshot, ok := tracked.history.Current(); ok {
		return s.compute(snapshot, tracked.primaryRows), nil
	}

	if view, ok := s.cachedView(ctx, key, t); ok {
		return view, nil
	}

	snapshot, primaryRows, err := s.loadSnapshot(ctx, key, t)
	if err != nil {
		return nil, err
	}
	tracked.primaryRows = primaryRows
	tracked.history.Push(snapshot)

	view := s.compute(snapshot, primaryRows)
	s.storeView(ctx, key, t, view)
	return view, nil
}

// ApplyEdit runs one pure edit transition, records the snapshot and re-runs
// the engine over it.
func (s *RosterService) ApplyEdit(ctx context.Context, key models.ScheduleKey, t models.RevisionType, edit ScheduleEdit) (*ScheduleView, error) {
	tracked := s.trackedFor(key.RevisionKey(t))
	tracked.mu.Lock()
	defer tracked.mu.Unlock()
	current, ok := tracked.history.Current()
	if !ok {
		if _, err := s.assembleLocked(ctx, key, t, tracked); err != nil {
			return nil, err
		}
		current, _ = tracked.history.Current()
	}

	next, err := s.edits.Apply(current, edit)
	if err != nil {
		return nil, err
	}
	tracked.history.Push(next)
	s.invalidateView(ctx, key, t)
	return s.compute(next, tracked.primaryRows), nil
}

// Undo steps the revision's history back one snapshot.
func (s *RosterService) Undo(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*ScheduleView, error) {
	tracked := s.trackedFor(key.RevisionKey(t))
	tracked.mu.Lock()
	defer tracked.mu.Unlock()
	snapshot, ok := tracked.history.Undo()
	if !ok {
		return nil, apperrors.Clone(apperrors.ErrConflict, "nothing to undo")
	}
	s.invalidateView(ctx, key, t)
	return s.compute(snapshot, tracked.primaryRows), nil
}

// Redo steps the revision's history forward one snapshot.
func (s *RosterService) Redo(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*ScheduleView, error) {
	tracked := s.trackedFor(key.RevisionKey(t))
	tracked.mu.Lock()
	defer tracked.mu.Unlock()
	snapshot, ok := tracked.history.Redo()
	if !ok {
		return nil, apperrors.Clone(apperrors.ErrConflict, "nothing to redo")
	}
	s.invalidateView(ctx, key, t)
	return s.compute(snapshot, tracked.primaryRows), nil
}

// Save persists the revision's current snapshot through the save coordinator
// and refreshes the primary comparison rows.
func (s *RosterService) Save(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*ScheduleView, error) {
	tracked := s.trackedFor(key.RevisionKey(t))
	tracked.mu.Lock()
	defer tracked.mu.Unlock()
	snapshot, ok := tracked.history.Current()
	if !ok {
		return nil, apperrors.Clone(apperrors.ErrValidation, "no schedule loaded for this revision")
	}
	written, err := s.revisions.SaveSchedule(ctx, t, snapshot)
	if err != nil {
		return nil, err
	}
	s.invalidateView(ctx, key, t)
	s.invalidateView(ctx, key, t.Opposite())
	s.invalidateView(ctx, key.NextMonthKey(), t)

	// Every revision the coordinator rewrote other than the one being saved
	// has a superseded in-memory history that would keep serving pre-save
	// snapshots.
	own := key.RevisionKey(t)
	for _, w := range written {
		if w != own {
			s.dropTracked(w)
		}
	}

	// A save may rewrite the primary revision, so the norm baseline is
	// reloaded from storage.
	if rows, err := s.primaryRows(ctx, key); err == nil {
		tracked.primaryRows = rows
	}
	return s.compute(snapshot, tracked.primaryRows), nil
}

// Replace installs a client-supplied snapshot as the new working state of a
// revision.
func (s *RosterService) Replace(ctx context.Context, key models.ScheduleKey, t models.RevisionType, schedule models.ScheduleDataModel) (*ScheduleView, error) {
	if err := models.ValidateSchedule(schedule, s.edits.catalogue); err != nil {
		return nil, err
	}
	tracked := s.trackedFor(key.RevisionKey(t))
	tracked.mu.Lock()
	defer tracked.mu.Unlock()
	if tracked.primaryRows == nil {
		if t == models.RevisionPrimary {
			tracked.primaryRows = models.CloneShifts(schedule.Shifts)
		} else if rows, err := s.primaryRows(ctx, key); err == nil && rows != nil {
			tracked.primaryRows = rows
		} else {
			tracked.primaryRows = models.CloneShifts(schedule.Shifts)
		}
	}
	tracked.history.Push(schedule.Clone())
	s.invalidateView(ctx, key, t)
	return s.compute(schedule, tracked.primaryRows), nil
}

// ImportMonth persists an uploaded month through the save coordinator,
// drops any tracked history for the month and reassembles it from storage.
func (s *RosterService) ImportMonth(ctx context.Context, month models.MonthDataModel, t models.RevisionType) (*ScheduleView, error) {
	if _, err := s.revisions.SaveBothRevisionsIfNeeded(ctx, t, month); err != nil {
		return nil, err
	}
	key := month.ScheduleKey
	s.dropTracked(key.RevisionKey(models.RevisionPrimary))
	s.dropTracked(key.RevisionKey(models.RevisionActual))
	s.invalidateView(ctx, key, models.RevisionPrimary)
	s.invalidateView(ctx, key, models.RevisionActual)
	return s.Assemble(ctx, key, t)
}

// compute is the single pure engine pass shared by every entry point.
func (s *RosterService) compute(snapshot models.ScheduleDataModel, primaryRows map[string][]models.ShiftCode) *ScheduleView {
	start := time.Now()
	hours := s.hours.CalculateAll(snapshot, primaryRows)
	violations := s.validator.Validate(snapshot, primaryRows)
	if s.metrics != nil {
		s.metrics.ObserveEngineRun("full", time.Since(start))
	}
	return &ScheduleView{
		Schedule: snapshot,
		Hours:    hours,
		Errors:   RenderErrors(violations, snapshot),
	}
}

// loadSnapshot materialises the week-aligned snapshot of a month revision
// together with the aligned primary rows used as the norm baseline.
func (s *RosterService) loadSnapshot(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (models.ScheduleDataModel, map[string][]models.ShiftCode, error) {
	month, err := s.loadMonth(ctx, key, t)
	if err != nil {
		return models.ScheduleDataModel{}, nil, err
	}
	prev, next, err := s.revisions.FetchNeighbours(ctx, month, t)
	if err != nil {
		return models.ScheduleDataModel{}, nil, err
	}
	snapshot, err := s.extender.Extend(prev, month, next)
	if err != nil {
		return models.ScheduleDataModel{}, nil, err
	}

	primaryRows := snapshot.Shifts
	if t != models.RevisionPrimary {
		rows, err := s.primaryRows(ctx, key)
		if err != nil {
			return models.ScheduleDataModel{}, nil, err
		}
		if rows != nil {
			primaryRows = rows
		}
	}
	return snapshot, models.CloneShifts(primaryRows), nil
}

// primaryRows loads the primary revision and extends it with free-day padding
// so its rows align index for index with the actual snapshot.
func (s *RosterService) primaryRows(ctx context.Context, key models.ScheduleKey) (map[string][]models.ShiftCode, error) {
	primary, err := s.revisions.GetRevision(ctx, key, models.RevisionPrimary)
	if err != nil || primary == nil {
		return nil, err
	}
	extended, err := s.extender.Extend(models.MonthDataModel{}, *primary, models.MonthDataModel{})
	if err != nil {
		return nil, err
	}
	return extended.Shifts, nil
}

func (s *RosterService) loadMonth(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (models.MonthDataModel, error) {
	stored, err := s.revisions.GetRevision(ctx, key, t)
	if err != nil {
		return models.MonthDataModel{}, err
	}
	if stored != nil {
		return *stored, nil
	}

	base := models.MonthDataModel{ScheduleKey: key}
	if opposite, err := s.revisions.GetRevision(ctx, key, t.Opposite()); err == nil && opposite != nil {
		base = *opposite
	}
	return s.revisions.FetchOrCreate(ctx, key, t, base)
}

func (s *RosterService) trackedFor(key models.RevisionKey) *trackedSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracked == nil {
		s.tracked = make(map[models.RevisionKey]*trackedSchedule)
	}
	if _, ok := s.tracked[key]; !ok {
		s.tracked[key] = &trackedSchedule{history: NewHistory(s.historyCapacity)}
	}
	return s.tracked[key]
}

func (s *RosterService) dropTracked(key models.RevisionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tracked, key)
}

func (s *RosterService) cachedView(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*ScheduleView, bool) {
	if s.cache == nil {
		return nil, false
	}
	var view ScheduleView
	hit, err := s.cache.Get(ctx, viewCacheKey(key, t), &view)
	if err != nil || !hit {
		return nil, false
	}
	view.FromCache = true
	return &view, true
}

func (s *RosterService) storeView(ctx context.Context, key models.ScheduleKey, t models.RevisionType, view *ScheduleView) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, viewCacheKey(key, t), view, s.cacheTTL); err != nil {
		s.logger.Warn("schedule view cache write failed", zap.Error(err))
	}
}

func (s *RosterService) invalidateView(ctx context.Context, key models.ScheduleKey, t models.RevisionType) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, viewCacheKey(key, t)); err != nil {
		s.logger.Warn("schedule view cache invalidation failed", zap.Error(err))
	}
}

func viewCacheKey(key models.ScheduleKey, t models.RevisionType) string {
	return fmt.Sprintf("roster:view:%s", key.RevisionKey(t))
}
