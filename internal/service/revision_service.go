package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mzurek/ward-roster-api/internal/models"
)

// RevisionGateway is the persistence boundary for stored month revisions.
// Get reports absence as (nil, nil); multi-key writes are never transactional.
type RevisionGateway interface {
	Get(ctx context.Context, key models.RevisionKey) (*models.MonthDataModel, error)
	Put(ctx context.Context, key models.RevisionKey, month models.MonthDataModel) error
	ListAll(ctx context.Context) (map[models.RevisionKey]models.MonthDataModel, error)
}

// RevisionService coordinates which stored revisions a save must touch and
// synthesizes auto-generated months on first access.
type RevisionService struct {
	gateway   RevisionGateway
	extender  *ExtendService
	catalogue models.ShiftCatalogue
	logger    *zap.Logger
	now       func() time.Time
}

// NewRevisionService wires the coordinator.
func NewRevisionService(gateway RevisionGateway, extender *ExtendService, catalogue models.ShiftCatalogue, logger *zap.Logger) *RevisionService {
	if catalogue == nil {
		catalogue = models.DefaultShifts
	}
	if extender == nil {
		extender = NewExtendService(catalogue, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevisionService{
		gateway:   gateway,
		extender:  extender,
		catalogue: catalogue,
		logger:    logger,
		now:       time.Now,
	}
}

// SaveSchedule crops a week-aligned schedule to its month, persists the
// affected revisions, and stitches the borrowed leading days back into the
// next month's stored document. It returns every revision key it wrote so
// callers can invalidate superseded in-memory state.
func (s *RevisionService) SaveSchedule(ctx context.Context, t models.RevisionType, schedule models.ScheduleDataModel) ([]models.RevisionKey, error) {
	month, err := s.extender.Crop(schedule)
	if err != nil {
		return nil, err
	}
	written, err := s.SaveBothRevisionsIfNeeded(ctx, t, month)
	if err != nil {
		return written, err
	}

	_, fromNext := MissingFullWeekDays(month.ScheduleKey)
	if fromNext == 0 {
		return written, nil
	}
	nextKey := month.ScheduleKey.NextMonthKey().RevisionKey(t)
	stitched, err := s.updateNextMonthHead(ctx, nextKey, schedule, fromNext)
	return append(written, stitched...), err
}

// SaveBothRevisionsIfNeeded persists the month under its own revision kind
// and, unless the opposite revision is an already hand-edited document for a
// non-future month saved from the primary side, under the opposite kind too.
// Actual saves always propagate to primary: once a month has happened the
// realized schedule is the ground truth. Returns the revision keys written.
func (s *RevisionService) SaveBothRevisionsIfNeeded(ctx context.Context, t models.RevisionType, month models.MonthDataModel) ([]models.RevisionKey, error) {
	if month.IsEmpty() {
		return nil, nil
	}

	opposite := t.Opposite()
	oppositeMonth, err := s.gateway.Get(ctx, month.ScheduleKey.RevisionKey(opposite))
	if err != nil {
		return nil, err
	}

	var written []models.RevisionKey
	var errs []error
	if oppositeMonth == nil ||
		oppositeMonth.IsAutoGenerated ||
		t == models.RevisionActual ||
		month.ScheduleKey.IsInFuture(s.now()) {
		if err := s.saveRevision(ctx, opposite, month); err != nil {
			errs = append(errs, err)
		} else {
			written = append(written, month.ScheduleKey.RevisionKey(opposite))
		}
	}
	if err := s.saveRevision(ctx, t, month); err != nil {
		errs = append(errs, err)
	} else {
		written = append(written, month.ScheduleKey.RevisionKey(t))
	}
	// Both puts are independent; a failure of one never rolls back the other.
	return written, errors.Join(errs...)
}

func (s *RevisionService) saveRevision(ctx context.Context, t models.RevisionType, month models.MonthDataModel) error {
	if err := models.ValidateMonth(month, s.catalogue); err != nil {
		return err
	}
	key := month.ScheduleKey.RevisionKey(t)
	if err := s.gateway.Put(ctx, key, month); err != nil {
		s.logger.Warn("month revision put failed",
			zap.String("revision_key", string(key)), zap.Error(err))
		return err
	}
	return nil
}

// updateNextMonthHead overwrites the leading missingDays of the next month's
// stored document with the trailing borrowed days of the saved schedule.
func (s *RevisionService) updateNextMonthHead(ctx context.Context, key models.RevisionKey, schedule models.ScheduleDataModel, missingDays int) ([]models.RevisionKey, error) {
	next, err := s.gateway.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, nil
	}

	updated := next.Clone()
	for worker, row := range updated.Shifts {
		updated.Shifts[worker] = overwriteHead(row, schedule.Shifts[worker], missingDays)
	}
	updated.MonthInfo.ChildrenNumber = overwriteHead(updated.MonthInfo.ChildrenNumber, schedule.MonthInfo.ChildrenNumber, missingDays)
	updated.MonthInfo.ExtraWorkers = overwriteHead(updated.MonthInfo.ExtraWorkers, schedule.MonthInfo.ExtraWorkers, missingDays)

	if err := models.ValidateMonth(updated, s.catalogue); err != nil {
		return nil, err
	}
	_, t, err := models.ParseRevisionKey(key)
	if err != nil {
		return nil, err
	}
	return s.SaveBothRevisionsIfNeeded(ctx, t, updated)
}

// FetchOrCreate loads a month revision, synthesizing and persisting an
// auto-generated all-free month from the base when absent.
func (s *RevisionService) FetchOrCreate(ctx context.Context, key models.ScheduleKey, t models.RevisionType, base models.MonthDataModel) (models.MonthDataModel, error) {
	stored, err := s.GetRevision(ctx, key, t)
	if err != nil {
		return models.MonthDataModel{}, err
	}
	if stored != nil {
		return *stored, nil
	}
	month := models.NewEmptyMonth(key, base)
	if _, err := s.SaveBothRevisionsIfNeeded(ctx, t, month); err != nil {
		return models.MonthDataModel{}, err
	}
	return month, nil
}

// FetchNeighbours loads the adjacent months of a given month. The previous
// month is read at its actual revision; the next month at primary while it is
// still in the future, actual once it has started.
func (s *RevisionService) FetchNeighbours(ctx context.Context, month models.MonthDataModel, t models.RevisionType) (prev, next models.MonthDataModel, err error) {
	key := month.ScheduleKey

	prev, err = s.FetchOrCreate(ctx, key.PrevMonthKey(), models.RevisionActual, month)
	if err != nil {
		return models.MonthDataModel{}, models.MonthDataModel{}, err
	}

	nextKey := key.NextMonthKey()
	nextRevision := models.RevisionActual
	if nextKey.IsInFuture(s.now()) {
		nextRevision = models.RevisionPrimary
	}
	next, err = s.FetchOrCreate(ctx, nextKey, nextRevision, month)
	if err != nil {
		return models.MonthDataModel{}, models.MonthDataModel{}, err
	}
	return prev, next, nil
}

// GetRevision loads and structurally validates a stored month revision.
// Absence is a normal signal reported as nil.
func (s *RevisionService) GetRevision(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*models.MonthDataModel, error) {
	stored, err := s.gateway.Get(ctx, key.RevisionKey(t))
	if err != nil || stored == nil {
		return nil, err
	}
	if err := models.ValidateMonth(*stored, s.catalogue); err != nil {
		return nil, err
	}
	return stored, nil
}

// ListAll returns every stored month revision keyed by revision key.
func (s *RevisionService) ListAll(ctx context.Context) (map[models.RevisionKey]models.MonthDataModel, error) {
	return s.gateway.ListAll(ctx)
}

// overwriteHead copies the trailing count entries of src over the leading
// count entries of dst.
func overwriteHead[T any](dst, src []T, count int) []T {
	if count > len(dst) {
		count = len(dst)
	}
	if count > len(src) {
		count = len(src)
	}
	out := make([]T, len(dst))
	copy(out, dst)
	copy(out[:count], src[len(src)-count:])
	return out
}
