package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzurek/ward-roster-api/internal/models"
)

func newRosterFixture(t *testing.T, gateway *fakeGateway) *RosterService {
	t.Helper()
	extender := NewExtendService(models.DefaultShifts, nil)
	hours := NewHoursService(models.DefaultShifts)
	validator := NewValidatorService(models.DefaultShifts, hours, DefaultValidatorConfig(), nil)
	edits := NewEditService(models.DefaultShifts)
	revisions := NewRevisionService(gateway, extender, models.DefaultShifts, nil)
	revisions.now = func() time.Time { return march2021 }
	return NewRosterService(revisions, extender, hours, validator, edits, nil, nil, nil, RosterConfig{})
}

func seedFebruary(gateway *fakeGateway) {
	month := monthFixture(febKey, "Anna")
	month.Shifts["Anna"] = rosterRow()
	month.EmployeeInfo.Norm["Anna"] = 128
	gateway.months[febKey.RevisionKey(models.RevisionPrimary)] = month
	gateway.months[febKey.RevisionKey(models.RevisionActual)] = month.Clone()
}

func TestAssembleComputesHoursAndErrors(t *testing.T) {
	gateway := newFakeGateway()
	seedFebruary(gateway)
	roster := newRosterFixture(t, gateway)

	view, err := roster.Assemble(context.Background(), febKey, models.RevisionActual)
	require.NoError(t, err)

	assert.Equal(t, models.WorkerHourInfo{Required: 128, Actual: 152, Overtime: 24}, view.Hours["Anna"])
	assert.Len(t, view.Schedule.MonthInfo.Dates, 28)
	assert.NotEmpty(t, view.Errors[models.KindWorkerOvertime])
}

func TestAssembleSynthesizesMissingMonthFromOpposite(t *testing.T) {
	gateway := newFakeGateway()
	month := monthFixture(febKey, "Anna")
	month.Shifts["Anna"] = rosterRow()
	month.EmployeeInfo.Norm["Anna"] = 128
	gateway.months[febKey.RevisionKey(models.RevisionPrimary)] = month
	roster := newRosterFixture(t, gateway)

	view, err := roster.Assemble(context.Background(), febKey, models.RevisionActual)
	require.NoError(t, err)

	require.Contains(t, view.Schedule.Shifts, "Anna", "worker roster is taken from the opposite revision")
	for _, code := range view.Schedule.Shifts["Anna"] {
		assert.Equal(t, models.ShiftFree, code)
	}
	assert.True(t, view.Schedule.IsAutoGenerated)
}

func TestApplyEditRecomputesView(t *testing.T) {
	gateway := newFakeGateway()
	seedFebruary(gateway)
	roster := newRosterFixture(t, gateway)

	_, err := roster.Assemble(context.Background(), febKey, models.RevisionActual)
	require.NoError(t, err)

	view, err := roster.ApplyEdit(context.Background(), febKey, models.RevisionActual,
		ChangeShiftEdit{Worker: "Anna", Day: 13, Code: models.ShiftDay})
	require.NoError(t, err)

	assert.Equal(t, models.WorkerHourInfo{Required: 128, Actual: 164, Overtime: 36}, view.Hours["Anna"])
}

func TestUndoRedoRestoreExactViews(t *testing.T) {
	gateway := newFakeGateway()
	seedFebruary(gateway)
	roster := newRosterFixture(t, gateway)
	ctx := context.Background()

	_, err := roster.Assemble(ctx, febKey, models.RevisionActual)
	require.NoError(t, err)

	afterFirst, err := roster.ApplyEdit(ctx, febKey, models.RevisionActual,
		ChangeShiftEdit{Worker: "Anna", Day: 20, Code: models.ShiftMorning})
	require.NoError(t, err)

	afterSecond, err := roster.ApplyEdit(ctx, febKey, models.RevisionActual,
		ChangeShiftEdit{Worker: "Anna", Day: 20, Code: models.ShiftAfternoon})
	require.NoError(t, err)

	undone, err := roster.Undo(ctx, febKey, models.RevisionActual)
	require.NoError(t, err)
	assert.Equal(t, afterFirst, undone, "undo must restore the previous view exactly")

	redone, err := roster.Redo(ctx, febKey, models.RevisionActual)
	require.NoError(t, err)
	assert.Equal(t, afterSecond, redone, "redo must restore the undone view exactly")
}

func TestUndoWithoutHistoryIsConflict(t *testing.T) {
	gateway := newFakeGateway()
	seedFebruary(gateway)
	roster := newRosterFixture(t, gateway)
	ctx := context.Background()

	_, err := roster.Undo(ctx, febKey, models.RevisionActual)
	assert.Error(t, err, "nothing loaded yet")

	_, err = roster.Assemble(ctx, febKey, models.RevisionActual)
	require.NoError(t, err)
	_, err = roster.Undo(ctx, febKey, models.RevisionActual)
	assert.Error(t, err, "the initial snapshot cannot be undone past")

	_, err = roster.Redo(ctx, febKey, models.RevisionActual)
	assert.Error(t, err, "nothing to redo")
}

func TestSavePersistsCurrentSnapshot(t *testing.T) {
	gateway := newFakeGateway()
	seedFebruary(gateway)
	roster := newRosterFixture(t, gateway)
	ctx := context.Background()

	_, err := roster.Assemble(ctx, febKey, models.RevisionActual)
	require.NoError(t, err)
	_, err = roster.ApplyEdit(ctx, febKey, models.RevisionActual,
		ChangeShiftEdit{Worker: "Anna", Day: 13, Code: models.ShiftDay})
	require.NoError(t, err)

	view, err := roster.Save(ctx, febKey, models.RevisionActual)
	require.NoError(t, err)
	assert.Equal(t, 164, view.Hours["Anna"].Actual)

	stored, err := gateway.Get(ctx, febKey.RevisionKey(models.RevisionActual))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.ShiftDay, stored.Shifts["Anna"][13])

	primary, err := gateway.Get(ctx, febKey.RevisionKey(models.RevisionPrimary))
	require.NoError(t, err)
	assert.Equal(t, models.ShiftDay, primary.Shifts["Anna"][13], "actual saves propagate to primary")
}

func TestSaveWithoutLoadedScheduleFails(t *testing.T) {
	gateway := newFakeGateway()
	roster := newRosterFixture(t, gateway)

	_, err := roster.Save(context.Background(), febKey, models.RevisionActual)
	assert.Error(t, err)
}

func TestReplaceInstallsClientSnapshot(t *testing.T) {
	gateway := newFakeGateway()
	seedFebruary(gateway)
	roster := newRosterFixture(t, gateway)
	ctx := context.Background()

	replacement := scheduleFixture(febKey, "Anna")
	replacement.Shifts["Anna"] = rosterRow()
	replacement.Shifts["Anna"][13] = models.ShiftDay
	replacement.EmployeeInfo.Norm["Anna"] = 128

	view, err := roster.Replace(ctx, febKey, models.RevisionActual, replacement)
	require.NoError(t, err)
	assert.Equal(t, 164, view.Hours["Anna"].Actual)

	malformed := scheduleFixture(febKey, "Anna")
	malformed.MonthInfo.Dates = malformed.MonthInfo.Dates[:10]
	_, err = roster.Replace(ctx, febKey, models.RevisionActual, malformed)
	assert.Error(t, err, "schedules must span whole weeks")
}

func TestReplaceReportsUnknownCodesAsWarnings(t *testing.T) {
	gateway := newFakeGateway()
	seedFebruary(gateway)
	roster := newRosterFixture(t, gateway)

	replacement := scheduleFixture(febKey, "Anna")
	replacement.Shifts["Anna"][5] = models.ShiftCode("X")

	view, err := roster.Replace(context.Background(), febKey, models.RevisionActual, replacement)
	require.NoError(t, err, "a stray code is a warning, not a rejection")
	assert.NotEmpty(t, view.Errors[models.KindUnknownShiftCode])
}

func TestImportMonthResetsHistory(t *testing.T) {
	gateway := newFakeGateway()
	seedFebruary(gateway)
	roster := newRosterFixture(t, gateway)
	ctx := context.Background()

	_, err := roster.Assemble(ctx, febKey, models.RevisionActual)
	require.NoError(t, err)
	_, err = roster.ApplyEdit(ctx, febKey, models.RevisionActual,
		ChangeShiftEdit{Worker: "Anna", Day: 0, Code: models.ShiftNight})
	require.NoError(t, err)

	imported := monthFixture(febKey, "Beata")
	imported.Shifts["Beata"][0] = models.ShiftDay
	view, err := roster.ImportMonth(ctx, imported, models.RevisionActual)
	require.NoError(t, err)

	assert.Contains(t, view.Schedule.Shifts, "Beata")
	assert.NotContains(t, view.Schedule.Shifts, "Anna", "import replaces the tracked month")

	_, err = roster.Undo(ctx, febKey, models.RevisionActual)
	assert.Error(t, err, "import clears the edit history")
}

func TestConcurrentAssembleLoadsOnce(t *testing.T) {
	gateway := newFakeGateway()
	seedFebruary(gateway)
	roster := newRosterFixture(t, gateway)
	ctx := context.Background()

	const workers = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	views := make([]*ScheduleView, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			views[i], errs[i] = roster.Assemble(ctx, febKey, models.RevisionActual)
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, views[0], views[i])
	}

	_, err := roster.Undo(ctx, febKey, models.RevisionActual)
	assert.Error(t, err, "concurrent loads must install a single initial snapshot")
}

func TestSaveActualDropsSupersededPrimaryHistory(t *testing.T) {
	gateway := newFakeGateway()
	seedFebruary(gateway)
	roster := newRosterFixture(t, gateway)
	ctx := context.Background()

	before, err := roster.Assemble(ctx, febKey, models.RevisionPrimary)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftFree, before.Schedule.Shifts["Anna"][13])

	_, err = roster.Assemble(ctx, febKey, models.RevisionActual)
	require.NoError(t, err)
	_, err = roster.ApplyEdit(ctx, febKey, models.RevisionActual,
		ChangeShiftEdit{Worker: "Anna", Day: 13, Code: models.ShiftDay})
	require.NoError(t, err)
	_, err = roster.Save(ctx, febKey, models.RevisionActual)
	require.NoError(t, err)

	after, err := roster.Assemble(ctx, febKey, models.RevisionPrimary)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftDay, after.Schedule.Shifts["Anna"][13],
		"a propagating save must retire the loaded primary snapshot")
}
