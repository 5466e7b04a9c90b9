package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzurek/ward-roster-api/internal/dto"
	"github.com/mzurek/ward-roster-api/internal/models"
	"github.com/mzurek/ward-roster-api/internal/repository"
	"github.com/mzurek/ward-roster-api/pkg/jobs"
)

type fakeJobStore struct {
	jobs    map[string]*models.ExportJob
	updates []repository.UpdateExportJobParams
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: map[string]*models.ExportJob{}}
}

func (f *fakeJobStore) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = "job-1"
	}
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeJobStore) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobStore) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	f.updates = append(f.updates, params)
	job, ok := f.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (f *fakeJobStore) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	var out []models.ExportJob
	for _, job := range f.jobs {
		if job.Status == models.ExportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *fakeJobStore) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	return nil, nil
}

type fakeDispatcher struct {
	enqueued []jobs.Job
	err      error
}

func (f *fakeDispatcher) Enqueue(job jobs.Job) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, job)
	return nil
}

type fakeGenerator struct {
	result *ExportResult
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	return f.result, f.err
}

func exportRequest() dto.ExportRequest {
	return dto.ExportRequest{
		Type:     models.ExportTypeShiftTable,
		Year:     2021,
		Month:    1,
		Revision: models.RevisionActual,
		Format:   models.ExportFormatPDF,
	}
}

func TestCreateJobPersistsAndEnqueues(t *testing.T) {
	store := newFakeJobStore()
	queue := &fakeDispatcher{}
	svc := NewExportJobService(store, queue, nil, nil, ExportJobServiceConfig{})

	resp, err := svc.CreateJob(context.Background(), exportRequest(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, models.ExportStatusQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)
	assert.Equal(t, "user-1", store.jobs[resp.ID].CreatedBy)
}

func TestCreateJobValidatesRequest(t *testing.T) {
	svc := NewExportJobService(newFakeJobStore(), &fakeDispatcher{}, nil, nil, ExportJobServiceConfig{})

	cases := map[string]func(*dto.ExportRequest){
		"missing year":    func(r *dto.ExportRequest) { r.Year = 0 },
		"month too large": func(r *dto.ExportRequest) { r.Month = 12 },
		"bad revision":    func(r *dto.ExportRequest) { r.Revision = "draft" },
		"bad type":        func(r *dto.ExportRequest) { r.Type = "calendar" },
		"bad format":      func(r *dto.ExportRequest) { r.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := exportRequest()
			mutate(&req)
			_, err := svc.CreateJob(context.Background(), req, "user-1")
			assert.Error(t, err)
		})
	}
}

func TestCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	store := newFakeJobStore()
	queue := &fakeDispatcher{err: errors.New("queue full")}
	svc := NewExportJobService(store, queue, nil, nil, ExportJobServiceConfig{})

	_, err := svc.CreateJob(context.Background(), exportRequest(), "user-1")
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusFailed, store.jobs["job-1"].Status)
}

func TestGetStatusEnforcesCoordinatorOwnership(t *testing.T) {
	store := newFakeJobStore()
	store.jobs["job-1"] = &models.ExportJob{ID: "job-1", Status: models.ExportStatusProcessing, CreatedBy: "user-1"}
	svc := NewExportJobService(store, &fakeDispatcher{}, nil, nil, ExportJobServiceConfig{})

	resp, err := svc.GetStatus(context.Background(), "job-1", "user-1", models.RoleCoordinator)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusProcessing, resp.Status)

	_, err = svc.GetStatus(context.Background(), "job-1", "user-2", models.RoleCoordinator)
	assert.Error(t, err, "coordinators only see their own jobs")

	_, err = svc.GetStatus(context.Background(), "job-1", "user-2", models.RoleAdmin)
	assert.NoError(t, err, "admins see every job")

	_, err = svc.GetStatus(context.Background(), "missing", "user-1", models.RoleAdmin)
	assert.Error(t, err)
}

func TestWorkerHandleFinishesJob(t *testing.T) {
	store := newFakeJobStore()
	store.jobs["job-1"] = &models.ExportJob{ID: "job-1", Status: models.ExportStatusQueued, Params: models.ExportJobParams{Format: models.ExportFormatPDF}}
	worker := NewExportWorker(store, &fakeGenerator{result: &ExportResult{URL: "/api/v1/export/tok"}}, 3, nil)

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "job-1"}))

	job := store.jobs["job-1"]
	assert.Equal(t, models.ExportStatusFinished, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ResultURL)
	assert.Equal(t, "/api/v1/export/tok", *job.ResultURL)
	assert.NotNil(t, job.FinishedAt)
}

func TestWorkerHandleRequeuesUntilRetriesExhausted(t *testing.T) {
	store := newFakeJobStore()
	store.jobs["job-1"] = &models.ExportJob{ID: "job-1", Status: models.ExportStatusQueued}
	worker := NewExportWorker(store, &fakeGenerator{err: errors.New("render failed")}, 2, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusQueued, store.jobs["job-1"].Status, "early attempts go back to the queue")

	err = worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 2})
	require.Error(t, err)
	job := store.jobs["job-1"]
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "render failed")
}

func TestRecoverPendingJobsRequeues(t *testing.T) {
	store := newFakeJobStore()
	store.jobs["job-1"] = &models.ExportJob{ID: "job-1", Status: models.ExportStatusQueued}
	store.jobs["job-2"] = &models.ExportJob{ID: "job-2", Status: models.ExportStatusFinished}
	queue := &fakeDispatcher{}
	svc := NewExportJobService(store, queue, nil, nil, ExportJobServiceConfig{})

	svc.RecoverPendingJobs(context.Background())

	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "job-1", queue.enqueued[0].ID)
}
