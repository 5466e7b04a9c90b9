package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mzurek/ward-roster-api/internal/models"
	"github.com/mzurek/ward-roster-api/pkg/export"
	"github.com/mzurek/ward-roster-api/pkg/storage"
)

type scheduleAssembler interface {
	Assemble(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*ScheduleView, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders schedule views into shift-table and work-hour
// documents and persists the rendered files.
type ExportService struct {
	roster  scheduleAssembler
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(roster scheduleAssembler, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		roster:  roster,
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the dataset for a job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	key := job.Params.Key()
	name := fmt.Sprintf("%s_%04d-%02d_%s_%s.%s", strings.ToLower(string(job.Type)), key.Year, key.Month+1, job.Params.Revision, timestamp, job.Params.Format)
	return name
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	view, err := s.roster.Assemble(ctx, job.Params.Key(), job.Params.Revision)
	if err != nil {
		return export.Dataset{}, "", err
	}
	switch job.Type {
	case models.ExportTypeShiftTable:
		return buildShiftTableDataset(view, job.Params.Key())
	case models.ExportTypeWorkHours:
		return buildWorkHoursDataset(view, job.Params.Key())
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export type %s", job.Type)
	}
}

// buildShiftTableDataset renders the month grid: one row per worker, one
// column per calendar day, nurses before other caretakers and names ascending
// within each group.
func buildShiftTableDataset(view *ScheduleView, key models.ScheduleKey) (export.Dataset, string, error) {
	start, end := currentMonthRange(view.Schedule.MonthInfo.Dates, key)

	headers := []string{"Worker"}
	for day := 1; day <= end-start; day++ {
		headers = append(headers, strconv.Itoa(day))
	}

	rows := make([]map[string]string, 0, len(view.Schedule.Shifts))
	for _, worker := range exportOrder(view.Schedule) {
		row := map[string]string{"Worker": worker}
		shifts := view.Schedule.Shifts[worker]
		for i := start; i < end && i < len(shifts); i++ {
			row[strconv.Itoa(i-start+1)] = string(shifts[i])
		}
		rows = append(rows, row)
	}

	title := fmt.Sprintf("Shift table %04d-%02d", key.Year, key.Month+1)
	return export.Dataset{Headers: headers, Rows: rows}, title, nil
}

// buildWorkHoursDataset renders the hour accounting summary per worker.
func buildWorkHoursDataset(view *ScheduleView, key models.ScheduleKey) (export.Dataset, string, error) {
	headers := []string{"Worker", "Type", "Required", "Actual", "Overtime"}
	rows := make([]map[string]string, 0, len(view.Hours))
	for _, worker := range exportOrder(view.Schedule) {
		info := view.Hours[worker]
		rows = append(rows, map[string]string{
			"Worker":   worker,
			"Type":     string(view.Schedule.EmployeeInfo.Type[worker]),
			"Required": strconv.Itoa(info.Required),
			"Actual":   strconv.Itoa(info.Actual),
			"Overtime": strconv.Itoa(info.Overtime),
		})
	}
	title := fmt.Sprintf("Work hours %04d-%02d", key.Year, key.Month+1)
	return export.Dataset{Headers: headers, Rows: rows}, title, nil
}

// exportOrder lists workers nurses first, then the rest, each group sorted by
// name.
func exportOrder(schedule models.ScheduleDataModel) []string {
	var nurses, others []string
	for worker := range schedule.Shifts {
		if schedule.EmployeeInfo.Type[worker] == models.WorkerTypeNurse {
			nurses = append(nurses, worker)
		} else {
			others = append(others, worker)
		}
	}
	sort.Strings(nurses)
	sort.Strings(others)
	return append(nurses, others...)
}
