package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mzurek/ward-roster-api/internal/models"
	apperrors "github.com/mzurek/ward-roster-api/pkg/errors"
)

// Rows whose first cell matches one of these labels carry month metadata
// instead of worker shifts.
const (
	importChildrenLabel = "children"
	importExtraLabel    = "extra workers"
)

// ParseIssue describes a single recoverable problem found while reading an
// uploaded shift table.
type ParseIssue struct {
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// ImportResult is the parsed month together with the issues that were
// papered over during parsing.
type ImportResult struct {
	Month  models.MonthDataModel `json:"month"`
	Issues []ParseIssue          `json:"issues"`
}

// ImportService parses uploaded CSV shift tables into month data. Unknown
// shift codes degrade to free days and are reported as issues rather than
// aborting the import.
type ImportService struct {
	catalogue models.ShiftCatalogue
	logger    *zap.Logger
}

// NewImportService builds the import parser.
func NewImportService(catalogue models.ShiftCatalogue, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{catalogue: catalogue, logger: logger}
}

// Parse reads a whole shift table for the given month. The first row is a
// header (worker column plus one column per day); following rows are either
// metadata rows (children, extra workers) or per-worker shift rows.
func (s *ImportService) Parse(key models.ScheduleKey, filename string, r io.Reader) (*ImportResult, error) {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".csv" {
		return nil, apperrors.Clone(apperrors.ErrUnsupportedFileType, fmt.Sprintf("unsupported file type %q, expected .csv", ext))
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(err, "IMPORT_READ", 400, "failed to read uploaded file")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apperrors.Clone(apperrors.ErrEmptyFile, "uploaded file is empty")
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(err, "IMPORT_PARSE", 400, "malformed csv content")
	}
	if len(records) < 2 {
		return nil, apperrors.Clone(apperrors.ErrEmptyFile, "shift table has no data rows")
	}

	days := key.DaysInMonth()
	month := models.MonthDataModel{
		ScheduleKey: key,
		Shifts:      map[string][]models.ShiftCode{},
		MonthInfo: models.MonthInfo{
			Dates:          key.Dates(),
			ChildrenNumber: make([]int, days),
			ExtraWorkers:   make([]int, days),
		},
		EmployeeInfo: models.WorkersInfo{
			Type:     map[string]models.WorkerType{},
			Contract: map[string]models.ContractType{},
			Norm:     map[string]int{},
			Team:     map[string]string{},
		},
	}

	var issues []ParseIssue
	for i, record := range records[1:] {
		rowNum := i + 2
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(record[0]))
		switch label {
		case importChildrenLabel:
			month.MonthInfo.ChildrenNumber, issues = parseNumberRow(record, rowNum, days, issues)
		case importExtraLabel:
			month.MonthInfo.ExtraWorkers, issues = parseNumberRow(record, rowNum, days, issues)
		default:
			worker := strings.TrimSpace(record[0])
			row, rowIssues := s.parseShiftRow(record, rowNum, days)
			month.Shifts[worker] = row
			issues = append(issues, rowIssues...)
			month.EmployeeInfo.Type[worker] = guessWorkerType(worker)
			month.EmployeeInfo.Contract[worker] = models.ContractEmployment
			month.EmployeeInfo.Norm[worker] = nominalMonthNorm(key)
		}
	}

	if len(month.Shifts) == 0 {
		return nil, apperrors.Clone(apperrors.ErrEmptyFile, "shift table contains no worker rows")
	}
	if err := models.ValidateMonth(month, s.catalogue); err != nil {
		return nil, err
	}

	s.logger.Info("parsed shift table",
		zap.String("revision", string(key.RevisionKey(models.RevisionPrimary))),
		zap.Int("workers", len(month.Shifts)),
		zap.Int("issues", len(issues)))

	return &ImportResult{Month: month, Issues: issues}, nil
}

func (s *ImportService) parseShiftRow(record []string, rowNum, days int) ([]models.ShiftCode, []ParseIssue) {
	row := make([]models.ShiftCode, days)
	var issues []ParseIssue
	for day := 0; day < days; day++ {
		cell := ""
		if day+1 < len(record) {
			cell = strings.TrimSpace(record[day+1])
		}
		if cell == "" {
			row[day] = models.ShiftFree
			continue
		}
		code := models.ShiftCode(strings.ToUpper(cell))
		if !s.catalogue.Contains(code) {
			issues = append(issues, ParseIssue{
				Row:     rowNum,
				Column:  day + 2,
				Message: fmt.Sprintf("unknown shift code %q, treated as a free day", cell),
			})
			row[day] = models.ShiftFree
			continue
		}
		row[day] = code
	}
	return row, issues
}

func parseNumberRow(record []string, rowNum, days int, issues []ParseIssue) ([]int, []ParseIssue) {
	values := make([]int, days)
	for day := 0; day < days; day++ {
		cell := ""
		if day+1 < len(record) {
			cell = strings.TrimSpace(record[day+1])
		}
		if cell == "" {
			continue
		}
		n, err := strconv.Atoi(cell)
		if err != nil || n < 0 {
			issues = append(issues, ParseIssue{
				Row:     rowNum,
				Column:  day + 2,
				Message: fmt.Sprintf("invalid number %q, treated as zero", cell),
			})
			continue
		}
		values[day] = n
	}
	return values, issues
}

// guessWorkerType assumes imported rows describe nurses unless the name
// carries an explicit babysitter marker, matching the legacy sheet layout.
func guessWorkerType(worker string) models.WorkerType {
	if strings.Contains(strings.ToLower(worker), "(o)") {
		return models.WorkerTypeOther
	}
	return models.WorkerTypeNurse
}

// nominalMonthNorm is the default hour norm for an imported worker: eight
// hours per weekday of the month.
func nominalMonthNorm(key models.ScheduleKey) int {
	norm := 0
	for day := 1; day <= key.DaysInMonth(); day++ {
		if key.Weekday(day) < 5 {
			norm += 8
		}
	}
	return norm
}
