package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzurek/ward-roster-api/internal/models"
	apperrors "github.com/mzurek/ward-roster-api/pkg/errors"
)

// febCSV builds a shift table for February 2021 (28 days) out of rows whose
// first cell is the label and the rest the per-day cells.
func febCSV(rows ...[]string) string {
	var b strings.Builder
	b.WriteString("worker")
	for day := 1; day <= 28; day++ {
		b.WriteString(",")
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	return b.String()
}

func csvRow(label string, cells ...string) []string {
	return append([]string{label}, cells...)
}

func assertErrorCode(t *testing.T, err error, want string) {
	t.Helper()
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, want, appErr.Code)
}

func TestParseShiftTable(t *testing.T) {
	importer := NewImportService(models.DefaultShifts, nil)
	content := febCSV(
		csvRow("children", "4", "4", "5"),
		csvRow("Extra Workers", "1"),
		csvRow("Anna", "D", "D", "N", "", "R"),
		csvRow("Ola (o)", "P", "", "DN"),
	)

	result, err := importer.Parse(febKey, "february.csv", strings.NewReader(content))
	require.NoError(t, err)
	assert.Empty(t, result.Issues)

	month := result.Month
	assert.Equal(t, febKey, month.ScheduleKey)
	assert.Equal(t, []int{4, 4, 5}, month.MonthInfo.ChildrenNumber[:3])
	assert.Equal(t, 0, month.MonthInfo.ChildrenNumber[3], "missing cells default to zero")
	assert.Equal(t, 1, month.MonthInfo.ExtraWorkers[0])

	require.Len(t, month.Shifts["Anna"], 28)
	assert.Equal(t, models.ShiftDay, month.Shifts["Anna"][0])
	assert.Equal(t, models.ShiftNight, month.Shifts["Anna"][2])
	assert.Equal(t, models.ShiftFree, month.Shifts["Anna"][3], "empty cells are free days")
	assert.Equal(t, models.ShiftMorning, month.Shifts["Anna"][4])
	assert.Equal(t, models.ShiftFree, month.Shifts["Anna"][27], "short rows are padded with free days")

	assert.Equal(t, models.WorkerTypeNurse, month.EmployeeInfo.Type["Anna"])
	assert.Equal(t, models.WorkerTypeOther, month.EmployeeInfo.Type["Ola (o)"])
	assert.Equal(t, models.ContractEmployment, month.EmployeeInfo.Contract["Anna"])
	// February 2021 has 20 weekdays.
	assert.Equal(t, 160, month.EmployeeInfo.Norm["Anna"])
}

func TestParseLowercaseCodes(t *testing.T) {
	importer := NewImportService(models.DefaultShifts, nil)
	content := febCSV(csvRow("Anna", "d", "dn", "l4"))

	result, err := importer.Parse(febKey, "feb.csv", strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, models.ShiftDay, result.Month.Shifts["Anna"][0])
	assert.Equal(t, models.ShiftDayNight, result.Month.Shifts["Anna"][1])
	assert.Equal(t, models.ShiftSickLeave, result.Month.Shifts["Anna"][2])
}

func TestParseUnknownCodeDegradesToFreeDay(t *testing.T) {
	importer := NewImportService(models.DefaultShifts, nil)
	content := febCSV(csvRow("Anna", "D", "Q", "N"))

	result, err := importer.Parse(febKey, "feb.csv", strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, models.ShiftFree, result.Month.Shifts["Anna"][1])
	require.Len(t, result.Issues, 1)
	assert.Equal(t, 2, result.Issues[0].Row, "first data row of the file")
	assert.Equal(t, 3, result.Issues[0].Column, "second day column")
	assert.Contains(t, result.Issues[0].Message, "Q")
}

func TestParseInvalidMetadataNumber(t *testing.T) {
	importer := NewImportService(models.DefaultShifts, nil)
	content := febCSV(
		csvRow("children", "4", "many", "-1"),
		csvRow("Anna", "D"),
	)

	result, err := importer.Parse(febKey, "feb.csv", strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, []int{4, 0, 0}, result.Month.MonthInfo.ChildrenNumber[:3])
	assert.Len(t, result.Issues, 2)
}

func TestParseRejectsUnsupportedExtension(t *testing.T) {
	importer := NewImportService(models.DefaultShifts, nil)

	_, err := importer.Parse(febKey, "roster.xlsx", strings.NewReader("worker,1\nAnna,D\n"))
	assertErrorCode(t, err, apperrors.ErrUnsupportedFileType.Code)
}

func TestParseRejectsEmptyInput(t *testing.T) {
	importer := NewImportService(models.DefaultShifts, nil)

	cases := map[string]string{
		"blank file":       "   \n  ",
		"header only":      "worker,1,2,3\n",
		"no worker rows":   febCSV(csvRow("children", "4", "4")),
		"blank first cell": febCSV(csvRow("", "D", "N")),
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := importer.Parse(febKey, "feb.csv", strings.NewReader(content))
			assertErrorCode(t, err, apperrors.ErrEmptyFile.Code)
		})
	}
}
