// Package importer loads student and course rosters from spreadsheets into
// the record store. Import is best-effort: rows the store rejects are
// reported and skipped, the rest are kept.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nonsonwune/student_records/models"
	"github.com/nonsonwune/student_records/registry"
)

// Error codes carried by ImportError.
const (
	CodeMissingColumn = "MISSING_COLUMN"
	CodeInvalidValue  = "INVALID_VALUE"
	CodeRejected      = "REJECTED"
)

// ImportError describes a header or row that could not be imported.
type ImportError struct {
	Code      string
	Message   string
	Row       int
	Timestamp time.Time
	Context   map[string]string
	Err       error
}

func (e *ImportError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("[%s] row %d: %s", e.Code, e.Row, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// StudentAdder is the part of the record store used for student imports.
type StudentAdder interface {
	AddStudent(models.Student) (models.Student, error)
}

// CourseAdder is the part of the record store used for course imports.
type CourseAdder interface {
	AddCourse(models.Course) (models.Course, error)
}

// ImportResult summarises one import run.
type ImportResult struct {
	Source   string
	Headers  []string
	Mapping  map[string]string
	Imported int
	Failed   int
	Errors   []error

	// PersistErr is the last save failure seen; imported rows stay in memory.
	PersistErr error

	failedRows [][]string
}

// Total is the number of data rows processed.
func (r *ImportResult) Total() int {
	return r.Imported + r.Failed
}

// Importer reads roster files and adds their rows to the store.
type Importer struct {
	logger *slog.Logger
}

// New returns an Importer. A nil logger discards output.
func New(logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{logger: logger}
}

// ImportStudents imports students from a .csv or .xlsx file using a discard
// logger.
func ImportStudents(ctx context.Context, store StudentAdder, path string) (*ImportResult, error) {
	return New(nil).ImportStudents(ctx, store, path)
}

// ImportCourses imports courses from a .csv or .xlsx file using a discard
// logger.
func ImportCourses(ctx context.Context, store CourseAdder, path string) (*ImportResult, error) {
	return New(nil).ImportCourses(ctx, store, path)
}

// ImportStudents adds one student per data row. Required columns are name
// and rollNo; grade, attendance, email, phone and address are optional.
func (im *Importer) ImportStudents(ctx context.Context, store StudentAdder, path string) (*ImportResult, error) {
	return im.run(ctx, path, studentColumns, func(row rowValues) error {
		st, err := row.student()
		if err != nil {
			return err
		}
		_, err = store.AddStudent(st)
		return err
	})
}

// ImportCourses adds one course per data row. Required columns are code,
// name, instructor and credits.
func (im *Importer) ImportCourses(ctx context.Context, store CourseAdder, path string) (*ImportResult, error) {
	return im.run(ctx, path, courseColumns, func(row rowValues) error {
		c, err := row.course()
		if err != nil {
			return err
		}
		_, err = store.AddCourse(c)
		return err
	})
}

func (im *Importer) run(ctx context.Context, path string, columns []Column, add func(rowValues) error) (*ImportResult, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &ImportError{Code: CodeMissingColumn, Message: "file has no header row", Timestamp: time.Now()}
	}

	headers := rows[0]
	mapping, err := resolveColumns(headers, columns, im.logger)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Source:  path,
		Headers: headers,
		Mapping: make(map[string]string, len(mapping)),
	}
	for field, idx := range mapping {
		result.Mapping[field] = headers[idx]
	}

	for i, record := range rows[1:] {
		if err := ctx.Err(); err != nil {
			im.printImportSummary(result)
			return result, err
		}
		rowNum := i + 2 // 1-based, after the header
		if isBlank(record) {
			continue
		}

		err := add(rowValues{record: record, mapping: mapping})
		switch {
		case err == nil:
			result.Imported++
		case errors.Is(err, registry.ErrPersistenceUnavailable):
			result.Imported++
			result.PersistErr = err
			im.logger.Warn("imported row not saved", slog.Int("row", rowNum), slog.Any("error", err))
		default:
			result.Failed++
			result.failedRows = append(result.failedRows, append(padRow(record, len(headers)), err.Error()))
			result.Errors = append(result.Errors, rowError(rowNum, err))
		}
	}

	im.printImportSummary(result)
	return result, nil
}

func rowError(row int, err error) *ImportError {
	var ie *ImportError
	if errors.As(err, &ie) {
		ie.Row = row
		return ie
	}
	return &ImportError{
		Code:      CodeRejected,
		Message:   err.Error(),
		Row:       row,
		Timestamp: time.Now(),
		Err:       err,
	}
}

func (im *Importer) printImportSummary(r *ImportResult) {
	total := r.Total()
	rate := 0.0
	if total > 0 {
		rate = float64(r.Imported) / float64(total) * 100
	}
	im.logger.Info("import summary",
		slog.String("source", r.Source),
		slog.Int("processed", total),
		slog.Int("imported", r.Imported),
		slog.Int("failed", r.Failed),
		slog.Float64("success_pct", rate))

	for i := 0; i < min(10, len(r.Errors)); i++ {
		im.logger.Debug("import error", slog.Any("error", r.Errors[i]))
	}
}

// SaveFailedRecords writes the rejected rows, with an Error column, as CSV
// to w. It writes nothing when every row was imported.
func (r *ImportResult) SaveFailedRecords(w io.Writer) error {
	if len(r.failedRows) == 0 {
		return nil
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(append(append([]string(nil), r.Headers...), "Error")); err != nil {
		return fmt.Errorf("error writing headers: %w", err)
	}
	if err := writer.WriteAll(r.failedRows); err != nil {
		return fmt.Errorf("error writing records: %w", err)
	}
	return nil
}

// readRows returns every row of a .csv file or of the first sheet of an
// .xlsx workbook, header included.
func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("error opening workbook: %w", err)
		}
		defer f.Close()

		sheet := f.GetSheetName(0)
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("error reading sheet %s: %w", sheet, err)
		}
		return rows, nil
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("error opening file: %w", err)
		}
		defer file.Close()

		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("error reading records: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// rowValues reads mapped cells from one record. Spreadsheet rows may be
// shorter than the header when trailing cells are empty.
type rowValues struct {
	record  []string
	mapping map[string]int
}

func (r rowValues) get(field string) string {
	idx, ok := r.mapping[field]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r rowValues) intField(field string) (int, error) {
	s := r.get(field)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// spreadsheets often store whole numbers as 12.0
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, invalidValue(field, s)
		}
		v = int(f)
	}
	return v, nil
}

func (r rowValues) floatField(field string) (float64, error) {
	s := strings.TrimSuffix(r.get(field), "%")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, invalidValue(field, s)
	}
	return v, nil
}

func (r rowValues) student() (models.Student, error) {
	st := models.Student{
		Name:    r.get("name"),
		Email:   r.get("email"),
		Phone:   r.get("phone"),
		Address: r.get("address"),
	}
	var err error
	if r.get("rollNo") == "" {
		return st, &ImportError{Code: CodeInvalidValue, Message: "rollNo is empty", Timestamp: time.Now()}
	}
	if st.RollNo, err = r.intField("rollNo"); err != nil {
		return st, err
	}
	if st.Grade, err = r.floatField("grade"); err != nil {
		return st, err
	}
	if st.Attendance, err = r.floatField("attendance"); err != nil {
		return st, err
	}
	return st, nil
}

func (r rowValues) course() (models.Course, error) {
	c := models.Course{
		Code:       r.get("code"),
		Name:       r.get("name"),
		Instructor: r.get("instructor"),
	}
	var err error
	if c.Credits, err = r.intField("credits"); err != nil {
		return c, err
	}
	if c.MaxCapacity, err = r.intField("maxCapacity"); err != nil {
		return c, err
	}
	return c, nil
}

func invalidValue(field, value string) *ImportError {
	return &ImportError{
		Code:      CodeInvalidValue,
		Message:   fmt.Sprintf("%s %q is not a number", field, value),
		Timestamp: time.Now(),
		Context:   map[string]string{"field": field, "value": value},
	}
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func padRow(record []string, n int) []string {
	out := make([]string, max(n, len(record)))
	copy(out, record)
	return out
}
