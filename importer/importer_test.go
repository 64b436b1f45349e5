package importer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nonsonwune/student_records/models"
	"github.com/nonsonwune/student_records/registry"
	"github.com/nonsonwune/student_records/testutil"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeXLSX(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func newImporter(t *testing.T) *Importer {
	return New(testutil.NewTestLogger(t))
}

func TestImportStudents_CSV(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"Student Name,Roll No,Grade,Attendance,Email",
		"Ann,1,91.5,88,ann@uni.edu",
		"Ben,2,72,64.5,",
		",,,,",
		"Dup,1,50,50,",
		"Cal,3,150,90,",
		"Dee,x,60,60,",
		"Eve,5,,,",
	}, "\n"))
	store := registry.New()

	res, err := newImporter(t).ImportStudents(context.Background(), store, path)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 3, res.Failed)
	assert.Equal(t, 6, res.Total())
	assert.Equal(t, "Roll No", res.Mapping["rollNo"])
	assert.Nil(t, res.PersistErr)

	require.Len(t, res.Errors, 3)
	assert.ErrorIs(t, res.Errors[0], registry.ErrDuplicateKey)
	assert.ErrorIs(t, res.Errors[1], registry.ErrInvalidRange)
	var ie *ImportError
	require.ErrorAs(t, res.Errors[2], &ie)
	assert.Equal(t, CodeInvalidValue, ie.Code)
	assert.Equal(t, 7, ie.Row)

	ann, ok := store.FindStudentByRoll(1)
	require.True(t, ok)
	assert.Equal(t, "Ann", ann.Name)
	assert.InDelta(t, 91.5, ann.Grade, 1e-9)
	assert.Equal(t, "ann@uni.edu", ann.Email)

	eve, ok := store.FindStudentByRoll(5)
	require.True(t, ok)
	assert.Zero(t, eve.Grade)
}

func TestImportStudents_XLSX(t *testing.T) {
	path := writeXLSX(t, [][]any{
		{"name", "rollNo", "Grades", "Attendence", "Phone Number"},
		{"Ann", 1, 91.5, 88, "555 0101"},
		{"Ben", 2.0, 70, "65%"},
	})
	store := registry.New()

	res, err := newImporter(t).ImportStudents(context.Background(), store, path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Zero(t, res.Failed)
	assert.Equal(t, "Attendence", res.Mapping["attendance"])

	ann, ok := store.FindStudentByRoll(1)
	require.True(t, ok)
	assert.InDelta(t, 91.5, ann.Grade, 1e-9)
	assert.Equal(t, "555 0101", ann.Phone)

	ben, ok := store.FindStudentByRoll(2)
	require.True(t, ok)
	assert.InDelta(t, 65, ben.Attendance, 1e-9)
	assert.Empty(t, ben.Phone)
}

func TestImportCourses(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"course_code,course_name,Lecturer,Credits,Capacity",
		"CS101,Intro,Dr. X,3,40",
		"MA201,Calculus,Dr. Y,4,",
		"PH100,Physics,Dr. Z,,20",
		"CS101,Again,Dr. X,3,10",
	}, "\n"))
	store := registry.New()

	res, err := ImportCourses(context.Background(), store, path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Failed)

	cs, ok := store.FindCourseByCode("CS101")
	require.True(t, ok)
	assert.Equal(t, "Dr. X", cs.Instructor)
	assert.Equal(t, 40, cs.MaxCapacity)

	ma, ok := store.FindCourseByCode("MA201")
	require.True(t, ok)
	assert.Equal(t, models.DefaultCapacity, ma.MaxCapacity)

	_, ok = store.FindCourseByCode("PH100")
	assert.False(t, ok)
}

func TestImportCourses_RequiresInstructorAndCredits(t *testing.T) {
	path := writeCSV(t, "code,name\nCS101,Intro\nMA201,Calculus\n")
	store := registry.New()

	res, err := ImportCourses(context.Background(), store, path)
	var ie *ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, CodeMissingColumn, ie.Code)
	assert.Contains(t, ie.Message, "instructor")
	assert.Nil(t, res)
	assert.Empty(t, store.ListCourses())
}

func TestImport_MissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, "code,instructor\nCS101,Dr. X\n")
	_, err := ImportCourses(context.Background(), registry.New(), path)

	var ie *ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, CodeMissingColumn, ie.Code)
}

func TestImport_EmptyAndUnsupportedFiles(t *testing.T) {
	_, err := ImportStudents(context.Background(), registry.New(), writeCSV(t, ""))
	require.Error(t, err)

	_, err = ImportStudents(context.Background(), registry.New(), filepath.Join(t.TempDir(), "roster.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = ImportStudents(context.Background(), registry.New(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestImport_CancelledContext(t *testing.T) {
	path := writeCSV(t, "name,rollNo\nAnn,1\nBen,2\n")
	store := registry.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := ImportStudents(ctx, store, path)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Zero(t, res.Imported)
	students, _, _ := store.Counts()
	assert.Zero(t, students)
}

func TestImport_PersistenceFailureStillImports(t *testing.T) {
	path := writeCSV(t, "name,rollNo\nAnn,1\n")
	store := registry.New(registry.WithCommitter(registry.CommitFunc(func(models.Snapshot) error {
		return errors.New("disk full")
	})))

	res, err := newImporter(t).ImportStudents(context.Background(), store, path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.ErrorIs(t, res.PersistErr, registry.ErrPersistenceUnavailable)
	_, ok := store.FindStudentByRoll(1)
	assert.True(t, ok)
}

func TestSaveFailedRecords(t *testing.T) {
	path := writeCSV(t, "name,rollNo\nAnn,1\nBen,1\n")
	res, err := ImportStudents(context.Background(), registry.New(), path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.SaveFailedRecords(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name,rollNo,Error", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Ben,1,"))
	assert.Contains(t, lines[1], "duplicate key")
}

func TestSaveFailedRecords_NothingFailed(t *testing.T) {
	path := writeCSV(t, "name,rollNo\nAnn,1\n")
	res, err := ImportStudents(context.Background(), registry.New(), path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.SaveFailedRecords(&buf))
	assert.Zero(t, buf.Len())
}
