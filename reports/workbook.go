package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nonsonwune/student_records/models"
)

// Sheet names written by WriteWorkbook.
const (
	StudentsSheet = "Students"
	CoursesSheet  = "Courses"
	GradesSheet   = "Grades"
)

// WriteWorkbook writes students, courses and a grade report as an xlsx
// workbook to w.
func WriteWorkbook(w io.Writer, students []models.Student, courses []models.Course) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", StudentsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	studentRows := [][]any{{"ID", "Name", "Roll No", "Grade", "Attendance", "Email", "Phone", "Address", "Courses"}}
	for _, st := range students {
		studentRows = append(studentRows, []any{
			st.ID, st.Name, st.RollNo, st.Grade, st.Attendance,
			st.Email, st.Phone, st.Address, len(st.CourseIDs),
		})
	}
	if err := writeSheet(f, StudentsSheet, studentRows); err != nil {
		return err
	}

	courseRows := [][]any{{"ID", "Code", "Name", "Instructor", "Credits", "Enrolled", "Capacity"}}
	for _, c := range courses {
		courseRows = append(courseRows, []any{
			c.ID, c.Code, c.Name, c.Instructor, c.Credits, c.Enrolled(), c.MaxCapacity,
		})
	}
	if err := writeSheet(f, CoursesSheet, courseRows); err != nil {
		return err
	}

	gradeRows := [][]any{{"Roll No", "Name", "Grade", "Letter", "Attendance", "Status"}}
	for _, st := range SortByGrade(students) {
		gradeRows = append(gradeRows, []any{
			st.RollNo, st.Name, st.Grade, GradeLabel(st.Grade),
			st.Attendance, AttendanceStatus(st.Attendance),
		})
	}
	if err := writeSheet(f, GradesSheet, gradeRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
