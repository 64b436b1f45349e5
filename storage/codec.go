package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nonsonwune/student_records/models"
)

// Delimiter separates fields. Values are written verbatim, without quoting.
const Delimiter = ","

// Resource headers, written on save and skipped on load.
var (
	StudentsHeader    = []string{"id", "name", "rollNo", "grade", "attendance", "email", "phone", "address"}
	CoursesHeader     = []string{"id", "code", "name", "instructor", "credits", "maxCapacity"}
	EnrollmentsHeader = []string{"studentId", "courseId"}
)

func encodeStudent(st models.Student) string {
	return strings.Join([]string{
		strconv.Itoa(st.ID),
		st.Name,
		strconv.Itoa(st.RollNo),
		formatFloat(st.Grade),
		formatFloat(st.Attendance),
		st.Email,
		st.Phone,
		st.Address,
	}, Delimiter)
}

func encodeCourse(c models.Course) string {
	return strings.Join([]string{
		strconv.Itoa(c.ID),
		c.Code,
		c.Name,
		c.Instructor,
		strconv.Itoa(c.Credits),
		strconv.Itoa(c.MaxCapacity),
	}, Delimiter)
}

func encodeEnrollment(e models.Enrollment) string {
	return strconv.Itoa(e.StudentID) + Delimiter + strconv.Itoa(e.CourseID)
}

func decodeStudent(fields []string) (models.Student, error) {
	if len(fields) != len(StudentsHeader) {
		return models.Student{}, fieldCountError(len(fields), len(StudentsHeader))
	}
	var (
		st  models.Student
		err error
	)
	if st.ID, err = parseInt("id", fields[0]); err != nil {
		return models.Student{}, err
	}
	st.Name = fields[1]
	if st.RollNo, err = parseInt("rollNo", fields[2]); err != nil {
		return models.Student{}, err
	}
	if st.Grade, err = parseScore("grade", fields[3]); err != nil {
		return models.Student{}, err
	}
	if st.Attendance, err = parseScore("attendance", fields[4]); err != nil {
		return models.Student{}, err
	}
	st.Email = fields[5]
	st.Phone = fields[6]
	st.Address = fields[7]
	return st, nil
}

func decodeCourse(fields []string) (models.Course, error) {
	if len(fields) != len(CoursesHeader) {
		return models.Course{}, fieldCountError(len(fields), len(CoursesHeader))
	}
	var (
		c   models.Course
		err error
	)
	if c.ID, err = parseInt("id", fields[0]); err != nil {
		return models.Course{}, err
	}
	c.Code = fields[1]
	c.Name = fields[2]
	c.Instructor = fields[3]
	if c.Credits, err = parseInt("credits", fields[4]); err != nil {
		return models.Course{}, err
	}
	if c.MaxCapacity, err = parseInt("maxCapacity", fields[5]); err != nil {
		return models.Course{}, err
	}
	if c.MaxCapacity < 1 {
		return models.Course{}, fmt.Errorf("maxCapacity %d is not positive", c.MaxCapacity)
	}
	return c, nil
}

func decodeEnrollment(fields []string) (models.Enrollment, error) {
	if len(fields) != len(EnrollmentsHeader) {
		return models.Enrollment{}, fieldCountError(len(fields), len(EnrollmentsHeader))
	}
	var (
		e   models.Enrollment
		err error
	)
	if e.StudentID, err = parseInt("studentId", fields[0]); err != nil {
		return models.Enrollment{}, err
	}
	if e.CourseID, err = parseInt("courseId", fields[1]); err != nil {
		return models.Enrollment{}, err
	}
	return e, nil
}

// formatFloat writes six decimals, the form the original data files use.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func parseInt(field, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer", field, s)
	}
	return v, nil
}

func parseScore(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", field, s)
	}
	if !models.ValidScore(v) {
		return 0, fmt.Errorf("%s %g is outside 0-100", field, v)
	}
	return v, nil
}

func fieldCountError(got, want int) error {
	return fmt.Errorf("expected %d fields, got %d", want, got)
}
