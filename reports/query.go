// Package reports holds read-only projections over record snapshots:
// search, sorting, filtering, grade and attendance classification, and
// spreadsheet export. Nothing here mutates its input.
package reports

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nonsonwune/student_records/models"
)

// SearchByRoll returns the student with the given roll number.
func SearchByRoll(students []models.Student, rollNo int) (models.Student, bool) {
	for _, st := range students {
		if st.RollNo == rollNo {
			return st, true
		}
	}
	return models.Student{}, false
}

// SearchByCode returns the course with the given code.
func SearchByCode(courses []models.Course, code string) (models.Course, bool) {
	for _, c := range courses {
		if c.Code == code {
			return c, true
		}
	}
	return models.Course{}, false
}

// SortByName returns students ordered lexicographically by name. Equal names
// keep their relative order.
func SortByName(students []models.Student) []models.Student {
	out := slices.Clone(students)
	slices.SortStableFunc(out, func(a, b models.Student) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// SortByGrade returns students ordered by grade, highest first. Equal grades
// keep their relative order.
func SortByGrade(students []models.Student) []models.Student {
	out := slices.Clone(students)
	slices.SortStableFunc(out, func(a, b models.Student) int {
		return cmp.Compare(b.Grade, a.Grade)
	})
	return out
}

// FilterByAttendance returns students whose attendance is at least threshold.
func FilterByAttendance(students []models.Student, threshold float64) []models.Student {
	var out []models.Student
	for _, st := range students {
		if st.Attendance >= threshold {
			out = append(out, st)
		}
	}
	return out
}

// TopPerformers returns the n highest graded students. n is clamped to the
// number of students; n <= 0 yields nothing.
func TopPerformers(students []models.Student, n int) []models.Student {
	if n <= 0 {
		return nil
	}
	sorted := SortByGrade(students)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
