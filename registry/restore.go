package registry

import (
	"log/slog"

	"github.com/nonsonwune/student_records/models"
)

// RestoreReport counts the persisted rows Restore refused.
type RestoreReport struct {
	DuplicateStudents int
	DuplicateCourses  int
	DroppedPairs      int
}

// Restore rebuilds a Store from loaded records and resolved enrollment
// pairs. Records repeating an ID, roll number or course code are skipped, as
// are pairs that reference a missing record, repeat an existing pair or would
// overflow a course. Restore never commits.
func Restore(students []models.Student, courses []models.Course, pairs []models.Enrollment, opts ...Option) (*Store, RestoreReport) {
	s := New(opts...)
	var report RestoreReport

	seenIDs := make(map[int]bool, len(students))
	for _, st := range students {
		if _, dup := s.findStudent(st.RollNo); dup || seenIDs[st.ID] {
			s.logger.Warn("skipping duplicate student", slog.Int("id", st.ID), slog.Int("roll_no", st.RollNo))
			report.DuplicateStudents++
			continue
		}
		seenIDs[st.ID] = true
		rec := st
		rec.CourseIDs = nil
		s.students = append(s.students, &rec)
		if rec.ID > s.lastStudentID {
			s.lastStudentID = rec.ID
		}
	}

	seenIDs = make(map[int]bool, len(courses))
	for _, c := range courses {
		if _, dup := s.findCourse(c.Code); dup || seenIDs[c.ID] {
			s.logger.Warn("skipping duplicate course", slog.Int("id", c.ID), slog.String("code", c.Code))
			report.DuplicateCourses++
			continue
		}
		seenIDs[c.ID] = true
		rec := c
		rec.StudentIDs = nil
		s.courses = append(s.courses, &rec)
		if rec.ID > s.lastCourseID {
			s.lastCourseID = rec.ID
		}
	}

	for _, p := range pairs {
		st, ok := s.studentByID(p.StudentID)
		if !ok {
			report.DroppedPairs++
			continue
		}
		c, ok := s.courseByID(p.CourseID)
		if !ok {
			report.DroppedPairs++
			continue
		}
		if err := link(st, c); err != nil {
			s.logger.Warn("skipping enrollment",
				slog.Int("student_id", p.StudentID), slog.Int("course_id", p.CourseID), slog.Any("error", err))
			report.DroppedPairs++
		}
	}

	return s, report
}
