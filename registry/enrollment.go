package registry

import (
	"fmt"
	"log/slog"

	"github.com/nonsonwune/student_records/models"
)

// Enroll links the student with rollNo to the course with code. Both the
// capacity and the duplicate checks run before either side is touched.
func (s *Store) Enroll(rollNo int, code string) error {
	st, c, err := s.resolvePair(rollNo, code)
	if err != nil {
		return err
	}
	if err := link(st, c); err != nil {
		return err
	}
	s.logger.Debug("enrolled", slog.Int("roll_no", rollNo), slog.String("code", code))
	return s.commit("enroll")
}

// Drop removes the link between the student with rollNo and the course with
// code. Dropping a pair that does not exist fails with ErrNotEnrolled.
func (s *Store) Drop(rollNo int, code string) error {
	st, c, err := s.resolvePair(rollNo, code)
	if err != nil {
		return err
	}
	if !st.IsEnrolledIn(c.ID) && !c.HasStudent(st.ID) {
		return fmt.Errorf("%w: student %d in course %q", ErrNotEnrolled, rollNo, code)
	}
	unlink(st, c)
	s.logger.Debug("dropped", slog.Int("roll_no", rollNo), slog.String("code", code))
	return s.commit("drop")
}

// IsEnrolled reports whether the student with rollNo is enrolled in the
// course with code. Unknown keys report false.
func (s *Store) IsEnrolled(rollNo int, code string) bool {
	st, c, err := s.resolvePair(rollNo, code)
	if err != nil {
		return false
	}
	return st.IsEnrolledIn(c.ID)
}

// StudentCourses returns the courses the student with rollNo is enrolled in,
// in enrollment order.
func (s *Store) StudentCourses(rollNo int) ([]models.Course, error) {
	st, ok := s.findStudent(rollNo)
	if !ok {
		return nil, fmt.Errorf("%w: student with roll number %d", ErrNotFound, rollNo)
	}
	out := make([]models.Course, 0, len(st.CourseIDs))
	for _, id := range st.CourseIDs {
		if c, ok := s.courseByID(id); ok {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

// CourseStudents returns the students enrolled in the course with code, in
// enrollment order.
func (s *Store) CourseStudents(code string) ([]models.Student, error) {
	c, ok := s.findCourse(code)
	if !ok {
		return nil, fmt.Errorf("%w: course with code %q", ErrNotFound, code)
	}
	out := make([]models.Student, 0, len(c.StudentIDs))
	for _, id := range c.StudentIDs {
		if st, ok := s.studentByID(id); ok {
			out = append(out, st.Clone())
		}
	}
	return out, nil
}

func (s *Store) resolvePair(rollNo int, code string) (*models.Student, *models.Course, error) {
	st, ok := s.findStudent(rollNo)
	if !ok {
		return nil, nil, fmt.Errorf("%w: student with roll number %d", ErrNotFound, rollNo)
	}
	c, ok := s.findCourse(code)
	if !ok {
		return nil, nil, fmt.Errorf("%w: course with code %q", ErrNotFound, code)
	}
	return st, c, nil
}

// link adds the pair on both sides or on neither.
func link(st *models.Student, c *models.Course) error {
	if c.IsFull() {
		return fmt.Errorf("%w: %s has %d/%d students", ErrCourseFull, c.Code, c.Enrolled(), c.MaxCapacity)
	}
	if st.IsEnrolledIn(c.ID) || c.HasStudent(st.ID) {
		return fmt.Errorf("%w: student %d in course %q", ErrAlreadyEnrolled, st.RollNo, c.Code)
	}
	st.CourseIDs = append(st.CourseIDs, c.ID)
	c.StudentIDs = append(c.StudentIDs, st.ID)
	return nil
}

func unlink(st *models.Student, c *models.Course) {
	st.CourseIDs = models.RemoveID(st.CourseIDs, c.ID)
	c.StudentIDs = models.RemoveID(c.StudentIDs, st.ID)
}
