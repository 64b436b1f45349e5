// Package registry holds the in-memory student and course records and the
// enrollment relation between them.
//
// A Store is the single session object for the process: it is built once from
// the persisted resources (see Restore), mutated through its methods, and
// every successful mutation is followed by a full commit through the
// configured Committer.
package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nonsonwune/student_records/models"
)

// Committer persists a full snapshot of the store. It is called after every
// successful mutation.
type Committer interface {
	Commit(snap models.Snapshot) error
}

// CommitFunc adapts a function to the Committer interface.
type CommitFunc func(snap models.Snapshot) error

// Commit calls f(snap).
func (f CommitFunc) Commit(snap models.Snapshot) error {
	return f(snap)
}

// Store owns the student and course collections.
type Store struct {
	students []*models.Student
	courses  []*models.Course

	// high-water marks; IDs are never handed out twice in a session
	lastStudentID int
	lastCourseID  int

	committer       Committer
	logger          *slog.Logger
	defaultCapacity int
}

// Option configures a Store.
type Option func(*Store)

// WithCommitter sets the commit target. Without one, mutations stay in memory.
func WithCommitter(c Committer) Option {
	return func(s *Store) {
		s.committer = c
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultCapacity sets the capacity used when a course is added with none.
func WithDefaultCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.defaultCapacity = n
		}
	}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		logger:          slog.New(slog.DiscardHandler),
		defaultCapacity: models.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StudentUpdate carries the fields to change on a student. Nil fields keep
// their current value.
type StudentUpdate struct {
	Name       *string
	Grade      *float64
	Attendance *float64
	Email      *string
	Phone      *string
	Address    *string
}

// CourseUpdate carries the fields to change on a course. Nil fields keep
// their current value.
type CourseUpdate struct {
	Name        *string
	Instructor  *string
	Credits     *int
	MaxCapacity *int
}

// AddStudent validates st, assigns it the next surrogate ID and appends it.
// The ID and CourseIDs of st are ignored.
func (s *Store) AddStudent(st models.Student) (models.Student, error) {
	st.Name = strings.TrimSpace(st.Name)
	if err := validateStudent(st); err != nil {
		return models.Student{}, err
	}
	if _, ok := s.findStudent(st.RollNo); ok {
		return models.Student{}, fmt.Errorf("%w: roll number %d already exists", ErrDuplicateKey, st.RollNo)
	}

	st.ID = s.nextStudentID()
	st.CourseIDs = nil
	rec := st
	s.students = append(s.students, &rec)
	s.logger.Debug("student added", slog.Int("id", rec.ID), slog.Int("roll_no", rec.RollNo))

	return rec.Clone(), s.commit("add student")
}

// AddCourse validates c, assigns it the next surrogate ID and appends it.
// A zero MaxCapacity is replaced by the store's default capacity.
func (s *Store) AddCourse(c models.Course) (models.Course, error) {
	c.Code = strings.TrimSpace(c.Code)
	c.Name = strings.TrimSpace(c.Name)
	c.Instructor = strings.TrimSpace(c.Instructor)
	if c.MaxCapacity == 0 {
		c.MaxCapacity = s.defaultCapacity
	}
	if err := validateCourse(c); err != nil {
		return models.Course{}, err
	}
	if _, ok := s.findCourse(c.Code); ok {
		return models.Course{}, fmt.Errorf("%w: course code %q already exists", ErrDuplicateKey, c.Code)
	}

	c.ID = s.nextCourseID()
	c.StudentIDs = nil
	rec := c
	s.courses = append(s.courses, &rec)
	s.logger.Debug("course added", slog.Int("id", rec.ID), slog.String("code", rec.Code))

	return rec.Clone(), s.commit("add course")
}

// FindStudentByRoll returns a copy of the student with the given roll number.
func (s *Store) FindStudentByRoll(rollNo int) (models.Student, bool) {
	st, ok := s.findStudent(rollNo)
	if !ok {
		return models.Student{}, false
	}
	return st.Clone(), true
}

// FindCourseByCode returns a copy of the course with the given code.
func (s *Store) FindCourseByCode(code string) (models.Course, bool) {
	c, ok := s.findCourse(code)
	if !ok {
		return models.Course{}, false
	}
	return c.Clone(), true
}

// UpdateStudent applies the non-nil fields of u. The update is validated as
// a whole: if any supplied value is invalid nothing changes.
func (s *Store) UpdateStudent(rollNo int, u StudentUpdate) (models.Student, error) {
	st, ok := s.findStudent(rollNo)
	if !ok {
		return models.Student{}, fmt.Errorf("%w: student with roll number %d", ErrNotFound, rollNo)
	}

	next := st.Clone()
	if u.Name != nil {
		next.Name = strings.TrimSpace(*u.Name)
	}
	if u.Grade != nil {
		next.Grade = *u.Grade
	}
	if u.Attendance != nil {
		next.Attendance = *u.Attendance
	}
	if u.Email != nil {
		next.Email = *u.Email
	}
	if u.Phone != nil {
		next.Phone = *u.Phone
	}
	if u.Address != nil {
		next.Address = *u.Address
	}
	if err := validateStudent(next); err != nil {
		return st.Clone(), err
	}

	// back-references are untouched by an update
	next.CourseIDs = st.CourseIDs
	*st = next
	return st.Clone(), s.commit("update student")
}

// UpdateCourse applies the non-nil fields of u. The capacity cannot drop
// below the number of students already enrolled.
func (s *Store) UpdateCourse(code string, u CourseUpdate) (models.Course, error) {
	c, ok := s.findCourse(code)
	if !ok {
		return models.Course{}, fmt.Errorf("%w: course with code %q", ErrNotFound, code)
	}

	next := c.Clone()
	if u.Name != nil {
		next.Name = strings.TrimSpace(*u.Name)
	}
	if u.Instructor != nil {
		next.Instructor = strings.TrimSpace(*u.Instructor)
	}
	if u.Credits != nil {
		next.Credits = *u.Credits
	}
	if u.MaxCapacity != nil {
		next.MaxCapacity = *u.MaxCapacity
	}
	if err := validateCourse(next); err != nil {
		return c.Clone(), err
	}
	if next.MaxCapacity < c.Enrolled() {
		return c.Clone(), fmt.Errorf("%w: capacity %d is below current enrollment %d",
			ErrInvalidRange, next.MaxCapacity, c.Enrolled())
	}

	next.StudentIDs = c.StudentIDs
	*c = next
	return c.Clone(), s.commit("update course")
}

// DeleteStudent severs every enrollment of the student, then removes it.
func (s *Store) DeleteStudent(rollNo int) error {
	idx := -1
	for i, st := range s.students {
		if st.RollNo == rollNo {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: student with roll number %d", ErrNotFound, rollNo)
	}

	st := s.students[idx]
	for _, c := range s.courses {
		c.StudentIDs = models.RemoveID(c.StudentIDs, st.ID)
	}
	st.CourseIDs = nil
	s.students = append(s.students[:idx], s.students[idx+1:]...)
	s.logger.Debug("student deleted", slog.Int("id", st.ID), slog.Int("roll_no", rollNo))

	return s.commit("delete student")
}

// DeleteCourse severs every enrollment in the course, then removes it.
func (s *Store) DeleteCourse(code string) error {
	idx := -1
	for i, c := range s.courses {
		if c.Code == code {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: course with code %q", ErrNotFound, code)
	}

	c := s.courses[idx]
	for _, st := range s.students {
		st.CourseIDs = models.RemoveID(st.CourseIDs, c.ID)
	}
	c.StudentIDs = nil
	s.courses = append(s.courses[:idx], s.courses[idx+1:]...)
	s.logger.Debug("course deleted", slog.Int("id", c.ID), slog.String("code", code))

	return s.commit("delete course")
}

// ListStudents returns copies of all students in insertion order.
func (s *Store) ListStudents() []models.Student {
	out := make([]models.Student, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, st.Clone())
	}
	return out
}

// ListCourses returns copies of all courses in insertion order.
func (s *Store) ListCourses() []models.Course {
	out := make([]models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, c.Clone())
	}
	return out
}

// Snapshot returns a detached copy of the whole record set.
func (s *Store) Snapshot() models.Snapshot {
	return models.Snapshot{
		Students: s.ListStudents(),
		Courses:  s.ListCourses(),
	}
}

// Counts returns the number of students, courses and enrollment pairs.
func (s *Store) Counts() (students, courses, enrollments int) {
	for _, st := range s.students {
		enrollments += len(st.CourseIDs)
	}
	return len(s.students), len(s.courses), enrollments
}

// Save commits the current state without mutating it.
func (s *Store) Save() error {
	return s.commit("save")
}

// commit hands a snapshot to the committer. A failure is reported to the
// caller but the in-memory mutation that preceded it stands.
func (s *Store) commit(op string) error {
	if s.committer == nil {
		return nil
	}
	if err := s.committer.Commit(s.Snapshot()); err != nil {
		s.logger.Warn("commit failed", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%w: %s: %w", ErrPersistenceUnavailable, op, err)
	}
	return nil
}

func (s *Store) findStudent(rollNo int) (*models.Student, bool) {
	for _, st := range s.students {
		if st.RollNo == rollNo {
			return st, true
		}
	}
	return nil, false
}

func (s *Store) findCourse(code string) (*models.Course, bool) {
	for _, c := range s.courses {
		if c.Code == code {
			return c, true
		}
	}
	return nil, false
}

func (s *Store) studentByID(id int) (*models.Student, bool) {
	for _, st := range s.students {
		if st.ID == id {
			return st, true
		}
	}
	return nil, false
}

func (s *Store) courseByID(id int) (*models.Course, bool) {
	for _, c := range s.courses {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

func (s *Store) nextStudentID() int {
	for _, st := range s.students {
		if st.ID > s.lastStudentID {
			s.lastStudentID = st.ID
		}
	}
	s.lastStudentID++
	return s.lastStudentID
}

func (s *Store) nextCourseID() int {
	for _, c := range s.courses {
		if c.ID > s.lastCourseID {
			s.lastCourseID = c.ID
		}
	}
	s.lastCourseID++
	return s.lastCourseID
}

type textField struct {
	name  string
	value string
}

func checkText(f textField) error {
	if !models.ValidText(f.value) {
		return fmt.Errorf("%w: %s must not contain commas or line breaks", ErrInvalidField, f.name)
	}
	if !models.ValidLength(f.value) {
		return fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidField, f.name, models.MaxTextLength)
	}
	return nil
}

func validateStudent(st models.Student) error {
	if st.Name == "" {
		return fmt.Errorf("%w: student name is required", ErrInvalidField)
	}
	if st.RollNo < 1 {
		return fmt.Errorf("%w: roll number %d must be positive", ErrInvalidRange, st.RollNo)
	}
	for _, f := range []textField{
		{"name", st.Name}, {"email", st.Email}, {"phone", st.Phone}, {"address", st.Address},
	} {
		if err := checkText(f); err != nil {
			return err
		}
	}
	if !models.ValidScore(st.Grade) {
		return fmt.Errorf("%w: grade %g must be between 0 and 100", ErrInvalidRange, st.Grade)
	}
	if !models.ValidScore(st.Attendance) {
		return fmt.Errorf("%w: attendance %g must be between 0 and 100", ErrInvalidRange, st.Attendance)
	}
	return nil
}

func validateCourse(c models.Course) error {
	for _, f := range []textField{
		{"code", c.Code}, {"name", c.Name}, {"instructor", c.Instructor},
	} {
		if f.value == "" {
			return fmt.Errorf("%w: course %s is required", ErrInvalidField, f.name)
		}
		if err := checkText(f); err != nil {
			return err
		}
	}
	if c.Credits < models.MinCredits || c.Credits > models.MaxCredits {
		return fmt.Errorf("%w: credits %d must be between %d and %d",
			ErrInvalidRange, c.Credits, models.MinCredits, models.MaxCredits)
	}
	if c.MaxCapacity < models.MinCapacity || c.MaxCapacity > models.MaxCapacity {
		return fmt.Errorf("%w: capacity %d must be between %d and %d",
			ErrInvalidRange, c.MaxCapacity, models.MinCapacity, models.MaxCapacity)
	}
	return nil
}
