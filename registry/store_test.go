package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonsonwune/student_records/models"
	"github.com/nonsonwune/student_records/testutil"
)

// recordingCommitter keeps every snapshot it is handed and fails on demand.
type recordingCommitter struct {
	snaps []models.Snapshot
	err   error
}

func (r *recordingCommitter) Commit(snap models.Snapshot) error {
	r.snaps = append(r.snaps, snap)
	return r.err
}

func newTestStore(t *testing.T) (*Store, *recordingCommitter) {
	t.Helper()
	rc := &recordingCommitter{}
	return New(WithCommitter(rc), WithLogger(testutil.NewTestLogger(t))), rc
}

func ptr[T any](v T) *T { return &v }

func ann() models.Student {
	return models.Student{Name: "Ann", RollNo: 1, Grade: 95, Attendance: 88}
}

func cs101(capacity int) models.Course {
	return models.Course{Code: "CS101", Name: "Intro", Instructor: "Dr. X", Credits: 3, MaxCapacity: capacity}
}

func TestAddStudent_FindByRoll(t *testing.T) {
	s, rc := newTestStore(t)

	added := make(map[int]models.Student)
	for i, name := range []string{"Ann", "Ben", "Cal", "Dee"} {
		st, err := s.AddStudent(models.Student{Name: name, RollNo: 100 + i, Grade: float64(60 + i), Attendance: 80})
		require.NoError(t, err)
		added[st.RollNo] = st
	}

	for roll, want := range added {
		got, ok := s.FindStudentByRoll(roll)
		require.True(t, ok, "roll %d", roll)
		assert.Equal(t, want, got)
	}
	assert.Len(t, rc.snaps, 4, "one commit per mutation")

	_, ok := s.FindStudentByRoll(999)
	assert.False(t, ok)
}

func TestAddStudent_AssignsIDs(t *testing.T) {
	s, _ := newTestStore(t)

	a, err := s.AddStudent(models.Student{ID: 77, Name: "A", RollNo: 1})
	require.NoError(t, err)
	b, err := s.AddStudent(models.Student{Name: "B", RollNo: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, a.ID, "caller ID is a placeholder")
	assert.Equal(t, 2, b.ID)
}

func TestAddStudent_DuplicateRoll(t *testing.T) {
	s, rc := newTestStore(t)
	_, err := s.AddStudent(ann())
	require.NoError(t, err)

	_, err = s.AddStudent(models.Student{Name: "Other", RollNo: 1, Grade: 10})
	require.ErrorIs(t, err, ErrDuplicateKey)

	students := s.ListStudents()
	require.Len(t, students, 1)
	assert.Equal(t, "Ann", students[0].Name)
	assert.Len(t, rc.snaps, 1, "rejected add does not commit")
}

func TestAddStudent_Validation(t *testing.T) {
	tests := []struct {
		name    string
		student models.Student
		wantErr error
	}{
		{"grade above range", models.Student{Name: "A", RollNo: 1, Grade: 100.5}, ErrInvalidRange},
		{"grade below range", models.Student{Name: "A", RollNo: 1, Grade: -1}, ErrInvalidRange},
		{"attendance above range", models.Student{Name: "A", RollNo: 1, Attendance: 101}, ErrInvalidRange},
		{"roll number zero", models.Student{Name: "A", RollNo: 0}, ErrInvalidRange},
		{"empty name", models.Student{Name: "   ", RollNo: 1}, ErrInvalidField},
		{"comma in address", models.Student{Name: "A", RollNo: 1, Address: "1 Road, Town"}, ErrInvalidField},
		{"newline in name", models.Student{Name: "A\nB", RollNo: 1}, ErrInvalidField},
		{"address too long", models.Student{Name: "A", RollNo: 1, Address: strings.Repeat("x", 70000)}, ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			_, err := s.AddStudent(tt.student)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, s.ListStudents())
		})
	}
}

func TestUpdateStudent_OutOfRangeKeepsValues(t *testing.T) {
	tests := []struct {
		name   string
		update StudentUpdate
	}{
		{"grade too high", StudentUpdate{Grade: ptr(150.0)}},
		{"grade negative", StudentUpdate{Grade: ptr(-0.5)}},
		{"attendance too high", StudentUpdate{Attendance: ptr(100.1)}},
		{"valid name with invalid grade", StudentUpdate{Name: ptr("Changed"), Grade: ptr(101.0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rc := newTestStore(t)
			before, err := s.AddStudent(ann())
			require.NoError(t, err)

			_, err = s.UpdateStudent(1, tt.update)
			require.ErrorIs(t, err, ErrInvalidRange)

			after, ok := s.FindStudentByRoll(1)
			require.True(t, ok)
			assert.Equal(t, before, after)
			assert.Len(t, rc.snaps, 1)
		})
	}
}

func TestUpdateStudent_PartialFields(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddStudent(models.Student{Name: "Ann", RollNo: 1, Grade: 95, Attendance: 88, Email: "ann@x.io"})
	require.NoError(t, err)

	got, err := s.UpdateStudent(1, StudentUpdate{Grade: ptr(72.5), Phone: ptr("555-0101")})
	require.NoError(t, err)

	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, 72.5, got.Grade)
	assert.Equal(t, 88.0, got.Attendance)
	assert.Equal(t, "ann@x.io", got.Email)
	assert.Equal(t, "555-0101", got.Phone)

	_, err = s.UpdateStudent(2, StudentUpdate{Name: ptr("Nobody")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddCourse(t *testing.T) {
	s, _ := newTestStore(t)

	c, err := s.AddCourse(models.Course{Code: "MA201", Name: "Calculus", Instructor: "Dr. Y", Credits: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, c.ID)
	assert.Equal(t, models.DefaultCapacity, c.MaxCapacity)

	_, err = s.AddCourse(models.Course{Code: "MA201", Name: "Again", Instructor: "Dr. Z", Credits: 2})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = s.AddCourse(models.Course{Code: "MA202", Name: "Algebra", Instructor: "Dr. Z", Credits: 11})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = s.AddCourse(models.Course{Code: "", Name: "Nameless", Instructor: "Dr. Z", Credits: 2})
	assert.ErrorIs(t, err, ErrInvalidField)

	got, ok := s.FindCourseByCode("MA201")
	require.True(t, ok)
	assert.Equal(t, c, got)
}

func TestAddCourse_DefaultCapacityOption(t *testing.T) {
	s := New(WithDefaultCapacity(12))
	c, err := s.AddCourse(models.Course{Code: "X1", Name: "X", Instructor: "I", Credits: 1})
	require.NoError(t, err)
	assert.Equal(t, 12, c.MaxCapacity)
}

func TestUpdateCourse(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddCourse(cs101(3))
	require.NoError(t, err)
	for roll := 1; roll <= 2; roll++ {
		_, err := s.AddStudent(models.Student{Name: "S", RollNo: roll})
		require.NoError(t, err)
		require.NoError(t, s.Enroll(roll, "CS101"))
	}

	got, err := s.UpdateCourse("CS101", CourseUpdate{Instructor: ptr("Dr. Q"), Credits: ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Q", got.Instructor)
	assert.Equal(t, 4, got.Credits)
	assert.Equal(t, "Intro", got.Name)
	assert.Equal(t, 2, got.Enrolled())

	_, err = s.UpdateCourse("CS101", CourseUpdate{MaxCapacity: ptr(1)})
	require.ErrorIs(t, err, ErrInvalidRange)
	got, _ = s.FindCourseByCode("CS101")
	assert.Equal(t, 3, got.MaxCapacity)

	_, err = s.UpdateCourse("NOPE", CourseUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteStudent_SeversEnrollments(t *testing.T) {
	s, rc := newTestStore(t)
	_, err := s.AddStudent(ann())
	require.NoError(t, err)
	_, err = s.AddStudent(models.Student{Name: "Ben", RollNo: 2})
	require.NoError(t, err)
	for _, code := range []string{"CS101", "CS102"} {
		c := cs101(5)
		c.Code = code
		_, err := s.AddCourse(c)
		require.NoError(t, err)
		require.NoError(t, s.Enroll(1, code))
		require.NoError(t, s.Enroll(2, code))
	}

	require.NoError(t, s.DeleteStudent(1))

	for _, code := range []string{"CS101", "CS102"} {
		c, ok := s.FindCourseByCode(code)
		require.True(t, ok)
		assert.Equal(t, 1, c.Enrolled(), code)
		assert.False(t, c.HasStudent(1), code)
	}
	_, ok := s.FindStudentByRoll(1)
	assert.False(t, ok)

	last := rc.snaps[len(rc.snaps)-1]
	for _, p := range last.Enrollments() {
		assert.NotEqual(t, 1, p.StudentID)
	}

	assert.ErrorIs(t, s.DeleteStudent(1), ErrNotFound)
}

func TestDeleteCourse_SeversEnrollments(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddStudent(ann())
	require.NoError(t, err)
	_, err = s.AddCourse(cs101(2))
	require.NoError(t, err)
	require.NoError(t, s.Enroll(1, "CS101"))

	require.NoError(t, s.DeleteCourse("CS101"))

	st, ok := s.FindStudentByRoll(1)
	require.True(t, ok)
	assert.Empty(t, st.CourseIDs)
	assert.ErrorIs(t, s.DeleteCourse("CS101"), ErrNotFound)
}

func TestDeletedIDsAreNotReused(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddStudent(models.Student{Name: "A", RollNo: 1})
	require.NoError(t, err)
	b, err := s.AddStudent(models.Student{Name: "B", RollNo: 2})
	require.NoError(t, err)

	require.NoError(t, s.DeleteStudent(b.RollNo))

	c, err := s.AddStudent(models.Student{Name: "C", RollNo: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, c.ID)
}

func TestCommitFailureKeepsMutation(t *testing.T) {
	s, rc := newTestStore(t)
	rc.err = errors.New("disk full")

	st, err := s.AddStudent(ann())
	require.ErrorIs(t, err, ErrPersistenceUnavailable)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, st.ID)

	_, ok := s.FindStudentByRoll(1)
	assert.True(t, ok, "in-memory mutation is not rolled back")
}

func TestReturnedRecordsAreDetached(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddStudent(ann())
	require.NoError(t, err)
	_, err = s.AddCourse(cs101(2))
	require.NoError(t, err)
	require.NoError(t, s.Enroll(1, "CS101"))

	st, _ := s.FindStudentByRoll(1)
	st.CourseIDs[0] = 999
	st.Grade = 1

	again, _ := s.FindStudentByRoll(1)
	assert.Equal(t, []int{1}, again.CourseIDs)
	assert.Equal(t, 95.0, again.Grade)
}

func TestCounts(t *testing.T) {
	s := New()
	_, err := s.AddStudent(ann())
	require.NoError(t, err)
	_, err = s.AddCourse(cs101(2))
	require.NoError(t, err)
	require.NoError(t, s.Enroll(1, "CS101"))

	students, courses, enrollments := s.Counts()
	assert.Equal(t, 1, students)
	assert.Equal(t, 1, courses)
	assert.Equal(t, 1, enrollments)
}
