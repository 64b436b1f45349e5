package models

// DefaultCapacity is used when a course is created without a capacity.
const DefaultCapacity = 30

// Course represents one row of the courses resource.
type Course struct {
	ID          int    `csv:"id" json:"id"`
	Code        string `csv:"code" json:"code"`
	Name        string `csv:"name" json:"name"`
	Instructor  string `csv:"instructor" json:"instructor"`
	Credits     int    `csv:"credits" json:"credits"`
	MaxCapacity int    `csv:"maxCapacity" json:"max_capacity"`

	// StudentIDs mirrors Student.CourseIDs from the course side.
	StudentIDs []int `csv:"-" json:"student_ids,omitempty"`
}

// Enrolled returns the current number of enrolled students.
func (c Course) Enrolled() int {
	return len(c.StudentIDs)
}

// IsFull reports whether the course has reached its capacity.
func (c Course) IsFull() bool {
	return len(c.StudentIDs) >= c.MaxCapacity
}

// HasStudent reports whether studentID is enrolled in the course.
func (c Course) HasStudent(studentID int) bool {
	return containsID(c.StudentIDs, studentID)
}

// Clone returns a copy that shares no slices with c.
func (c Course) Clone() Course {
	c.StudentIDs = cloneIDs(c.StudentIDs)
	return c
}
