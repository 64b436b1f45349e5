package models

// Student represents one row of the students resource.
type Student struct {
	ID         int     `csv:"id" json:"id"`
	Name       string  `csv:"name" json:"name"`
	RollNo     int     `csv:"rollNo" json:"roll_no"`
	Grade      float64 `csv:"grade" json:"grade"`
	Attendance float64 `csv:"attendance" json:"attendance"`
	Email      string  `csv:"email" json:"email,omitempty"`
	Phone      string  `csv:"phone" json:"phone,omitempty"`
	Address    string  `csv:"address" json:"address,omitempty"`

	// CourseIDs holds the surrogate IDs of the courses this student is
	// enrolled in, in enrollment order. It is a back-reference only.
	CourseIDs []int `csv:"-" json:"course_ids,omitempty"`
}

// IsEnrolledIn reports whether courseID is among the student's courses.
func (s Student) IsEnrolledIn(courseID int) bool {
	return containsID(s.CourseIDs, courseID)
}

// Clone returns a copy that shares no slices with s.
func (s Student) Clone() Student {
	s.CourseIDs = cloneIDs(s.CourseIDs)
	return s
}
