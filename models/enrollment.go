package models

// Enrollment is one persisted (studentId, courseId) pair.
type Enrollment struct {
	StudentID int `csv:"studentId" json:"student_id"`
	CourseID  int `csv:"courseId" json:"course_id"`
}

// Snapshot is a detached copy of the whole record set.
type Snapshot struct {
	Students []Student `json:"students"`
	Courses  []Course  `json:"courses"`
}

// Enrollments derives the pair list from the student side only, so the
// symmetric relation is encoded once.
func (s Snapshot) Enrollments() []Enrollment {
	var pairs []Enrollment
	for _, st := range s.Students {
		for _, cid := range st.CourseIDs {
			pairs = append(pairs, Enrollment{StudentID: st.ID, CourseID: cid})
		}
	}
	return pairs
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func cloneIDs(ids []int) []int {
	if ids == nil {
		return nil
	}
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// RemoveID returns ids without the first occurrence of id.
func RemoveID(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
