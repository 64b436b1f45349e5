package reports

import "github.com/nonsonwune/student_records/models"

// Band is one row of a classification table: values at or above Min map to
// Label.
type Band struct {
	Min   float64
	Label string
}

// Letter bands, highest first.
var gradeBands = []Band{
	{90, "A"},
	{80, "B"},
	{70, "C"},
	{60, "D"},
	{50, "E"},
	{0, "F"},
}

var letterDescriptions = map[string]string{
	"A": "Excellent",
	"B": "Very Good",
	"C": "Good",
	"D": "Satisfactory",
	"E": "Pass",
	"F": "Fail",
}

// Attendance bands, highest first.
var attendanceBands = []Band{
	{90, "Excellent"},
	{80, "Good"},
	{75, "Satisfactory"},
	{0, "Low (Warning)"},
}

func classify(bands []Band, v float64) string {
	for _, b := range bands {
		if v >= b.Min {
			return b.Label
		}
	}
	return bands[len(bands)-1].Label
}

// GradeLetter maps a grade to A-F.
func GradeLetter(grade float64) string {
	return classify(gradeBands, grade)
}

// GradeLabel is the letter with its description, e.g. "B (Very Good)".
func GradeLabel(grade float64) string {
	l := GradeLetter(grade)
	return l + " (" + letterDescriptions[l] + ")"
}

// AttendanceStatus maps an attendance percentage to its status.
func AttendanceStatus(attendance float64) string {
	return classify(attendanceBands, attendance)
}

// Bucket counts students sharing one label.
type Bucket struct {
	Label string
	Count int
}

// GradeDistribution counts students per letter, A through F. Every letter is
// present even when its count is zero.
func GradeDistribution(students []models.Student) []Bucket {
	return distribute(gradeBands, students, func(st models.Student) float64 { return st.Grade })
}

// AttendanceSummary counts students per attendance status, best first.
func AttendanceSummary(students []models.Student) []Bucket {
	return distribute(attendanceBands, students, func(st models.Student) float64 { return st.Attendance })
}

func distribute(bands []Band, students []models.Student, value func(models.Student) float64) []Bucket {
	out := make([]Bucket, len(bands))
	index := make(map[string]int, len(bands))
	for i, b := range bands {
		out[i].Label = b.Label
		index[b.Label] = i
	}
	for _, st := range students {
		out[index[classify(bands, value(st))]].Count++
	}
	return out
}

// Average returns the mean grade and mean attendance, or zeros when there
// are no students.
func Average(students []models.Student) (grade, attendance float64) {
	if len(students) == 0 {
		return 0, 0
	}
	for _, st := range students {
		grade += st.Grade
		attendance += st.Attendance
	}
	n := float64(len(students))
	return grade / n, attendance / n
}
