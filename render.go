package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/nonsonwune/student_records/models"
	"github.com/nonsonwune/student_records/reports"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	return table
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPercent(v float64) string {
	return formatScore(v) + "%"
}

func renderStudents(w io.Writer, students []models.Student, totalLabel string) {
	table := newTable(w, "Name", "Roll No", "Grade", "Attendance")
	for _, st := range students {
		table.Append([]string{
			st.Name,
			strconv.Itoa(st.RollNo),
			formatScore(st.Grade),
			formatPercent(st.Attendance),
		})
	}
	table.SetFooter([]string{"", "", totalLabel, strconv.Itoa(len(students))})
	table.Render()
}

func renderCourses(w io.Writer, courses []models.Course) {
	table := newTable(w, "Code", "Name", "Instructor", "Credits", "Enrolled")
	for _, c := range courses {
		table.Append([]string{
			c.Code,
			c.Name,
			c.Instructor,
			strconv.Itoa(c.Credits),
			fmt.Sprintf("%d/%d", c.Enrolled(), c.MaxCapacity),
		})
	}
	table.SetFooter([]string{"", "", "", "Total courses", strconv.Itoa(len(courses))})
	table.Render()
}

func renderStudentDetail(w io.Writer, st models.Student, courses []models.Course) {
	table := newTable(w, "Student Details", "")
	table.AppendBulk([][]string{
		{"ID", strconv.Itoa(st.ID)},
		{"Name", st.Name},
		{"Roll No", strconv.Itoa(st.RollNo)},
		{"Grade", formatScore(st.Grade)},
		{"Attendance", formatPercent(st.Attendance)},
		{"Email", st.Email},
		{"Phone", st.Phone},
		{"Address", st.Address},
	})
	table.Render()

	if len(courses) == 0 {
		return
	}
	enrolled := newTable(w, "Enrolled Courses", "")
	for _, c := range courses {
		enrolled.Append([]string{c.Code, c.Name})
	}
	enrolled.Render()
}

func renderCourseDetail(w io.Writer, c models.Course) {
	table := newTable(w, "Course Details", "")
	table.AppendBulk([][]string{
		{"ID", strconv.Itoa(c.ID)},
		{"Code", c.Code},
		{"Name", c.Name},
		{"Instructor", c.Instructor},
		{"Credits", strconv.Itoa(c.Credits)},
		{"Capacity", fmt.Sprintf("%d/%d", c.Enrolled(), c.MaxCapacity)},
	})
	table.Render()
}

func renderEnrollmentList(w io.Writer, c models.Course, students []models.Student) {
	fmt.Fprintf(w, "%s - %s Enrollment List\n", c.Code, c.Name)
	table := newTable(w, "Roll No", "Student Name")
	for _, st := range students {
		table.Append([]string{strconv.Itoa(st.RollNo), st.Name})
	}
	table.SetFooter([]string{"Total Enrolled", strconv.Itoa(len(students))})
	table.Render()
}

func renderGradeReport(w io.Writer, students []models.Student) {
	table := newTable(w, "Roll No", "Name", "Grade", "Grade Letter")
	for _, st := range students {
		table.Append([]string{
			strconv.Itoa(st.RollNo),
			st.Name,
			formatScore(st.Grade),
			reports.GradeLabel(st.Grade),
		})
	}
	table.Render()
	renderDistribution(w, "Letter", reports.GradeDistribution(students))
}

func renderAttendanceReport(w io.Writer, students []models.Student) {
	table := newTable(w, "Roll No", "Name", "Attendance", "Status")
	for _, st := range students {
		table.Append([]string{
			strconv.Itoa(st.RollNo),
			st.Name,
			formatPercent(st.Attendance),
			reports.AttendanceStatus(st.Attendance),
		})
	}
	table.Render()
	renderDistribution(w, "Status", reports.AttendanceSummary(students))
}

func renderTopPerformers(w io.Writer, students []models.Student) {
	table := newTable(w, "Rank", "Roll No", "Name", "Grade", "Attendance")
	for i, st := range students {
		table.Append([]string{
			strconv.Itoa(i + 1),
			strconv.Itoa(st.RollNo),
			st.Name,
			formatScore(st.Grade),
			formatPercent(st.Attendance),
		})
	}
	table.Render()
}

func renderDistribution(w io.Writer, label string, buckets []reports.Bucket) {
	table := newTable(w, label, "Students")
	for _, b := range buckets {
		table.Append([]string{b.Label, strconv.Itoa(b.Count)})
	}
	table.Render()
}

func renderSummary(w io.Writer, students []models.Student, courses []models.Course, enrollments int) {
	grade, attendance := reports.Average(students)
	table := newTable(w, "Metric", "Value")
	table.AppendBulk([][]string{
		{"Students", strconv.Itoa(len(students))},
		{"Courses", strconv.Itoa(len(courses))},
		{"Enrollments", strconv.Itoa(enrollments)},
		{"Average grade", formatScore(grade)},
		{"Average attendance", formatPercent(attendance)},
	})
	table.Render()
}
