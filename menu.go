package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nonsonwune/student_records/models"
	"github.com/nonsonwune/student_records/registry"
	"github.com/nonsonwune/student_records/reports"
)

const maxTopPerformers = 100

var menuItems = []string{
	"Add Student",
	"Display All Students",
	"Search Student",
	"Update Student",
	"Delete Student",
	"Add Course",
	"Display All Courses",
	"Search Course",
	"Update Course",
	"Delete Course",
	"Enroll Student in Course",
	"Drop Student from Course",
	"Display Enrollment Details",
	"Display Course Enrollment",
	"Generate Grade Report",
	"Generate Attendance Report",
	"Show Top Performers",
	"Sort Students by Name",
	"Sort Students by Grade",
	"Filter Students by Attendance",
}

// menu drives the interactive session.
type menu struct {
	app *app
	p   *prompter
	ui  ui

	// pauseAfter waits for Enter after every action.
	pauseAfter bool
}

func newMenu(a *app, rl lineReader) *menu {
	return &menu{
		app:        a,
		p:          &prompter{rl: rl, ui: a.ui},
		ui:         a.ui,
		pauseAfter: true,
	}
}

func (m *menu) display() {
	m.ui.title("Student Management System")
	for i, item := range menuItems {
		menuColor.Fprintf(m.ui.out, "%2d.", i+1)
		m.ui.printf(" %s\n", item)
	}
	menuColor.Fprintf(m.ui.out, "%2d.", 0)
	m.ui.printf(" Exit\n")
}

// run shows the menu until the user exits or input ends.
func (m *menu) run() error {
	actions := []func() error{
		m.addStudent,
		m.displayAllStudents,
		m.searchStudent,
		m.updateStudent,
		m.deleteStudent,
		m.addCourse,
		m.displayAllCourses,
		m.searchCourse,
		m.updateCourse,
		m.deleteCourse,
		m.enroll,
		m.drop,
		m.enrollmentDetails,
		m.courseEnrollment,
		m.gradeReport,
		m.attendanceReport,
		m.topPerformers,
		m.sortByName,
		m.sortByGrade,
		m.filterByAttendance,
	}

	for {
		m.display()
		choice, err := m.p.integer("Enter your choice: ", 0, len(actions))
		if errors.Is(err, errAborted) {
			continue
		}
		if err != nil {
			return m.finish(err)
		}
		if choice == 0 {
			return m.finish(nil)
		}

		err = actions[choice-1]()
		if errors.Is(err, errAborted) {
			m.ui.warn("Cancelled.")
			continue
		}
		if err != nil {
			return m.finish(err)
		}
		if m.pauseAfter {
			if err := m.p.pause(); err != nil {
				return m.finish(err)
			}
		}
	}
}

func (m *menu) finish(err error) error {
	if err != nil && !isEOF(err) {
		return err
	}
	m.ui.title("Exiting Program")
	m.ui.success("Thank you for using Student Management System!")
	return nil
}

// mutationFailed prints err and reports whether the mutation was rejected.
// A save failure leaves the change in memory, so it is only a warning.
func (m *menu) mutationFailed(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, registry.ErrPersistenceUnavailable):
		m.ui.warn("Change applied but could not be saved: %v", err)
		return false
	default:
		m.ui.errorf("%v", err)
		return true
	}
}

func (m *menu) studentNotFound(rollNo int) {
	m.ui.errorf("Student with roll number %d not found!", rollNo)
}

func (m *menu) courseNotFound(code string) {
	m.ui.errorf("Course with code %s not found!", code)
}

// 1
func (m *menu) addStudent() error {
	m.ui.title("Add New Student")
	name, err := m.p.text("Enter student name: ", false)
	if err != nil {
		return err
	}
	var rollNo int
	for {
		if rollNo, err = m.p.rollNo("Enter roll number: "); err != nil {
			return err
		}
		if _, taken := m.app.store.FindStudentByRoll(rollNo); !taken {
			break
		}
		m.ui.errorf("Roll number already exists! Please enter a unique roll number.")
	}
	st := models.Student{Name: name, RollNo: rollNo}
	if st.Grade, err = m.p.number("Enter grade (0-100): ", models.MinScore, models.MaxScore); err != nil {
		return err
	}
	if st.Attendance, err = m.p.number("Enter attendance (0-100%): ", models.MinScore, models.MaxScore); err != nil {
		return err
	}
	if st.Email, err = m.p.email("Enter email (optional): "); err != nil {
		return err
	}
	if st.Phone, err = m.p.phone("Enter phone (optional): "); err != nil {
		return err
	}
	if st.Address, err = m.p.text("Enter address (optional): ", true); err != nil {
		return err
	}

	_, err = m.app.store.AddStudent(st)
	if !m.mutationFailed(err) {
		m.ui.success("Student added successfully!")
	}
	return nil
}

// 2
func (m *menu) displayAllStudents() error {
	m.showStudents("All Students", m.app.store.ListStudents(), "Total students")
	return nil
}

func (m *menu) showStudents(title string, students []models.Student, totalLabel string) {
	if len(students) == 0 {
		m.ui.info("No students found!")
		return
	}
	m.ui.title(title)
	renderStudents(m.ui.out, students, totalLabel)
}

func (m *menu) showStudentDetail(st models.Student) {
	courses, _ := m.app.store.StudentCourses(st.RollNo)
	renderStudentDetail(m.ui.out, st, courses)
}

// 3
func (m *menu) searchStudent() error {
	m.ui.title("Search Student")
	rollNo, err := m.p.rollNo("Enter roll number to search: ")
	if err != nil {
		return err
	}
	st, ok := reports.SearchByRoll(m.app.store.ListStudents(), rollNo)
	if !ok {
		m.studentNotFound(rollNo)
		return nil
	}
	m.showStudentDetail(st)
	return nil
}

// 4
func (m *menu) updateStudent() error {
	m.ui.title("Update Student")
	rollNo, err := m.p.rollNo("Enter roll number to update: ")
	if err != nil {
		return err
	}
	st, ok := m.app.store.FindStudentByRoll(rollNo)
	if !ok {
		m.studentNotFound(rollNo)
		return nil
	}
	m.showStudentDetail(st)
	m.ui.println("\nEnter new details (leave empty to keep current):")

	var upd registry.StudentUpdate
	if upd.Name, err = m.p.optionalText(bracket("Enter new name", st.Name), nil, ""); err != nil {
		return err
	}
	if upd.Grade, err = m.p.optionalNumber(bracket("Enter new grade (0-100)", formatScore(st.Grade)), models.MinScore, models.MaxScore); err != nil {
		return err
	}
	if upd.Attendance, err = m.p.optionalNumber(bracket("Enter new attendance (0-100%)", formatScore(st.Attendance)), models.MinScore, models.MaxScore); err != nil {
		return err
	}
	if upd.Email, err = m.p.optionalText(bracket("Enter new email", st.Email), validEmail, "Invalid email format."); err != nil {
		return err
	}
	if upd.Phone, err = m.p.optionalText(bracket("Enter new phone", st.Phone), validPhone, "Invalid phone number format."); err != nil {
		return err
	}
	if upd.Address, err = m.p.optionalText(bracket("Enter new address", st.Address), nil, ""); err != nil {
		return err
	}

	_, err = m.app.store.UpdateStudent(rollNo, upd)
	if !m.mutationFailed(err) {
		m.ui.success("Student updated successfully!")
	}
	return nil
}

// 5
func (m *menu) deleteStudent() error {
	m.ui.title("Delete Student")
	rollNo, err := m.p.rollNo("Enter roll number to delete: ")
	if err != nil {
		return err
	}
	err = m.app.store.DeleteStudent(rollNo)
	if errors.Is(err, registry.ErrNotFound) {
		m.studentNotFound(rollNo)
		return nil
	}
	if !m.mutationFailed(err) {
		m.ui.success("Student with roll number %d deleted successfully!", rollNo)
	}
	return nil
}

// 6
func (m *menu) addCourse() error {
	m.ui.title("Add New Course")
	var (
		c   models.Course
		err error
	)
	for {
		if c.Code, err = m.p.text("Enter course code: ", false); err != nil {
			return err
		}
		if _, taken := m.app.store.FindCourseByCode(c.Code); !taken {
			break
		}
		m.ui.errorf("Course code already exists! Please enter a unique code.")
	}
	if c.Name, err = m.p.text("Enter course name: ", false); err != nil {
		return err
	}
	if c.Instructor, err = m.p.text("Enter instructor name: ", false); err != nil {
		return err
	}
	if c.Credits, err = m.p.integer("Enter number of credits: ", models.MinCredits, models.MaxCredits); err != nil {
		return err
	}
	if c.MaxCapacity, err = m.p.integer("Enter maximum capacity: ", models.MinCapacity, models.MaxCapacity); err != nil {
		return err
	}

	_, err = m.app.store.AddCourse(c)
	if !m.mutationFailed(err) {
		m.ui.success("Course added successfully!")
	}
	return nil
}

// 7
func (m *menu) displayAllCourses() error {
	courses := m.app.store.ListCourses()
	if len(courses) == 0 {
		m.ui.info("No courses found!")
		return nil
	}
	m.ui.title("All Courses")
	renderCourses(m.ui.out, courses)
	return nil
}

// 8
func (m *menu) searchCourse() error {
	m.ui.title("Search Course")
	code, err := m.p.text("Enter course code to search: ", false)
	if err != nil {
		return err
	}
	c, ok := reports.SearchByCode(m.app.store.ListCourses(), code)
	if !ok {
		m.courseNotFound(code)
		return nil
	}
	renderCourseDetail(m.ui.out, c)
	return nil
}

// 9
func (m *menu) updateCourse() error {
	m.ui.title("Update Course")
	code, err := m.p.text("Enter course code to update: ", false)
	if err != nil {
		return err
	}
	c, ok := m.app.store.FindCourseByCode(code)
	if !ok {
		m.courseNotFound(code)
		return nil
	}
	renderCourseDetail(m.ui.out, c)
	m.ui.println("\nEnter new details (leave empty to keep current):")

	var upd registry.CourseUpdate
	if upd.Name, err = m.p.optionalText(bracket("Enter new name", c.Name), nil, ""); err != nil {
		return err
	}
	if upd.Instructor, err = m.p.optionalText(bracket("Enter new instructor", c.Instructor), nil, ""); err != nil {
		return err
	}
	if upd.Credits, err = m.p.optionalInteger(bracket("Enter new credits", c.Credits), models.MinCredits, models.MaxCredits); err != nil {
		return err
	}
	if upd.MaxCapacity, err = m.p.optionalInteger(bracket("Enter new max capacity", c.MaxCapacity), models.MinCapacity, models.MaxCapacity); err != nil {
		return err
	}

	_, err = m.app.store.UpdateCourse(code, upd)
	if !m.mutationFailed(err) {
		m.ui.success("Course updated successfully!")
	}
	return nil
}

// 10
func (m *menu) deleteCourse() error {
	m.ui.title("Delete Course")
	code, err := m.p.text("Enter course code to delete: ", false)
	if err != nil {
		return err
	}
	err = m.app.store.DeleteCourse(code)
	if errors.Is(err, registry.ErrNotFound) {
		m.courseNotFound(code)
		return nil
	}
	if !m.mutationFailed(err) {
		m.ui.success("Course with code %s deleted successfully!", code)
	}
	return nil
}

// 11
func (m *menu) enroll() error {
	m.ui.title("Enroll Student in Course")
	m.ui.println("Available students:")
	for _, st := range m.app.store.ListStudents() {
		m.ui.printf("Roll No: %d, Name: %s\n", st.RollNo, st.Name)
	}
	rollNo, err := m.p.rollNo("\nEnter student roll number: ")
	if err != nil {
		return err
	}
	if _, ok := m.app.store.FindStudentByRoll(rollNo); !ok {
		m.studentNotFound(rollNo)
		return nil
	}

	m.ui.println("\nAvailable courses:")
	for _, c := range m.app.store.ListCourses() {
		full := ""
		if c.IsFull() {
			full = " (FULL)"
		}
		m.ui.printf("Code: %s, Name: %s, Enrollment: %d/%d%s\n", c.Code, c.Name, c.Enrolled(), c.MaxCapacity, full)
	}
	code, err := m.p.text("\nEnter course code: ", false)
	if err != nil {
		return err
	}

	err = m.app.store.Enroll(rollNo, code)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		m.courseNotFound(code)
	case errors.Is(err, registry.ErrCourseFull):
		m.ui.errorf("Course is full. Cannot enroll more students!")
	case errors.Is(err, registry.ErrAlreadyEnrolled):
		m.ui.errorf("Student is already enrolled in this course!")
	case !m.mutationFailed(err):
		m.ui.success("Student successfully enrolled in the course!")
	}
	return nil
}

// 12
func (m *menu) drop() error {
	m.ui.title("Drop Student from Course")
	rollNo, err := m.p.rollNo("Enter student roll number: ")
	if err != nil {
		return err
	}
	st, ok := m.app.store.FindStudentByRoll(rollNo)
	if !ok {
		m.studentNotFound(rollNo)
		return nil
	}
	courses, _ := m.app.store.StudentCourses(rollNo)
	if len(courses) == 0 {
		m.ui.errorf("Student is not enrolled in any courses!")
		return nil
	}

	m.ui.printf("\nCourses enrolled by %s:\n", st.Name)
	for i, c := range courses {
		m.ui.printf("%d. %s - %s\n", i+1, c.Code, c.Name)
	}
	choice, err := m.p.integer(fmt.Sprintf("\nSelect course number to drop (1-%d): ", len(courses)), 1, len(courses))
	if err != nil {
		return err
	}

	err = m.app.store.Drop(rollNo, courses[choice-1].Code)
	if !m.mutationFailed(err) {
		m.ui.success("Student successfully dropped from the course!")
	}
	return nil
}

// 13
func (m *menu) enrollmentDetails() error {
	m.ui.title("Display Enrollment Details")
	rollNo, err := m.p.rollNo("Enter roll number: ")
	if err != nil {
		return err
	}
	st, ok := m.app.store.FindStudentByRoll(rollNo)
	if !ok {
		m.studentNotFound(rollNo)
		return nil
	}
	m.ui.title("Enrollment Details")
	m.showStudentDetail(st)
	return nil
}

// 14
func (m *menu) courseEnrollment() error {
	m.ui.title("Display Course Enrollment")
	code, err := m.p.text("Enter course code: ", false)
	if err != nil {
		return err
	}
	c, ok := m.app.store.FindCourseByCode(code)
	if !ok {
		m.courseNotFound(code)
		return nil
	}
	students, _ := m.app.store.CourseStudents(code)
	m.ui.title("Course Enrollment")
	renderEnrollmentList(m.ui.out, c, students)
	return nil
}

// 15
func (m *menu) gradeReport() error {
	students := m.app.store.ListStudents()
	if len(students) == 0 {
		m.ui.info("No students found!")
		return nil
	}
	m.ui.title("Grade Report")
	renderGradeReport(m.ui.out, students)
	return nil
}

// 16
func (m *menu) attendanceReport() error {
	students := m.app.store.ListStudents()
	if len(students) == 0 {
		m.ui.info("No students found!")
		return nil
	}
	m.ui.title("Attendance Report")
	renderAttendanceReport(m.ui.out, students)
	return nil
}

// 17
func (m *menu) topPerformers() error {
	count, err := m.p.integer("Enter number of top performers to show: ", 1, maxTopPerformers)
	if err != nil {
		return err
	}
	students := m.app.store.ListStudents()
	if len(students) == 0 {
		m.ui.info("No students found!")
		return nil
	}
	top := reports.TopPerformers(students, count)
	m.ui.title("Top " + strconv.Itoa(len(top)) + " Performers")
	renderTopPerformers(m.ui.out, top)
	return nil
}

// 18
func (m *menu) sortByName() error {
	m.ui.success("Students sorted by name.")
	m.showStudents("All Students", reports.SortByName(m.app.store.ListStudents()), "Total students")
	return nil
}

// 19
func (m *menu) sortByGrade() error {
	m.ui.success("Students sorted by grade (descending).")
	m.showStudents("All Students", reports.SortByGrade(m.app.store.ListStudents()), "Total students")
	return nil
}

// 20
func (m *menu) filterByAttendance() error {
	minAttendance, err := m.p.number("Enter minimum attendance percentage: ", models.MinScore, models.MaxScore)
	if err != nil {
		return err
	}
	filtered := reports.FilterByAttendance(m.app.store.ListStudents(), minAttendance)
	m.ui.title(fmt.Sprintf("Students with Attendance >= %s%%", formatScore(minAttendance)))
	renderStudents(m.ui.out, filtered, "Filtered students")
	return nil
}
