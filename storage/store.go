// Package storage persists the record set as three delimited text resources
// (students, courses, enrollments) and reads them back.
//
// Every commit rewrites all three resources in full. Loading is best-effort:
// a malformed line is skipped on its own and a missing resource means an
// empty collection.
package storage

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nonsonwune/student_records/models"
)

// Resource file names inside the data directory.
const (
	StudentsFile    = "students.csv"
	CoursesFile     = "courses.csv"
	EnrollmentsFile = "enrollments.csv"
)

// FileStore reads and writes the resources under one directory.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileStore{dir: dir, logger: logger}
}

// Path returns the full path of a resource file.
func (s *FileStore) Path(resource string) string {
	return filepath.Join(s.dir, resource)
}

// LoadResult is what Load recovered from disk.
type LoadResult struct {
	Students    []models.Student
	Courses     []models.Course
	Enrollments []models.Enrollment

	// Missing lists resources that do not exist yet (first run).
	Missing []string
	// Skipped lists malformed lines.
	Skipped []LineError
	// Unresolved counts enrollment pairs naming an unknown student or course.
	Unresolved int
}

// Load reads students, then courses, then enrollments. Enrollment pairs are
// kept only when both IDs resolve to a loaded record.
//
// The result is always usable. The returned error joins a FileError for each
// resource that exists but could not be read; that resource loads as empty.
func (s *FileStore) Load() (*LoadResult, error) {
	res := &LoadResult{}
	var errs []error

	if err := s.readResource(StudentsFile, res, func(fields []string) error {
		st, err := decodeStudent(fields)
		if err != nil {
			return err
		}
		res.Students = append(res.Students, st)
		return nil
	}); err != nil {
		res.Students = nil
		errs = append(errs, err)
	}

	if err := s.readResource(CoursesFile, res, func(fields []string) error {
		c, err := decodeCourse(fields)
		if err != nil {
			return err
		}
		res.Courses = append(res.Courses, c)
		return nil
	}); err != nil {
		res.Courses = nil
		errs = append(errs, err)
	}

	studentIDs := make(map[int]bool, len(res.Students))
	for _, st := range res.Students {
		studentIDs[st.ID] = true
	}
	courseIDs := make(map[int]bool, len(res.Courses))
	for _, c := range res.Courses {
		courseIDs[c.ID] = true
	}

	if err := s.readResource(EnrollmentsFile, res, func(fields []string) error {
		e, err := decodeEnrollment(fields)
		if err != nil {
			return err
		}
		if !studentIDs[e.StudentID] || !courseIDs[e.CourseID] {
			res.Unresolved++
			return nil
		}
		res.Enrollments = append(res.Enrollments, e)
		return nil
	}); err != nil {
		res.Enrollments = nil
		errs = append(errs, err)
	}

	s.logger.Info("records loaded",
		slog.Int("students", len(res.Students)),
		slog.Int("courses", len(res.Courses)),
		slog.Int("enrollments", len(res.Enrollments)),
		slog.Int("skipped_lines", len(res.Skipped)),
		slog.Int("unresolved_pairs", res.Unresolved))

	return res, errors.Join(errs...)
}

// Commit rewrites all three resources from snap. Each resource is written
// independently; failures are joined.
func (s *FileStore) Commit(snap models.Snapshot) error {
	students := make([]string, 0, len(snap.Students))
	for _, st := range snap.Students {
		students = append(students, encodeStudent(st))
	}
	courses := make([]string, 0, len(snap.Courses))
	for _, c := range snap.Courses {
		courses = append(courses, encodeCourse(c))
	}
	pairs := snap.Enrollments()
	enrollments := make([]string, 0, len(pairs))
	for _, e := range pairs {
		enrollments = append(enrollments, encodeEnrollment(e))
	}

	err := errors.Join(
		s.writeResource(StudentsFile, StudentsHeader, students),
		s.writeResource(CoursesFile, CoursesHeader, courses),
		s.writeResource(EnrollmentsFile, EnrollmentsHeader, enrollments),
	)
	if err != nil {
		return err
	}
	s.logger.Debug("records committed",
		slog.Int("students", len(students)),
		slog.Int("courses", len(courses)),
		slog.Int("enrollments", len(enrollments)))
	return nil
}

// readResource feeds every record line after the header to decode. Lines
// decode rejects are recorded in res.Skipped. Lines have no length limit.
func (s *FileStore) readResource(name string, res *LoadResult, decode func([]string) error) error {
	f, err := os.Open(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("resource not found, starting empty", slog.String("resource", name))
		res.Missing = append(res.Missing, name)
		return nil
	}
	if err != nil {
		return &FileError{Resource: name, Op: "open", Err: err}
	}
	defer f.Close()

	r := bufio.NewReader(f)
	lineNo := 0
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lineNo++
			s.decodeLine(name, lineNo, line, res, decode)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &FileError{Resource: name, Op: "read", Err: err}
		}
	}
}

func (s *FileStore) decodeLine(name string, lineNo int, line string, res *LoadResult, decode func([]string) error) {
	if lineNo == 1 {
		return // header
	}
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return
	}
	if err := decode(strings.Split(line, Delimiter)); err != nil {
		le := LineError{Resource: name, Line: lineNo, Reason: err.Error()}
		s.logger.Warn("skipping malformed line", slog.String("resource", name),
			slog.Int("line", lineNo), slog.String("reason", le.Reason))
		res.Skipped = append(res.Skipped, le)
	}
}

func (s *FileStore) writeResource(name string, header []string, lines []string) (err error) {
	f, err := os.Create(s.Path(name))
	if err != nil {
		return &FileError{Resource: name, Op: "create", Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &FileError{Resource: name, Op: "close", Err: cerr}
		}
	}()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(strings.Join(header, Delimiter) + "\n"); err != nil {
		return &FileError{Resource: name, Op: "write", Err: err}
	}
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return &FileError{Resource: name, Op: "write", Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		return &FileError{Resource: name, Op: "write", Err: err}
	}
	return nil
}
