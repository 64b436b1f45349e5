package migrations

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nonsonwune/student_records/storage"
)

// Resource pairs a data file with the header it is written with.
type Resource struct {
	File   string
	Header []string
}

// Resources lists the data files in load order.
var Resources = []Resource{
	{storage.StudentsFile, storage.StudentsHeader},
	{storage.CoursesFile, storage.CoursesHeader},
	{storage.EnrollmentsFile, storage.EnrollmentsHeader},
}

// HeaderMismatch reports a data file whose first line is not the expected
// header, or could not be read at all (Err set). Loading still treats the
// first line as a header and skips it.
type HeaderMismatch struct {
	File string
	Want string
	Got  string
	Err  error
}

func (m HeaderMismatch) String() string {
	if m.Err != nil {
		return fmt.Sprintf("%s: cannot read header: %v", m.File, m.Err)
	}
	return fmt.Sprintf("%s: header is %q, expected %q", m.File, m.Got, m.Want)
}

// InitSchema creates the data directory if needed and verifies the header
// line of every data file that already exists. Missing files are fine; they
// are created on the first save. Only a data directory that cannot be
// created is an error.
func InitSchema(dir string) ([]HeaderMismatch, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}

	var mismatches []HeaderMismatch
	for _, res := range Resources {
		got, err := readHeader(filepath.Join(dir, res.File))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		want := strings.Join(res.Header, storage.Delimiter)
		if err != nil {
			mismatches = append(mismatches, HeaderMismatch{File: res.File, Want: want, Err: err})
			continue
		}
		if got != want {
			mismatches = append(mismatches, HeaderMismatch{File: res.File, Want: want, Got: got})
		}
	}
	return mismatches, nil
}

func readHeader(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
