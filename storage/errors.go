package storage

import "fmt"

// FileError reports a resource that could not be opened, read or written.
type FileError struct {
	Resource string
	Op       string
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// LineError describes one record line skipped during a load.
type LineError struct {
	Resource string
	Line     int
	Reason   string
}

func (e LineError) Error() string {
	return fmt.Sprintf("%s line %d: %s", e.Resource, e.Line, e.Reason)
}
