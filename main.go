package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errorColor.Fprintf(color.Error, "Error: %v\n", err)
		if isUsage(err) {
			fmt.Fprintln(color.Error, "Run 'records --help' for usage.")
		}
		os.Exit(1)
	}
}

// usageError marks bad command-line input.
type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}
