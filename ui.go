package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ui prints status lines and titles in the menu's colour scheme.
type ui struct {
	out io.Writer
}

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgBlue)
	menuColor    = color.New(color.FgCyan)
)

const titleWidth = 50

func (u ui) title(s string) {
	line := strings.Repeat("=", titleWidth)
	pad := max(0, (titleWidth-len(s))/2)
	titleColor.Fprintf(u.out, "\n%s\n%s%s\n%s\n", line, strings.Repeat(" ", pad), s, line)
}

func (u ui) success(format string, args ...any) {
	successColor.Fprintln(u.out, "[SUCCESS] "+fmt.Sprintf(format, args...))
}

func (u ui) errorf(format string, args ...any) {
	errorColor.Fprintln(u.out, "[ERROR] "+fmt.Sprintf(format, args...))
}

func (u ui) warn(format string, args ...any) {
	warnColor.Fprintln(u.out, "[WARNING] "+fmt.Sprintf(format, args...))
}

func (u ui) info(format string, args ...any) {
	infoColor.Fprintln(u.out, "[INFO] "+fmt.Sprintf(format, args...))
}

func (u ui) println(a ...any) {
	fmt.Fprintln(u.out, a...)
}

func (u ui) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}
