package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/nonsonwune/student_records/models"
)

// errAborted is returned when the user interrupts a prompt (Ctrl-C). The
// current action is abandoned and the menu is shown again.
var errAborted = errors.New("aborted")

var (
	emailPattern = regexp.MustCompile(`^(\w+)(\.|_)?(\w*)@(\w+)(\.(\w+))+$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)]+$`)
)

const minPhoneLength = 6

// lineReader is satisfied by *readline.Instance.
type lineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
}

// prompter asks for typed values, re-prompting until the input is valid.
type prompter struct {
	rl lineReader
	ui ui
}

func (p *prompter) readLine(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", errAborted
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// text reads a value that can be stored in a record field. Empty input is
// only accepted when allowEmpty is set.
func (p *prompter) text(prompt string, allowEmpty bool) (string, error) {
	for {
		s, err := p.readLine(prompt)
		if err != nil {
			return "", err
		}
		switch {
		case s == "" && !allowEmpty:
			p.ui.errorf("Input cannot be empty.")
		case !models.ValidText(s):
			p.ui.errorf("Input cannot contain commas.")
		case !models.ValidLength(s):
			p.ui.errorf("Input cannot be longer than %d characters.", models.MaxTextLength)
		default:
			return s, nil
		}
	}
}

func (p *prompter) integer(prompt string, lo, hi int) (int, error) {
	for {
		s, err := p.readLine(prompt)
		if err != nil {
			return 0, err
		}
		v, perr := strconv.Atoi(s)
		switch {
		case perr != nil:
			p.ui.errorf("Invalid input. Please enter an integer.")
		case v < lo || v > hi:
			p.ui.errorf("Value must be between %d and %d.", lo, hi)
		default:
			return v, nil
		}
	}
}

func (p *prompter) number(prompt string, lo, hi float64) (float64, error) {
	for {
		s, err := p.readLine(prompt)
		if err != nil {
			return 0, err
		}
		v, perr := strconv.ParseFloat(s, 64)
		switch {
		case perr != nil || math.IsNaN(v):
			p.ui.errorf("Invalid input. Please enter a number.")
		case v < lo || v > hi:
			p.ui.errorf("Value must be between %g and %g.", lo, hi)
		default:
			return v, nil
		}
	}
}

// rollNo reads a positive roll number.
func (p *prompter) rollNo(prompt string) (int, error) {
	return p.integer(prompt, 1, math.MaxInt32)
}

func (p *prompter) email(prompt string) (string, error) {
	for {
		s, err := p.readLine(prompt)
		if err != nil {
			return "", err
		}
		if s == "" {
			p.ui.warn("Email is optional. Leaving blank.")
			return "", nil
		}
		if validEmail(s) {
			return s, nil
		}
		p.ui.errorf("Invalid email format.")
	}
}

func (p *prompter) phone(prompt string) (string, error) {
	for {
		s, err := p.readLine(prompt)
		if err != nil {
			return "", err
		}
		if s == "" {
			p.ui.warn("Phone is optional. Leaving blank.")
			return "", nil
		}
		if validPhone(s) {
			return s, nil
		}
		p.ui.errorf("Invalid phone number format.")
	}
}

// optionalText returns nil when the input is left empty.
func (p *prompter) optionalText(prompt string, valid func(string) bool, invalidMsg string) (*string, error) {
	for {
		s, err := p.readLine(prompt)
		if err != nil {
			return nil, err
		}
		switch {
		case s == "":
			return nil, nil
		case !models.ValidText(s):
			p.ui.errorf("Input cannot contain commas.")
		case !models.ValidLength(s):
			p.ui.errorf("Input cannot be longer than %d characters.", models.MaxTextLength)
		case valid != nil && !valid(s):
			p.ui.errorf("%s", invalidMsg)
		default:
			return &s, nil
		}
	}
}

func (p *prompter) optionalInteger(prompt string, lo, hi int) (*int, error) {
	for {
		s, err := p.readLine(prompt)
		if err != nil || s == "" {
			return nil, err
		}
		v, perr := strconv.Atoi(s)
		switch {
		case perr != nil:
			p.ui.errorf("Invalid input. Please enter an integer.")
		case v < lo || v > hi:
			p.ui.errorf("Value must be between %d and %d.", lo, hi)
		default:
			return &v, nil
		}
	}
}

func (p *prompter) optionalNumber(prompt string, lo, hi float64) (*float64, error) {
	for {
		s, err := p.readLine(prompt)
		if err != nil || s == "" {
			return nil, err
		}
		v, perr := strconv.ParseFloat(s, 64)
		switch {
		case perr != nil || math.IsNaN(v):
			p.ui.errorf("Invalid input. Please enter a number.")
		case v < lo || v > hi:
			p.ui.errorf("Value must be between %g and %g.", lo, hi)
		default:
			return &v, nil
		}
	}
}

// pause waits for Enter. EOF is passed through so the menu can exit.
func (p *prompter) pause() error {
	_, err := p.readLine("\nPress Enter to continue...")
	if errors.Is(err, errAborted) {
		return nil
	}
	return err
}

func validEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func validPhone(s string) bool {
	return len(s) >= minPhoneLength && phonePattern.MatchString(s)
}

func bracket(prompt string, current any) string {
	return fmt.Sprintf("%s [%v]: ", prompt, current)
}

// isEOF reports whether input has ended.
func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
