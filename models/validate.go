package models

import (
	"strings"
	"unicode/utf8"
)

// Score bounds shared by grade and attendance.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Bounds the original console prompts enforced for course numbers.
const (
	MinCredits  = 1
	MaxCredits  = 10
	MinCapacity = 1
	MaxCapacity = 200
)

// MaxTextLength caps every string field, in characters.
const MaxTextLength = 1000

// ValidScore reports whether v lies in [0,100].
func ValidScore(v float64) bool {
	return v >= MinScore && v <= MaxScore
}

// ValidText reports whether s can be stored in a delimited record without
// shifting columns.
func ValidText(s string) bool {
	return !strings.ContainsAny(s, ",\r\n")
}

// ValidLength reports whether s fits within MaxTextLength.
func ValidLength(s string) bool {
	return utf8.RuneCountInString(s) <= MaxTextLength
}
