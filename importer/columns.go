package importer

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Confidence thresholds for fuzzy header matching.
const (
	minMatchConfidence  = 0.6
	autoAcceptThreshold = 0.8
)

// Column describes one destination field and the header names accepted for it.
type Column struct {
	Field    string
	Aliases  []string
	Required bool
}

// ColumnMatch represents a potential column match with confidence score
type ColumnMatch struct {
	SourceColumn      string
	DestinationColumn string
	Confidence        float64
}

var studentColumns = []Column{
	{Field: "name", Aliases: []string{"student name", "full name"}, Required: true},
	{Field: "rollNo", Aliases: []string{"roll", "roll number", "roll_no"}, Required: true},
	{Field: "grade", Aliases: []string{"score", "marks"}},
	{Field: "attendance", Aliases: []string{"attendance %", "attendance percentage"}},
	{Field: "email", Aliases: []string{"email address", "e-mail"}},
	{Field: "phone", Aliases: []string{"phone number", "mobile", "telephone"}},
	{Field: "address"},
}

var courseColumns = []Column{
	{Field: "code", Aliases: []string{"course code", "course_code"}, Required: true},
	{Field: "name", Aliases: []string{"course name", "course_name", "title"}, Required: true},
	{Field: "instructor", Aliases: []string{"lecturer", "teacher"}, Required: true},
	{Field: "credits", Aliases: []string{"credit", "units"}, Required: true},
	{Field: "maxCapacity", Aliases: []string{"capacity", "max capacity", "max_capacity"}},
}

func normalizeColumn(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// getColumnIndex returns the index of the header equal to columnName after
// normalising case, spaces and underscores, or -1.
func getColumnIndex(headers []string, columnName string) int {
	want := normalizeColumn(columnName)
	for i, header := range headers {
		if normalizeColumn(header) == want {
			return i
		}
	}
	return -1
}

// findBestColumnMatch scores every header against name and returns those
// above the minimum confidence, best first.
func findBestColumnMatch(name string, headers []string) []ColumnMatch {
	matches := make([]ColumnMatch, 0)
	normalizedDest := normalizeColumn(name)

	for _, header := range headers {
		normalizedSource := normalizeColumn(header)
		maxLen := max(len(normalizedSource), len(normalizedDest))
		if maxLen == 0 {
			continue
		}
		distance := levenshteinDistance(normalizedSource, normalizedDest)
		confidence := 1.0 - float64(distance)/float64(maxLen)

		if confidence > minMatchConfidence {
			matches = append(matches, ColumnMatch{
				SourceColumn:      header,
				DestinationColumn: name,
				Confidence:        confidence,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// resolveColumns maps each destination field to a header index. Exact
// matches (including aliases) win; otherwise a single fuzzy match above the
// auto-accept threshold is taken. A header is never mapped twice.
func resolveColumns(headers []string, columns []Column, logger *slog.Logger) (map[string]int, error) {
	mapping := make(map[string]int, len(columns))
	claimed := make(map[int]bool, len(headers))

	// exact pass first so fuzzy matches cannot steal an exact header
	for _, col := range columns {
		for _, name := range append([]string{col.Field}, col.Aliases...) {
			if idx := getColumnIndex(headers, name); idx != -1 && !claimed[idx] {
				mapping[col.Field] = idx
				claimed[idx] = true
				break
			}
		}
	}

	var missing []string
	for _, col := range columns {
		if _, ok := mapping[col.Field]; ok {
			continue
		}
		if m, ok := bestUnclaimed(headers, col, claimed); ok {
			idx := getColumnIndex(headers, m.SourceColumn)
			mapping[col.Field] = idx
			claimed[idx] = true
			logger.Info("mapped column by similarity",
				slog.String("field", col.Field),
				slog.String("header", m.SourceColumn),
				slog.Float64("confidence", m.Confidence))
			continue
		}
		if col.Required {
			missing = append(missing, col.Field)
		}
	}

	if len(missing) > 0 {
		return nil, &ImportError{
			Code:    CodeMissingColumn,
			Message: fmt.Sprintf("missing required columns: %v", missing),
			Context: map[string]string{"headers": strings.Join(headers, "|")},
		}
	}
	return mapping, nil
}

func bestUnclaimed(headers []string, col Column, claimed map[int]bool) (ColumnMatch, bool) {
	var candidates []ColumnMatch
	for _, name := range append([]string{col.Field}, col.Aliases...) {
		for _, m := range findBestColumnMatch(name, headers) {
			if !claimed[getColumnIndex(headers, m.SourceColumn)] {
				candidates = append(candidates, m)
			}
		}
	}
	if len(candidates) == 0 {
		return ColumnMatch{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	best := candidates[0]
	if best.Confidence <= autoAcceptThreshold {
		return ColumnMatch{}, false
	}
	// two different headers tied at the top is ambiguous
	for _, c := range candidates[1:] {
		if c.Confidence < best.Confidence {
			break
		}
		if c.SourceColumn != best.SourceColumn {
			return ColumnMatch{}, false
		}
	}
	return best, true
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			if s1[i-1] == s2[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = min(
					prev[j]+1,   // deletion
					curr[j-1]+1, // insertion
					prev[j-1]+1, // substitution
				)
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
