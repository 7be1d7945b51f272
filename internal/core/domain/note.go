package domain

import "regexp"

var notePattern = regexp.MustCompile(`^(.+?)\s*\|\s*(\d+(?:\.\d+)?)\s*(\w+)?$`)

// Note is one structured candidate line from the AI-log response, in
// the shape "Habit Name | Number Unit".
type Note struct {
	Habit  string `json:"habit"`
	Number string `json:"number"`
	Unit   string `json:"unit"`
}

// Parsed reports whether the line matched the expected shape. Notes
// that did not parse carry the raw line as Habit and must be displayed
// as-is, never logged as quantities.
func (n Note) Parsed() bool {
	return n.Number != ""
}

// ParseNote extracts a (habit, number, unit) triple from a candidate
// line. Lines that do not match fall back to the whole line as the
// habit name with empty number and unit; parsing never fails.
func ParseNote(line string) Note {
	m := notePattern.FindStringSubmatch(line)
	if m == nil {
		return Note{Habit: line}
	}
	return Note{Habit: m[1], Number: m[2], Unit: m[3]}
}
