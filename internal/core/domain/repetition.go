package domain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	RepeatNone    = "none"
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
)

var (
	ErrInvalidRepeatType     = errors.New("invalid repetition type (must be none, daily, weekly, or monthly)")
	ErrInvalidRepeatInterval = errors.New("repetition interval must be positive")
	ErrInvalidWeekdays       = errors.New("invalid weekdays (must be 0-6)")
	ErrInvalidMonthDays      = errors.New("invalid days of month (must be 1-31)")
	ErrInvalidRepeatDate     = errors.New("invalid one-time repetition date (must be YYYY-MM-DD)")
)

// CycleEpoch anchors every interval rule. It is one global constant,
// never per-habit: moving it re-phases which days are on-cycle for every
// "every N" rule in the system.
var CycleEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var everyNDaysPattern = regexp.MustCompile(`(?i)^every\s+(\d+)\s+days?$`)

// RepetitionRule decides which calendar dates a habit is due on.
//
// Either the structured fields are set, or Pattern carries a free-text
// rule ("Everyday", "Every 2 days"). Patterns that parse to nothing
// leave the habit due every day: an unreadable schedule must never hide
// a habit.
type RepetitionRule struct {
	Type        string `json:"type"`
	Every       int    `json:"every,omitempty"`
	DaysOfWeek  []int  `json:"days_of_week,omitempty"`
	DaysOfMonth []int  `json:"days_of_month,omitempty"`
	Date        string `json:"date,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
}

// EverydayRule is the default schedule for habits registered from the
// AI-log flow.
func EverydayRule() RepetitionRule {
	return RepetitionRule{Type: RepeatDaily, Every: 1}
}

func (r RepetitionRule) Validate() error {
	switch r.Type {
	case "", RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRepeatType, r.Type)
	}

	if r.Every < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRepeatInterval, r.Every)
	}

	for _, d := range r.DaysOfWeek {
		if d < 0 || d > 6 {
			return ErrInvalidWeekdays
		}
	}

	for _, d := range r.DaysOfMonth {
		if d < 1 || d > 31 {
			return ErrInvalidMonthDays
		}
	}

	if r.Date != "" {
		if _, err := time.Parse(ProgressDateLayout, r.Date); err != nil {
			return ErrInvalidRepeatDate
		}
	}

	return nil
}

func (r RepetitionRule) interval() int {
	if r.Every < 1 {
		return 1
	}
	return r.Every
}

// DueOn reports whether a habit on this rule is scheduled for the given
// date. Evaluation is calendar-based in UTC.
func (r RepetitionRule) DueOn(target time.Time) bool {
	if r.Pattern != "" && r.Type == "" {
		return patternDueOn(r.Pattern, target)
	}

	day := truncateToDay(target)

	switch r.Type {
	case RepeatDaily:
		return daysSinceEpoch(day)%r.interval() == 0
	case RepeatWeekly:
		if len(r.DaysOfWeek) == 0 {
			return false
		}
		// Weeks are numbered from the epoch week; the epoch is a Monday.
		if weeksSinceEpoch(day)%r.interval() != 0 {
			return false
		}
		return containsInt(r.DaysOfWeek, int(day.Weekday()))
	case RepeatMonthly:
		if len(r.DaysOfMonth) == 0 {
			return false
		}
		if monthsSinceEpoch(day)%r.interval() != 0 {
			return false
		}
		return containsInt(r.DaysOfMonth, day.Day())
	case RepeatNone:
		if r.Date == "" {
			// No schedule at all: always visible.
			return true
		}
		return day.Format(ProgressDateLayout) == r.Date
	default:
		return true
	}
}

// patternDueOn evaluates a free-text rule. "Everyday"/"every day" and
// "daily" are always due; "Every N days" is due on epoch-phase days;
// anything else fails open.
func patternDueOn(pattern string, target time.Time) bool {
	p := strings.ToLower(strings.TrimSpace(pattern))

	switch p {
	case "", "none", "everyday", "every day", "daily":
		return true
	}

	if m := everyNDaysPattern.FindStringSubmatch(p); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return true
		}
		return daysSinceEpoch(truncateToDay(target))%n == 0
	}

	return true
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysSinceEpoch(day time.Time) int {
	d := int(day.Sub(CycleEpoch).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d
}

func weeksSinceEpoch(day time.Time) int {
	return daysSinceEpoch(day) / 7
}

func monthsSinceEpoch(day time.Time) int {
	m := (day.Year()-CycleEpoch.Year())*12 + int(day.Month()) - int(CycleEpoch.Month())
	if m < 0 {
		m = -m
	}
	return m
}

func containsInt(set []int, v int) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}

// NormalizeDaySet removes duplicates and sorts a weekday/month-day set.
func NormalizeDaySet(days []int) []int {
	if len(days) == 0 {
		return nil
	}

	seen := make(map[int]bool)
	var unique []int
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			unique = append(unique, d)
		}
	}

	sort.Ints(unique)
	return unique
}
