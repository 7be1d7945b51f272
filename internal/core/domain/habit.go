package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 100 chars)")
	ErrHabitDuplicate     = errors.New("a habit with this name already exists")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidGoalValue   = errors.New("goal value must be positive when a goal is enabled")
	ErrInvalidGoalType    = errors.New("invalid goal type (must be min, max, or precise)")
	ErrInvalidLogValue    = errors.New("logged value cannot be negative")
	ErrInvalidLogDate     = errors.New("invalid log date (must be YYYY-MM-DD)")
	ErrHabitConflict      = errors.New("habit was modified concurrently")
)

const (
	GoalTypeMin     = "min"
	GoalTypeMax     = "max"
	GoalTypePrecise = "precise"
	MaxTitleLen     = 100
)

// ProgressDateLayout is the calendar-date key format of the progress map.
const ProgressDateLayout = "2006-01-02"

// Habit is either binary (done/not-done per day) when GoalEnabled is
// false, or goal-quantified against GoalValue/GoalUnit.
//
// Progress is keyed by calendar date (YYYY-MM-DD). Writing a value for a
// date replaces any amount previously logged for that date; progress is
// never accumulated across writes. The older single-running-number
// representation is migrated at the storage layer and must not reappear
// here.
type Habit struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Title       string             `json:"title"`
	Notes       string             `json:"notes,omitempty"`
	GoalEnabled bool               `json:"goal_enabled"`
	GoalValue   float64            `json:"goal_value,omitempty"`
	GoalUnit    string             `json:"goal_unit,omitempty"`
	GoalType    string             `json:"goal_type,omitempty"`
	Repetition  RepetitionRule     `json:"repetition"`
	Progress    map[string]float64 `json:"progress"`

	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func validateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrHabitTitleEmpty
	}
	if len(trimmed) > MaxTitleLen {
		return "", ErrHabitTitleTooLong
	}
	return trimmed, nil
}

func validateGoal(enabled bool, value float64, goalType string) error {
	if !enabled {
		return nil
	}
	if value <= 0 {
		return ErrInvalidGoalValue
	}
	switch goalType {
	case GoalTypeMin, GoalTypeMax, GoalTypePrecise:
		return nil
	default:
		return ErrInvalidGoalType
	}
}

func NewHabit(userID, title string, goalEnabled bool, goalValue float64, goalUnit, goalType string, rep RepetitionRule) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanTitle, err := validateTitle(title)
	if err != nil {
		return nil, err
	}

	if err := validateGoal(goalEnabled, goalValue, goalType); err != nil {
		return nil, err
	}

	if err := rep.Validate(); err != nil {
		return nil, err
	}

	if !goalEnabled {
		goalValue = 0
		goalUnit = ""
		goalType = ""
	}

	now := time.Now().UTC()

	return &Habit{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       cleanTitle,
		GoalEnabled: goalEnabled,
		GoalValue:   goalValue,
		GoalUnit:    strings.TrimSpace(goalUnit),
		GoalType:    goalType,
		Repetition:  rep,
		Progress:    make(map[string]float64),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (h *Habit) Update(title string, goalEnabled bool, goalValue float64, goalUnit, goalType string, rep RepetitionRule) error {
	cleanTitle, err := validateTitle(title)
	if err != nil {
		return err
	}

	if err := validateGoal(goalEnabled, goalValue, goalType); err != nil {
		return err
	}

	if err := rep.Validate(); err != nil {
		return err
	}

	if !goalEnabled {
		goalValue = 0
		goalUnit = ""
		goalType = ""
	}

	h.Title = cleanTitle
	h.GoalEnabled = goalEnabled
	h.GoalValue = goalValue
	h.GoalUnit = strings.TrimSpace(goalUnit)
	h.GoalType = goalType
	h.Repetition = rep
	h.UpdatedAt = time.Now().UTC()

	return nil
}

// SameTitle reports whether name collides with the habit's title under
// the case-insensitive uniqueness rule.
func (h *Habit) SameTitle(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), h.Title)
}

// LogProgress records value for the given calendar date, replacing any
// amount previously logged for that date.
func (h *Habit) LogProgress(date string, value float64) error {
	if _, err := time.Parse(ProgressDateLayout, date); err != nil {
		return ErrInvalidLogDate
	}
	if value < 0 {
		return ErrInvalidLogValue
	}
	if h.Progress == nil {
		h.Progress = make(map[string]float64)
	}
	h.Progress[date] = value
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// Toggle flips the done state of a binary habit for the given date.
func (h *Habit) Toggle(date string) error {
	if _, err := time.Parse(ProgressDateLayout, date); err != nil {
		return ErrInvalidLogDate
	}
	if h.Progress == nil {
		h.Progress = make(map[string]float64)
	}
	if h.Progress[date] >= 1 {
		h.Progress[date] = 0
	} else {
		h.Progress[date] = 1
	}
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// AchievedOn reports whether the value logged for date satisfies the
// habit's goal for its goal type. Binary habits count as achieved once
// toggled done.
func (h *Habit) AchievedOn(date string) bool {
	value, ok := h.Progress[date]
	if !ok {
		return false
	}

	if !h.GoalEnabled {
		return value >= 1
	}

	switch h.GoalType {
	case GoalTypeMax:
		return value > 0 && value <= h.GoalValue
	case GoalTypePrecise:
		return value == h.GoalValue
	default:
		return value >= h.GoalValue
	}
}

func (h *Habit) UpdateStreak(current, longest int) {
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now().UTC()
}
