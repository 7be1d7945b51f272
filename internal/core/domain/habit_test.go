package domain_test

import (
	"testing"
	"time"

	"github.com/devbd1/routiner-server/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewHabit(t *testing.T) {
	t.Run("Success: Creates binary habit with defaults and sync fields", func(t *testing.T) {
		h, err := domain.NewHabit("u1", "Meditate", false, 0, "", "", domain.EverydayRule())

		assert.Nil(t, err)
		assert.NotNil(t, h)
		assert.Equal(t, "Meditate", h.Title)
		assert.Equal(t, "u1", h.UserID)
		assert.NotEmpty(t, h.ID)

		assert.False(t, h.GoalEnabled)
		assert.Empty(t, h.GoalUnit)
		assert.Empty(t, h.GoalType)
		assert.NotNil(t, h.Progress)

		assert.Equal(t, 0, h.CurrentStreak)
		assert.Equal(t, 0, h.LongestStreak)

		assert.Equal(t, 1, h.Version, "New habits MUST start at Version 1 for Optimistic Locking")
		assert.WithinDuration(t, time.Now().UTC(), h.CreatedAt, 2*time.Second)
	})

	t.Run("Success: Goal habit keeps goal fields", func(t *testing.T) {
		h, err := domain.NewHabit("u1", "Drink Water", true, 2, "liter", domain.GoalTypeMin, domain.EverydayRule())

		assert.Nil(t, err)
		assert.True(t, h.GoalEnabled)
		assert.Equal(t, 2.0, h.GoalValue)
		assert.Equal(t, "liter", h.GoalUnit)
		assert.Equal(t, domain.GoalTypeMin, h.GoalType)
	})

	t.Run("Success: Title is trimmed", func(t *testing.T) {
		h, err := domain.NewHabit("u1", "  Read  ", false, 0, "", "", domain.EverydayRule())

		assert.Nil(t, err)
		assert.Equal(t, "Read", h.Title)
	})

	t.Run("Error: Empty Title", func(t *testing.T) {
		_, err := domain.NewHabit("u1", "   ", false, 0, "", "", domain.EverydayRule())
		assert.Equal(t, domain.ErrHabitTitleEmpty, err)
	})

	t.Run("Error: Invalid UserID", func(t *testing.T) {
		_, err := domain.NewHabit("", "Read", false, 0, "", "", domain.EverydayRule())
		assert.Equal(t, domain.ErrHabitInvalidUserID, err)
	})

	t.Run("Error: Goal enabled without positive value", func(t *testing.T) {
		_, err := domain.NewHabit("u1", "Read", true, 0, "page", domain.GoalTypeMin, domain.EverydayRule())
		assert.Equal(t, domain.ErrInvalidGoalValue, err)
	})

	t.Run("Error: Unknown goal type", func(t *testing.T) {
		_, err := domain.NewHabit("u1", "Read", true, 10, "page", "exact", domain.EverydayRule())
		assert.Equal(t, domain.ErrInvalidGoalType, err)
	})

	t.Run("Error: Invalid repetition weekdays", func(t *testing.T) {
		rep := domain.RepetitionRule{Type: domain.RepeatWeekly, Every: 1, DaysOfWeek: []int{7}}
		_, err := domain.NewHabit("u1", "Read", false, 0, "", "", rep)
		assert.Equal(t, domain.ErrInvalidWeekdays, err)
	})
}

func TestHabit_LogProgress(t *testing.T) {
	newHabit := func(t *testing.T) *domain.Habit {
		h, err := domain.NewHabit("u1", "Drink Water", true, 2, "liter", domain.GoalTypeMin, domain.EverydayRule())
		assert.Nil(t, err)
		return h
	}

	t.Run("Success: Second write for same date overwrites, never sums", func(t *testing.T) {
		h := newHabit(t)

		assert.Nil(t, h.LogProgress("2024-03-10", 5))
		assert.Nil(t, h.LogProgress("2024-03-10", 3))

		assert.Equal(t, 3.0, h.Progress["2024-03-10"])
	})

	t.Run("Success: Different dates are independent entries", func(t *testing.T) {
		h := newHabit(t)

		assert.Nil(t, h.LogProgress("2024-03-10", 5))
		assert.Nil(t, h.LogProgress("2024-03-11", 1))

		assert.Equal(t, 5.0, h.Progress["2024-03-10"])
		assert.Equal(t, 1.0, h.Progress["2024-03-11"])
	})

	t.Run("Error: Malformed date key", func(t *testing.T) {
		h := newHabit(t)
		assert.Equal(t, domain.ErrInvalidLogDate, h.LogProgress("10/03/2024", 5))
	})

	t.Run("Error: Negative value", func(t *testing.T) {
		h := newHabit(t)
		assert.Equal(t, domain.ErrInvalidLogValue, h.LogProgress("2024-03-10", -1))
	})
}

func TestHabit_Toggle(t *testing.T) {
	h, err := domain.NewHabit("u1", "Make your bed", false, 0, "", "", domain.EverydayRule())
	assert.Nil(t, err)

	assert.Nil(t, h.Toggle("2024-03-10"))
	assert.Equal(t, 1.0, h.Progress["2024-03-10"])

	assert.Nil(t, h.Toggle("2024-03-10"))
	assert.Equal(t, 0.0, h.Progress["2024-03-10"])
}

func TestHabit_SameTitle(t *testing.T) {
	h, err := domain.NewHabit("u1", "Read", false, 0, "", "", domain.EverydayRule())
	assert.Nil(t, err)

	assert.True(t, h.SameTitle("read"), "uniqueness check is case-insensitive")
	assert.True(t, h.SameTitle("  READ "))
	assert.False(t, h.SameTitle("Reading"))
}

func TestHabit_AchievedOn(t *testing.T) {
	tests := []struct {
		name        string
		goalEnabled bool
		goalValue   float64
		goalType    string
		logged      float64
		want        bool
	}{
		{"min goal met", true, 2, domain.GoalTypeMin, 2.5, true},
		{"min goal missed", true, 2, domain.GoalTypeMin, 1.5, false},
		{"max goal within ceiling", true, 60, domain.GoalTypeMax, 30, true},
		{"max goal exceeded", true, 60, domain.GoalTypeMax, 90, false},
		{"precise goal exact", true, 8, domain.GoalTypePrecise, 8, true},
		{"precise goal off", true, 8, domain.GoalTypePrecise, 7, false},
		{"binary done", false, 0, "", 1, true},
		{"binary not done", false, 0, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := domain.NewHabit("u1", "Study", tt.goalEnabled, tt.goalValue, "hour", tt.goalType, domain.EverydayRule())
			if !tt.goalEnabled {
				h, err = domain.NewHabit("u1", "Study", false, 0, "", "", domain.EverydayRule())
			}
			assert.Nil(t, err)

			h.Progress["2024-03-10"] = tt.logged
			assert.Equal(t, tt.want, h.AchievedOn("2024-03-10"))
		})
	}

	t.Run("no entry means not achieved", func(t *testing.T) {
		h, err := domain.NewHabit("u1", "Study", false, 0, "", "", domain.EverydayRule())
		assert.Nil(t, err)
		assert.False(t, h.AchievedOn("2024-03-10"))
	})
}
