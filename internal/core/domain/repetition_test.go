package domain_test

import (
	"testing"
	"time"

	"github.com/devbd1/routiner-server/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRepetitionRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    domain.RepetitionRule
		wantErr error
	}{
		{"daily ok", domain.RepetitionRule{Type: domain.RepeatDaily, Every: 1}, nil},
		{"weekly ok", domain.RepetitionRule{Type: domain.RepeatWeekly, Every: 2, DaysOfWeek: []int{1, 3}}, nil},
		{"monthly ok", domain.RepetitionRule{Type: domain.RepeatMonthly, Every: 1, DaysOfMonth: []int{1, 15}}, nil},
		{"one-time ok", domain.RepetitionRule{Type: domain.RepeatNone, Date: "2024-06-01"}, nil},
		{"pattern only ok", domain.RepetitionRule{Pattern: "Every 2 days"}, nil},
		{"bad type", domain.RepetitionRule{Type: "yearly"}, domain.ErrInvalidRepeatType},
		{"bad weekday", domain.RepetitionRule{Type: domain.RepeatWeekly, DaysOfWeek: []int{8}}, domain.ErrInvalidWeekdays},
		{"bad month day", domain.RepetitionRule{Type: domain.RepeatMonthly, DaysOfMonth: []int{0}}, domain.ErrInvalidMonthDays},
		{"bad date", domain.RepetitionRule{Type: domain.RepeatNone, Date: "01-06-2024"}, domain.ErrInvalidRepeatDate},
		{"negative interval", domain.RepetitionRule{Type: domain.RepeatDaily, Every: -1}, domain.ErrInvalidRepeatInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRepetitionRule_DueOn_Daily(t *testing.T) {
	t.Run("every day is always due", func(t *testing.T) {
		rule := domain.EverydayRule()
		assert.True(t, rule.DueOn(day("2024-01-01")))
		assert.True(t, rule.DueOn(day("2025-07-19")))
	})

	t.Run("every 2 days follows the epoch phase", func(t *testing.T) {
		rule := domain.RepetitionRule{Type: domain.RepeatDaily, Every: 2}

		assert.True(t, rule.DueOn(day("2024-01-01")), "epoch day is on-cycle")
		assert.False(t, rule.DueOn(day("2024-01-02")))
		assert.True(t, rule.DueOn(day("2024-01-03")))
	})

	t.Run("every 3 days", func(t *testing.T) {
		rule := domain.RepetitionRule{Type: domain.RepeatDaily, Every: 3}

		assert.True(t, rule.DueOn(day("2024-01-01")))
		assert.False(t, rule.DueOn(day("2024-01-02")))
		assert.False(t, rule.DueOn(day("2024-01-03")))
		assert.True(t, rule.DueOn(day("2024-01-04")))
	})
}

func TestRepetitionRule_DueOn_Pattern(t *testing.T) {
	t.Run("everyday patterns", func(t *testing.T) {
		for _, p := range []string{"Everyday", "every day", "daily"} {
			rule := domain.RepetitionRule{Pattern: p}
			assert.True(t, rule.DueOn(day("2024-01-02")), p)
		}
	})

	t.Run("every N days pattern", func(t *testing.T) {
		rule := domain.RepetitionRule{Pattern: "Every 2 days"}

		assert.True(t, rule.DueOn(day("2024-01-01")))
		assert.False(t, rule.DueOn(day("2024-01-02")))
		assert.True(t, rule.DueOn(day("2024-01-03")))
	})

	t.Run("unrecognized pattern fails open", func(t *testing.T) {
		rule := domain.RepetitionRule{Pattern: "whenever I feel like it"}

		assert.True(t, rule.DueOn(day("2024-01-01")))
		assert.True(t, rule.DueOn(day("2024-01-02")), "unparsed rules must never hide a habit")
	})
}

func TestRepetitionRule_DueOn_Weekly(t *testing.T) {
	t.Run("weekday membership", func(t *testing.T) {
		// 2024-01-01 is a Monday (weekday 1).
		rule := domain.RepetitionRule{Type: domain.RepeatWeekly, Every: 1, DaysOfWeek: []int{1, 3}}

		assert.True(t, rule.DueOn(day("2024-01-01")), "Monday")
		assert.False(t, rule.DueOn(day("2024-01-02")), "Tuesday")
		assert.True(t, rule.DueOn(day("2024-01-03")), "Wednesday")
	})

	t.Run("every 2 weeks anchored to the epoch week", func(t *testing.T) {
		rule := domain.RepetitionRule{Type: domain.RepeatWeekly, Every: 2, DaysOfWeek: []int{1}}

		assert.True(t, rule.DueOn(day("2024-01-01")), "epoch Monday, week 0")
		assert.False(t, rule.DueOn(day("2024-01-08")), "week 1 is off-cycle")
		assert.True(t, rule.DueOn(day("2024-01-15")), "week 2 is on-cycle")
	})

	t.Run("empty weekday set is never due", func(t *testing.T) {
		rule := domain.RepetitionRule{Type: domain.RepeatWeekly, Every: 1}
		assert.False(t, rule.DueOn(day("2024-01-01")))
	})
}

func TestRepetitionRule_DueOn_Monthly(t *testing.T) {
	t.Run("day-of-month membership", func(t *testing.T) {
		rule := domain.RepetitionRule{Type: domain.RepeatMonthly, Every: 1, DaysOfMonth: []int{1, 15}}

		assert.True(t, rule.DueOn(day("2024-02-01")))
		assert.True(t, rule.DueOn(day("2024-02-15")))
		assert.False(t, rule.DueOn(day("2024-02-14")))
	})

	t.Run("every 2 months anchored to the epoch month", func(t *testing.T) {
		rule := domain.RepetitionRule{Type: domain.RepeatMonthly, Every: 2, DaysOfMonth: []int{10}}

		assert.True(t, rule.DueOn(day("2024-01-10")), "January 2024 is month 0")
		assert.False(t, rule.DueOn(day("2024-02-10")))
		assert.True(t, rule.DueOn(day("2024-03-10")))
	})
}

func TestRepetitionRule_DueOn_OneTime(t *testing.T) {
	rule := domain.RepetitionRule{Type: domain.RepeatNone, Date: "2024-06-01"}

	assert.True(t, rule.DueOn(day("2024-06-01")))
	assert.False(t, rule.DueOn(day("2024-06-02")))

	t.Run("none without a date is always due", func(t *testing.T) {
		open := domain.RepetitionRule{Type: domain.RepeatNone}
		assert.True(t, open.DueOn(day("2024-06-02")))
	})
}

func TestNormalizeDaySet(t *testing.T) {
	assert.Equal(t, []int{1, 3, 5}, domain.NormalizeDaySet([]int{5, 3, 1, 3}))
	assert.Nil(t, domain.NormalizeDaySet(nil))
}
