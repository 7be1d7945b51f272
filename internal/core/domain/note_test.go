package domain_test

import (
	"testing"

	"github.com/devbd1/routiner-server/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseNote(t *testing.T) {
	tests := []struct {
		name string
		line string
		want domain.Note
	}{
		{
			"habit with number and unit",
			"Drink Water | 2 glasses",
			domain.Note{Habit: "Drink Water", Number: "2", Unit: "glasses"},
		},
		{
			"fractional number",
			"Read | 1.5 hours",
			domain.Note{Habit: "Read", Number: "1.5", Unit: "hours"},
		},
		{
			"number without unit",
			"Study | 45",
			domain.Note{Habit: "Study", Number: "45"},
		},
		{
			"tight spacing",
			"Video Games|30 minutes",
			domain.Note{Habit: "Video Games", Number: "30", Unit: "minutes"},
		},
		{
			"unshaped line falls back to raw text",
			"just a note",
			domain.Note{Habit: "just a note"},
		},
		{
			"separator without number falls back",
			"Drink Water | lots",
			domain.Note{Habit: "Drink Water | lots"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseNote(tt.line))
		})
	}
}

func TestNote_Parsed(t *testing.T) {
	assert.True(t, domain.ParseNote("Read | 10 pages").Parsed())
	assert.False(t, domain.ParseNote("just a note").Parsed())
}

func TestVocabulary(t *testing.T) {
	assert.True(t, domain.IsDynamicHabit("Drink Water"))
	assert.True(t, domain.IsDynamicHabit("drink water"), "vocabulary match ignores case")
	assert.False(t, domain.IsDynamicHabit("Meditate"))

	assert.True(t, domain.IsStaticHabit("Meditate"))
	assert.False(t, domain.IsStaticHabit("Drink Water"))
	assert.False(t, domain.IsStaticHabit("Skydiving"))
}
