package domain

import "strings"

// The AI-log flow only accepts habit names from these closed lists.
// Dynamic habits may carry a numeric goal and unit; static habits are
// binary and never do.
var (
	DynamicVocabulary = []string{
		"Video Games", "Drink Water", "Read", "Take a Course", "Study", "Watch Media",
	}
	StaticVocabulary = []string{
		"Make your bed", "Clean the house", "Clean the dishes", "Pay the bills",
		"Meditate", "Pray", "Cook a meal", "Practice Yoga", "Go to the gym", "Take a shower",
	}
)

func inVocabulary(vocab []string, name string) bool {
	for _, v := range vocab {
		if strings.EqualFold(v, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// IsDynamicHabit reports whether name belongs to the dynamic (goal
// carrying) vocabulary.
func IsDynamicHabit(name string) bool {
	return inVocabulary(DynamicVocabulary, name)
}

// IsStaticHabit reports whether name belongs to the static (binary)
// vocabulary.
func IsStaticHabit(name string) bool {
	return inVocabulary(StaticVocabulary, name)
}
