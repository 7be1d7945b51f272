package domain

import "time"

type StatsInput struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
}

// HabitStat summarizes one habit over a date range. DailyProgress holds
// one value per day in range order; days the habit was off-schedule
// still occupy a slot so clients can render a fixed-width week.
type HabitStat struct {
	HabitID        string    `json:"habit_id"`
	HabitTitle     string    `json:"habit_title"`
	GoalValue      float64   `json:"goal_value"`
	GoalUnit       string    `json:"goal_unit"`
	GoalType       string    `json:"goal_type"`
	DailyProgress  []float64 `json:"daily_progress"`
	TotalValue     float64   `json:"total_value"`
	DaysDue        int       `json:"days_due"`
	DaysCompleted  int       `json:"days_completed"`
	CompletionRate float64   `json:"completion_rate"`
	CurrentStreak  int       `json:"current_streak"`
	LongestStreak  int       `json:"longest_streak"`
}

type WeeklyStats struct {
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	TotalHabits int         `json:"total_habits"`
	HabitStats  []HabitStat `json:"habit_stats"`
	OverallRate float64     `json:"overall_rate"`
}
