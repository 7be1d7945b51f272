package services

import (
	"context"
	"time"

	"github.com/devbd1/routiner-server/internal/core/domain"
)

type StatsService struct {
	habitRepo domain.HabitRepository
}

func NewStatsService(habitRepo domain.HabitRepository) *StatsService {
	return &StatsService{habitRepo: habitRepo}
}

// GetWeeklyStats aggregates each habit's progress map over the range.
// Completion rates count only days the habit was actually scheduled.
func (s *StatsService) GetWeeklyStats(ctx context.Context, input domain.StatsInput) (*domain.WeeklyStats, error) {
	startDate := input.StartDate.UTC().Truncate(24 * time.Hour)
	endDate := input.EndDate.UTC().Truncate(24 * time.Hour)

	habits, err := s.habitRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	stats := &domain.WeeklyStats{
		StartDate:   startDate.Format(domain.ProgressDateLayout),
		EndDate:     endDate.Format(domain.ProgressDateLayout),
		TotalHabits: len(habits),
		HabitStats:  make([]domain.HabitStat, 0, len(habits)),
	}

	totalDaysDue := 0
	totalDaysCompleted := 0

	for _, h := range habits {
		hStat := domain.HabitStat{
			HabitID:       h.ID,
			HabitTitle:    h.Title,
			GoalValue:     h.GoalValue,
			GoalUnit:      h.GoalUnit,
			GoalType:      h.GoalType,
			CurrentStreak: h.CurrentStreak,
			LongestStreak: h.LongestStreak,
			DailyProgress: make([]float64, 0),
		}

		for currentDate := startDate; !currentDate.After(endDate); currentDate = currentDate.AddDate(0, 0, 1) {
			dateKey := currentDate.Format(domain.ProgressDateLayout)
			val := h.Progress[dateKey]

			hStat.TotalValue += val
			hStat.DailyProgress = append(hStat.DailyProgress, val)

			if !h.Repetition.DueOn(currentDate) {
				continue
			}

			hStat.DaysDue++
			totalDaysDue++

			if h.AchievedOn(dateKey) {
				hStat.DaysCompleted++
				totalDaysCompleted++
			}
		}

		if hStat.DaysDue > 0 {
			hStat.CompletionRate = float64(hStat.DaysCompleted) / float64(hStat.DaysDue) * 100
		}

		stats.HabitStats = append(stats.HabitStats, hStat)
	}

	if totalDaysDue > 0 {
		stats.OverallRate = float64(totalDaysCompleted) / float64(totalDaysDue) * 100
	}

	return stats, nil
}
