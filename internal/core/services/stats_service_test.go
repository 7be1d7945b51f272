package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/devbd1/routiner-server/internal/core/domain"
	"github.com/devbd1/routiner-server/internal/core/services"
)

func TestStatsService_GetWeeklyStats(t *testing.T) {
	// Monday 2025-03-10 through Sunday 2025-03-16.
	weekStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	weekEnd := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)

	t.Run("Success: Aggregates progress maps over the range", func(t *testing.T) {
		repo := NewMockRepo()
		svc := services.NewStatsService(repo)
		ctx := context.Background()

		water, err := domain.NewHabit("user-1", "Drink Water", true, 2, "liter", domain.GoalTypeMin, domain.EverydayRule())
		assert.NoError(t, err)
		water.Progress["2025-03-10"] = 2
		water.Progress["2025-03-11"] = 1
		water.Progress["2025-03-12"] = 3
		assert.NoError(t, repo.Create(ctx, water))

		stats, err := svc.GetWeeklyStats(ctx, domain.StatsInput{
			UserID:    "user-1",
			StartDate: weekStart,
			EndDate:   weekEnd,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, stats.TotalHabits)
		assert.Len(t, stats.HabitStats, 1)

		hs := stats.HabitStats[0]
		assert.Equal(t, []float64{2, 1, 3, 0, 0, 0, 0}, hs.DailyProgress)
		assert.Equal(t, 6.0, hs.TotalValue)
		assert.Equal(t, 7, hs.DaysDue)
		// Only the 2 and the 3 clear the 2-liter minimum goal.
		assert.Equal(t, 2, hs.DaysCompleted)
		assert.InDelta(t, 2.0/7.0*100, hs.CompletionRate, 1e-9)
	})

	t.Run("Success: Off-schedule days are excluded from the rate", func(t *testing.T) {
		repo := NewMockRepo()
		svc := services.NewStatsService(repo)
		ctx := context.Background()

		// Mondays only; achieved on the one Monday in range.
		gym, err := domain.NewHabit("user-1", "Go to the gym", false, 0, "", "", domain.RepetitionRule{
			Type:       domain.RepeatWeekly,
			Every:      1,
			DaysOfWeek: []int{1},
		})
		assert.NoError(t, err)
		gym.Progress["2025-03-10"] = 1
		assert.NoError(t, repo.Create(ctx, gym))

		stats, err := svc.GetWeeklyStats(ctx, domain.StatsInput{
			UserID:    "user-1",
			StartDate: weekStart,
			EndDate:   weekEnd,
		})

		assert.NoError(t, err)
		hs := stats.HabitStats[0]
		assert.Equal(t, 1, hs.DaysDue)
		assert.Equal(t, 1, hs.DaysCompleted)
		assert.Equal(t, 100.0, hs.CompletionRate)
		assert.Equal(t, 100.0, stats.OverallRate)
		// The slot for every day is still present for rendering.
		assert.Len(t, hs.DailyProgress, 7)
	})

	t.Run("Success: Empty account yields zero rates", func(t *testing.T) {
		repo := NewMockRepo()
		svc := services.NewStatsService(repo)

		stats, err := svc.GetWeeklyStats(context.Background(), domain.StatsInput{
			UserID:    "user-999",
			StartDate: weekStart,
			EndDate:   weekEnd,
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, stats.TotalHabits)
		assert.Equal(t, 0.0, stats.OverallRate)
	})
}
