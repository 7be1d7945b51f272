package workers_test

import (
	"context"
	"testing"
	"time"

	"github.com/devbd1/routiner-server/internal/core/domain"
	"github.com/devbd1/routiner-server/internal/core/workers"
	"github.com/stretchr/testify/assert"
)

type stubRepo struct {
	habit   *domain.Habit
	current int
	longest int
	updated bool
}

func (s *stubRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return s.habit, nil
}

func (s *stubRepo) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	s.current = current
	s.longest = longest
	s.updated = true
	return nil
}

func dateKey(daysAgo int) string {
	return time.Now().UTC().AddDate(0, 0, -daysAgo).Format(domain.ProgressDateLayout)
}

func newBinaryHabit(t *testing.T) *domain.Habit {
	h, err := domain.NewHabit("u1", "Meditate", false, 0, "", "", domain.EverydayRule())
	assert.Nil(t, err)
	return h
}

func TestCalculateStreaks(t *testing.T) {
	t.Run("empty progress has no streaks", func(t *testing.T) {
		h := newBinaryHabit(t)
		current, longest := workers.CalculateStreaks(h)
		assert.Equal(t, 0, current)
		assert.Equal(t, 0, longest)
	})

	t.Run("consecutive achieved days count from today", func(t *testing.T) {
		h := newBinaryHabit(t)
		h.Progress[dateKey(0)] = 1
		h.Progress[dateKey(1)] = 1
		h.Progress[dateKey(2)] = 1

		current, longest := workers.CalculateStreaks(h)
		assert.Equal(t, 3, current)
		assert.Equal(t, 3, longest)
	})

	t.Run("gap resets the current streak but keeps the longest", func(t *testing.T) {
		h := newBinaryHabit(t)
		h.Progress[dateKey(0)] = 1
		h.Progress[dateKey(3)] = 1
		h.Progress[dateKey(4)] = 1
		h.Progress[dateKey(5)] = 1

		current, longest := workers.CalculateStreaks(h)
		assert.Equal(t, 1, current)
		assert.Equal(t, 3, longest)
	})

	t.Run("unachieved days do not extend streaks", func(t *testing.T) {
		h, err := domain.NewHabit("u1", "Read", true, 10, "page", domain.GoalTypeMin, domain.EverydayRule())
		assert.Nil(t, err)
		h.Progress[dateKey(0)] = 12
		h.Progress[dateKey(1)] = 4 // below goal

		current, longest := workers.CalculateStreaks(h)
		assert.Equal(t, 1, current)
		assert.Equal(t, 1, longest)
	})

	t.Run("yesterday only still counts as current", func(t *testing.T) {
		h := newBinaryHabit(t)
		h.Progress[dateKey(1)] = 1

		current, _ := workers.CalculateStreaks(h)
		assert.Equal(t, 1, current)
	})
}

func TestStreakWorker_ProcessesJobs(t *testing.T) {
	h := newBinaryHabit(t)
	h.Progress[dateKey(0)] = 1
	h.Progress[dateKey(1)] = 1

	repo := &stubRepo{habit: h}
	worker := workers.NewStreakWorker(repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	worker.Enqueue(h.ID)

	assert.Eventually(t, func() bool {
		return repo.updated
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, repo.current)
	assert.Equal(t, 2, repo.longest)
}
