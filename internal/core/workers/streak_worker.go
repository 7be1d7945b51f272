package workers

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/devbd1/routiner-server/internal/core/domain"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type StreakJob struct {
	HabitID string
}

// StreakWorker recomputes current/longest streaks from a habit's
// date-keyed progress map whenever progress changes.
type StreakWorker struct {
	habitRepo HabitRepository
	jobs      chan StreakJob
}

func NewStreakWorker(repo HabitRepository) *StreakWorker {
	return &StreakWorker{
		habitRepo: repo,
		jobs:      make(chan StreakJob, 100),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Streak Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Streak Worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("Streak Worker queue full! Dropping job for habit %s", habitID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker Error fetching habit %s: %v", job.HabitID, err)
		return
	}

	current, longest := CalculateStreaks(habit)

	if habit.CurrentStreak != current || habit.LongestStreak != longest {
		if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, current, longest); err != nil {
			log.Printf("Worker Failed to update streak for %s: %v", job.HabitID, err)
		} else {
			log.Printf("Streak updated for %s: Current=%d, Longest=%d", habit.Title, current, longest)
		}
	}
}

// CalculateStreaks walks the habit's achieved days newest-first. The
// current streak survives a gap of one day (today not yet logged).
func CalculateStreaks(habit *domain.Habit) (int, int) {
	var achieved []time.Time
	for dateKey := range habit.Progress {
		if !habit.AchievedOn(dateKey) {
			continue
		}
		d, err := time.Parse(domain.ProgressDateLayout, dateKey)
		if err != nil {
			continue
		}
		achieved = append(achieved, d)
	}

	if len(achieved) == 0 {
		return 0, 0
	}

	sort.Slice(achieved, func(i, j int) bool {
		return achieved[i].After(achieved[j])
	})

	longest := 1
	run := 1
	for i := 1; i < len(achieved); i++ {
		if achieved[i-1].Sub(achieved[i]) == 24*time.Hour {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	gap := today.Sub(achieved[0])

	current := 0
	if gap <= 24*time.Hour {
		current = 1
		for i := 1; i < len(achieved); i++ {
			if achieved[i-1].Sub(achieved[i]) == 24*time.Hour {
				current++
			} else {
				break
			}
		}
	}

	return current, longest
}
