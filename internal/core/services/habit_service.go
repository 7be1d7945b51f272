package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devbd1/routiner-server/internal/core/domain"
	"github.com/devbd1/routiner-server/internal/core/workers"
)

type HabitService struct {
	repo   domain.HabitRepository
	worker *workers.StreakWorker
}

func NewHabitService(repo domain.HabitRepository, worker *workers.StreakWorker) *HabitService {
	return &HabitService{
		repo:   repo,
		worker: worker,
	}
}

type CreateHabitInput struct {
	UserID      string
	Title       string
	Notes       string
	GoalEnabled bool
	GoalValue   float64
	GoalUnit    string
	GoalType    string
	Repetition  domain.RepetitionRule
}

type UpdateHabitInput struct {
	ID          string
	UserID      string
	Title       string
	GoalEnabled bool
	GoalValue   float64
	GoalUnit    string
	GoalType    string
	Repetition  domain.RepetitionRule
	Version     int
}

type LogProgressInput struct {
	ID     string
	UserID string
	Date   string
	Value  float64
}

func (s *HabitService) notifyStreak(habitID string) {
	if s.worker != nil {
		s.worker.Enqueue(habitID)
	}
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	existing, err := s.repo.GetByTitle(ctx, input.UserID, input.Title)
	if err != nil && !errors.Is(err, domain.ErrHabitNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrHabitDuplicate
	}

	input.Repetition.DaysOfWeek = domain.NormalizeDaySet(input.Repetition.DaysOfWeek)
	input.Repetition.DaysOfMonth = domain.NormalizeDaySet(input.Repetition.DaysOfMonth)

	habit, err := domain.NewHabit(
		input.UserID,
		input.Title,
		input.GoalEnabled,
		input.GoalValue,
		input.GoalUnit,
		input.GoalType,
		input.Repetition,
	)
	if err != nil {
		return nil, err
	}
	habit.Notes = input.Notes

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// ListDueOn filters the user's habits down to those scheduled for the
// given date.
func (s *HabitService) ListDueOn(ctx context.Context, userID string, date time.Time) ([]*domain.Habit, error) {
	habits, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	due := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		if h.Repetition.DueOn(date) {
			due = append(due, h)
		}
	}
	return due, nil
}

func (s *HabitService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Habit, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	if !habit.SameTitle(input.Title) {
		other, err := s.repo.GetByTitle(ctx, input.UserID, input.Title)
		if err != nil && !errors.Is(err, domain.ErrHabitNotFound) {
			return nil, err
		}
		if other != nil && other.ID != habit.ID {
			return nil, domain.ErrHabitDuplicate
		}
	}

	input.Repetition.DaysOfWeek = domain.NormalizeDaySet(input.Repetition.DaysOfWeek)
	input.Repetition.DaysOfMonth = domain.NormalizeDaySet(input.Repetition.DaysOfMonth)

	err = habit.Update(
		input.Title,
		input.GoalEnabled,
		input.GoalValue,
		input.GoalUnit,
		input.GoalType,
		input.Repetition,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

// LogProgress writes the value for one calendar date, replacing any
// amount already logged for that date.
func (s *HabitService) LogProgress(ctx context.Context, input LogProgressInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := habit.LogProgress(input.Date, input.Value); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	s.notifyStreak(habit.ID)

	return habit, nil
}

// Toggle flips a habit's done state for one date.
func (s *HabitService) Toggle(ctx context.Context, id, userID, date string) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := habit.Toggle(date); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	s.notifyStreak(habit.ID)

	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}
