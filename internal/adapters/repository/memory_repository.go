package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/devbd1/routiner-server/internal/core/domain"
)

var _ domain.HabitRepository = (*InMemoryHabitRepository)(nil)

// InMemoryHabitRepository backs handler tests and local development.
type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if habit.Version == 0 {
		habit.Version = 1
	}
	r.store[habit.ID] = cloneDoc(habit)
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	return cloneDoc(habit), nil
}

func (r *InMemoryHabitRepository) GetByTitle(ctx context.Context, userID, title string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.store {
		if h.UserID == userID && h.SameTitle(title) {
			return cloneDoc(h), nil
		}
	}
	return nil, domain.ErrHabitNotFound
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if h.UserID == userID {
			habits = append(habits, cloneDoc(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[habit.ID]
	if !ok {
		return domain.ErrHabitNotFound
	}
	if existing.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	clone := cloneDoc(habit)
	clone.Version++
	clone.UpdatedAt = time.Now().UTC()
	r.store[habit.ID] = clone

	habit.Version = clone.Version
	habit.UpdatedAt = clone.UpdatedAt
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}

	delete(r.store, id)
	return nil
}

func (r *InMemoryHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var changes []*domain.Habit
	for _, h := range r.store {
		if h.UserID == userID && h.UpdatedAt.After(since) {
			changes = append(changes, cloneDoc(h))
		}
	}
	return changes, nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// InMemorySettingsRepository is the settings counterpart for tests.
type InMemorySettingsRepository struct {
	mu           sync.RWMutex
	settings     map[string]domain.UserSettings
	entitlements map[string]string
}

func NewInMemorySettingsRepository() *InMemorySettingsRepository {
	return &InMemorySettingsRepository{
		settings:     make(map[string]domain.UserSettings),
		entitlements: make(map[string]string),
	}
}

func (r *InMemorySettingsRepository) GetSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[userID]
	if !ok {
		return domain.DefaultSettings(), nil
	}
	return s, nil
}

func (r *InMemorySettingsRepository) SaveSettings(ctx context.Context, userID string, s domain.UserSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[userID] = s
	return nil
}

func (r *InMemorySettingsRepository) GetEntitlement(ctx context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tier, ok := r.entitlements[userID]
	if !ok {
		return domain.EntitlementFree, nil
	}
	return tier, nil
}

func (r *InMemorySettingsRepository) SetEntitlement(ctx context.Context, userID, tier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entitlements[userID] = tier
	return nil
}
