package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrUnauthorized  = errors.New("operation not permitted for this user")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// GetByTitle retrieves a user's habit by title, case-insensitively.
	GetByTitle(ctx context.Context, userID, title string) (*Habit, error)

	// ListByUserID retrieves all habits associated with a specific user.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies the state of an existing habit. Implementations
	// backed by per-record storage must reject the write with
	// ErrHabitConflict when the stored version no longer matches the
	// habit's version stamp.
	Update(ctx context.Context, habit *Habit) error

	// Delete permanently removes a habit from the system.
	Delete(ctx context.Context, id string) error

	// GetChanges returns only the deltas occurring after a specific date.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Habit, error)

	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type SettingsRepository interface {
	GetSettings(ctx context.Context, userID string) (UserSettings, error)
	SaveSettings(ctx context.Context, userID string, settings UserSettings) error

	GetEntitlement(ctx context.Context, userID string) (string, error)
	SetEntitlement(ctx context.Context, userID string, entitlement string) error
}
