package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/devbd1/routiner-server/internal/core/domain"
)

const (
	habitsKeyPrefix      = "routiner:habits:"
	settingsKeyPrefix    = "routiner:settings:"
	entitlementKeyPrefix = "routiner:entitlement:"
)

// habitDocument is the on-disk shape of one habit inside the
// whole-collection document. Progress historically was a single running
// number; the current form is a date-keyed map. UnmarshalJSON accepts
// both and migrates the legacy number under the record's last-update
// date, so the running total survives the format change.
type habitDocument struct {
	domain.Habit
}

func (d *habitDocument) UnmarshalJSON(data []byte) error {
	type alias domain.Habit
	aux := struct {
		*alias
		Progress json.RawMessage `json:"progress"`
	}{alias: (*alias)(&d.Habit)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	d.Progress = make(map[string]float64)
	if len(aux.Progress) == 0 || string(aux.Progress) == "null" {
		return nil
	}

	var byDate map[string]float64
	if err := json.Unmarshal(aux.Progress, &byDate); err == nil {
		d.Progress = byDate
		return nil
	}

	var legacy float64
	if err := json.Unmarshal(aux.Progress, &legacy); err != nil {
		return fmt.Errorf("progress is neither a date map nor a number: %s", aux.Progress)
	}

	anchor := d.UpdatedAt
	if anchor.IsZero() {
		anchor = time.Now().UTC()
	}
	if legacy != 0 {
		d.Progress[anchor.Format(domain.ProgressDateLayout)] = legacy
	}
	return nil
}

// DocumentHabitRepository persists a user's entire habit collection as
// one JSON array under a single key, re-creating the original
// whole-document storage model on top of any KVStore. Every mutation is
// read-modify-write of the full collection; a mutex serializes writers
// within this process, and the last write wins across processes.
type DocumentHabitRepository struct {
	kv KVStore
	mu sync.Mutex
}

func NewDocumentHabitRepository(kv KVStore) *DocumentHabitRepository {
	return &DocumentHabitRepository{kv: kv}
}

func habitsKey(userID string) string { return habitsKeyPrefix + userID }

func (r *DocumentHabitRepository) load(ctx context.Context, userID string) ([]*domain.Habit, error) {
	raw, err := r.kv.Get(ctx, habitsKey(userID))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var docs []habitDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("corrupt habit document for user %s: %w", userID, err)
	}

	habits := make([]*domain.Habit, 0, len(docs))
	for i := range docs {
		h := docs[i].Habit
		habits = append(habits, &h)
	}
	return habits, nil
}

func (r *DocumentHabitRepository) save(ctx context.Context, userID string, habits []*domain.Habit) error {
	raw, err := json.Marshal(habits)
	if err != nil {
		return fmt.Errorf("failed to marshal habit collection: %w", err)
	}
	return r.kv.Set(ctx, habitsKey(userID), raw)
}

func (r *DocumentHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habits, err := r.load(ctx, h.UserID)
	if err != nil {
		return err
	}

	for _, existing := range habits {
		if existing.ID == h.ID {
			return fmt.Errorf("habit %s already exists", h.ID)
		}
	}

	if h.Version == 0 {
		h.Version = 1
	}

	// Index before document: a stale index entry just reads as
	// not-found, but a habit missing from the index would be
	// unreachable by ID. Delete keeps the mirror-image order.
	if err := r.updateOwnerIndex(ctx, func(index map[string]string) {
		index[h.ID] = h.UserID
	}); err != nil {
		return err
	}
	return r.save(ctx, h.UserID, append(habits, cloneDoc(h)))
}

func cloneDoc(h *domain.Habit) *domain.Habit {
	clone := *h
	clone.Progress = make(map[string]float64, len(h.Progress))
	for k, v := range h.Progress {
		clone.Progress[k] = v
	}
	return &clone
}

func (r *DocumentHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	// The collection is keyed by user, so a bare ID lookup needs the
	// owner index maintained alongside the documents.
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, err := r.ownerOf(ctx, id)
	if err != nil {
		return nil, err
	}

	habits, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, h := range habits {
		if h.ID == id {
			return cloneDoc(h), nil
		}
	}
	return nil, domain.ErrHabitNotFound
}

const ownerIndexKey = "routiner:habit-owners"

func (r *DocumentHabitRepository) ownerIndex(ctx context.Context) (map[string]string, error) {
	raw, err := r.kv.Get(ctx, ownerIndexKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	index := make(map[string]string)
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("corrupt owner index: %w", err)
	}
	return index, nil
}

func (r *DocumentHabitRepository) ownerOf(ctx context.Context, habitID string) (string, error) {
	index, err := r.ownerIndex(ctx)
	if err != nil {
		return "", err
	}
	userID, ok := index[habitID]
	if !ok {
		return "", domain.ErrHabitNotFound
	}
	return userID, nil
}

func (r *DocumentHabitRepository) updateOwnerIndex(ctx context.Context, mutate func(map[string]string)) error {
	index, err := r.ownerIndex(ctx)
	if err != nil {
		return err
	}
	mutate(index)
	raw, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal owner index: %w", err)
	}
	return r.kv.Set(ctx, ownerIndexKey, raw)
}

func (r *DocumentHabitRepository) GetByTitle(ctx context.Context, userID, title string) (*domain.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	habits, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, h := range habits {
		if h.SameTitle(title) {
			return cloneDoc(h), nil
		}
	}
	return nil, domain.ErrHabitNotFound
}

func (r *DocumentHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	habits, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		out = append(out, cloneDoc(h))
	}
	return out, nil
}

func (r *DocumentHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habits, err := r.load(ctx, h.UserID)
	if err != nil {
		return err
	}

	for i, existing := range habits {
		if existing.ID != h.ID {
			continue
		}
		// Whole-document mode has no real isolation across processes;
		// the stamp still catches stale writers within this one.
		if existing.Version != h.Version {
			return domain.ErrHabitConflict
		}
		clone := cloneDoc(h)
		clone.Version++
		clone.UpdatedAt = time.Now().UTC()
		habits[i] = clone
		if err := r.save(ctx, h.UserID, habits); err != nil {
			return err
		}
		h.Version = clone.Version
		h.UpdatedAt = clone.UpdatedAt
		return nil
	}

	return domain.ErrHabitNotFound
}

func (r *DocumentHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, err := r.ownerOf(ctx, id)
	if err != nil {
		return err
	}

	habits, err := r.load(ctx, userID)
	if err != nil {
		return err
	}

	kept := habits[:0]
	found := false
	for _, h := range habits {
		if h.ID == id {
			found = true
			continue
		}
		kept = append(kept, h)
	}
	if !found {
		return domain.ErrHabitNotFound
	}

	if err := r.save(ctx, userID, kept); err != nil {
		return err
	}
	return r.updateOwnerIndex(ctx, func(index map[string]string) {
		delete(index, id)
	})
}

func (r *DocumentHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	habits, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	var changes []*domain.Habit
	for _, h := range habits {
		if h.UpdatedAt.After(since) {
			changes = append(changes, cloneDoc(h))
		}
	}
	return changes, nil
}

func (r *DocumentHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, err := r.ownerOf(ctx, id)
	if err != nil {
		return err
	}

	habits, err := r.load(ctx, userID)
	if err != nil {
		return err
	}

	for _, h := range habits {
		if h.ID == id {
			h.CurrentStreak = current
			h.LongestStreak = longest
			h.UpdatedAt = time.Now().UTC()
			return r.save(ctx, userID, habits)
		}
	}
	return domain.ErrHabitNotFound
}
