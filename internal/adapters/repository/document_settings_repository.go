package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devbd1/routiner-server/internal/core/domain"
)

// DocumentSettingsRepository keeps the settings document and the
// entitlement flag under their own fixed keys, mirroring the habit
// collection's whole-document storage model.
type DocumentSettingsRepository struct {
	kv KVStore
}

func NewDocumentSettingsRepository(kv KVStore) *DocumentSettingsRepository {
	return &DocumentSettingsRepository{kv: kv}
}

func (r *DocumentSettingsRepository) GetSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	raw, err := r.kv.Get(ctx, settingsKeyPrefix+userID)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return domain.DefaultSettings(), nil
		}
		return domain.UserSettings{}, err
	}

	settings := domain.DefaultSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.UserSettings{}, fmt.Errorf("corrupt settings document for user %s: %w", userID, err)
	}
	return settings, nil
}

func (r *DocumentSettingsRepository) SaveSettings(ctx context.Context, userID string, settings domain.UserSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return r.kv.Set(ctx, settingsKeyPrefix+userID, raw)
}

func (r *DocumentSettingsRepository) GetEntitlement(ctx context.Context, userID string) (string, error) {
	raw, err := r.kv.Get(ctx, entitlementKeyPrefix+userID)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return domain.EntitlementFree, nil
		}
		return "", err
	}
	return string(raw), nil
}

func (r *DocumentSettingsRepository) SetEntitlement(ctx context.Context, userID, tier string) error {
	return r.kv.Set(ctx, entitlementKeyPrefix+userID, []byte(tier))
}
