package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/devbd1/routiner-server/internal/core/domain"
)

// PostgresSettingsRepository keeps one row per user: the settings JSON
// document plus the entitlement tier. Absent rows read back as
// defaults, so a user never has to be provisioned explicitly.
type PostgresSettingsRepository struct {
	db *sqlx.DB
}

func NewPostgresSettingsRepository(db *sqlx.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) GetSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT settings FROM user_settings WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultSettings(), nil
		}
		return domain.UserSettings{}, fmt.Errorf("settings query failed: %w", err)
	}

	settings := domain.DefaultSettings()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &settings); err != nil {
			return domain.UserSettings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}

	return settings, nil
}

func (r *PostgresSettingsRepository) SaveSettings(ctx context.Context, userID string, settings domain.UserSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	query := `
        INSERT INTO user_settings (user_id, settings, entitlement)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET settings = EXCLUDED.settings`

	if _, err := r.db.ExecContext(ctx, query, userID, raw, domain.EntitlementFree); err != nil {
		return fmt.Errorf("settings upsert failed: %w", err)
	}
	return nil
}

func (r *PostgresSettingsRepository) GetEntitlement(ctx context.Context, userID string) (string, error) {
	var tier string
	err := r.db.QueryRowContext(ctx,
		`SELECT entitlement FROM user_settings WHERE user_id = $1`, userID).Scan(&tier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.EntitlementFree, nil
		}
		return "", fmt.Errorf("entitlement query failed: %w", err)
	}
	return tier, nil
}

func (r *PostgresSettingsRepository) SetEntitlement(ctx context.Context, userID, tier string) error {
	raw, err := json.Marshal(domain.DefaultSettings())
	if err != nil {
		return fmt.Errorf("failed to marshal default settings: %w", err)
	}

	query := `
        INSERT INTO user_settings (user_id, settings, entitlement)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET entitlement = EXCLUDED.entitlement`

	if _, err := r.db.ExecContext(ctx, query, userID, raw, tier); err != nil {
		return fmt.Errorf("entitlement upsert failed: %w", err)
	}
	return nil
}
