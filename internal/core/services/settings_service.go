package services

import (
	"context"

	"github.com/devbd1/routiner-server/internal/core/domain"
)

// SettingsService wraps per-user preferences and the entitlement tier.
type SettingsService struct {
	repo domain.SettingsRepository
}

func NewSettingsService(repo domain.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) GetSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	return s.repo.GetSettings(ctx, userID)
}

func (s *SettingsService) SaveSettings(ctx context.Context, userID string, settings domain.UserSettings) error {
	return s.repo.SaveSettings(ctx, userID, settings)
}

func (s *SettingsService) GetEntitlement(ctx context.Context, userID string) (string, error) {
	return s.repo.GetEntitlement(ctx, userID)
}

func (s *SettingsService) SetEntitlement(ctx context.Context, userID, tier string) error {
	if tier != domain.EntitlementFree && tier != domain.EntitlementPremium {
		return domain.ErrInvalidEntitlement
	}
	return s.repo.SetEntitlement(ctx, userID, tier)
}

func (s *SettingsService) IsPremium(ctx context.Context, userID string) (bool, error) {
	tier, err := s.repo.GetEntitlement(ctx, userID)
	if err != nil {
		return false, err
	}
	return tier == domain.EntitlementPremium, nil
}
