package domain

import "errors"

var ErrInvalidEntitlement = errors.New("entitlement must be free or premium")

// UserSettings holds user-level display flags, persisted as one JSON
// document per user.
type UserSettings struct {
	// MaxBarsStartFull inverts the display of max-type goal progress
	// bars so they start full and drain as progress is logged.
	MaxBarsStartFull bool `json:"max_bars_start_full"`
}

// Premium entitlement values, stored as a plain string flag under its
// own storage key.
const (
	EntitlementFree    = "free"
	EntitlementPremium = "premium"
)

func DefaultSettings() UserSettings {
	return UserSettings{MaxBarsStartFull: false}
}
