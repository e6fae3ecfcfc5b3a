package driven

import "github.com/custodia-labs/docchat-cli/internal/core/domain"

// SettingsStore loads and persists pipeline settings.
type SettingsStore interface {
	// Load returns the persisted settings merged over defaults.
	Load() (domain.Settings, error)

	// Save persists the settings.
	Save(settings domain.Settings) error
}
