package notification

import (
	"context"

	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/storage"
)

// Settings are the user's notification preferences.
type Settings struct {
	Desktop    bool                      `json:"desktop"`
	Sound      bool                      `json:"sound"`
	Email      bool                      `json:"email"`
	MutedTypes []domain.NotificationType `json:"mutedTypes,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{Desktop: true, Sound: true, Email: true}
}

// Allows reports whether t is not muted.
func (s Settings) Allows(t domain.NotificationType) bool {
	for _, muted := range s.MutedTypes {
		if muted == t {
			return false
		}
	}
	return true
}

// LoadSettings returns the stored settings or the defaults.
func LoadSettings(ctx context.Context, store storage.Store) (Settings, error) {
	settings, ok, err := storage.GetJSON[Settings](ctx, store, storage.KeyNotificationSettings)
	if err != nil {
		return DefaultSettings(), err
	}
	if !ok {
		return DefaultSettings(), nil
	}
	return settings, nil
}

func SaveSettings(ctx context.Context, store storage.Store, settings Settings) error {
	return storage.SetJSON(ctx, store, storage.KeyNotificationSettings, settings)
}
