package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/machibo/backoffice/internal/colors"
	"github.com/machibo/backoffice/internal/format"
	"github.com/machibo/backoffice/internal/settings"
)

// SettingsClient reads and writes operator preferences.
type SettingsClient interface {
	Load() (*settings.Settings, error)
	Save(*settings.Settings) error
	Reset() (*settings.Settings, error)
}

// SettingsUseCase coordinates settings command behavior.
type SettingsUseCase struct {
	client SettingsClient
}

// NewSettingsUseCase creates a settings use-case.
func NewSettingsUseCase(client SettingsClient) *SettingsUseCase {
	if client == nil {
		panic("NewSettingsUseCase: client dependency cannot be nil")
	}
	return &SettingsUseCase{client: client}
}

// SettingKeys lists the keys accepted by Set.
var SettingKeys = []string{"muted", "per_page", "alert_sound"}

// ResetSettingsInput contains reset options and the confirmation prompt.
type ResetSettingsInput struct {
	Force     bool
	ConfirmFn func() bool
}

// Show writes the current preferences as JSON.
func (u *SettingsUseCase) Show(w io.Writer) error {
	current, err := u.client.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	return format.WriteJSON(w, current)
}

// Set changes one preference and saves the file.
func (u *SettingsUseCase) Set(key, value string) error {
	current, err := u.client.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	switch strings.ToLower(key) {
	case "muted":
		muted, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid muted value %q: want true or false", value)
		}
		current.Muted = muted
	case "per_page":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > settings.MaxPerPage {
			return fmt.Errorf("invalid per_page value %q: want 0 to %d", value, settings.MaxPerPage)
		}
		current.PerPage = n
	case "alert_sound":
		current.AlertSound = value
	default:
		return fmt.Errorf("unknown setting %q (want one of: %s)", key, strings.Join(SettingKeys, ", "))
	}
	if err := u.client.Save(current); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	colors.Success(fmt.Sprintf("Set %s = %s", strings.ToLower(key), value))
	return nil
}

// Reset deletes the preferences file unless the operator declines.
func (u *SettingsUseCase) Reset(input ResetSettingsInput) error {
	if !input.Force && input.ConfirmFn != nil && !input.ConfirmFn() {
		colors.Info("Operation cancelled")
		return nil
	}
	if _, err := u.client.Reset(); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}
	colors.Success("Settings reset to defaults")
	return nil
}
