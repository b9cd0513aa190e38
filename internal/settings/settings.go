// Package settings persists operator preferences that outlive a session.
//
// Preferences are stored in TOML at {config_dir}/preferences.toml:
//
//	muted       = false
//	per_page    = 10
//	alert_sound = "/usr/share/sounds/freedesktop/stereo/message.oga"
//
// They are independent of authentication: logging out keeps them.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/machibo/backoffice/internal/config"
	"github.com/pelletier/go-toml/v2"
)

const (
	fileName = "preferences" + config.FileExtTOML

	// DefaultPerPage is the rows-per-page used when none is configured.
	DefaultPerPage = 10
	// MaxPerPage bounds the rows-per-page an operator may choose.
	MaxPerPage = 100
)

// Settings holds persisted operator preferences.
type Settings struct {
	// Muted silences the pending-withdrawal alert sound.
	Muted bool `toml:"muted" json:"muted"`
	// PerPage is the default rows per page for list views. Zero means default.
	PerPage int `toml:"per_page" json:"per_page"`
	// AlertSound overrides the configured alert sound file.
	AlertSound string `toml:"alert_sound,omitempty" json:"alert_sound"`
}

// DefaultSettings returns settings with all default values.
func DefaultSettings() *Settings {
	return &Settings{
		Muted: false,
	}
}

// Store reads and writes one preferences file. Reads always hit the file so
// a toggle made by another process is seen on the next read.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store for the preferences file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns the Store for the configured config_dir.
func DefaultStore() *Store {
	return NewStore(Path())
}

// Path returns the preferences file path for the configured config_dir.
func Path() string {
	configDir := config.Get("config_dir", "")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(xdgConfigHome, "backoffice")
	}
	return filepath.Join(configDir, fileName)
}

// Load reads settings. A missing file yields defaults.
func (s *Store) Load() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := DefaultSettings()
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if err := validate(settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// Save validates and writes settings, creating the directory if needed.
func (s *Store) Save(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(settings)
}

func (s *Store) save(settings *Settings) error {
	if err := validate(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), config.FileModeDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, config.FileModeFile); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Reset removes the preferences file and returns the defaults.
func (s *Store) Reset() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove settings file: %w", err)
	}
	return DefaultSettings(), nil
}

// Muted reports the persisted mute preference. Read errors count as unmuted.
func (s *Store) Muted() bool {
	settings, err := s.Load()
	if err != nil {
		return false
	}
	return settings.Muted
}

// SetMuted persists the mute preference.
func (s *Store) SetMuted(muted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, err := s.load()
	if err != nil {
		return err
	}
	settings.Muted = muted
	return s.save(settings)
}

// ToggleMuted flips the mute preference and returns the new value.
func (s *Store) ToggleMuted() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, err := s.load()
	if err != nil {
		return false, err
	}
	settings.Muted = !settings.Muted
	return settings.Muted, s.save(settings)
}

// PerPage returns the preferred rows per page, falling back to the
// configured per_page and then DefaultPerPage.
func (s *Store) PerPage() int {
	settings, err := s.Load()
	if err == nil && settings.PerPage > 0 {
		return settings.PerPage
	}
	return config.GetInt("per_page", DefaultPerPage)
}

func validate(settings *Settings) error {
	if settings.PerPage < 0 || settings.PerPage > MaxPerPage {
		return fmt.Errorf("per_page must be between 1 and %d, got %d", MaxPerPage, settings.PerPage)
	}
	return nil
}
