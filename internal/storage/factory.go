package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/machibo/backoffice/internal/colors"
	"github.com/machibo/backoffice/internal/config"
	"github.com/machibo/backoffice/internal/storage/sqlite"
)

const (
	// BackendFile selects the JSON document backend.
	BackendFile = "file"
	// BackendSQLite selects the SQLite backend.
	BackendSQLite = "sqlite"

	storeFileName = "storage.json"
	storeDBName   = "backoffice.db"
)

var _ Store = (*sqlite.Storage)(nil)

// NewFromConfig creates a store for the configured backend under state_dir.
func NewFromConfig() (Store, error) {
	return NewForBackend(config.Get("storage_backend", BackendSQLite), GetStateDir())
}

// NewForBackend creates a store for backend rooted at stateDir. An sqlite
// backend that cannot be opened falls back to the file backend.
func NewForBackend(backend, stateDir string) (Store, error) {
	if stateDir == "" {
		return nil, fmt.Errorf("storage: state_dir not configured")
	}
	filePath := filepath.Join(stateDir, storeFileName)
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendFile:
		return NewFileStore(filePath)
	case "", BackendSQLite:
		s, err := sqlite.NewStorage(filepath.Join(stateDir, storeDBName))
		if err != nil {
			colors.Warning(fmt.Sprintf("failed to initialize sqlite backend, falling back to file: %v", err))
			return NewFileStore(filePath)
		}
		return s, nil
	default:
		colors.Warning(fmt.Sprintf("unknown storage backend '%s', falling back to file", backend))
		return NewFileStore(filePath)
	}
}

// GetStateDir returns the configured state directory.
func GetStateDir() string {
	return config.Get("state_dir", "")
}
