// Package storage provides durable client-side key/value storage.
//
// Every value survives process restarts. Concurrent processes share the same
// backing file or database with last-write-wins semantics per key.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Keys persisted by the console.
const (
	// KeyAccessToken holds the session bearer token.
	KeyAccessToken = "access_token"
	// KeyPendingWithdrawalIDs holds the JSON array of already-seen pending withdrawal IDs.
	KeyPendingWithdrawalIDs = "pending_withdrawal_ids"
)

// File permission constants
const (
	FileModeDir  os.FileMode = 0700
	FileModeFile os.FileMode = 0600
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// Store is a flat string key/value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Close releases the backing resources.
	Close() error
}

// GetJSON decodes the JSON value stored under key into out.
// It reports false without error when the key is absent.
func GetJSON(s Store, key string, out any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value as JSON and stores it under key.
func SetJSON(s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return s.Set(key, string(data))
}
