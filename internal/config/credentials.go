package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phrase-tools/phrase-batch/internal/models"
)

// CredentialsStore persists a bearer token, username, and expiry at a fixed
// path. Absence or corruption of the file is treated as "not logged in",
// never as an error the caller has to handle.
type CredentialsStore struct {
	path string
}

// NewCredentialsStore creates a store rooted at path. An empty path selects
// the default per-user location.
func NewCredentialsStore(path string) *CredentialsStore {
	if path == "" {
		path = DefaultCredentialsPath()
	}
	return &CredentialsStore{path: path}
}

// Path returns the file the store reads and writes.
func (s *CredentialsStore) Path() string {
	return s.path
}

// Load restores persisted credentials. Returns ok=false on a missing or
// malformed file.
func (s *CredentialsStore) Load() (models.Credentials, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", s.path).Msg("failed to read credentials file")
		}
		return models.Credentials{}, false
	}

	var creds models.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("credentials file is corrupt, ignoring")
		return models.Credentials{}, false
	}
	return creds, true
}

// Save overwrites the persisted credentials. The record is written to a
// temporary file and renamed into place so a concurrent reader never
// observes a partial record.
func (s *CredentialsStore) Save(creds models.Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), CredentialsFileName+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return err
	}
	log.Info().Str("user", creds.Username).Msg("credentials saved")
	return nil
}

// Clear removes the persisted credentials and any key-material sidecar left
// behind by older builds. Removing files that do not exist is not an error.
func (s *CredentialsStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	keyPath := filepath.Join(filepath.Dir(s.path), legacyKeyFileName)
	if err := os.Remove(keyPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	log.Info().Msg("credentials cleared")
	return nil
}

// IsValid reports whether creds carries a token usable at the given instant.
func (s *CredentialsStore) IsValid(creds models.Credentials, now time.Time) bool {
	return creds.Valid(now)
}
