package config

import (
	"os"
	"path/filepath"
)

// ConfigDir is the per-user directory name holding client state.
const ConfigDir = "phrase-batch"

// CredentialsFileName is the persisted credentials record.
const CredentialsFileName = "credentials.json"

// legacyKeyFileName is a key-material sidecar written by older builds.
// Clear() removes it if present.
const legacyKeyFileName = "key.key"

// DefaultConfigDir returns the per-user config directory
// (e.g. ~/.config/phrase-batch on Linux). Falls back to the current
// directory when the OS config dir cannot be determined.
func DefaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ConfigDir
	}
	return filepath.Join(base, ConfigDir)
}

// DefaultCredentialsPath returns the default credentials file location.
func DefaultCredentialsPath() string {
	return filepath.Join(DefaultConfigDir(), CredentialsFileName)
}
