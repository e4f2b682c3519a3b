package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrase-tools/phrase-batch/internal/models"
)

func tempStore(t *testing.T) *CredentialsStore {
	t.Helper()
	return NewCredentialsStore(filepath.Join(t.TempDir(), "credentials.json"))
}

func TestCredentialsRoundTrip(t *testing.T) {
	store := tempStore(t)

	creds := models.Credentials{
		Username: "alice",
		Token:    "tok-123",
		Expires:  "2030-01-01T00:00:00Z",
	}
	if err := store.Save(creds); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("Load() reported absent after Save()")
	}
	if loaded != creds {
		t.Errorf("Load() = %+v, want %+v", loaded, creds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := tempStore(t)
	if _, ok := store.Load(); ok {
		t.Error("Load() should report absent for a missing file")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	store := tempStore(t)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Load(); ok {
		t.Error("Load() should report absent for a corrupt file")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	store := tempStore(t)

	// Clearing with nothing persisted is not an error.
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() on empty store error = %v", err)
	}

	if err := store.Save(models.Credentials{Username: "bob", Token: "t"}); err != nil {
		t.Fatal(err)
	}
	// Legacy key sidecar should be removed too.
	keyPath := filepath.Join(filepath.Dir(store.Path()), legacyKeyFileName)
	if err := os.WriteFile(keyPath, []byte("old key material"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Error("Load() should report absent after Clear()")
	}
	if _, err := os.Stat(keyPath); !os.IsNotExist(err) {
		t.Error("Clear() should remove the legacy key file")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear() error = %v", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := tempStore(t)

	if err := store.Save(models.Credentials{Username: "old", Token: "old-token"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(models.Credentials{Username: "new", Token: "new-token"}); err != nil {
		t.Fatal(err)
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("Load() reported absent")
	}
	if loaded.Username != "new" || loaded.Token != "new-token" {
		t.Errorf("Load() = %+v, want the overwritten record", loaded)
	}
}

func TestIsValid(t *testing.T) {
	store := tempStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	valid := models.Credentials{Token: "t", Expires: now.Add(time.Minute).Format(time.RFC3339)}
	if !store.IsValid(valid, now) {
		t.Error("IsValid() = false for a future expiry")
	}

	expired := models.Credentials{Token: "t", Expires: now.Add(-time.Minute).Format(time.RFC3339)}
	if store.IsValid(expired, now) {
		t.Error("IsValid() = true for a past expiry")
	}
}
