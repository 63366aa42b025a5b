package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/toolsnap/toolsnap/internal/models"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if store.AccessToken() != "" || store.CurrentUser() != nil {
		t.Fatal("fresh store must be empty")
	}

	if err := store.SetTokens("access-1", "refresh-1"); err != nil {
		t.Fatalf("failed to set tokens: %v", err)
	}
	user := models.User{ID: uuid.New(), FullName: "Dana Worker", Email: "dana@example.com"}
	if err := store.SetUser(user); err != nil {
		t.Fatalf("failed to set user: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("credentials file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("credentials file must be private, got %v", info.Mode().Perm())
	}

	// A second store reads what the first one wrote.
	reloaded, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	if reloaded.AccessToken() != "access-1" || reloaded.RefreshToken() != "refresh-1" {
		t.Errorf("tokens not persisted: %q %q", reloaded.AccessToken(), reloaded.RefreshToken())
	}
	if got := reloaded.CurrentUser(); got == nil || got.ID != user.ID {
		t.Errorf("user not persisted: %+v", got)
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.SetTokens("access-1", "refresh-1"); err != nil {
		t.Fatalf("failed to set tokens: %v", err)
	}

	store.Clear()
	if store.AccessToken() != "" || store.RefreshToken() != "" || store.CurrentUser() != nil {
		t.Error("state must be empty after Clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("credentials file must be removed on Clear")
	}
}
