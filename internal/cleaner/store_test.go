package cleaner

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) (*ProfileStore, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "state", "profiles.db")
	store, err := OpenProfileStore(dbPath)
	if err != nil {
		t.Fatalf("OpenProfileStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store, dbPath
}

func TestProfileStore_LookupMissing(t *testing.T) {
	store, _ := openTestStore(t)

	profile, err := store.Lookup(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if profile != "" {
		t.Errorf("Expected no profile, got %q", profile)
	}
}

func TestProfileStore_SaveAndLookup(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "bob", "/profiles/bob.prof"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	profile, err := store.Lookup(ctx, "bob")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if profile != "/profiles/bob.prof" {
		t.Errorf("Expected '/profiles/bob.prof', got %q", profile)
	}

	// Replace
	if err := store.Save(ctx, "bob", "/profiles/bob2.prof"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	profile, _ = store.Lookup(ctx, "bob")
	if profile != "/profiles/bob2.prof" {
		t.Errorf("Expected replaced profile, got %q", profile)
	}

	// Usernames are independent
	profile, _ = store.Lookup(ctx, "Bob")
	if profile != "" {
		t.Errorf("Expected no profile for 'Bob', got %q", profile)
	}
}

func TestProfileStore_Forget(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "bob", "/profiles/bob.prof"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Forget(ctx, "bob"); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}

	profile, err := store.Lookup(ctx, "bob")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if profile != "" {
		t.Errorf("Expected profile to be forgotten, got %q", profile)
	}
}

func TestProfileStore_Persists(t *testing.T) {
	store, dbPath := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "alice", "/profiles/alice.prof"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	store.Close()

	reopened, err := OpenProfileStore(dbPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	profile, err := reopened.Lookup(ctx, "alice")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if profile != "/profiles/alice.prof" {
		t.Errorf("Expected persisted profile, got %q", profile)
	}
}
