package data

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRegistry(t *testing.T) *registryRepo {
	t.Helper()
	r, err := NewRegistryRepo(MemoryDBPath)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r.(*registryRepo)
}

func TestRegistryRepo_Subscribers(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	added, err := r.AddSubscriber(ctx, "g1", "bob")
	if err != nil || !added {
		t.Fatalf("Expected bob to be added, got added=%v err=%v", added, err)
	}
	if _, err := r.AddSubscriber(ctx, "g1", "alice"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	added, err = r.AddSubscriber(ctx, "g1", "bob")
	if err != nil || added {
		t.Errorf("Expected duplicate add to be ignored, got added=%v err=%v", added, err)
	}
	if _, err := r.AddSubscriber(ctx, "g2", "carol"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	subs, err := r.Subscribers(ctx, "g1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(subs) != 2 || subs[0] != "bob" || subs[1] != "alice" {
		t.Errorf("Expected [bob alice], got %v", subs)
	}

	removed, err := r.RemoveSubscriber(ctx, "g1", "bob")
	if err != nil || !removed {
		t.Errorf("Expected bob to be removed, got removed=%v err=%v", removed, err)
	}
	removed, _ = r.RemoveSubscriber(ctx, "g1", "bob")
	if removed {
		t.Error("Expected second removal to report false")
	}

	subs, _ = r.Subscribers(ctx, "g1")
	if len(subs) != 1 || subs[0] != "alice" {
		t.Errorf("Expected [alice], got %v", subs)
	}
}

func TestRegistryRepo_SubscribersEmpty(t *testing.T) {
	r := newTestRegistry(t)

	subs, err := r.Subscribers(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if subs == nil || len(subs) != 0 {
		t.Errorf("Expected empty list, got %#v", subs)
	}
}

func TestRegistryRepo_NotificationChannel(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	id, err := r.NotificationChannel(ctx, "g1")
	if err != nil || id != "" {
		t.Fatalf("Expected no cached channel, got %q err=%v", id, err)
	}

	if err := r.SetNotificationChannel(ctx, "g1", "c1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := r.SetNotificationChannel(ctx, "g1", "c2"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	id, err = r.NotificationChannel(ctx, "g1")
	if err != nil || id != "c2" {
		t.Errorf("Expected c2, got %q err=%v", id, err)
	}
}

func TestRegistryRepo_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.db")
	r, err := NewRegistryRepo(path)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	defer r.Close()

	if _, err := r.AddSubscriber(context.Background(), "g1", "bob"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}
