package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	if _, ok, err := store.Get(ctx, "911234567890"); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	want := State{Menu: MenuStoreSelection, Stores: []string{"Store A"}, Qualities: []string{"LTS8156"}}
	if err := store.Set(ctx, "911234567890", want); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, ok, err := store.Get(ctx, "911234567890")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if got.Menu != MenuStoreSelection || len(got.Stores) != 1 || len(got.Qualities) != 1 {
		t.Errorf("unexpected state: %+v", got)
	}

	if err := store.Delete(ctx, "911234567890"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "911234567890"); ok {
		t.Error("state survived delete")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "user", State{Menu: MenuMain}); err != nil {
		t.Fatal(err)
	}

	now = now.Add(30 * time.Second)
	if _, ok, _ := store.Get(ctx, "user"); !ok {
		t.Fatal("state expired too early")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "user"); ok {
		t.Fatal("state should have expired")
	}
}

func TestMemoryStoreSetResetsTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	now := time.Now()
	store.now = func() time.Time { return now }

	_ = store.Set(ctx, "user", State{Menu: MenuMain})
	now = now.Add(45 * time.Second)
	_ = store.Set(ctx, "user", State{Menu: MenuStockQuery})
	now = now.Add(45 * time.Second)

	got, ok, _ := store.Get(ctx, "user")
	if !ok {
		t.Fatal("overwrite did not reset the TTL")
	}
	if got.Menu != MenuStockQuery {
		t.Errorf("unexpected menu: %q", got.Menu)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	now := time.Now()
	store.now = func() time.Time { return now }

	_ = store.Set(ctx, "a", State{Menu: MenuMain})
	_ = store.Set(ctx, "b", State{Menu: MenuMain})
	now = now.Add(2 * time.Minute)
	_ = store.Set(ctx, "c", State{Menu: MenuMain})

	if removed := store.Sweep(); removed != 2 {
		t.Errorf("Sweep removed %d entries, want 2", removed)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}
