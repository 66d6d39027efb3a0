package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sid := NewSID()

	if err := store.Set(ctx, sid, []byte(`{"user_id":1}`), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, err := store.Get(ctx, sid)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != `{"user_id":1}` {
		t.Errorf("Get = %s", data)
	}
}

func TestMemoryStoreExpiredReadsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sid := NewSID()

	if err := store.Set(ctx, sid, []byte(`{}`), time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	data, err := store.Get(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	if data != nil {
		t.Errorf("expected nil for expired session, got %s", data)
	}
}

func TestMemoryStoreDestroy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sid := NewSID()

	_ = store.Set(ctx, sid, []byte(`{}`), time.Now().Add(time.Hour))
	if err := store.Destroy(ctx, sid); err != nil {
		t.Fatal(err)
	}
	data, _ := store.Get(ctx, sid)
	if data != nil {
		t.Error("session still readable after destroy")
	}

	// Destroying an unknown sid is a no-op.
	if err := store.Destroy(ctx, "unknown"); err != nil {
		t.Errorf("Destroy(unknown) = %v", err)
	}
}

func TestMemoryStorePrune(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_ = store.Set(ctx, "live", []byte(`{}`), time.Now().Add(time.Hour))
	_ = store.Set(ctx, "dead1", []byte(`{}`), time.Now().Add(-time.Minute))
	_ = store.Set(ctx, "dead2", []byte(`{}`), time.Now().Add(-time.Hour))

	removed, err := store.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("Prune removed %d, want 2", removed)
	}
	if data, _ := store.Get(ctx, "live"); data == nil {
		t.Error("live session removed by prune")
	}
}

func TestMemoryStoreGetCopiesPayload(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sid := NewSID()

	_ = store.Set(ctx, sid, []byte(`{"a":1}`), time.Now().Add(time.Hour))
	data, _ := store.Get(ctx, sid)
	data[0] = 'X'

	again, _ := store.Get(ctx, sid)
	if string(again) != `{"a":1}` {
		t.Errorf("stored payload mutated through returned slice: %s", again)
	}
}
