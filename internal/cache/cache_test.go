package cache

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func TestKeyIgnoresPartOrder(t *testing.T) {
	a := Key("chart", map[string]any{
		"lat":    34.0522,
		"lon":    -118.2437,
		"houses": "placidus",
	})
	b := Key("chart", map[string]any{
		"houses": "placidus",
		"lon":    -118.2437,
		"lat":    34.0522,
	})
	if a != b {
		t.Errorf("identical parts in different order produced different keys:\n%s\n%s", a, b)
	}
}

func TestKeySeparatesOperations(t *testing.T) {
	parts := map[string]any{"lat": 0.0, "lon": 0.0}
	if Key("chart", parts) == Key("transits", parts) {
		t.Error("different operations must never share a key")
	}
}

func TestKeyDistinguishesValues(t *testing.T) {
	a := Key("chart", map[string]any{"lat": 34.0522})
	b := Key("chart", map[string]any{"lat": 34.0523})
	if a == b {
		t.Error("different coordinates must produce different keys")
	}
}

func TestKeyCanonicalFloats(t *testing.T) {
	a := Key("chart", map[string]any{"lat": 34.0})
	b := Key("chart", map[string]any{"lat": float64(34)})
	if a != b {
		t.Error("numerically equal floats must hash identically")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Error("unexpected hit for missing key")
	}

	if err := s.Put(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	val, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v, %v), want hit", val, ok, err)
	}
	if string(val) != "v" {
		t.Errorf("value = %q, want v", val)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("entry should have expired")
	}
}

func TestFacadeRoundTrip(t *testing.T) {
	f := NewFacade(NewMemoryStore(), slog.Default())
	ctx := context.Background()

	type payload struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}
	f.Put(ctx, "k", payload{Name: "sun", Value: 84.3}, 0)

	var out payload
	if !f.Get(ctx, "k", &out) {
		t.Fatal("expected cache hit")
	}
	if out.Name != "sun" || out.Value != 84.3 {
		t.Errorf("got %+v", out)
	}
}

func TestNilFacadeIsInert(t *testing.T) {
	var f *Facade
	ctx := context.Background()

	f.Put(ctx, "k", "v", 0)
	var out string
	if f.Get(ctx, "k", &out) {
		t.Error("nil facade must always miss")
	}
}

func TestTransitsForDateTTLEndsAtMidnightUTC(t *testing.T) {
	var f *Facade
	now := time.Date(2025, 6, 15, 21, 30, 0, 0, time.UTC)
	ttl := f.TransitsForDateTTL(now)
	if want := 2*time.Hour + 30*time.Minute; ttl != want {
		t.Errorf("ttl = %v, want %v", ttl, want)
	}
	if ttl := f.TransitsForDateTTL(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)); ttl != 24*time.Hour {
		t.Errorf("ttl at midnight = %v, want 24h", ttl)
	}
}
