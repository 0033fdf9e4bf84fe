package application

import (
	"testing"
	"time"

	"github.com/example/calendar-events/internal/weather"
)

func TestLookupCacheStoresUntilExpiry(t *testing.T) {
	t.Parallel()

	cache := newLookupCache[weather.Conditions](50*time.Millisecond, 4)

	cache.Add("madrid|2024-05-01 09", weather.Conditions{Temperature: 21, Condition: "Sunny"})
	got, ok := cache.Get("madrid|2024-05-01 09")
	if !ok || got.Condition != "Sunny" {
		t.Fatalf("expected cache hit, got %#v (%v)", got, ok)
	}

	time.Sleep(120 * time.Millisecond)
	if _, ok := cache.Get("madrid|2024-05-01 09"); ok {
		t.Fatalf("expected entry to expire after the ttl")
	}
}

func TestLookupCacheEvictsWhenFull(t *testing.T) {
	t.Parallel()

	cache := newLookupCache[string](time.Hour, 2)

	cache.Add("a", "Europe/Madrid")
	cache.Add("b", "Europe/Paris")
	cache.Add("c", "Europe/Rome")

	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
	if _, ok := cache.Get("a"); ok {
		t.Fatalf("expected the oldest entry to be evicted")
	}
	if tz, ok := cache.Get("c"); !ok || tz != "Europe/Rome" {
		t.Fatalf("expected newest entry to be kept, got %q", tz)
	}
}

func TestLookupCacheDefaults(t *testing.T) {
	t.Parallel()

	cache := newLookupCache[string](0, 0)
	for i := 0; i < defaultLookupEntries+10; i++ {
		cache.Add(lookupKey("city", string(rune('a'+i%26)), time.Duration(i).String()), "UTC")
	}
	if cache.Len() != defaultLookupEntries {
		t.Fatalf("expected the default bound of %d entries, got %d", defaultLookupEntries, cache.Len())
	}
}

func TestLookupKey(t *testing.T) {
	t.Parallel()

	if lookupKey(" Madrid ", "2024-05-01 09") != lookupKey("madrid", "2024-05-01 09") {
		t.Fatalf("expected normalized keys to match")
	}
}
