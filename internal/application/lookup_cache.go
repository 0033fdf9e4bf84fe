package application

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultLookupTTL     = 5 * time.Minute
	defaultLookupEntries = 256
)

// newLookupCache returns a size-bounded cache whose entries expire ttl after
// they are stored. Expired entries are dropped by the cache itself.
func newLookupCache[V any](ttl time.Duration, maxEntries int) *expirable.LRU[string, V] {
	if ttl <= 0 {
		ttl = defaultLookupTTL
	}
	if maxEntries <= 0 {
		maxEntries = defaultLookupEntries
	}
	return expirable.NewLRU[string, V](maxEntries, nil, ttl)
}

// lookupKey normalizes location text so "madrid" and " Madrid" share an entry.
func lookupKey(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, part := range parts {
		normalized[i] = strings.ToLower(strings.TrimSpace(part))
	}
	return strings.Join(normalized, "|")
}
