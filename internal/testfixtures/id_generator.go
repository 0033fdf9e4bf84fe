package testfixtures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces deterministic identifiers for tests.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	uuids   bool
	counter uint64
	issued  []string
}

// NewIDGenerator constructs a generator yielding "<prefix>-<n>". When prefix
// is empty, "evt" is used.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "evt"
	}
	return &IDGenerator{prefix: prefix}
}

// NewUUIDGenerator yields name-based UUIDs derived from "<seed>-<n>", so the
// sequence has the shape of the ids the services assign at runtime yet is
// stable across runs.
func NewUUIDGenerator(seed string) *IDGenerator {
	g := NewIDGenerator(seed)
	g.uuids = true
	return g
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	id := fmt.Sprintf("%s-%d", g.prefix, g.counter)
	if g.uuids {
		id = uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
	}
	g.issued = append(g.issued, id)
	return id
}

// NextFunc exposes Next as a function suitable for dependency injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Issued returns the identifiers handed out so far, oldest first.
func (g *IDGenerator) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.issued...)
}
