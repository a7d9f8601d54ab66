package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver guarantees that every job in a run claims a distinct
// output path. Recursive scans can surface the same stem in different
// subdirectories ("cam1/0-1200.v264", "cam2/0-1200.v264"); the flat output
// layout would map both to one file, so later claimants get a "_dupN"
// variant. Goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // output path → input that claimed it
	counters map[string]int    // requested path → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the output path input may use. An unclaimed requested
// path (or one already owned by input) is returned as-is; otherwise the
// first free "_dupN" variant is claimed and returned.
func (cr *CollisionResolver) Resolve(input, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	owner, claimed := cr.owners[requested]
	if !claimed || owner == input {
		cr.owners[requested] = input
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	n := cr.counters[requested]
	if n == 0 {
		n = 1
	}
	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_dup%d%s", stem, n, ext))
		if owner, claimed := cr.owners[candidate]; !claimed || owner == input {
			cr.counters[requested] = n + 1
			cr.owners[candidate] = input
			return candidate
		}
		n++
	}
}
