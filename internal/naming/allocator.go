package naming

import (
	"os"
	"path/filepath"
	"sync"
)

// Allocator hands out collision-free output paths. The check-then-name step
// is not atomic against the filesystem, so concurrent download workers in
// one run could otherwise both observe "name free" and clobber each other;
// the allocator serializes allocation and remembers every path it has
// handed out, which closes that race within a run.
type Allocator struct {
	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewAllocator creates an allocator for one batch run.
func NewAllocator() *Allocator {
	return &Allocator{reserved: make(map[string]struct{})}
}

// Allocate returns a path in dir based on filename that neither exists on
// disk nor has been handed out before, appending " (1)", " (2)", … before
// the extension until a free name is found. The returned path is reserved
// for the caller.
func (a *Allocator) Allocate(dir, filename string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	candidate := filepath.Join(dir, filename)
	for n := 1; a.taken(candidate); n++ {
		candidate = filepath.Join(dir, numberedName(filename, n))
	}
	a.reserved[candidate] = struct{}{}
	return candidate
}

func (a *Allocator) taken(path string) bool {
	if _, ok := a.reserved[path]; ok {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}
