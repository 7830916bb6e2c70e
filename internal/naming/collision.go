package naming

import (
	"fmt"
)

// ExistsFunc reports whether name is already taken on disk.
type ExistsFunc func(name string) (bool, error)

// Resolver hands out unique filenames within one planning pass. Counters are
// keyed by base name and remember the last winning suffix, so distinct source
// files mapping to the same base get "base", "base_1", "base_2", ... without
// re-probing from zero. A Resolver must not be shared between passes.
type Resolver struct {
	exists   ExistsFunc
	counters map[string]int      // base name -> next candidate index
	claimed  map[string]struct{} // names handed out during this pass
}

// NewResolver creates a resolver that consults exists for disk state.
func NewResolver(exists ExistsFunc) *Resolver {
	return &Resolver{
		exists:   exists,
		counters: make(map[string]int),
		claimed:  make(map[string]struct{}),
	}
}

// Claim registers name as taken without resolving it.
func (r *Resolver) Claim(name string) {
	r.claimed[name] = struct{}{}
}

// Claimed reports whether name was handed out or claimed in this pass.
func (r *Resolver) Claimed(name string) bool {
	_, ok := r.claimed[name]
	return ok
}

// Resolve returns the first candidate for base+ext that is neither on disk
// nor claimed, and claims it.
func (r *Resolver) Resolve(base, ext string) (string, error) {
	n := r.counters[base]
	for {
		candidate := base + ext
		if n > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		if _, taken := r.claimed[candidate]; !taken {
			onDisk, err := r.exists(candidate)
			if err != nil {
				return "", fmt.Errorf("naming: check %s: %w", candidate, err)
			}
			if !onDisk {
				r.counters[base] = n
				r.claimed[candidate] = struct{}{}
				return candidate, nil
			}
		}
		n++
	}
}
