package gpu

import (
	"fmt"
	"time"
)

/**
 * @brief A native graphics API realizing Pipelines as native objects.
 *
 * Resolve, Collect and Release must be called from the goroutine owning the
 * device context. Each backend owns its caches; handles are never shared
 * between backends.
 */
type Backend interface {
	// Name returns the backend name, e.g. "opengl" or "vulkan".
	Name() string
	// Resolve returns the native realization of p, building it on first use.
	Resolve(p *Pipeline) (NativeHandle, error)
	// Invalidate drops every cached handle after a context loss. No native calls are made.
	Invalidate()
	// Collect destroys the handles whose pipelines were garbage collected.
	Collect() int
	// Evict destroys the realization of p right away, before p is collected.
	Evict(p *Pipeline) bool
	// Len returns the number of cached pipeline realizations.
	Len() int
	Stats() Stats
	// Release destroys every native object owned by the backend.
	Release() error
}

// NativeHandle is the opaque realization of a Pipeline on one backend.
type NativeHandle interface {
	Backend() string
	// Generation is the cache generation the handle was built in.
	Generation() uint64
}

type Stats struct {
	Resolves     uint64
	Hits         uint64
	Compilations uint64
	Failures     uint64
	Evictions    uint64
	Entries      int
	Generation   uint64
	AvgCompile   time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("entries=%d resolves=%d hits=%d compilations=%d failures=%d evictions=%d generation=%d avg_compile=%s",
		s.Entries, s.Resolves, s.Hits, s.Compilations, s.Failures, s.Evictions, s.Generation, s.AvgCompile)
}

// FailurePolicy decides whether a failed realization is remembered.
type FailurePolicy uint8

const (
	// FailureCache returns the same error on later resolves until the cache is invalidated.
	FailureCache FailurePolicy = iota
	// FailureRetry rebuilds on every resolve.
	FailureRetry
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "cache":
		return FailureCache, nil
	case "retry":
		return FailureRetry, nil
	}
	return FailureCache, fmt.Errorf("unknown failure policy `%s`", s)
}
