// Package observability provides hooks for metrics, tracing, and logging.
//
// Resolution code calls into a registered [ResolveHooks] implementation at
// well-defined points (group start/finish, every requirement file read, every
// include followed). The default is a no-op, so the core packages carry no
// dependency on any observability backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetResolveHooks(&myHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Resolve().OnGroupStart(ctx, "install", path)
//	// ... resolve ...
//	observability.Resolve().OnGroupComplete(ctx, "install", count, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// ResolveHooks receives events from requirement resolution.
type ResolveHooks interface {
	// Group events
	OnGroupStart(ctx context.Context, group, path string)
	OnGroupComplete(ctx context.Context, group string, entries int, duration time.Duration, err error)

	// File events
	OnFileRead(ctx context.Context, path string, lines int)
	OnInclude(ctx context.Context, from, to string, depth int)
}

// NoopResolveHooks is a no-op implementation of ResolveHooks.
type NoopResolveHooks struct{}

func (NoopResolveHooks) OnGroupStart(context.Context, string, string)                       {}
func (NoopResolveHooks) OnGroupComplete(context.Context, string, int, time.Duration, error) {}
func (NoopResolveHooks) OnFileRead(context.Context, string, int)                            {}
func (NoopResolveHooks) OnInclude(context.Context, string, string, int)                     {}

var (
	resolveHooks ResolveHooks = NoopResolveHooks{}
	hooksMu      sync.RWMutex
)

// SetResolveHooks registers custom resolve hooks.
// This should be called once at application startup before any resolution.
func SetResolveHooks(h ResolveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolveHooks = h
	}
}

// Resolve returns the registered resolve hooks.
func Resolve() ResolveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolveHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	resolveHooks = NoopResolveHooks{}
}
