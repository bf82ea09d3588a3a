// Package hooks provides extension points around interposed exec attempts.
//
// Because a successful exec replaces the process image, hooks see every
// attempt before the primitive runs and only the failing attempts after.
package hooks

import (
	"context"
	"sort"
	"sync"

	"github.com/victoralfred/execshim/interposer"
	"github.com/victoralfred/execshim/observability"
)

// Hook is an interposer hook with an ordering priority (lower runs
// earlier).
type Hook interface {
	interposer.Hook
	Priority() int
}

// Registry manages hook registration and runs them in priority order.
// Registry itself satisfies interposer.Hook, so it can be installed as a
// single composite hook.
type Registry struct {
	hooks []Hook
	mu    sync.RWMutex
}

// NewRegistry creates a new hook registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make([]Hook, 0),
	}
}

// Register adds a hook to the registry.
func (r *Registry) Register(hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks = append(r.hooks, hook)
	sort.SliceStable(r.hooks, func(i, j int) bool {
		return r.hooks[i].Priority() < r.hooks[j].Priority()
	})
}

// Unregister removes a hook by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]Hook, 0, len(r.hooks))
	for _, h := range r.hooks {
		if h.Name() != name {
			kept = append(kept, h)
		}
	}
	r.hooks = kept
}

// Name implements interposer.Hook.
func (r *Registry) Name() string { return "registry" }

// PreExec runs all hooks' PreExec in priority order.
func (r *Registry) PreExec(ctx context.Context, inv *interposer.Invocation) (*interposer.Invocation, error) {
	r.mu.RLock()
	hooks := append([]Hook(nil), r.hooks...)
	r.mu.RUnlock()

	current := inv
	for _, hook := range hooks {
		modified, err := hook.PreExec(ctx, current)
		if err != nil {
			return nil, err
		}
		current = modified
	}
	return current, nil
}

// OnError runs all hooks' OnError in priority order.
func (r *Registry) OnError(ctx context.Context, inv *interposer.Invocation, err error) {
	r.mu.RLock()
	hooks := append([]Hook(nil), r.hooks...)
	r.mu.RUnlock()

	for _, hook := range hooks {
		hook.OnError(ctx, inv, err)
	}
}

// AuditHook records every attempt and failure to an audit logger.
type AuditHook struct {
	logger observability.AuditLogger
}

// NewAuditHook creates an audit hook.
func NewAuditHook(logger observability.AuditLogger) *AuditHook {
	return &AuditHook{logger: logger}
}

// Name implements Hook.
func (h *AuditHook) Name() string { return "audit" }

// Priority implements Hook.
func (h *AuditHook) Priority() int { return 100 }

// PreExec implements interposer.Hook.
func (h *AuditHook) PreExec(ctx context.Context, inv *interposer.Invocation) (*interposer.Invocation, error) {
	event := observability.NewExecEvent(inv.Path, inv.Argv)
	// Logging failures never block the exec attempt.
	_ = h.logger.Log(ctx, event)
	return inv, nil
}

// OnError implements interposer.Hook.
func (h *AuditHook) OnError(ctx context.Context, inv *interposer.Invocation, err error) {
	event := observability.NewExecEvent(inv.Path, inv.Argv)
	event.Type = observability.AuditEventExecFailed
	event.Error = err.Error()
	if errno := interposer.Errno(err); errno != 0 {
		event.Errno = int(errno)
	}
	_ = h.logger.Log(ctx, event)
}

// LoggingHook is a built-in hook that logs attempts through a printf-style
// function.
type LoggingHook struct {
	logger func(format string, args ...interface{})
}

// NewLoggingHook creates a new logging hook.
func NewLoggingHook(logger func(format string, args ...interface{})) *LoggingHook {
	return &LoggingHook{logger: logger}
}

// Name implements Hook.
func (h *LoggingHook) Name() string { return "logging" }

// Priority implements Hook.
func (h *LoggingHook) Priority() int { return 1000 }

// PreExec implements interposer.Hook.
func (h *LoggingHook) PreExec(ctx context.Context, inv *interposer.Invocation) (*interposer.Invocation, error) {
	h.logger("exec attempt: %s %v", inv.Path, inv.Argv)
	return inv, nil
}

// OnError implements interposer.Hook.
func (h *LoggingHook) OnError(ctx context.Context, inv *interposer.Invocation, err error) {
	h.logger("exec failed: %s - %v", inv.Path, err)
}
