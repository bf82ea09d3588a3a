// Package sysexec resolves and invokes the real exec primitive.
// This is the ONLY package in the entire library that can replace the
// process image. All redirected and passthrough exec attempts MUST go
// through a Primitive obtained from this package.
package sysexec

import (
	"errors"
	"sync/atomic"
)

// Primitive is the true underlying exec entry point. On success the calling
// process image is replaced and the call never returns; on failure it
// returns the error code of the underlying call, unmodified.
type Primitive func(path string, argv []string, envv []string) error

// ErrUnavailable indicates the platform has no exec primitive.
var ErrUnavailable = errors.New("exec primitive unavailable")

// Resolver lazily resolves the process's exec primitive.
//
// Resolution is deterministic and side-effect-free, so concurrent callers
// may all perform the lookup redundantly; the last stored result wins and
// every caller observes an equivalent value. No lock is needed.
type Resolver struct {
	prim atomic.Pointer[Primitive]
}

// NewResolver creates an unresolved resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the exec primitive, performing the platform lookup on
// first use. When the platform provides no primitive, every call reports
// ErrUnavailable; the caller maps this to "operation not supported".
func (r *Resolver) Resolve() (Primitive, error) {
	if p := r.prim.Load(); p != nil {
		return *p, nil
	}

	p := lookupPrimitive()
	if p == nil {
		return nil, ErrUnavailable
	}

	r.prim.Store(&p)
	return p, nil
}
