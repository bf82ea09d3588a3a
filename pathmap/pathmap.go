// Package pathmap classifies paths against the active sandbox root and
// rewrites historical install prefixes to the current one.
//
// Both operations are stateless per call: the environment snapshot is
// passed in explicitly and nothing is cached, so repeated calls under the
// same environment are idempotent.
package pathmap

import (
	"strings"

	"github.com/victoralfred/execshim/internal/envsnap"
	"github.com/victoralfred/execshim/policy"
)

// Remapper rewrites legacy root prefixes and classifies sandbox membership.
type Remapper struct {
	pol *policy.Policy
}

// New creates a remapper for the given policy. A nil policy uses the
// compiled-in defaults.
func New(pol *policy.Policy) *Remapper {
	if pol == nil {
		pol = policy.Default()
	}
	return &Remapper{pol: pol}
}

// RemapLegacy rewrites a historical install root prefix to the current
// sandbox root, preserving the remainder of the path verbatim.
//
// The path is returned unchanged when it matches no legacy root, when the
// sandbox-root variable is unset, or when the rewritten path would exceed
// the policy's path bound (reject, never truncate).
func (r *Remapper) RemapLegacy(path string, env envsnap.Snapshot) string {
	if path == "" || env.SandboxRoot == "" {
		return path
	}

	for _, legacy := range r.pol.LegacyRoots {
		if !strings.HasPrefix(path, legacy) {
			continue
		}
		remapped := env.SandboxRoot + path[len(legacy):]
		if len(remapped) >= r.pol.MaxPathLen {
			return path
		}
		return remapped
	}

	return path
}

// InSandbox reports whether the path, after legacy remapping, lies within
// the active sandbox root.
//
// Checks apply in order: alternate-root prefix (when set), sandbox-root
// prefix (when set), then the fixed marker segment. Any one succeeding is
// sufficient. Missing environment variables make the corresponding check
// inapplicable; they never cause an error.
func (r *Remapper) InSandbox(path string, env envsnap.Snapshot) bool {
	if !strings.HasPrefix(path, "/") {
		return false
	}

	check := r.RemapLegacy(path, env)

	if env.AltRoot != "" && strings.HasPrefix(check, env.AltRoot) {
		return true
	}
	if env.SandboxRoot != "" && strings.HasPrefix(check, env.SandboxRoot) {
		return true
	}
	return strings.Contains(check, r.pol.SandboxMarker)
}
