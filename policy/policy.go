// Package policy defines the redirection policy: which historical install
// roots are rewritten, which system roots are trusted, which dynamic linker
// binaries serve as indirection targets, and which environment variables
// describe the active sandbox root.
//
// The compiled-in defaults match the values baked into the native shim that
// ships with the sandbox rootfs. A policy can also be loaded from a YAML file
// via the Loader in this package; unset fields fall back to the defaults.
package policy

import (
	"fmt"
	"strings"
)

// Default environment variable names and parse limits.
const (
	// DefaultSandboxRootVar names the variable holding the sandbox root.
	DefaultSandboxRootVar = "PREFIX"

	// DefaultAltRootVar names the optional alternate-root override.
	DefaultAltRootVar = "TERMUX__ROOTFS"

	// DefaultSearchPathVar names the variable searched by Execvp/Execvpe.
	DefaultSearchPathVar = "PATH"

	// DefaultSearchPath is used when the search-path variable is unset.
	DefaultSearchPath = "/system/bin"

	// DefaultSandboxMarker is the path segment identifying the sandbox's
	// internal layout when no root variable is available.
	DefaultSandboxMarker = "/files/prefix/"

	// DefaultMaxPathLen bounds every path and shebang token the library
	// handles. Inputs at or beyond the bound are rejected, never truncated.
	DefaultMaxPathLen = 4096

	// DefaultShebangReadLimit is the size of the file prefix inspected for
	// a shebang line.
	DefaultShebangReadLimit = 512
)

// DefaultLegacyRoots are the historical absolute install roots that predate
// the relocatable sandbox prefix. Paths under them are rewritten to the
// current sandbox root for compatibility with old scripts and caches.
func DefaultLegacyRoots() []string {
	return []string{
		"/data/data/com.termux/files/usr",
		"/data/user/0/com.termux/files/usr",
	}
}

// DefaultTrustedRoots are OS-managed trees whose binaries the kernel may
// execute directly; anything under them is never redirected.
func DefaultTrustedRoots() []string {
	return []string{"/system/", "/apex/"}
}

// DefaultLinkerPaths are the trusted dynamic linkers used as redirect
// targets, in preference order: 64-bit first, 32-bit fallback.
func DefaultLinkerPaths() []string {
	return []string{"/system/bin/linker64", "/system/bin/linker"}
}

// Policy holds the full redirection policy.
// A zero field means "use the default"; call Validate (or build the policy
// through Default or Config.Compile) before handing it to the interposer.
type Policy struct {
	// LegacyRoots are absolute prefixes rewritten to the sandbox root.
	LegacyRoots []string

	// TrustedRoots are prefixes that always pass through unmodified.
	TrustedRoots []string

	// LinkerPaths are the trusted dynamic linkers, in preference order.
	// The last entry is the fallback when none is executable.
	LinkerPaths []string

	// SandboxMarker identifies the sandbox layout by substring when no
	// root environment variable is set.
	SandboxMarker string

	// SandboxRootVar names the sandbox-root environment variable.
	SandboxRootVar string

	// AltRootVar names the optional alternate-root environment variable.
	AltRootVar string

	// SearchPathVar names the PATH-style search variable.
	SearchPathVar string

	// DefaultSearchPath is used when SearchPathVar is unset or empty.
	DefaultSearchPath string

	// MaxPathLen bounds paths and shebang tokens.
	MaxPathLen int

	// ShebangReadLimit bounds the file prefix read for shebang parsing.
	ShebangReadLimit int
}

// Default returns the compiled-in policy.
func Default() *Policy {
	return &Policy{
		LegacyRoots:       DefaultLegacyRoots(),
		TrustedRoots:      DefaultTrustedRoots(),
		LinkerPaths:       DefaultLinkerPaths(),
		SandboxMarker:     DefaultSandboxMarker,
		SandboxRootVar:    DefaultSandboxRootVar,
		AltRootVar:        DefaultAltRootVar,
		SearchPathVar:     DefaultSearchPathVar,
		DefaultSearchPath: DefaultSearchPath,
		MaxPathLen:        DefaultMaxPathLen,
		ShebangReadLimit:  DefaultShebangReadLimit,
	}
}

// Validate checks the policy for internal consistency.
func (p *Policy) Validate() error {
	if len(p.LinkerPaths) == 0 {
		return fmt.Errorf("policy: at least one linker path is required")
	}
	for _, l := range p.LinkerPaths {
		if !strings.HasPrefix(l, "/") {
			return fmt.Errorf("policy: linker path %q must be absolute", l)
		}
	}
	for _, r := range p.LegacyRoots {
		if !strings.HasPrefix(r, "/") {
			return fmt.Errorf("policy: legacy root %q must be absolute", r)
		}
	}
	for _, r := range p.TrustedRoots {
		if !strings.HasPrefix(r, "/") {
			return fmt.Errorf("policy: trusted root %q must be absolute", r)
		}
	}
	if p.SandboxRootVar == "" {
		return fmt.Errorf("policy: sandbox root variable name is required")
	}
	if p.MaxPathLen <= 0 {
		return fmt.Errorf("policy: max path length must be positive")
	}
	if p.ShebangReadLimit <= 2 {
		return fmt.Errorf("policy: shebang read limit must exceed the marker length")
	}
	return nil
}

// IsLinkerPath reports whether path names one of the trusted linkers
// exactly. Used to stop the redirect pipeline from wrapping itself.
func (p *Policy) IsLinkerPath(path string) bool {
	for _, l := range p.LinkerPaths {
		if path == l {
			return true
		}
	}
	return false
}

// UnderTrustedRoot reports whether path lies under an OS-managed root.
func (p *Policy) UnderTrustedRoot(path string) bool {
	for _, root := range p.TrustedRoots {
		if strings.HasPrefix(path, root) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the policy.
func (p *Policy) Clone() *Policy {
	clone := *p
	clone.LegacyRoots = append([]string(nil), p.LegacyRoots...)
	clone.TrustedRoots = append([]string(nil), p.TrustedRoots...)
	clone.LinkerPaths = append([]string(nil), p.LinkerPaths...)
	return &clone
}
