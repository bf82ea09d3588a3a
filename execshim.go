package execshim

import (
	"sync"

	"github.com/victoralfred/execshim/inspect"
	"github.com/victoralfred/execshim/interposer"
	"github.com/victoralfred/execshim/policy"
)

// =============================================================================
// Core Types
// =============================================================================

// Interposer is the public override surface: the four exec-family entry
// points routed through the redirection pipeline.
type Interposer = interposer.Interposer

// Builder creates configured Interposer instances.
type Builder = interposer.Builder

// Invocation is one exec attempt as seen by hooks.
type Invocation = interposer.Invocation

// ExecError is the error returned by a failed override; it preserves the
// underlying error code verbatim.
type ExecError = interposer.ExecError

// Strategy identifies the redirection decision for one exec attempt.
type Strategy = interposer.Strategy

// Strategy constants.
const (
	StrategyPassthrough = interposer.StrategyPassthrough
	StrategyDirect      = interposer.StrategyDirect
	StrategyScript      = interposer.StrategyScript
)

// ShebangInfo describes a parsed shebang line.
type ShebangInfo = inspect.ShebangInfo

// =============================================================================
// Policy Types
// =============================================================================

// Policy holds the redirection policy.
type Policy = policy.Policy

// PolicyLoader loads and manages policies from YAML files.
type PolicyLoader = policy.Loader

// =============================================================================
// Factory Functions
// =============================================================================

// New creates a new Interposer with the compiled-in default policy.
func New() (Interposer, error) {
	return interposer.NewBuilder().Build()
}

// NewBuilder creates a new builder for configuring the Interposer.
//
// Example:
//
//	shim, err := execshim.NewBuilder().
//	    WithPolicy(pol).
//	    Build()
func NewBuilder() *Builder {
	return interposer.NewBuilder()
}

// =============================================================================
// Policy Loading
// =============================================================================

// LoadPolicy loads a redirection policy from a YAML file. The basePath is
// the directory containing the policy file; policyFile is relative to it.
func LoadPolicy(basePath, policyFile string) (*PolicyLoader, error) {
	return policy.NewLoader(basePath, policyFile)
}

// DefaultPolicy returns the compiled-in redirection policy.
func DefaultPolicy() *Policy {
	return policy.Default()
}

// =============================================================================
// Package-Level Overrides
// =============================================================================

var (
	defaultOnce sync.Once
	defaultShim Interposer
)

// Default returns the process-wide interposer built with the compiled-in
// policy. It is created lazily on first use.
func Default() Interposer {
	defaultOnce.Do(func() {
		// The default policy always validates.
		defaultShim, _ = interposer.NewBuilder().Build()
	})
	return defaultShim
}

// Execve executes path with an explicit argument vector and environment.
// On success the process image is replaced and the call never returns.
func Execve(path string, argv, envv []string) error {
	return Default().Execve(path, argv, envv)
}

// Execv executes path with the inherited environment.
func Execv(path string, argv []string) error {
	return Default().Execv(path, argv)
}

// Execvp searches the search-path variable for file and executes it with
// the inherited environment.
func Execvp(file string, argv []string) error {
	return Default().Execvp(file, argv)
}

// Execvpe searches the search-path variable for file and executes it with
// an explicit environment.
func Execvpe(file string, argv, envv []string) error {
	return Default().Execvpe(file, argv, envv)
}

// =============================================================================
// Version Information
// =============================================================================

// Version returns the library version.
func Version() string {
	return "1.0.0"
}
