// Package execshim provides exec-family interposition for sandboxed
// userland roots.
//
// ExecShim re-implements the exec pipeline of a native preload shim for
// environments where the host OS forbids directly executing files outside
// a small set of trusted system locations (a common mobile-OS security
// restriction). Binaries and scripts inside the relocated sandbox root are
// relaunched indirectly through the OS's own trusted dynamic linker; every
// other path is passed through to the real exec primitive unmodified.
//
// # Key Features
//
//   - Four exec-family entry points: Execve, Execv, Execvp, Execvpe
//   - Legacy install-root remapping to the current sandbox prefix
//   - Bounded native-image and shebang inspection, never error-producing
//   - Redirection through the trusted 64-bit (or fallback 32-bit) linker
//   - PATH search with conventional error-code precedence
//   - Policy-as-code configuration via YAML for auditable redirection rules
//   - OpenTelemetry metrics and append-only audit logging of exec attempts
//
// # Basic Usage
//
//	err := execshim.Execvp("bash", []string{"bash", "-lc", "make"})
//	// Reached only on failure; on success the process image was replaced.
//	log.Fatal(err)
//
// # With a Custom Policy
//
//	loader, _ := execshim.LoadPolicy("/etc/execshim", "policy.yaml")
//	pol, _ := loader.Load(ctx)
//
//	shim, _ := execshim.NewBuilder().
//	    WithPolicy(pol).
//	    Build()
//	err := shim.Execve(path, argv, envv)
//
// # Safety Model
//
// The interposer's inspection is purely additive: it must never convert
// an exec attempt that would have succeeded (or failed identically) under
// direct execution into a different failure. Malformed, oversized, or
// ambiguous inputs always degrade to passthrough, deferring entirely to
// the OS's native handling, and the underlying error code of the real
// call is propagated verbatim.
//
// # Package Structure
//
//   - execshim: Main entry point and convenience functions
//   - interposer: Override surface, decision pipeline, argv construction
//   - pathmap: Legacy root remapping and sandbox classification
//   - inspect: Native-image probe and bounded shebang parsing
//   - policy: Redirection policy, YAML schema, and loader
//   - observability: OpenTelemetry metrics and audit logging
//   - hooks: Extension points around exec attempts
//   - config: Configuration management
package execshim
