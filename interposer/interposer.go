// Package interposer implements the exec redirection pipeline.
//
// The four overridden entry points (Execve, Execv, Execvp, Execvpe) carry
// standard exec-family semantics: on success the calling process image is
// replaced and the call never returns; on failure it returns an *ExecError
// preserving the underlying error code, and the caller's state is otherwise
// unchanged.
//
// Every call runs the same pipeline: legacy path remapping, sandbox
// classification, bounded file inspection, then either a redirected launch
// through the trusted system dynamic linker or a passthrough to the real
// primitive. The interposer's own inspection never converts an exec attempt
// that would have succeeded (or failed identically) under direct execution
// into a different failure; every ambiguous case degrades to passthrough.
package interposer

import (
	"context"
	"os"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/victoralfred/execshim/inspect"
	"github.com/victoralfred/execshim/internal/envsnap"
	"github.com/victoralfred/execshim/internal/sysexec"
	"github.com/victoralfred/execshim/pathmap"
	"github.com/victoralfred/execshim/policy"
)

// Interposer is the public override surface.
type Interposer interface {
	// Execve executes path with an explicit argument vector and
	// environment.
	Execve(path string, argv, envv []string) error

	// Execv executes path with the inherited environment.
	Execv(path string, argv []string) error

	// Execvp searches the search-path variable for file and executes it
	// with the inherited environment.
	Execvp(file string, argv []string) error

	// Execvpe searches the search-path variable for file and executes it
	// with an explicit environment.
	Execvpe(file string, argv, envv []string) error
}

// Primitive is the resolved real exec entry point. On success it never
// returns.
type Primitive func(path string, argv []string, envv []string) error

// Strategy identifies the redirection decision for one exec attempt.
type Strategy int

const (
	// StrategyPassthrough invokes the real primitive with the remapped
	// path and the original argument vector.
	StrategyPassthrough Strategy = iota

	// StrategyDirect relaunches a native executable image through the
	// trusted linker.
	StrategyDirect

	// StrategyScript relaunches a shebang script through the trusted
	// linker with its in-sandbox interpreter.
	StrategyScript
)

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyPassthrough:
		return "passthrough"
	case StrategyDirect:
		return "direct"
	case StrategyScript:
		return "script"
	default:
		return "unknown"
	}
}

// Invocation is one exec attempt as seen by hooks. A nil Env means the
// process environment is inherited.
type Invocation struct {
	Path string
	Argv []string
	Env  []string
}

// Hook observes exec attempts. PreExec runs before the decision pipeline
// and may return a modified invocation; a PreExec error aborts the attempt.
// OnError runs on every non-replacing exit after the underlying call
// failed; it cannot alter the returned error.
type Hook interface {
	Name() string
	PreExec(ctx context.Context, inv *Invocation) (*Invocation, error)
	OnError(ctx context.Context, inv *Invocation, err error)
}

// Telemetry records decision and failure counters.
type Telemetry interface {
	RecordCounter(name string, labels map[string]string)
}

// interposer is the default implementation.
type interposer struct {
	pol       *policy.Policy
	remapper  *pathmap.Remapper
	inspector *inspect.Inspector
	resolver  *sysexec.Resolver
	primitive Primitive
	lookupEnv envsnap.LookupFunc
	environ   func() []string
	access    func(path string, mode uint32) error
	telemetry Telemetry
	hooks     []Hook
}

// Builder creates configured Interposer instances.
type Builder struct {
	pol       *policy.Policy
	primitive Primitive
	lookupEnv envsnap.LookupFunc
	environ   func() []string
	access    func(path string, mode uint32) error
	telemetry Telemetry
	hooks     []Hook
}

// NewBuilder creates a new interposer builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithPolicy sets the redirection policy.
func (b *Builder) WithPolicy(pol *policy.Policy) *Builder {
	b.pol = pol
	return b
}

// WithPrimitive overrides the resolved exec primitive. Intended for tests;
// production builds resolve the platform primitive lazily.
func (b *Builder) WithPrimitive(p Primitive) *Builder {
	b.primitive = p
	return b
}

// WithLookupEnv overrides the environment lookup used for snapshots.
func (b *Builder) WithLookupEnv(lookup envsnap.LookupFunc) *Builder {
	b.lookupEnv = lookup
	return b
}

// WithEnviron overrides the inherited-environment source used when a
// caller passes no explicit environment.
func (b *Builder) WithEnviron(environ func() []string) *Builder {
	b.environ = environ
	return b
}

// WithAccess overrides the executability probe used for linker selection.
func (b *Builder) WithAccess(access func(path string, mode uint32) error) *Builder {
	b.access = access
	return b
}

// WithTelemetry sets the telemetry recorder.
func (b *Builder) WithTelemetry(t Telemetry) *Builder {
	b.telemetry = t
	return b
}

// WithHooks adds execution hooks.
func (b *Builder) WithHooks(hooks ...Hook) *Builder {
	b.hooks = append(b.hooks, hooks...)
	return b
}

// Build validates the policy and creates the interposer.
func (b *Builder) Build() (Interposer, error) {
	pol := b.pol
	if pol == nil {
		pol = policy.Default()
	}
	if err := pol.Validate(); err != nil {
		return nil, err
	}

	itp := &interposer{
		pol: pol,
		remapper: pathmap.New(pol),
		inspector: inspect.New(&inspect.Config{
			MaxTokenLen: pol.MaxPathLen,
			ReadLimit:   pol.ShebangReadLimit,
		}),
		resolver:  sysexec.NewResolver(),
		primitive: b.primitive,
		lookupEnv: b.lookupEnv,
		environ:   b.environ,
		access:    b.access,
		telemetry: b.telemetry,
		hooks:     b.hooks,
	}
	if itp.environ == nil {
		itp.environ = os.Environ
	}
	if itp.access == nil {
		itp.access = func(path string, mode uint32) error {
			return unix.Access(path, mode)
		}
	}
	return itp, nil
}

// Execve implements Interposer.Execve.
func (i *interposer) Execve(path string, argv, envv []string) error {
	return i.exec("execve", path, argv, envv)
}

// Execv implements Interposer.Execv.
func (i *interposer) Execv(path string, argv []string) error {
	return i.exec("execv", path, argv, nil)
}

// Execvp implements Interposer.Execvp.
func (i *interposer) Execvp(file string, argv []string) error {
	return i.searchAndExec("execvp", file, argv, nil)
}

// Execvpe implements Interposer.Execvpe.
func (i *interposer) Execvpe(file string, argv, envv []string) error {
	return i.searchAndExec("execvpe", file, argv, envv)
}

// exec runs the full pipeline for one qualified path.
func (i *interposer) exec(op, path string, argv, envv []string) error {
	prim, err := i.resolve()
	if err != nil {
		return execError(op, path, unix.ENOSYS)
	}

	ctx := context.Background()
	inv := &Invocation{Path: path, Argv: argv, Env: envv}
	inv, err = i.runPreHooks(ctx, inv)
	if err != nil {
		return err
	}

	env := i.snapshot()
	target := i.remapper.RemapLegacy(inv.Path, env)
	pl := i.plan(target, inv.Argv, env)
	i.count("exec_attempts_total", pl.strategy)

	execErr := prim(pl.target, pl.argv, i.execEnv(inv.Env))
	if execErr == nil {
		// Reachable only with an injected primitive; the real one never
		// returns on success.
		return nil
	}

	// The redirected argument vector goes out of scope here; the
	// underlying error code survives it untouched.
	wrapped := &ExecError{Op: op, Path: inv.Path, Err: execErr}
	i.count("exec_errors_total", pl.strategy)
	i.runErrorHooks(ctx, inv, wrapped)
	return wrapped
}

// searchAndExec implements the PATH-searching variants.
func (i *interposer) searchAndExec(op, file string, argv, envv []string) error {
	if file == "" {
		return execError(op, file, unix.ENOENT)
	}
	if strings.ContainsRune(file, '/') {
		return i.exec(op, file, argv, envv)
	}

	env := i.snapshot()
	search := env.SearchPath
	if search == "" {
		search = i.pol.DefaultSearchPath
	}

	// ENOENT is the least specific failure; anything other than
	// "file absent / not a directory" takes precedence over it.
	saved := syscall.Errno(unix.ENOENT)
	for _, dir := range strings.Split(search, ":") {
		if dir == "" {
			dir = "."
		}
		candidate := dir + "/" + file
		if len(candidate) >= i.pol.MaxPathLen {
			continue
		}

		err := i.exec(op, candidate, argv, envv)
		if err == nil {
			// Reachable only with an injected primitive; a real exec
			// that succeeds never returns.
			return nil
		}
		if errno := Errno(err); errno != 0 && errno != unix.ENOENT && errno != unix.ENOTDIR {
			saved = errno
		}
	}

	return execError(op, file, saved)
}

// execPlan is the ephemeral redirected invocation for one attempt. The
// argument vector is exactly sized and owned by this call alone.
type execPlan struct {
	strategy Strategy
	target   string
	argv     []string
}

// plan decides the redirection strategy for the remapped target path.
// Rules apply in order; the first match wins.
func (i *interposer) plan(target string, argv []string, env envsnap.Snapshot) execPlan {
	pass := execPlan{strategy: StrategyPassthrough, target: target, argv: argv}

	// The linker itself must never be wrapped again.
	if i.pol.IsLinkerPath(target) {
		return pass
	}
	if i.pol.UnderTrustedRoot(target) {
		return pass
	}
	if !i.remapper.InSandbox(target, env) {
		return pass
	}

	if i.inspector.IsNativeExecutable(target) {
		linker := i.selectLinker()
		return execPlan{
			strategy: StrategyDirect,
			target:   linker,
			argv:     buildDirectArgv(linker, target, argv),
		}
	}

	if sb, ok := i.inspector.ParseShebang(target); ok {
		interp := i.remapper.RemapLegacy(sb.Interpreter, env)
		if i.remapper.InSandbox(interp, env) {
			linker := i.selectLinker()
			return execPlan{
				strategy: StrategyScript,
				target:   linker,
				argv:     buildScriptArgv(linker, interp, sb, target, argv),
			}
		}
		// Out-of-sandbox interpreters (e.g. a system shell) run through
		// the OS's own script handling.
	}

	return pass
}

// selectLinker picks the preferred trusted linker fresh for each call:
// the first one that is executable, else the final fallback.
func (i *interposer) selectLinker() string {
	linkers := i.pol.LinkerPaths
	for _, l := range linkers[:len(linkers)-1] {
		if i.access(l, unix.X_OK) == nil {
			return l
		}
	}
	return linkers[len(linkers)-1]
}

// buildDirectArgv builds [linker, target, argv[1:]...]. The caller's
// argv[0] is discarded; the target path becomes the program name the
// linker reports.
func buildDirectArgv(linker, target string, argv []string) []string {
	n := 2
	if len(argv) > 1 {
		n += len(argv) - 1
	}
	out := make([]string, 0, n)
	out = append(out, linker, target)
	if len(argv) > 1 {
		out = append(out, argv[1:]...)
	}
	return out
}

// buildScriptArgv builds [linker, interpreter, arg?, target, argv[1:]...].
func buildScriptArgv(linker, interpreter string, sb inspect.ShebangInfo, target string, argv []string) []string {
	n := 3
	if sb.HasArg {
		n++
	}
	if len(argv) > 1 {
		n += len(argv) - 1
	}
	out := make([]string, 0, n)
	out = append(out, linker, interpreter)
	if sb.HasArg {
		out = append(out, sb.Arg)
	}
	out = append(out, target)
	if len(argv) > 1 {
		out = append(out, argv[1:]...)
	}
	return out
}

// resolve returns the injected primitive or lazily resolves the platform
// one.
func (i *interposer) resolve() (Primitive, error) {
	if i.primitive != nil {
		return i.primitive, nil
	}
	p, err := i.resolver.Resolve()
	if err != nil {
		return nil, err
	}
	return Primitive(p), nil
}

// snapshot captures the recognized environment variables for this call.
func (i *interposer) snapshot() envsnap.Snapshot {
	return envsnap.Capture(i.lookupEnv, envsnap.Names{
		SandboxRoot: i.pol.SandboxRootVar,
		AltRoot:     i.pol.AltRootVar,
		SearchPath:  i.pol.SearchPathVar,
	})
}

// execEnv returns the caller's environment, or the inherited one when the
// caller passed none.
func (i *interposer) execEnv(envv []string) []string {
	if envv != nil {
		return envv
	}
	return i.environ()
}

// runPreHooks runs pre-exec hooks in order.
// Hooks are read-only after Build, so no lock is needed.
func (i *interposer) runPreHooks(ctx context.Context, inv *Invocation) (*Invocation, error) {
	hooks := i.hooks
	if len(hooks) == 0 {
		return inv, nil
	}

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

// runErrorHooks notifies hooks of a failed attempt.
func (i *interposer) runErrorHooks(ctx context.Context, inv *Invocation, err error) {
	for _, hook := range i.hooks {
		hook.OnError(ctx, inv, err)
	}
}

func (i *interposer) count(name string, s Strategy) {
	if i.telemetry == nil {
		return
	}
	i.telemetry.RecordCounter(name, map[string]string{"strategy": s.String()})
}
