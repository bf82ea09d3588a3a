package policy

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/victoralfred/gowritter/safepath"
	"gopkg.in/yaml.v3"
)

// Loader loads and manages redirection policies from YAML files.
type Loader struct {
	path      string
	safePath  *safepath.SafePath
	policy    *Policy
	mu        sync.RWMutex
	lastHash  []byte
	lastLoad  time.Time
	onChange  []func(*Policy)
	watchStop chan struct{}
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithOnChange adds a callback invoked after a successful reload.
func WithOnChange(fn func(*Policy)) LoaderOption {
	return func(l *Loader) {
		l.onChange = append(l.onChange, fn)
	}
}

// NewLoader creates a new policy loader. The basePath is the directory
// containing the policy file; policyFile is relative to it.
func NewLoader(basePath, policyFile string, opts ...LoaderOption) (*Loader, error) {
	sp, err := safepath.New(basePath)
	if err != nil {
		return nil, fmt.Errorf("creating safe path: %w", err)
	}

	l := &Loader{
		path:     policyFile,
		safePath: sp,
		onChange: make([]func(*Policy), 0),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Load reads, parses, and compiles the policy file. Unchanged file content
// returns the previously compiled policy.
func (l *Loader) Load(ctx context.Context) (*Policy, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := l.safePath.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}

	hash := sha256.Sum256(data)
	if l.policy != nil && string(hash[:]) == string(l.lastHash) {
		return l.policy, nil
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing policy YAML: %w", err)
	}

	compiled, err := config.Compile()
	if err != nil {
		return nil, fmt.Errorf("compiling policy: %w", err)
	}

	l.policy = compiled
	l.lastHash = hash[:]
	l.lastLoad = time.Now()

	for _, fn := range l.onChange {
		fn(compiled)
	}

	return compiled, nil
}

// Get returns the current policy without reloading.
func (l *Loader) Get() *Policy {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.policy
}

// Reload reloads the policy from the file.
func (l *Loader) Reload(ctx context.Context) error {
	_, err := l.Load(ctx)
	return err
}

// Watch starts polling for policy file changes.
func (l *Loader) Watch(ctx context.Context, interval time.Duration) {
	l.watchStop = make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-l.watchStop:
				return
			case <-ticker.C:
				if _, err := l.Load(ctx); err != nil {
					// Keep serving the last good policy.
					_ = err
				}
			}
		}
	}()
}

// StopWatch stops watching for policy changes.
func (l *Loader) StopWatch() {
	if l.watchStop != nil {
		close(l.watchStop)
	}
}

// ParseYAML parses a YAML policy configuration without compiling it.
func ParseYAML(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}
