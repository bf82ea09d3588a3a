package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/victoralfred/gowritter/safepath"
	"golang.org/x/time/rate"
)

// AuditLogger records exec attempts and failures.
type AuditLogger interface {
	// Log logs an audit event.
	Log(ctx context.Context, event *AuditEvent) error

	// Close closes the audit logger.
	Close() error
}

// AuditEvent represents one interposed exec attempt.
type AuditEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	ID        string         `json:"id"`
	Type      AuditEventType `json:"type"`
	Path      string         `json:"path"`
	Target    string         `json:"target,omitempty"`
	Strategy  string         `json:"strategy,omitempty"`
	Argv      []string       `json:"argv"`
	Errno     int            `json:"errno,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// AuditEventType represents the type of audit event.
type AuditEventType string

const (
	// AuditEventExecAttempt is an interposed exec attempt.
	AuditEventExecAttempt AuditEventType = "exec_attempt"

	// AuditEventExecFailed is an exec attempt whose underlying call
	// returned with an error.
	AuditEventExecFailed AuditEventType = "exec_failed"
)

// AuditConfig configures the audit logger.
type AuditConfig struct {
	BasePath string
	FilePath string

	// MaxEventsPerSecond caps log volume; excess events are dropped, not
	// queued, so the exec path never blocks on logging.
	MaxEventsPerSecond float64

	// Burst is the short-term event budget.
	Burst int

	Enabled bool
}

// DefaultAuditConfig returns default audit configuration.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:            true,
		BasePath:           "/var/log",
		FilePath:           "execshim/audit.log",
		MaxEventsPerSecond: 50,
		Burst:              100,
	}
}

// NewExecEvent creates an attempt event with a fresh ID.
func NewExecEvent(path string, argv []string) *AuditEvent {
	return &AuditEvent{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Type:      AuditEventExecAttempt,
		Path:      path,
		Argv:      argv,
	}
}

// fileAuditLogger implements AuditLogger using gowritter.
type fileAuditLogger struct {
	safePath *safepath.SafePath
	limiter  *rate.Limiter
	config   AuditConfig
	mu       sync.Mutex
}

// NewFileAuditLogger creates a new file-based audit logger.
func NewFileAuditLogger(config AuditConfig) (AuditLogger, error) {
	sp, err := safepath.New(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("creating safe path: %w", err)
	}

	limit := rate.Limit(config.MaxEventsPerSecond)
	if config.MaxEventsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}

	return &fileAuditLogger{
		config:   config,
		safePath: sp,
		limiter:  rate.NewLimiter(limit, burst),
	}, nil
}

// Log implements AuditLogger.Log.
func (l *fileAuditLogger) Log(ctx context.Context, event *AuditEvent) error {
	if !l.config.Enabled {
		return nil
	}

	// Over-budget events are dropped rather than delaying the exec path.
	if !l.limiter.Allow() {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling audit event: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.safePath.AppendFile(l.config.FilePath, data, 0o644); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}

	return nil
}

// Close implements AuditLogger.Close.
func (l *fileAuditLogger) Close() error {
	return nil
}

// NoopAuditLogger returns a no-op audit logger.
func NoopAuditLogger() AuditLogger {
	return &noopAuditLogger{}
}

type noopAuditLogger struct{}

func (l *noopAuditLogger) Log(ctx context.Context, event *AuditEvent) error { return nil }
func (l *noopAuditLogger) Close() error                                     { return nil }
