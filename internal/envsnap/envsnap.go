// Package envsnap captures the recognized environment variables once at the
// start of each interposed call, so the rest of the pipeline works from a
// consistent view and tests can substitute their own lookup.
package envsnap

import "os"

// LookupFunc looks up a single environment variable, matching the signature
// of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Names holds the environment variable names to snapshot. An empty name
// leaves the corresponding snapshot field empty.
type Names struct {
	// SandboxRoot names the sandbox-root variable.
	SandboxRoot string

	// AltRoot names the optional alternate-root variable.
	AltRoot string

	// SearchPath names the PATH-style search variable.
	SearchPath string
}

// Snapshot is a point-in-time view of the recognized variables.
// A missing or unset variable is an empty string, never an error.
type Snapshot struct {
	SandboxRoot string
	AltRoot     string
	SearchPath  string
}

// Capture reads the named variables through lookup. A nil lookup uses the
// process environment.
func Capture(lookup LookupFunc, names Names) Snapshot {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return Snapshot{
		SandboxRoot: get(lookup, names.SandboxRoot),
		AltRoot:     get(lookup, names.AltRoot),
		SearchPath:  get(lookup, names.SearchPath),
	}
}

func get(lookup LookupFunc, key string) string {
	if key == "" {
		return ""
	}
	v, _ := lookup(key)
	return v
}
