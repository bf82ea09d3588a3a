package policy

import "fmt"

// Config is the YAML representation of a redirection policy.
//
// Example policy.yaml:
//
//	version: "1.0"
//	legacy_roots:
//	  - /data/data/com.termux/files/usr
//	  - /data/user/0/com.termux/files/usr
//	trusted_roots:
//	  - /system/
//	  - /apex/
//	linker_paths:
//	  - /system/bin/linker64
//	  - /system/bin/linker
//	sandbox_marker: /files/prefix/
//	env:
//	  sandbox_root: PREFIX
//	  alt_root: TERMUX__ROOTFS
//	  search_path: PATH
//	default_search_path: /system/bin
//	limits:
//	  max_path_len: 4096
//	  shebang_read_limit: 512
type Config struct {
	Version           string       `yaml:"version"`
	Metadata          Metadata     `yaml:"metadata,omitempty"`
	LegacyRoots       []string     `yaml:"legacy_roots,omitempty"`
	TrustedRoots      []string     `yaml:"trusted_roots,omitempty"`
	LinkerPaths       []string     `yaml:"linker_paths,omitempty"`
	SandboxMarker     string       `yaml:"sandbox_marker,omitempty"`
	Env               EnvConfig    `yaml:"env,omitempty"`
	DefaultSearchPath string       `yaml:"default_search_path,omitempty"`
	Limits            LimitsConfig `yaml:"limits,omitempty"`
}

// Metadata describes the policy file itself.
type Metadata struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// EnvConfig names the environment variables the interposer consumes.
type EnvConfig struct {
	SandboxRoot string `yaml:"sandbox_root,omitempty"`
	AltRoot     string `yaml:"alt_root,omitempty"`
	SearchPath  string `yaml:"search_path,omitempty"`
}

// LimitsConfig bounds path and shebang parsing.
type LimitsConfig struct {
	MaxPathLen       int `yaml:"max_path_len,omitempty"`
	ShebangReadLimit int `yaml:"shebang_read_limit,omitempty"`
}

// Compile merges the configuration with the compiled-in defaults and
// validates the result.
func (c *Config) Compile() (*Policy, error) {
	if c.Version == "" {
		return nil, fmt.Errorf("policy: version is required")
	}

	p := Default()
	if len(c.LegacyRoots) > 0 {
		p.LegacyRoots = append([]string(nil), c.LegacyRoots...)
	}
	if len(c.TrustedRoots) > 0 {
		p.TrustedRoots = append([]string(nil), c.TrustedRoots...)
	}
	if len(c.LinkerPaths) > 0 {
		p.LinkerPaths = append([]string(nil), c.LinkerPaths...)
	}
	if c.SandboxMarker != "" {
		p.SandboxMarker = c.SandboxMarker
	}
	if c.Env.SandboxRoot != "" {
		p.SandboxRootVar = c.Env.SandboxRoot
	}
	if c.Env.AltRoot != "" {
		p.AltRootVar = c.Env.AltRoot
	}
	if c.Env.SearchPath != "" {
		p.SearchPathVar = c.Env.SearchPath
	}
	if c.DefaultSearchPath != "" {
		p.DefaultSearchPath = c.DefaultSearchPath
	}
	if c.Limits.MaxPathLen != 0 {
		p.MaxPathLen = c.Limits.MaxPathLen
	}
	if c.Limits.ShebangReadLimit != 0 {
		p.ShebangReadLimit = c.Limits.ShebangReadLimit
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ExampleConfig returns a configuration mirroring the compiled-in defaults.
// Use it as a starting point for a site-specific policy file.
func ExampleConfig() *Config {
	return &Config{
		Version: "1.0",
		Metadata: Metadata{
			Name:        "default-redirection-policy",
			Description: "Sandbox exec redirection through the system linker",
		},
		LegacyRoots:       DefaultLegacyRoots(),
		TrustedRoots:      DefaultTrustedRoots(),
		LinkerPaths:       DefaultLinkerPaths(),
		SandboxMarker:     DefaultSandboxMarker,
		Env: EnvConfig{
			SandboxRoot: DefaultSandboxRootVar,
			AltRoot:     DefaultAltRootVar,
			SearchPath:  DefaultSearchPathVar,
		},
		DefaultSearchPath: DefaultSearchPath,
		Limits: LimitsConfig{
			MaxPathLen:       DefaultMaxPathLen,
			ShebangReadLimit: DefaultShebangReadLimit,
		},
	}
}
