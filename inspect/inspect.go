// Package inspect probes files to decide how they must be launched: native
// executable images are identified by their magic signature, interpreted
// scripts by a bounded shebang parse.
//
// All reads are small, synchronous, and bounded. I/O failures are never
// reported as errors; the caller always has a safe fallback (ordinary exec),
// so every ambiguous file simply classifies as "not this kind".
package inspect

import (
	"bytes"

	"golang.org/x/sys/unix"
)

// nativeMagic is the 4-byte signature of a native executable image.
var nativeMagic = [4]byte{0x7f, 'E', 'L', 'F'}

// ShebangInfo describes a parsed shebang line. It is produced transiently
// per call and never persisted.
type ShebangInfo struct {
	// Interpreter is the absolute interpreter path. Always non-empty and
	// strictly shorter than the configured path bound.
	Interpreter string

	// Arg is the single optional interpreter argument. The remainder of
	// the shebang line after the interpreter is passed as exactly one
	// argument, with no further word-splitting.
	Arg string

	// HasArg reports whether Arg is present.
	HasArg bool
}

// Config bounds the inspector's parsing. Zero fields use defaults.
type Config struct {
	// MaxTokenLen bounds the interpreter and argument tokens. Tokens at
	// or beyond the bound fail parsing rather than truncate.
	MaxTokenLen int

	// ReadLimit is the size of the file prefix read for shebang parsing.
	ReadLimit int
}

// Inspector performs bounded file inspection.
type Inspector struct {
	maxTokenLen int
	readLimit   int
}

// New creates an inspector. A nil config uses a 4096-byte token bound and
// a 512-byte read limit.
func New(cfg *Config) *Inspector {
	ins := &Inspector{
		maxTokenLen: 4096,
		readLimit:   512,
	}
	if cfg != nil {
		if cfg.MaxTokenLen > 0 {
			ins.maxTokenLen = cfg.MaxTokenLen
		}
		if cfg.ReadLimit > 0 {
			ins.readLimit = cfg.ReadLimit
		}
	}
	return ins
}

// IsNativeExecutable reports whether the file begins with the native
// executable magic signature. Missing files, permission errors, and
// truncated reads all classify as not-native.
func (ins *Inspector) IsNativeExecutable(path string) bool {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return false
	}
	defer unix.Close(fd)

	var magic [4]byte
	n, err := unix.Read(fd, magic[:])
	return err == nil && n == len(magic) && magic == nativeMagic
}

// ParseShebang reads a bounded prefix of the file and parses a shebang
// line from it. The boolean result reports whether a valid shebang was
// found; parse failures carry no further detail because the caller falls
// back to ordinary exec in every case.
func (ins *Inspector) ParseShebang(path string) (ShebangInfo, bool) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return ShebangInfo{}, false
	}

	buf := make([]byte, ins.readLimit)
	n, err := unix.Read(fd, buf)
	unix.Close(fd)
	if err != nil || n <= 2 {
		return ShebangInfo{}, false
	}
	buf = buf[:n]

	// A NUL terminates the inspectable region early.
	if idx := bytes.IndexByte(buf, 0); idx >= 0 {
		buf = buf[:idx]
		if len(buf) <= 2 {
			return ShebangInfo{}, false
		}
	}

	if buf[0] != '#' || buf[1] != '!' {
		return ShebangInfo{}, false
	}

	p := 2
	for p < len(buf) && isBlank(buf[p]) {
		p++
	}
	if p >= len(buf) || buf[p] != '/' {
		return ShebangInfo{}, false
	}

	start := p
	for p < len(buf) && !isTokenEnd(buf[p]) {
		p++
	}
	interpreter := string(buf[start:p])
	if len(interpreter) == 0 || len(interpreter) >= ins.maxTokenLen {
		return ShebangInfo{}, false
	}

	info := ShebangInfo{Interpreter: interpreter}

	for p < len(buf) && isBlank(buf[p]) {
		p++
	}
	if p < len(buf) && buf[p] != '\n' && buf[p] != '\r' {
		argStart := p
		for p < len(buf) && buf[p] != '\n' && buf[p] != '\r' {
			p++
		}
		arg := string(buf[argStart:p])
		// An oversized argument is omitted; the interpreter still counts
		// as parsed.
		if len(arg) > 0 && len(arg) < ins.maxTokenLen {
			info.Arg = arg
			info.HasArg = true
		}
	}

	return info, true
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

func isTokenEnd(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
