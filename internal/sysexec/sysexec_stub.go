//go:build !linux

package sysexec

// lookupPrimitive reports no primitive on platforms without the trusted
// linker redirection scheme; every override then fails with "operation
// not supported" instead of crashing.
func lookupPrimitive() Primitive {
	return nil
}
