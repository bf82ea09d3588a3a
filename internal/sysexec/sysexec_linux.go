//go:build linux

package sysexec

import "golang.org/x/sys/unix"

// lookupPrimitive returns the kernel exec entry point.
func lookupPrimitive() Primitive {
	return func(path string, argv []string, envv []string) error {
		return unix.Exec(path, argv, envv)
	}
}
