package interposer

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
)

func TestExecError_Message(t *testing.T) {
	err := execError("execve", "/bin/missing", unix.ENOENT)

	want := fmt.Sprintf("execve /bin/missing: %v", unix.ENOENT)
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestExecError_PreservesErrno(t *testing.T) {
	err := execError("execvp", "prog", unix.EACCES)

	if !errors.Is(err, unix.EACCES) {
		t.Error("errors.Is must match the underlying code")
	}
	if err.Errno() != unix.EACCES {
		t.Errorf("Errno() = %v, want EACCES", err.Errno())
	}
}

func TestErrno_Extraction(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"plain error", errors.New("boom"), nil},
		{"bare errno", unix.ENOEXEC, unix.ENOEXEC},
		{"wrapped once", execError("execve", "/x", unix.E2BIG), unix.E2BIG},
		{"wrapped twice", fmt.Errorf("outer: %w", execError("execv", "/x", unix.ELOOP)), unix.ELOOP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Errno(tt.err)
			if tt.want == nil {
				if got != 0 {
					t.Errorf("Errno = %v, want zero", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Errno = %v, want %v", got, tt.want)
			}
		})
	}
}
