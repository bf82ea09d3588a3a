package pathmap

import (
	"testing"

	"github.com/victoralfred/execshim/internal/envsnap"
	"github.com/victoralfred/execshim/policy"
)

func examplePolicy() *policy.Policy {
	pol := policy.Default()
	pol.LegacyRoots = []string{
		"/data/data/com.example/files/usr",
		"/data/user/0/com.example/files/usr",
	}
	return pol
}

func TestRemapper_RemapLegacy(t *testing.T) {
	r := New(examplePolicy())
	env := envsnap.Snapshot{SandboxRoot: "/data/user/0/app/files/prefix"}

	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "legacy data root",
			path: "/data/data/com.example/files/usr/bin/bash",
			want: "/data/user/0/app/files/prefix/bin/bash",
		},
		{
			name: "legacy user root",
			path: "/data/user/0/com.example/files/usr/lib/libc.so",
			want: "/data/user/0/app/files/prefix/lib/libc.so",
		},
		{
			name: "legacy root itself",
			path: "/data/data/com.example/files/usr",
			want: "/data/user/0/app/files/prefix",
		},
		{
			name: "no legacy prefix",
			path: "/system/bin/sh",
			want: "/system/bin/sh",
		},
		{
			name: "similar but different prefix",
			path: "/data/data/com.other/files/usr/bin/sh",
			want: "/data/data/com.other/files/usr/bin/sh",
		},
		{
			name: "empty path",
			path: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.RemapLegacy(tt.path, env)
			if got != tt.want {
				t.Errorf("RemapLegacy(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestRemapper_RemapLegacy_NoSandboxRoot(t *testing.T) {
	r := New(examplePolicy())

	path := "/data/data/com.example/files/usr/bin/bash"
	got := r.RemapLegacy(path, envsnap.Snapshot{})
	if got != path {
		t.Errorf("expected no-op without sandbox root, got %q", got)
	}
}

func TestRemapper_RemapLegacy_RejectsOversizedResult(t *testing.T) {
	pol := examplePolicy()
	pol.MaxPathLen = 48
	r := New(pol)
	env := envsnap.Snapshot{SandboxRoot: "/data/user/0/some.very.long.application.id/files/prefix"}

	path := "/data/data/com.example/files/usr/bin/bash"
	got := r.RemapLegacy(path, env)
	if got != path {
		t.Errorf("expected oversized remap to be rejected, got %q", got)
	}
}

func TestRemapper_InSandbox(t *testing.T) {
	r := New(examplePolicy())

	tests := []struct {
		name string
		path string
		env  envsnap.Snapshot
		want bool
	}{
		{
			name: "under sandbox root",
			path: "/data/user/0/app/files/prefix/bin/sh",
			env:  envsnap.Snapshot{SandboxRoot: "/data/user/0/app/files/prefix"},
			want: true,
		},
		{
			name: "under alternate root",
			path: "/alt/rootfs/usr/bin/sh",
			env:  envsnap.Snapshot{SandboxRoot: "/data/user/0/app/files/prefix", AltRoot: "/alt/rootfs"},
			want: true,
		},
		{
			name: "marker segment only",
			path: "/data/user/0/other/files/prefix/bin/sh",
			env:  envsnap.Snapshot{},
			want: true,
		},
		{
			name: "legacy path counts after remap",
			path: "/data/data/com.example/files/usr/bin/sh",
			env:  envsnap.Snapshot{SandboxRoot: "/data/user/0/app/files/prefix"},
			want: true,
		},
		{
			name: "outside everything",
			path: "/system/bin/sh",
			env:  envsnap.Snapshot{SandboxRoot: "/data/user/0/app/files/prefix"},
			want: false,
		},
		{
			name: "relative path",
			path: "bin/sh",
			env:  envsnap.Snapshot{SandboxRoot: "/data/user/0/app/files/prefix"},
			want: false,
		},
		{
			name: "empty environment no marker",
			path: "/data/user/0/app/bin/sh",
			env:  envsnap.Snapshot{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.InSandbox(tt.path, tt.env)
			if got != tt.want {
				t.Errorf("InSandbox(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRemapper_Idempotent(t *testing.T) {
	r := New(examplePolicy())
	env := envsnap.Snapshot{SandboxRoot: "/data/user/0/app/files/prefix"}
	path := "/data/data/com.example/files/usr/bin/bash"

	first := r.RemapLegacy(path, env)
	for i := 0; i < 5; i++ {
		if got := r.RemapLegacy(path, env); got != first {
			t.Fatalf("RemapLegacy not stable on call %d: %q != %q", i, got, first)
		}
		if got := r.InSandbox(path, env); !got {
			t.Fatalf("InSandbox not stable on call %d", i)
		}
	}
}

func TestNew_NilPolicyUsesDefaults(t *testing.T) {
	r := New(nil)

	env := envsnap.Snapshot{}
	if !r.InSandbox("/data/user/0/app/files/prefix/bin/sh", env) {
		t.Error("default marker should classify as in-sandbox")
	}
}
