package envsnap

import "testing"

func TestCapture_FakeLookup(t *testing.T) {
	env := map[string]string{
		"PREFIX":         "/data/user/0/app/files/prefix",
		"TERMUX__ROOTFS": "/alt/rootfs",
		"PATH":           "/a:/b",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	snap := Capture(lookup, Names{
		SandboxRoot: "PREFIX",
		AltRoot:     "TERMUX__ROOTFS",
		SearchPath:  "PATH",
	})

	if snap.SandboxRoot != "/data/user/0/app/files/prefix" {
		t.Errorf("SandboxRoot = %q", snap.SandboxRoot)
	}
	if snap.AltRoot != "/alt/rootfs" {
		t.Errorf("AltRoot = %q", snap.AltRoot)
	}
	if snap.SearchPath != "/a:/b" {
		t.Errorf("SearchPath = %q", snap.SearchPath)
	}
}

func TestCapture_MissingVariables(t *testing.T) {
	lookup := func(key string) (string, bool) { return "", false }

	snap := Capture(lookup, Names{SandboxRoot: "PREFIX", AltRoot: "ALT", SearchPath: "PATH"})
	if snap != (Snapshot{}) {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestCapture_EmptyNamesSkipLookup(t *testing.T) {
	lookup := func(key string) (string, bool) {
		t.Errorf("lookup called with %q despite empty names", key)
		return "", false
	}

	snap := Capture(lookup, Names{})
	if snap != (Snapshot{}) {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestCapture_NilLookupUsesProcessEnv(t *testing.T) {
	t.Setenv("ENVSNAP_TEST_ROOT", "/some/root")

	snap := Capture(nil, Names{SandboxRoot: "ENVSNAP_TEST_ROOT"})
	if snap.SandboxRoot != "/some/root" {
		t.Errorf("SandboxRoot = %q, want value from the process environment", snap.SandboxRoot)
	}
}
