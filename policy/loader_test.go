package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writePolicyFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "policy.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing policy file: %v", err)
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writePolicyFile(t, dir, `
version: "1.0"
env:
  sandbox_root: SANDBOX_ROOT
`)

	loader, err := NewLoader(dir, "policy.yaml")
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	pol, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pol.SandboxRootVar != "SANDBOX_ROOT" {
		t.Errorf("SandboxRootVar = %q", pol.SandboxRootVar)
	}
	if loader.Get() != pol {
		t.Error("Get must return the loaded policy")
	}
}

func TestLoader_UnchangedFileReturnsCachedPolicy(t *testing.T) {
	dir := t.TempDir()
	writePolicyFile(t, dir, "version: \"1.0\"\n")

	loader, err := NewLoader(dir, "policy.yaml")
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	first, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if first != second {
		t.Error("unchanged content must return the same compiled policy")
	}
}

func TestLoader_ChangeNotifiesCallbacks(t *testing.T) {
	dir := t.TempDir()
	writePolicyFile(t, dir, "version: \"1.0\"\n")

	var notified []*Policy
	loader, err := NewLoader(dir, "policy.yaml",
		WithOnChange(func(p *Policy) { notified = append(notified, p) }))
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	writePolicyFile(t, dir, `
version: "1.0"
sandbox_marker: /files/rootfs/
`)
	if err := loader.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if len(notified) != 2 {
		t.Fatalf("got %d notifications, want 2", len(notified))
	}
	if notified[1].SandboxMarker != "/files/rootfs/" {
		t.Errorf("SandboxMarker = %q", notified[1].SandboxMarker)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	loader, err := NewLoader(t.TempDir(), "policy.yaml")
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected error for a missing policy file")
	}
}

func TestLoader_InvalidPolicyKeepsLastGood(t *testing.T) {
	dir := t.TempDir()
	writePolicyFile(t, dir, "version: \"1.0\"\n")

	loader, err := NewLoader(dir, "policy.yaml")
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	good, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	writePolicyFile(t, dir, "linker_paths: [relative/linker]\n")
	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected error for an invalid policy")
	}

	if loader.Get() != good {
		t.Error("failed reload must keep serving the last good policy")
	}
}
