package sysexec

import (
	"runtime"
	"sync"
	"testing"
)

func TestResolver_Resolve(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("no exec primitive on this platform")
	}

	r := NewResolver()
	p, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p == nil {
		t.Fatal("resolved primitive is nil")
	}
}

func TestResolver_ResolveIsStable(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("no exec primitive on this platform")
	}

	r := NewResolver()

	first, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := r.Resolve()
			if err != nil || p == nil {
				t.Errorf("concurrent Resolve: p=%v err=%v", p, err)
			}
		}()
	}
	wg.Wait()

	if first == nil {
		t.Fatal("first resolution lost")
	}
}
