package proxy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func testPool() []Config {
	return []Config{
		{Host: "10.0.0.1", Port: 8000, Username: "u1", Password: "secret1", Country: "de"},
		{Host: "10.0.0.2", Port: 8000, Username: "u2", Password: "secret2", Country: "fr"},
		{Host: "10.0.0.3", Port: 8000, Username: "u3", Password: "secret3", Country: "nl"},
	}
}

func TestNewRotatorEmptyPool(t *testing.T) {
	if _, err := NewRotator(nil); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("NewRotator(nil) error = %v, want ErrEmptyPool", err)
	}
}

func TestRotatorRoundRobin(t *testing.T) {
	r, err := NewRotator(testPool())
	if err != nil {
		t.Fatalf("NewRotator: %v", err)
	}

	want := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.1"}
	for i, host := range want {
		if got := r.Next().Host; got != host {
			t.Errorf("Next() #%d = %s, want %s", i, got, host)
		}
	}
	if r.Rotations() != 4 {
		t.Errorf("Rotations() = %d, want 4", r.Rotations())
	}
}

func TestRotatorRotateSkips(t *testing.T) {
	r, _ := NewRotator(testPool())
	r.Next()
	r.Rotate()
	if got := r.Next().Host; got != "10.0.0.3" {
		t.Errorf("Next() after Rotate = %s, want 10.0.0.3", got)
	}
}

func TestRotatorConcurrentNext(t *testing.T) {
	r, _ := NewRotator(testPool())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 30; j++ {
				r.Next()
			}
		}()
	}
	wg.Wait()

	if r.Rotations() != 1500 {
		t.Fatalf("Rotations() = %d, want 1500", r.Rotations())
	}
	// 1500 is a multiple of the pool size, so the cursor is back at the start.
	if got := r.Next().Host; got != "10.0.0.1" {
		t.Errorf("Next() = %s, want 10.0.0.1", got)
	}
}

func TestRandomStaysInPool(t *testing.T) {
	r, _ := NewRotator(testPool())
	for i := 0; i < 20; i++ {
		if p := r.Random(); !strings.HasPrefix(p.Host, "10.0.0.") {
			t.Fatalf("Random() = %v", p)
		}
	}
	if r.Rotations() != 0 {
		t.Errorf("Random() must not move the cursor")
	}
}

func TestConfigRedactsPassword(t *testing.T) {
	p := testPool()[0]
	if strings.Contains(p.String(), "secret1") {
		t.Errorf("String() leaks password: %s", p.String())
	}
	if !strings.Contains(p.URL(), "u1:secret1@10.0.0.1:8000") {
		t.Errorf("URL() = %s", p.URL())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proxies.toml")
	content := `
[[proxy]]
host = "p1.example.net"
port = 3128
username = "alice"
password = "pw"
country = "de"

[[proxy]]
host = "p2.example.net"
port = 3129
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	pool, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("len(pool) = %d, want 2", len(pool))
	}
	if pool[0].Username != "alice" || pool[1].Port != 3129 {
		t.Errorf("unexpected pool: %+v", pool)
	}
}

func TestLoadFileRejectsMissingPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[[proxy]]\nhost = \"x\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("LoadFile() expected error for missing port")
	}
}
