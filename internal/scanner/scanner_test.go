package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScan_FiltersByExtensionAndHidden(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "b.PNG"))
	touch(t, filepath.Join(root, "c.txt"))
	touch(t, filepath.Join(root, ".hidden.jpg"))
	touch(t, filepath.Join(root, "sub", "d.jpeg"))

	s := New(DefaultConfig())
	got := s.Scan(context.Background(), root, nil, nil)
	sort.Strings(got)

	want := []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "b.PNG"),
		filepath.Join(root, "sub", "d.jpeg"),
	}
	sort.Strings(want)

	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
}

func TestScan_SymlinkLoopDoesNotRecurseForever(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))

	loop := filepath.Join(root, "loop")
	if err := os.Symlink(root, loop); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	cfg := DefaultConfig()
	cfg.FollowSymlinks = true
	s := New(cfg)

	done := make(chan []string, 1)
	go func() { done <- s.Scan(context.Background(), root, nil, nil) }()

	select {
	case got := <-done:
		if len(got) != 1 || got[0] != filepath.Join(root, "a.jpg") {
			t.Fatalf("want exactly [a.jpg], got %v", got)
		}
	case <-contextTimeout():
		t.Fatal("scan did not terminate — possible unbounded recursion")
	}
}

func TestScan_NotADirectoryReportsError(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.jpg")
	touch(t, file)

	var reported string
	s := New(DefaultConfig())
	got := s.Scan(context.Background(), file, nil, func(path, message string) { reported = message })

	if got != nil {
		t.Fatalf("expected nil result for non-directory root, got %v", got)
	}
	if reported != "NotADirectory" {
		t.Fatalf("expected NotADirectory, got %q", reported)
	}
}

func TestScan_CancellationReturnsPartialResult(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "sub", "b.jpg"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(DefaultConfig())
	got := s.Scan(ctx, root, nil, nil)
	if len(got) != 0 {
		t.Fatalf("expected empty result for already-cancelled context, got %v", got)
	}
}

func contextTimeout() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2_000_000_000)
		defer cancel()
		<-ctx.Done()
		close(ch)
	}()
	return ch
}
