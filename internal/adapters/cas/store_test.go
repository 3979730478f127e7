package cas_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.trai.ch/permc/internal/adapters/cas"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
)

func TestMemoryStore_PutAndGet(t *testing.T) {
	store := cas.NewMemoryStore(0)

	data := []byte("serialized program")
	token, err := store.Put(data)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if token != cas.Token(data) {
		t.Errorf("expected token %q, got %q", cas.Token(data), token)
	}

	// The store keeps its own copy.
	data[0] = 'X'

	got, err := store.Get(token)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "serialized program" {
		t.Errorf("expected stored bytes, got %q", got)
	}
}

func TestMemoryStore_Miss(t *testing.T) {
	store := cas.NewMemoryStore(0)

	_, err := store.Get("deadbeef")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryStore_Limit(t *testing.T) {
	store := cas.NewMemoryStore(8)

	if _, err := store.Put([]byte("12345")); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	// Identical content is deduplicated and costs nothing.
	if _, err := store.Put([]byte("12345")); err != nil {
		t.Fatalf("duplicate Put failed: %v", err)
	}

	_, err := store.Put([]byte("67890"))
	var exhausted *domain.ResourceExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ResourceExhaustedError, got %v", err)
	}
	if exhausted.Limit != 8 || exhausted.Used != 10 {
		t.Errorf("unexpected limit/used: %d/%d", exhausted.Limit, exhausted.Used)
	}
	if errors.Is(err, domain.ErrCompilationFailed) {
		t.Error("exhaustion must not read as a compilation failure")
	}
}

func TestMemoryStore_ConcurrentReaders(t *testing.T) {
	store := cas.NewMemoryStore(0)
	token, err := store.Put([]byte("shared"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			got, err := store.Get(token)
			if err != nil || string(got) != "shared" {
				t.Errorf("Get = %q, %v", got, err)
			}
		})
	}
	wg.Wait()
}

func TestDiskStore_PutAndGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	store, err := cas.NewDiskStore(dir, 0)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	token, err := store.Put([]byte("on disk"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	path := filepath.Join(dir, string(token)[:2], string(token))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected blob at %s: %v", path, err)
	}

	got, err := store.Get(token)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "on disk" {
		t.Errorf("expected %q, got %q", "on disk", got)
	}
}

func TestDiskStore_Persistence(t *testing.T) {
	dir := t.TempDir()

	store1, err := cas.NewDiskStore(dir, 0)
	if err != nil {
		t.Fatalf("NewDiskStore 1 failed: %v", err)
	}
	token, err := store1.Put([]byte("persisted"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	store2, err := cas.NewDiskStore(dir, 0)
	if err != nil {
		t.Fatalf("NewDiskStore 2 failed: %v", err)
	}
	got, err := store2.Get(token)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("expected %q, got %q", "persisted", got)
	}
}

func TestDiskStore_Miss(t *testing.T) {
	store, err := cas.NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	_, err = store.Get("0123456789abcdef")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestDiskStore_Limit(t *testing.T) {
	store, err := cas.NewDiskStore(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	_, err = store.Put([]byte("too large"))
	var exhausted *domain.ResourceExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ResourceExhaustedError, got %v", err)
	}
}

func TestDiskStore_NewFailsOnFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := cas.NewDiskStore(filepath.Join(file, "cache"), 0); err == nil {
		t.Fatal("expected error creating a store below a regular file")
	}
}

func TestOpener(t *testing.T) {
	opener := cas.NewOpener()

	mem, err := opener.Open("", 0)
	if err != nil {
		t.Fatalf("Open memory failed: %v", err)
	}
	if _, ok := mem.(*cas.MemoryStore); !ok {
		t.Errorf("expected *cas.MemoryStore, got %T", mem)
	}

	disk, err := opener.Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Open disk failed: %v", err)
	}
	if _, ok := disk.(*cas.DiskStore); !ok {
		t.Errorf("expected *cas.DiskStore, got %T", disk)
	}

	var _ ports.ByteCacheOpener = opener
}
