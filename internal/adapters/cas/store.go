// Package cas implements the content addressable byte cache that holds serialized programs.
package cas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
	"go.trai.ch/zerr"
)

// Token returns the content address of data.
func Token(data []byte) ports.CacheToken {
	return ports.CacheToken(fmt.Sprintf("%016x", xxhash.Sum64(data)))
}

// quota tracks the bytes stored against an optional limit.
type quota struct {
	limit int64
	used  int64
}

func (q *quota) reserve(n int) error {
	if q.limit > 0 && q.used+int64(n) > q.limit {
		return &domain.ResourceExhaustedError{Resource: "byte cache", Limit: q.limit, Used: q.used + int64(n)}
	}
	q.used += int64(n)
	return nil
}

// MemoryStore keeps every blob in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[ports.CacheToken][]byte
	quota quota
}

// NewMemoryStore creates an empty store bounded to maxBytes, zero meaning unbounded.
func NewMemoryStore(maxBytes int64) *MemoryStore {
	return &MemoryStore{
		blobs: make(map[ports.CacheToken][]byte),
		quota: quota{limit: maxBytes},
	}
}

// Put stores a copy of data under its content address.
func (s *MemoryStore) Put(data []byte) (ports.CacheToken, error) {
	token := Token(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[token]; ok {
		return token, nil
	}
	if err := s.quota.reserve(len(data)); err != nil {
		return "", err
	}
	s.blobs[token] = append([]byte(nil), data...)
	return token, nil
}

// Get returns the blob stored under token. Callers must not modify it.
func (s *MemoryStore) Get(token ports.CacheToken) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[token]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheMiss, "blob not in memory"), "token", string(token))
	}
	return data, nil
}

// DiskStore keeps every blob in its own file under a root directory, sharded by the first two
// characters of the token.
type DiskStore struct {
	root string

	mu    sync.Mutex
	quota quota
}

// NewDiskStore creates a store rooted at dir, creating the directory when needed.
func NewDiskStore(dir string, maxBytes int64) (*DiskStore, error) {
	root := filepath.Clean(dir)
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create byte cache directory"), "path", root)
	}
	return &DiskStore{root: root, quota: quota{limit: maxBytes}}, nil
}

func (s *DiskStore) path(token ports.CacheToken) string {
	t := filepath.Base(string(token))
	if len(t) < 2 {
		return filepath.Join(s.root, t)
	}
	return filepath.Join(s.root, t[:2], t)
}

// Put writes data to the file of its content address. The file is written under a temporary
// name and renamed into place, so readers never see a partial blob.
func (s *DiskStore) Put(data []byte) (ports.CacheToken, error) {
	token := Token(data)
	path := s.path(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return token, nil
	}
	if err := s.quota.reserve(len(data)); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create byte cache shard"), "path", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".blob-*")
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create byte cache file"), "path", path)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", zerr.With(zerr.Wrap(err, "failed to write byte cache file"), "path", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", zerr.With(zerr.Wrap(err, "failed to close byte cache file"), "path", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", zerr.With(zerr.Wrap(err, "failed to move byte cache file into place"), "path", path)
	}
	return token, nil
}

// Get reads the blob stored under token.
func (s *DiskStore) Get(token ports.CacheToken) ([]byte, error) {
	path := s.path(token)
	//nolint:gosec // Path is derived from a cache token below the store root
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrCacheMiss, "blob not on disk"), "token", string(token))
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read byte cache file"), "path", path)
	}
	return data, nil
}

// Opener implements ports.ByteCacheOpener.
type Opener struct{}

// NewOpener creates an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open returns a disk store rooted at dir, or a memory store when dir is empty.
func (*Opener) Open(dir string, maxBytes int64) (ports.ByteCache, error) {
	if dir == "" {
		return NewMemoryStore(maxBytes), nil
	}
	return NewDiskStore(dir, maxBytes)
}
