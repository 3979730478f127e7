package ports

// CacheToken names one blob held by a ByteCache.
type CacheToken string

// ByteCache is the process-wide store holding serialized programs.
// One writer at construction time, any number of concurrent readers by token afterwards.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ByteCache interface {
	// Put stores data and returns its token.
	Put(data []byte) (CacheToken, error)

	// Get returns the bytes stored under token, or domain.ErrCacheMiss.
	Get(token CacheToken) ([]byte, error)
}

// ByteCacheOpener opens the byte cache of one compile. An empty dir selects an in-memory
// cache; maxBytes bounds the total stored bytes, zero meaning unbounded.
type ByteCacheOpener interface {
	Open(dir string, maxBytes int64) (ByteCache, error)
}
