// Package unified holds the whole-program tree shared by every permutation of a compile.
//
// When more than one permutation will run, the tree is serialized into the byte cache as soon
// as the cache is built, so a program that cannot be cached fails before any permutation
// starts. The first checkout hands over the in-memory tree; every later checkout decodes an
// independent copy from the cached bytes. At most one serialized blob plus one live tree per
// running permutation is held at a time.
package unified

import (
	"slices"
	"sync"

	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
	"go.trai.ch/zerr"
)

// Tree is the program pair one permutation compiles: the source tree and the runtime library
// code generation links against.
type Tree struct {
	Source *ast.Program
	Output *js.Library
}

// Stats describes the cache.
type Stats struct {
	Token     ports.CacheToken
	BlobBytes int
	Checkouts int
}

// AST is the shared-program cache.
type AST struct {
	opts     domain.CompileOptions
	cache    ports.ByteCache
	requests []string

	mu    sync.Mutex
	tree  *Tree
	token ports.CacheToken
	stats Stats
}

// NewAST takes ownership of tree. Unless single is set, it serializes the tree into cache
// right away; the returned error is then the serialization or cache failure.
func NewAST(opts domain.CompileOptions, tree *Tree, single bool, requests []string, cache ports.ByteCache) (*AST, error) {
	sorted := slices.Clone(requests)
	slices.Sort(sorted)
	u := &AST{
		opts:     opts,
		cache:    cache,
		requests: slices.Compact(sorted),
		tree:     tree,
	}
	if single {
		return u, nil
	}

	data, err := ast.Marshal(tree)
	if err != nil {
		return nil, err
	}
	token, err := cache.Put(data)
	if err != nil {
		return nil, err
	}
	u.token = token
	u.stats = Stats{Token: token, BlobBytes: len(data)}
	return u, nil
}

// Checkout returns a tree the caller owns. The first call returns the tree passed to NewAST;
// later calls decode a fresh copy from the byte cache, or fail with domain.ErrProgramConsumed
// when the cache was built for a single permutation.
func (u *AST) Checkout() (*Tree, error) {
	u.mu.Lock()
	tree := u.tree
	u.tree = nil
	token := u.token
	if tree != nil || token != "" {
		u.stats.Checkouts++
	}
	u.mu.Unlock()

	if tree == nil {
		if token == "" {
			return nil, zerr.Wrap(domain.ErrProgramConsumed, "checkout of a single-permutation program")
		}
		data, err := u.cache.Get(token)
		if err != nil {
			return nil, err
		}
		tree = &Tree{}
		if err := ast.Unmarshal(data, tree); err != nil {
			return nil, err
		}
	}
	tree.Source.MaxNodes = u.opts.MaxNodes
	return tree, nil
}

// RebindRequests returns the sorted, duplicate-free type names that still have rebind requests.
func (u *AST) RebindRequests() []string {
	return slices.Clone(u.requests)
}

// Stats returns a snapshot of the cache statistics.
func (u *AST) Stats() Stats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.stats
}
