package fs

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// StrongName computes the name a permutation's artifacts are published under: the XXHash of
// every fragment, each prefixed with its length so fragment boundaries count.
func StrongName(fragments [][]byte) string {
	hasher := xxhash.New()
	for _, f := range fragments {
		_ = binary.Write(hasher, binary.LittleEndian, uint64(len(f)))
		_, _ = hasher.Write(f)
	}
	return fmt.Sprintf("%016x", hasher.Sum64())
}
