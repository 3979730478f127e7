package ast

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/zerr"
)

// Whole programs are large flat arenas; lift the decoder's default element cap accordingly.
const maxArrayElements = 1 << 30

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ast: failed to create CBOR enc mode: %v", err))
	}
	dm, err := cbor.DecOptions{
		MaxArrayElements: maxArrayElements,
		MaxMapPairs:      maxArrayElements,
		MaxNestedLevels:  256,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("ast: failed to create CBOR dec mode: %v", err))
	}
	encMode, decMode = em, dm
}

// Marshal encodes v (a *Program or any struct embedding one) in canonical CBOR, so equal
// trees always produce equal bytes.
func Marshal(v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode program")
	}
	return data, nil
}

// Unmarshal decodes data produced by Marshal into v.
func Unmarshal(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrInvalidProgram, err.Error()), "bytes", len(data))
	}
	return nil
}
