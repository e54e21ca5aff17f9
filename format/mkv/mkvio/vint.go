package mkvio

import (
	"fmt"
	"math/bits"
)

// VarInt is a decoded EBML variable length integer.
type VarInt struct {
	Value  int64
	Length int // encoded length in bytes
}

// MaxIDLength is the longest element ID accepted, in bytes.
const MaxIDLength = 4

// readVint collects the bytes of the vint starting at off.
// ok is false when the vint is not fully available yet.
func readVint(cs *ChunkSet, off int) (b [8]byte, n int, ok bool, err error) {
	first, ok := cs.At(off)
	if !ok {
		return
	}
	if first == 0 {
		err = fmt.Errorf("%w: vint without length marker", ErrStructure)
		return
	}
	n = bits.LeadingZeros8(first) + 1
	if off+n > cs.Len() {
		return b, n, false, nil
	}
	b[0] = first
	for i := 1; i < n; i++ {
		b[i], _ = cs.At(off + i)
	}
	return b, n, true, nil
}

// ReadElementID reads the element ID at off. The length marker is kept in
// the value, as it is part of the ID.
func ReadElementID(cs *ChunkSet, off int) (VarInt, bool, error) {
	b, n, ok, err := readVint(cs, off)
	if err != nil || !ok {
		return VarInt{}, false, err
	}
	if n > MaxIDLength {
		return VarInt{}, false, fmt.Errorf("%w: element id of %d bytes", ErrStructure, n)
	}
	return VarInt{Value: int64(pack(n, b[:n])), Length: n}, true, nil
}

// ReadElementSize reads the element size at off. A size with every value bit
// set is reported as UnknownSize.
func ReadElementSize(cs *ChunkSet, off int) (VarInt, bool, error) {
	b, n, ok, err := readVint(cs, off)
	if err != nil || !ok {
		return VarInt{}, false, err
	}
	b[0] &= 0xff >> uint(n)
	v := pack(n, b[:n])
	if v == 1<<(7*uint(n))-1 {
		return VarInt{Value: UnknownSize, Length: n}, true, nil
	}
	return VarInt{Value: int64(v), Length: n}, true, nil
}

// DecodeVint decodes a size-style vint from the start of b, as used inside
// block headers. n is 0 when b is too short.
func DecodeVint(b []byte) (v uint64, n int, err error) {
	if len(b) == 0 {
		return 0, 0, nil
	}
	if b[0] == 0 {
		return 0, 0, fmt.Errorf("%w: vint without length marker", ErrStructure)
	}
	n = bits.LeadingZeros8(b[0]) + 1
	if len(b) < n {
		return 0, 0, nil
	}
	var tmp [8]byte
	copy(tmp[:], b[:n])
	tmp[0] &= 0xff >> uint(n)
	return pack(n, tmp[:n]), n, nil
}
