package mkvio

import (
	"fmt"
)

// BlockHeader is the fixed part at the start of a SimpleBlock or Block.
type BlockHeader struct {
	Track    uint64
	Timecode int16 // relative to the cluster timecode
	Flags    byte
	Len      int // header length in bytes
}

// Keyframe reports the SimpleBlock keyframe flag.
func (h BlockHeader) Keyframe() bool {
	return h.Flags&0x80 != 0
}

// Lacing returns the lacing mode bits: 0 none, 1 Xiph, 2 fixed, 3 EBML.
func (h BlockHeader) Lacing() int {
	return int(h.Flags>>1) & 0x3
}

// ParseBlockHeader parses the track number, timecode and flags of a block.
func ParseBlockHeader(data []byte) (h BlockHeader, err error) {
	track, n, err := DecodeVint(data)
	if err != nil {
		return
	}
	if n == 0 || len(data) < n+3 {
		err = fmt.Errorf("%w: block header of %d bytes", ErrStructure, len(data))
		return
	}
	h.Track = track
	h.Timecode = int16(pack(2, data[n:n+2]))
	h.Flags = data[n+2]
	h.Len = n + 3
	return
}
