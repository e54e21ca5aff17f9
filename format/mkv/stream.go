package mkv

import (
	"time"
)

// TrackType values of the TrackType element
const (
	TrackTypeVideo    uint64 = 1
	TrackTypeAudio    uint64 = 2
	TrackTypeComplex  uint64 = 3
	TrackTypeLogo     uint64 = 0x10
	TrackTypeSubtitle uint64 = 0x11
	TrackTypeButtons  uint64 = 0x12
	TrackTypeControl  uint64 = 0x20
)

// Stream is one TrackEntry of the segment together with the block counters
// gathered while the clusters went by.
type Stream struct {
	Number       uint64
	UID          uint64
	Type         uint64
	CodecID      string
	CodecPrivate []byte
	Name         string
	Language     string

	DefaultDuration time.Duration

	Width, Height     uint64
	SamplingFrequency float64
	Channels          uint64

	Blocks    int
	Keyframes int
}

func (s *Stream) IsVideo() bool {
	return s.Type == TrackTypeVideo
}

func (s *Stream) IsAudio() bool {
	return s.Type == TrackTypeAudio
}
