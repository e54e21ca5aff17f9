package mkv

import (
	"io"
	"time"

	"github.com/deepch/webmio/format/mkv/mkvio"
)

// DefaultTimecodeScale is the TimecodeScale of a segment that does not set one.
const DefaultTimecodeScale uint64 = 1000000

// Info is the Segment Info block.
type Info struct {
	TimecodeScale uint64  // nanoseconds per tick
	Duration      float64 // ticks, 0 when absent
	DateUTC       time.Time
	Title         string
	MuxingApp     string
	WritingApp    string
}

// CuePoint is a seek target derived from the first keyframe of a cluster.
type CuePoint struct {
	Time            uint64 // ticks
	Track           uint64
	ClusterPosition int64 // relative to the segment data start
}

// Inspector consumes decoded element events and collects what is needed to
// describe a segment or to rebuild its seek metadata: header elements, tracks,
// the size of the metadata prefix and cue candidates.
type Inspector struct {
	DocType string
	Info    Info
	Streams []*Stream

	SegmentStart int64 // absolute offset of the Segment data, -1 before the Segment
	MetadataSize int64 // bytes before the first Cluster, 0 until one is seen
	Clusters     int
	Blocks       int
	BadBlocks    int
	HasSeekHead  bool
	HasCues      bool
	Cues         []CuePoint

	cur         *Stream
	clusterTime uint64
	clusterPos  int64
	cued        bool
	lastTime    int64
	seenBlock   bool
}

func NewInspector() *Inspector {
	return &Inspector{
		Info:         Info{TimecodeScale: DefaultTimecodeScale},
		SegmentStart: -1,
	}
}

// Inspect decodes r to the end and returns the collected description.
func Inspect(r io.Reader, opts ...mkvio.Option) (*Inspector, error) {
	ins := NewInspector()
	if err := mkvio.InitDocument(r, opts...).ParseAll(ins.Read); err != nil {
		return ins, err
	}
	return ins, nil
}

// Stream returns the track with the given number.
func (self *Inspector) Stream(number uint64) *Stream {
	for _, s := range self.Streams {
		if s.Number == number {
			return s
		}
	}
	return nil
}

// Read consumes one element event.
func (self *Inspector) Read(el mkvio.Element) {
	if el.IsEnd {
		if el.ID == mkvio.ElementTrackEntry.ID {
			self.cur = nil
		}
		return
	}

	switch el.ID {
	case mkvio.ElementDocType.ID:
		self.DocType = el.Text()
	case mkvio.ElementSegment.ID:
		self.SegmentStart = el.DataStart
	case mkvio.ElementSeekHead.ID:
		self.HasSeekHead = true
	case mkvio.ElementCues.ID:
		self.HasCues = true

	case mkvio.ElementTimecodeScale.ID:
		self.Info.TimecodeScale = el.Uint()
	case mkvio.ElementDuration.ID:
		self.Info.Duration = el.Float()
	case mkvio.ElementDateUTC.ID:
		self.Info.DateUTC = el.Time()
	case mkvio.ElementTitle.ID:
		self.Info.Title = el.Text()
	case mkvio.ElementMuxingApp.ID:
		self.Info.MuxingApp = el.Text()
	case mkvio.ElementWritingApp.ID:
		self.Info.WritingApp = el.Text()

	case mkvio.ElementTrackEntry.ID:
		self.cur = &Stream{}
		self.Streams = append(self.Streams, self.cur)

	case mkvio.ElementCluster.ID:
		self.Clusters++
		if self.MetadataSize == 0 {
			self.MetadataSize = el.TagStart
		}
		self.clusterPos = el.TagStart - self.SegmentStart
		self.clusterTime = 0
		self.cued = false
	case mkvio.ElementTimecode.ID:
		self.clusterTime = el.Uint()
	case mkvio.ElementSimpleBlock.ID:
		self.readBlock(el.Data, true)
	case mkvio.ElementBlock.ID:
		self.readBlock(el.Data, false)

	default:
		if self.cur != nil {
			self.readTrack(el)
		}
	}
}

func (self *Inspector) readTrack(el mkvio.Element) {
	s := self.cur
	switch el.ID {
	case mkvio.ElementTrackNumber.ID:
		s.Number = el.Uint()
	case mkvio.ElementTrackUID.ID:
		s.UID = el.Uint()
	case mkvio.ElementTrackType.ID:
		s.Type = el.Uint()
	case mkvio.ElementCodecID.ID:
		s.CodecID = el.Text()
	case mkvio.ElementCodecPrivate.ID:
		s.CodecPrivate = append([]byte(nil), el.Data...)
	case mkvio.ElementName.ID:
		s.Name = el.Text()
	case mkvio.ElementLanguage.ID:
		s.Language = el.Text()
	case mkvio.ElementDefaultDuration.ID:
		s.DefaultDuration = time.Duration(el.Uint())
	case mkvio.ElementPixelWidth.ID:
		s.Width = el.Uint()
	case mkvio.ElementPixelHeight.ID:
		s.Height = el.Uint()
	case mkvio.ElementSamplingFrequency.ID:
		s.SamplingFrequency = el.Float()
	case mkvio.ElementChannels.ID:
		s.Channels = el.Uint()
	}
}

// readBlock accounts one block. Only SimpleBlocks carry a keyframe flag, so
// cue candidates come from them alone. When the segment has a video track,
// only video keyframes are cued.
func (self *Inspector) readBlock(data []byte, simple bool) {
	h, err := mkvio.ParseBlockHeader(data)
	if err != nil {
		self.BadBlocks++
		return
	}
	self.Blocks++

	t := int64(self.clusterTime) + int64(h.Timecode)
	if !self.seenBlock || t > self.lastTime {
		self.lastTime = t
		self.seenBlock = true
	}

	s := self.Stream(h.Track)
	if s != nil {
		s.Blocks++
	}
	if !simple || !h.Keyframe() {
		return
	}
	if s != nil {
		s.Keyframes++
	}
	if self.hasVideo() && (s == nil || !s.IsVideo()) {
		return
	}
	if !self.cued && t >= 0 {
		self.Cues = append(self.Cues, CuePoint{
			Time:            uint64(t),
			Track:           h.Track,
			ClusterPosition: self.clusterPos,
		})
		self.cued = true
	}
}

func (self *Inspector) hasVideo() bool {
	for _, s := range self.Streams {
		if s.IsVideo() {
			return true
		}
	}
	return false
}

func (self *Inspector) ticks(n float64) time.Duration {
	return time.Duration(n * float64(self.Info.TimecodeScale))
}

// ComputedDuration is the timestamp of the latest block seen.
func (self *Inspector) ComputedDuration() time.Duration {
	if !self.seenBlock || self.lastTime < 0 {
		return 0
	}
	return self.ticks(float64(self.lastTime))
}

// Duration returns the declared duration, or the computed one when the
// segment does not declare any.
func (self *Inspector) Duration() time.Duration {
	if self.Info.Duration > 0 {
		return self.ticks(self.Info.Duration)
	}
	return self.ComputedDuration()
}

// Seekable reports whether players can seek without reading the whole file:
// the segment needs a SeekHead, Cues and a Duration.
func (self *Inspector) Seekable() bool {
	return self.HasSeekHead && self.HasCues && self.Info.Duration > 0
}
