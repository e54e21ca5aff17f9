package mkvio

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var sampleDate = time.Date(2021, time.March, 4, 5, 6, 7, 890, time.UTC)

func sampleBlock() []byte {
	return []byte{0x81, 0x00, 0x21, 0x80, 0xde, 0xad, 0xbe, 0xef}
}

// sampleStream is a small but complete WebM-like document with a zero size
// master (Tags) and a final Cluster closing several levels at once.
func sampleStream() []byte {
	var b []byte
	b = AppendMaster(b, ElementEBML.ID,
		AppendUint(nil, ElementEBMLVersion.ID, 1),
		AppendString(nil, ElementDocType.ID, "webm"),
	)
	b = AppendMaster(b, ElementSegment.ID,
		AppendMaster(nil, ElementInfo.ID,
			AppendUint(nil, ElementTimecodeScale.ID, 1000000),
			AppendFloat(nil, ElementDuration.ID, 1234.5),
			AppendString(nil, ElementMuxingApp.ID, "müx"),
			AppendDate(nil, ElementDateUTC.ID, sampleDate),
		),
		AppendMaster(nil, ElementTracks.ID,
			AppendMaster(nil, ElementTrackEntry.ID,
				AppendUint(nil, ElementTrackNumber.ID, 1),
				AppendString(nil, ElementCodecID.ID, "V_VP8"),
				AppendMaster(nil, ElementVideo.ID,
					AppendUint(nil, ElementPixelWidth.ID, 640),
				),
			),
		),
		AppendMaster(nil, ElementTags.ID),
		AppendMaster(nil, ElementCluster.ID,
			AppendUint(nil, ElementTimecode.ID, 0),
			AppendElement(nil, ElementSimpleBlock.ID, sampleBlock()),
		),
	)
	return b
}

var sampleEvents = []string{
	"<EBML", "EBMLVersion", "DocType", "/EBML",
	"<Segment",
	"<Info", "TimecodeScale", "Duration", "MuxingApp", "DateUTC", "/Info",
	"<Tracks", "<TrackEntry", "TrackNumber", "CodecID", "<Video", "PixelWidth", "/Video", "/TrackEntry", "/Tracks",
	"<Tags", "/Tags",
	"<Cluster", "Timecode", "SimpleBlock", "/Cluster",
	"/Segment",
}

func eventNames(events []Element) []string {
	names := make([]string, len(events))
	for i, el := range events {
		switch {
		case el.IsMaster() && el.IsEnd:
			names[i] = "/" + el.Name
		case el.IsMaster():
			names[i] = "<" + el.Name
		default:
			names[i] = el.Name
		}
	}
	return names
}

// split cuts b into chunks with lengths drawn from [1,max].
func split(b []byte, max int, rnd *rand.Rand) [][]byte {
	var chunks [][]byte
	for len(b) > 0 {
		n := 1
		if max > 1 {
			n += rnd.Intn(max)
		}
		if n > len(b) {
			n = len(b)
		}
		chunks = append(chunks, b[:n])
		b = b[n:]
	}
	return chunks
}

// decodeChunks feeds chunks one Decode call at a time.
func decodeChunks(t *testing.T, chunks [][]byte, opts ...Option) []Element {
	t.Helper()
	d := NewDecoder(opts...)
	var events []Element
	for _, c := range chunks {
		ev, err := d.Decode(c)
		require.NoError(t, err)
		events = append(events, ev...)
	}
	require.False(t, d.Pending())
	return events
}
