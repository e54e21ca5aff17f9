package mkvio

import (
	"bytes"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeSample(t *testing.T) {
	stream := sampleStream()
	d := NewDecoder()
	events, err := d.Decode(stream)
	require.NoError(t, err)
	require.Equal(t, sampleEvents, eventNames(events))
	require.False(t, d.Pending())
	require.Equal(t, int64(len(stream)), d.Offset())
	require.Zero(t, d.Buffered())
	require.Empty(t, d.Open())

	ebml := events[0]
	require.Equal(t, int64(0), ebml.TagStart)
	require.Equal(t, int64(4), ebml.TagEnd)
	require.Equal(t, int64(4), ebml.SizeStart)
	require.Equal(t, int64(5), ebml.SizeEnd)
	require.Equal(t, int64(5), ebml.DataStart)
	require.Equal(t, int64(11), ebml.DataSize)
	require.Equal(t, int64(16), ebml.DataEnd)
	require.Equal(t, 0, ebml.Level)
	require.False(t, ebml.IsEnd)

	version := events[1]
	require.Equal(t, int64(5), version.TagStart)
	require.Equal(t, int64(7), version.SizeStart)
	require.Equal(t, int64(8), version.DataStart)
	require.Equal(t, int64(9), version.DataEnd)
	require.Equal(t, uint64(1), version.Value)

	end := events[3]
	require.True(t, end.IsEnd)
	end.IsEnd = false
	require.Equal(t, ebml, end, "end event repeats the start record")

	byName := map[string]Element{}
	for _, el := range events {
		if !el.IsEnd {
			byName[el.Name] = el
		}
	}
	require.Equal(t, "webm", byName["DocType"].Text())
	require.Equal(t, 1234.5, byName["Duration"].Float())
	require.Equal(t, "müx", byName["MuxingApp"].Text())
	require.True(t, sampleDate.Equal(byName["DateUTC"].Time()))
	require.Equal(t, uint64(640), byName["PixelWidth"].Uint())
	require.Equal(t, sampleBlock(), byName["SimpleBlock"].Data)
	require.Equal(t, int64(16), byName["Segment"].TagStart)

	last := events[len(events)-1]
	require.Equal(t, "Segment", last.Name)
	require.Equal(t, int64(len(stream)), last.DataEnd)
}

func TestDecodeBalancedNesting(t *testing.T) {
	events, err := NewDecoder().Decode(sampleStream())
	require.NoError(t, err)

	var open []Element
	var pos int64
	for _, el := range events {
		switch {
		case el.IsEnd:
			require.NotEmpty(t, open)
			top := open[len(open)-1]
			require.Equal(t, top.TagStart, el.TagStart, "end of %s closes %s", el.Name, top.Name)
			require.LessOrEqual(t, el.DataEnd, pos)
			open = open[:len(open)-1]
		case el.IsMaster():
			require.GreaterOrEqual(t, el.TagStart, pos)
			open = append(open, el)
			pos = el.DataStart
		default:
			require.GreaterOrEqual(t, el.TagStart, pos)
			pos = el.DataEnd
		}
	}
	require.Empty(t, open)
}

func TestDecodeChunkingInvariance(t *testing.T) {
	stream := sampleStream()
	want, err := NewDecoder().Decode(stream)
	require.NoError(t, err)

	got := decodeChunks(t, split(stream, 1, nil))
	require.Equal(t, want, got, "one byte chunks")

	for seed := int64(1); seed <= 20; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		chunks := split(stream, 1+int(seed%17), rnd)
		require.Equal(t, want, decodeChunks(t, chunks), "seed %d", seed)
	}

	// all chunks handed over in a single call
	d := NewDecoder()
	got, err = d.Decode(split(stream, 5, rand.New(rand.NewSource(7)))...)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDecodeResumesGrowingPrefix(t *testing.T) {
	stream := sampleStream()
	want, err := NewDecoder().Decode(stream)
	require.NoError(t, err)

	for cut := 0; cut <= len(stream); cut++ {
		d := NewDecoder()
		first, err := d.Decode(stream[:cut])
		require.NoError(t, err)
		for _, el := range first {
			if !el.IsMaster() {
				require.LessOrEqual(t, el.DataEnd, int64(cut))
			}
		}
		rest, err := d.Decode(stream[cut:])
		require.NoError(t, err)
		require.Equal(t, want, append(first, rest...), "cut at %d", cut)
	}
}

func TestDecodeSuspendsWithoutConsuming(t *testing.T) {
	stream := AppendElement(nil, ElementCodecPrivate.ID, []byte{1, 2, 3, 4, 5, 6})
	d := NewDecoder()

	events, err := d.Decode(stream[:5])
	require.NoError(t, err)
	require.Empty(t, events)
	require.True(t, d.Pending())
	require.Equal(t, int64(3), d.Offset())
	require.Len(t, d.Open(), 1)

	events, err = d.Decode()
	require.NoError(t, err)
	require.Empty(t, events)

	events, err = d.Decode(stream[5:])
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, events[0].Value)
	require.False(t, d.Pending())
}

func TestDecodeZeroLengthContainer(t *testing.T) {
	events, err := NewDecoder().Decode(AppendMaster(nil, ElementTags.ID))
	require.NoError(t, err)
	require.Equal(t, []string{"<Tags", "/Tags"}, eventNames(events))
	require.Equal(t, int64(0), events[0].DataSize)
	require.Equal(t, events[0].DataStart, events[0].DataEnd)

	stream := AppendMaster(nil, ElementTracks.ID, AppendMaster(nil, ElementTrackEntry.ID))
	events = decodeChunks(t, split(stream, 1, nil))
	require.Equal(t, []string{"<Tracks", "<TrackEntry", "/TrackEntry", "/Tracks"}, eventNames(events))
}

func TestDecodeZeroLengthLeafAtEnd(t *testing.T) {
	stream := AppendElement(nil, ElementVoid.ID, nil)
	events := decodeChunks(t, split(stream, 1, nil))
	require.Len(t, events, 1)
	require.Equal(t, "Void", events[0].Name)
	require.Equal(t, []byte{}, events[0].Value)
}

func TestDecodeUnknownElementID(t *testing.T) {
	const id = 0x4abc
	require.NotContains(t, DefaultSchema, uint32(id))

	stream := AppendMaster(nil, ElementInfo.ID,
		AppendString(nil, id, "xyz"),
		AppendUint(nil, ElementTimecodeScale.ID, 1000),
	)
	events, err := NewDecoder().Decode(stream)
	require.NoError(t, err)
	require.Equal(t, []string{"<Info", "unknown", "TimecodeScale", "/Info"}, eventNames(events))

	unknown := events[1]
	require.Equal(t, uint32(id), unknown.ID)
	require.Equal(t, ElementTypeUnknown, unknown.Type)
	require.Equal(t, -1, unknown.Level)
	require.Equal(t, []byte("xyz"), unknown.Value)
}

func TestDecodeUnknownSizeContainer(t *testing.T) {
	var stream []byte
	stream = AppendMasterStart(stream, ElementSegment.ID)
	stream = AppendMaster(stream, ElementInfo.ID, AppendUint(nil, ElementTimecodeScale.ID, 1000000))
	stream = AppendMaster(stream, ElementCluster.ID, AppendUint(nil, ElementTimecode.ID, 7))

	d := NewDecoder()
	events, err := d.Decode(stream)
	require.NoError(t, err)
	require.Equal(t, []string{"<Segment", "<Info", "TimecodeScale", "/Info", "<Cluster", "Timecode", "/Cluster"},
		eventNames(events))

	segment := events[0]
	require.True(t, segment.UnknownSize)
	require.Equal(t, int64(-1), segment.DataEnd)
	require.Equal(t, UnknownSize, segment.DataSize)
	require.Equal(t, int64(12), segment.DataStart)
	require.Empty(t, d.Open(), "unknown-size segment is closed implicitly")

	stream = AppendMasterStart(nil, ElementCluster.ID)
	stream = AppendUint(stream, ElementTimecode.ID, 0)
	stream = AppendElement(stream, ElementSimpleBlock.ID, sampleBlock())
	events = decodeChunks(t, split(stream, 3, rand.New(rand.NewSource(3))))
	require.Equal(t, []string{"<Cluster", "Timecode", "SimpleBlock"}, eventNames(events))
}

func TestDecodeUnknownSizeLeaf(t *testing.T) {
	head := AppendMaster(nil, ElementEBML.ID, AppendUint(nil, ElementEBMLVersion.ID, 1))
	stream := AppendUnknownSize(AppendID(append([]byte{}, head...), ElementTimecode.ID), 1)

	d := NewDecoder()
	events, err := d.Decode(stream)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrStructure))
	require.Equal(t, []string{"<EBML", "EBMLVersion", "/EBML"}, eventNames(events))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, int64(len(head)), perr.Offset)

	events, again := d.Decode([]byte{0x81})
	require.Empty(t, events)
	require.Equal(t, err, again)
	require.Equal(t, err, d.Err())
}

func TestDecodeUnsupportedValueType(t *testing.T) {
	schema := NewSchema(ElementRegister{ID: 0x81, Type: ElementType(42), Name: "Odd", Level: 1})
	_, err := NewDecoder(WithSchema(schema)).Decode(AppendElement(nil, 0x81, []byte{1}))
	require.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = NewDecoder().Decode(AppendElement(nil, ElementTimecode.ID, make([]byte, 9)))
	require.True(t, errors.Is(err, ErrStructure))
}

func TestDecodeInvalidTag(t *testing.T) {
	_, err := NewDecoder().Decode([]byte{0x00, 0x81})
	require.True(t, errors.Is(err, ErrStructure))
	require.Contains(t, err.Error(), "tag:0")
}

func TestDecodersAreIndependent(t *testing.T) {
	stream := sampleStream()
	want, err := NewDecoder().Decode(stream)
	require.NoError(t, err)

	results := make([][]Element, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := NewDecoder()
			for _, c := range split(stream, i+1, rand.New(rand.NewSource(int64(i)))) {
				ev, err := d.Decode(c)
				if err != nil {
					return
				}
				results[i] = append(results[i], ev...)
			}
		}(i)
	}
	wg.Wait()
	for i := range results {
		require.Equal(t, want, results[i], "decoder %d", i)
	}
}

func TestDecoderClose(t *testing.T) {
	stream := sampleStream()

	d := NewDecoder()
	_, err := d.Decode(stream)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d = NewDecoder()
	_, err = d.Decode(stream[:len(stream)-2])
	require.NoError(t, err)
	require.ErrorIs(t, d.Close(), ErrUnexpectedEOF)

	d = NewDecoder()
	_, err = d.Decode(AppendMasterStart(nil, ElementCluster.ID))
	require.NoError(t, err)
	require.Len(t, d.Open(), 1)
	require.NoError(t, d.Close())
}

func TestDecoderCloseKnownSizeAroundUnknownSize(t *testing.T) {
	cluster := AppendUint(AppendMasterStart(nil, ElementCluster.ID), ElementTimecode.ID, 5)
	stream := AppendMaster(nil, ElementSegment.ID, cluster)

	d := NewDecoder()
	events, err := d.Decode(stream)
	require.NoError(t, err)
	require.Equal(t, []string{"<Segment", "<Cluster", "Timecode"}, eventNames(events))
	require.Len(t, d.Open(), 1, "unwinding stops at the unknown-size cluster")
	require.NoError(t, d.Close())

	_, err = InitDocument(bytes.NewReader(stream)).FindElement(ElementTags.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// the same segment cut short is still truncated
	d = NewDecoder()
	_, err = d.Decode(AppendMaster(nil, ElementSegment.ID, cluster, AppendUint(nil, ElementTimecode.ID, 6))[:len(stream)])
	require.NoError(t, err)
	require.ErrorIs(t, d.Close(), ErrUnexpectedEOF)
}
