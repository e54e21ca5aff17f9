package mkvio

import "sort"

// ChunkSet is a virtual concatenation of immutable byte chunks.
//
// Chunks are never copied or modified. Consumed bytes are dropped by moving
// the logical origin forward; chunks that fall entirely before the origin are
// released in batches.
type ChunkSet struct {
	chunks [][]byte
	ends   []int // ends[i] is the offset just past chunks[i], counted from chunks[0]
	first  int   // first chunk still holding live bytes
	skip   int   // offset of logical position 0, counted from chunks[0]
}

// NewChunkSet returns a ChunkSet over chunks.
func NewChunkSet(chunks ...[]byte) *ChunkSet {
	cs := new(ChunkSet)
	cs.Append(chunks...)
	return cs
}

// Replace discards every chunk and starts over with chunks.
func (cs *ChunkSet) Replace(chunks [][]byte) {
	cs.chunks = cs.chunks[:0]
	cs.ends = cs.ends[:0]
	cs.first, cs.skip = 0, 0
	cs.Append(chunks...)
}

// Append adds chunks after the current last byte.
func (cs *ChunkSet) Append(chunks ...[]byte) {
	for _, c := range chunks {
		if len(c) == 0 {
			continue
		}
		cs.chunks = append(cs.chunks, c)
		cs.ends = append(cs.ends, cs.total()+len(c))
	}
}

func (cs *ChunkSet) total() int {
	if len(cs.ends) == 0 {
		return 0
	}
	return cs.ends[len(cs.ends)-1]
}

func (cs *ChunkSet) start(i int) int {
	if i == 0 {
		return 0
	}
	return cs.ends[i-1]
}

// Len returns the number of live bytes.
func (cs *ChunkSet) Len() int {
	return cs.total() - cs.skip
}

// Chunks returns the number of chunks still referenced.
func (cs *ChunkSet) Chunks() int {
	return len(cs.chunks) - cs.first
}

// locate returns the index of the chunk holding logical position pos.
func (cs *ChunkSet) locate(pos int) int {
	abs := cs.skip + pos
	live := cs.ends[cs.first:]
	return cs.first + sort.Search(len(live), func(i int) bool {
		return live[i] > abs
	})
}

// At returns the byte at logical position pos, false if it is not available.
func (cs *ChunkSet) At(pos int) (byte, bool) {
	if pos < 0 || pos >= cs.Len() {
		return 0, false
	}
	i := cs.locate(pos)
	return cs.chunks[i][cs.skip+pos-cs.start(i)], true
}

// Slice returns the chunks covering exactly [begin,end). Fully covered chunks
// are returned as is, the boundary chunks are sub-sliced.
func (cs *ChunkSet) Slice(begin, end int) ([][]byte, error) {
	if begin < 0 || end < 0 || end < begin || end > cs.Len() {
		return nil, &RangeError{Begin: begin, End: end, Len: cs.Len()}
	}
	if begin == end {
		return nil, nil
	}

	var out [][]byte
	abs0, abs1 := cs.skip+begin, cs.skip+end
	for i := cs.locate(begin); i < len(cs.chunks); i++ {
		s := cs.start(i)
		if s >= abs1 {
			break
		}
		c := cs.chunks[i]
		lo, hi := abs0-s, abs1-s
		if lo < 0 {
			lo = 0
		}
		if hi > len(c) {
			hi = len(c)
		}
		if lo == 0 && hi == len(c) {
			out = append(out, c)
		} else {
			out = append(out, c[lo:hi:hi])
		}
	}
	return out, nil
}

// SliceFrom returns the chunks covering [begin,Len()).
func (cs *ChunkSet) SliceFrom(begin int) ([][]byte, error) {
	return cs.Slice(begin, cs.Len())
}

// Bytes returns [begin,end) as one contiguous slice. The result aliases the
// underlying chunk when the range does not cross a chunk boundary.
func (cs *ChunkSet) Bytes(begin, end int) ([]byte, error) {
	parts, err := cs.Slice(begin, end)
	if err != nil {
		return nil, err
	}
	switch len(parts) {
	case 0:
		return []byte{}, nil
	case 1:
		return parts[0], nil
	}
	b := make([]byte, 0, end-begin)
	for _, p := range parts {
		b = append(b, p...)
	}
	return b, nil
}

// Drop discards the first n live bytes.
func (cs *ChunkSet) Drop(n int) error {
	if n < 0 || n > cs.Len() {
		return &RangeError{Begin: 0, End: n, Len: cs.Len()}
	}
	cs.skip += n
	for cs.first < len(cs.chunks) && cs.ends[cs.first] <= cs.skip {
		cs.chunks[cs.first] = nil
		cs.first++
	}

	switch {
	case cs.first == len(cs.chunks):
		cs.chunks = cs.chunks[:0]
		cs.ends = cs.ends[:0]
		cs.first, cs.skip = 0, 0
	case cs.first >= 16 && cs.first*2 >= len(cs.chunks):
		cs.compact()
	}
	return nil
}

func (cs *ChunkSet) compact() {
	base := cs.ends[cs.first-1]
	n := copy(cs.chunks, cs.chunks[cs.first:])
	for i := n; i < len(cs.chunks); i++ {
		cs.chunks[i] = nil
	}
	cs.chunks = cs.chunks[:n]
	copy(cs.ends, cs.ends[cs.first:])
	cs.ends = cs.ends[:n]
	for i := range cs.ends {
		cs.ends[i] -= base
	}
	cs.skip -= base
	cs.first = 0
}
