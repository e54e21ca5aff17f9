package mkvio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkSetSlice(t *testing.T) {
	a := []byte{0, 1, 2, 3}
	b := []byte{4, 5, 6, 7}
	c := []byte{8, 9}
	cs := NewChunkSet(a, b, nil, c)
	require.Equal(t, 10, cs.Len())
	require.Equal(t, 3, cs.Chunks())

	parts, err := cs.Slice(2, 9)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{2, 3}, {4, 5, 6, 7}, {8}}, parts)
	require.Same(t, &b[0], &parts[1][0], "fully covered chunk must be reused")

	parts, err = cs.SliceFrom(0)
	require.NoError(t, err)
	require.Len(t, parts, 3)
	require.Same(t, &a[0], &parts[0][0])
	require.Same(t, &c[0], &parts[2][0])

	parts, err = cs.Slice(5, 5)
	require.NoError(t, err)
	require.Empty(t, parts)

	parts, err = cs.Slice(4, 8)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{4, 5, 6, 7}}, parts)
}

func TestChunkSetSliceErrors(t *testing.T) {
	cs := NewChunkSet([]byte{1, 2, 3}, []byte{4})
	for _, r := range [][2]int{{-1, 2}, {0, -1}, {3, 2}, {0, 5}} {
		_, err := cs.Slice(r[0], r[1])
		require.Error(t, err, "range %v", r)
		require.True(t, errors.Is(err, ErrInputRange))
		var re *RangeError
		require.True(t, errors.As(err, &re))
		require.Equal(t, r[0], re.Begin)
		require.Equal(t, 4, re.Len)
	}
	require.True(t, errors.Is(cs.Drop(5), ErrInputRange))
	require.True(t, errors.Is(cs.Drop(-1), ErrInputRange))
}

func TestChunkSetBytes(t *testing.T) {
	a := []byte{0, 1, 2, 3}
	b := []byte{4, 5}
	cs := NewChunkSet(a, b)

	got, err := cs.Bytes(1, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, got)
	require.Same(t, &a[1], &got[0], "range inside one chunk is not copied")

	got, err = cs.Bytes(3, 6)
	require.NoError(t, err)
	require.Equal(t, []byte{3, 4, 5}, got)

	got, err = cs.Bytes(2, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestChunkSetDrop(t *testing.T) {
	cs := NewChunkSet([]byte{0, 1, 2}, []byte{3, 4}, []byte{5, 6, 7})

	require.NoError(t, cs.Drop(4))
	require.Equal(t, 4, cs.Len())
	require.Equal(t, 2, cs.Chunks())
	v, ok := cs.At(0)
	require.True(t, ok)
	require.Equal(t, byte(4), v)

	parts, err := cs.SliceFrom(0)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{4}, {5, 6, 7}}, parts)

	cs.Append([]byte{8})
	require.NoError(t, cs.Drop(1))
	v, _ = cs.At(0)
	require.Equal(t, byte(5), v)
	_, ok = cs.At(4)
	require.False(t, ok)

	require.NoError(t, cs.Drop(cs.Len()))
	require.Equal(t, 0, cs.Len())
	require.Equal(t, 0, cs.Chunks())

	cs.Append([]byte{9, 10})
	v, _ = cs.At(1)
	require.Equal(t, byte(10), v)
}

func TestChunkSetDropCompacts(t *testing.T) {
	cs := new(ChunkSet)
	for i := 0; i < 64; i++ {
		cs.Append([]byte{byte(i), byte(i)})
	}
	for i := 0; i < 63; i++ {
		v, ok := cs.At(0)
		require.True(t, ok)
		require.Equal(t, byte(i), v)
		v, _ = cs.At(3)
		require.Equal(t, byte(i+1), v)

		require.NoError(t, cs.Drop(2))
		require.Equal(t, 2*(63-i), cs.Len())
		require.LessOrEqual(t, len(cs.chunks), 64)
	}
	require.Less(t, len(cs.chunks), 64, "consumed chunks must be released")
}

func TestChunkSetReplace(t *testing.T) {
	cs := NewChunkSet([]byte{1, 2, 3})
	require.NoError(t, cs.Drop(2))
	cs.Replace([][]byte{{7}, {8, 9}})
	require.Equal(t, 3, cs.Len())
	got, err := cs.Bytes(0, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{7, 8, 9}, got)
}
