package mkvio

import (
	"math"
	"time"
)

// AppendID appends the encoded element id. IDs carry their own length marker.
func AppendID(b []byte, id uint32) []byte {
	return append(b, unpack(width(uint64(id)), uint64(id))...)
}

// AppendSize appends size as the shortest vint able to hold it.
func AppendSize(b []byte, size uint64) []byte {
	n := 1
	for n < 8 && size >= 1<<(7*uint(n))-1 {
		n++
	}
	return AppendSizeWidth(b, size, n)
}

// AppendSizeWidth appends size as a vint of exactly n bytes.
func AppendSizeWidth(b []byte, size uint64, n int) []byte {
	return append(b, unpack(n, size|1<<(7*uint(n)))...)
}

// AppendUnknownSize appends the n byte unknown size marker.
func AppendUnknownSize(b []byte, n int) []byte {
	return append(b, unpack(n, 1<<(7*uint(n)+1)-1)...)
}

// AppendElement appends a complete element with the given content.
func AppendElement(b []byte, id uint32, data []byte) []byte {
	b = AppendID(b, id)
	b = AppendSize(b, uint64(len(data)))
	return append(b, data...)
}

// AppendMaster appends a master element around already encoded children.
func AppendMaster(b []byte, id uint32, children ...[]byte) []byte {
	var size int
	for _, c := range children {
		size += len(c)
	}
	b = AppendID(b, id)
	b = AppendSize(b, uint64(size))
	for _, c := range children {
		b = append(b, c...)
	}
	return b
}

// AppendMasterStart appends the header of an unknown-size master element.
// Its children follow without a closing marker.
func AppendMasterStart(b []byte, id uint32) []byte {
	return AppendUnknownSize(AppendID(b, id), 8)
}

func AppendUint(b []byte, id uint32, v uint64) []byte {
	return AppendElement(b, id, unpack(width(v), v))
}

func AppendInt(b []byte, id uint32, v int64) []byte {
	n := 1
	for n < 8 && (v < -1<<(8*uint(n)-1) || v >= 1<<(8*uint(n)-1)) {
		n++
	}
	return AppendElement(b, id, unpack(n, uint64(v)))
}

func AppendFloat(b []byte, id uint32, v float64) []byte {
	return AppendElement(b, id, unpack(8, math.Float64bits(v)))
}

func AppendFloat32(b []byte, id uint32, v float32) []byte {
	return AppendElement(b, id, unpack(4, uint64(math.Float32bits(v))))
}

func AppendString(b []byte, id uint32, s string) []byte {
	return AppendElement(b, id, []byte(s))
}

func AppendDate(b []byte, id uint32, t time.Time) []byte {
	return AppendElement(b, id, unpack(8, uint64(t.Sub(DateEpoch).Nanoseconds())))
}
