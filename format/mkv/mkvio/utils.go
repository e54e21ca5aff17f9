package mkvio

func pack(n int, b []byte) uint64 {
	var v uint64
	var k uint64 = (uint64(n) - 1) * 8

	for i := 0; i < n; i++ {
		v |= uint64(b[i]) << k
		k -= 8
	}

	return v
}

func unpack(n int, v uint64) []byte {
	b := make([]byte, 0, n)

	for i := uint(n); i > 0; i-- {
		b = append(b, byte(v>>(8*(i-1))))
	}

	return b
}

// width returns the number of bytes needed to hold v, at least one.
func width(v uint64) int {
	n := 1
	for v > 0xff {
		v >>= 8
		n++
	}
	return n
}
