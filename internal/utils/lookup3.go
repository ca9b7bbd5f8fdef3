package utils

// Lookup3Checksum implements Bob Jenkins' lookup3 "hashlittle" hash, the
// checksum HDF5 embeds in B-tree v2 nodes, fractal heap direct blocks and a
// handful of other format structures. The format mandates this exact
// algorithm (not a faster general-purpose hash like xxhash or blake3):
// a file written by any HDF5-conformant library must verify under it.
//
// Reference: H5checksum.c (H5_checksum_lookup3), derived from Jenkins'
// public-domain lookup3.c.
func Lookup3Checksum(data []byte, initval uint32) uint32 {
	length := uint32(len(data))

	a := uint32(0xdeadbeef) + length + initval
	b, c := a, a

	pos := 0
	for remaining := len(data); remaining > 12; remaining -= 12 {
		a += le32(data[pos:])
		b += le32(data[pos+4:])
		c += le32(data[pos+8:])

		a -= c
		a ^= rot(c, 4)
		c += b
		b -= a
		b ^= rot(a, 6)
		a += c
		c -= b
		c ^= rot(b, 8)
		b += a
		a -= c
		a ^= rot(c, 16)
		c += b
		b -= a
		b ^= rot(a, 19)
		a += c
		c -= b
		c ^= rot(b, 4)
		b += a

		pos += 12
	}

	tail := data[pos:]
	switch len(tail) {
	case 12:
		c += le32(tail[8:])
		b += le32(tail[4:])
		a += le32(tail[0:])
	case 11:
		c += uint32(tail[10]) << 16
		fallthrough
	case 10:
		c += uint32(tail[9]) << 8
		fallthrough
	case 9:
		c += uint32(tail[8])
		fallthrough
	case 8:
		b += le32(tail[4:])
		a += le32(tail[0:])
	case 7:
		b += uint32(tail[6]) << 16
		fallthrough
	case 6:
		b += uint32(tail[5]) << 8
		fallthrough
	case 5:
		b += uint32(tail[4])
		fallthrough
	case 4:
		a += le32(tail[0:])
	case 3:
		a += uint32(tail[2]) << 16
		fallthrough
	case 2:
		a += uint32(tail[1]) << 8
		fallthrough
	case 1:
		a += uint32(tail[0])
	case 0:
		return c
	}

	c ^= b
	c -= rot(b, 14)
	a ^= c
	a -= rot(c, 11)
	b ^= a
	b -= rot(a, 25)
	c ^= b
	c -= rot(b, 16)
	a ^= c
	a -= rot(c, 4)
	b ^= a
	b -= rot(a, 14)
	c ^= b
	c -= rot(b, 24)

	return c
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func rot(x uint32, k uint) uint32 {
	return (x << k) | (x >> (32 - k))
}
