package pointcloud

import (
	"encoding/binary"
	"math"
)

// Wire format streamed to the AR client, little-endian, no padding:
//
//	offset 0       uint32          num_points (N)
//	offset 4       uint8           has_colors (0 or 1)
//	offset 5       N x 3 float32   x y z per point, contiguous
//	offset 5+12N   N x 3 uint8     r g b per point (only when has_colors=1)
//
// There is no checksum, version field, or compression; the client locates
// the color block from N alone. The layout is a contract with an external
// decoder and must stay byte-for-byte reproducible for the same cloud.

const wireHeaderSize = 5

// Encode serializes the cloud into the wire format. It is a pure function
// of its input: identical clouds produce identical bytes.
func Encode(c *PointCloud) []byte {
	n := c.NumPoints()
	size := wireHeaderSize + 12*n
	if c.HasColors() {
		size += 3 * n
	}

	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))
	if c.HasColors() {
		buf[4] = 1
	}

	off := wireHeaderSize
	for _, p := range c.Positions {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(p[0]))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(p[1]))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(p[2]))
		off += 12
	}
	if c.HasColors() {
		for _, col := range c.Colors {
			buf[off] = colorByte(col[0])
			buf[off+1] = colorByte(col[1])
			buf[off+2] = colorByte(col[2])
			off += 3
		}
	}
	return buf
}

// colorByte converts a [0,1] channel to its wire byte:
// round(clamp(c*255, 0, 255)).
func colorByte(c float32) uint8 {
	v := float64(c) * 255
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(math.Round(v))
}
