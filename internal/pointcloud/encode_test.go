package pointcloud

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func decodeWirePosition(t *testing.T, buf []byte, i int) [3]float32 {
	t.Helper()
	off := wireHeaderSize + i*12
	var p [3]float32
	for axis := 0; axis < 3; axis++ {
		bits := binary.LittleEndian.Uint32(buf[off+axis*4:])
		p[axis] = math.Float32frombits(bits)
	}
	return p
}

func TestEncodeLayout(t *testing.T) {
	cloud := &PointCloud{
		Positions: [][3]float32{{1, 2, 3}, {-4.5, 0, 6.25}},
		Colors:    [][3]float32{{1, 0, 0.5}, {0, 1, 0.2}},
	}

	buf := Encode(cloud)

	wantLen := wireHeaderSize + 2*12 + 2*3
	if len(buf) != wantLen {
		t.Fatalf("len = %d, want %d", len(buf), wantLen)
	}
	if n := binary.LittleEndian.Uint32(buf); n != 2 {
		t.Errorf("point count = %d, want 2", n)
	}
	if buf[4] != 1 {
		t.Errorf("color flag = %d, want 1", buf[4])
	}
	if got := decodeWirePosition(t, buf, 0); got != [3]float32{1, 2, 3} {
		t.Errorf("point 0 = %v", got)
	}
	if got := decodeWirePosition(t, buf, 1); got != [3]float32{-4.5, 0, 6.25} {
		t.Errorf("point 1 = %v", got)
	}
	colors := buf[wireHeaderSize+2*12:]
	want := []byte{255, 0, 128, 0, 255, 51}
	if !bytes.Equal(colors, want) {
		t.Errorf("color bytes = %v, want %v", colors, want)
	}
}

func TestEncodeWithoutColors(t *testing.T) {
	cloud := &PointCloud{Positions: [][3]float32{{1, 2, 3}}}

	buf := Encode(cloud)

	if len(buf) != wireHeaderSize+12 {
		t.Fatalf("len = %d, want %d", len(buf), wireHeaderSize+12)
	}
	if buf[4] != 0 {
		t.Errorf("color flag = %d, want 0", buf[4])
	}
}

func TestEncodeEmptyCloud(t *testing.T) {
	buf := Encode(&PointCloud{})

	if len(buf) != wireHeaderSize {
		t.Fatalf("len = %d, want %d", len(buf), wireHeaderSize)
	}
	if n := binary.LittleEndian.Uint32(buf); n != 0 {
		t.Errorf("point count = %d, want 0", n)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	cloud := &PointCloud{
		Positions: [][3]float32{{0.1, 0.2, 0.3}},
		Colors:    [][3]float32{{0.4, 0.5, 0.6}},
	}
	if !bytes.Equal(Encode(cloud), Encode(cloud)) {
		t.Error("repeated encodes differ")
	}
}

func TestColorByte(t *testing.T) {
	cases := []struct {
		in   float32
		want byte
	}{
		{0, 0},
		{1, 255},
		{0.5, 128},
		{-0.25, 0},
		{1.75, 255},
	}
	for _, tc := range cases {
		if got := colorByte(tc.in); got != tc.want {
			t.Errorf("colorByte(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
