package pointcloud

import (
	"fmt"
	"os"
	"strconv"

	"github.com/buildscan-data/buildscan/internal/textrec"
)

// loadText reads a plain whitespace-delimited cloud: one point per line,
// x y z or x y z r g b, with '#' comments and blank lines skipped. Rows
// must all have the width of the first row. Any violation fails the whole
// read, which the loader treats as this reader declining the file.
func loadText(path string) (*RawCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw RawCloud
	width := 0
	sc := textrec.NewScanner(f)
	for sc.Scan() {
		rec := sc.Record()
		if width == 0 {
			width = len(rec.Fields)
			if width < 3 {
				return nil, fmt.Errorf("%s:%d: point row has %d columns, want at least 3", path, rec.Line, width)
			}
		} else if len(rec.Fields) != width {
			return nil, fmt.Errorf("%s:%d: point row has %d columns, want %d", path, rec.Line, len(rec.Fields), width)
		}

		cols := 3
		if width >= 6 {
			cols = 6
		}
		var vals [6]float32
		for i := 0; i < cols; i++ {
			v, err := strconv.ParseFloat(rec.Fields[i], 32)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad numeric value %q: %w", path, rec.Line, rec.Fields[i], err)
			}
			vals[i] = float32(v)
		}

		raw.Positions = append(raw.Positions, [3]float32{vals[0], vals[1], vals[2]})
		if cols == 6 {
			raw.Colors = append(raw.Colors, [3]float32{vals[3], vals[4], vals[5]})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &raw, nil
}
