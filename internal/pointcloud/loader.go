package pointcloud

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// RawCloud is the unnormalized output of a format backend: positions and,
// when the source had them, colors in whatever range the file used.
type RawCloud struct {
	Positions [][3]float32
	Colors    [][3]float32
}

// RichBackend is a capability a Loader may or may not have: a parser for
// one or more native point cloud formats. A TryLoad failure is never
// fatal; the loader falls through to the plain-text reader.
type RichBackend interface {
	// Extensions lists the lower-case file extensions (with dot) the
	// backend understands.
	Extensions() []string

	// TryLoad parses path and returns whatever point data it found.
	TryLoad(path string) (*RawCloud, error)
}

// richExtensions are the extensions routed to a rich backend before the
// text fallback. .pcd is listed even though no backend for it ships here,
// so dispatch stays stable if one is registered later.
var richExtensions = map[string]bool{".ply": true, ".pcd": true}

// colorScaleThreshold separates already-normalized [0,1] color data from
// 0-255 sources. The decision is global across the whole cloud, so a
// 0-255 cloud whose samples all happen to be at or below 1 (near-black)
// is left unscaled. Known edge case, kept for compatibility with existing
// data.
const colorScaleThreshold = 1.5

// Loader reads point cloud files through a chain of rich format backends
// with a whitespace-numeric text reader as the final fallback. A Loader
// is stateless and safe for concurrent use.
type Loader struct {
	rich []RichBackend
}

// NewLoader returns a loader with the default backend set (PLY via
// polyform). Passing backends replaces the default, which lets tests run
// without the 3-D I/O dependency.
func NewLoader(backends ...RichBackend) *Loader {
	if len(backends) == 0 {
		backends = []RichBackend{plyBackend{}}
	}
	return &Loader{rich: backends}
}

// Load reads the point cloud at path. Recognized rich formats are tried
// through their backend first; every path, whatever its extension, is
// then retried as plain numeric text. Positions are stored as float32
// regardless of source precision.
func (l *Loader) Load(path string) (*PointCloud, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("point cloud %s: %w", path, fs.ErrNotExist)
		}
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))

	var raw *RawCloud
	if richExtensions[ext] {
		for _, b := range l.rich {
			if !slices.Contains(b.Extensions(), ext) {
				continue
			}
			if got, err := b.TryLoad(path); err == nil && got != nil && len(got.Positions) > 0 {
				raw = got
				break
			}
		}
	}
	if raw == nil {
		if got, err := loadText(path); err == nil && len(got.Positions) > 0 {
			raw = got
		}
	}
	if raw == nil {
		return nil, &LoadError{Path: path}
	}

	cloud := &PointCloud{Positions: raw.Positions}
	if raw.Colors != nil && len(raw.Colors) == len(raw.Positions) {
		cloud.Colors = normalizeColors(raw.Colors)
	}
	return cloud, nil
}

// normalizeColors applies the global range heuristic: any sample above
// colorScaleThreshold means the source used 0-255 and every channel is
// divided by 255.
func normalizeColors(colors [][3]float32) [][3]float32 {
	var max float32
	for _, c := range colors {
		for _, ch := range c {
			if ch > max {
				max = ch
			}
		}
	}
	if max <= colorScaleThreshold {
		return colors
	}
	out := make([][3]float32, len(colors))
	for i, c := range colors {
		out[i] = [3]float32{c[0] / 255, c[1] / 255, c[2] / 255}
	}
	return out
}
