package pointcloud

import (
	"fmt"

	"github.com/buildscan-data/buildscan/internal/geom"
)

// Info summarizes a loaded cloud for the frontend without shipping the
// raw data. It is computed on demand and never cached.
type Info struct {
	File       string    `json:"file"`
	NumPoints  int       `json:"num_points"`
	BoundsMin  geom.Vec3 `json:"bounds_min"`
	BoundsMax  geom.Vec3 `json:"bounds_max"`
	HasColors  bool      `json:"has_colors"`
	HasNormals bool      `json:"has_normals"`
}

// Describe computes per-axis bounds and availability flags for a cloud.
// An empty cloud returns ErrEmptyCloud: bounds over an empty set are
// undefined and must surface as a bad-input condition, never a crash.
// HasNormals is reserved for future use and always false; it is never
// inferred from input.
func Describe(c *PointCloud, source string) (*Info, error) {
	if c.NumPoints() == 0 {
		return nil, fmt.Errorf("describe %s: %w", source, ErrEmptyCloud)
	}

	min := c.Positions[0]
	max := c.Positions[0]
	for _, p := range c.Positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}

	return &Info{
		File:      source,
		NumPoints: c.NumPoints(),
		BoundsMin: geom.Vec3{X: float64(min[0]), Y: float64(min[1]), Z: float64(min[2])},
		BoundsMax: geom.Vec3{X: float64(max[0]), Y: float64(max[1]), Z: float64(max[2])},
		HasColors: c.HasColors(),
	}, nil
}
