// Package pointcloud loads point cloud files into a canonical in-memory
// representation and encodes them into the compact binary format streamed
// to the AR frontend.
package pointcloud

import (
	"errors"
	"fmt"
)

// PointCloud is the canonical in-memory cloud: float32 positions plus
// optional per-point colors. When colors are present their length equals
// the position count and every channel lies in [0,1].
type PointCloud struct {
	Positions [][3]float32
	Colors    [][3]float32 // nil when the source had no color columns
}

// NumPoints returns the number of points in the cloud.
func (c *PointCloud) NumPoints() int {
	return len(c.Positions)
}

// HasColors reports whether per-point colors are present.
func (c *PointCloud) HasColors() bool {
	return c.Colors != nil
}

// LoadError reports that no backend, rich or text, produced non-empty
// point data for a path.
type LoadError struct {
	Path string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to load point cloud from %s", e.Path)
}

// ErrEmptyCloud is returned when a summary is requested over a cloud with
// zero points; axis-wise bounds are undefined over an empty set.
var ErrEmptyCloud = errors.New("point cloud is empty")
