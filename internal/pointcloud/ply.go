package pointcloud

import (
	"os"

	"github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
)

// plyBackend reads PLY files through polyform. Vertex colors come out of
// the reader already scaled to [0,1], so the loader's range heuristic
// leaves them alone.
type plyBackend struct{}

func (plyBackend) Extensions() []string {
	return []string{".ply"}
}

func (plyBackend) TryLoad(path string) (*RawCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mesh, err := ply.ReadMesh(f)
	if err != nil {
		return nil, err
	}

	view := mesh.View()
	positions := view.Float3Data[modeling.PositionAttribute]
	if len(positions) == 0 {
		return nil, nil
	}

	raw := &RawCloud{Positions: make([][3]float32, len(positions))}
	for i, p := range positions {
		raw.Positions[i] = [3]float32{float32(p.X()), float32(p.Y()), float32(p.Z())}
	}
	if colors, ok := view.Float3Data[modeling.ColorAttribute]; ok && len(colors) == len(positions) {
		raw.Colors = make([][3]float32, len(colors))
		for i, c := range colors {
			raw.Colors[i] = [3]float32{float32(c.X()), float32(c.Y()), float32(c.Z())}
		}
	}
	return raw, nil
}
