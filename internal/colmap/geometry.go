package colmap

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/buildscan-data/buildscan/internal/geom"
)

// RotationMatrix returns the 3x3 world-to-camera rotation described by the
// image quaternion. A local normalized copy of the quaternion is used so a
// slightly non-unit input still yields a proper rotation; the stored pose
// is left untouched.
func (img Image) RotationMatrix() *mat.Dense {
	q := img.Rotation
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n == 0 {
		return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	}
	w, x, y, z := q.W/n, q.X/n, q.Y/n, q.Z/n

	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	})
}

// WorldPosition returns the camera centre in world coordinates,
// C = -R^T * t.
func (img Image) WorldPosition() geom.Vec3 {
	r := img.RotationMatrix()
	t := mat.NewVecDense(3, []float64{img.Translation.X, img.Translation.Y, img.Translation.Z})

	var c mat.VecDense
	c.MulVec(r.T(), t)
	c.ScaleVec(-1, &c)

	return geom.Vec3{X: c.AtVec(0), Y: c.AtVec(1), Z: c.AtVec(2)}
}
