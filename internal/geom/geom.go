// Package geom holds the geometry primitives exchanged with the AR
// frontend: vectors, quaternions, and transforms.
package geom

// Vec3 is a 3-component vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a rotation in (w, x, y, z) order.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Identity returns the identity rotation.
func Identity() Quaternion {
	return Quaternion{W: 1}
}

// Transform places an entity in world space.
type Transform struct {
	Position Vec3       `json:"position"`
	Rotation Quaternion `json:"rotation"`
	Scale    Vec3       `json:"scale"`
}

// NewTransform returns a transform at the origin with unit scale.
func NewTransform() Transform {
	return Transform{Rotation: Identity(), Scale: Vec3{X: 1, Y: 1, Z: 1}}
}
