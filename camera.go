package lineart

import "github.com/chewxy/math32"

// View is the per-frame viewpoint: the camera position in world space
// and the object-to-world transform of the mesh.
type View struct {
	Camera        Vec3
	ObjectToWorld Mat4
}

// NewView returns a view of an untransformed mesh from camera.
func NewView(camera Vec3) View {
	return View{Camera: camera, ObjectToWorld: Identity()}
}

// WithTransform returns a copy of v with the given object-to-world matrix.
func (v View) WithTransform(m Mat4) View {
	v.ObjectToWorld = m
	return v
}

// NormalMatrix returns the inverse-transpose of the model matrix.
func (v View) NormalMatrix() (Mat4, error) {
	nm, ok := v.ObjectToWorld.NormalMatrix()
	if !ok {
		return Mat4{}, ErrSingularTransform
	}
	return nm, nil
}

// OrbitCamera returns a camera position on a sphere around target.
// Yaw rotates about +Y starting at +Z, pitch lifts toward +Y; both are in
// radians.
func OrbitCamera(target Vec3, distance, yaw, pitch float32) Vec3 {
	sy, cy := math32.Sincos(yaw)
	sp, cp := math32.Sincos(pitch)
	return target.Add(Vec3{X: sy * cp, Y: sp, Z: cy * cp}.Mul(distance))
}
