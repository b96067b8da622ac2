package scene

import (
	"math"

	"github.com/echoflaresat/raytrace/colors"
	"github.com/echoflaresat/raytrace/geom"
	"github.com/echoflaresat/raytrace/vectors"
)

// Camera is a pinhole camera. The image plane sits one unit in front of the
// eye and spans the vertical field of view.
type Camera struct {
	FOVDeg     float64
	Aspect     float64
	TanHalfFOV float64
	Eye        vectors.Vec3
	Forward    vectors.Vec3
	Right      vectors.Vec3
	Up         vectors.Vec3
}

// NewCamera points a camera at eye toward target. aspect is width/height.
func NewCamera(eye, target, up vectors.Vec3, fovDeg, aspect float64) Camera {
	if aspect <= 0 {
		aspect = 1
	}
	fwd := target.Sub(eye).Normalize()
	if fwd.IsZero() {
		fwd = vectors.New(0, 0, -1)
	}
	right := fwd.Cross(up)
	if right.Norm() < 1e-6 {
		right = fwd.Orthogonal() // fallback if up is parallel to the view
	}
	right = right.Normalize()

	return Camera{
		FOVDeg:     fovDeg,
		Aspect:     aspect,
		TanHalfFOV: math.Tan(fovDeg * math.Pi / 360),
		Eye:        eye,
		Forward:    fwd,
		Right:      right,
		Up:         right.Cross(fwd).Normalize(),
	}
}

// SetAspect changes the width/height ratio of the image plane.
func (c *Camera) SetAspect(aspect float64) {
	if aspect > 0 {
		c.Aspect = aspect
	}
}

// Orbit turns the camera about its up axis by yawDeg, then about its right
// axis by tiltDeg, keeping the eye in place.
func (c *Camera) Orbit(yawDeg, tiltDeg float64) {
	if yawDeg != 0 {
		theta := yawDeg * math.Pi / 180
		cs, sn := math.Cos(theta), math.Sin(theta)
		c.Forward = rotateVec(c.Forward, c.Up, cs, sn).Normalize()
		c.Right = rotateVec(c.Right, c.Up, cs, sn).Normalize()
	}
	if tiltDeg != 0 {
		theta := tiltDeg * math.Pi / 180
		cs, sn := math.Cos(theta), math.Sin(theta)
		c.Forward = rotateVec(c.Forward, c.Right, cs, sn).Normalize()
		c.Up = rotateVec(c.Up, c.Right, cs, sn).Normalize()
	}
}

// rotateVec applies Rodrigues' rotation formula: rotate v around axis by (cosT, sinT).
func rotateVec(v, axis vectors.Vec3, cosT, sinT float64) vectors.Vec3 {
	return v.Scale(cosT).
		Add(axis.Cross(v).Scale(sinT)).
		Add(axis.Scale(axis.Dot(v) * (1.0 - cosT)))
}

// RayThrough returns the primary ray through image-plane point (x, y) in
// [0,1]², x to the right and y up from the bottom-left corner.
func (c Camera) RayThrough(x, y float64) geom.Ray {
	xPlane := (x - 0.5) * 2 * c.TanHalfFOV * c.Aspect
	yPlane := (y - 0.5) * 2 * c.TanHalfFOV

	dir := c.Right.Scale(xPlane).
		Add(c.Up.Scale(yPlane)).
		Add(c.Forward)

	return geom.NewRay(c.Eye, dir.Normalize(), colors.White(), geom.Visibility)
}
