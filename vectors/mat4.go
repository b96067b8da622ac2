package vectors

import "math"

// Mat4 is a row-major 4x4 matrix used for affine transforms.
// Points are treated as column vectors: p' = M · [x y z 1]ᵀ.
type Mat4 [4][4]float64

func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

func Translate(t Vec3) Mat4 {
	m := Identity()
	m[0][3] = t.X
	m[1][3] = t.Y
	m[2][3] = t.Z
	return m
}

func ScaleMat(s Vec3) Mat4 {
	m := Identity()
	m[0][0] = s.X
	m[1][1] = s.Y
	m[2][2] = s.Z
	return m
}

// Rotate returns a rotation of angleDeg degrees about axis (Rodrigues).
func Rotate(axis Vec3, angleDeg float64) Mat4 {
	a := axis.Normalize()
	theta := angleDeg * math.Pi / 180.0
	c, s := math.Cos(theta), math.Sin(theta)
	t := 1 - c

	return Mat4{
		{t*a.X*a.X + c, t*a.X*a.Y - s*a.Z, t*a.X*a.Z + s*a.Y, 0},
		{t*a.X*a.Y + s*a.Z, t*a.Y*a.Y + c, t*a.Y*a.Z - s*a.X, 0},
		{t*a.X*a.Z - s*a.Y, t*a.Y*a.Z + s*a.X, t*a.Z*a.Z + c, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns m · o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * o[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

func (m Mat4) Transpose() Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// TransformPoint applies m to p with an implicit w=1.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// TransformVector applies the linear part of m to v (w=0).
func (m Mat4) TransformVector(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Inverse returns the inverse of m using Gauss-Jordan elimination with
// partial pivoting. ok is false if m is singular.
func (m Mat4) Inverse() (inv Mat4, ok bool) {
	a := m
	inv = Identity()

	for col := 0; col < 4; col++ {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return Mat4{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		p := 1.0 / a[col][col]
		for j := 0; j < 4; j++ {
			a[col][j] *= p
			inv[col][j] *= p
		}
		for row := 0; row < 4; row++ {
			if row == col {
				continue
			}
			f := a[row][col]
			if f == 0 {
				continue
			}
			for j := 0; j < 4; j++ {
				a[row][j] -= f * a[col][j]
				inv[row][j] -= f * inv[col][j]
			}
		}
	}
	return inv, true
}

// Transform maps between an object's local space and world space.
type Transform struct {
	toGlobal Mat4
	toLocal  Mat4
	normal   Mat4 // inverse-transpose of toGlobal
}

// NewTransform builds a Transform from a local-to-global matrix. A singular
// matrix falls back to the identity.
func NewTransform(localToGlobal Mat4) Transform {
	inv, ok := localToGlobal.Inverse()
	if !ok {
		localToGlobal = Identity()
		inv = Identity()
	}
	return Transform{
		toGlobal: localToGlobal,
		toLocal:  inv,
		normal:   inv.Transpose(),
	}
}

func IdentityTransform() Transform {
	return NewTransform(Identity())
}

func (t Transform) Matrix() Mat4 {
	return t.toGlobal
}

func (t Transform) LocalToGlobal(p Vec3) Vec3 {
	return t.toGlobal.TransformPoint(p)
}

func (t Transform) GlobalToLocal(p Vec3) Vec3 {
	return t.toLocal.TransformPoint(p)
}

// LocalToGlobalNormal maps a local surface normal into world space and
// renormalizes it.
func (t Transform) LocalToGlobalNormal(n Vec3) Vec3 {
	return t.normal.TransformVector(n).Normalize()
}
