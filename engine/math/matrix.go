package math

import "github.com/chewxy/math32"

func NewMat4Identity() Mat4 {
	out := Mat4{}
	out.Data[0] = 1.0
	out.Data[5] = 1.0
	out.Data[10] = 1.0
	out.Data[15] = 1.0
	return out
}

// Mul returns mt * other.
func (mt Mat4) Mul(other Mat4) Mat4 {
	out := Mat4{}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			sum := float32(0)
			for i := 0; i < 4; i++ {
				sum += mt.Data[i*4+row] * other.Data[col*4+i]
			}
			out.Data[col*4+row] = sum
		}
	}
	return out
}

func NewMat4Translation(position Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[12] = position.X
	out.Data[13] = position.Y
	out.Data[14] = position.Z
	return out
}

func NewMat4Scale(scale Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[0] = scale.X
	out.Data[5] = scale.Y
	out.Data[10] = scale.Z
	return out
}

func NewMat4EulerY(angleRadians float32) Mat4 {
	out := NewMat4Identity()
	c := math32.Cos(angleRadians)
	s := math32.Sin(angleRadians)
	out.Data[0] = c
	out.Data[2] = -s
	out.Data[8] = s
	out.Data[10] = c
	return out
}

// TransformPoint applies mt to p with w = 1.
func (mt Mat4) TransformPoint(p Vec3) Vec3 {
	d := mt.Data
	return Vec3{
		d[0]*p.X + d[4]*p.Y + d[8]*p.Z + d[12],
		d[1]*p.X + d[5]*p.Y + d[9]*p.Z + d[13],
		d[2]*p.X + d[6]*p.Y + d[10]*p.Z + d[14],
	}
}

// TransformVector applies the upper 3x3 of mt to v, ignoring translation.
func (mt Mat4) TransformVector(v Vec3) Vec3 {
	d := mt.Data
	return Vec3{
		d[0]*v.X + d[4]*v.Y + d[8]*v.Z,
		d[1]*v.X + d[5]*v.Y + d[9]*v.Z,
		d[2]*v.X + d[6]*v.Y + d[10]*v.Z,
	}
}
