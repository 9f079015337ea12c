package math

import (
	gomath "math"
)

// Scalar is the set of component kinds a Box can be built over.
type Scalar interface {
	float32 | int32 | uint32
}

// Box is an axis-aligned box over a numeric kind. A box whose Min exceeds its Max on any
// axis is empty. 2D users leave the third axis at zero.
type Box[T Scalar] struct {
	Min [3]T
	Max [3]T
}

type Box3f = Box[float32]
type Box3i = Box[int32]
type Box3u = Box[uint32]

func limits[T Scalar]() (lowest, highest T) {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(float32(-gomath.MaxFloat32)).(T), any(float32(gomath.MaxFloat32)).(T)
	case int32:
		return any(int32(gomath.MinInt32)).(T), any(int32(gomath.MaxInt32)).(T)
	default:
		return any(uint32(0)).(T), any(uint32(gomath.MaxUint32)).(T)
	}
}

// EmptyBox returns the identity element of Union.
func EmptyBox[T Scalar]() Box[T] {
	lo, hi := limits[T]()
	return Box[T]{
		Min: [3]T{hi, hi, hi},
		Max: [3]T{lo, lo, lo},
	}
}

// NewBox builds a box from two corners given in any order.
func NewBox[T Scalar](a, b [3]T) Box[T] {
	return Repair(Box[T]{Min: a, Max: b})
}

func BoxFromPoints[T Scalar](points ...[3]T) Box[T] {
	b := EmptyBox[T]()
	for _, p := range points {
		b = AddPoint(b, p)
	}
	return b
}

func IsEmpty[T Scalar](b Box[T]) bool {
	for i := 0; i < 3; i++ {
		if b.Min[i] > b.Max[i] {
			return true
		}
	}
	return false
}

// Repair swaps Min and Max on every axis where they are inverted.
func Repair[T Scalar](b Box[T]) Box[T] {
	for i := 0; i < 3; i++ {
		if b.Min[i] > b.Max[i] {
			b.Min[i], b.Max[i] = b.Max[i], b.Min[i]
		}
	}
	return b
}

func AddPoint[T Scalar](b Box[T], p [3]T) Box[T] {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
	return b
}

func Union[T Scalar](a, b Box[T]) Box[T] {
	if IsEmpty(a) {
		return b
	}
	if IsEmpty(b) {
		return a
	}
	for i := 0; i < 3; i++ {
		a.Min[i] = min(a.Min[i], b.Min[i])
		a.Max[i] = max(a.Max[i], b.Max[i])
	}
	return a
}

// Intersection returns the overlap of a and b. ok is false when they do not overlap,
// in which case the returned box is empty.
func Intersection[T Scalar](a, b Box[T]) (out Box[T], ok bool) {
	if !Intersects(a, b) {
		return EmptyBox[T](), false
	}
	for i := 0; i < 3; i++ {
		out.Min[i] = max(a.Min[i], b.Min[i])
		out.Max[i] = min(a.Max[i], b.Max[i])
	}
	return out, true
}

// Intersects reports whether a and b share at least one point. Touching boxes intersect.
func Intersects[T Scalar](a, b Box[T]) bool {
	if IsEmpty(a) || IsEmpty(b) {
		return false
	}
	for i := 0; i < 3; i++ {
		if a.Min[i] > b.Max[i] || b.Min[i] > a.Max[i] {
			return false
		}
	}
	return true
}

// Contains reports whether p lies inside b, borders included.
func Contains[T Scalar](b Box[T], p [3]T) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// ContainsBox reports whether inner lies entirely inside outer.
func ContainsBox[T Scalar](outer, inner Box[T]) bool {
	if IsEmpty(inner) {
		return true
	}
	return Contains(outer, inner.Min) && Contains(outer, inner.Max)
}

// Extent returns Max-Min per axis, or zero for an empty box.
func Extent[T Scalar](b Box[T]) [3]T {
	var out [3]T
	if IsEmpty(b) {
		return out
	}
	for i := 0; i < 3; i++ {
		out[i] = b.Max[i] - b.Min[i]
	}
	return out
}

// Center returns the midpoint of b. Integer kinds round towards Min.
func Center[T Scalar](b Box[T]) [3]T {
	var out [3]T
	for i := 0; i < 3; i++ {
		out[i] = b.Min[i] + (b.Max[i]-b.Min[i])/2
	}
	return out
}

// Area returns the XY area of b, the measure used by 2D boxes.
func Area[T Scalar](b Box[T]) T {
	e := Extent(b)
	return e[0] * e[1]
}

func Volume[T Scalar](b Box[T]) T {
	e := Extent(b)
	return e[0] * e[1] * e[2]
}

func Vec3ToArray(v Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}
