// Package vecn provides small generic 2D/3D vector types shared by the
// voxel and chunk coordinate systems.
package vecn

import "golang.org/x/exp/constraints"

// Number is any type a Vec2/Vec3 may be instantiated over.
type Number interface {
	constraints.Integer | constraints.Float
}

// Vec2 is a generic 2D coordinate, used for chunk coordinates (int32) and
// 2D render-radius math.
type Vec2[T Number] struct {
	X, Z T
}

// Add returns the component-wise sum of v and other.
func (v Vec2[T]) Add(other Vec2[T]) Vec2[T] {
	return Vec2[T]{X: v.X + other.X, Z: v.Z + other.Z}
}

// Sub returns the component-wise difference of v and other.
func (v Vec2[T]) Sub(other Vec2[T]) Vec2[T] {
	return Vec2[T]{X: v.X - other.X, Z: v.Z - other.Z}
}

// Vec3 is a generic 3D coordinate, used for voxel coordinates (int32).
type Vec3[T Number] struct {
	X, Y, Z T
}

// Add returns the component-wise sum of v and other.
func (v Vec3[T]) Add(other Vec3[T]) Vec3[T] {
	return Vec3[T]{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub returns the component-wise difference of v and other.
func (v Vec3[T]) Sub(other Vec3[T]) Vec3[T] {
	return Vec3[T]{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}
