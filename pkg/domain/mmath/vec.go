// 指示: miu200521358
package mmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec2 は2次元ベクトルを表す。
type Vec2 struct {
	X float64
	Y float64
}

// Vec3 は3次元ベクトルを表す。
type Vec3 struct {
	r3.Vec
}

// Vec4 は4次元ベクトルを表す。
type Vec4 struct {
	X float64
	Y float64
	Z float64
	W float64
}

var (
	// ZERO_VEC3 は零ベクトルを表す。
	ZERO_VEC3 = Vec3{}
	// ONE_VEC3 は全成分1のベクトルを表す。
	ONE_VEC3 = Vec3{Vec: r3.Vec{X: 1, Y: 1, Z: 1}}
)

// NewVec3 は3次元ベクトルを生成する。
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{Vec: r3.Vec{X: x, Y: y, Z: z}}
}

// NearEquals は許容誤差内で等しいかを返す。
func (v Vec2) NearEquals(other Vec2, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon && math.Abs(v.Y-other.Y) <= epsilon
}

// NearEquals は許容誤差内で等しいかを返す。
func (v Vec3) NearEquals(other Vec3, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon &&
		math.Abs(v.Y-other.Y) <= epsilon &&
		math.Abs(v.Z-other.Z) <= epsilon
}

// NearEquals は許容誤差内で等しいかを返す。
func (v Vec4) NearEquals(other Vec4, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon &&
		math.Abs(v.Y-other.Y) <= epsilon &&
		math.Abs(v.Z-other.Z) <= epsilon &&
		math.Abs(v.W-other.W) <= epsilon
}
