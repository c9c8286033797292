// 指示: miu200521358
package model

import "github.com/miu200521358/mu_pmx_merge/pkg/domain/mmath"

// DeformType はウェイト変形方式を表す。
type DeformType byte

const (
	// DEFORM_BDEF1 は1ボーン変形を表す。
	DEFORM_BDEF1 DeformType = 0
	// DEFORM_BDEF2 は2ボーン変形を表す。
	DEFORM_BDEF2 DeformType = 1
	// DEFORM_BDEF4 は4ボーン変形を表す。
	DEFORM_BDEF4 DeformType = 2
	// DEFORM_SDEF はスフェリカル変形を表す。
	DEFORM_SDEF DeformType = 3
	// DEFORM_QDEF はデュアルクォータニオン変形を表す。PMX2.1専用。
	DEFORM_QDEF DeformType = 4
)

// BoneCount は変形方式ごとの参照ボーン数を返す。未知の方式は0。
func (t DeformType) BoneCount() int {
	switch t {
	case DEFORM_BDEF1:
		return 1
	case DEFORM_BDEF2, DEFORM_SDEF:
		return 2
	case DEFORM_BDEF4, DEFORM_QDEF:
		return 4
	}
	return 0
}

// Deform は頂点のボーンウェイトを表す。
type Deform struct {
	DeformType DeformType
	// Indexes は参照ボーン位置を変形方式のボーン数ぶん保持する。
	Indexes []int
	// Weights はBDEF2/SDEFで1要素、BDEF4/QDEFで4要素。BDEF1は空。
	Weights []float64
	SdefC   mmath.Vec3
	SdefR0  mmath.Vec3
	SdefR1  mmath.Vec3
}

// Vertex は頂点を表す。識別キーを持たず、位置インデックスのみで参照される。
type Vertex struct {
	Position    mmath.Vec3
	Normal      mmath.Vec3
	Uv          mmath.Vec2
	ExtendedUvs []mmath.Vec4
	Deform      Deform
	EdgeFactor  float64
}

// NewVertex は頂点を生成する。
func NewVertex() *Vertex {
	return &Vertex{Deform: Deform{DeformType: DEFORM_BDEF1, Indexes: []int{0}}}
}
