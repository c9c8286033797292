// 指示: miu200521358
package model

import "github.com/miu200521358/mu_pmx_merge/pkg/domain/mmath"

// MorphPanel はモーフの操作パネル分類を表す。
type MorphPanel byte

const (
	// MORPH_PANEL_SYSTEM はシステム予約を表す。
	MORPH_PANEL_SYSTEM MorphPanel = 0
	// MORPH_PANEL_EYEBROW は眉を表す。
	MORPH_PANEL_EYEBROW MorphPanel = 1
	// MORPH_PANEL_EYE は目を表す。
	MORPH_PANEL_EYE MorphPanel = 2
	// MORPH_PANEL_LIP は口を表す。
	MORPH_PANEL_LIP MorphPanel = 3
	// MORPH_PANEL_OTHER はその他を表す。
	MORPH_PANEL_OTHER MorphPanel = 4
)

// MorphType はモーフ種別を表す。
type MorphType byte

const (
	// MORPH_TYPE_GROUP はグループモーフを表す。
	MORPH_TYPE_GROUP MorphType = 0
	// MORPH_TYPE_VERTEX は頂点モーフを表す。
	MORPH_TYPE_VERTEX MorphType = 1
	// MORPH_TYPE_BONE はボーンモーフを表す。
	MORPH_TYPE_BONE MorphType = 2
	// MORPH_TYPE_UV はUVモーフを表す。
	MORPH_TYPE_UV MorphType = 3
	// MORPH_TYPE_EXTENDED_UV1 は追加UV1モーフを表す。
	MORPH_TYPE_EXTENDED_UV1 MorphType = 4
	// MORPH_TYPE_EXTENDED_UV2 は追加UV2モーフを表す。
	MORPH_TYPE_EXTENDED_UV2 MorphType = 5
	// MORPH_TYPE_EXTENDED_UV3 は追加UV3モーフを表す。
	MORPH_TYPE_EXTENDED_UV3 MorphType = 6
	// MORPH_TYPE_EXTENDED_UV4 は追加UV4モーフを表す。
	MORPH_TYPE_EXTENDED_UV4 MorphType = 7
	// MORPH_TYPE_MATERIAL は材質モーフを表す。
	MORPH_TYPE_MATERIAL MorphType = 8
	// MORPH_TYPE_FLIP はフリップモーフを表す。PMX2.1専用。
	MORPH_TYPE_FLIP MorphType = 9
	// MORPH_TYPE_IMPULSE はインパルスモーフを表す。PMX2.1専用。
	MORPH_TYPE_IMPULSE MorphType = 10
)

// IsVertexTarget は頂点テーブルを参照する種別かを返す。
func (t MorphType) IsVertexTarget() bool {
	return t == MORPH_TYPE_VERTEX || (t >= MORPH_TYPE_UV && t <= MORPH_TYPE_EXTENDED_UV4)
}

// IMorphOffset はモーフオフセットを表す。
type IMorphOffset interface {
	morphOffset()
}

// GroupMorphOffset はグループモーフの1エントリを表す。
type GroupMorphOffset struct {
	MorphIndex int
	Factor     float64
}

// VertexMorphOffset は頂点モーフの1エントリを表す。
type VertexMorphOffset struct {
	VertexIndex int
	Offset      mmath.Vec3
}

// BoneMorphOffset はボーンモーフの1エントリを表す。
type BoneMorphOffset struct {
	BoneIndex   int
	Translation mmath.Vec3
	Rotation    mmath.Vec4
}

// UvMorphOffset はUV系モーフの1エントリを表す。
type UvMorphOffset struct {
	VertexIndex int
	Uv          mmath.Vec4
}

// MaterialMorphOffset は材質モーフの1エントリを表す。MaterialIndexが-1のとき全材質対象。
type MaterialMorphOffset struct {
	MaterialIndex       int
	CalcMode            byte
	Diffuse             mmath.Vec4
	Specular            mmath.Vec3
	SpecularFactor      float64
	Ambient             mmath.Vec3
	EdgeColor           mmath.Vec4
	EdgeSize            float64
	TextureFactor       mmath.Vec4
	SphereTextureFactor mmath.Vec4
	ToonTextureFactor   mmath.Vec4
}

// FlipMorphOffset はフリップモーフの1エントリを表す。
type FlipMorphOffset struct {
	MorphIndex int
	Factor     float64
}

// ImpulseMorphOffset はインパルスモーフの1エントリを表す。
type ImpulseMorphOffset struct {
	RigidBodyIndex int
	IsLocal        bool
	Velocity       mmath.Vec3
	Torque         mmath.Vec3
}

func (*GroupMorphOffset) morphOffset() {}
func (*VertexMorphOffset) morphOffset() {}
func (*BoneMorphOffset) morphOffset() {}
func (*UvMorphOffset) morphOffset() {}
func (*MaterialMorphOffset) morphOffset() {}
func (*FlipMorphOffset) morphOffset() {}
func (*ImpulseMorphOffset) morphOffset() {}

// OffsetTargetName はオフセット参照先テーブルの表示名を返す。
func (t MorphType) OffsetTargetName() string {
	switch t {
	case MORPH_TYPE_GROUP, MORPH_TYPE_FLIP:
		return "モーフ"
	case MORPH_TYPE_BONE:
		return "ボーン"
	case MORPH_TYPE_MATERIAL:
		return "材質"
	case MORPH_TYPE_IMPULSE:
		return "剛体"
	}
	return "頂点"
}

// Morph はモーフを表す。識別キーは(日本語名, 英語名)の組。
type Morph struct {
	Name        string
	EnglishName string
	Panel       MorphPanel
	MorphType   MorphType
	Offsets     []IMorphOffset
}

// NewMorph はモーフを生成する。
func NewMorph(name string, morphType MorphType) *Morph {
	return &Morph{Name: name, MorphType: morphType}
}
