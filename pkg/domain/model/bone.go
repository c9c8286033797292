// 指示: miu200521358
package model

import "github.com/miu200521358/mu_pmx_merge/pkg/domain/mmath"

// BoneFlag はボーン属性フラグを表す。
type BoneFlag uint16

const (
	// BONE_FLAG_TAIL_IS_BONE は接続先がボーン指定であることを表す。
	BONE_FLAG_TAIL_IS_BONE BoneFlag = 0x0001
	// BONE_FLAG_CAN_ROTATE は回転可能を表す。
	BONE_FLAG_CAN_ROTATE BoneFlag = 0x0002
	// BONE_FLAG_CAN_TRANSLATE は移動可能を表す。
	BONE_FLAG_CAN_TRANSLATE BoneFlag = 0x0004
	// BONE_FLAG_IS_VISIBLE は表示を表す。
	BONE_FLAG_IS_VISIBLE BoneFlag = 0x0008
	// BONE_FLAG_CAN_MANIPULATE は操作可を表す。
	BONE_FLAG_CAN_MANIPULATE BoneFlag = 0x0010
	// BONE_FLAG_IS_IK はIKボーンを表す。
	BONE_FLAG_IS_IK BoneFlag = 0x0020
	// BONE_FLAG_IS_EXTERNAL_LOCAL はローカル付与を表す。
	BONE_FLAG_IS_EXTERNAL_LOCAL BoneFlag = 0x0080
	// BONE_FLAG_IS_EXTERNAL_ROTATION は回転付与を表す。
	BONE_FLAG_IS_EXTERNAL_ROTATION BoneFlag = 0x0100
	// BONE_FLAG_IS_EXTERNAL_TRANSLATION は移動付与を表す。
	BONE_FLAG_IS_EXTERNAL_TRANSLATION BoneFlag = 0x0200
	// BONE_FLAG_HAS_FIXED_AXIS は軸固定を表す。
	BONE_FLAG_HAS_FIXED_AXIS BoneFlag = 0x0400
	// BONE_FLAG_HAS_LOCAL_AXIS はローカル軸を表す。
	BONE_FLAG_HAS_LOCAL_AXIS BoneFlag = 0x0800
	// BONE_FLAG_IS_AFTER_PHYSICS_DEFORM は物理後変形を表す。
	BONE_FLAG_IS_AFTER_PHYSICS_DEFORM BoneFlag = 0x1000
	// BONE_FLAG_IS_EXTERNAL_PARENT_DEFORM は外部親変形を表す。
	BONE_FLAG_IS_EXTERNAL_PARENT_DEFORM BoneFlag = 0x2000
)

// IkLink はIKリンクを表す。
type IkLink struct {
	BoneIndex     int
	AngleLimit    bool
	MinAngleLimit mmath.Vec3
	MaxAngleLimit mmath.Vec3
}

// Ik はIK設定を表す。
type Ik struct {
	BoneIndex    int
	LoopCount    int
	UnitRotation float64
	Links        []IkLink
}

// Bone はボーンを表す。識別キーは(日本語名, 英語名)の組。
type Bone struct {
	Name         string
	EnglishName  string
	Position     mmath.Vec3
	ParentIndex  int
	Layer        int
	BoneFlag     BoneFlag
	TailIndex    int
	TailPosition mmath.Vec3
	EffectIndex  int
	EffectFactor float64
	FixedAxis    mmath.Vec3
	LocalAxisX   mmath.Vec3
	LocalAxisZ   mmath.Vec3
	ExternalKey  int
	Ik           *Ik
}

// NewBone はボーンを生成する。
func NewBone(name string) *Bone {
	return &Bone{
		Name:        name,
		ParentIndex: -1,
		TailIndex:   -1,
		EffectIndex: -1,
	}
}

// HasFlag は属性フラグの有無を返す。
func (b *Bone) HasFlag(flag BoneFlag) bool {
	return b != nil && b.BoneFlag&flag != 0
}
