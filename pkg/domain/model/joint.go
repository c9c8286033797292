// 指示: miu200521358
package model

import "github.com/miu200521358/mu_pmx_merge/pkg/domain/mmath"

// Joint はジョイントを表す。識別キーは日本語名のみ。両端の剛体を位置インデックスで参照する。
type Joint struct {
	Name            string
	EnglishName     string
	JointType       byte
	RigidBodyIndexA int
	RigidBodyIndexB int
	Position        mmath.Vec3
	Rotation        mmath.Vec3
	LinearLimitMin  mmath.Vec3
	LinearLimitMax  mmath.Vec3
	AngularLimitMin mmath.Vec3
	AngularLimitMax mmath.Vec3
	LinearSpring    mmath.Vec3
	AngularSpring   mmath.Vec3
}

// NewJoint はジョイントを生成する。
func NewJoint(name string) *Joint {
	return &Joint{Name: name, RigidBodyIndexA: -1, RigidBodyIndexB: -1}
}
