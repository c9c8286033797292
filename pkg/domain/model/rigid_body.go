// 指示: miu200521358
package model

import "github.com/miu200521358/mu_pmx_merge/pkg/domain/mmath"

// RigidBodyShape は剛体形状を表す。
type RigidBodyShape byte

const (
	// RIGID_BODY_SHAPE_SPHERE は球を表す。
	RIGID_BODY_SHAPE_SPHERE RigidBodyShape = 0
	// RIGID_BODY_SHAPE_BOX は箱を表す。
	RIGID_BODY_SHAPE_BOX RigidBodyShape = 1
	// RIGID_BODY_SHAPE_CAPSULE はカプセルを表す。
	RIGID_BODY_SHAPE_CAPSULE RigidBodyShape = 2
)

// RigidBodyMode は剛体の物理演算方式を表す。
type RigidBodyMode byte

const (
	// RIGID_BODY_MODE_STATIC はボーン追従を表す。
	RIGID_BODY_MODE_STATIC RigidBodyMode = 0
	// RIGID_BODY_MODE_DYNAMIC は物理演算を表す。
	RIGID_BODY_MODE_DYNAMIC RigidBodyMode = 1
	// RIGID_BODY_MODE_DYNAMIC_BONE は物理演算+ボーン位置合わせを表す。
	RIGID_BODY_MODE_DYNAMIC_BONE RigidBodyMode = 2
)

// RigidBody は剛体を表す。識別キーは日本語名のみ。
type RigidBody struct {
	Name               string
	EnglishName        string
	BoneIndex          int
	CollisionGroup     byte
	CollisionGroupMask uint16
	Shape              RigidBodyShape
	Size               mmath.Vec3
	Position           mmath.Vec3
	Rotation           mmath.Vec3
	Mass               float64
	LinearDamping      float64
	AngularDamping     float64
	Restitution        float64
	Friction           float64
	Mode               RigidBodyMode
}

// NewRigidBody は剛体を生成する。
func NewRigidBody(name string) *RigidBody {
	return &RigidBody{Name: name, BoneIndex: -1}
}
