// 指示: miu200521358
package model

import "github.com/miu200521358/mu_pmx_merge/pkg/domain/mmath"

// SphereMode はスフィアテクスチャ合成方式を表す。
type SphereMode byte

const (
	// SPHERE_MODE_INVALID はスフィア無効を表す。
	SPHERE_MODE_INVALID SphereMode = 0
	// SPHERE_MODE_MULTIPLICATION は乗算合成を表す。
	SPHERE_MODE_MULTIPLICATION SphereMode = 1
	// SPHERE_MODE_ADDITION は加算合成を表す。
	SPHERE_MODE_ADDITION SphereMode = 2
	// SPHERE_MODE_SUBTEXTURE はサブテクスチャ参照を表す。
	SPHERE_MODE_SUBTEXTURE SphereMode = 3
)

// DrawFlag は材質描画フラグを表す。
type DrawFlag byte

const (
	// DRAW_FLAG_DOUBLE_SIDED は両面描画を表す。
	DRAW_FLAG_DOUBLE_SIDED DrawFlag = 0x01
	// DRAW_FLAG_GROUND_SHADOW は地面影を表す。
	DRAW_FLAG_GROUND_SHADOW DrawFlag = 0x02
	// DRAW_FLAG_CAST_SHADOW はセルフシャドウマップへの描画を表す。
	DRAW_FLAG_CAST_SHADOW DrawFlag = 0x04
	// DRAW_FLAG_RECEIVE_SHADOW はセルフシャドウの受影を表す。
	DRAW_FLAG_RECEIVE_SHADOW DrawFlag = 0x08
	// DRAW_FLAG_EDGE はエッジ描画を表す。
	DRAW_FLAG_EDGE DrawFlag = 0x10
)

// Material は材質を表す。VerticesCountで自材質が所有する面頂点数を保持する。
type Material struct {
	Name               string
	EnglishName        string
	Diffuse            mmath.Vec4
	Specular           mmath.Vec3
	SpecularFactor     float64
	Ambient            mmath.Vec3
	DrawFlag           DrawFlag
	EdgeColor          mmath.Vec4
	EdgeSize           float64
	TextureIndex       int
	SphereTextureIndex int
	SphereMode         SphereMode
	IsSharedToon       bool
	ToonTextureIndex   int
	Memo               string
	// VerticesCount は面頂点数で、常に3の倍数。
	VerticesCount int
}

// NewMaterial は材質を生成する。
func NewMaterial(name string) *Material {
	return &Material{
		Name:               name,
		TextureIndex:       -1,
		SphereTextureIndex: -1,
		ToonTextureIndex:   -1,
	}
}
