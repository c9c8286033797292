// 指示: miu200521358
package model

// Face は三角形面を表す。頂点位置インデックス3つを保持する。
type Face struct {
	VertexIndexes [3]int
}

// NewFace は三角形面を生成する。
func NewFace(v0, v1, v2 int) *Face {
	return &Face{VertexIndexes: [3]int{v0, v1, v2}}
}
