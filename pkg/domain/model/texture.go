// 指示: miu200521358
package model

// Texture はテクスチャ参照を表す。パス文字列そのものが識別キーとなる。
type Texture struct {
	Path string
}

// NewTexture はテクスチャ参照を生成する。
func NewTexture(path string) *Texture {
	return &Texture{Path: path}
}
