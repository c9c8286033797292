// 指示: miu200521358
package model

import "github.com/miu200521358/mu_pmx_merge/pkg/domain/model/collection"

// TextEncoding はPMX文字列の符号化方式を表す。
type TextEncoding byte

const (
	// TEXT_ENCODING_UTF16LE はUTF-16LE符号化を表す。
	TEXT_ENCODING_UTF16LE TextEncoding = 0
	// TEXT_ENCODING_UTF8 はUTF-8符号化を表す。
	TEXT_ENCODING_UTF8 TextEncoding = 1
)

// PmxModel はPMXモデル全体を表す。各テーブルは位置インデックスで相互参照する。
type PmxModel struct {
	path string

	Version         float64
	Encoding        TextEncoding
	ExtendedUvCount int

	Name           string
	EnglishName    string
	Comment        string
	EnglishComment string

	Vertices     *collection.IndexedCollection[*Vertex]
	Faces        *collection.IndexedCollection[*Face]
	Textures     *collection.NamedCollection[*Texture]
	Materials    *collection.NamedCollection[*Material]
	Bones        *collection.NamedCollection[*Bone]
	Morphs       *collection.NamedCollection[*Morph]
	DisplaySlots *collection.NamedCollection[*DisplaySlot]
	RigidBodies  *collection.NamedCollection[*RigidBody]
	Joints       *collection.NamedCollection[*Joint]
}

// NewPmxModel はPMXモデルを生成する。
func NewPmxModel() *PmxModel {
	return &PmxModel{
		Version:      2.0,
		Encoding:     TEXT_ENCODING_UTF16LE,
		Vertices:     collection.NewIndexedCollection[*Vertex](),
		Faces:        collection.NewIndexedCollection[*Face](),
		Textures:     collection.NewNamedCollection(func(t *Texture) string { return t.Path }),
		Materials:    collection.NewNamedCollection(func(m *Material) string { return m.Name }),
		Bones:        collection.NewNamedCollection(func(b *Bone) string { return b.Name }),
		Morphs:       collection.NewNamedCollection(func(m *Morph) string { return m.Name }),
		DisplaySlots: collection.NewNamedCollection(func(d *DisplaySlot) string { return d.Name }),
		RigidBodies:  collection.NewNamedCollection(func(r *RigidBody) string { return r.Name }),
		Joints:       collection.NewNamedCollection(func(j *Joint) string { return j.Name }),
	}
}

// Path はモデルのファイルパスを返す。
func (m *PmxModel) Path() string {
	if m == nil {
		return ""
	}
	return m.path
}

// SetPath はモデルのファイルパスを設定する。
func (m *PmxModel) SetPath(path string) {
	if m == nil {
		return
	}
	m.path = path
}
