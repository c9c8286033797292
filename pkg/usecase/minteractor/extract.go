// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/merr"
)

// IdentityKey は要素の識別キーを表す。英語名を持たないテーブルではEnglishNameは空。
type IdentityKey struct {
	Name        string
	EnglishName string
}

// String は表示用のキー文字列を返す。
func (k IdentityKey) String() string {
	if k.EnglishName == "" {
		return k.Name
	}
	return k.Name + "/" + k.EnglishName
}

func boneKey(b *model.Bone) IdentityKey {
	return IdentityKey{Name: b.Name, EnglishName: b.EnglishName}
}

func materialKey(m *model.Material) IdentityKey {
	return IdentityKey{Name: m.Name, EnglishName: m.EnglishName}
}

func morphKey(m *model.Morph) IdentityKey {
	return IdentityKey{Name: m.Name, EnglishName: m.EnglishName}
}

func displaySlotKey(d *model.DisplaySlot) IdentityKey {
	return IdentityKey{Name: d.Name}
}

func rigidBodyKey(r *model.RigidBody) IdentityKey {
	return IdentityKey{Name: r.Name}
}

func jointKey(j *model.Joint) IdentityKey {
	return IdentityKey{Name: j.Name}
}

// PartialModel は新規エクスポートから抽出したフィーチャ別テーブルを表す。
// 各スライスの位置が新規エクスポートでの元位置にそのまま対応する。
// テーブル本体は有効フィーチャ分のみ保持し、参照解決のためキー列は全テーブル分保持する。
type PartialModel struct {
	Features        FeatureSet
	Version         float64
	ExtendedUvCount int

	Vertices     []*model.Vertex
	Faces        []*model.Face
	Textures     []*model.Texture
	Materials    []*model.Material
	Bones        []*model.Bone
	Morphs       []*model.Morph
	DisplaySlots []*model.DisplaySlot
	RigidBodies  []*model.RigidBody
	Joints       []*model.Joint

	BoneKeys      []IdentityKey
	MaterialKeys  []IdentityKey
	MorphKeys     []IdentityKey
	RigidBodyKeys []IdentityKey
}

// ExtractFeatures は新規エクスポートから有効フィーチャのテーブルを複製して取り出す。
// メッシュは材質が面ブロックを所有するため、meshes有効時は材質・テクスチャも併せて複製する。
func ExtractFeatures(freshModel *ModelData, features FeatureSet) (*PartialModel, error) {
	if freshModel == nil {
		return nil, fmt.Errorf("新規エクスポートが未設定です")
	}
	if err := validateFeatureSet(features); err != nil {
		return nil, err
	}

	partial := &PartialModel{
		Features:        features,
		Version:         freshModel.Version,
		ExtendedUvCount: freshModel.ExtendedUvCount,
	}

	var err error
	if features.Enabled(FeatureMeshes) {
		if partial.Vertices, err = cloneEntities(freshModel.Vertices.Values()); err != nil {
			return nil, fmt.Errorf("頂点の抽出に失敗しました: %w", err)
		}
		if partial.Faces, err = cloneEntities(freshModel.Faces.Values()); err != nil {
			return nil, fmt.Errorf("面の抽出に失敗しました: %w", err)
		}
	}
	if features.Enabled(FeatureMeshes) || features.Enabled(FeatureMaterials) {
		if partial.Materials, err = cloneEntities(freshModel.Materials.Values()); err != nil {
			return nil, fmt.Errorf("材質の抽出に失敗しました: %w", err)
		}
		if partial.Textures, err = cloneEntities(freshModel.Textures.Values()); err != nil {
			return nil, fmt.Errorf("テクスチャの抽出に失敗しました: %w", err)
		}
	}
	if features.Enabled(FeatureBones) {
		if partial.Bones, err = cloneEntities(freshModel.Bones.Values()); err != nil {
			return nil, fmt.Errorf("ボーンの抽出に失敗しました: %w", err)
		}
	}
	if features.Enabled(FeatureMorphs) {
		if partial.Morphs, err = cloneMorphs(freshModel.Morphs.Values()); err != nil {
			return nil, fmt.Errorf("モーフの抽出に失敗しました: %w", err)
		}
	}
	if features.Enabled(FeatureDisplayFrames) {
		if partial.DisplaySlots, err = cloneEntities(freshModel.DisplaySlots.Values()); err != nil {
			return nil, fmt.Errorf("表示枠の抽出に失敗しました: %w", err)
		}
	}
	if features.Enabled(FeaturePhysics) {
		if partial.RigidBodies, err = cloneEntities(freshModel.RigidBodies.Values()); err != nil {
			return nil, fmt.Errorf("剛体の抽出に失敗しました: %w", err)
		}
		if partial.Joints, err = cloneEntities(freshModel.Joints.Values()); err != nil {
			return nil, fmt.Errorf("ジョイントの抽出に失敗しました: %w", err)
		}
	}

	for _, b := range freshModel.Bones.Values() {
		partial.BoneKeys = append(partial.BoneKeys, boneKey(b))
	}
	for _, m := range freshModel.Materials.Values() {
		partial.MaterialKeys = append(partial.MaterialKeys, materialKey(m))
	}
	for _, m := range freshModel.Morphs.Values() {
		partial.MorphKeys = append(partial.MorphKeys, morphKey(m))
	}
	for _, r := range freshModel.RigidBodies.Values() {
		partial.RigidBodyKeys = append(partial.RigidBodyKeys, rigidBodyKey(r))
	}
	return partial, nil
}

// validateFeatureSet は集合内のフィーチャが全て定義済みかを検証する。
func validateFeatureSet(features FeatureSet) error {
	known := map[FeatureType]bool{}
	for _, f := range AllFeatureTypes() {
		known[f] = true
	}
	for feature, enabled := range features {
		if enabled && !known[feature] {
			return merr.New(merr.IDUnsupportedFeature, fmt.Sprintf("未対応のフィーチャです: %s", feature), nil)
		}
	}
	return nil
}
