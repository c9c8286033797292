// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/merr"
)

// indexMaps は1テーブル分の旧位置から新位置への変換を表す。削除された位置は-1。
type indexMaps struct {
	targetToMerged []int
	freshToMerged  []int
}

// buildIndexMaps はテーブル計画から両ソースの位置変換を組み立てる。
// 無効テーブルでも、新規エクスポート由来の要素が持つ参照をキー一致でターゲット位置へ解決できるようにする。
// キーの重複はValidateElementsで事前に排除されている前提。重複が残っていた場合は先勝ちで解決する。
func buildIndexMaps(plan TablePlan, targetKeys, freshKeys []IdentityKey) indexMaps {
	maps := indexMaps{
		targetToMerged: filledIndexMap(len(targetKeys)),
		freshToMerged:  filledIndexMap(len(freshKeys)),
	}

	pos := 0
	for _, op := range plan.Ops {
		switch op.Action {
		case ActionRemove:
			continue
		case ActionKeep:
			maps.targetToMerged[op.TargetIndex] = pos
		case ActionReplace:
			maps.targetToMerged[op.TargetIndex] = pos
			if op.FreshIndex >= 0 && op.FreshIndex < len(maps.freshToMerged) {
				maps.freshToMerged[op.FreshIndex] = pos
			}
		case ActionAppend:
			if op.FreshIndex >= 0 && op.FreshIndex < len(maps.freshToMerged) {
				maps.freshToMerged[op.FreshIndex] = pos
			}
		}
		pos++
	}

	if !plan.Enabled {
		targetByKey := make(map[IdentityKey]int, len(targetKeys))
		for i, key := range targetKeys {
			if _, ok := targetByKey[key]; !ok {
				targetByKey[key] = i
			}
		}
		for j, key := range freshKeys {
			if targetIndex, ok := targetByKey[key]; ok {
				maps.freshToMerged[j] = maps.targetToMerged[targetIndex]
			}
		}
	}
	return maps
}

func filledIndexMap(length int) []int {
	m := make([]int, length)
	for i := range m {
		m[i] = -1
	}
	return m
}

// sourceMaps は参照元モデル1つぶんの各テーブル位置変換をまとめる。
type sourceMaps struct {
	vertices    []int
	textures    []int
	materials   []int
	bones       []int
	morphs      []int
	rigidBodies []int
}

// remapReference は参照を新しい位置へ変換する。負の参照は未参照としてそのまま返す。
func remapReference(index int, oldToNew []int) (int, bool) {
	if index < 0 {
		return index, true
	}
	if index >= len(oldToNew) {
		return -1, false
	}
	mapped := oldToNew[index]
	if mapped < 0 {
		return -1, false
	}
	return mapped, true
}

func danglingErr(format string, params ...any) error {
	return merr.New(merr.IDDanglingReference, fmt.Sprintf(format, params...), nil)
}

// remapBoneReferences はボーンが持つ参照をマージ後の位置へ書き換える。
func remapBoneReferences(bone *model.Bone, maps *sourceMaps) error {
	var ok bool
	if bone.ParentIndex, ok = remapReference(bone.ParentIndex, maps.bones); !ok {
		return danglingErr("ボーン %s の親参照が解決できません", bone.Name)
	}
	if bone.HasFlag(model.BONE_FLAG_TAIL_IS_BONE) {
		if bone.TailIndex, ok = remapReference(bone.TailIndex, maps.bones); !ok {
			return danglingErr("ボーン %s の接続先参照が解決できません", bone.Name)
		}
	}
	if bone.HasFlag(model.BONE_FLAG_IS_EXTERNAL_ROTATION) || bone.HasFlag(model.BONE_FLAG_IS_EXTERNAL_TRANSLATION) ||
		bone.HasFlag(model.BONE_FLAG_IS_EXTERNAL_LOCAL) {
		if bone.EffectIndex, ok = remapReference(bone.EffectIndex, maps.bones); !ok {
			return danglingErr("ボーン %s の付与親参照が解決できません", bone.Name)
		}
	}
	if bone.Ik != nil {
		if bone.Ik.BoneIndex, ok = remapReference(bone.Ik.BoneIndex, maps.bones); !ok {
			return danglingErr("ボーン %s のIKターゲット参照が解決できません", bone.Name)
		}
		for i := range bone.Ik.Links {
			if bone.Ik.Links[i].BoneIndex, ok = remapReference(bone.Ik.Links[i].BoneIndex, maps.bones); !ok {
				return danglingErr("ボーン %s のIKリンク[%d]参照が解決できません", bone.Name, i)
			}
		}
	}
	return nil
}

// effectiveWeights は変形方式を考慮した各参照ボーンの実効ウェイトを返す。
func effectiveWeights(deform *model.Deform) []float64 {
	switch deform.DeformType {
	case model.DEFORM_BDEF1:
		return []float64{1}
	case model.DEFORM_BDEF2, model.DEFORM_SDEF:
		w := 0.0
		if len(deform.Weights) > 0 {
			w = deform.Weights[0]
		}
		return []float64{w, 1 - w}
	}
	weights := make([]float64, len(deform.Indexes))
	copy(weights, deform.Weights)
	return weights
}

// remapVertexDeform は頂点ウェイトのボーン参照を書き換える。
// 実効ウェイトが0の参照は詰め物とみなし、解決できない場合も先頭ボーンへ差し替える。
func remapVertexDeform(vertexIndex int, vertex *model.Vertex, maps *sourceMaps) error {
	weights := effectiveWeights(&vertex.Deform)
	for i, boneIndex := range vertex.Deform.Indexes {
		mapped, ok := remapReference(boneIndex, maps.bones)
		if !ok {
			if i < len(weights) && weights[i] != 0 {
				return danglingErr("頂点[%d]のウェイトボーン参照が解決できません: 旧位置 %d", vertexIndex, boneIndex)
			}
			mapped = 0
		}
		vertex.Deform.Indexes[i] = mapped
	}
	return nil
}

// remapMorphOffsets はモーフオフセットの参照を書き換える。
func remapMorphOffsets(morph *model.Morph, maps *sourceMaps) error {
	var ok bool
	for i, offset := range morph.Offsets {
		switch o := offset.(type) {
		case *model.GroupMorphOffset:
			if o.MorphIndex, ok = remapReference(o.MorphIndex, maps.morphs); !ok {
				return danglingErr("モーフ %s のグループ参照[%d]が解決できません", morph.Name, i)
			}
		case *model.FlipMorphOffset:
			if o.MorphIndex, ok = remapReference(o.MorphIndex, maps.morphs); !ok {
				return danglingErr("モーフ %s のフリップ参照[%d]が解決できません", morph.Name, i)
			}
		case *model.VertexMorphOffset:
			if o.VertexIndex, ok = remapReference(o.VertexIndex, maps.vertices); !ok {
				return danglingErr("モーフ %s の頂点参照[%d]が解決できません", morph.Name, i)
			}
		case *model.UvMorphOffset:
			if o.VertexIndex, ok = remapReference(o.VertexIndex, maps.vertices); !ok {
				return danglingErr("モーフ %s のUV頂点参照[%d]が解決できません", morph.Name, i)
			}
		case *model.BoneMorphOffset:
			if o.BoneIndex, ok = remapReference(o.BoneIndex, maps.bones); !ok {
				return danglingErr("モーフ %s のボーン参照[%d]が解決できません", morph.Name, i)
			}
		case *model.MaterialMorphOffset:
			// -1は全材質対象を表すため、そのまま通す。
			if o.MaterialIndex, ok = remapReference(o.MaterialIndex, maps.materials); !ok {
				return danglingErr("モーフ %s の材質参照[%d]が解決できません", morph.Name, i)
			}
		case *model.ImpulseMorphOffset:
			if o.RigidBodyIndex, ok = remapReference(o.RigidBodyIndex, maps.rigidBodies); !ok {
				return danglingErr("モーフ %s の剛体参照[%d]が解決できません", morph.Name, i)
			}
		default:
			return fmt.Errorf("モーフ %s: 未対応のオフセット型です: %T", morph.Name, offset)
		}
	}
	return nil
}

// remapDisplaySlotReferences は表示枠のボーン・モーフ参照を書き換える。
func remapDisplaySlotReferences(slot *model.DisplaySlot, maps *sourceMaps) error {
	var ok bool
	for i := range slot.References {
		reference := &slot.References[i]
		switch reference.DisplayType {
		case model.DISPLAY_TYPE_BONE:
			if reference.Index, ok = remapReference(reference.Index, maps.bones); !ok {
				return danglingErr("表示枠 %s のボーン参照[%d]が解決できません", slot.Name, i)
			}
		case model.DISPLAY_TYPE_MORPH:
			if reference.Index, ok = remapReference(reference.Index, maps.morphs); !ok {
				return danglingErr("表示枠 %s のモーフ参照[%d]が解決できません", slot.Name, i)
			}
		default:
			return fmt.Errorf("表示枠 %s: 参照種別が不正です: %d", slot.Name, reference.DisplayType)
		}
	}
	return nil
}

// remapMaterialReferences は材質のテクスチャ参照を書き換える。
func remapMaterialReferences(material *model.Material, maps *sourceMaps) error {
	var ok bool
	if material.TextureIndex, ok = remapReference(material.TextureIndex, maps.textures); !ok {
		return danglingErr("材質 %s のテクスチャ参照が解決できません", material.Name)
	}
	if material.SphereTextureIndex, ok = remapReference(material.SphereTextureIndex, maps.textures); !ok {
		return danglingErr("材質 %s のスフィア参照が解決できません", material.Name)
	}
	if !material.IsSharedToon {
		if material.ToonTextureIndex, ok = remapReference(material.ToonTextureIndex, maps.textures); !ok {
			return danglingErr("材質 %s のトゥーン参照が解決できません", material.Name)
		}
	}
	return nil
}

// remapRigidBodyReferences は剛体のボーン参照を書き換える。
func remapRigidBodyReferences(rigidBody *model.RigidBody, maps *sourceMaps) error {
	var ok bool
	if rigidBody.BoneIndex, ok = remapReference(rigidBody.BoneIndex, maps.bones); !ok {
		return danglingErr("剛体 %s のボーン参照が解決できません", rigidBody.Name)
	}
	return nil
}

// remapJointReferences はジョイントの剛体参照を書き換える。
func remapJointReferences(joint *model.Joint, maps *sourceMaps) error {
	var ok bool
	if joint.RigidBodyIndexA, ok = remapReference(joint.RigidBodyIndexA, maps.rigidBodies); !ok {
		return danglingErr("ジョイント %s の剛体A参照が解決できません", joint.Name)
	}
	if joint.RigidBodyIndexB, ok = remapReference(joint.RigidBodyIndexB, maps.rigidBodies); !ok {
		return danglingErr("ジョイント %s の剛体B参照が解決できません", joint.Name)
	}
	return nil
}
