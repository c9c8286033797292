// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
)

// ApplyMergePlan は計画に従ってターゲットと抽出済みテーブルを組み上げ、参照を再配置したモデルを返す。
// ターゲットモデルは変更しない。PartialModelは取り込み先で直接使われるため、適用後は再利用できない。
// 再配置はボーン→材質→メッシュ→モーフ→表示枠→剛体→ジョイントの依存順で行う。
func ApplyMergePlan(target *ModelData, fresh *PartialModel, plan *MergePlan) (*ModelData, error) {
	if target == nil || fresh == nil || plan == nil {
		return nil, fmt.Errorf("マージ適用の入力が不足しています")
	}

	merged := model.NewPmxModel()
	merged.Version = target.Version
	merged.Encoding = target.Encoding
	merged.Name = target.Name
	merged.EnglishName = target.EnglishName
	merged.Comment = target.Comment
	merged.EnglishComment = target.EnglishComment
	merged.ExtendedUvCount = target.ExtendedUvCount
	if plan.Features.Enabled(FeatureMeshes) && fresh.ExtendedUvCount > merged.ExtendedUvCount {
		merged.ExtendedUvCount = fresh.ExtendedUvCount
	}

	boneMaps := buildIndexMaps(plan.Bones, collectBoneKeys(target), fresh.BoneKeys)
	materialMaps := buildIndexMaps(plan.Materials, collectMaterialKeys(target), fresh.MaterialKeys)
	morphMaps := buildIndexMaps(plan.Morphs, collectMorphKeys(target), fresh.MorphKeys)
	rigidBodyMaps := buildIndexMaps(plan.RigidBodies, collectRigidBodyKeys(target), fresh.RigidBodyKeys)

	texturesEnabled := plan.Features.Enabled(FeatureMeshes) || plan.Features.Enabled(FeatureMaterials)
	textureTargetMap, textureFreshMap, err := mergeTextures(merged, target, fresh, texturesEnabled)
	if err != nil {
		return nil, err
	}

	meshesEnabled := plan.Features.Enabled(FeatureMeshes)
	vertexTargetMap, vertexFreshMap, err := mergeVertices(merged, target, fresh, meshesEnabled)
	if err != nil {
		return nil, err
	}

	targetSource := &sourceMaps{
		vertices:    vertexTargetMap,
		textures:    textureTargetMap,
		materials:   materialMaps.targetToMerged,
		bones:       boneMaps.targetToMerged,
		morphs:      morphMaps.targetToMerged,
		rigidBodies: rigidBodyMaps.targetToMerged,
	}
	freshSource := &sourceMaps{
		vertices:    vertexFreshMap,
		textures:    textureFreshMap,
		materials:   materialMaps.freshToMerged,
		bones:       boneMaps.freshToMerged,
		morphs:      morphMaps.freshToMerged,
		rigidBodies: rigidBodyMaps.freshToMerged,
	}
	sourceOf := func(op EntityOp) *sourceMaps {
		if op.FreshIndex >= 0 {
			return freshSource
		}
		return targetSource
	}

	if err := mergeBones(merged, target, fresh, plan, sourceOf); err != nil {
		return nil, err
	}

	materialOps, err := mergeMaterials(merged, target, fresh, plan, sourceOf)
	if err != nil {
		return nil, err
	}
	if err := mergeGeometry(merged, target, fresh, plan, materialOps, vertexTargetMap, vertexFreshMap); err != nil {
		return nil, err
	}

	if err := mergeMorphs(merged, target, fresh, plan, sourceOf); err != nil {
		return nil, err
	}

	// 間引き対象の頂点はウェイト参照を解決しない。面とモーフが新規側に揃った後でないと
	// 生存判定ができないため、ウェイト再配置はモーフ組み上げの後に行う。
	var usedVertices []bool
	if meshesEnabled {
		usedVertices = collectUsedVertexFlags(merged)
	}
	for i, vertex := range merged.Vertices.Values() {
		if usedVertices != nil && !usedVertices[i] {
			continue
		}
		maps := targetSource
		if meshesEnabled && i >= target.Vertices.Len() {
			maps = freshSource
		}
		if err := remapVertexDeform(i, vertex, maps); err != nil {
			return nil, err
		}
	}
	if err := mergeDisplaySlots(merged, target, fresh, plan, sourceOf); err != nil {
		return nil, err
	}
	if err := mergeRigidBodies(merged, target, fresh, plan, sourceOf); err != nil {
		return nil, err
	}
	if err := mergeJoints(merged, target, fresh, plan, sourceOf); err != nil {
		return nil, err
	}

	if meshesEnabled {
		purgeUnusedVertices(merged)
	}
	if texturesEnabled {
		purgeUnusedTextures(merged)
	}

	warnBoneOrdering(merged)
	return merged, nil
}

func collectBoneKeys(target *ModelData) []IdentityKey {
	keys := make([]IdentityKey, 0, target.Bones.Len())
	for _, b := range target.Bones.Values() {
		keys = append(keys, boneKey(b))
	}
	return keys
}

func collectMaterialKeys(target *ModelData) []IdentityKey {
	keys := make([]IdentityKey, 0, target.Materials.Len())
	for _, m := range target.Materials.Values() {
		keys = append(keys, materialKey(m))
	}
	return keys
}

func collectMorphKeys(target *ModelData) []IdentityKey {
	keys := make([]IdentityKey, 0, target.Morphs.Len())
	for _, m := range target.Morphs.Values() {
		keys = append(keys, morphKey(m))
	}
	return keys
}

func collectRigidBodyKeys(target *ModelData) []IdentityKey {
	keys := make([]IdentityKey, 0, target.RigidBodies.Len())
	for _, r := range target.RigidBodies.Values() {
		keys = append(keys, rigidBodyKey(r))
	}
	return keys
}

// identityIndexMap は位置を変えない変換表を返す。
func identityIndexMap(length int) []int {
	m := make([]int, length)
	for i := range m {
		m[i] = i
	}
	return m
}

// mergeTextures はテクスチャテーブルを組み上げる。識別キーはパス文字列で、同一パスは統合する。
func mergeTextures(merged *ModelData, target *ModelData, fresh *PartialModel, enabled bool) ([]int, []int, error) {
	targetMap := identityIndexMap(target.Textures.Len())
	freshMap := filledIndexMap(len(fresh.Textures))

	for i, texture := range target.Textures.Values() {
		cloned, err := cloneEntity(texture)
		if err != nil {
			return nil, nil, fmt.Errorf("テクスチャ[%d]: %w", i, err)
		}
		merged.Textures.AppendRaw(cloned)
	}
	if !enabled {
		return targetMap, freshMap, nil
	}

	for j, texture := range fresh.Textures {
		if index, ok := merged.Textures.IndexByName(texture.Path); ok {
			freshMap[j] = index
			continue
		}
		freshMap[j] = merged.Textures.AppendRaw(texture)
	}
	return targetMap, freshMap, nil
}

// mergeVertices は頂点テーブルを組み上げる。meshes有効時のみ新規エクスポートの頂点を末尾へ取り込む。
// 不要になった頂点は形状確定後にまとめて間引く。
func mergeVertices(merged *ModelData, target *ModelData, fresh *PartialModel, enabled bool) ([]int, []int, error) {
	targetMap := identityIndexMap(target.Vertices.Len())

	for i, vertex := range target.Vertices.Values() {
		cloned, err := cloneEntity(vertex)
		if err != nil {
			return nil, nil, fmt.Errorf("頂点[%d]: %w", i, err)
		}
		merged.Vertices.AppendRaw(cloned)
	}
	if !enabled {
		// 頂点は識別キーを持たないため、無効時の新規エクスポート頂点参照は解決できない。
		return targetMap, nil, nil
	}

	freshMap := make([]int, len(fresh.Vertices))
	for j, vertex := range fresh.Vertices {
		freshMap[j] = merged.Vertices.AppendRaw(vertex)
	}
	return targetMap, freshMap, nil
}

func mergeBones(merged *ModelData, target *ModelData, fresh *PartialModel, plan *MergePlan, sourceOf func(EntityOp) *sourceMaps) error {
	for _, op := range plan.Bones.Ops {
		if op.Action == ActionRemove {
			continue
		}
		var bone *model.Bone
		var err error
		if op.FreshIndex >= 0 {
			bone = fresh.Bones[op.FreshIndex]
		} else {
			src, getErr := target.Bones.Get(op.TargetIndex)
			if getErr != nil {
				return getErr
			}
			if bone, err = cloneEntity(src); err != nil {
				return fmt.Errorf("ボーン %s: %w", op.Key, err)
			}
		}
		if err := remapBoneReferences(bone, sourceOf(op)); err != nil {
			return err
		}
		merged.Bones.AppendRaw(bone)
	}
	return nil
}

// mergeMaterials は材質テーブルを組み上げ、マージ後の並びに対応する操作列を返す。
// 面所有数は形状の組み上げ時に確定するため、ここでは触らない。
func mergeMaterials(merged *ModelData, target *ModelData, fresh *PartialModel, plan *MergePlan, sourceOf func(EntityOp) *sourceMaps) ([]EntityOp, error) {
	var ops []EntityOp
	for _, op := range plan.Materials.Ops {
		if op.Action == ActionRemove {
			continue
		}
		var material *model.Material
		var err error
		if op.FreshIndex >= 0 {
			material = fresh.Materials[op.FreshIndex]
		} else {
			src, getErr := target.Materials.Get(op.TargetIndex)
			if getErr != nil {
				return nil, getErr
			}
			if material, err = cloneEntity(src); err != nil {
				return nil, fmt.Errorf("材質 %s: %w", op.Key, err)
			}
		}
		if err := remapMaterialReferences(material, sourceOf(op)); err != nil {
			return nil, err
		}
		merged.Materials.AppendRaw(material)
		ops = append(ops, op)
	}
	return ops, nil
}

// faceBlocks は材質の面所有数に従って面テーブルを材質ごとのブロックへ切り分ける。
func faceBlocks(materials []*model.Material, faces []*model.Face) ([][]*model.Face, error) {
	blocks := make([][]*model.Face, 0, len(materials))
	cursor := 0
	for i, material := range materials {
		count := material.VerticesCount / 3
		if cursor+count > len(faces) {
			return nil, fmt.Errorf("材質[%d] %s の面所有範囲が面数を超えています: %d+%d > %d",
				i, material.Name, cursor, count, len(faces))
		}
		blocks = append(blocks, faces[cursor:cursor+count])
		cursor += count
	}
	if cursor != len(faces) {
		return nil, fmt.Errorf("材質が所有しない面が残っています: %d / %d", cursor, len(faces))
	}
	return blocks, nil
}

// mergeGeometry は材質ごとの面ブロックを組み上げ、面所有数を確定する。
// meshes有効時は新規エクスポートに同キー材質があればそのブロックを採用し、なければターゲットのブロックを維持する。
func mergeGeometry(merged *ModelData, target *ModelData, fresh *PartialModel, plan *MergePlan, materialOps []EntityOp, vertexTargetMap, vertexFreshMap []int) error {
	targetBlocks, err := faceBlocks(target.Materials.Values(), target.Faces.Values())
	if err != nil {
		return fmt.Errorf("ターゲット: %w", err)
	}

	meshesEnabled := plan.Features.Enabled(FeatureMeshes)
	var freshBlocks [][]*model.Face
	freshMaterialByKey := map[IdentityKey]int{}
	if meshesEnabled {
		if freshBlocks, err = faceBlocks(fresh.Materials, fresh.Faces); err != nil {
			return fmt.Errorf("新規エクスポート: %w", err)
		}
		for j, key := range fresh.MaterialKeys {
			freshMaterialByKey[key] = j
		}
	}

	for i, op := range materialOps {
		material, err := merged.Materials.Get(i)
		if err != nil {
			return err
		}

		var block []*model.Face
		var vertexMap []int
		if freshIndex, ok := freshMaterialByKey[op.Key]; meshesEnabled && ok {
			block = freshBlocks[freshIndex]
			vertexMap = vertexFreshMap
		} else if op.TargetIndex >= 0 {
			block = targetBlocks[op.TargetIndex]
			vertexMap = vertexTargetMap
		} else {
			// 形状を持たない追加材質。meshesを併せて有効にしない限り面は取り込めない。
			logPatchWarn("材質 %s は形状が取り込まれないため面を持ちません", material.Name)
		}

		for _, face := range block {
			mergedFace := &model.Face{}
			for k, vertexIndex := range face.VertexIndexes {
				mapped, ok := remapReference(vertexIndex, vertexMap)
				if !ok || mapped < 0 {
					return danglingErr("材質 %s の面頂点参照が解決できません: 旧位置 %d", material.Name, vertexIndex)
				}
				mergedFace.VertexIndexes[k] = mapped
			}
			merged.Faces.AppendRaw(mergedFace)
		}
		material.VerticesCount = len(block) * 3
	}
	return nil
}

func mergeMorphs(merged *ModelData, target *ModelData, fresh *PartialModel, plan *MergePlan, sourceOf func(EntityOp) *sourceMaps) error {
	for _, op := range plan.Morphs.Ops {
		if op.Action == ActionRemove {
			continue
		}
		var morph *model.Morph
		var err error
		if op.FreshIndex >= 0 {
			morph = fresh.Morphs[op.FreshIndex]
		} else {
			src, getErr := target.Morphs.Get(op.TargetIndex)
			if getErr != nil {
				return getErr
			}
			if morph, err = cloneMorph(src); err != nil {
				return err
			}
		}
		if err := remapMorphOffsets(morph, sourceOf(op)); err != nil {
			return err
		}
		merged.Morphs.AppendRaw(morph)
	}
	return nil
}

func mergeDisplaySlots(merged *ModelData, target *ModelData, fresh *PartialModel, plan *MergePlan, sourceOf func(EntityOp) *sourceMaps) error {
	for _, op := range plan.DisplaySlots.Ops {
		if op.Action == ActionRemove {
			continue
		}
		var slot *model.DisplaySlot
		var err error
		if op.FreshIndex >= 0 {
			slot = fresh.DisplaySlots[op.FreshIndex]
		} else {
			src, getErr := target.DisplaySlots.Get(op.TargetIndex)
			if getErr != nil {
				return getErr
			}
			if slot, err = cloneEntity(src); err != nil {
				return fmt.Errorf("表示枠 %s: %w", op.Key, err)
			}
		}
		if err := remapDisplaySlotReferences(slot, sourceOf(op)); err != nil {
			return err
		}
		merged.DisplaySlots.AppendRaw(slot)
	}
	return nil
}

func mergeRigidBodies(merged *ModelData, target *ModelData, fresh *PartialModel, plan *MergePlan, sourceOf func(EntityOp) *sourceMaps) error {
	for _, op := range plan.RigidBodies.Ops {
		if op.Action == ActionRemove {
			continue
		}
		var rigidBody *model.RigidBody
		var err error
		if op.FreshIndex >= 0 {
			rigidBody = fresh.RigidBodies[op.FreshIndex]
		} else {
			src, getErr := target.RigidBodies.Get(op.TargetIndex)
			if getErr != nil {
				return getErr
			}
			if rigidBody, err = cloneEntity(src); err != nil {
				return fmt.Errorf("剛体 %s: %w", op.Key, err)
			}
		}
		if err := remapRigidBodyReferences(rigidBody, sourceOf(op)); err != nil {
			return err
		}
		merged.RigidBodies.AppendRaw(rigidBody)
	}
	return nil
}

func mergeJoints(merged *ModelData, target *ModelData, fresh *PartialModel, plan *MergePlan, sourceOf func(EntityOp) *sourceMaps) error {
	for _, op := range plan.Joints.Ops {
		if op.Action == ActionRemove {
			continue
		}
		var joint *model.Joint
		var err error
		if op.FreshIndex >= 0 {
			joint = fresh.Joints[op.FreshIndex]
		} else {
			src, getErr := target.Joints.Get(op.TargetIndex)
			if getErr != nil {
				return getErr
			}
			if joint, err = cloneEntity(src); err != nil {
				return fmt.Errorf("ジョイント %s: %w", op.Key, err)
			}
		}
		if err := remapJointReferences(joint, sourceOf(op)); err != nil {
			return err
		}
		merged.Joints.AppendRaw(joint)
	}
	return nil
}

// collectUsedVertexFlags は面とモーフオフセットから参照されている頂点を位置別に返す。
func collectUsedVertexFlags(merged *ModelData) []bool {
	used := make([]bool, merged.Vertices.Len())
	for _, face := range merged.Faces.Values() {
		for _, vertexIndex := range face.VertexIndexes {
			if vertexIndex >= 0 && vertexIndex < len(used) {
				used[vertexIndex] = true
			}
		}
	}
	for _, morph := range merged.Morphs.Values() {
		for _, offset := range morph.Offsets {
			switch o := offset.(type) {
			case *model.VertexMorphOffset:
				if o.VertexIndex >= 0 && o.VertexIndex < len(used) {
					used[o.VertexIndex] = true
				}
			case *model.UvMorphOffset:
				if o.VertexIndex >= 0 && o.VertexIndex < len(used) {
					used[o.VertexIndex] = true
				}
			}
		}
	}
	return used
}

// purgeUnusedVertices は面からもモーフからも参照されない頂点を間引き、参照を詰め直す。
func purgeUnusedVertices(merged *ModelData) {
	used := collectUsedVertexFlags(merged)

	removal := map[int]bool{}
	for i, u := range used {
		if !u {
			removal[i] = true
		}
	}
	if len(removal) == 0 {
		return
	}
	result := merged.Vertices.RemoveAll(removal)
	logPatchVerbose("未使用頂点を間引きました: %d件", len(removal))

	for _, face := range merged.Faces.Values() {
		for k, vertexIndex := range face.VertexIndexes {
			face.VertexIndexes[k] = result.OldToNew[vertexIndex]
		}
	}
	for _, morph := range merged.Morphs.Values() {
		for _, offset := range morph.Offsets {
			switch o := offset.(type) {
			case *model.VertexMorphOffset:
				o.VertexIndex = result.OldToNew[o.VertexIndex]
			case *model.UvMorphOffset:
				o.VertexIndex = result.OldToNew[o.VertexIndex]
			}
		}
	}
}

// purgeUnusedTextures はどの材質からも参照されないテクスチャを間引き、参照を詰め直す。
func purgeUnusedTextures(merged *ModelData) {
	used := make([]bool, merged.Textures.Len())
	mark := func(index int) {
		if index >= 0 && index < len(used) {
			used[index] = true
		}
	}
	for _, material := range merged.Materials.Values() {
		mark(material.TextureIndex)
		mark(material.SphereTextureIndex)
		if !material.IsSharedToon {
			mark(material.ToonTextureIndex)
		}
	}

	removal := map[int]bool{}
	for i, u := range used {
		if !u {
			removal[i] = true
		}
	}
	if len(removal) == 0 {
		return
	}
	result := merged.Textures.RemoveAll(removal)
	logPatchVerbose("未使用テクスチャを間引きました: %d件", len(removal))

	remap := func(index int) int {
		if index < 0 {
			return index
		}
		return result.OldToNew[index]
	}
	for _, material := range merged.Materials.Values() {
		material.TextureIndex = remap(material.TextureIndex)
		material.SphereTextureIndex = remap(material.SphereTextureIndex)
		if !material.IsSharedToon {
			material.ToonTextureIndex = remap(material.ToonTextureIndex)
		}
	}
}

// warnBoneOrdering は親ボーンが自分より後ろに並ぶ箇所を警告する。構造としては有効なため中断はしない。
func warnBoneOrdering(merged *ModelData) {
	for i, bone := range merged.Bones.Values() {
		if bone.ParentIndex > i {
			parentName := ""
			if parent, err := merged.Bones.Get(bone.ParentIndex); err == nil {
				parentName = parent.Name
			}
			logPatchWarn("ボーン %s (位置 %d) の親 %s (位置 %d) が後方に並んでいます", bone.Name, i, parentName, bone.ParentIndex)
		}
	}
}
