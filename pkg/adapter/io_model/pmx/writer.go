// 指示: miu200521358
package pmx

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/miu200521358/mu_pmx_merge/pkg/domain/mmath"
	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
)

// modelWriter はPMXバイナリの書き込み状態を表す。
type modelWriter struct {
	w        *bufio.Writer
	encoding model.TextEncoding
	sizes    indexSizes
}

// signedIndexSize は符号付きインデックスの必要バイト数を返す。
func signedIndexSize(count int) int {
	switch {
	case count < 128:
		return 1
	case count < 32768:
		return 2
	}
	return 4
}

// unsignedIndexSize は頂点インデックスの必要バイト数を返す。
func unsignedIndexSize(count int) int {
	switch {
	case count < 256:
		return 1
	case count < 65536:
		return 2
	}
	return 4
}

// writeModel はモデルをPMXバイナリとして書き出す。インデックスバイト数は現テーブル長から再計算する。
func writeModel(w io.Writer, modelData *model.PmxModel) error {
	mw := &modelWriter{
		w:        bufio.NewWriter(w),
		encoding: modelData.Encoding,
		sizes: indexSizes{
			vertex:    unsignedIndexSize(modelData.Vertices.Len()),
			texture:   signedIndexSize(modelData.Textures.Len()),
			material:  signedIndexSize(modelData.Materials.Len()),
			bone:      signedIndexSize(modelData.Bones.Len()),
			morph:     signedIndexSize(modelData.Morphs.Len()),
			rigidBody: signedIndexSize(modelData.RigidBodies.Len()),
		},
	}

	if err := mw.writeHeader(modelData); err != nil {
		return fmt.Errorf("ヘッダの書き込みに失敗しました: %w", err)
	}
	if err := mw.writeModelInfo(modelData); err != nil {
		return fmt.Errorf("モデル情報の書き込みに失敗しました: %w", err)
	}
	if err := mw.writeVertices(modelData); err != nil {
		return fmt.Errorf("頂点テーブルの書き込みに失敗しました: %w", err)
	}
	if err := mw.writeFaces(modelData); err != nil {
		return fmt.Errorf("面テーブルの書き込みに失敗しました: %w", err)
	}
	if err := mw.writeTextures(modelData); err != nil {
		return fmt.Errorf("テクスチャテーブルの書き込みに失敗しました: %w", err)
	}
	if err := mw.writeMaterials(modelData); err != nil {
		return fmt.Errorf("材質テーブルの書き込みに失敗しました: %w", err)
	}
	if err := mw.writeBones(modelData); err != nil {
		return fmt.Errorf("ボーンテーブルの書き込みに失敗しました: %w", err)
	}
	if err := mw.writeMorphs(modelData); err != nil {
		return fmt.Errorf("モーフテーブルの書き込みに失敗しました: %w", err)
	}
	if err := mw.writeDisplaySlots(modelData); err != nil {
		return fmt.Errorf("表示枠テーブルの書き込みに失敗しました: %w", err)
	}
	if err := mw.writeRigidBodies(modelData); err != nil {
		return fmt.Errorf("剛体テーブルの書き込みに失敗しました: %w", err)
	}
	if err := mw.writeJoints(modelData); err != nil {
		return fmt.Errorf("ジョイントテーブルの書き込みに失敗しました: %w", err)
	}
	if modelData.Version >= 2.1 {
		// ソフトボディは保持しないため、常に空テーブルを書く。
		if err := mw.writeInt(0); err != nil {
			return fmt.Errorf("ソフトボディテーブルの書き込みに失敗しました: %w", err)
		}
	}
	return mw.w.Flush()
}

func (mw *modelWriter) writeHeader(modelData *model.PmxModel) error {
	if _, err := mw.w.WriteString(pmxSignature); err != nil {
		return err
	}
	if err := mw.writeFloat(modelData.Version); err != nil {
		return err
	}
	globals := []byte{
		byte(mw.encoding),
		byte(modelData.ExtendedUvCount),
		byte(mw.sizes.vertex),
		byte(mw.sizes.texture),
		byte(mw.sizes.material),
		byte(mw.sizes.bone),
		byte(mw.sizes.morph),
		byte(mw.sizes.rigidBody),
	}
	if err := mw.w.WriteByte(byte(len(globals))); err != nil {
		return err
	}
	_, err := mw.w.Write(globals)
	return err
}

func (mw *modelWriter) writeModelInfo(modelData *model.PmxModel) error {
	for _, text := range []string{modelData.Name, modelData.EnglishName, modelData.Comment, modelData.EnglishComment} {
		if err := mw.writeText(text); err != nil {
			return err
		}
	}
	return nil
}

func (mw *modelWriter) writeVertices(modelData *model.PmxModel) error {
	if err := mw.writeInt(modelData.Vertices.Len()); err != nil {
		return err
	}
	for i, vertex := range modelData.Vertices.Values() {
		if err := mw.writeVertex(modelData, vertex); err != nil {
			return fmt.Errorf("頂点[%d]: %w", i, err)
		}
	}
	return nil
}

func (mw *modelWriter) writeVertex(modelData *model.PmxModel, vertex *model.Vertex) error {
	if err := mw.writeVec3(vertex.Position); err != nil {
		return err
	}
	if err := mw.writeVec3(vertex.Normal); err != nil {
		return err
	}
	if err := mw.writeVec2(vertex.Uv); err != nil {
		return err
	}
	for i := 0; i < modelData.ExtendedUvCount; i++ {
		extended := mmath.Vec4{}
		if i < len(vertex.ExtendedUvs) {
			extended = vertex.ExtendedUvs[i]
		}
		if err := mw.writeVec4(extended); err != nil {
			return err
		}
	}
	if err := mw.writeDeform(&vertex.Deform); err != nil {
		return err
	}
	return mw.writeFloat(vertex.EdgeFactor)
}

func (mw *modelWriter) writeDeform(deform *model.Deform) error {
	boneCount := deform.DeformType.BoneCount()
	if boneCount == 0 {
		return fmt.Errorf("未対応のウェイト変形方式です: %d", deform.DeformType)
	}
	if len(deform.Indexes) != boneCount {
		return fmt.Errorf("ウェイト参照ボーン数が不正です: %d (方式%d)", len(deform.Indexes), deform.DeformType)
	}
	if err := mw.w.WriteByte(byte(deform.DeformType)); err != nil {
		return err
	}
	for _, index := range deform.Indexes {
		if err := mw.writeIndex(index, mw.sizes.bone); err != nil {
			return err
		}
	}
	switch deform.DeformType {
	case model.DEFORM_BDEF2, model.DEFORM_SDEF:
		weight := 0.0
		if len(deform.Weights) > 0 {
			weight = deform.Weights[0]
		}
		if err := mw.writeFloat(weight); err != nil {
			return err
		}
	case model.DEFORM_BDEF4, model.DEFORM_QDEF:
		for i := 0; i < 4; i++ {
			weight := 0.0
			if i < len(deform.Weights) {
				weight = deform.Weights[i]
			}
			if err := mw.writeFloat(weight); err != nil {
				return err
			}
		}
	}
	if deform.DeformType == model.DEFORM_SDEF {
		for _, v := range []mmath.Vec3{deform.SdefC, deform.SdefR0, deform.SdefR1} {
			if err := mw.writeVec3(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (mw *modelWriter) writeFaces(modelData *model.PmxModel) error {
	if err := mw.writeInt(modelData.Faces.Len() * 3); err != nil {
		return err
	}
	for i, face := range modelData.Faces.Values() {
		for _, vertexIndex := range face.VertexIndexes {
			if err := mw.writeVertexIndex(vertexIndex); err != nil {
				return fmt.Errorf("面[%d]: %w", i, err)
			}
		}
	}
	return nil
}

func (mw *modelWriter) writeTextures(modelData *model.PmxModel) error {
	if err := mw.writeInt(modelData.Textures.Len()); err != nil {
		return err
	}
	for i, texture := range modelData.Textures.Values() {
		if err := mw.writeText(texture.Path); err != nil {
			return fmt.Errorf("テクスチャ[%d]: %w", i, err)
		}
	}
	return nil
}

func (mw *modelWriter) writeMaterials(modelData *model.PmxModel) error {
	if err := mw.writeInt(modelData.Materials.Len()); err != nil {
		return err
	}
	for i, material := range modelData.Materials.Values() {
		if err := mw.writeMaterial(material); err != nil {
			return fmt.Errorf("材質[%d]: %w", i, err)
		}
	}
	return nil
}

func (mw *modelWriter) writeMaterial(material *model.Material) error {
	if err := mw.writeText(material.Name); err != nil {
		return err
	}
	if err := mw.writeText(material.EnglishName); err != nil {
		return err
	}
	if err := mw.writeVec4(material.Diffuse); err != nil {
		return err
	}
	if err := mw.writeVec3(material.Specular); err != nil {
		return err
	}
	if err := mw.writeFloat(material.SpecularFactor); err != nil {
		return err
	}
	if err := mw.writeVec3(material.Ambient); err != nil {
		return err
	}
	if err := mw.w.WriteByte(byte(material.DrawFlag)); err != nil {
		return err
	}
	if err := mw.writeVec4(material.EdgeColor); err != nil {
		return err
	}
	if err := mw.writeFloat(material.EdgeSize); err != nil {
		return err
	}
	if err := mw.writeIndex(material.TextureIndex, mw.sizes.texture); err != nil {
		return err
	}
	if err := mw.writeIndex(material.SphereTextureIndex, mw.sizes.texture); err != nil {
		return err
	}
	if err := mw.w.WriteByte(byte(material.SphereMode)); err != nil {
		return err
	}
	if material.IsSharedToon {
		if err := mw.w.WriteByte(1); err != nil {
			return err
		}
		if err := mw.w.WriteByte(byte(material.ToonTextureIndex)); err != nil {
			return err
		}
	} else {
		if err := mw.w.WriteByte(0); err != nil {
			return err
		}
		if err := mw.writeIndex(material.ToonTextureIndex, mw.sizes.texture); err != nil {
			return err
		}
	}
	if err := mw.writeText(material.Memo); err != nil {
		return err
	}
	return mw.writeInt(material.VerticesCount)
}

func (mw *modelWriter) writeBones(modelData *model.PmxModel) error {
	if err := mw.writeInt(modelData.Bones.Len()); err != nil {
		return err
	}
	for i, bone := range modelData.Bones.Values() {
		if err := mw.writeBone(bone); err != nil {
			return fmt.Errorf("ボーン[%d]: %w", i, err)
		}
	}
	return nil
}

func (mw *modelWriter) writeBone(bone *model.Bone) error {
	if err := mw.writeText(bone.Name); err != nil {
		return err
	}
	if err := mw.writeText(bone.EnglishName); err != nil {
		return err
	}
	if err := mw.writeVec3(bone.Position); err != nil {
		return err
	}
	if err := mw.writeIndex(bone.ParentIndex, mw.sizes.bone); err != nil {
		return err
	}
	if err := mw.writeInt(bone.Layer); err != nil {
		return err
	}
	if err := binary.Write(mw.w, binary.LittleEndian, uint16(bone.BoneFlag)); err != nil {
		return err
	}
	if bone.HasFlag(model.BONE_FLAG_TAIL_IS_BONE) {
		if err := mw.writeIndex(bone.TailIndex, mw.sizes.bone); err != nil {
			return err
		}
	} else {
		if err := mw.writeVec3(bone.TailPosition); err != nil {
			return err
		}
	}
	if bone.HasFlag(model.BONE_FLAG_IS_EXTERNAL_ROTATION) || bone.HasFlag(model.BONE_FLAG_IS_EXTERNAL_TRANSLATION) {
		if err := mw.writeIndex(bone.EffectIndex, mw.sizes.bone); err != nil {
			return err
		}
		if err := mw.writeFloat(bone.EffectFactor); err != nil {
			return err
		}
	}
	if bone.HasFlag(model.BONE_FLAG_HAS_FIXED_AXIS) {
		if err := mw.writeVec3(bone.FixedAxis); err != nil {
			return err
		}
	}
	if bone.HasFlag(model.BONE_FLAG_HAS_LOCAL_AXIS) {
		if err := mw.writeVec3(bone.LocalAxisX); err != nil {
			return err
		}
		if err := mw.writeVec3(bone.LocalAxisZ); err != nil {
			return err
		}
	}
	if bone.HasFlag(model.BONE_FLAG_IS_EXTERNAL_PARENT_DEFORM) {
		if err := mw.writeInt(bone.ExternalKey); err != nil {
			return err
		}
	}
	if bone.HasFlag(model.BONE_FLAG_IS_IK) {
		ik := bone.Ik
		if ik == nil {
			return fmt.Errorf("IKフラグが立っていますがIK設定がありません: %s", bone.Name)
		}
		if err := mw.writeIndex(ik.BoneIndex, mw.sizes.bone); err != nil {
			return err
		}
		if err := mw.writeInt(ik.LoopCount); err != nil {
			return err
		}
		if err := mw.writeFloat(ik.UnitRotation); err != nil {
			return err
		}
		if err := mw.writeInt(len(ik.Links)); err != nil {
			return err
		}
		for _, link := range ik.Links {
			if err := mw.writeIndex(link.BoneIndex, mw.sizes.bone); err != nil {
				return err
			}
			if link.AngleLimit {
				if err := mw.w.WriteByte(1); err != nil {
					return err
				}
				if err := mw.writeVec3(link.MinAngleLimit); err != nil {
					return err
				}
				if err := mw.writeVec3(link.MaxAngleLimit); err != nil {
					return err
				}
			} else {
				if err := mw.w.WriteByte(0); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (mw *modelWriter) writeMorphs(modelData *model.PmxModel) error {
	if err := mw.writeInt(modelData.Morphs.Len()); err != nil {
		return err
	}
	for i, morph := range modelData.Morphs.Values() {
		if err := mw.writeMorph(morph); err != nil {
			return fmt.Errorf("モーフ[%d]: %w", i, err)
		}
	}
	return nil
}

func (mw *modelWriter) writeMorph(morph *model.Morph) error {
	if err := mw.writeText(morph.Name); err != nil {
		return err
	}
	if err := mw.writeText(morph.EnglishName); err != nil {
		return err
	}
	if err := mw.w.WriteByte(byte(morph.Panel)); err != nil {
		return err
	}
	if err := mw.w.WriteByte(byte(morph.MorphType)); err != nil {
		return err
	}
	if err := mw.writeInt(len(morph.Offsets)); err != nil {
		return err
	}
	for i, offset := range morph.Offsets {
		if err := mw.writeMorphOffset(morph, offset); err != nil {
			return fmt.Errorf("オフセット[%d]: %w", i, err)
		}
	}
	return nil
}

func (mw *modelWriter) writeMorphOffset(morph *model.Morph, offset model.IMorphOffset) error {
	switch o := offset.(type) {
	case *model.GroupMorphOffset:
		if err := mw.writeIndex(o.MorphIndex, mw.sizes.morph); err != nil {
			return err
		}
		return mw.writeFloat(o.Factor)
	case *model.FlipMorphOffset:
		if err := mw.writeIndex(o.MorphIndex, mw.sizes.morph); err != nil {
			return err
		}
		return mw.writeFloat(o.Factor)
	case *model.VertexMorphOffset:
		if err := mw.writeVertexIndex(o.VertexIndex); err != nil {
			return err
		}
		return mw.writeVec3(o.Offset)
	case *model.BoneMorphOffset:
		if err := mw.writeIndex(o.BoneIndex, mw.sizes.bone); err != nil {
			return err
		}
		if err := mw.writeVec3(o.Translation); err != nil {
			return err
		}
		return mw.writeVec4(o.Rotation)
	case *model.UvMorphOffset:
		if err := mw.writeVertexIndex(o.VertexIndex); err != nil {
			return err
		}
		return mw.writeVec4(o.Uv)
	case *model.MaterialMorphOffset:
		return mw.writeMaterialMorphOffset(o)
	case *model.ImpulseMorphOffset:
		if err := mw.writeIndex(o.RigidBodyIndex, mw.sizes.rigidBody); err != nil {
			return err
		}
		local := byte(0)
		if o.IsLocal {
			local = 1
		}
		if err := mw.w.WriteByte(local); err != nil {
			return err
		}
		if err := mw.writeVec3(o.Velocity); err != nil {
			return err
		}
		return mw.writeVec3(o.Torque)
	}
	return fmt.Errorf("モーフ %s: 未対応のオフセット型です: %T", morph.Name, offset)
}

func (mw *modelWriter) writeMaterialMorphOffset(offset *model.MaterialMorphOffset) error {
	if err := mw.writeIndex(offset.MaterialIndex, mw.sizes.material); err != nil {
		return err
	}
	if err := mw.w.WriteByte(offset.CalcMode); err != nil {
		return err
	}
	if err := mw.writeVec4(offset.Diffuse); err != nil {
		return err
	}
	if err := mw.writeVec3(offset.Specular); err != nil {
		return err
	}
	if err := mw.writeFloat(offset.SpecularFactor); err != nil {
		return err
	}
	if err := mw.writeVec3(offset.Ambient); err != nil {
		return err
	}
	if err := mw.writeVec4(offset.EdgeColor); err != nil {
		return err
	}
	if err := mw.writeFloat(offset.EdgeSize); err != nil {
		return err
	}
	if err := mw.writeVec4(offset.TextureFactor); err != nil {
		return err
	}
	if err := mw.writeVec4(offset.SphereTextureFactor); err != nil {
		return err
	}
	return mw.writeVec4(offset.ToonTextureFactor)
}

func (mw *modelWriter) writeDisplaySlots(modelData *model.PmxModel) error {
	if err := mw.writeInt(modelData.DisplaySlots.Len()); err != nil {
		return err
	}
	for i, slot := range modelData.DisplaySlots.Values() {
		if err := mw.writeText(slot.Name); err != nil {
			return fmt.Errorf("表示枠[%d]: %w", i, err)
		}
		if err := mw.writeText(slot.EnglishName); err != nil {
			return fmt.Errorf("表示枠[%d]: %w", i, err)
		}
		if err := mw.w.WriteByte(slot.SpecialFlag); err != nil {
			return fmt.Errorf("表示枠[%d]: %w", i, err)
		}
		if err := mw.writeInt(len(slot.References)); err != nil {
			return fmt.Errorf("表示枠[%d]: %w", i, err)
		}
		for _, reference := range slot.References {
			if err := mw.w.WriteByte(byte(reference.DisplayType)); err != nil {
				return fmt.Errorf("表示枠[%d]: %w", i, err)
			}
			size := mw.sizes.bone
			if reference.DisplayType == model.DISPLAY_TYPE_MORPH {
				size = mw.sizes.morph
			}
			if err := mw.writeIndex(reference.Index, size); err != nil {
				return fmt.Errorf("表示枠[%d]: %w", i, err)
			}
		}
	}
	return nil
}

func (mw *modelWriter) writeRigidBodies(modelData *model.PmxModel) error {
	if err := mw.writeInt(modelData.RigidBodies.Len()); err != nil {
		return err
	}
	for i, rigidBody := range modelData.RigidBodies.Values() {
		if err := mw.writeRigidBody(rigidBody); err != nil {
			return fmt.Errorf("剛体[%d]: %w", i, err)
		}
	}
	return nil
}

func (mw *modelWriter) writeRigidBody(rigidBody *model.RigidBody) error {
	if err := mw.writeText(rigidBody.Name); err != nil {
		return err
	}
	if err := mw.writeText(rigidBody.EnglishName); err != nil {
		return err
	}
	if err := mw.writeIndex(rigidBody.BoneIndex, mw.sizes.bone); err != nil {
		return err
	}
	if err := mw.w.WriteByte(rigidBody.CollisionGroup); err != nil {
		return err
	}
	if err := binary.Write(mw.w, binary.LittleEndian, rigidBody.CollisionGroupMask); err != nil {
		return err
	}
	if err := mw.w.WriteByte(byte(rigidBody.Shape)); err != nil {
		return err
	}
	for _, v := range []mmath.Vec3{rigidBody.Size, rigidBody.Position, rigidBody.Rotation} {
		if err := mw.writeVec3(v); err != nil {
			return err
		}
	}
	for _, f := range []float64{rigidBody.Mass, rigidBody.LinearDamping, rigidBody.AngularDamping, rigidBody.Restitution, rigidBody.Friction} {
		if err := mw.writeFloat(f); err != nil {
			return err
		}
	}
	return mw.w.WriteByte(byte(rigidBody.Mode))
}

func (mw *modelWriter) writeJoints(modelData *model.PmxModel) error {
	if err := mw.writeInt(modelData.Joints.Len()); err != nil {
		return err
	}
	for i, joint := range modelData.Joints.Values() {
		if err := mw.writeJoint(joint); err != nil {
			return fmt.Errorf("ジョイント[%d]: %w", i, err)
		}
	}
	return nil
}

func (mw *modelWriter) writeJoint(joint *model.Joint) error {
	if err := mw.writeText(joint.Name); err != nil {
		return err
	}
	if err := mw.writeText(joint.EnglishName); err != nil {
		return err
	}
	if err := mw.w.WriteByte(joint.JointType); err != nil {
		return err
	}
	if err := mw.writeIndex(joint.RigidBodyIndexA, mw.sizes.rigidBody); err != nil {
		return err
	}
	if err := mw.writeIndex(joint.RigidBodyIndexB, mw.sizes.rigidBody); err != nil {
		return err
	}
	for _, v := range []mmath.Vec3{
		joint.Position, joint.Rotation,
		joint.LinearLimitMin, joint.LinearLimitMax,
		joint.AngularLimitMin, joint.AngularLimitMax,
		joint.LinearSpring, joint.AngularSpring,
	} {
		if err := mw.writeVec3(v); err != nil {
			return err
		}
	}
	return nil
}

func (mw *modelWriter) writeInt(v int) error {
	return binary.Write(mw.w, binary.LittleEndian, int32(v))
}

func (mw *modelWriter) writeFloat(v float64) error {
	return binary.Write(mw.w, binary.LittleEndian, float32(v))
}

func (mw *modelWriter) writeVec2(v mmath.Vec2) error {
	return binary.Write(mw.w, binary.LittleEndian, [2]float32{float32(v.X), float32(v.Y)})
}

func (mw *modelWriter) writeVec3(v mmath.Vec3) error {
	return binary.Write(mw.w, binary.LittleEndian, [3]float32{float32(v.X), float32(v.Y), float32(v.Z)})
}

func (mw *modelWriter) writeVec4(v mmath.Vec4) error {
	return binary.Write(mw.w, binary.LittleEndian, [4]float32{float32(v.X), float32(v.Y), float32(v.Z), float32(v.W)})
}

// writeIndex は符号付きインデックスを書き出す。
func (mw *modelWriter) writeIndex(v int, size int) error {
	switch size {
	case 1:
		return binary.Write(mw.w, binary.LittleEndian, int8(v))
	case 2:
		return binary.Write(mw.w, binary.LittleEndian, int16(v))
	case 4:
		return mw.writeInt(v)
	}
	return fmt.Errorf("インデックスバイト数が不正です: %d", size)
}

// writeVertexIndex は頂点インデックスを書き出す。1・2バイト時は符号なし。
func (mw *modelWriter) writeVertexIndex(v int) error {
	switch mw.sizes.vertex {
	case 1:
		return mw.w.WriteByte(byte(v))
	case 2:
		return binary.Write(mw.w, binary.LittleEndian, uint16(v))
	case 4:
		return mw.writeInt(v)
	}
	return fmt.Errorf("頂点インデックスバイト数が不正です: %d", mw.sizes.vertex)
}

// writeText は長さ前置の文字列を書き出す。
func (mw *modelWriter) writeText(text string) error {
	encoded, err := encodeText(text, mw.encoding)
	if err != nil {
		return err
	}
	if err := mw.writeInt(len(encoded)); err != nil {
		return err
	}
	_, err = mw.w.Write(encoded)
	return err
}
