// 指示: miu200521358
package pmx

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/miu200521358/mu_pmx_merge/pkg/adapter/io_common"
	"github.com/miu200521358/mu_pmx_merge/pkg/domain/mmath"
	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
)

const (
	pmxSignature      = "PMX "
	headerGlobalCount = 8
)

// indexSizes はヘッダで宣言される各テーブルのインデックスバイト数を表す。
type indexSizes struct {
	vertex    int
	texture   int
	material  int
	bone      int
	morph     int
	rigidBody int
}

// modelReader はPMXバイナリの読み取り状態を表す。
type modelReader struct {
	r               *bufio.Reader
	encoding        model.TextEncoding
	extendedUvCount int
	sizes           indexSizes
}

// readModel はPMXバイナリを読み取ってモデルを構築する。
func readModel(r io.Reader) (*model.PmxModel, error) {
	mr := &modelReader{r: bufio.NewReader(r)}

	modelData := model.NewPmxModel()
	if err := mr.readHeader(modelData); err != nil {
		return nil, err
	}
	if err := mr.readModelInfo(modelData); err != nil {
		return nil, io_common.NewIoParseFailed("モデル情報の解析に失敗しました", err)
	}
	if err := mr.readVertices(modelData); err != nil {
		return nil, io_common.NewIoParseFailed("頂点テーブルの解析に失敗しました", err)
	}
	if err := mr.readFaces(modelData); err != nil {
		return nil, io_common.NewIoParseFailed("面テーブルの解析に失敗しました", err)
	}
	if err := mr.readTextures(modelData); err != nil {
		return nil, io_common.NewIoParseFailed("テクスチャテーブルの解析に失敗しました", err)
	}
	if err := mr.readMaterials(modelData); err != nil {
		return nil, io_common.NewIoParseFailed("材質テーブルの解析に失敗しました", err)
	}
	if err := mr.readBones(modelData); err != nil {
		return nil, io_common.NewIoParseFailed("ボーンテーブルの解析に失敗しました", err)
	}
	if err := mr.readMorphs(modelData); err != nil {
		return nil, io_common.NewIoParseFailed("モーフテーブルの解析に失敗しました", err)
	}
	if err := mr.readDisplaySlots(modelData); err != nil {
		return nil, io_common.NewIoParseFailed("表示枠テーブルの解析に失敗しました", err)
	}
	if err := mr.readRigidBodies(modelData); err != nil {
		return nil, io_common.NewIoParseFailed("剛体テーブルの解析に失敗しました", err)
	}
	if err := mr.readJoints(modelData); err != nil {
		return nil, io_common.NewIoParseFailed("ジョイントテーブルの解析に失敗しました", err)
	}
	if err := mr.checkSoftBodies(modelData); err != nil {
		return nil, err
	}
	return modelData, nil
}

// readHeader はシグネチャとヘッダ情報を読み取る。
func (mr *modelReader) readHeader(modelData *model.PmxModel) error {
	sign := make([]byte, len(pmxSignature))
	if _, err := io.ReadFull(mr.r, sign); err != nil {
		return io_common.NewIoParseFailed("PMXシグネチャの読み取りに失敗しました", err)
	}
	if string(sign) != pmxSignature {
		return io_common.NewIoParseFailed(fmt.Sprintf("PMXシグネチャが不正です: %q", sign), nil)
	}

	rawVersion, err := mr.readFloat()
	if err != nil {
		return io_common.NewIoParseFailed("PMXバージョンの読み取りに失敗しました", err)
	}
	// float32由来の誤差を吸収するため、小数第1位へ丸めて判定する。
	version := math.Round(rawVersion*10) / 10
	if version != 2.0 && version != 2.1 {
		return io_common.NewIoFormatNotSupported(fmt.Sprintf("未対応のPMXバージョンです: %.1f", version), nil)
	}
	modelData.Version = version

	globalCount, err := mr.readByte()
	if err != nil {
		return io_common.NewIoParseFailed("ヘッダ情報数の読み取りに失敗しました", err)
	}
	if int(globalCount) < headerGlobalCount {
		return io_common.NewIoParseFailed(fmt.Sprintf("ヘッダ情報数が不足しています: %d", globalCount), nil)
	}
	globals := make([]byte, globalCount)
	if _, err := io.ReadFull(mr.r, globals); err != nil {
		return io_common.NewIoParseFailed("ヘッダ情報の読み取りに失敗しました", err)
	}

	switch model.TextEncoding(globals[0]) {
	case model.TEXT_ENCODING_UTF16LE, model.TEXT_ENCODING_UTF8:
		mr.encoding = model.TextEncoding(globals[0])
	default:
		return io_common.NewIoParseFailed(fmt.Sprintf("文字符号化方式が不正です: %d", globals[0]), nil)
	}
	mr.extendedUvCount = int(globals[1])
	if mr.extendedUvCount < 0 || mr.extendedUvCount > 4 {
		return io_common.NewIoParseFailed(fmt.Sprintf("追加UV数が不正です: %d", mr.extendedUvCount), nil)
	}
	mr.sizes = indexSizes{
		vertex:    int(globals[2]),
		texture:   int(globals[3]),
		material:  int(globals[4]),
		bone:      int(globals[5]),
		morph:     int(globals[6]),
		rigidBody: int(globals[7]),
	}
	for _, size := range []int{mr.sizes.vertex, mr.sizes.texture, mr.sizes.material, mr.sizes.bone, mr.sizes.morph, mr.sizes.rigidBody} {
		if size != 1 && size != 2 && size != 4 {
			return io_common.NewIoParseFailed(fmt.Sprintf("インデックスバイト数が不正です: %d", size), nil)
		}
	}

	modelData.Encoding = mr.encoding
	modelData.ExtendedUvCount = mr.extendedUvCount
	return nil
}

// readModelInfo はモデル名・コメントを読み取る。
func (mr *modelReader) readModelInfo(modelData *model.PmxModel) error {
	var err error
	if modelData.Name, err = mr.readText(); err != nil {
		return err
	}
	if modelData.EnglishName, err = mr.readText(); err != nil {
		return err
	}
	if modelData.Comment, err = mr.readText(); err != nil {
		return err
	}
	if modelData.EnglishComment, err = mr.readText(); err != nil {
		return err
	}
	return nil
}

func (mr *modelReader) readVertices(modelData *model.PmxModel) error {
	count, err := mr.readCount()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		vertex, err := mr.readVertex()
		if err != nil {
			return fmt.Errorf("頂点[%d]: %w", i, err)
		}
		modelData.Vertices.AppendRaw(vertex)
	}
	return nil
}

func (mr *modelReader) readVertex() (*model.Vertex, error) {
	vertex := &model.Vertex{}
	var err error
	if vertex.Position, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if vertex.Normal, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if vertex.Uv, err = mr.readVec2(); err != nil {
		return nil, err
	}
	for i := 0; i < mr.extendedUvCount; i++ {
		extended, err := mr.readVec4()
		if err != nil {
			return nil, err
		}
		vertex.ExtendedUvs = append(vertex.ExtendedUvs, extended)
	}
	if err = mr.readDeform(&vertex.Deform); err != nil {
		return nil, err
	}
	if vertex.EdgeFactor, err = mr.readFloat(); err != nil {
		return nil, err
	}
	return vertex, nil
}

func (mr *modelReader) readDeform(deform *model.Deform) error {
	deformType, err := mr.readByte()
	if err != nil {
		return err
	}
	deform.DeformType = model.DeformType(deformType)

	boneCount := deform.DeformType.BoneCount()
	if boneCount == 0 {
		return fmt.Errorf("未対応のウェイト変形方式です: %d", deformType)
	}
	deform.Indexes = make([]int, boneCount)
	for i := range deform.Indexes {
		if deform.Indexes[i], err = mr.readIndex(mr.sizes.bone); err != nil {
			return err
		}
	}
	switch deform.DeformType {
	case model.DEFORM_BDEF2, model.DEFORM_SDEF:
		weight, err := mr.readFloat()
		if err != nil {
			return err
		}
		deform.Weights = []float64{weight}
	case model.DEFORM_BDEF4, model.DEFORM_QDEF:
		deform.Weights = make([]float64, 4)
		for i := range deform.Weights {
			if deform.Weights[i], err = mr.readFloat(); err != nil {
				return err
			}
		}
	}
	if deform.DeformType == model.DEFORM_SDEF {
		if deform.SdefC, err = mr.readVec3(); err != nil {
			return err
		}
		if deform.SdefR0, err = mr.readVec3(); err != nil {
			return err
		}
		if deform.SdefR1, err = mr.readVec3(); err != nil {
			return err
		}
	}
	return nil
}

func (mr *modelReader) readFaces(modelData *model.PmxModel) error {
	indexCount, err := mr.readCount()
	if err != nil {
		return err
	}
	if indexCount%3 != 0 {
		return fmt.Errorf("面頂点数が3の倍数ではありません: %d", indexCount)
	}
	for i := 0; i < indexCount/3; i++ {
		face := &model.Face{}
		for j := 0; j < 3; j++ {
			if face.VertexIndexes[j], err = mr.readVertexIndex(); err != nil {
				return fmt.Errorf("面[%d]: %w", i, err)
			}
		}
		modelData.Faces.AppendRaw(face)
	}
	return nil
}

func (mr *modelReader) readTextures(modelData *model.PmxModel) error {
	count, err := mr.readCount()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		path, err := mr.readText()
		if err != nil {
			return fmt.Errorf("テクスチャ[%d]: %w", i, err)
		}
		modelData.Textures.AppendRaw(model.NewTexture(path))
	}
	return nil
}

func (mr *modelReader) readMaterials(modelData *model.PmxModel) error {
	count, err := mr.readCount()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		material, err := mr.readMaterial()
		if err != nil {
			return fmt.Errorf("材質[%d]: %w", i, err)
		}
		modelData.Materials.AppendRaw(material)
	}
	return nil
}

func (mr *modelReader) readMaterial() (*model.Material, error) {
	material := &model.Material{}
	var err error
	if material.Name, err = mr.readText(); err != nil {
		return nil, err
	}
	if material.EnglishName, err = mr.readText(); err != nil {
		return nil, err
	}
	if material.Diffuse, err = mr.readVec4(); err != nil {
		return nil, err
	}
	if material.Specular, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if material.SpecularFactor, err = mr.readFloat(); err != nil {
		return nil, err
	}
	if material.Ambient, err = mr.readVec3(); err != nil {
		return nil, err
	}
	drawFlag, err := mr.readByte()
	if err != nil {
		return nil, err
	}
	material.DrawFlag = model.DrawFlag(drawFlag)
	if material.EdgeColor, err = mr.readVec4(); err != nil {
		return nil, err
	}
	if material.EdgeSize, err = mr.readFloat(); err != nil {
		return nil, err
	}
	if material.TextureIndex, err = mr.readIndex(mr.sizes.texture); err != nil {
		return nil, err
	}
	if material.SphereTextureIndex, err = mr.readIndex(mr.sizes.texture); err != nil {
		return nil, err
	}
	sphereMode, err := mr.readByte()
	if err != nil {
		return nil, err
	}
	material.SphereMode = model.SphereMode(sphereMode)
	sharedToon, err := mr.readByte()
	if err != nil {
		return nil, err
	}
	material.IsSharedToon = sharedToon == 1
	if material.IsSharedToon {
		toon, err := mr.readByte()
		if err != nil {
			return nil, err
		}
		material.ToonTextureIndex = int(toon)
	} else {
		if material.ToonTextureIndex, err = mr.readIndex(mr.sizes.texture); err != nil {
			return nil, err
		}
	}
	if material.Memo, err = mr.readText(); err != nil {
		return nil, err
	}
	if material.VerticesCount, err = mr.readCount(); err != nil {
		return nil, err
	}
	if material.VerticesCount%3 != 0 {
		return nil, fmt.Errorf("材質の面頂点数が3の倍数ではありません: %d", material.VerticesCount)
	}
	return material, nil
}

func (mr *modelReader) readBones(modelData *model.PmxModel) error {
	count, err := mr.readCount()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		bone, err := mr.readBone()
		if err != nil {
			return fmt.Errorf("ボーン[%d]: %w", i, err)
		}
		modelData.Bones.AppendRaw(bone)
	}
	return nil
}

func (mr *modelReader) readBone() (*model.Bone, error) {
	bone := &model.Bone{TailIndex: -1, EffectIndex: -1}
	var err error
	if bone.Name, err = mr.readText(); err != nil {
		return nil, err
	}
	if bone.EnglishName, err = mr.readText(); err != nil {
		return nil, err
	}
	if bone.Position, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if bone.ParentIndex, err = mr.readIndex(mr.sizes.bone); err != nil {
		return nil, err
	}
	if bone.Layer, err = mr.readInt(); err != nil {
		return nil, err
	}
	var flags uint16
	if err = binary.Read(mr.r, binary.LittleEndian, &flags); err != nil {
		return nil, err
	}
	bone.BoneFlag = model.BoneFlag(flags)

	if bone.HasFlag(model.BONE_FLAG_TAIL_IS_BONE) {
		if bone.TailIndex, err = mr.readIndex(mr.sizes.bone); err != nil {
			return nil, err
		}
	} else {
		if bone.TailPosition, err = mr.readVec3(); err != nil {
			return nil, err
		}
	}
	if bone.HasFlag(model.BONE_FLAG_IS_EXTERNAL_ROTATION) || bone.HasFlag(model.BONE_FLAG_IS_EXTERNAL_TRANSLATION) {
		if bone.EffectIndex, err = mr.readIndex(mr.sizes.bone); err != nil {
			return nil, err
		}
		if bone.EffectFactor, err = mr.readFloat(); err != nil {
			return nil, err
		}
	}
	if bone.HasFlag(model.BONE_FLAG_HAS_FIXED_AXIS) {
		if bone.FixedAxis, err = mr.readVec3(); err != nil {
			return nil, err
		}
	}
	if bone.HasFlag(model.BONE_FLAG_HAS_LOCAL_AXIS) {
		if bone.LocalAxisX, err = mr.readVec3(); err != nil {
			return nil, err
		}
		if bone.LocalAxisZ, err = mr.readVec3(); err != nil {
			return nil, err
		}
	}
	if bone.HasFlag(model.BONE_FLAG_IS_EXTERNAL_PARENT_DEFORM) {
		if bone.ExternalKey, err = mr.readInt(); err != nil {
			return nil, err
		}
	}
	if bone.HasFlag(model.BONE_FLAG_IS_IK) {
		ik := &model.Ik{}
		if ik.BoneIndex, err = mr.readIndex(mr.sizes.bone); err != nil {
			return nil, err
		}
		if ik.LoopCount, err = mr.readInt(); err != nil {
			return nil, err
		}
		if ik.UnitRotation, err = mr.readFloat(); err != nil {
			return nil, err
		}
		linkCount, err := mr.readCount()
		if err != nil {
			return nil, err
		}
		for i := 0; i < linkCount; i++ {
			link := model.IkLink{}
			if link.BoneIndex, err = mr.readIndex(mr.sizes.bone); err != nil {
				return nil, err
			}
			limit, err := mr.readByte()
			if err != nil {
				return nil, err
			}
			link.AngleLimit = limit == 1
			if link.AngleLimit {
				if link.MinAngleLimit, err = mr.readVec3(); err != nil {
					return nil, err
				}
				if link.MaxAngleLimit, err = mr.readVec3(); err != nil {
					return nil, err
				}
			}
			ik.Links = append(ik.Links, link)
		}
		bone.Ik = ik
	}
	return bone, nil
}

func (mr *modelReader) readMorphs(modelData *model.PmxModel) error {
	count, err := mr.readCount()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		morph, err := mr.readMorph()
		if err != nil {
			return fmt.Errorf("モーフ[%d]: %w", i, err)
		}
		modelData.Morphs.AppendRaw(morph)
	}
	return nil
}

func (mr *modelReader) readMorph() (*model.Morph, error) {
	morph := &model.Morph{}
	var err error
	if morph.Name, err = mr.readText(); err != nil {
		return nil, err
	}
	if morph.EnglishName, err = mr.readText(); err != nil {
		return nil, err
	}
	panel, err := mr.readByte()
	if err != nil {
		return nil, err
	}
	morph.Panel = model.MorphPanel(panel)
	morphType, err := mr.readByte()
	if err != nil {
		return nil, err
	}
	morph.MorphType = model.MorphType(morphType)
	offsetCount, err := mr.readCount()
	if err != nil {
		return nil, err
	}
	for i := 0; i < offsetCount; i++ {
		offset, err := mr.readMorphOffset(morph.MorphType)
		if err != nil {
			return nil, fmt.Errorf("オフセット[%d]: %w", i, err)
		}
		morph.Offsets = append(morph.Offsets, offset)
	}
	return morph, nil
}

func (mr *modelReader) readMorphOffset(morphType model.MorphType) (model.IMorphOffset, error) {
	switch morphType {
	case model.MORPH_TYPE_GROUP, model.MORPH_TYPE_FLIP:
		morphIndex, err := mr.readIndex(mr.sizes.morph)
		if err != nil {
			return nil, err
		}
		factor, err := mr.readFloat()
		if err != nil {
			return nil, err
		}
		if morphType == model.MORPH_TYPE_FLIP {
			return &model.FlipMorphOffset{MorphIndex: morphIndex, Factor: factor}, nil
		}
		return &model.GroupMorphOffset{MorphIndex: morphIndex, Factor: factor}, nil
	case model.MORPH_TYPE_VERTEX:
		vertexIndex, err := mr.readVertexIndex()
		if err != nil {
			return nil, err
		}
		offset, err := mr.readVec3()
		if err != nil {
			return nil, err
		}
		return &model.VertexMorphOffset{VertexIndex: vertexIndex, Offset: offset}, nil
	case model.MORPH_TYPE_BONE:
		boneIndex, err := mr.readIndex(mr.sizes.bone)
		if err != nil {
			return nil, err
		}
		translation, err := mr.readVec3()
		if err != nil {
			return nil, err
		}
		rotation, err := mr.readVec4()
		if err != nil {
			return nil, err
		}
		return &model.BoneMorphOffset{BoneIndex: boneIndex, Translation: translation, Rotation: rotation}, nil
	case model.MORPH_TYPE_UV, model.MORPH_TYPE_EXTENDED_UV1, model.MORPH_TYPE_EXTENDED_UV2,
		model.MORPH_TYPE_EXTENDED_UV3, model.MORPH_TYPE_EXTENDED_UV4:
		vertexIndex, err := mr.readVertexIndex()
		if err != nil {
			return nil, err
		}
		uv, err := mr.readVec4()
		if err != nil {
			return nil, err
		}
		return &model.UvMorphOffset{VertexIndex: vertexIndex, Uv: uv}, nil
	case model.MORPH_TYPE_MATERIAL:
		return mr.readMaterialMorphOffset()
	case model.MORPH_TYPE_IMPULSE:
		rigidBodyIndex, err := mr.readIndex(mr.sizes.rigidBody)
		if err != nil {
			return nil, err
		}
		local, err := mr.readByte()
		if err != nil {
			return nil, err
		}
		velocity, err := mr.readVec3()
		if err != nil {
			return nil, err
		}
		torque, err := mr.readVec3()
		if err != nil {
			return nil, err
		}
		return &model.ImpulseMorphOffset{RigidBodyIndex: rigidBodyIndex, IsLocal: local == 1, Velocity: velocity, Torque: torque}, nil
	}
	return nil, fmt.Errorf("未対応のモーフ種別です: %d", morphType)
}

func (mr *modelReader) readMaterialMorphOffset() (*model.MaterialMorphOffset, error) {
	offset := &model.MaterialMorphOffset{}
	var err error
	if offset.MaterialIndex, err = mr.readIndex(mr.sizes.material); err != nil {
		return nil, err
	}
	if offset.CalcMode, err = mr.readByte(); err != nil {
		return nil, err
	}
	if offset.Diffuse, err = mr.readVec4(); err != nil {
		return nil, err
	}
	if offset.Specular, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if offset.SpecularFactor, err = mr.readFloat(); err != nil {
		return nil, err
	}
	if offset.Ambient, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if offset.EdgeColor, err = mr.readVec4(); err != nil {
		return nil, err
	}
	if offset.EdgeSize, err = mr.readFloat(); err != nil {
		return nil, err
	}
	if offset.TextureFactor, err = mr.readVec4(); err != nil {
		return nil, err
	}
	if offset.SphereTextureFactor, err = mr.readVec4(); err != nil {
		return nil, err
	}
	if offset.ToonTextureFactor, err = mr.readVec4(); err != nil {
		return nil, err
	}
	return offset, nil
}

func (mr *modelReader) readDisplaySlots(modelData *model.PmxModel) error {
	count, err := mr.readCount()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		slot := &model.DisplaySlot{}
		if slot.Name, err = mr.readText(); err != nil {
			return fmt.Errorf("表示枠[%d]: %w", i, err)
		}
		if slot.EnglishName, err = mr.readText(); err != nil {
			return fmt.Errorf("表示枠[%d]: %w", i, err)
		}
		if slot.SpecialFlag, err = mr.readByte(); err != nil {
			return fmt.Errorf("表示枠[%d]: %w", i, err)
		}
		referenceCount, err := mr.readCount()
		if err != nil {
			return fmt.Errorf("表示枠[%d]: %w", i, err)
		}
		for j := 0; j < referenceCount; j++ {
			reference := model.DisplaySlotReference{}
			displayType, err := mr.readByte()
			if err != nil {
				return fmt.Errorf("表示枠[%d]: %w", i, err)
			}
			reference.DisplayType = model.DisplayType(displayType)
			switch reference.DisplayType {
			case model.DISPLAY_TYPE_BONE:
				if reference.Index, err = mr.readIndex(mr.sizes.bone); err != nil {
					return fmt.Errorf("表示枠[%d]: %w", i, err)
				}
			case model.DISPLAY_TYPE_MORPH:
				if reference.Index, err = mr.readIndex(mr.sizes.morph); err != nil {
					return fmt.Errorf("表示枠[%d]: %w", i, err)
				}
			default:
				return fmt.Errorf("表示枠[%d]: 参照種別が不正です: %d", i, displayType)
			}
			slot.References = append(slot.References, reference)
		}
		modelData.DisplaySlots.AppendRaw(slot)
	}
	return nil
}

func (mr *modelReader) readRigidBodies(modelData *model.PmxModel) error {
	count, err := mr.readCount()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		rigidBody, err := mr.readRigidBody()
		if err != nil {
			return fmt.Errorf("剛体[%d]: %w", i, err)
		}
		modelData.RigidBodies.AppendRaw(rigidBody)
	}
	return nil
}

func (mr *modelReader) readRigidBody() (*model.RigidBody, error) {
	rigidBody := &model.RigidBody{}
	var err error
	if rigidBody.Name, err = mr.readText(); err != nil {
		return nil, err
	}
	if rigidBody.EnglishName, err = mr.readText(); err != nil {
		return nil, err
	}
	if rigidBody.BoneIndex, err = mr.readIndex(mr.sizes.bone); err != nil {
		return nil, err
	}
	if rigidBody.CollisionGroup, err = mr.readByte(); err != nil {
		return nil, err
	}
	if err = binary.Read(mr.r, binary.LittleEndian, &rigidBody.CollisionGroupMask); err != nil {
		return nil, err
	}
	shape, err := mr.readByte()
	if err != nil {
		return nil, err
	}
	rigidBody.Shape = model.RigidBodyShape(shape)
	if rigidBody.Size, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if rigidBody.Position, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if rigidBody.Rotation, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if rigidBody.Mass, err = mr.readFloat(); err != nil {
		return nil, err
	}
	if rigidBody.LinearDamping, err = mr.readFloat(); err != nil {
		return nil, err
	}
	if rigidBody.AngularDamping, err = mr.readFloat(); err != nil {
		return nil, err
	}
	if rigidBody.Restitution, err = mr.readFloat(); err != nil {
		return nil, err
	}
	if rigidBody.Friction, err = mr.readFloat(); err != nil {
		return nil, err
	}
	mode, err := mr.readByte()
	if err != nil {
		return nil, err
	}
	rigidBody.Mode = model.RigidBodyMode(mode)
	return rigidBody, nil
}

func (mr *modelReader) readJoints(modelData *model.PmxModel) error {
	count, err := mr.readCount()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		joint, err := mr.readJoint()
		if err != nil {
			return fmt.Errorf("ジョイント[%d]: %w", i, err)
		}
		modelData.Joints.AppendRaw(joint)
	}
	return nil
}

func (mr *modelReader) readJoint() (*model.Joint, error) {
	joint := &model.Joint{}
	var err error
	if joint.Name, err = mr.readText(); err != nil {
		return nil, err
	}
	if joint.EnglishName, err = mr.readText(); err != nil {
		return nil, err
	}
	if joint.JointType, err = mr.readByte(); err != nil {
		return nil, err
	}
	if joint.RigidBodyIndexA, err = mr.readIndex(mr.sizes.rigidBody); err != nil {
		return nil, err
	}
	if joint.RigidBodyIndexB, err = mr.readIndex(mr.sizes.rigidBody); err != nil {
		return nil, err
	}
	if joint.Position, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if joint.Rotation, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if joint.LinearLimitMin, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if joint.LinearLimitMax, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if joint.AngularLimitMin, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if joint.AngularLimitMax, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if joint.LinearSpring, err = mr.readVec3(); err != nil {
		return nil, err
	}
	if joint.AngularSpring, err = mr.readVec3(); err != nil {
		return nil, err
	}
	return joint, nil
}

// checkSoftBodies はPMX2.1のソフトボディテーブルを検出し、未対応として拒否する。
func (mr *modelReader) checkSoftBodies(modelData *model.PmxModel) error {
	if modelData.Version < 2.1 {
		return nil
	}
	count, err := mr.readCount()
	if err != nil {
		// 2.1でもソフトボディテーブルを省略したファイルは実在するため、終端は許容する。
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		return io_common.NewIoParseFailed("ソフトボディ数の読み取りに失敗しました", err)
	}
	if count > 0 {
		return io_common.NewIoFormatNotSupported(fmt.Sprintf("ソフトボディは未対応です: %d件", count), nil)
	}
	return nil
}

func (mr *modelReader) readByte() (byte, error) {
	return mr.r.ReadByte()
}

func (mr *modelReader) readInt() (int, error) {
	var v int32
	if err := binary.Read(mr.r, binary.LittleEndian, &v); err != nil {
		return 0, err
	}
	return int(v), nil
}

// readCount は要素数を読み取る。負数は不正として拒否する。
func (mr *modelReader) readCount() (int, error) {
	count, err := mr.readInt()
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, fmt.Errorf("要素数が負数です: %d", count)
	}
	return count, nil
}

func (mr *modelReader) readFloat() (float64, error) {
	var v float32
	if err := binary.Read(mr.r, binary.LittleEndian, &v); err != nil {
		return 0, err
	}
	return float64(v), nil
}

func (mr *modelReader) readVec2() (mmath.Vec2, error) {
	var raw [2]float32
	if err := binary.Read(mr.r, binary.LittleEndian, &raw); err != nil {
		return mmath.Vec2{}, err
	}
	return mmath.Vec2{X: float64(raw[0]), Y: float64(raw[1])}, nil
}

func (mr *modelReader) readVec3() (mmath.Vec3, error) {
	var raw [3]float32
	if err := binary.Read(mr.r, binary.LittleEndian, &raw); err != nil {
		return mmath.Vec3{}, err
	}
	return mmath.NewVec3(float64(raw[0]), float64(raw[1]), float64(raw[2])), nil
}

func (mr *modelReader) readVec4() (mmath.Vec4, error) {
	var raw [4]float32
	if err := binary.Read(mr.r, binary.LittleEndian, &raw); err != nil {
		return mmath.Vec4{}, err
	}
	return mmath.Vec4{X: float64(raw[0]), Y: float64(raw[1]), Z: float64(raw[2]), W: float64(raw[3])}, nil
}

// readIndex は符号付きインデックスを読み取る。-1は未参照を表す。
func (mr *modelReader) readIndex(size int) (int, error) {
	switch size {
	case 1:
		var v int8
		if err := binary.Read(mr.r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return int(v), nil
	case 2:
		var v int16
		if err := binary.Read(mr.r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return int(v), nil
	case 4:
		return mr.readInt()
	}
	return 0, fmt.Errorf("インデックスバイト数が不正です: %d", size)
}

// readVertexIndex は頂点インデックスを読み取る。1・2バイト時は符号なし。
func (mr *modelReader) readVertexIndex() (int, error) {
	switch mr.sizes.vertex {
	case 1:
		v, err := mr.readByte()
		if err != nil {
			return 0, err
		}
		return int(v), nil
	case 2:
		var v uint16
		if err := binary.Read(mr.r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return int(v), nil
	case 4:
		return mr.readInt()
	}
	return 0, fmt.Errorf("頂点インデックスバイト数が不正です: %d", mr.sizes.vertex)
}

// readText は長さ前置の文字列を読み取る。
func (mr *modelReader) readText() (string, error) {
	length, err := mr.readCount()
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(mr.r, raw); err != nil {
		return "", err
	}
	return decodeText(raw, mr.encoding)
}
