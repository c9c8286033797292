// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_pmx_merge/pkg/domain/mmath"
	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
)

func testBone(name string, english string, parent int, y float64) *model.Bone {
	bone := model.NewBone(name)
	bone.EnglishName = english
	bone.ParentIndex = parent
	bone.Position = mmath.NewVec3(0, y, 0)
	return bone
}

func testVertex(x float64, boneIndex int) *model.Vertex {
	vertex := model.NewVertex()
	vertex.Position = mmath.NewVec3(x, 0, 0)
	vertex.Deform = model.Deform{DeformType: model.DEFORM_BDEF1, Indexes: []int{boneIndex}}
	return vertex
}

func testMaterial(name string, english string, textureIndex int, verticesCount int) *model.Material {
	material := model.NewMaterial(name)
	material.EnglishName = english
	material.TextureIndex = textureIndex
	material.ToonTextureIndex = 0
	material.IsSharedToon = true
	material.VerticesCount = verticesCount
	return material
}

// buildTargetModel はボーン3本・材質2枚・面3枚の組み上げ済みターゲットを返す。
func buildTargetModel(t *testing.T) *ModelData {
	t.Helper()

	target := model.NewPmxModel()
	target.Name = "対象モデル"
	target.EnglishName = "target"

	target.Bones.AppendRaw(testBone("ルート", "root", -1, 0))
	target.Bones.AppendRaw(testBone("腰", "waist", 0, 8))
	target.Bones.AppendRaw(testBone("左足", "leg_L", 1, 4))

	for i, x := range []float64{0, 1, 2, 3, 4, 5} {
		target.Vertices.AppendRaw(testVertex(x, i%3))
	}
	target.Faces.AppendRaw(&model.Face{VertexIndexes: [3]int{0, 1, 2}})
	target.Faces.AppendRaw(&model.Face{VertexIndexes: [3]int{0, 2, 3}})
	target.Faces.AppendRaw(&model.Face{VertexIndexes: [3]int{3, 4, 5}})

	target.Textures.AppendRaw(model.NewTexture("body.png"))
	target.Textures.AppendRaw(model.NewTexture("face.png"))

	target.Materials.AppendRaw(testMaterial("体", "body", 0, 6))
	target.Materials.AppendRaw(testMaterial("顔", "face", 1, 3))

	smile := model.NewMorph("笑い", model.MORPH_TYPE_VERTEX)
	smile.EnglishName = "smile"
	smile.Offsets = append(smile.Offsets, &model.VertexMorphOffset{VertexIndex: 4, Offset: mmath.NewVec3(0, 1, 0)})
	target.Morphs.AppendRaw(smile)

	rootSlot := model.NewDisplaySlot("Root")
	rootSlot.SpecialFlag = 1
	rootSlot.References = append(rootSlot.References, model.DisplaySlotReference{DisplayType: model.DISPLAY_TYPE_BONE, Index: 0})
	target.DisplaySlots.AppendRaw(rootSlot)
	expSlot := model.NewDisplaySlot("表情")
	expSlot.SpecialFlag = 1
	expSlot.References = append(expSlot.References, model.DisplaySlotReference{DisplayType: model.DISPLAY_TYPE_MORPH, Index: 0})
	target.DisplaySlots.AppendRaw(expSlot)
	legSlot := model.NewDisplaySlot("足")
	legSlot.References = append(legSlot.References, model.DisplaySlotReference{DisplayType: model.DISPLAY_TYPE_BONE, Index: 2})
	target.DisplaySlots.AppendRaw(legSlot)

	waistBody := model.NewRigidBody("腰剛体")
	waistBody.BoneIndex = 1
	waistBody.Mass = 1
	target.RigidBodies.AppendRaw(waistBody)
	legBody := model.NewRigidBody("左足剛体")
	legBody.BoneIndex = 2
	legBody.Mode = model.RIGID_BODY_MODE_DYNAMIC
	target.RigidBodies.AppendRaw(legBody)

	joint := model.NewJoint("腰左足")
	joint.RigidBodyIndexA = 0
	joint.RigidBodyIndexB = 1
	target.Joints.AppendRaw(joint)

	return target
}

// buildFreshModel はターゲットへ右足系を足し、腰や材質の内容を変えた新規エクスポートを返す。
func buildFreshModel(t *testing.T) *ModelData {
	t.Helper()

	fresh := model.NewPmxModel()
	fresh.Name = "対象モデル"
	fresh.EnglishName = "target"

	fresh.Bones.AppendRaw(testBone("ルート", "root", -1, 0))
	fresh.Bones.AppendRaw(testBone("腰", "waist", 0, 8.5))
	fresh.Bones.AppendRaw(testBone("左足", "leg_L", 1, 4))
	fresh.Bones.AppendRaw(testBone("右足", "leg_R", 1, 4))

	for i, x := range []float64{10, 11, 12, 13, 14, 15} {
		fresh.Vertices.AppendRaw(testVertex(x, i%4))
	}
	fresh.Faces.AppendRaw(&model.Face{VertexIndexes: [3]int{0, 1, 2}})
	fresh.Faces.AppendRaw(&model.Face{VertexIndexes: [3]int{2, 3, 4}})
	fresh.Faces.AppendRaw(&model.Face{VertexIndexes: [3]int{3, 4, 5}})

	fresh.Textures.AppendRaw(model.NewTexture("body2.png"))
	fresh.Textures.AppendRaw(model.NewTexture("face.png"))

	body := testMaterial("体", "body", 0, 3)
	body.Diffuse = mmath.Vec4{X: 1, Y: 0, Z: 0, W: 1}
	fresh.Materials.AppendRaw(body)
	fresh.Materials.AppendRaw(testMaterial("顔", "face", 1, 6))

	smile := model.NewMorph("笑い", model.MORPH_TYPE_VERTEX)
	smile.EnglishName = "smile"
	smile.Offsets = append(smile.Offsets, &model.VertexMorphOffset{VertexIndex: 1, Offset: mmath.NewVec3(0, 2, 0)})
	fresh.Morphs.AppendRaw(smile)
	raise := model.NewMorph("右足上げ", model.MORPH_TYPE_BONE)
	raise.EnglishName = "raise_R"
	raise.Offsets = append(raise.Offsets, &model.BoneMorphOffset{BoneIndex: 3, Translation: mmath.NewVec3(0, 1, 0)})
	fresh.Morphs.AppendRaw(raise)

	rootSlot := model.NewDisplaySlot("Root")
	rootSlot.SpecialFlag = 1
	rootSlot.References = append(rootSlot.References, model.DisplaySlotReference{DisplayType: model.DISPLAY_TYPE_BONE, Index: 0})
	fresh.DisplaySlots.AppendRaw(rootSlot)
	expSlot := model.NewDisplaySlot("表情")
	expSlot.SpecialFlag = 1
	expSlot.References = append(expSlot.References, model.DisplaySlotReference{DisplayType: model.DISPLAY_TYPE_MORPH, Index: 0})
	fresh.DisplaySlots.AppendRaw(expSlot)
	legSlot := model.NewDisplaySlot("足")
	legSlot.References = append(legSlot.References,
		model.DisplaySlotReference{DisplayType: model.DISPLAY_TYPE_BONE, Index: 2},
		model.DisplaySlotReference{DisplayType: model.DISPLAY_TYPE_BONE, Index: 3},
	)
	fresh.DisplaySlots.AppendRaw(legSlot)

	waistBody := model.NewRigidBody("腰剛体")
	waistBody.BoneIndex = 1
	waistBody.Mass = 2
	fresh.RigidBodies.AppendRaw(waistBody)
	legBody := model.NewRigidBody("右足剛体")
	legBody.BoneIndex = 3
	legBody.Mode = model.RIGID_BODY_MODE_DYNAMIC
	fresh.RigidBodies.AppendRaw(legBody)

	joint := model.NewJoint("腰右足")
	joint.RigidBodyIndexA = 0
	joint.RigidBodyIndexB = 1
	fresh.Joints.AppendRaw(joint)

	return fresh
}

func mustExtract(t *testing.T, fresh *ModelData, features FeatureSet) *PartialModel {
	t.Helper()
	partial, err := ExtractFeatures(fresh, features)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	return partial
}

func mustPlan(t *testing.T, target *ModelData, partial *PartialModel) *MergePlan {
	t.Helper()
	plan, err := BuildMergePlan(target, partial)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	return plan
}

func mustApply(t *testing.T, target *ModelData, partial *PartialModel, plan *MergePlan) *ModelData {
	t.Helper()
	merged, err := ApplyMergePlan(target, partial, plan)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	return merged
}
