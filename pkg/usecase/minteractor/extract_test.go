// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/merr"
)

func TestExtractFeaturesMeshesPullsGeometryAndMaterials(t *testing.T) {
	fresh := buildFreshModel(t)

	partial := mustExtract(t, fresh, NewFeatureSet(FeatureMeshes))

	if len(partial.Vertices) != fresh.Vertices.Len() {
		t.Fatalf("vertex count mismatch: %d", len(partial.Vertices))
	}
	if len(partial.Faces) != fresh.Faces.Len() {
		t.Fatalf("face count mismatch: %d", len(partial.Faces))
	}
	if len(partial.Materials) != fresh.Materials.Len() {
		t.Fatalf("material count mismatch: %d", len(partial.Materials))
	}
	if len(partial.Textures) != fresh.Textures.Len() {
		t.Fatalf("texture count mismatch: %d", len(partial.Textures))
	}
	if partial.Bones != nil {
		t.Fatalf("bones should not be extracted: %d", len(partial.Bones))
	}
	if len(partial.BoneKeys) != fresh.Bones.Len() {
		t.Fatalf("bone keys must always be collected: %d", len(partial.BoneKeys))
	}
}

func TestExtractFeaturesReturnsClones(t *testing.T) {
	fresh := buildFreshModel(t)

	partial := mustExtract(t, fresh, NewFeatureSet(FeatureBones, FeatureMorphs))

	partial.Bones[1].Name = "改名"
	original, err := fresh.Bones.Get(1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if original.Name != "腰" {
		t.Fatalf("fresh model must stay untouched: %s", original.Name)
	}

	offset, ok := partial.Morphs[0].Offsets[0].(*model.VertexMorphOffset)
	if !ok {
		t.Fatalf("unexpected offset type: %T", partial.Morphs[0].Offsets[0])
	}
	offset.VertexIndex = 99
	originalMorph, err := fresh.Morphs.Get(0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if originalMorph.Offsets[0].(*model.VertexMorphOffset).VertexIndex != 1 {
		t.Fatalf("fresh morph offsets must stay untouched")
	}
}

func TestExtractFeaturesRejectsUnknownFeature(t *testing.T) {
	fresh := buildFreshModel(t)

	_, err := ExtractFeatures(fresh, FeatureSet{FeatureType("textures"): true})
	if err == nil {
		t.Fatalf("expected unsupported feature error")
	}
	if id := merr.ExtractErrorID(err); id != merr.IDUnsupportedFeature {
		t.Fatalf("unexpected error id: %s (%v)", id, err)
	}
}

func TestParseFeatureNamesIsCaseInsensitive(t *testing.T) {
	set, err := ParseFeatureNames([]string{"Bones", "DISPLAYFRAMES"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !set.Enabled(FeatureBones) || !set.Enabled(FeatureDisplayFrames) {
		t.Fatalf("unexpected feature set: %v", set.Names())
	}

	if _, err := ParseFeatureNames([]string{"softbodies"}); err == nil {
		t.Fatalf("expected error for unknown feature name")
	}
}
