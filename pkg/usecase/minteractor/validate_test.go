// 指示: miu200521358
package minteractor

import (
	"strings"
	"testing"

	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/merr"
)

func TestValidateElementsAcceptsWellFormedModel(t *testing.T) {
	target := buildTargetModel(t)
	if err := ValidateElements(target, "ターゲット"); err != nil {
		t.Fatalf("validation failed: %v", err)
	}
}

func TestValidateElementsRejectsDuplicateJapaneseNames(t *testing.T) {
	target := buildTargetModel(t)
	// 英語名が違っても日本語名の重複は識別キーを曖昧にする
	duplicated := testBone("腰", "waist2", 0, 9)
	target.Bones.AppendRaw(duplicated)

	err := ValidateElements(target, "ターゲット")
	if err == nil {
		t.Fatalf("expected identity conflict")
	}
	if id := merr.ExtractErrorID(err); id != merr.IDIdentityConflict {
		t.Fatalf("unexpected error id: %s (%v)", id, err)
	}
	if !strings.Contains(err.Error(), "腰") {
		t.Fatalf("error should name the duplicate: %v", err)
	}
}

func TestValidateElementsRejectsUnnamedElements(t *testing.T) {
	target := buildTargetModel(t)
	target.Morphs.AppendRaw(model.NewMorph("", model.MORPH_TYPE_VERTEX))

	err := ValidateElements(target, "新規エクスポート")
	if err == nil {
		t.Fatalf("expected identity conflict")
	}
	if id := merr.ExtractErrorID(err); id != merr.IDIdentityConflict {
		t.Fatalf("unexpected error id: %s (%v)", id, err)
	}
}

func TestCheckVersionCompatible(t *testing.T) {
	if err := checkVersionCompatible(2.0, 2.0); err != nil {
		t.Fatalf("same version must pass: %v", err)
	}
	err := checkVersionCompatible(2.0, 2.1)
	if err == nil {
		t.Fatalf("expected version mismatch")
	}
	if id := merr.ExtractErrorID(err); id != merr.IDIoVersionMismatch {
		t.Fatalf("unexpected error id: %s (%v)", id, err)
	}
}
