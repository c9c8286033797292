// 指示: miu200521358
package minteractor

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_pmx_merge/pkg/adapter/io_model/pmx"
	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/merr"
)

type recordingReporter struct {
	events []PatchProgressEventType
}

func (r *recordingReporter) ReportPatchProgress(event PatchProgressEvent) {
	r.events = append(r.events, event.Type)
}

func (r *recordingReporter) saw(eventType PatchProgressEventType) bool {
	for _, e := range r.events {
		if e == eventType {
			return true
		}
	}
	return false
}

func saveFixture(t *testing.T, path string, modelData *ModelData) {
	t.Helper()
	rep := pmx.NewPmxRepository()
	if err := rep.Save(path, modelData, SaveOptions{}); err != nil {
		t.Fatalf("fixture save failed: %v", err)
	}
}

func readFileBytes(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return data
}

func newTestUsecase() *PmxMergeUsecase {
	rep := pmx.NewPmxRepository()
	return NewPmxMergeUsecase(PmxMergeUsecaseDeps{ModelReader: rep, ModelWriter: rep})
}

func TestPatchBonesEndToEnd(t *testing.T) {
	dir := t.TempDir()
	targetPath := filepath.Join(dir, "target.pmx")
	freshPath := filepath.Join(dir, "fresh.pmx")
	outputPath := filepath.Join(dir, "patched.pmx")
	saveFixture(t, targetPath, buildTargetModel(t))
	saveFixture(t, freshPath, buildFreshModel(t))

	reporter := &recordingReporter{}
	result, err := newTestUsecase().Patch(&PatchRequest{
		TargetPath:       targetPath,
		FreshPath:        freshPath,
		Features:         NewFeatureSet(FeatureBones),
		OutputPath:       outputPath,
		ProgressReporter: reporter,
	})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if !result.Saved || result.OutputPath != outputPath {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Summary.Bones.Replaced != 3 || result.Summary.Bones.Appended != 1 {
		t.Fatalf("summary mismatch: %+v", result.Summary.Bones)
	}
	if !reporter.saw(PatchProgressEventTypePlanBuilt) || !reporter.saw(PatchProgressEventTypeSaved) {
		t.Fatalf("missing progress events: %v", reporter.events)
	}

	patched, err := pmx.NewPmxRepository().Load(outputPath)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if patched.Bones.Len() != 4 {
		t.Fatalf("bone count mismatch: %d", patched.Bones.Len())
	}
	waist, err := patched.Bones.Get(1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if waist.Position.Y != 8.5 {
		t.Fatalf("waist transform not adopted: %v", waist.Position)
	}
	legR, ok := patched.Bones.GetByName("右足")
	if !ok || legR.ParentIndex != 1 {
		t.Fatalf("appended bone mismatch: %+v", legR)
	}
	// 取り込み対象外のテーブルは位置が揺れない
	legBody, ok := patched.RigidBodies.GetByName("左足剛体")
	if !ok || legBody.BoneIndex != 2 {
		t.Fatalf("untouched rigid body mismatch: %+v", legBody)
	}
}

func TestPatchEmptySelectionNeverWrites(t *testing.T) {
	dir := t.TempDir()
	targetPath := filepath.Join(dir, "target.pmx")
	freshPath := filepath.Join(dir, "fresh.pmx")
	saveFixture(t, targetPath, buildTargetModel(t))
	saveFixture(t, freshPath, buildFreshModel(t))
	before := readFileBytes(t, targetPath)

	result, err := newTestUsecase().Patch(&PatchRequest{
		TargetPath: targetPath,
		FreshPath:  freshPath,
		Features:   NewFeatureSet(),
	})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if result.Saved {
		t.Fatalf("empty selection must not save")
	}

	after := readFileBytes(t, targetPath)
	if !bytes.Equal(before, after) {
		t.Fatalf("target file bytes changed")
	}
}

func TestPatchIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	targetPath := filepath.Join(dir, "target.pmx")
	freshPath := filepath.Join(dir, "fresh.pmx")
	firstPath := filepath.Join(dir, "first.pmx")
	secondPath := filepath.Join(dir, "second.pmx")
	saveFixture(t, targetPath, buildTargetModel(t))
	saveFixture(t, freshPath, buildFreshModel(t))

	usecase := newTestUsecase()
	features := NewFeatureSet(AllFeatureTypes()...)
	if _, err := usecase.Patch(&PatchRequest{
		TargetPath: targetPath, FreshPath: freshPath, Features: features, OutputPath: firstPath,
	}); err != nil {
		t.Fatalf("first patch failed: %v", err)
	}
	if _, err := usecase.Patch(&PatchRequest{
		TargetPath: firstPath, FreshPath: freshPath, Features: features, OutputPath: secondPath,
	}); err != nil {
		t.Fatalf("second patch failed: %v", err)
	}

	if !bytes.Equal(readFileBytes(t, firstPath), readFileBytes(t, secondPath)) {
		t.Fatalf("same patch applied twice must produce identical bytes")
	}
}

func TestPatchRejectsVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	targetPath := filepath.Join(dir, "target.pmx")
	freshPath := filepath.Join(dir, "fresh.pmx")
	saveFixture(t, targetPath, buildTargetModel(t))
	freshModel := buildFreshModel(t)
	freshModel.Version = 2.1
	saveFixture(t, freshPath, freshModel)

	_, err := newTestUsecase().Patch(&PatchRequest{
		TargetPath: targetPath,
		FreshPath:  freshPath,
		Features:   NewFeatureSet(FeatureBones),
		OutputPath: filepath.Join(dir, "patched.pmx"),
	})
	if err == nil {
		t.Fatalf("expected version mismatch")
	}
	if id := merr.ExtractErrorID(err); id != merr.IDIoVersionMismatch {
		t.Fatalf("unexpected error id: %s (%v)", id, err)
	}
}

func TestPatchAcceptsInMemoryFreshModel(t *testing.T) {
	dir := t.TempDir()
	targetPath := filepath.Join(dir, "target.pmx")
	outputPath := filepath.Join(dir, "patched.pmx")
	saveFixture(t, targetPath, buildTargetModel(t))

	// ボーンを取り込まないため、新規剛体はターゲットに存在するボーンへ紐付けておく
	freshModel := buildFreshModel(t)
	legBody, err := freshModel.RigidBodies.Get(1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	legBody.BoneIndex = 2

	result, err := newTestUsecase().Patch(&PatchRequest{
		TargetPath: targetPath,
		FreshModel: freshModel,
		Features:   NewFeatureSet(FeaturePhysics),
		OutputPath: outputPath,
	})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if !result.Saved {
		t.Fatalf("expected save")
	}

	patched, err := pmx.NewPmxRepository().Load(outputPath)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, ok := patched.RigidBodies.GetByName("右足剛体"); !ok {
		t.Fatalf("fresh rigid body not adopted")
	}
	if patched.Joints.Len() != 1 {
		t.Fatalf("joint table should follow the fresh membership: %d", patched.Joints.Len())
	}
	joint, err := patched.Joints.Get(0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if joint.Name != "腰右足" {
		t.Fatalf("joint mismatch: %s", joint.Name)
	}
}

func TestPatchMissingFreshInput(t *testing.T) {
	dir := t.TempDir()
	targetPath := filepath.Join(dir, "target.pmx")
	saveFixture(t, targetPath, buildTargetModel(t))

	if _, err := newTestUsecase().Patch(&PatchRequest{
		TargetPath: targetPath,
		Features:   NewFeatureSet(FeatureBones),
	}); err == nil {
		t.Fatalf("expected error when fresh input is missing")
	}
}
