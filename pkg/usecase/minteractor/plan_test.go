// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/merr"
)

func TestBuildMergePlanAlignsBonesToFreshMembership(t *testing.T) {
	target := buildTargetModel(t)
	fresh := buildFreshModel(t)
	partial := mustExtract(t, fresh, NewFeatureSet(FeatureBones))

	plan := mustPlan(t, target, partial)

	if !plan.Bones.Enabled {
		t.Fatalf("bones table should be enabled")
	}
	summary := plan.Bones.Summary()
	if summary.Replaced != 3 || summary.Appended != 1 || summary.Removed != 0 || summary.Kept != 0 {
		t.Fatalf("unexpected bone summary: %+v", summary)
	}
	if got := plan.Bones.MergedLen(); got != 4 {
		t.Fatalf("merged bone length mismatch: %d", got)
	}

	last := plan.Bones.Ops[len(plan.Bones.Ops)-1]
	if last.Action != ActionAppend || last.Key.Name != "右足" {
		t.Fatalf("expected trailing append of 右足, got %+v", last)
	}
	if last.TargetIndex != -1 || last.FreshIndex != 3 {
		t.Fatalf("append op indexes mismatch: %+v", last)
	}
}

func TestBuildMergePlanRemovesTargetOnlyElements(t *testing.T) {
	target := buildTargetModel(t)
	fresh := buildFreshModel(t)
	partial := mustExtract(t, fresh, NewFeatureSet(FeaturePhysics))

	plan := mustPlan(t, target, partial)

	summary := plan.RigidBodies.Summary()
	if summary.Replaced != 1 || summary.Appended != 1 || summary.Removed != 1 {
		t.Fatalf("unexpected rigid body summary: %+v", summary)
	}
	var removed *EntityOp
	for i := range plan.RigidBodies.Ops {
		if plan.RigidBodies.Ops[i].Action == ActionRemove {
			removed = &plan.RigidBodies.Ops[i]
		}
	}
	if removed == nil || removed.Key.Name != "左足剛体" {
		t.Fatalf("expected removal of 左足剛体, got %+v", removed)
	}
}

func TestBuildMergePlanDisabledTableKeepsTargetOrder(t *testing.T) {
	target := buildTargetModel(t)
	fresh := buildFreshModel(t)
	partial := mustExtract(t, fresh, NewFeatureSet(FeatureBones))

	plan := mustPlan(t, target, partial)

	if plan.Materials.Enabled {
		t.Fatalf("materials table should stay disabled")
	}
	if len(plan.Materials.Ops) != target.Materials.Len() {
		t.Fatalf("disabled table op count mismatch: %d", len(plan.Materials.Ops))
	}
	for i, op := range plan.Materials.Ops {
		if op.Action != ActionKeep || op.TargetIndex != i {
			t.Fatalf("disabled table op mismatch at %d: %+v", i, op)
		}
	}
}

func TestBuildMergePlanRejectsDuplicateIdentityKeys(t *testing.T) {
	target := buildTargetModel(t)
	fresh := buildFreshModel(t)
	target.Materials.AppendRaw(testMaterial("体", "body", 0, 0))
	partial := mustExtract(t, fresh, NewFeatureSet(FeatureMaterials))

	_, err := BuildMergePlan(target, partial)
	if err == nil {
		t.Fatalf("expected identity conflict")
	}
	if id := merr.ExtractErrorID(err); id != merr.IDIdentityConflict {
		t.Fatalf("unexpected error id: %s (%v)", id, err)
	}
}

func TestMergePlanSummaryAggregatesTables(t *testing.T) {
	target := buildTargetModel(t)
	fresh := buildFreshModel(t)
	partial := mustExtract(t, fresh, NewFeatureSet(AllFeatureTypes()...))

	plan := mustPlan(t, target, partial)
	summary := plan.Summary()

	if summary.Bones.Appended != 1 {
		t.Fatalf("bone append count mismatch: %+v", summary.Bones)
	}
	if summary.Joints.Removed != 1 || summary.Joints.Appended != 1 {
		t.Fatalf("joint summary mismatch: %+v", summary.Joints)
	}
	if summary.DisplaySlots.Replaced != 3 {
		t.Fatalf("display slot summary mismatch: %+v", summary.DisplaySlots)
	}
}
