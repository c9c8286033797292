// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/merr"
)

// EntityAction はマージ計画における要素単位の操作を表す。
type EntityAction byte

const (
	// ActionKeep はターゲット要素をそのまま維持する操作を表す。
	ActionKeep EntityAction = iota
	// ActionReplace はターゲット位置を保ったまま新規エクスポートの内容へ置換する操作を表す。
	ActionReplace
	// ActionAppend は新規エクスポートの要素をテーブル末尾へ追加する操作を表す。
	ActionAppend
	// ActionRemove は新規エクスポートに存在しないターゲット要素を削除する操作を表す。
	ActionRemove
)

// String は操作名を返す。
func (a EntityAction) String() string {
	switch a {
	case ActionKeep:
		return "keep"
	case ActionReplace:
		return "replace"
	case ActionAppend:
		return "append"
	case ActionRemove:
		return "remove"
	}
	return fmt.Sprintf("unknown(%d)", byte(a))
}

// EntityOp は1要素分のマージ操作を表す。
type EntityOp struct {
	Action EntityAction
	// TargetIndex はターゲットでの元位置。Appendでは-1。
	TargetIndex int
	// FreshIndex は新規エクスポートでの元位置。Keep/Removeでは-1。
	FreshIndex int
	Key        IdentityKey
}

// TablePlan は1テーブル分のマージ計画を表す。
// Opsはターゲット順のKeep/Replace/Removeに続き、新規エクスポート順のAppendが並ぶ。
type TablePlan struct {
	Enabled bool
	Ops     []EntityOp
}

// MergedLen はマージ後の要素数を返す。
func (p TablePlan) MergedLen() int {
	count := 0
	for _, op := range p.Ops {
		if op.Action != ActionRemove {
			count++
		}
	}
	return count
}

// Summary は操作別の集計を返す。
func (p TablePlan) Summary() TableSummary {
	summary := TableSummary{}
	for _, op := range p.Ops {
		switch op.Action {
		case ActionKeep:
			summary.Kept++
		case ActionReplace:
			summary.Replaced++
		case ActionAppend:
			summary.Appended++
		case ActionRemove:
			summary.Removed++
		}
	}
	return summary
}

// MergePlan はモデル全体のマージ計画を表す。
// 頂点・面は識別キーを持たないため要素単位の計画を持たず、meshes有効時に材質単位で形状を採用する。
type MergePlan struct {
	Features FeatureSet

	Bones        TablePlan
	Materials    TablePlan
	Morphs       TablePlan
	DisplaySlots TablePlan
	RigidBodies  TablePlan
	Joints       TablePlan
}

// Summary はマージ計画全体の集計を返す。
func (p *MergePlan) Summary() MergeSummary {
	return MergeSummary{
		Bones:        p.Bones.Summary(),
		Materials:    p.Materials.Summary(),
		Morphs:       p.Morphs.Summary(),
		DisplaySlots: p.DisplaySlots.Summary(),
		RigidBodies:  p.RigidBodies.Summary(),
		Joints:       p.Joints.Summary(),
	}
}

// BuildMergePlan はターゲットと抽出済みテーブルから要素単位のマージ計画を組み立てる。
// 有効フィーチャのテーブルは新規エクスポートの要素構成へ完全に揃える。
// 置換は識別キー一致、追加は新規エクスポートのみに存在、削除はターゲットのみに存在した場合となる。
func BuildMergePlan(target *ModelData, fresh *PartialModel) (*MergePlan, error) {
	if target == nil {
		return nil, fmt.Errorf("ターゲットモデルが未設定です")
	}
	if fresh == nil {
		return nil, fmt.Errorf("抽出済みテーブルが未設定です")
	}

	plan := &MergePlan{Features: fresh.Features}

	var targetKeys []IdentityKey
	var err error

	targetKeys = targetKeys[:0]
	for _, b := range target.Bones.Values() {
		targetKeys = append(targetKeys, boneKey(b))
	}
	freshBoneKeys := make([]IdentityKey, 0, len(fresh.Bones))
	for _, b := range fresh.Bones {
		freshBoneKeys = append(freshBoneKeys, boneKey(b))
	}
	if plan.Bones, err = planTable("ボーン", targetKeys, freshBoneKeys, fresh.Features.Enabled(FeatureBones)); err != nil {
		return nil, err
	}

	targetKeys = targetKeys[:0]
	for _, m := range target.Materials.Values() {
		targetKeys = append(targetKeys, materialKey(m))
	}
	freshMaterialKeys := make([]IdentityKey, 0, len(fresh.Materials))
	for _, m := range fresh.Materials {
		freshMaterialKeys = append(freshMaterialKeys, materialKey(m))
	}
	if plan.Materials, err = planTable("材質", targetKeys, freshMaterialKeys, fresh.Features.Enabled(FeatureMaterials)); err != nil {
		return nil, err
	}

	targetKeys = targetKeys[:0]
	for _, m := range target.Morphs.Values() {
		targetKeys = append(targetKeys, morphKey(m))
	}
	freshMorphKeys := make([]IdentityKey, 0, len(fresh.Morphs))
	for _, m := range fresh.Morphs {
		freshMorphKeys = append(freshMorphKeys, morphKey(m))
	}
	if plan.Morphs, err = planTable("モーフ", targetKeys, freshMorphKeys, fresh.Features.Enabled(FeatureMorphs)); err != nil {
		return nil, err
	}

	targetKeys = targetKeys[:0]
	for _, d := range target.DisplaySlots.Values() {
		targetKeys = append(targetKeys, displaySlotKey(d))
	}
	freshDisplayKeys := make([]IdentityKey, 0, len(fresh.DisplaySlots))
	for _, d := range fresh.DisplaySlots {
		freshDisplayKeys = append(freshDisplayKeys, displaySlotKey(d))
	}
	if plan.DisplaySlots, err = planTable("表示枠", targetKeys, freshDisplayKeys, fresh.Features.Enabled(FeatureDisplayFrames)); err != nil {
		return nil, err
	}

	targetKeys = targetKeys[:0]
	for _, r := range target.RigidBodies.Values() {
		targetKeys = append(targetKeys, rigidBodyKey(r))
	}
	freshRigidKeys := make([]IdentityKey, 0, len(fresh.RigidBodies))
	for _, r := range fresh.RigidBodies {
		freshRigidKeys = append(freshRigidKeys, rigidBodyKey(r))
	}
	if plan.RigidBodies, err = planTable("剛体", targetKeys, freshRigidKeys, fresh.Features.Enabled(FeaturePhysics)); err != nil {
		return nil, err
	}

	targetKeys = targetKeys[:0]
	for _, j := range target.Joints.Values() {
		targetKeys = append(targetKeys, jointKey(j))
	}
	freshJointKeys := make([]IdentityKey, 0, len(fresh.Joints))
	for _, j := range fresh.Joints {
		freshJointKeys = append(freshJointKeys, jointKey(j))
	}
	if plan.Joints, err = planTable("ジョイント", targetKeys, freshJointKeys, fresh.Features.Enabled(FeaturePhysics)); err != nil {
		return nil, err
	}

	return plan, nil
}

// planTable は識別キーの突き合わせで1テーブル分の計画を組み立てる。
func planTable(label string, targetKeys, freshKeys []IdentityKey, enabled bool) (TablePlan, error) {
	plan := TablePlan{Enabled: enabled}

	if !enabled {
		for i, key := range targetKeys {
			plan.Ops = append(plan.Ops, EntityOp{Action: ActionKeep, TargetIndex: i, FreshIndex: -1, Key: key})
		}
		return plan, nil
	}

	targetByKey, err := indexByKey(label+"(ターゲット)", targetKeys)
	if err != nil {
		return TablePlan{}, err
	}
	freshByKey, err := indexByKey(label+"(新規エクスポート)", freshKeys)
	if err != nil {
		return TablePlan{}, err
	}

	for i, key := range targetKeys {
		if freshIndex, ok := freshByKey[key]; ok {
			plan.Ops = append(plan.Ops, EntityOp{Action: ActionReplace, TargetIndex: i, FreshIndex: freshIndex, Key: key})
		} else {
			plan.Ops = append(plan.Ops, EntityOp{Action: ActionRemove, TargetIndex: i, FreshIndex: -1, Key: key})
		}
	}
	for j, key := range freshKeys {
		if _, ok := targetByKey[key]; !ok {
			plan.Ops = append(plan.Ops, EntityOp{Action: ActionAppend, TargetIndex: -1, FreshIndex: j, Key: key})
		}
	}
	return plan, nil
}

// indexByKey はキーから位置への索引を作る。キー重複は識別キー衝突として中断する。
func indexByKey(label string, keys []IdentityKey) (map[IdentityKey]int, error) {
	index := make(map[IdentityKey]int, len(keys))
	for i, key := range keys {
		if prev, ok := index[key]; ok {
			return nil, merr.New(merr.IDIdentityConflict,
				fmt.Sprintf("%s: 識別キーが重複しています: %s (位置 %d と %d)", label, key, prev, i), nil)
		}
		index[key] = i
	}
	return index, nil
}
