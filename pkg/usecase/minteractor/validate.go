// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_pmx_merge/pkg/adapter/io_common"
	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/merr"
)

// ValidateElements は名前付きテーブルの無名要素と名前重複を検証する。
// 重複は日本語名で判定する。識別キーが曖昧なままマージすると置換先が不定になるため、検出時は中断する。
func ValidateElements(modelData *ModelData, sourceLabel string) error {
	if modelData == nil {
		return fmt.Errorf("検証対象モデルが未設定です")
	}

	type namedTable struct {
		label      string
		duplicates []string
		unnamed    []int
	}
	tables := []namedTable{
		{"材質", modelData.Materials.DuplicateNames(), modelData.Materials.EmptyNameIndexes()},
		{"ボーン", modelData.Bones.DuplicateNames(), modelData.Bones.EmptyNameIndexes()},
		{"モーフ", modelData.Morphs.DuplicateNames(), modelData.Morphs.EmptyNameIndexes()},
		{"表示枠", modelData.DisplaySlots.DuplicateNames(), modelData.DisplaySlots.EmptyNameIndexes()},
		{"剛体", modelData.RigidBodies.DuplicateNames(), modelData.RigidBodies.EmptyNameIndexes()},
		{"ジョイント", modelData.Joints.DuplicateNames(), modelData.Joints.EmptyNameIndexes()},
	}

	for _, table := range tables {
		if len(table.duplicates) > 0 {
			return merr.New(merr.IDIdentityConflict,
				fmt.Sprintf("%s: %sテーブルに重複した名前があります: %s",
					sourceLabel, table.label, strings.Join(table.duplicates, ", ")), nil)
		}
		if len(table.unnamed) > 0 {
			return merr.New(merr.IDIdentityConflict,
				fmt.Sprintf("%s: %sテーブルに無名の要素があります: 位置 %v",
					sourceLabel, table.label, table.unnamed), nil)
		}
	}
	return nil
}

// checkVersionCompatible はターゲットと新規エクスポートのPMXバージョン一致を検証する。
// バージョンをまたぐマージは中断し、部分適用はしない。
func checkVersionCompatible(targetVersion, freshVersion float64) error {
	if targetVersion == freshVersion {
		return nil
	}
	return io_common.NewIoVersionMismatch(
		fmt.Sprintf("PMXバージョンが一致しません: ターゲット=%.1f 新規エクスポート=%.1f", targetVersion, freshVersion), nil)
}
