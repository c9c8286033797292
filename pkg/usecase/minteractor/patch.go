// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/logging"
)

// Patch は新規エクスポートの選択フィーチャをターゲットPMXへ取り込み、結果を保存する。
// フィーチャが1つも選択されていない場合はターゲットへ一切手を付けず、保存もしない。
func (uc *PmxMergeUsecase) Patch(request *PatchRequest) (*PatchResult, error) {
	if request == nil {
		return nil, fmt.Errorf("パッチ要求が未設定です")
	}
	if err := validateFeatureSet(request.Features); err != nil {
		return nil, err
	}

	freshModel, err := uc.resolveFreshModel(request)
	if err != nil {
		return nil, err
	}
	reportPatchProgress(request, PatchProgressEvent{Type: PatchProgressEventTypeFreshResolved})

	targetModel, err := uc.LoadModel(request.Reader, request.TargetPath)
	if err != nil {
		return nil, err
	}
	reportPatchProgress(request, PatchProgressEvent{Type: PatchProgressEventTypeTargetLoaded})

	if err := checkVersionCompatible(targetModel.Version, freshModel.Version); err != nil {
		return nil, err
	}
	if err := ValidateElements(targetModel, "ターゲット"); err != nil {
		return nil, err
	}
	if err := ValidateElements(freshModel, "新規エクスポート"); err != nil {
		return nil, err
	}
	reportPatchProgress(request, PatchProgressEvent{Type: PatchProgressEventTypeElementsValidated})

	fresh, err := ExtractFeatures(freshModel, request.Features)
	if err != nil {
		return nil, err
	}
	reportPatchProgress(request, PatchProgressEvent{
		Type:         PatchProgressEventTypeFeaturesExtracted,
		FeatureCount: request.Features.Count(),
	})

	plan, err := BuildMergePlan(targetModel, fresh)
	if err != nil {
		return nil, err
	}
	summary := plan.Summary()
	reportPatchProgress(request, PatchProgressEvent{
		Type:         PatchProgressEventTypePlanBuilt,
		FeatureCount: request.Features.Count(),
		ReplaceCount: summaryTotal(summary, func(t TableSummary) int { return t.Replaced }),
		AppendCount:  summaryTotal(summary, func(t TableSummary) int { return t.Appended }),
		RemoveCount:  summaryTotal(summary, func(t TableSummary) int { return t.Removed }),
	})
	logMergeSummary(request.Features, summary)

	mergedModel, err := ApplyMergePlan(targetModel, fresh, plan)
	if err != nil {
		return nil, err
	}
	reportPatchProgress(request, PatchProgressEvent{Type: PatchProgressEventTypeRemapCompleted})

	outputPath := strings.TrimSpace(request.OutputPath)
	if outputPath == "" {
		outputPath = request.TargetPath
	}
	result := &PatchResult{
		Model:      mergedModel,
		OutputPath: outputPath,
		Summary:    summary,
	}

	if request.Features.Count() == 0 {
		// 選択なしのパッチは完全な無操作とする。再保存による差分も発生させない。
		logPatchInfo("フィーチャが選択されていないため、%s には書き込みません", outputPath)
		return result, nil
	}

	mergedModel.SetPath(outputPath)
	if err := uc.SaveModel(request.Writer, outputPath, mergedModel, request.SaveOptions); err != nil {
		return nil, err
	}
	result.Saved = true
	reportPatchProgress(request, PatchProgressEvent{Type: PatchProgressEventTypeSaved})
	logPatchInfo("パッチ適用結果を %s へ保存しました", outputPath)

	return result, nil
}

// resolveFreshModel は新規エクスポートモデルを用意する。モデル指定があればパスより優先する。
func (uc *PmxMergeUsecase) resolveFreshModel(request *PatchRequest) (*ModelData, error) {
	if request.FreshModel != nil {
		return request.FreshModel, nil
	}
	if strings.TrimSpace(request.FreshPath) == "" {
		return nil, fmt.Errorf("新規エクスポートの指定がありません")
	}
	return uc.LoadModel(request.Reader, request.FreshPath)
}

func reportPatchProgress(request *PatchRequest, event PatchProgressEvent) {
	if request.ProgressReporter == nil {
		return
	}
	request.ProgressReporter.ReportPatchProgress(event)
}

func summaryTotal(summary MergeSummary, pick func(TableSummary) int) int {
	return pick(summary.Bones) +
		pick(summary.Materials) +
		pick(summary.Morphs) +
		pick(summary.DisplaySlots) +
		pick(summary.RigidBodies) +
		pick(summary.Joints)
}

// logMergeSummary はテーブルごとのマージ集計を冗長ログへ出す。
func logMergeSummary(features FeatureSet, summary MergeSummary) {
	logger := logging.DefaultLogger()
	if !logger.IsVerboseEnabled(logging.VERBOSE_PATCH) {
		return
	}
	logger.Verbose(logging.VERBOSE_PATCH, "選択フィーチャ: %s", strings.Join(features.Names(), ", "))
	for _, row := range []struct {
		label   string
		summary TableSummary
	}{
		{"ボーン", summary.Bones},
		{"材質", summary.Materials},
		{"モーフ", summary.Morphs},
		{"表示枠", summary.DisplaySlots},
		{"剛体", summary.RigidBodies},
		{"ジョイント", summary.Joints},
	} {
		logger.Verbose(logging.VERBOSE_PATCH, "%s: 維持 %d / 置換 %d / 追加 %d / 削除 %d",
			row.label, row.summary.Kept, row.summary.Replaced, row.summary.Appended, row.summary.Removed)
	}
}

func logPatchInfo(format string, params ...any) {
	logging.DefaultLogger().Info(format, params...)
}

func logPatchWarn(format string, params ...any) {
	logging.DefaultLogger().Warn(format, params...)
}

func logPatchVerbose(format string, params ...any) {
	logging.DefaultLogger().Verbose(logging.VERBOSE_PATCH, format, params...)
}
