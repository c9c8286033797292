// 指示: miu200521358
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_pmx_merge/pkg/adapter/io_model/pmx"
	"github.com/miu200521358/mu_pmx_merge/pkg/usecase/minteractor"
)

const (
	batchOutputDirMode = 0o755
)

// targetPatchPairs はターゲットPMXと新規エクスポートPMXの組を列挙する。
var targetPatchPairs = [][2]string{
	{
		"E:/MMD_E/202101_vroid/Pmx/Akami/あかみ.pmx",
		"E:/MMD_E/202101_vroid/Pmx/Akami/あかみ_export.pmx",
	},
	// {
	// 	"E:/MMD_E/202101_vroid/Pmx/ricos/リコス.pmx",
	// 	"E:/MMD_E/202101_vroid/Pmx/ricos/リコス_export.pmx",
	// },
	// {
	// 	"C:/Codex/mlib/mu_pmx_merge/internal/test_resources/pmx/standard_bones.pmx",
	// 	"C:/Codex/mlib/mu_pmx_merge/internal/test_resources/pmx/standard_bones_export.pmx",
	// },
}

// batchConfig はバッチパッチの実行設定を表す。
type batchConfig struct {
	OutputRoot string
	Features   minteractor.FeatureSet
	DryRun     bool
	FailFast   bool
}

// patchEntry は1モデル分のパッチ入力情報を表す。
type patchEntry struct {
	Index      int
	TargetPath string
	FreshPath  string
	ModelName  string
	CaseDir    string
	OutputPath string
}

// patchCaseResult は1モデル分のパッチ結果を表す。
type patchCaseResult struct {
	Entry         patchEntry
	Status        string
	Duration      time.Duration
	Err           error
	Summary       minteractor.MergeSummary
	ProgressInfo  string
	SummaryTotals string
}

// patchProgressCollector は Patch の進捗イベントを収集する。
type patchProgressCollector struct {
	eventCounts  map[minteractor.PatchProgressEventType]int
	featureMax   int
	replaceTotal int
	appendTotal  int
	removeTotal  int
}

// main はパッチ適用の一括検証を実行する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括パッチを実行し、終了コードを返す。
func run() int {
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	entries := buildPatchEntries(config.OutputRoot, targetPatchPairs)
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "パッチ対象モデルがありません")
		return 2
	}

	results := executeBatchPatch(config, entries)
	printBatchSummary(results)

	hasFailed := false
	for _, result := range results {
		if result.Status == "failed" {
			hasFailed = true
			break
		}
	}
	if hasFailed {
		return 1
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}
	outputRoot := flag.String("output-root", defaultOutputRoot, "パッチ結果の出力ルートディレクトリ")
	featureNames := flag.String("features", "all", "取り込むフィーチャのカンマ区切り (all で全選択)")
	dryRun := flag.Bool("dry-run", false, "実パッチせず、入力解決と出力先計画のみ表示する")
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	flag.Parse()

	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	features, err := parseBatchFeatures(*featureNames)
	if err != nil {
		return batchConfig{}, err
	}
	return batchConfig{
		OutputRoot: filepath.Clean(trimmedOutputRoot),
		Features:   features,
		DryRun:     *dryRun,
		FailFast:   *failFast,
	}, nil
}

// parseBatchFeatures はフィーチャ指定文字列を解析する。
func parseBatchFeatures(raw string) (minteractor.FeatureSet, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "all") {
		return minteractor.NewFeatureSet(minteractor.AllFeatureTypes()...), nil
	}
	names := strings.Split(trimmed, ",")
	features, err := minteractor.ParseFeatureNames(names)
	if err != nil {
		return nil, fmt.Errorf("features の解析に失敗しました: %w", err)
	}
	return features, nil
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	currentDir := filepath.Dir(currentFilePath)
	return filepath.Join(currentDir, "output"), nil
}

// buildPatchEntries は入力パス組からパッチ対象エントリを生成する。
func buildPatchEntries(outputRoot string, pairs [][2]string) []patchEntry {
	entries := make([]patchEntry, 0, len(pairs))
	for i, pair := range pairs {
		targetPath := normalizeInputPath(pair[0])
		freshPath := normalizeInputPath(pair[1])
		modelName := resolveModelName(pair[0])
		safeModelName := sanitizePathComponent(modelName)
		caseDirName := fmt.Sprintf("%03d_%s", i+1, safeModelName)
		caseDir := filepath.Join(outputRoot, caseDirName)
		outputPath := filepath.Join(caseDir, safeModelName+".pmx")
		entries = append(entries, patchEntry{
			Index:      i + 1,
			TargetPath: targetPath,
			FreshPath:  freshPath,
			ModelName:  modelName,
			CaseDir:    caseDir,
			OutputPath: outputPath,
		})
	}
	return entries
}

// executeBatchPatch は全モデルのパッチ処理を順次実行する。
func executeBatchPatch(config batchConfig, entries []patchEntry) []patchCaseResult {
	results := make([]patchCaseResult, 0, len(entries))
	repository := pmx.NewPmxRepository()
	usecase := minteractor.NewPmxMergeUsecase(minteractor.PmxMergeUsecaseDeps{
		ModelReader: repository,
		ModelWriter: repository,
	})

	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] パッチ開始: model=%s\n", entry.Index, total, entry.ModelName)
		result := patchModelEntry(usecase, config, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] パッチ成功: model=%s output=%s elapsed=%s\n", entry.Index, total, entry.ModelName, entry.OutputPath, result.Duration.Round(time.Millisecond))
			if strings.TrimSpace(result.SummaryTotals) != "" {
				fmt.Printf("[%d/%d] マージ集計: %s\n", entry.Index, total, result.SummaryTotals)
			}
			if strings.TrimSpace(result.ProgressInfo) != "" {
				fmt.Printf("[%d/%d] Patch進捗: %s\n", entry.Index, total, result.ProgressInfo)
			}
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: model=%s target=%s fresh=%s output=%s\n", entry.Index, total, entry.ModelName, entry.TargetPath, entry.FreshPath, entry.OutputPath)
		case "skipped_missing":
			fmt.Printf("[%d/%d] 入力不足でスキップ: model=%s reason=%v\n", entry.Index, total, entry.ModelName, result.Err)
		default:
			fmt.Printf("[%d/%d] パッチ失敗: model=%s reason=%v\n", entry.Index, total, entry.ModelName, result.Err)
			if config.FailFast {
				return results
			}
		}
	}
	return results
}

// patchModelEntry は1モデル分のパッチを実行する。
func patchModelEntry(usecase *minteractor.PmxMergeUsecase, config batchConfig, entry patchEntry) patchCaseResult {
	result := patchCaseResult{
		Entry:  entry,
		Status: "failed",
	}
	if _, err := os.Stat(entry.TargetPath); err != nil {
		result.Status = "skipped_missing"
		result.Err = err
		return result
	}
	if _, err := os.Stat(entry.FreshPath); err != nil {
		result.Status = "skipped_missing"
		result.Err = err
		return result
	}
	if config.DryRun {
		result.Status = "dry_run"
		return result
	}
	if err := os.MkdirAll(entry.CaseDir, batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	startedAt := time.Now()
	progressCollector := newPatchProgressCollector()
	patched, err := usecase.Patch(&minteractor.PatchRequest{
		TargetPath:       entry.TargetPath,
		FreshPath:        entry.FreshPath,
		Features:         config.Features,
		OutputPath:       entry.OutputPath,
		ProgressReporter: progressCollector,
	})
	if err != nil {
		result.Err = fmt.Errorf("Patchに失敗しました: %w", err)
		return result
	}
	if patched == nil || patched.Model == nil {
		result.Err = errors.New("Patch結果が空です")
		return result
	}
	if !patched.Saved {
		result.Err = errors.New("Patch結果が保存されていません")
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.Summary = patched.Summary
	result.SummaryTotals = formatSummaryTotals(patched.Summary)
	result.ProgressInfo = progressCollector.Summary()
	return result
}

// formatSummaryTotals はマージ集計を1行の要約文字列へ整形する。
func formatSummaryTotals(summary minteractor.MergeSummary) string {
	tables := []minteractor.TableSummary{
		summary.Bones,
		summary.Materials,
		summary.Morphs,
		summary.DisplaySlots,
		summary.RigidBodies,
		summary.Joints,
	}
	kept := 0
	replaced := 0
	appended := 0
	removed := 0
	for _, table := range tables {
		kept += table.Kept
		replaced += table.Replaced
		appended += table.Appended
		removed += table.Removed
	}
	return fmt.Sprintf("kept=%d replaced=%d appended=%d removed=%d", kept, replaced, appended, removed)
}

// printBatchSummary はパッチ結果の集計を標準出力へ表示する。
func printBatchSummary(results []patchCaseResult) {
	succeeded := 0
	failed := 0
	skipped := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		case "skipped_missing":
			skipped++
		default:
			failed++
		}
	}
	fmt.Printf(
		"バッチパッチサマリ: total=%d succeeded=%d failed=%d skipped_missing=%d dry_run=%d\n",
		len(results),
		succeeded,
		failed,
		skipped,
		dryRun,
	)
}

// resolveModelName は入力パスから拡張子を除いたモデル名を返す。
func resolveModelName(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	ext := filepath.Ext(base)
	name := strings.TrimSpace(strings.TrimSuffix(base, ext))
	if name == "" {
		return "model"
	}
	return name
}

// normalizeInputPath は入力パスを実行環境向けに正規化する。
func normalizeInputPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return filepath.Clean(convertWindowsPathToWsl(path))
}

// convertWindowsPathToWsl は Linux 実行時に Windows パスを WSL パスへ変換する。
func convertWindowsPathToWsl(path string) string {
	trimmed := strings.TrimSpace(path)
	if runtime.GOOS != "linux" {
		return trimmed
	}
	if len(trimmed) < 2 || trimmed[1] != ':' {
		return trimmed
	}
	drive := strings.ToLower(trimmed[:1])
	rest := strings.ReplaceAll(trimmed[2:], "\\", "/")
	if rest == "" {
		return filepath.ToSlash(filepath.Join("/mnt", drive))
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "model"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "model"
	}
	return replaced
}

// newPatchProgressCollector は Patch 進捗収集器を生成する。
func newPatchProgressCollector() *patchProgressCollector {
	return &patchProgressCollector{
		eventCounts: map[minteractor.PatchProgressEventType]int{},
	}
}

// ReportPatchProgress は Patch の進捗イベントを収集する。
func (collector *patchProgressCollector) ReportPatchProgress(event minteractor.PatchProgressEvent) {
	if collector == nil {
		return
	}
	if collector.eventCounts == nil {
		collector.eventCounts = map[minteractor.PatchProgressEventType]int{}
	}
	collector.eventCounts[event.Type]++
	if event.FeatureCount > collector.featureMax {
		collector.featureMax = event.FeatureCount
	}
	collector.replaceTotal += event.ReplaceCount
	collector.appendTotal += event.AppendCount
	collector.removeTotal += event.RemoveCount
}

// Summary は収集した Patch 進捗の要約文字列を返す。
func (collector *patchProgressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for stageType := range collector.eventCounts {
		types = append(types, string(stageType))
	}
	sort.Strings(types)
	return fmt.Sprintf(
		"events=%d features=%d replace=%d append=%d remove=%d stages=%s",
		len(collector.eventCounts),
		collector.featureMax,
		collector.replaceTotal,
		collector.appendTotal,
		collector.removeTotal,
		strings.Join(types, ","),
	)
}
