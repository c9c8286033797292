// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
	"github.com/miu200521358/mu_pmx_merge/pkg/usecase/port/moutput"
)

// ModelData はマージ対象モデルを表す。
type ModelData = model.PmxModel

// SaveOptions は保存時オプションを表す。
type SaveOptions = moutput.SaveOptions

// PatchProgressEventType はパッチ処理の進捗イベント種別を表す。
type PatchProgressEventType string

const (
	// PatchProgressEventTypeTargetLoaded はターゲット読み込み完了イベントを表す。
	PatchProgressEventTypeTargetLoaded PatchProgressEventType = "target_loaded"
	// PatchProgressEventTypeFreshResolved は新規エクスポート解決完了イベントを表す。
	PatchProgressEventTypeFreshResolved PatchProgressEventType = "fresh_resolved"
	// PatchProgressEventTypeElementsValidated は要素検証完了イベントを表す。
	PatchProgressEventTypeElementsValidated PatchProgressEventType = "elements_validated"
	// PatchProgressEventTypeFeaturesExtracted はフィーチャ抽出完了イベントを表す。
	PatchProgressEventTypeFeaturesExtracted PatchProgressEventType = "features_extracted"
	// PatchProgressEventTypePlanBuilt はマージ計画確定イベントを表す。
	PatchProgressEventTypePlanBuilt PatchProgressEventType = "plan_built"
	// PatchProgressEventTypeRemapCompleted はインデックス再配置完了イベントを表す。
	PatchProgressEventTypeRemapCompleted PatchProgressEventType = "remap_completed"
	// PatchProgressEventTypeSaved は保存完了イベントを表す。
	PatchProgressEventTypeSaved PatchProgressEventType = "saved"
)

// PatchProgressEvent はパッチ処理の進捗イベントを表す。
type PatchProgressEvent struct {
	Type         PatchProgressEventType
	FeatureCount int
	ReplaceCount int
	AppendCount  int
	RemoveCount  int
}

// IPatchProgressReporter はパッチ処理の進捗通知契約を表す。
type IPatchProgressReporter interface {
	// ReportPatchProgress はパッチ処理進捗を通知する。
	ReportPatchProgress(event PatchProgressEvent)
}

// PatchRequest はパッチ適用要求を表す。FreshModelが指定されていればFreshPathより優先する。
type PatchRequest struct {
	TargetPath       string
	FreshPath        string
	FreshModel       *ModelData
	Features         FeatureSet
	OutputPath       string
	Reader           moutput.IFileReader
	Writer           moutput.IFileWriter
	SaveOptions      SaveOptions
	ProgressReporter IPatchProgressReporter
}

// TableSummary は1テーブル分のマージ集計を表す。
type TableSummary struct {
	Kept     int
	Replaced int
	Appended int
	Removed  int
}

// MergeSummary はマージ計画の集計を表す。
type MergeSummary struct {
	Bones        TableSummary
	Materials    TableSummary
	Morphs       TableSummary
	DisplaySlots TableSummary
	RigidBodies  TableSummary
	Joints       TableSummary
}

// PatchResult はパッチ適用結果を表す。
type PatchResult struct {
	Model      *ModelData
	OutputPath string
	Summary    MergeSummary
	// Saved は実際にファイルへ書き出したかを表す。フィーチャ未選択時はfalse。
	Saved bool
}
