// 指示: miu200521358
// Package messages はCLI表示に使うメッセージを提供する。
package messages

// メッセージ一覧。
const (
	LabelTargetPath = "ターゲットPMXファイルパス"
	LabelFreshPath  = "新規エクスポートPMXファイルパス"
	LabelFeatures   = "取り込むフィーチャ (カンマ区切り / all)"
	LabelOutputPath = "出力PMXファイルパス (省略時はターゲットを上書き)"
	LabelVerbose    = "冗長ログを出力する"

	MessageTargetRequired   = "ターゲットPMXファイルを指定してください (-target)"
	MessageFreshRequired    = "新規エクスポートPMXファイルを指定してください (-fresh)"
	MessageFeaturesRequired = "取り込むフィーチャを指定してください (-features)"
	MessageTargetExt        = "ターゲット拡張子が .pmx ではありません: %s"
	MessageFreshExt         = "新規エクスポート拡張子が .pmx ではありません: %s"
	MessageOutputExt        = "出力拡張子が .pmx ではありません: %s"

	LogPatchStart    = "[mu_pmx_merge] パッチ適用開始: %s <- %s\n"
	LogFeatureList   = "[mu_pmx_merge] 選択フィーチャ: %s\n"
	LogTableSummary  = "[mu_pmx_merge] %s: 維持 %d / 置換 %d / 追加 %d / 削除 %d\n"
	LogPatchComplete = "[mu_pmx_merge] パッチ適用完了: %s\n"
	LogPatchSkipped  = "[mu_pmx_merge] 取り込む変更がないため、書き込みを行いませんでした\n"
)
