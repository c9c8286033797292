// 指示: miu200521358
package moutput

import (
	"github.com/miu200521358/mu_pmx_merge/pkg/adapter/io_common"
	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
)

// SaveOptions は保存時のオプションを表す。
type SaveOptions = io_common.SaveOptions

// IFileReader はモデル読み込み契約を表す。
type IFileReader interface {
	// CanLoad はパスが読み込み対象形式かを返す。
	CanLoad(path string) bool
	// Load はモデルを読み込む。
	Load(path string) (*model.PmxModel, error)
}

// IFileWriter はモデル書き込み契約を表す。
type IFileWriter interface {
	// Save はモデルを保存する。
	Save(path string, modelData *model.PmxModel, options SaveOptions) error
}
