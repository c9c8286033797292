// 指示: miu200521358
package pmx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_pmx_merge/pkg/adapter/io_common"
	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/logging"
)

// PmxRepository はPMXファイルの読み書きを担う。
type PmxRepository struct{}

// NewPmxRepository はPMXリポジトリを生成する。
func NewPmxRepository() *PmxRepository {
	return &PmxRepository{}
}

// CanLoad はパスがPMX形式かを返す。
func (rep *PmxRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pmx")
}

// Load はPMXファイルを読み込む。
func (rep *PmxRepository) Load(path string) (*model.PmxModel, error) {
	if !rep.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(fmt.Sprintf("拡張子が .pmx ではありません: %s", path), nil)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, io_common.NewIoFileNotFound(fmt.Sprintf("PMXファイルが見つかりません: %s", path), err)
		}
		return nil, io_common.NewIoParseFailed(fmt.Sprintf("PMXファイルを開けません: %s", path), err)
	}
	defer f.Close()

	modelData, err := readModel(f)
	if err != nil {
		return nil, err
	}
	modelData.SetPath(path)
	reportLoadCounts(path, modelData)
	return modelData, nil
}

// Save はモデルをPMXファイルへ保存する。一時ファイルへ書き切ってからリネームで置き換える。
func (rep *PmxRepository) Save(path string, modelData *model.PmxModel, options io_common.SaveOptions) error {
	if modelData == nil {
		return io_common.NewIoWriteFailed("保存対象モデルが未設定です", nil)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pmx") {
		return io_common.NewIoExtInvalid(fmt.Sprintf("保存先拡張子が .pmx ではありません: %s", path), nil)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return io_common.NewIoWriteFailed(fmt.Sprintf("一時ファイルの作成に失敗しました: %s", dir), err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if err := writeModel(tmp, modelData); err != nil {
		cleanup()
		return io_common.NewIoWriteFailed(fmt.Sprintf("PMXの書き出しに失敗しました: %s", path), err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return io_common.NewIoWriteFailed(fmt.Sprintf("一時ファイルの同期に失敗しました: %s", tmpPath), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return io_common.NewIoWriteFailed(fmt.Sprintf("一時ファイルのクローズに失敗しました: %s", tmpPath), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return io_common.NewIoWriteFailed(fmt.Sprintf("保存先の置き換えに失敗しました: %s", path), err)
	}
	return nil
}

// reportLoadCounts は読み込んだ各テーブルの件数を冗長ログへ出す。
func reportLoadCounts(path string, modelData *model.PmxModel) {
	logger := logging.DefaultLogger()
	if logger == nil || !logger.IsVerboseEnabled(logging.VERBOSE_IO) {
		return
	}
	logger.Verbose(logging.VERBOSE_IO,
		"読み込み完了 %s: 頂点=%d 面=%d テクスチャ=%d 材質=%d ボーン=%d モーフ=%d 表示枠=%d 剛体=%d ジョイント=%d",
		filepath.Base(path),
		modelData.Vertices.Len(), modelData.Faces.Len(), modelData.Textures.Len(),
		modelData.Materials.Len(), modelData.Bones.Len(), modelData.Morphs.Len(),
		modelData.DisplaySlots.Len(), modelData.RigidBodies.Len(), modelData.Joints.Len())
}
