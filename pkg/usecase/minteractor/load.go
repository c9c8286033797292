// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_pmx_merge/pkg/usecase/port/moutput"
)

// LoadModel はPMXモデルを読み込む。
func (uc *PmxMergeUsecase) LoadModel(rep moutput.IFileReader, path string) (*ModelData, error) {
	repo := rep
	if repo == nil {
		repo = uc.modelReader
	}
	if repo == nil {
		return nil, fmt.Errorf("モデル読み込みリポジトリが設定されていません")
	}
	return repo.Load(path)
}
