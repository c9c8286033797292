// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_pmx_merge/pkg/usecase/port/moutput"

// PmxMergeUsecaseDeps はパッチ適用ユースケースの依存を表す。
type PmxMergeUsecaseDeps struct {
	ModelReader moutput.IFileReader
	ModelWriter moutput.IFileWriter
}

// PmxMergeUsecase はPMXパッチ適用処理をまとめたユースケースを表す。
type PmxMergeUsecase struct {
	modelReader moutput.IFileReader
	modelWriter moutput.IFileWriter
}

// NewPmxMergeUsecase はパッチ適用ユースケースを生成する。
func NewPmxMergeUsecase(deps PmxMergeUsecaseDeps) *PmxMergeUsecase {
	return &PmxMergeUsecase{
		modelReader: deps.ModelReader,
		modelWriter: deps.ModelWriter,
	}
}
