// 指示: miu200521358
package io_common

import (
	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/merr"
)

// SaveOptions は保存時のオプションを表す。将来の保存時挙動の拡張点として空で保持する。
type SaveOptions struct{}

// NewIoParseFailed はファイル解析失敗エラーを生成する。
func NewIoParseFailed(message string, cause error) error {
	return merr.New(merr.IDIoParseFailed, message, cause)
}

// NewIoExtInvalid は拡張子不正エラーを生成する。
func NewIoExtInvalid(message string, cause error) error {
	return merr.New(merr.IDIoExtInvalid, message, cause)
}

// NewIoFileNotFound はファイル未検出エラーを生成する。
func NewIoFileNotFound(message string, cause error) error {
	return merr.New(merr.IDIoFileNotFound, message, cause)
}

// NewIoFormatNotSupported は形式未対応エラーを生成する。
func NewIoFormatNotSupported(message string, cause error) error {
	return merr.New(merr.IDIoFormatNotSupported, message, cause)
}

// NewIoWriteFailed は書き込み失敗エラーを生成する。
func NewIoWriteFailed(message string, cause error) error {
	return merr.New(merr.IDIoWriteFailed, message, cause)
}

// NewIoVersionMismatch はPMXバージョン不一致エラーを生成する。
func NewIoVersionMismatch(message string, cause error) error {
	return merr.New(merr.IDIoVersionMismatch, message, cause)
}
