// 指示: miu200521358
package merr

import (
	"errors"
	"fmt"
)

// エラーIDはパッチ処理全体で分類に使う。141xx が入出力、143xx がマージ判定。
const (
	// IDIoParseFailed はファイル解析失敗を表す。
	IDIoParseFailed = "14101"
	// IDIoExtInvalid は拡張子不正を表す。
	IDIoExtInvalid = "14102"
	// IDIoFileNotFound はファイル未検出を表す。
	IDIoFileNotFound = "14103"
	// IDIoFormatNotSupported は形式未対応を表す。
	IDIoFormatNotSupported = "14104"
	// IDIoWriteFailed は書き込み失敗を表す。
	IDIoWriteFailed = "14105"
	// IDIoVersionMismatch はPMXバージョン不一致を表す。
	IDIoVersionMismatch = "14106"
	// IDUnsupportedFeature は未対応フィーチャ指定を表す。
	IDUnsupportedFeature = "14301"
	// IDIdentityConflict は識別キー重複を表す。
	IDIdentityConflict = "14302"
	// IDDanglingReference は参照先消失を表す。
	IDDanglingReference = "14303"
)

// MError はエラーID付きのエラーを表す。
type MError struct {
	id      string
	message string
	cause   error
}

// New はエラーID付きエラーを生成する。
func New(id string, message string, cause error) *MError {
	return &MError{id: id, message: message, cause: cause}
}

// Error はエラー文字列を返す。
func (e *MError) Error() string {
	if e == nil {
		return ""
	}
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.id, e.message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.id, e.message, e.cause)
}

// Unwrap は内包エラーを返す。
func (e *MError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// ID はエラーIDを返す。
func (e *MError) ID() string {
	if e == nil {
		return ""
	}
	return e.id
}

// ExtractErrorID はエラー連鎖からエラーIDを抽出する。未検出時は空文字を返す。
func ExtractErrorID(err error) string {
	var me *MError
	if errors.As(err, &me) {
		return me.ID()
	}
	return ""
}
