// 指示: miu200521358
package pmx

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeText はPMX文字列バイト列をUTF-8文字列へ復号する。
func decodeText(raw []byte, encoding model.TextEncoding) (string, error) {
	switch encoding {
	case model.TEXT_ENCODING_UTF16LE:
		decoded, err := utf16le.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("UTF-16LE文字列の復号に失敗しました: %w", err)
		}
		return string(decoded), nil
	case model.TEXT_ENCODING_UTF8:
		return string(raw), nil
	}
	return "", fmt.Errorf("未対応の文字符号化方式です: %d", encoding)
}

// encodeText はUTF-8文字列をPMX文字列バイト列へ符号化する。
func encodeText(text string, encoding model.TextEncoding) ([]byte, error) {
	switch encoding {
	case model.TEXT_ENCODING_UTF16LE:
		encoded, err := utf16le.NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("UTF-16LE文字列の符号化に失敗しました: %w", err)
		}
		return encoded, nil
	case model.TEXT_ENCODING_UTF8:
		return []byte(text), nil
	}
	return nil, fmt.Errorf("未対応の文字符号化方式です: %d", encoding)
}
