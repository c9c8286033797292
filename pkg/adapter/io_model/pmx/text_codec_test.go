// 指示: miu200521358
package pmx

import (
	"testing"

	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
)

func TestTextCodecRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		encoding model.TextEncoding
		text     string
	}{
		{"utf16le", model.TEXT_ENCODING_UTF16LE, "全ての親"},
		{"utf16le ascii", model.TEXT_ENCODING_UTF16LE, "root bone"},
		{"utf16le empty", model.TEXT_ENCODING_UTF16LE, ""},
		{"utf8", model.TEXT_ENCODING_UTF8, "左足ＩＫ"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			raw, err := encodeText(c.text, c.encoding)
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			decoded, err := decodeText(raw, c.encoding)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if decoded != c.text {
				t.Fatalf("round trip mismatch: %q != %q", decoded, c.text)
			}
		})
	}
}

func TestTextCodecUtf16ByteLength(t *testing.T) {
	raw, err := encodeText("腰", model.TEXT_ENCODING_UTF16LE)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("utf16 encoding should use 2 bytes per BMP rune: %d", len(raw))
	}
}
