// 指示: miu200521358
package model

// DisplayType は表示枠エントリの参照先種別を表す。
type DisplayType byte

const (
	// DISPLAY_TYPE_BONE はボーン参照を表す。
	DISPLAY_TYPE_BONE DisplayType = 0
	// DISPLAY_TYPE_MORPH はモーフ参照を表す。
	DISPLAY_TYPE_MORPH DisplayType = 1
)

// DisplaySlotReference は表示枠の1エントリを表す。
type DisplaySlotReference struct {
	DisplayType DisplayType
	Index       int
}

// DisplaySlot は表示枠を表す。識別キーは日本語名のみ。
type DisplaySlot struct {
	Name        string
	EnglishName string
	// SpecialFlag はRoot/表情の特殊枠で1。特殊枠は削除できない。
	SpecialFlag byte
	References  []DisplaySlotReference
}

// NewDisplaySlot は表示枠を生成する。
func NewDisplaySlot(name string) *DisplaySlot {
	return &DisplaySlot{Name: name}
}
