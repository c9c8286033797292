// 指示: miu200521358
package collection

import "fmt"

// IndexedCollection は位置インデックスのみで参照される要素列を表す。
type IndexedCollection[T any] struct {
	values []T
}

// NewIndexedCollection は要素列を生成する。
func NewIndexedCollection[T any]() *IndexedCollection[T] {
	return &IndexedCollection[T]{values: []T{}}
}

// Len は要素数を返す。
func (c *IndexedCollection[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}

// Get は指定位置の要素を返す。
func (c *IndexedCollection[T]) Get(index int) (T, error) {
	var zero T
	if c == nil || index < 0 || index >= len(c.values) {
		return zero, fmt.Errorf("要素位置が範囲外です: %d", index)
	}
	return c.values[index], nil
}

// AppendRaw は要素を末尾へ追加し、位置を返す。
func (c *IndexedCollection[T]) AppendRaw(value T) int {
	c.values = append(c.values, value)
	return len(c.values) - 1
}

// Values は要素列を返す。返却スライスは内部共有であり、呼び出し側は並びを変更しない。
func (c *IndexedCollection[T]) Values() []T {
	if c == nil {
		return nil
	}
	return c.values
}

// RemoveResult は要素削除後の位置変換を表す。
type RemoveResult struct {
	// OldToNew は旧位置から新位置への変換を表す。削除要素は-1。
	OldToNew []int
}

// RemoveAll は指定位置の要素をまとめて削除し、残要素を前詰めする。
func (c *IndexedCollection[T]) RemoveAll(indexes map[int]bool) RemoveResult {
	oldToNew := make([]int, len(c.values))
	kept := c.values[:0]
	next := 0
	for i, v := range c.values {
		if indexes[i] {
			oldToNew[i] = -1
			continue
		}
		kept = append(kept, v)
		oldToNew[i] = next
		next++
	}
	c.values = kept
	return RemoveResult{OldToNew: oldToNew}
}

// NamedCollection は名前キー付きの要素列を表す。
type NamedCollection[T any] struct {
	IndexedCollection[T]
	nameOf func(T) string
	byName map[string]int
}

// NewNamedCollection は名前キー付き要素列を生成する。
func NewNamedCollection[T any](nameOf func(T) string) *NamedCollection[T] {
	return &NamedCollection[T]{
		IndexedCollection: IndexedCollection[T]{values: []T{}},
		nameOf:            nameOf,
		byName:            map[string]int{},
	}
}

// AppendRaw は要素を末尾へ追加し、位置を返す。同名が既にある場合は先着の名前引きを保持する。
func (c *NamedCollection[T]) AppendRaw(value T) int {
	index := c.IndexedCollection.AppendRaw(value)
	name := c.nameOf(value)
	if _, ok := c.byName[name]; !ok {
		c.byName[name] = index
	}
	return index
}

// RemoveAll は指定位置の要素をまとめて削除し、名前引きを作り直す。
func (c *NamedCollection[T]) RemoveAll(indexes map[int]bool) RemoveResult {
	result := c.IndexedCollection.RemoveAll(indexes)
	c.byName = map[string]int{}
	for i, v := range c.values {
		name := c.nameOf(v)
		if _, ok := c.byName[name]; !ok {
			c.byName[name] = i
		}
	}
	return result
}

// GetByName は名前で要素を引く。
func (c *NamedCollection[T]) GetByName(name string) (T, bool) {
	var zero T
	index, ok := c.byName[name]
	if !ok {
		return zero, false
	}
	return c.values[index], true
}

// IndexByName は名前から位置を引く。
func (c *NamedCollection[T]) IndexByName(name string) (int, bool) {
	index, ok := c.byName[name]
	return index, ok
}

// ContainsByName は名前の有無を返す。
func (c *NamedCollection[T]) ContainsByName(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// DuplicateNames は重複した名前を出現順で返す。
func (c *NamedCollection[T]) DuplicateNames() []string {
	seen := map[string]int{}
	var dups []string
	for _, v := range c.values {
		name := c.nameOf(v)
		seen[name]++
		if seen[name] == 2 {
			dups = append(dups, name)
		}
	}
	return dups
}

// EmptyNameIndexes は名前が空の要素位置を返す。
func (c *NamedCollection[T]) EmptyNameIndexes() []int {
	var indexes []int
	for i, v := range c.values {
		if c.nameOf(v) == "" {
			indexes = append(indexes, i)
		}
	}
	return indexes
}
