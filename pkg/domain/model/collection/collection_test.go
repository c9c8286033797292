// 指示: miu200521358
package collection

import (
	"testing"
)

type element struct {
	name string
}

func TestIndexedCollectionAppendAndGet(t *testing.T) {
	c := NewIndexedCollection[*element]()
	if c.Len() != 0 {
		t.Fatalf("new collection must be empty")
	}
	if index := c.AppendRaw(&element{name: "a"}); index != 0 {
		t.Fatalf("first append position mismatch: %d", index)
	}
	c.AppendRaw(&element{name: "b"})

	v, err := c.Get(1)
	if err != nil || v.name != "b" {
		t.Fatalf("get mismatch: %v %v", v, err)
	}
	if _, err := c.Get(2); err == nil {
		t.Fatalf("out of range get must fail")
	}
	if _, err := c.Get(-1); err == nil {
		t.Fatalf("negative get must fail")
	}
}

func TestIndexedCollectionRemoveAllCompacts(t *testing.T) {
	c := NewIndexedCollection[*element]()
	for _, n := range []string{"a", "b", "c", "d"} {
		c.AppendRaw(&element{name: n})
	}

	result := c.RemoveAll(map[int]bool{1: true, 3: true})

	if c.Len() != 2 {
		t.Fatalf("length after removal mismatch: %d", c.Len())
	}
	expected := []int{0, -1, 1, -1}
	for i, want := range expected {
		if result.OldToNew[i] != want {
			t.Fatalf("old-to-new mismatch at %d: %d != %d", i, result.OldToNew[i], want)
		}
	}
	v, _ := c.Get(1)
	if v.name != "c" {
		t.Fatalf("remaining order mismatch: %s", v.name)
	}
}

func TestNamedCollectionLookups(t *testing.T) {
	c := NewNamedCollection(func(e *element) string { return e.name })
	c.AppendRaw(&element{name: "腰"})
	c.AppendRaw(&element{name: "足"})

	if index, ok := c.IndexByName("足"); !ok || index != 1 {
		t.Fatalf("index lookup mismatch: %d %v", index, ok)
	}
	if _, ok := c.GetByName("腕"); ok {
		t.Fatalf("missing name must not resolve")
	}
	if !c.ContainsByName("腰") {
		t.Fatalf("contains lookup failed")
	}
}

func TestNamedCollectionDuplicateAndEmptyNames(t *testing.T) {
	c := NewNamedCollection(func(e *element) string { return e.name })
	c.AppendRaw(&element{name: "腰"})
	c.AppendRaw(&element{name: ""})
	c.AppendRaw(&element{name: "腰"})
	c.AppendRaw(&element{name: "腰"})

	dups := c.DuplicateNames()
	if len(dups) != 1 || dups[0] != "腰" {
		t.Fatalf("duplicate detection mismatch: %v", dups)
	}
	empty := c.EmptyNameIndexes()
	if len(empty) != 1 || empty[0] != 1 {
		t.Fatalf("empty name detection mismatch: %v", empty)
	}

	// 先着の位置が名前引きに残る
	if index, _ := c.IndexByName("腰"); index != 0 {
		t.Fatalf("first occurrence must win: %d", index)
	}
}

func TestNamedCollectionRemoveAllRebuildsNameIndex(t *testing.T) {
	c := NewNamedCollection(func(e *element) string { return e.name })
	c.AppendRaw(&element{name: "a"})
	c.AppendRaw(&element{name: "b"})
	c.AppendRaw(&element{name: "c"})

	c.RemoveAll(map[int]bool{0: true})

	if index, ok := c.IndexByName("b"); !ok || index != 0 {
		t.Fatalf("name index not rebuilt: %d %v", index, ok)
	}
	if c.ContainsByName("a") {
		t.Fatalf("removed name must be dropped from the index")
	}
}
