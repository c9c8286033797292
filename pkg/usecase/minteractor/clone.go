// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
)

// cloneEntity は要素を複製する。マージ後のモデルが読み込み元の要素と実体を共有しないようにする。
func cloneEntity[T any](src *T) (*T, error) {
	if src == nil {
		return nil, fmt.Errorf("複製対象が未設定です")
	}
	dst := new(T)
	if err := deepcopy.Copy(dst, src); err != nil {
		return nil, fmt.Errorf("要素の複製に失敗しました: %w", err)
	}
	return dst, nil
}

// cloneEntities は要素列を複製する。
func cloneEntities[T any](src []*T) ([]*T, error) {
	cloned := make([]*T, 0, len(src))
	for i, v := range src {
		c, err := cloneEntity(v)
		if err != nil {
			return nil, fmt.Errorf("要素[%d]: %w", i, err)
		}
		cloned = append(cloned, c)
	}
	return cloned, nil
}

// cloneMorph はモーフを複製する。オフセットはインタフェース型のため手動で複製する。
func cloneMorph(src *model.Morph) (*model.Morph, error) {
	if src == nil {
		return nil, fmt.Errorf("複製対象モーフが未設定です")
	}
	dst := &model.Morph{
		Name:        src.Name,
		EnglishName: src.EnglishName,
		Panel:       src.Panel,
		MorphType:   src.MorphType,
	}
	for i, offset := range src.Offsets {
		cloned, err := cloneMorphOffset(offset)
		if err != nil {
			return nil, fmt.Errorf("モーフ %s オフセット[%d]: %w", src.Name, i, err)
		}
		dst.Offsets = append(dst.Offsets, cloned)
	}
	return dst, nil
}

// cloneMorphs はモーフ列を複製する。
func cloneMorphs(src []*model.Morph) ([]*model.Morph, error) {
	cloned := make([]*model.Morph, 0, len(src))
	for _, m := range src {
		c, err := cloneMorph(m)
		if err != nil {
			return nil, err
		}
		cloned = append(cloned, c)
	}
	return cloned, nil
}

func cloneMorphOffset(offset model.IMorphOffset) (model.IMorphOffset, error) {
	switch o := offset.(type) {
	case *model.GroupMorphOffset:
		c := *o
		return &c, nil
	case *model.VertexMorphOffset:
		c := *o
		return &c, nil
	case *model.BoneMorphOffset:
		c := *o
		return &c, nil
	case *model.UvMorphOffset:
		c := *o
		return &c, nil
	case *model.MaterialMorphOffset:
		c := *o
		return &c, nil
	case *model.FlipMorphOffset:
		c := *o
		return &c, nil
	case *model.ImpulseMorphOffset:
		c := *o
		return &c, nil
	}
	return nil, fmt.Errorf("未対応のオフセット型です: %T", offset)
}
