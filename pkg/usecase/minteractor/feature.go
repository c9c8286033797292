// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/merr"
)

// FeatureType はパッチ対象フィーチャを表す。
type FeatureType string

const (
	// FeatureMeshes は頂点・面のメッシュ形状を表す。
	FeatureMeshes FeatureType = "meshes"
	// FeatureMaterials は材質設定を表す。
	FeatureMaterials FeatureType = "materials"
	// FeatureBones はボーンを表す。
	FeatureBones FeatureType = "bones"
	// FeatureMorphs はモーフを表す。
	FeatureMorphs FeatureType = "morphs"
	// FeatureDisplayFrames は表示枠を表す。
	FeatureDisplayFrames FeatureType = "displayFrames"
	// FeaturePhysics は剛体とジョイントを表す。
	FeaturePhysics FeatureType = "physics"
)

// AllFeatureTypes は全フィーチャを定義順で返す。
func AllFeatureTypes() []FeatureType {
	return []FeatureType{
		FeatureMeshes,
		FeatureMaterials,
		FeatureBones,
		FeatureMorphs,
		FeatureDisplayFrames,
		FeaturePhysics,
	}
}

// FeatureSet は有効化されたフィーチャの集合を表す。未指定のフィーチャはターゲット維持。
type FeatureSet map[FeatureType]bool

// NewFeatureSet は指定フィーチャを有効化した集合を生成する。
func NewFeatureSet(features ...FeatureType) FeatureSet {
	set := FeatureSet{}
	for _, f := range features {
		set[f] = true
	}
	return set
}

// ParseFeatureNames はフィーチャ名の列を解析する。未知の名前は未対応エラーを返す。
func ParseFeatureNames(names []string) (FeatureSet, error) {
	known := map[string]FeatureType{}
	for _, f := range AllFeatureTypes() {
		known[strings.ToLower(string(f))] = f
	}
	set := FeatureSet{}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		feature, ok := known[strings.ToLower(name)]
		if !ok {
			return nil, merr.New(merr.IDUnsupportedFeature, fmt.Sprintf("未対応のフィーチャ名です: %s", name), nil)
		}
		set[feature] = true
	}
	return set, nil
}

// Enabled はフィーチャが有効かを返す。
func (s FeatureSet) Enabled(feature FeatureType) bool {
	return s != nil && s[feature]
}

// Count は有効フィーチャ数を返す。
func (s FeatureSet) Count() int {
	count := 0
	for _, enabled := range s {
		if enabled {
			count++
		}
	}
	return count
}

// Names は有効フィーチャ名を定義順で返す。
func (s FeatureSet) Names() []string {
	var names []string
	for _, f := range AllFeatureTypes() {
		if s.Enabled(f) {
			names = append(names, string(f))
		}
	}
	return names
}
