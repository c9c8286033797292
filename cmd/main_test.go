// 指示: miu200521358
package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miu200521358/mu_pmx_merge/pkg/adapter/io_common"
	"github.com/miu200521358/mu_pmx_merge/pkg/adapter/io_model/pmx"
	"github.com/miu200521358/mu_pmx_merge/pkg/domain/mmath"
	"github.com/miu200521358/mu_pmx_merge/pkg/domain/model"
	"github.com/miu200521358/mu_pmx_merge/pkg/usecase/minteractor"
)

func TestParseOptionsWithFlags(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{"-target", "base.pmx", "-fresh", "export.pmx", "-features", "bones,morphs", "-out", "out.pmx"}, errBuf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.targetPath != "base.pmx" || opts.freshPath != "export.pmx" || opts.outputPath != "out.pmx" {
		t.Fatalf("paths mismatch: %+v", opts)
	}
	if !opts.features.Enabled(minteractor.FeatureBones) || !opts.features.Enabled(minteractor.FeatureMorphs) {
		t.Fatalf("features mismatch: %v", opts.features.Names())
	}
	if opts.features.Enabled(minteractor.FeatureMeshes) {
		t.Fatalf("unselected feature must stay disabled")
	}
}

func TestParseOptionsWithPositionals(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{"-features", "all", "base.pmx", "export.pmx", "out.pmx"}, errBuf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.targetPath != "base.pmx" || opts.freshPath != "export.pmx" || opts.outputPath != "out.pmx" {
		t.Fatalf("positional fallback mismatch: %+v", opts)
	}
	if opts.features.Count() != len(minteractor.AllFeatureTypes()) {
		t.Fatalf("all features must be selected: %d", opts.features.Count())
	}
}

func TestParseOptionsRequirePmxExt(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	_, err := parseOptions([]string{"-target", "base.vrm", "-fresh", "export.pmx", "-features", "bones"}, errBuf)
	if err == nil || !strings.Contains(err.Error(), ".pmx") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseOptionsRequireFeatures(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	_, err := parseOptions([]string{"-target", "base.pmx", "-fresh", "export.pmx"}, errBuf)
	if err == nil || !strings.Contains(err.Error(), "-features") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseFeatureOptionRejectsUnknownName(t *testing.T) {
	if _, err := parseFeatureOption("bones,softbodies"); err == nil {
		t.Fatalf("expected error for unknown feature")
	}
}

func TestResolveOutputPathDefaultsToTarget(t *testing.T) {
	out, err := resolveOutputPath(filepath.Join("work", "base.pmx"), "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if out != filepath.Join("work", "base.pmx") {
		t.Fatalf("output mismatch: %s", out)
	}
	if _, err := resolveOutputPath("base.pmx", "out.vmd"); err == nil {
		t.Fatalf("expected error for non-pmx output")
	}
}

func buildCliModel(t *testing.T, withLegR bool) *model.PmxModel {
	t.Helper()
	m := model.NewPmxModel()
	m.Name = "CLI検証"

	root := model.NewBone("ルート")
	root.EnglishName = "root"
	m.Bones.AppendRaw(root)
	waist := model.NewBone("腰")
	waist.EnglishName = "waist"
	waist.ParentIndex = 0
	waist.Position = mmath.NewVec3(0, 8, 0)
	m.Bones.AppendRaw(waist)
	if withLegR {
		waist.Position = mmath.NewVec3(0, 8.5, 0)
		legR := model.NewBone("右足")
		legR.EnglishName = "leg_R"
		legR.ParentIndex = 1
		m.Bones.AppendRaw(legR)
	}
	return m
}

func TestRunAppliesPatch(t *testing.T) {
	dir := t.TempDir()
	targetPath := filepath.Join(dir, "base.pmx")
	freshPath := filepath.Join(dir, "export.pmx")
	outputPath := filepath.Join(dir, "patched.pmx")

	rep := pmx.NewPmxRepository()
	if err := rep.Save(targetPath, buildCliModel(t, false), io_common.SaveOptions{}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := rep.Save(freshPath, buildCliModel(t, true), io_common.SaveOptions{}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	out := bytes.NewBuffer(nil)
	errOut := bytes.NewBuffer(nil)
	args := []string{"-target", targetPath, "-fresh", freshPath, "-features", "bones", "-out", outputPath}
	if err := run(args, out, errOut); err != nil {
		t.Fatalf("run failed: %v\n%s", err, errOut.String())
	}

	if !strings.Contains(out.String(), "パッチ適用完了") {
		t.Fatalf("completion message missing: %s", out.String())
	}

	patched, err := rep.Load(outputPath)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if patched.Bones.Len() != 3 {
		t.Fatalf("bone count mismatch: %d", patched.Bones.Len())
	}
	waist, err := patched.Bones.Get(1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if waist.Position.Y != 8.5 {
		t.Fatalf("waist transform not adopted: %v", waist.Position)
	}
}

func TestRunReportsPatchFailure(t *testing.T) {
	dir := t.TempDir()
	out := bytes.NewBuffer(nil)
	errOut := bytes.NewBuffer(nil)
	args := []string{"-target", filepath.Join(dir, "missing.pmx"), "-fresh", filepath.Join(dir, "missing2.pmx"), "-features", "bones"}
	if err := run(args, out, errOut); err == nil {
		t.Fatalf("expected failure for missing files")
	}
}
