// 指示: miu200521358
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/miu200521358/mu_pmx_merge/pkg/adapter/io_model/pmx"
	"github.com/miu200521358/mu_pmx_merge/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_pmx_merge/pkg/shared/base/logging"
	"github.com/miu200521358/mu_pmx_merge/pkg/usecase/minteractor"
)

// options はCLI引数を保持する。
type options struct {
	targetPath string
	freshPath  string
	outputPath string
	features   minteractor.FeatureSet
	verbose    bool
}

// main は新規エクスポートからターゲットPMXへのパッチ適用を実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	_ = godotenv.Load()

	opts, err := parseOptions(args, errOut)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(errOut)
	if opts.verbose {
		logger.EnableVerbose(logging.VERBOSE_PATCH, logging.VERBOSE_IO)
	}
	logging.SetDefaultLogger(logger)

	repository := pmx.NewPmxRepository()
	if !repository.CanLoad(opts.targetPath) {
		return fmt.Errorf("ターゲット形式が未対応です: %s", opts.targetPath)
	}
	if !repository.CanLoad(opts.freshPath) {
		return fmt.Errorf("新規エクスポート形式が未対応です: %s", opts.freshPath)
	}

	outputPath, err := resolveOutputPath(opts.targetPath, opts.outputPath)
	if err != nil {
		return err
	}
	if err := ensureOutputDir(outputPath); err != nil {
		return err
	}

	usecase := minteractor.NewPmxMergeUsecase(minteractor.PmxMergeUsecaseDeps{
		ModelReader: repository,
		ModelWriter: repository,
	})

	fmt.Fprintf(out, messages.LogPatchStart, opts.targetPath, opts.freshPath)
	fmt.Fprintf(out, messages.LogFeatureList, strings.Join(opts.features.Names(), ", "))

	result, err := usecase.Patch(&minteractor.PatchRequest{
		TargetPath: opts.targetPath,
		FreshPath:  opts.freshPath,
		Features:   opts.features,
		OutputPath: outputPath,
	})
	if err != nil {
		return fmt.Errorf("パッチ適用に失敗しました: %w", err)
	}

	printSummary(out, result.Summary)
	if result.Saved {
		fmt.Fprintf(out, messages.LogPatchComplete, result.OutputPath)
	} else {
		fmt.Fprint(out, messages.LogPatchSkipped)
	}
	return nil
}

// parseOptions はCLI引数を解析する。未指定の項目は環境変数から補う。
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("mu_pmx_merge", flag.ContinueOnError)
	fs.SetOutput(errOut)

	target := fs.String("target", "", messages.LabelTargetPath)
	fresh := fs.String("fresh", "", messages.LabelFreshPath)
	features := fs.String("features", "", messages.LabelFeatures)
	out := fs.String("out", "", messages.LabelOutputPath)
	verbose := fs.Bool("verbose", false, messages.LabelVerbose)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if *target == "" && fs.NArg() > 0 {
		*target = fs.Arg(0)
	}
	if *fresh == "" && fs.NArg() > 1 {
		*fresh = fs.Arg(1)
	}
	if *out == "" && fs.NArg() > 2 {
		*out = fs.Arg(2)
	}
	if *features == "" {
		*features = os.Getenv("MU_PMX_MERGE_FEATURES")
	}
	if !*verbose {
		*verbose = isEnvEnabled("MU_PMX_MERGE_VERBOSE")
	}

	if *target == "" {
		return options{}, fmt.Errorf("%s", messages.MessageTargetRequired)
	}
	if *fresh == "" {
		return options{}, fmt.Errorf("%s", messages.MessageFreshRequired)
	}
	if !strings.EqualFold(filepath.Ext(*target), ".pmx") {
		return options{}, fmt.Errorf(messages.MessageTargetExt, *target)
	}
	if !strings.EqualFold(filepath.Ext(*fresh), ".pmx") {
		return options{}, fmt.Errorf(messages.MessageFreshExt, *fresh)
	}
	if *features == "" {
		return options{}, fmt.Errorf("%s", messages.MessageFeaturesRequired)
	}

	featureSet, err := parseFeatureOption(*features)
	if err != nil {
		return options{}, err
	}

	return options{
		targetPath: *target,
		freshPath:  *fresh,
		outputPath: *out,
		features:   featureSet,
		verbose:    *verbose,
	}, nil
}

// parseFeatureOption はカンマ区切りのフィーチャ指定を解析する。"all" は全フィーチャを表す。
func parseFeatureOption(value string) (minteractor.FeatureSet, error) {
	if strings.EqualFold(strings.TrimSpace(value), "all") {
		return minteractor.NewFeatureSet(minteractor.AllFeatureTypes()...), nil
	}
	var names []string
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return minteractor.ParseFeatureNames(names)
}

func isEnvEnabled(key string) bool {
	value := strings.TrimSpace(os.Getenv(key))
	return strings.EqualFold(value, "1") || strings.EqualFold(value, "true")
}

// resolveOutputPath は出力PMXパスを解決する。省略時はターゲットを上書きする。
func resolveOutputPath(targetPath string, outputPath string) (string, error) {
	if strings.TrimSpace(outputPath) == "" {
		return targetPath, nil
	}
	if !strings.EqualFold(filepath.Ext(outputPath), ".pmx") {
		return "", fmt.Errorf(messages.MessageOutputExt, outputPath)
	}
	return outputPath, nil
}

// ensureOutputDir は出力先ディレクトリを作成する。
func ensureOutputDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("出力先ディレクトリの作成に失敗しました: %w", err)
	}
	return nil
}

// printSummary はテーブルごとのマージ集計を表示する。
func printSummary(out io.Writer, summary minteractor.MergeSummary) {
	for _, row := range []struct {
		label   string
		summary minteractor.TableSummary
	}{
		{"ボーン", summary.Bones},
		{"材質", summary.Materials},
		{"モーフ", summary.Morphs},
		{"表示枠", summary.DisplaySlots},
		{"剛体", summary.RigidBodies},
		{"ジョイント", summary.Joints},
	} {
		fmt.Fprintf(out, messages.LogTableSummary,
			row.label, row.summary.Kept, row.summary.Replaced, row.summary.Appended, row.summary.Removed)
	}
}
