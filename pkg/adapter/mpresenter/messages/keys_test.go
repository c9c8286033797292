// 指示: miu200521358
package messages

import (
	"strings"
	"testing"
)

func TestMessagesAreNonEmpty(t *testing.T) {
	all := []string{
		LabelTargetPath, LabelFreshPath, LabelFeatures, LabelOutputPath, LabelVerbose,
		MessageTargetRequired, MessageFreshRequired, MessageFeaturesRequired,
		MessageTargetExt, MessageFreshExt, MessageOutputExt,
		LogPatchStart, LogFeatureList, LogTableSummary, LogPatchComplete, LogPatchSkipped,
	}
	seen := map[string]bool{}
	for i, message := range all {
		if message == "" {
			t.Fatalf("empty message at %d", i)
		}
		if seen[message] {
			t.Fatalf("duplicate message: %s", message)
		}
		seen[message] = true
	}
}

func TestLogMessagesCarryPrefix(t *testing.T) {
	for _, message := range []string{LogPatchStart, LogFeatureList, LogTableSummary, LogPatchComplete, LogPatchSkipped} {
		if !strings.HasPrefix(message, "[mu_pmx_merge] ") {
			t.Fatalf("log message must carry the tool prefix: %s", message)
		}
	}
}
