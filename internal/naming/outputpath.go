package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputPath builds the converted file path for a single input: the input's
// stem with a .mp4 extension, placed flat in outputDir. The capture
// timestamp embedded in the stem is preserved.
func OutputPath(input, outputDir string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+".mp4")
}

// MergedOutputPath builds the output path for a concatenated recording.
// The name is derived from the group's timestamp span so sibling groups in
// the same run never collide and reruns are deterministic:
//
//	merged_<first>-<last>.mp4        (both endpoints parseable)
//	merged_<groupKey>.mp4            (no parseable timestamps)
func MergedOutputPath(inputs []string, groupKey, outputDir string) string {
	var first, last int64
	found := false
	for _, in := range inputs {
		ts, ok := ExtractTimestamp(in)
		if !ok {
			continue
		}
		if !found || ts < first {
			first = ts
		}
		if !found || ts > last {
			last = ts
		}
		found = true
	}

	var name string
	if found {
		name = fmt.Sprintf("merged_%d-%d.mp4", first, last)
	} else {
		name = fmt.Sprintf("merged_%s.mp4", sanitize(groupKey))
	}
	return filepath.Join(outputDir, name)
}

// sanitize strips path separators from a group key so it is safe as a file
// name component.
func sanitize(key string) string {
	if key == "" {
		return "group"
	}
	r := strings.NewReplacer("/", "_", "\\", "_", string(filepath.Separator), "_")
	return r.Replace(key)
}
