package naming

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Capture files carry their record timestamp as the last digit run of the
// stem: "0-102042.v264" → 102042, "seg_0003.v264" → 3.
var reTimestamp = regexp.MustCompile(`(\d+)\D*$`)

// ExtractTimestamp parses the embedded capture timestamp from a file name.
// The second return value is false when the name carries no digit run; such
// files sort after all parseable siblings.
func ExtractTimestamp(path string) (int64, bool) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := reTimestamp.FindStringSubmatch(stem)
	if m == nil {
		return 0, false
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// Digit run too long for int64; exceedingly unlikely for real
		// capture names, treated as unparseable.
		return 0, false
	}
	return ts, true
}
