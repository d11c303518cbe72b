package extract

import (
	"regexp"
	"strings"
	"time"
)

var leadingTimestamp = regexp.MustCompile(
	`^\s*(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}(?:\.\d{1,9})?(?:Z|[+-]\d{2}:?\d{2})?)\s*`,
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
}

// SplitTimestamp separates a leading RFC 3339 timestamp from the rest of the
// line. Timestamps without a zone are taken as UTC.
func SplitTimestamp(line string) (time.Time, string, bool) {
	loc := leadingTimestamp.FindStringSubmatchIndex(line)
	if loc == nil {
		return time.Time{}, line, false
	}

	raw := strings.Replace(line[loc[2]:loc[3]], " ", "T", 1)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), line[loc[1]:], true
		}
	}

	return time.Time{}, line, false
}
