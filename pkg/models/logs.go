package models

import (
	"strings"
	"time"
)

// LogSnapshot is a bounded window of container log lines, oldest first.
type LogSnapshot struct {
	Lines       []string      `json:"-"`
	Since       time.Duration `json:"since"`
	Tail        int           `json:"tail"`
	RetrievedAt time.Time     `json:"retrieved_at"`
}

// Empty reports whether the snapshot holds no non-blank line.
func (s LogSnapshot) Empty() bool {
	for _, line := range s.Lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

// ExtractedMetrics holds values parsed from a LogSnapshot.
// A nil field means the value was not found in the window.
type ExtractedMetrics struct {
	Peers     *int64     `json:"peers"`
	Height    *int64     `json:"height"`
	Hashrate  *float64   `json:"hashrate"` // hashes per second
	LastLogAt *time.Time `json:"last_log_at"`
}

// HasAny reports whether at least one operational metric was found.
// LastLogAt is not an operational metric.
func (m ExtractedMetrics) HasAny() bool {
	return m.Peers != nil || m.Height != nil || m.Hashrate != nil
}

// ActivityCounts counts block activity lines within one snapshot.
type ActivityCounts struct {
	Mined     int `json:"mined"`
	Processed int `json:"processed"`
	Sealed    int `json:"sealed"`
	Errors    int `json:"errors"`
}
