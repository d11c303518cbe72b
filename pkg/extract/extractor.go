package extract

import (
	"regexp"
	"strings"

	"nodedash/pkg/models"
)

// Extractor turns a LogSnapshot into ExtractedMetrics using named rules.
type Extractor struct {
	rules    []Rule
	byMetric map[Metric][]Rule
}

// New builds an Extractor from rules. Rules are ordered by metric then priority.
func New(rules []Rule) *Extractor {
	sorted := append([]Rule(nil), rules...)
	sortRules(sorted)

	byMetric := make(map[Metric][]Rule)
	for _, r := range sorted {
		byMetric[r.Metric] = append(byMetric[r.Metric], r)
	}

	return &Extractor{rules: sorted, byMetric: byMetric}
}

// Default returns an Extractor over DefaultRules.
func Default() *Extractor {
	return New(DefaultRules())
}

// Rules lists the rules in evaluation order.
func (e *Extractor) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Extract scans lines newest first. Each metric takes its value from the most
// recent line that yields one and is not searched further.
func (e *Extractor) Extract(snapshot models.LogSnapshot) models.ExtractedMetrics {
	var metrics models.ExtractedMetrics
	lastLogSet := false

	for i := len(snapshot.Lines) - 1; i >= 0; i-- {
		raw := snapshot.Lines[i]
		if strings.TrimSpace(raw) == "" {
			continue
		}

		ts, line, hasTS := SplitTimestamp(raw)
		if !lastLogSet {
			lastLogSet = true
			if hasTS {
				metrics.LastLogAt = &ts
			} else if !snapshot.RetrievedAt.IsZero() {
				retrieved := snapshot.RetrievedAt
				metrics.LastLogAt = &retrieved
			}
		}

		if metrics.Peers == nil {
			if v, ok := e.firstInt(MetricPeers, line); ok {
				metrics.Peers = &v
			}
		}
		if metrics.Height == nil {
			if v, ok := e.firstInt(MetricHeight, line); ok {
				metrics.Height = &v
			}
		}
		if metrics.Hashrate == nil {
			if v, ok := e.firstFloat(line); ok {
				metrics.Hashrate = &v
			}
		}

		if metrics.Peers != nil && metrics.Height != nil && metrics.Hashrate != nil {
			break
		}
	}

	return metrics
}

func (e *Extractor) firstInt(metric Metric, line string) (int64, bool) {
	for _, r := range e.byMetric[metric] {
		if v, ok := r.intValue(line); ok {
			return v, true
		}
	}
	return 0, false
}

func (e *Extractor) firstFloat(line string) (float64, bool) {
	for _, r := range e.byMetric[MetricHashrate] {
		if v, ok := r.floatValue(line); ok {
			return v, true
		}
	}
	return 0, false
}

var (
	minedPattern     = regexp.MustCompile(`(?i)\bmined\b|\bmining\s+completed\b`)
	processedPattern = regexp.MustCompile(`(?i)\b(?:processed|accepted|applied)\b`)
	sealedPattern    = regexp.MustCompile(`(?i)\bsealed\b`)
	errorPattern     = regexp.MustCompile(`(?i)\b(?:error|fatal|panic)\b`)

	syncingPattern = regexp.MustCompile(`(?i)\bdownloading\s+blocks?\b|\bsync(?:ing|hroni[sz]ing)\b|\bsync\s+(?:started|progress)\b`)
	syncedPattern  = regexp.MustCompile(`(?i)\bimported\s+new\s+chain\s+segment\b|\bsynced\b|\bsync(?:hroni[sz]ation)?\s+(?:complete|completed|finished)\b`)
)

// DetectSyncHint reports the sync keyword of the newest line carrying one.
func DetectSyncHint(snapshot models.LogSnapshot) models.SyncHint {
	for i := len(snapshot.Lines) - 1; i >= 0; i-- {
		_, line, _ := SplitTimestamp(snapshot.Lines[i])
		switch {
		case syncedPattern.MatchString(line):
			return models.SyncHintSynced
		case syncingPattern.MatchString(line):
			return models.SyncHintSyncing
		}
	}
	return models.SyncHintNone
}

// CountActivity counts block activity lines in the snapshot. A line may count
// toward more than one bucket.
func CountActivity(snapshot models.LogSnapshot) models.ActivityCounts {
	var counts models.ActivityCounts

	for _, raw := range snapshot.Lines {
		_, line, _ := SplitTimestamp(raw)
		if minedPattern.MatchString(line) {
			counts.Mined++
		}
		if processedPattern.MatchString(line) {
			counts.Processed++
		}
		if sealedPattern.MatchString(line) {
			counts.Sealed++
		}
		if errorPattern.MatchString(line) {
			counts.Errors++
		}
	}

	return counts
}
