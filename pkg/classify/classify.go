package classify

import (
	"time"

	"nodedash/pkg/models"
)

const (
	DefaultFreshness = 2 * time.Minute
	DefaultClockSkew = 5 * time.Second
)

// Rule names, reported in Decision.Rule.
const (
	RuleNoSignal    = "no-signal"
	RuleSyncing     = "liveness-only"
	RuleHealthy     = "probes-ok"
	RuleFreshLogs   = "fresh-logs"
	RuleFallthrough = "fallthrough"
)

// Policy holds the tunable thresholds of the decision table.
type Policy struct {
	// Freshness is the maximum age of LastLogAt still trusted as a sign of life.
	Freshness time.Duration
	// ClockSkew is how far in the future LastLogAt may be and still count as fresh.
	ClockSkew time.Duration
}

// DefaultPolicy returns the documented default thresholds.
func DefaultPolicy() Policy {
	return Policy{Freshness: DefaultFreshness, ClockSkew: DefaultClockSkew}
}

// Input is everything one classification looks at.
type Input struct {
	Readiness     models.ProbeResult
	Liveness      models.ProbeResult
	Metrics       models.ExtractedMetrics
	SnapshotEmpty bool
	RetrievedAt   time.Time
}

// Decision is the derived status and the rule that produced it.
type Decision struct {
	Status models.NodeStatus `json:"status"`
	Rule   string            `json:"rule"`
}

// Classify evaluates the decision table in order and returns the first match.
// It reads no clock: recency is judged against in.RetrievedAt only.
func Classify(in Input, policy Policy) Decision {
	bothUnreachable := !in.Readiness.Reachable && !in.Liveness.Reachable

	switch {
	case bothUnreachable && !in.Metrics.HasAny() && in.SnapshotEmpty:
		return Decision{Status: models.StatusError, Rule: RuleNoSignal}
	case in.Liveness.Success() && !in.Readiness.Success():
		return Decision{Status: models.StatusSyncing, Rule: RuleSyncing}
	case in.Liveness.Success() && in.Readiness.Success():
		return Decision{Status: models.StatusHealthy, Rule: RuleHealthy}
	case bothUnreachable && in.Metrics.HasAny() && Fresh(in.Metrics.LastLogAt, in.RetrievedAt, policy):
		return Decision{Status: models.StatusConnected, Rule: RuleFreshLogs}
	default:
		return Decision{Status: models.StatusError, Rule: RuleFallthrough}
	}
}

// Fresh reports whether lastLog lies within policy.Freshness before ref, or
// no more than policy.ClockSkew after it.
func Fresh(lastLog *time.Time, ref time.Time, policy Policy) bool {
	if lastLog == nil || ref.IsZero() {
		return false
	}

	freshness := policy.Freshness
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	skew := policy.ClockSkew
	if skew < 0 {
		skew = 0
	}

	age := ref.Sub(*lastLog)
	return age <= freshness && age >= -skew
}
