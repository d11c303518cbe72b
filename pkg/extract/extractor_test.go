package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodedash/pkg/models"
)

var retrievedAt = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func snapshot(lines ...string) models.LogSnapshot {
	return models.LogSnapshot{Lines: lines, Since: 30 * time.Minute, Tail: 600, RetrievedAt: retrievedAt}
}

func TestExtractScenarioPeersAndHeight(t *testing.T) {
	metrics := Default().Extract(snapshot(
		"2026-10-16T11:59:50.123456789Z INFO sync status peers=12 height=4501 elapsed=1s",
	))

	require.NotNil(t, metrics.Peers)
	require.NotNil(t, metrics.Height)
	assert.Equal(t, int64(12), *metrics.Peers)
	assert.Equal(t, int64(4501), *metrics.Height)
	assert.Nil(t, metrics.Hashrate)
	require.NotNil(t, metrics.LastLogAt)
	assert.Equal(t, time.Date(2026, 10, 16, 11, 59, 50, 123456789, time.UTC), *metrics.LastLogAt)
}

func TestExtractNewestValueWins(t *testing.T) {
	metrics := Default().Extract(snapshot(
		"2026-10-16T11:58:00Z height: 100",
		"2026-10-16T11:58:30Z unrelated",
		"2026-10-16T11:59:00Z height: 105",
	))

	require.NotNil(t, metrics.Height)
	assert.Equal(t, int64(105), *metrics.Height)
}

func TestExtractAbsentMetricsAreNil(t *testing.T) {
	metrics := Default().Extract(snapshot("node started", "listening on :8080"))

	assert.Nil(t, metrics.Peers)
	assert.Nil(t, metrics.Height)
	assert.Nil(t, metrics.Hashrate)
	assert.False(t, metrics.HasAny())

	require.NotNil(t, metrics.LastLogAt, "lines without a timestamp fall back to retrieval time")
	assert.Equal(t, retrievedAt, *metrics.LastLogAt)
}

func TestExtractEmptySnapshot(t *testing.T) {
	for _, snap := range []models.LogSnapshot{snapshot(), snapshot("", "   ")} {
		metrics := Default().Extract(snap)
		assert.Equal(t, models.ExtractedMetrics{}, metrics)
	}
}

func TestExtractZeroIsAValue(t *testing.T) {
	metrics := Default().Extract(snapshot("peers=0"))

	require.NotNil(t, metrics.Peers)
	assert.Equal(t, int64(0), *metrics.Peers)
}

func TestExtractParseFailureContinuesToOlderLines(t *testing.T) {
	metrics := Default().Extract(snapshot(
		"peers=7 hashrate: 2.5 GH/s",
		"peers=99999999999999999999 hashrate: 1.2.3 MH/s",
	))

	require.NotNil(t, metrics.Peers)
	require.NotNil(t, metrics.Hashrate)
	assert.Equal(t, int64(7), *metrics.Peers)
	assert.InDelta(t, 2.5e9, *metrics.Hashrate, 1)
}

func TestExtractMetricsFromDifferentLines(t *testing.T) {
	metrics := Default().Extract(snapshot(
		"2026-10-16T11:57:00Z Connected to 9 peers",
		"2026-10-16T11:58:00Z Imported new block #88,120",
		"2026-10-16T11:59:00Z miner running at 340 H/s",
		"",
	))

	require.NotNil(t, metrics.Peers)
	require.NotNil(t, metrics.Height)
	require.NotNil(t, metrics.Hashrate)
	assert.Equal(t, int64(9), *metrics.Peers)
	assert.Equal(t, int64(88120), *metrics.Height)
	assert.InDelta(t, 340.0, *metrics.Hashrate, 0.001)
	require.NotNil(t, metrics.LastLogAt)
	assert.Equal(t, time.Date(2026, 10, 16, 11, 59, 0, 0, time.UTC), *metrics.LastLogAt)
}

func TestExtractPriorityWithinLine(t *testing.T) {
	metrics := Default().Extract(snapshot("imported block #20 height=10"))

	require.NotNil(t, metrics.Height)
	assert.Equal(t, int64(10), *metrics.Height, "height-kv outranks height-block-event")
}

func TestExtractPeerNumberDoesNotReplaceHeight(t *testing.T) {
	metrics := Default().Extract(snapshot(
		"2026-10-16T11:58:00Z INFO Imported new chain segment height=4501",
		"2026-10-16T11:59:00Z WARN dial failed peer number=3 reason=timeout",
	))

	require.NotNil(t, metrics.Height)
	assert.Equal(t, int64(4501), *metrics.Height)
}

func TestExtractLastLogFallsBackWhenNewestHasNoTimestamp(t *testing.T) {
	metrics := Default().Extract(snapshot("2026-10-16T11:00:00Z peers=3", "plain line"))

	require.NotNil(t, metrics.LastLogAt)
	assert.Equal(t, retrievedAt, *metrics.LastLogAt)
}

func TestExtractWithCustomRules(t *testing.T) {
	rules := append(DefaultRules(), Rule{
		Name: "height-slot", Metric: MetricHeight, Priority: 5,
		Pattern: DefaultRules()[0].Pattern,
	})
	extractor := New(rules)

	assert.Equal(t, "height-slot", extractor.Rules()[5].Name)
}

func TestDefaultRulesOrdering(t *testing.T) {
	rules := DefaultRules()
	seen := make(map[string]bool)

	for i, r := range rules {
		assert.False(t, seen[r.Name], "duplicate rule %s", r.Name)
		seen[r.Name] = true
		require.NotNil(t, r.Pattern, r.Name)

		if i == 0 {
			continue
		}
		prev := rules[i-1]
		if prev.Metric == r.Metric {
			assert.Less(t, prev.Priority, r.Priority, "%s before %s", prev.Name, r.Name)
		} else {
			assert.Less(t, metricOrder[prev.Metric], metricOrder[r.Metric])
		}
	}
}

func TestRuleValues(t *testing.T) {
	byName := make(map[string]Rule)
	for _, r := range DefaultRules() {
		byName[r.Name] = r
	}

	cases := []struct {
		rule string
		line string
		want float64
		ok   bool
	}{
		{"peers-ratio", "peers: 8/50", 8, true},
		{"peers-ratio", "peers=8", 0, false},
		{"peers-connected", "Connected to 9 peers", 9, true},
		{"peers-connected", "connected 1 peer", 1, true},
		{"peers-count-key", "peer_count=14", 14, true},
		{"peers-count-key", "numPeers: 3", 3, true},
		{"peers-json", `{"peerCount": 4, "other": 1}`, 4, true},
		{"peers-kv", "Peers = 1,024", 1024, true},
		{"height-kv", "best_height=4501", 4501, true},
		{"height-kv", "tip height: 12", 12, true},
		{"height-block-number", "block_number: 77", 77, true},
		{"height-block-number", "blockNumber=78", 78, true},
		{"height-block-number", "peer number=3", 0, false},
		{"height-segment-number", "Imported new chain segment number=19,000", 19000, true},
		{"height-segment-number", "dial failed peer number=3 reason=timeout", 0, false},
		{"height-hashed-number", "number=19,001 hash=0xab12", 19001, true},
		{"height-hashed-number", "number=3 reason=timeout", 0, false},
		{"height-block-event", "Mined block 5", 5, true},
		{"height-block-event", "sealed block #6", 6, true},
		{"height-loose", "height reached 4501", 4501, true},
		{"height-loose", "no digits here", 0, false},
		{"hashrate-labelled", "hashrate: 12.5 MH/s", 12.5e6, true},
		{"hashrate-labelled", "Hash rate = 3 TH/s", 3e12, true},
		{"hashrate-labelled", "hashrate: 1.2.3 MH/s", 0, false},
		{"hashrate-unit", "speed 1,500 kH/s", 1.5e6, true},
		{"hashrate-unit", "42 h/s", 42, true},
		{"hashrate-unit", "2 EH/s", 2e18, true},
	}

	for _, tc := range cases {
		t.Run(tc.rule+"/"+tc.line, func(t *testing.T) {
			rule, exists := byName[tc.rule]
			require.True(t, exists)

			got, ok := rule.Value(tc.line)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.want, got, tc.want*1e-9+1e-9)
			}
		})
	}
}

func TestSplitTimestamp(t *testing.T) {
	cases := []struct {
		name string
		line string
		want time.Time
		rest string
		ok   bool
	}{
		{"docker nanos", "2026-10-16T11:59:50.123456789Z peers=1", time.Date(2026, 10, 16, 11, 59, 50, 123456789, time.UTC), "peers=1", true},
		{"offset", "2026-10-16T13:59:50+02:00 x", time.Date(2026, 10, 16, 11, 59, 50, 0, time.UTC), "x", true},
		{"compact offset", "2026-10-16T06:59:50-0500 x", time.Date(2026, 10, 16, 11, 59, 50, 0, time.UTC), "x", true},
		{"space and no zone", "2026-10-16 11:59:50.5 x", time.Date(2026, 10, 16, 11, 59, 50, 500000000, time.UTC), "x", true},
		{"no timestamp", "INFO peers=1", time.Time{}, "INFO peers=1", false},
		{"not leading", "at 2026-10-16T11:59:50Z", time.Time{}, "at 2026-10-16T11:59:50Z", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts, rest, ok := SplitTimestamp(tc.line)
			assert.Equal(t, tc.ok, ok)
			assert.True(t, tc.want.Equal(ts), "got %s", ts)
			assert.Equal(t, tc.rest, rest)
		})
	}
}

func TestCountActivity(t *testing.T) {
	counts := CountActivity(snapshot(
		"2026-10-16T11:59:00Z Mined block 5",
		"2026-10-16T11:59:01Z block sealed",
		"2026-10-16T11:59:02Z tx accepted into pool",
		"2026-10-16T11:59:03Z ERROR dial failed",
		"2026-10-16T11:59:04Z mining completed",
		"panic: runtime error",
		"nothing to see",
	))

	assert.Equal(t, models.ActivityCounts{Mined: 2, Processed: 1, Sealed: 1, Errors: 2}, counts)
	assert.Equal(t, models.ActivityCounts{}, CountActivity(snapshot()))
}

func TestDetectSyncHint(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  models.SyncHint
	}{
		{"empty", nil, models.SyncHintNone},
		{"no keywords", []string{"peers=3", "listening on :8080"}, models.SyncHintNone},
		{"downloading", []string{"2026-10-16T11:59:00Z INFO downloading blocks from peer"}, models.SyncHintSyncing},
		{"segment", []string{"2026-10-16T11:59:00Z INFO Imported new chain segment number=4501"}, models.SyncHintSynced},
		{"newest wins", []string{
			"2026-10-16T11:58:00Z INFO Imported new chain segment number=4500",
			"2026-10-16T11:59:00Z INFO Syncing: chain download in progress",
		}, models.SyncHintSyncing},
		{"synced after syncing", []string{
			"2026-10-16T11:58:00Z INFO synchronizing with network",
			"2026-10-16T11:59:00Z INFO sync completed",
			"2026-10-16T11:59:30Z DEBUG heartbeat",
		}, models.SyncHintSynced},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectSyncHint(snapshot(tc.lines...)))
		})
	}
}
