package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestProbeResultSuccess(t *testing.T) {
	cases := []struct {
		name  string
		probe ProbeResult
		want  bool
	}{
		{"ok", ProbeResult{Reachable: true, HTTPStatus: intPtr(200)}, true},
		{"no content", ProbeResult{Reachable: true, HTTPStatus: intPtr(204)}, true},
		{"service unavailable", ProbeResult{Reachable: true, HTTPStatus: intPtr(503)}, false},
		{"redirect", ProbeResult{Reachable: true, HTTPStatus: intPtr(302)}, false},
		{"reachable without status", ProbeResult{Reachable: true}, false},
		{"unreachable", ProbeResult{HTTPStatus: intPtr(200)}, false},
		{"zero value", ProbeResult{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.probe.Success())
		})
	}
}

func TestUnreachableProbe(t *testing.T) {
	probe := UnreachableProbe(EndpointLiveness, "container not running")
	assert.Equal(t, EndpointLiveness, probe.Endpoint)
	assert.False(t, probe.Reachable)
	assert.Nil(t, probe.HTTPStatus)
	assert.Equal(t, "container not running", probe.Error)
}

func TestLogSnapshotEmpty(t *testing.T) {
	assert.True(t, LogSnapshot{}.Empty())
	assert.True(t, LogSnapshot{Lines: []string{"", "   ", "\t"}}.Empty())
	assert.False(t, LogSnapshot{Lines: []string{"", "peers=3"}}.Empty())
}

func TestExtractedMetricsHasAny(t *testing.T) {
	now := time.Now()
	var zero int64

	assert.False(t, ExtractedMetrics{}.HasAny())
	assert.False(t, ExtractedMetrics{LastLogAt: &now}.HasAny())
	assert.True(t, ExtractedMetrics{Peers: &zero}.HasAny())
	assert.True(t, ExtractedMetrics{Height: &zero}.HasAny())

	rate := 1.5
	assert.True(t, ExtractedMetrics{Hashrate: &rate}.HasAny())
}

func TestNodeStatusLabel(t *testing.T) {
	assert.Equal(t, "Healthy", StatusHealthy.Label())
	assert.Equal(t, "Syncing", StatusSyncing.Label())
	assert.Equal(t, "Connected", StatusConnected.Label())
	assert.Equal(t, "Error", StatusError.Label())
	assert.Equal(t, "Unknown", StatusUnknown.Label())
	assert.Equal(t, "Unknown", NodeStatus("").Label())

	assert.True(t, StatusConnected.OK())
	assert.False(t, StatusError.OK())
	assert.False(t, StatusUnknown.OK())
}

func TestSyncHintLabel(t *testing.T) {
	assert.Equal(t, "Syncing", SyncHintSyncing.Label())
	assert.Equal(t, "Synced", SyncHintSynced.Label())
	assert.Equal(t, "—", SyncHintNone.Label())
}
