package models

import "time"

// NodeStatus is the single label derived for a node on every refresh.
type NodeStatus string

const (
	StatusHealthy   NodeStatus = "healthy"
	StatusSyncing   NodeStatus = "syncing"
	StatusConnected NodeStatus = "connected"
	StatusError     NodeStatus = "error"
	StatusUnknown   NodeStatus = "unknown"
)

// Label returns the display name of the status.
func (s NodeStatus) Label() string {
	switch s {
	case StatusHealthy:
		return "Healthy"
	case StatusSyncing:
		return "Syncing"
	case StatusConnected:
		return "Connected"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// OK reports whether the status describes a working node.
func (s NodeStatus) OK() bool {
	return s == StatusHealthy || s == StatusSyncing || s == StatusConnected
}

// ContainerState is what the runtime reports about a container.
// SyncHint is a display-only reading of sync progress from log keywords.
// Classification never uses it.
type SyncHint string

const (
	SyncHintNone    SyncHint = ""
	SyncHintSyncing SyncHint = "syncing"
	SyncHintSynced  SyncHint = "synced"
)

func (h SyncHint) Label() string {
	switch h {
	case SyncHintSyncing:
		return "Syncing"
	case SyncHintSynced:
		return "Synced"
	default:
		return "—"
	}
}

type ContainerState struct {
	Name      string     `json:"name"`
	Status    string     `json:"status"` // running, exited, restarting, ...
	Running   bool       `json:"running"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// StatusReport is everything one refresh produced for one container.
type StatusReport struct {
	Container   string           `json:"container"`
	Status      NodeStatus       `json:"status"`
	Rule        string           `json:"rule"`
	Readiness   ProbeResult      `json:"readiness"`
	Liveness    ProbeResult      `json:"liveness"`
	Metrics     ExtractedMetrics `json:"metrics"`
	Activity    ActivityCounts   `json:"activity"`
	SyncHint    SyncHint         `json:"sync_hint,omitempty"`
	State       *ContainerState  `json:"state,omitempty"`
	Since       string           `json:"since"`
	Tail        int              `json:"tail"`
	LogLines    int              `json:"log_lines"`
	RetrievedAt time.Time        `json:"retrieved_at"`
	DurationMS  int64            `json:"duration_ms"`
	Diagnostics []string         `json:"diagnostics,omitempty"`
}
