package models

// ProbeEndpoint names one of the two in-container health endpoints.
type ProbeEndpoint string

const (
	EndpointReadiness ProbeEndpoint = "readiness"
	EndpointLiveness  ProbeEndpoint = "liveness"
)

// ProbeResult is the outcome of one health endpoint call.
type ProbeResult struct {
	Endpoint   ProbeEndpoint `json:"endpoint"`
	Path       string        `json:"path,omitempty"`
	Reachable  bool          `json:"reachable"`
	HTTPStatus *int          `json:"http_status"` // nil when no status line was observed
	Body       string        `json:"body,omitempty"`
	Error      string        `json:"error,omitempty"`
	LatencyMS  int64         `json:"latency_ms"`
}

// Success reports whether the endpoint answered with a 2xx status.
func (p ProbeResult) Success() bool {
	if !p.Reachable || p.HTTPStatus == nil {
		return false
	}
	return *p.HTTPStatus >= 200 && *p.HTTPStatus < 300
}

// UnreachableProbe builds a result for a probe that could not be answered.
func UnreachableProbe(endpoint ProbeEndpoint, reason string) ProbeResult {
	return ProbeResult{
		Endpoint: endpoint,
		Error:    reason,
	}
}
