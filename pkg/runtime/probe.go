package runtime

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"nodedash/pkg/log"
	"nodedash/pkg/models"
)

const (
	statusMarker      = "__NODEDASH_HTTP_STATUS__:"
	probeScriptName   = "nodedash-probe"
	maxProbeBodyBytes = 4 * 1024
	exitNotFound      = 127
	curlNoConnection  = "000"
	wgetServerError   = "wget8"
)

// probeScript runs inside the container. It prefers curl, falls back to
// wget and always ends its output with the status marker when either
// client exists. Without a client it exits 127.
const probeScript = `url="$1"; t="$2"
if command -v curl >/dev/null 2>&1; then
  curl -s -m "$t" -w '\n` + statusMarker + `%{http_code}' "$url"
  exit 0
fi
if command -v wget >/dev/null 2>&1; then
  if wget -q -T "$t" -O - "$url"; then
    printf '\n` + statusMarker + `200'
  else
    printf '\n` + statusMarker + `wget%s' "$?"
  fi
  exit 0
fi
exit 127`

// Probe calls one health endpoint from inside the container's network
// namespace. It never fails: every problem is reported as an unreachable
// result with a diagnostic.
func (inv *Invoker) Probe(ctx context.Context, container string, endpoint models.ProbeEndpoint) models.ProbeResult {
	path := inv.probePath(endpoint)
	result := models.ProbeResult{Endpoint: endpoint, Path: path}

	start := time.Now()
	out, err := inv.run(ctx, "probe",
		"exec", container, "sh", "-c", probeScript, probeScriptName,
		inv.opts.ProbeBaseURL+path,
		probeTimeoutArg(inv.opts.ProbeTimeout),
	)
	result.LatencyMS = time.Since(start).Milliseconds()

	if probeErr := interpretProbe(&result, container, out, err); probeErr != nil {
		result.Reachable = false
		result.HTTPStatus = nil
		result.Error = probeErr.Reason
		log.Debug().
			Str("container", container).
			Str("endpoint", string(endpoint)).
			Err(probeErr).
			Msg("Probe unreachable")
	}

	return result
}

// probeTimeoutArg rounds up to whole seconds, the unit curl -m and wget -T take.
func probeTimeoutArg(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}

func (inv *Invoker) probePath(endpoint models.ProbeEndpoint) string {
	if endpoint == models.EndpointReadiness {
		return inv.opts.ReadinessPath
	}
	return inv.opts.LivenessPath
}

// interpretProbe fills result from the probe script output.
func interpretProbe(result *models.ProbeResult, container string, out []byte, runErr error) *ProbeUnreachableError {
	text := string(out)
	idx := strings.LastIndex(text, statusMarker)
	if idx < 0 {
		return probeFailure(result.Endpoint, container, out, runErr)
	}

	result.Body = truncate(strings.TrimSpace(text[:idx]), maxProbeBodyBytes)
	code := strings.TrimSpace(text[idx+len(statusMarker):])

	switch {
	case code == curlNoConnection:
		return &ProbeUnreachableError{Endpoint: result.Endpoint, Reason: "connection failed"}
	case code == wgetServerError:
		// wget only tells us the server answered with an error status.
		result.Reachable = true
		result.Error = "server returned an error status"
		return nil
	case strings.HasPrefix(code, "wget"):
		return &ProbeUnreachableError{
			Endpoint: result.Endpoint,
			Reason:   "connection failed (wget exit " + strings.TrimPrefix(code, "wget") + ")",
		}
	}

	status, err := strconv.Atoi(code)
	if err != nil {
		return &ProbeUnreachableError{Endpoint: result.Endpoint, Reason: "unreadable status " + strconv.Quote(code), Err: err}
	}

	result.Reachable = true
	result.HTTPStatus = &status
	return nil
}

func probeFailure(endpoint models.ProbeEndpoint, container string, out []byte, runErr error) *ProbeUnreachableError {
	failure := &ProbeUnreachableError{Endpoint: endpoint, Err: runErr}

	if runErr == nil {
		failure.Reason = "probe produced no status"
		return failure
	}
	if errors.Is(runErr, context.DeadlineExceeded) {
		failure.Reason = "timed out"
		return failure
	}

	text := strings.ToLower(string(out))
	classified := classifyFailure("probe", container, out, runErr)

	var notFound ContainerNotFoundError
	var unreachable RuntimeUnreachableError
	var exitCoder interface{ ExitCode() int }

	switch {
	case errors.As(classified, &notFound):
		failure.Reason = "container not found"
	case errors.As(classified, &unreachable):
		failure.Reason = "container runtime unreachable"
	case strings.Contains(text, "is not running"):
		failure.Reason = "container is not running"
	case strings.Contains(text, "executable file not found"):
		failure.Reason = "no shell available in container"
	case errors.As(runErr, &exitCoder) && exitCoder.ExitCode() == exitNotFound:
		failure.Reason = ErrNoHTTPClient.Error()
		failure.Err = ErrNoHTTPClient
	default:
		failure.Reason = firstLine(out)
		if failure.Reason == "" {
			failure.Reason = runErr.Error()
		}
	}

	return failure
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
