package status

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"nodedash/pkg/runtime"
)

// containerName matches the names and IDs the runtime accepts.
var containerName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{0,127}$`)

// Query is the raw request for one refresh, as received from the page or API.
type Query struct {
	Container string `query:"container" json:"container"`
	Since     string `query:"since" json:"since"`
	Tail      string `query:"tail" json:"tail"`
}

// Limits are the defaults and maxima applied to a Query.
type Limits struct {
	DefaultContainer string
	DefaultSince     time.Duration
	MaxSince         time.Duration
	DefaultTail      int
	MaxTail          int
}

// Target is a normalized Query.
type Target struct {
	Container string
	Window    runtime.Window
}

// NormalizeQuery fills defaults and clamps the window to the limits.
// Invalid values fall back to defaults and are reported as diagnostics.
func NormalizeQuery(q Query, limits Limits) (Target, []string) {
	var diagnostics []string
	target := Target{
		Container: limits.DefaultContainer,
		Window:    runtime.Window{Since: limits.DefaultSince, Tail: limits.DefaultTail},
	}

	if name := strings.TrimSpace(q.Container); name != "" {
		if containerName.MatchString(name) {
			target.Container = name
		} else {
			diagnostics = append(diagnostics, fmt.Sprintf("invalid container name %q, using %s", name, limits.DefaultContainer))
		}
	}

	if raw := strings.TrimSpace(q.Since); raw != "" {
		since, err := time.ParseDuration(raw)
		switch {
		case err != nil || since <= 0:
			diagnostics = append(diagnostics, fmt.Sprintf("invalid since %q, using %s", raw, limits.DefaultSince))
		case limits.MaxSince > 0 && since > limits.MaxSince:
			diagnostics = append(diagnostics, fmt.Sprintf("since %s exceeds maximum, using %s", since, limits.MaxSince))
			target.Window.Since = limits.MaxSince
		default:
			target.Window.Since = since
		}
	}

	if raw := strings.TrimSpace(q.Tail); raw != "" {
		tail, err := strconv.Atoi(raw)
		switch {
		case err != nil || tail <= 0:
			diagnostics = append(diagnostics, fmt.Sprintf("invalid tail %q, using %d", raw, limits.DefaultTail))
		case limits.MaxTail > 0 && tail > limits.MaxTail:
			diagnostics = append(diagnostics, fmt.Sprintf("tail %d exceeds maximum, using %d", tail, limits.MaxTail))
			target.Window.Tail = limits.MaxTail
		default:
			target.Window.Tail = tail
		}
	}

	return target, diagnostics
}
