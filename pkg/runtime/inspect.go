package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nodedash/pkg/models"
)

const inspectFormat = "{{.State.Status}}|{{.State.StartedAt}}"

// Inspect reports whether the container exists and what state it is in.
func (inv *Invoker) Inspect(ctx context.Context, container string) (models.ContainerState, error) {
	out, err := inv.run(ctx, "inspect", "inspect", "--type", "container", "--format", inspectFormat, container)
	if err != nil {
		return models.ContainerState{Name: container}, classifyFailure("inspect", container, out, err)
	}
	return parseInspect(container, out)
}

func parseInspect(container string, out []byte) (models.ContainerState, error) {
	state := models.ContainerState{Name: container}

	// Warnings may precede the formatted line on combined output.
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	line := strings.TrimSpace(lines[len(lines)-1])

	status, startedAt, found := strings.Cut(line, "|")
	if !found || status == "" {
		return state, fmt.Errorf("unexpected inspect output for %s: %q", container, line)
	}

	state.Status = strings.ToLower(strings.TrimSpace(status))
	state.Running = state.Status == "running"

	if ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(startedAt)); err == nil && !ts.IsZero() && ts.Year() > 1 {
		ts = ts.UTC()
		state.StartedAt = &ts
	}

	return state, nil
}
