package runtime

import (
	"context"
	"strconv"
	"strings"
	"time"

	"nodedash/pkg/models"
)

// Window bounds a log retrieval by age and by line count.
type Window struct {
	Since time.Duration
	Tail  int
}

// Validate rejects windows missing either bound.
func (w Window) Validate() error {
	if w.Since <= 0 || w.Tail <= 0 {
		return ErrInvalidWindow
	}
	return nil
}

// Tail captures the container's recent log lines within window.
func (inv *Invoker) Tail(ctx context.Context, container string, window Window) (models.LogSnapshot, error) {
	snapshot := models.LogSnapshot{Since: window.Since, Tail: window.Tail}

	if err := window.Validate(); err != nil {
		snapshot.RetrievedAt = inv.now()
		return snapshot, err
	}

	out, err := inv.run(ctx, "logs",
		"logs", "--timestamps",
		"--since", window.Since.String(),
		"--tail", strconv.Itoa(window.Tail),
		container,
	)
	snapshot.RetrievedAt = inv.now()
	if err != nil {
		return snapshot, classifyFailure("logs", container, out, err)
	}

	snapshot.Lines = splitLines(out, window.Tail)
	return snapshot, nil
}

// splitLines splits runtime output into lines, keeping at most limit of the newest.
func splitLines(out []byte, limit int) []string {
	text := strings.TrimRight(string(out), "\r\n")
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}

	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines
}
