package runtime

import (
	"context"
	"os/exec"
)

// Executor runs an external command and returns its combined output.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// CommandExecutor runs commands on the host with os/exec.
type CommandExecutor struct{}

// Run executes name with args and waits for it to finish or for ctx to expire.
func (CommandExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	//nolint:gosec // name is the configured runtime binary, args are built by this package
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
