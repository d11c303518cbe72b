package runtime

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"nodedash/pkg/log"
)

const (
	defaultBinary         = "docker"
	defaultCommandTimeout = 8 * time.Second
	defaultProbeTimeout   = 3 * time.Second
	sudoBinary            = "sudo"
)

// Elevation selects how runtime commands are invoked.
type Elevation string

const (
	// ElevationAuto tries the plain binary first and falls back to sudo -n.
	ElevationAuto Elevation = "auto"
	// ElevationNever always runs the plain binary.
	ElevationNever Elevation = "never"
	// ElevationAlways always runs through sudo -n.
	ElevationAlways Elevation = "always"
)

// Options configures an Invoker.
type Options struct {
	Binary         string
	Elevation      Elevation
	CommandTimeout time.Duration
	ProbeBaseURL   string
	ReadinessPath  string
	LivenessPath   string
	ProbeTimeout   time.Duration
}

// Invoker runs probe, inspect and log commands against the container runtime.
// The runtime command line (with or without sudo) is detected once and
// reused for the life of the Invoker.
type Invoker struct {
	executor Executor
	opts     Options
	now      func() time.Time

	detectOnce sync.Once
	command    []string
	elevated   bool
}

// New creates an Invoker that runs commands through executor.
func New(executor Executor, opts Options) *Invoker {
	if opts.Binary == "" {
		opts.Binary = defaultBinary
	}
	if opts.Elevation == "" {
		opts.Elevation = ElevationAuto
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = defaultCommandTimeout
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = defaultProbeTimeout
	}
	opts.ProbeBaseURL = strings.TrimRight(opts.ProbeBaseURL, "/")

	return &Invoker{
		executor: executor,
		opts:     opts,
		now:      time.Now,
	}
}

// Elevated reports whether runtime commands go through sudo.
func (inv *Invoker) Elevated() bool {
	inv.detect()
	return inv.elevated
}

// Command returns the detected runtime command prefix.
func (inv *Invoker) Command() []string {
	command := inv.detect()
	return append([]string(nil), command...)
}

func (inv *Invoker) detect() []string {
	inv.detectOnce.Do(func() {
		inv.command, inv.elevated = inv.detectCommand()
		if inv.elevated {
			elevatedGauge.Set(1)
		}
		log.Info().
			Strs("command", inv.command).
			Bool("elevated", inv.elevated).
			Str("mode", string(inv.opts.Elevation)).
			Msg("Container runtime command selected")
	})
	return inv.command
}

func (inv *Invoker) detectCommand() ([]string, bool) {
	plain := []string{inv.opts.Binary}
	elevated := []string{sudoBinary, "-n", inv.opts.Binary}

	switch inv.opts.Elevation {
	case ElevationNever:
		return plain, false
	case ElevationAlways:
		return elevated, true
	case ElevationAuto:
	}

	if inv.answers(plain) {
		return plain, false
	}
	if inv.answers(elevated) {
		return elevated, true
	}

	log.Warn().
		Str("binary", inv.opts.Binary).
		Msg("Container runtime did not answer with or without sudo, using plain invocation")
	return plain, false
}

// answers runs "<command> version" detached from any request context,
// since the result characterizes the host for the life of the process.
func (inv *Invoker) answers(command []string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), inv.opts.CommandTimeout)
	defer cancel()

	args := make([]string, 0, len(command)+2)
	args = append(args, command[1:]...)
	args = append(args, "version", "--format", "{{.Server.Version}}")

	out, err := inv.executor.Run(ctx, command[0], args...)
	if err != nil {
		log.Debug().Err(err).Strs("command", command).Str("output", firstLine(out)).Msg("Runtime version check failed")
		return false
	}
	return strings.TrimSpace(string(out)) != ""
}

// run executes one runtime subcommand under the command timeout.
func (inv *Invoker) run(ctx context.Context, op string, args ...string) ([]byte, error) {
	command := inv.detect()

	ctx, cancel := context.WithTimeout(ctx, inv.opts.CommandTimeout)
	defer cancel()

	full := make([]string, 0, len(command)-1+len(args))
	full = append(full, command[1:]...)
	full = append(full, args...)

	start := time.Now()
	out, err := inv.executor.Run(ctx, command[0], full...)
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%s timed out after %s: %w", op, inv.opts.CommandTimeout, ctx.Err())
	}
	observeInvocation(op, start, err)

	return out, err
}

var (
	notFoundMarkers = []string{
		"no such container",
		"no such object",
		"no container with name or id",
	}
	daemonMarkers = []string{
		"cannot connect to the docker daemon",
		"is the docker daemon running",
		"permission denied while trying to connect",
		"error during connect",
		"a password is required",
	}
)

// classifyFailure maps a failed runtime invocation onto the package error types.
func classifyFailure(op, container string, out []byte, err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, context.DeadlineExceeded) {
		return RuntimeUnreachableError{Op: op, Err: err}
	}

	text := strings.ToLower(string(out))
	if containsAny(text, notFoundMarkers) {
		return ContainerNotFoundError{Container: container}
	}
	if containsAny(text, daemonMarkers) {
		return RuntimeUnreachableError{Op: op, Err: errors.New(firstLine(out))}
	}

	var exitCoder interface{ ExitCode() int }
	if !errors.As(err, &exitCoder) {
		// The process never ran.
		return RuntimeUnreachableError{Op: op, Err: err}
	}

	if line := firstLine(out); line != "" {
		return fmt.Errorf("%s %s: %w: %s", op, container, err, line)
	}
	return fmt.Errorf("%s %s: %w", op, container, err)
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func firstLine(out []byte) string {
	for _, line := range strings.Split(string(out), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
