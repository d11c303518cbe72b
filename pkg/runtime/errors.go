package runtime

import (
	"errors"

	"nodedash/pkg/models"
)

var (
	// ErrNoHTTPClient is returned when the container has neither curl nor wget.
	ErrNoHTTPClient = errors.New("no HTTP client (curl or wget) available in container")

	// ErrInvalidWindow is returned when a log window has no bound.
	ErrInvalidWindow = errors.New("log window must bound both duration and line count")
)

// RuntimeUnreachableError is returned when the container runtime itself could not be invoked.
type RuntimeUnreachableError struct {
	Op  string
	Err error
}

func (e RuntimeUnreachableError) Error() string {
	if e.Err == nil {
		return "container runtime unreachable during " + e.Op
	}
	return "container runtime unreachable during " + e.Op + ": " + e.Err.Error()
}

func (e RuntimeUnreachableError) Unwrap() error {
	return e.Err
}

// ContainerNotFoundError is returned when the runtime does not know the container.
type ContainerNotFoundError struct {
	Container string
}

func (e ContainerNotFoundError) Error() string {
	return "container not found: " + e.Container
}

// ProbeUnreachableError describes why a health endpoint gave no answer.
// It is folded into models.ProbeResult and never returned to callers.
type ProbeUnreachableError struct {
	Endpoint models.ProbeEndpoint
	Reason   string
	Err      error
}

func (e ProbeUnreachableError) Error() string {
	return string(e.Endpoint) + " probe unreachable: " + e.Reason
}

func (e ProbeUnreachableError) Unwrap() error {
	return e.Err
}
