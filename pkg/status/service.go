package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"nodedash/pkg/classify"
	"nodedash/pkg/extract"
	"nodedash/pkg/log"
	"nodedash/pkg/models"
	"nodedash/pkg/runtime"
)

const defaultRequestTimeout = 20 * time.Second

// Rules that short-circuit the classifier.
const (
	RuleRuntimeUnreachable = "runtime-unreachable"
	RuleContainerNotFound  = "container-not-found"
	RuleContainerStopped   = "container-not-running"
)

// Invoker is the subset of the runtime the service depends on.
type Invoker interface {
	Inspect(ctx context.Context, container string) (models.ContainerState, error)
	Probe(ctx context.Context, container string, endpoint models.ProbeEndpoint) models.ProbeResult
	Tail(ctx context.Context, container string, window runtime.Window) (models.LogSnapshot, error)
}

// Options configures a Service.
type Options struct {
	Limits         Limits
	Policy         classify.Policy
	RequestTimeout time.Duration
}

// Service runs one status refresh per call. It holds no per-request state.
type Service struct {
	invoker        Invoker
	extractor      *extract.Extractor
	limits         Limits
	policy         classify.Policy
	requestTimeout time.Duration
	now            func() time.Time
}

// NewService creates a Service. A nil extractor means extract.Default().
func NewService(invoker Invoker, extractor *extract.Extractor, opts Options) *Service {
	if extractor == nil {
		extractor = extract.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}

	return &Service{
		invoker:        invoker,
		extractor:      extractor,
		limits:         opts.Limits,
		policy:         opts.Policy,
		requestTimeout: opts.RequestTimeout,
		now:            time.Now,
	}
}

// Limits returns the query defaults and maxima in effect.
func (s *Service) Limits() Limits {
	return s.limits
}

// Refresh probes the container, reads its recent logs and derives a status.
// It never fails: problems are reported through the status and Diagnostics.
func (s *Service) Refresh(ctx context.Context, q Query) (report models.StatusReport) {
	start := s.now()
	target, diagnostics := NormalizeQuery(q, s.limits)

	report = models.StatusReport{
		Container:   target.Container,
		Since:       target.Window.Since.String(),
		Tail:        target.Window.Tail,
		Readiness:   models.UnreachableProbe(models.EndpointReadiness, "not probed"),
		Liveness:    models.UnreachableProbe(models.EndpointLiveness, "not probed"),
		Diagnostics: diagnostics,
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	defer func() {
		report.DurationMS = s.now().Sub(start).Milliseconds()
		refreshTotal.WithLabelValues(string(report.Status)).Inc()
		refreshDuration.Observe(time.Since(start).Seconds())
		log.Debug().
			Str("container", report.Container).
			Str("status", string(report.Status)).
			Str("rule", report.Rule).
			Int("log_lines", report.LogLines).
			Int64("duration_ms", report.DurationMS).
			Msg("Status refreshed")
	}()

	state, err := s.invoker.Inspect(ctx, target.Container)
	if err != nil {
		var unreachable runtime.RuntimeUnreachableError
		var notFound runtime.ContainerNotFoundError

		switch {
		case errors.As(err, &unreachable):
			log.Warn().Err(err).Str("container", target.Container).Msg("Container runtime unreachable")
			s.finish(&report, models.StatusUnknown, RuleRuntimeUnreachable, err.Error())
			return report
		case errors.As(err, &notFound):
			s.finish(&report, models.StatusError, RuleContainerNotFound, err.Error())
			return report
		default:
			report.Diagnostics = append(report.Diagnostics, "inspect: "+err.Error())
		}
	} else {
		report.State = &state
	}

	running := report.State == nil || report.State.Running
	var snapshot models.LogSnapshot

	var g errgroup.Group
	if running {
		g.Go(func() error {
			report.Readiness = s.invoker.Probe(ctx, target.Container, models.EndpointReadiness)
			return nil
		})
		g.Go(func() error {
			report.Liveness = s.invoker.Probe(ctx, target.Container, models.EndpointLiveness)
			return nil
		})
	}
	g.Go(func() error {
		var tailErr error
		snapshot, tailErr = s.invoker.Tail(ctx, target.Container, target.Window)
		if tailErr != nil {
			return fmt.Errorf("logs: %w", tailErr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		report.Diagnostics = append(report.Diagnostics, err.Error())
	}

	for _, probe := range []models.ProbeResult{report.Readiness, report.Liveness} {
		if running && probe.Error != "" {
			report.Diagnostics = append(report.Diagnostics, string(probe.Endpoint)+": "+probe.Error)
		}
	}

	report.RetrievedAt = snapshot.RetrievedAt
	if report.RetrievedAt.IsZero() {
		report.RetrievedAt = s.now()
	}
	report.Metrics = s.extractor.Extract(snapshot)
	report.Activity = extract.CountActivity(snapshot)
	report.SyncHint = extract.DetectSyncHint(snapshot)
	report.LogLines = len(snapshot.Lines)

	if !running {
		s.finish(&report, models.StatusError, RuleContainerStopped, "container is "+report.State.Status)
		return report
	}

	decision := classify.Classify(classify.Input{
		Readiness:     report.Readiness,
		Liveness:      report.Liveness,
		Metrics:       report.Metrics,
		SnapshotEmpty: snapshot.Empty(),
		RetrievedAt:   report.RetrievedAt,
	}, s.policy)
	report.Status = decision.Status
	report.Rule = decision.Rule

	return report
}

func (s *Service) finish(report *models.StatusReport, status models.NodeStatus, rule, diagnostic string) {
	report.Status = status
	report.Rule = rule
	report.Diagnostics = append(report.Diagnostics, diagnostic)
	if report.RetrievedAt.IsZero() {
		report.RetrievedAt = s.now()
	}
}
