// Package health reports per-dependency connectivity for the /health
// endpoints. Probes run on demand with short timeouts; nothing here touches
// the serving path.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// State of a single dependency as last observed.
type State string

const (
	StateUnknown      State = "unknown"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
)

// Status aggregates dependency states for one service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Probe checks one dependency. Err nil means reachable.
type Probe func(ctx context.Context) error

type dependency struct {
	name      string
	probe     Probe
	mandatory bool
}

// Reporter runs dependency probes and serves the aggregated report.
type Reporter struct {
	deps    []dependency
	timeout time.Duration
	// failureStatus is the HTTP status used for degraded/unhealthy reports.
	// Zero means 200, which matches orchestrations that only read the body.
	failureStatus int
	logger        *slog.Logger
}

func NewReporter(timeout time.Duration, failureStatus int, logger *slog.Logger) *Reporter {
	if failureStatus == 0 {
		failureStatus = http.StatusOK
	}
	return &Reporter{
		timeout:       timeout,
		failureStatus: failureStatus,
		logger:        logger,
	}
}

// AddMandatory registers a dependency the service cannot work without.
func (r *Reporter) AddMandatory(name string, probe Probe) {
	r.deps = append(r.deps, dependency{name: name, probe: probe, mandatory: true})
}

// AddOptional registers a dependency whose failure only degrades the service.
func (r *Reporter) AddOptional(name string, probe Probe) {
	r.deps = append(r.deps, dependency{name: name, probe: probe})
}

// Report probes every dependency and aggregates: healthy only if all
// mandatory dependencies are connected; degraded when only optional ones
// fail; a nil probe leaves the dependency in the unknown state and does not
// count against health.
func (r *Reporter) Report(ctx context.Context) (Status, map[string]State) {
	status := StatusHealthy
	states := make(map[string]State, len(r.deps))

	for _, dep := range r.deps {
		state := r.probeOne(ctx, dep)
		states[dep.name] = state

		if state != StateDisconnected {
			continue
		}
		if dep.mandatory {
			status = StatusUnhealthy
		} else if status == StatusHealthy {
			status = StatusDegraded
		}
	}

	return status, states
}

func (r *Reporter) probeOne(ctx context.Context, dep dependency) State {
	if dep.probe == nil {
		return StateUnknown
	}

	probeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := dep.probe(probeCtx); err != nil {
		r.logger.Warn("health probe failed", "dependency", dep.name, "error", err)
		return StateDisconnected
	}
	return StateConnected
}

// Handler serves the health report as {status, <dependency>: state, ...}.
func (r *Reporter) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		status, states := r.Report(req.Context())

		body := make(map[string]string, len(states)+1)
		body["status"] = string(status)
		for name, state := range states {
			body[name] = string(state)
		}

		code := http.StatusOK
		if status != StatusHealthy {
			code = r.failureStatus
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			r.logger.Error("failed to encode health report", "error", err)
		}
	}
}
