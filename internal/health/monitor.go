// Package health probes backing services and publishes the result through the
// gRPC health service.
package health

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Check func(ctx context.Context) error

type Monitor struct {
	server  *health.Server
	checks  map[string]Check
	timeout time.Duration
	logger  *slog.Logger
}

func NewMonitor(server *health.Server, timeout time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{server: server, checks: make(map[string]Check), timeout: timeout, logger: logger}
}

// Register adds a required dependency. Call before Run.
func (m *Monitor) Register(name string, check Check) {
	m.checks[name] = check
}

// CheckOnce runs every probe and sets the overall status. It returns the
// names of failing dependencies in sorted order.
func (m *Monitor) CheckOnce(ctx context.Context) []string {
	var failing []string
	for name, check := range m.checks {
		checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := check(checkCtx)
		cancel()
		if err != nil {
			m.logger.Warn("dependency unhealthy", "dependency", name, "error", err)
			failing = append(failing, name)
		}
	}
	sort.Strings(failing)

	status := healthpb.HealthCheckResponse_SERVING
	if len(failing) > 0 {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.server.SetServingStatus("", status)
	return failing
}

func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	m.CheckOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.server.Shutdown()
			return
		case <-ticker.C:
			m.CheckOnce(ctx)
		}
	}
}
