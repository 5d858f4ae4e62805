package ports

import "context"

// HealthChecker checks external dependency health.
type HealthChecker interface {
	// Ping verifies connectivity. Returns nil when healthy.
	Ping(ctx context.Context) error
	// Name identifies the dependency ("postgresql", "redis").
	Name() string
}
