// Package health provides a thread-safe health check registry for tracking
// the health of downstream dependencies. The registry is used by the readiness
// endpoint to determine whether the service can accept traffic.
package health

import (
	"context"
	"sync"

	"github.com/adimka/admin-console-beta/internal/app/fanout"
	"github.com/adimka/admin-console-beta/internal/ports"
)

// Compile-time interface check.
var _ ports.HealthRegistry = (*Registry)(nil)

// maxConcurrentChecks bounds how many health checks run at once so a
// readiness probe cannot spawn unbounded goroutines as dependencies grow.
const maxConcurrentChecks = 4

// Registry is a thread-safe implementation of [ports.HealthRegistry].
// Components that implement [ports.HealthChecker] are registered at startup
// and checked on each readiness probe.
type Registry struct {
	mu       sync.RWMutex
	checkers []ports.HealthChecker
}

// New creates an empty health check registry.
func New() *Registry {
	return &Registry{}
}

// Register adds a health checker to the registry. Safe for concurrent use.
func (r *Registry) Register(checker ports.HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker)
}

// CheckAll executes all registered health checks concurrently and returns
// results keyed by checker name. Nil values indicate healthy components. The
// slice is copied under a read lock so checks run without holding the lock.
//
// fanout.Run preserves input order, so outcomes are correlated back to their
// checkers by index. A non-nil outcome error means the check was canceled
// before it ran and is reported as that checker's result.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	checkers := make([]ports.HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	outcomes := fanout.Run(ctx, maxConcurrentChecks, checkers,
		func(ctx context.Context, c ports.HealthChecker) (error, error) {
			return c.HealthCheck(ctx), nil
		})

	results := make(map[string]error, len(outcomes))
	for i, outcome := range outcomes {
		name := checkers[i].Name()
		if outcome.Err != nil {
			results[name] = outcome.Err
			continue
		}
		results[name] = outcome.Value
	}
	return results
}
