package configurator

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/adimka/admin-console-beta/internal/ports"
)

// ErrAlreadyCommitted is returned by Commit when the batch has already been
// committed. A Configurator is single-use; build a new one per batch.
var ErrAlreadyCommitted = errors.New("configurator: batch already committed")

// Configurator collects configuration operations and commits them as a single
// compensating batch. Registration methods snapshot the target resource's
// current state at call time and return an opaque key that identifies the
// operation's entry in the OperationReport produced by Commit.
//
// A Configurator is safe for concurrent registration, but a single Commit
// call is expected; the second and later calls fail with ErrAlreadyCommitted.
type Configurator struct {
	components ports.ComponentRuntime
	features   ports.FeatureManager
	settings   ports.SettingsStore
	services   ports.ServiceAdmin
	logger     *slog.Logger

	mu        sync.Mutex
	order     []string
	ops       map[string]Operation
	committed bool
}

// New creates an empty Configurator over the given platform collaborators.
func New(
	components ports.ComponentRuntime,
	features ports.FeatureManager,
	settings ports.SettingsStore,
	services ports.ServiceAdmin,
	logger *slog.Logger,
) *Configurator {
	return &Configurator{
		components: components,
		features:   features,
		settings:   settings,
		services:   services,
		logger:     logger,
		ops:        make(map[string]Operation),
	}
}

// register appends the operation to the batch and returns its ledger key.
func (c *Configurator) register(op Operation) string {
	key := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = append(c.order, key)
	c.ops[key] = op

	return key
}

// Commit applies the registered operations sequentially in registration
// order. On the first operation failure the remaining operations are marked
// skipped and the already-committed prefix is rolled back in reverse order,
// best-effort: a rollback failure is recorded and does not stop the rollback
// of earlier operations.
//
// Operation errors never escape Commit; they are captured in the returned
// report. The only error Commit itself returns is ErrAlreadyCommitted.
func (c *Configurator) Commit(ctx context.Context) (*OperationReport, error) {
	c.mu.Lock()
	if c.committed {
		c.mu.Unlock()
		return nil, ErrAlreadyCommitted
	}
	c.committed = true
	order := c.order
	ops := c.ops
	c.mu.Unlock()

	report := NewOperationReport()
	committed := make([]string, 0, len(order))
	failedAt := -1

	for i, key := range order {
		resourceID, err := ops[key].Commit(ctx)
		if err != nil {
			c.logger.ErrorContext(ctx, "operation commit failed",
				slog.String("operation", "configurator.Commit"),
				slog.String("key", key),
				slog.Int("position", i),
				slog.Any("error", err),
			)
			report.Put(key, Fail(err.Error()))
			failedAt = i
			break
		}

		if resourceID != "" {
			report.Put(key, PassWithResource(resourceID))
		} else {
			report.Put(key, Pass())
		}
		committed = append(committed, key)
	}

	if failedAt < 0 {
		c.logger.InfoContext(ctx, "batch committed",
			slog.String("operation", "configurator.Commit"),
			slog.Int("operations", len(order)),
		)
		return report, nil
	}

	for _, key := range order[failedAt+1:] {
		report.Put(key, Skip())
	}

	c.rollback(ctx, report, committed)

	return report, nil
}

// rollback reverses the committed prefix in exact reverse order. Each entry's
// Pass result is overwritten with the rollback outcome; a resource id recorded
// at commit time is carried into a RollbackFailed entry so the orphaned
// resource can be identified.
func (c *Configurator) rollback(ctx context.Context, report *OperationReport, committed []string) {
	c.mu.Lock()
	ops := c.ops
	c.mu.Unlock()

	for i := len(committed) - 1; i >= 0; i-- {
		key := committed[i]

		if err := ops[key].Rollback(ctx); err != nil {
			c.logger.ErrorContext(ctx, "operation rollback failed",
				slog.String("operation", "configurator.rollback"),
				slog.String("key", key),
				slog.Any("error", err),
			)

			prev, _ := report.Result(key)
			if prev.ResourceID != "" {
				report.Put(key, RollbackFailedWithResource(err.Error(), prev.ResourceID))
			} else {
				report.Put(key, RollbackFailed(err.Error()))
			}
			continue
		}

		report.Put(key, RolledBack())
	}

	c.logger.WarnContext(ctx, "batch rolled back",
		slog.String("operation", "configurator.rollback"),
		slog.Int("rolled_back", len(committed)),
	)
}
