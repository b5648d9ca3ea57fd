// Package configurator implements a transactional orchestrator for batched
// configuration changes.
//
// A Configurator collects reversible operations (component start/stop,
// feature install/uninstall, settings-file writes, service configuration
// updates, managed-service creation/deletion) in registration order and
// applies them with a single Commit call. If any operation fails, the
// operations that already committed are rolled back in reverse order on a
// best-effort basis, and the outcome of every operation is reported in an
// OperationReport keyed by the opaque token returned at registration time.
//
// The orchestrator does not guarantee atomicity or isolation: rollback is
// compensation, not a transaction log, and it can itself fail. Rollback
// failures are surfaced in the report so an operator can intervene manually.
// An in-flight batch lives entirely in memory; it does not survive a process
// restart. State reads performed while another batch is committing against
// the same resource may observe intermediate state — the Configurator
// provides no cross-batch isolation.
//
// Usage:
//
//	c := configurator.New(deps, logger)
//
//	stopKey, _ := c.StopComponent(ctx, "catalog-indexer")
//	cfgKey, _ := c.UpdateServiceConfig(ctx, "catalog.indexer", cfg, true)
//
//	report, err := c.Commit(ctx)
//	if err != nil {
//	    // the batch was already committed (ErrAlreadyCommitted)
//	}
//	if !report.TransactionSucceeded() {
//	    res, _ := report.Result(cfgKey)
//	    // inspect res.Status, res.Cause, res.ResourceID
//	}
package configurator

import "context"

// Operation is a single reversible configuration mutation. Implementations
// capture a snapshot of the target resource's state at construction time and
// use only that snapshot and their own target identifier to reverse their
// effect — an Operation never depends on other operations in the batch.
type Operation interface {
	// Commit mutates the external resource to the desired state. When the
	// desired state already equals the snapshot captured at construction,
	// Commit is a no-op. Operations that create a new named resource return
	// its identifier; all others return the empty string.
	//
	// Commit is called at most once per Operation instance.
	Commit(ctx context.Context) (resourceID string, err error)

	// Rollback mutates the external resource back toward the state captured
	// at construction. It must tolerate being invoked after a no-op Commit
	// (in which case it is itself a no-op).
	Rollback(ctx context.Context) error
}
