package configurator

import "github.com/adimka/admin-console-beta/internal/domain"

// Status classifies the outcome of one operation within a committed batch.
// The type lives in domain so that ports can reference results without
// importing this package; it is aliased here for callers of the core.
type Status = domain.Status

const (
	// StatusPass indicates the operation committed successfully and was not
	// subsequently rolled back.
	StatusPass = domain.StatusPass
	// StatusFail indicates the operation's commit failed. At most one
	// operation per batch carries this status.
	StatusFail = domain.StatusFail
	// StatusSkip indicates the operation was never attempted because an
	// earlier operation in the batch failed.
	StatusSkip = domain.StatusSkip
	// StatusRolledBack indicates the operation committed and was then
	// successfully reversed after a later operation failed.
	StatusRolledBack = domain.StatusRolledBack
	// StatusRollbackFail indicates the operation committed but its rollback
	// failed; the resource may be left in the committed state.
	StatusRollbackFail = domain.StatusRollbackFail
)

// Result is the recorded outcome of a single operation. Cause is set only for
// StatusFail and StatusRollbackFail. ResourceID is set when the operation
// created a named resource before the batch unwound (Pass and RollbackFail
// outcomes only). Aliased from domain; see Status.
type Result = domain.Result

// Pass records a successful commit with no created resource.
func Pass() Result { return Result{Status: StatusPass} }

// PassWithResource records a successful commit that created the named resource.
func PassWithResource(id string) Result {
	return Result{Status: StatusPass, ResourceID: id}
}

// Fail records a failed commit.
func Fail(cause string) Result { return Result{Status: StatusFail, Cause: cause} }

// Skip records an operation never attempted due to an earlier failure.
func Skip() Result { return Result{Status: StatusSkip} }

// RolledBack records a committed operation that was successfully reversed.
func RolledBack() Result { return Result{Status: StatusRolledBack} }

// RollbackFailed records a committed operation whose rollback failed.
func RollbackFailed(cause string) Result {
	return Result{Status: StatusRollbackFail, Cause: cause}
}

// RollbackFailedWithResource records a failed rollback of an operation that
// had created the named resource; the resource is likely orphaned.
func RollbackFailedWithResource(cause, id string) Result {
	return Result{Status: StatusRollbackFail, Cause: cause, ResourceID: id}
}

// OperationReport is the per-batch outcome ledger. Entries keep the order in
// which their keys were first inserted; overwriting an existing key (as the
// orchestrator does when a Pass entry is later replaced by RolledBack) does
// not move it.
type OperationReport struct {
	order   []string
	results map[string]Result
}

// NewOperationReport returns an empty ledger.
func NewOperationReport() *OperationReport {
	return &OperationReport{results: make(map[string]Result)}
}

// Put inserts or overwrites the result for key, preserving first-insertion
// order.
func (o *OperationReport) Put(key string, r Result) {
	if _, ok := o.results[key]; !ok {
		o.order = append(o.order, key)
	}
	o.results[key] = r
}

// Result returns the recorded result for key.
func (o *OperationReport) Result(key string) (Result, bool) {
	r, ok := o.results[key]
	return r, ok
}

// Keys returns the ledger keys in first-insertion order.
func (o *OperationReport) Keys() []string {
	keys := make([]string, len(o.order))
	copy(keys, o.order)
	return keys
}

// Len returns the number of entries in the ledger.
func (o *OperationReport) Len() int { return len(o.order) }

// TransactionSucceeded reports whether every entry in the ledger succeeded.
// An empty ledger succeeds trivially. A batch that failed but fully rolled
// back still reports false: the caller's requested changes were not applied.
func (o *OperationReport) TransactionSucceeded() bool {
	for _, r := range o.results {
		if !r.Succeeded() {
			return false
		}
	}
	return true
}
