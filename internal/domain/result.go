package domain

// Status classifies the outcome of one operation within a committed batch.
type Status int

const (
	// StatusPass indicates the operation committed successfully and was not
	// subsequently rolled back.
	StatusPass Status = iota
	// StatusFail indicates the operation's commit failed. At most one
	// operation per batch carries this status.
	StatusFail
	// StatusSkip indicates the operation was never attempted because an
	// earlier operation in the batch failed.
	StatusSkip
	// StatusRolledBack indicates the operation committed and was then
	// successfully reversed after a later operation failed.
	StatusRolledBack
	// StatusRollbackFail indicates the operation committed but its rollback
	// failed; the resource may be left in the committed state.
	StatusRollbackFail
)

// String returns the lower-snake name used in logs and API responses.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	case StatusSkip:
		return "skip"
	case StatusRolledBack:
		return "rolled_back"
	case StatusRollbackFail:
		return "rollback_fail"
	default:
		return "unknown"
	}
}

// Result is the recorded outcome of a single operation. Cause is set only for
// StatusFail and StatusRollbackFail. ResourceID is set when the operation
// created a named resource before the batch unwound (Pass and RollbackFail
// outcomes only).
type Result struct {
	Status     Status
	Cause      string
	ResourceID string
}

// Succeeded reports whether this entry describes a non-failure outcome.
// Skip and RolledBack count as non-failures: the resource was left untouched
// or restored.
func (r Result) Succeeded() bool {
	return r.Status != StatusFail && r.Status != StatusRollbackFail
}
