// Package audit emits structured audit records for configuration changes.
// Records go through the application's slog pipeline tagged with
// log_type=audit so they can be routed to a separate sink.
package audit

import (
	"context"
	"log/slog"
)

// Recorder writes audit records. The zero value is not usable; construct
// with New.
type Recorder struct {
	logger *slog.Logger
}

// New creates a Recorder on top of the given logger.
func New(logger *slog.Logger) *Recorder {
	return &Recorder{
		logger: logger.With(slog.String("log_type", "audit")),
	}
}

// Record emits one audit record. The action names what was done
// ("batch_committed", "managed_service_created"); attrs carry the affected
// resources.
func (r *Recorder) Record(ctx context.Context, action string, attrs ...slog.Attr) {
	r.logger.LogAttrs(ctx, slog.LevelInfo, action, attrs...)
}
