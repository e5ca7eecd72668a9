package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"snapfeed/backend/internal/audit/domain"
)

// recordLogger is the slice of otellog.Logger the emitter needs. Tests
// substitute a capture.
type recordLogger interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// AuditEmitter forwards audit entries as OTel log records so they reach the
// collector alongside traces and metrics.
type AuditEmitter struct {
	logger recordLogger
}

// NewAuditEmitter returns an emitter backed by the given LoggerProvider.
// A nil provider returns nil, which audit.Logger treats as "no emitter".
func NewAuditEmitter(provider *sdklog.LoggerProvider) *AuditEmitter {
	if provider == nil {
		return nil
	}
	return &AuditEmitter{logger: provider.Logger("snapfeed.audit")}
}

func newAuditEmitterWithLogger(logger recordLogger) *AuditEmitter {
	return &AuditEmitter{logger: logger}
}

// Emit converts the entry to an OTel log record and emits it. Best-effort;
// a nil entry is ignored.
func (e *AuditEmitter) Emit(ctx context.Context, entry *domain.AuditLog) {
	if e == nil || entry == nil {
		return
	}
	rec := otellog.Record{}
	if !entry.CreatedAt.IsZero() {
		rec.SetTimestamp(entry.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	if entry.Metadata != "" {
		rec.SetBody(otellog.StringValue(entry.Metadata))
	}
	if entry.ID != "" {
		rec.AddAttributes(otellog.String("audit_id", entry.ID))
	}
	if entry.ActorID != "" {
		rec.AddAttributes(otellog.String("actor_id", entry.ActorID))
	}
	if entry.Action != "" {
		rec.AddAttributes(otellog.String("action", entry.Action))
	}
	if entry.Outcome != "" {
		rec.AddAttributes(otellog.String("outcome", entry.Outcome))
	}
	e.logger.Emit(ctx, rec)
}
