// Package audit records application events (auth flows, captioning, uploads)
// to the audit log table. Writes are best-effort and never fail the caller.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"snapfeed/backend/internal/audit/domain"
	auditrepo "snapfeed/backend/internal/audit/repository"
)

// Actions recorded by the auth and post code paths.
const (
	ActionRegister = "auth.register"
	ActionLogin    = "auth.login"
	ActionRefresh  = "auth.refresh"
	ActionLogout   = "auth.logout"
	ActionCaption  = "post.caption"
	ActionUpload   = "post.upload"
)

// Outcome values, re-exported so callers need only this package.
const (
	OutcomeSuccess = domain.OutcomeSuccess
	OutcomeFailure = domain.OutcomeFailure
)

// AuditLogger writes a single audit event. LogEvent is best-effort: failures
// are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, actorID, action, outcome string, metadata map[string]string)
}

// Emitter forwards a persisted audit entry to an external sink, such as an
// OpenTelemetry log exporter. Emit must not block the caller for long.
type Emitter interface {
	Emit(ctx context.Context, entry *domain.AuditLog)
}

// Logger implements AuditLogger over the audit repository.
type Logger struct {
	repo    auditrepo.Repository
	emitter Emitter
}

// NewLogger returns an AuditLogger that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// WithEmitter forwards every logged event to e in addition to persisting it.
// Returns the logger for chaining.
func (l *Logger) WithEmitter(e Emitter) *Logger {
	l.emitter = e
	return l
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, actorID, action, outcome string, metadata map[string]string) {
	if l == nil || l.repo == nil {
		return
	}
	meta := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			meta = string(b)
		}
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		ActorID:   actorID,
		Action:    action,
		Outcome:   outcome,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		slog.Error("audit: failed to log event", "action", action, "error", err)
	}
	if l.emitter != nil {
		l.emitter.Emit(ctx, entry)
	}
}

// Nop is an AuditLogger that discards events. Used in tests and when the
// audit table is unavailable.
type Nop struct{}

// LogEvent discards the event.
func (Nop) LogEvent(context.Context, string, string, string, map[string]string) {}
