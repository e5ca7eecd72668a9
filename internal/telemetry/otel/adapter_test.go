package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"

	"snapfeed/backend/internal/audit/domain"
)

func TestNewAuditEmitterNilProvider(t *testing.T) {
	em := NewAuditEmitter(nil)
	if em != nil {
		t.Fatalf("NewAuditEmitter(nil) = %v, want nil", em)
	}
	// nil receiver is safe to call
	em.Emit(context.Background(), &domain.AuditLog{ID: "x"})
}

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	emitted int
	rec     otellog.Record
}

func (r *recordCapture) Emit(_ context.Context, rec otellog.Record) {
	r.emitted++
	r.rec = rec
}

func TestEmitMapsEntryToRecord(t *testing.T) {
	cap := &recordCapture{}
	em := newAuditEmitterWithLogger(cap)

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	em.Emit(context.Background(), &domain.AuditLog{
		ID:        "log-1",
		ActorID:   "user-1",
		Action:    "auth.login",
		Outcome:   domain.OutcomeSuccess,
		Metadata:  `{"email":"ada@example.com"}`,
		CreatedAt: created,
	})

	if cap.emitted != 1 {
		t.Fatalf("emitted = %d, want 1", cap.emitted)
	}
	rec := cap.rec
	if !rec.Timestamp().Equal(created) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), created)
	}
	if got := rec.Body().AsString(); got != `{"email":"ada@example.com"}` {
		t.Errorf("body = %q", got)
	}
	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	want := map[string]string{
		"audit_id": "log-1",
		"actor_id": "user-1",
		"action":   "auth.login",
		"outcome":  domain.OutcomeSuccess,
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attr %s = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestEmitNilEntry(t *testing.T) {
	cap := &recordCapture{}
	em := newAuditEmitterWithLogger(cap)
	em.Emit(context.Background(), nil)
	if cap.emitted != 0 {
		t.Fatalf("emitted = %d, want 0", cap.emitted)
	}
}

func TestEmitZeroTimestampDefaulted(t *testing.T) {
	cap := &recordCapture{}
	em := newAuditEmitterWithLogger(cap)
	em.Emit(context.Background(), &domain.AuditLog{ID: "log-2"})
	if cap.rec.Timestamp().IsZero() {
		t.Error("timestamp should default to now for zero CreatedAt")
	}
}
