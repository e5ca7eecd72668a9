package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"snapfeed/backend/internal/audit/domain"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	fail    error
}

func (r *memAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memAuditRepo) ListByActor(_ context.Context, actorID string, limit, offset int32) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditLog
	for _, e := range r.entries {
		if e.ActorID == actorID {
			out = append(out, e)
		}
	}
	if offset > 0 && int(offset) < len(out) {
		out = out[offset:]
	}
	if limit > 0 && int(limit) < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func TestLogEventPersists(t *testing.T) {
	repo := &memAuditRepo{}
	logger := NewLogger(repo)

	logger.LogEvent(context.Background(), "user-1", ActionLogin, domain.OutcomeSuccess, map[string]string{"device": "laptop"})

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.ActorID != "user-1" || entry.Action != ActionLogin || entry.Outcome != domain.OutcomeSuccess {
		t.Errorf("entry = %+v", entry)
	}
	if entry.ID == "" || entry.CreatedAt.IsZero() {
		t.Errorf("id/createdAt not stamped: %+v", entry)
	}
}

func TestLogEventSwallowsFailures(t *testing.T) {
	repo := &memAuditRepo{fail: errors.New("table missing")}
	logger := NewLogger(repo)

	// Must not panic or propagate; audit is best-effort.
	logger.LogEvent(context.Background(), "user-1", ActionRefresh, domain.OutcomeFailure, nil)
}

func TestNopLogger(t *testing.T) {
	Nop{}.LogEvent(context.Background(), "user-1", ActionLogout, domain.OutcomeSuccess, nil)
}
