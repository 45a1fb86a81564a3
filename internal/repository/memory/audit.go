package memory

import (
	"context"
	"sync"

	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/google/uuid"
)

// AuditRepository keeps the most recent audit entries in a ring.
type AuditRepository struct {
	mu      sync.RWMutex
	entries []domain.AuditLog
	limit   int
}

func NewAuditRepository(limit int) *AuditRepository {
	return &AuditRepository{limit: limit}
}

func (r *AuditRepository) Create(_ context.Context, entry *domain.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, *entry)
	if r.limit > 0 && len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
	return nil
}

// Recent returns stored entries, oldest first.
func (r *AuditRepository) Recent() []domain.AuditLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.AuditLog, len(r.entries))
	copy(out, r.entries)
	return out
}
