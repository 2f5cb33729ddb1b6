package ports

import (
	"context"

	"github.com/asistenmu/workflow-api/internal/core/domain"
)

// AuditPublisher accepts audit events for asynchronous persistence. Publishing
// never fails from the caller's perspective; journal writes are best-effort.
type AuditPublisher interface {
	Publish(event domain.AuditEvent)
}

// AuditRepository persists audit events to the journal collection.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuditEvent) error
}
