package port

import (
	"context"

	"claimcheck/internal/domain"
)

// DecisionAuditRepository persists claim decisions for later review.
type DecisionAuditRepository interface {
	Create(ctx context.Context, entry *domain.DecisionAuditEntry) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.DecisionAuditEntry, error)
	ListRecent(ctx context.Context, limit int) ([]domain.DecisionAuditEntry, error)
}
