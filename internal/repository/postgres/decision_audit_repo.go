package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"claimcheck/internal/domain"
	"claimcheck/internal/port"
)

type decisionAuditRepo struct {
	db *sqlx.DB
}

// NewDecisionAuditRepo creates a new PostgreSQL-backed DecisionAuditRepository.
func NewDecisionAuditRepo(db *sqlx.DB) port.DecisionAuditRepository {
	return &decisionAuditRepo{db: db}
}

func (r *decisionAuditRepo) Create(ctx context.Context, entry *domain.DecisionAuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO decision_audit_log (id, request_id, status, reason, approved_amount, confidence, document_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.RequestID, entry.Status, entry.Reason, entry.ApprovedAmount,
		entry.Confidence, entry.DocumentCount, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("decisionAuditRepo.Create: %w", err)
	}
	return nil
}

func (r *decisionAuditRepo) ListByRequest(ctx context.Context, requestID string) ([]domain.DecisionAuditEntry, error) {
	var entries []domain.DecisionAuditEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM decision_audit_log
		 WHERE request_id = $1
		 ORDER BY created_at DESC`,
		requestID)
	if err != nil {
		return nil, fmt.Errorf("decisionAuditRepo.ListByRequest: %w", err)
	}
	return entries, nil
}

func (r *decisionAuditRepo) ListRecent(ctx context.Context, limit int) ([]domain.DecisionAuditEntry, error) {
	var entries []domain.DecisionAuditEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM decision_audit_log
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("decisionAuditRepo.ListRecent: %w", err)
	}
	return entries, nil
}
