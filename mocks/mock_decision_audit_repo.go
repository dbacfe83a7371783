package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimcheck/internal/domain"
)

// MockDecisionAuditRepo is a mock implementation of port.DecisionAuditRepository.
type MockDecisionAuditRepo struct {
	mock.Mock
}

func (m *MockDecisionAuditRepo) Create(ctx context.Context, entry *domain.DecisionAuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockDecisionAuditRepo) ListByRequest(ctx context.Context, requestID string) ([]domain.DecisionAuditEntry, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DecisionAuditEntry), args.Error(1)
}

func (m *MockDecisionAuditRepo) ListRecent(ctx context.Context, limit int) ([]domain.DecisionAuditEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DecisionAuditEntry), args.Error(1)
}
