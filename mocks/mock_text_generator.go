package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimcheck/internal/port"
)

// MockTextGenerator is a mock implementation of port.TextGenerator.
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) Name() string {
	args := m.Called()
	return args.String(0)
}
