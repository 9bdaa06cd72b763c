// Package explainmock provides testify mocks for the explain package.
package explainmock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/san-kum/gpunexus/internal/explain"
)

// MockGenerator is a mock of explain.Generator.
type MockGenerator struct {
	mock.Mock
}

// NewMockGenerator returns a mock that asserts its expectations on test cleanup.
func NewMockGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGenerator {
	m := &MockGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) Chat(ctx context.Context, system string, history []explain.Turn, message string) (string, error) {
	args := m.Called(ctx, system, history, message)
	return args.String(0), args.Error(1)
}

var _ explain.Generator = (*MockGenerator)(nil)
