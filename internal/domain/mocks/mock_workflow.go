// Package mocks holds testify mocks of the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gooze.dev/pkg/jsgooze/internal/domain"
)

// MockWorkflow is a mock implementation of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

var _ domain.Workflow = (*MockWorkflow)(nil)

// NewMockWorkflow creates a MockWorkflow whose expectations are asserted
// when the test ends.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	m := &MockWorkflow{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Estimate provides a mock function.
func (m *MockWorkflow) Estimate(ctx context.Context, args domain.EstimateArgs) error {
	ret := m.Called(ctx, args)
	return ret.Error(0)
}

// Test provides a mock function.
func (m *MockWorkflow) Test(ctx context.Context, args domain.TestArgs) error {
	ret := m.Called(ctx, args)
	return ret.Error(0)
}

// View provides a mock function.
func (m *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	ret := m.Called(ctx, args)
	return ret.Error(0)
}

// Merge provides a mock function.
func (m *MockWorkflow) Merge(ctx context.Context, args domain.MergeArgs) error {
	ret := m.Called(ctx, args)
	return ret.Error(0)
}
