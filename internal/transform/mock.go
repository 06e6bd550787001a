package transform

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTransformer is a mock implementation of Transformer.
type MockTransformer struct {
	mock.Mock
}

// NewMockTransformer creates a new MockTransformer.
func NewMockTransformer() *MockTransformer {
	return &MockTransformer{}
}

func (m *MockTransformer) Transform(ctx context.Context, data []byte) (*Result, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Result), args.Error(1)
}
