package mocks

import (
	"context"

	"scanreceiver/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockScanService struct {
	mock.Mock
}

func (m *MockScanService) Ping(ctx context.Context, payload map[string]any) {
	m.Called(ctx, payload)
}

func (m *MockScanService) Submit(ctx context.Context, sub *model.ScanSubmission) (*model.ScanReceipt, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScanReceipt), args.Error(1)
}
