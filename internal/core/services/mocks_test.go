package services

import (
	"context"

	"srtmon/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockStatsSource struct {
	mock.Mock
}

func (m *MockStatsSource) Fetch(ctx context.Context, statsURL string) (*domain.StatsSnapshot, error) {
	args := m.Called(ctx, statsURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatsSnapshot), args.Error(1)
}

type MockSlotStore struct {
	mock.Mock
}

func (m *MockSlotStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockSlotStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockSlotStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
