// Package points reads the per-wallet points record from the Oroswap portfolio API.
package points

import (
	"context"
	"errors"

	"OroswapBot/internal/model"
)

// ErrNoPoints is returned when the API knows the wallet but has no record yet.
var ErrNoPoints = errors.New("no points data")

// Fetcher defines the interface for fetching a wallet's points record.
type Fetcher interface {
	FetchPoints(ctx context.Context, address string) (*model.PointsRecord, error)
	Name() string
}

// MockFetcher returns a fixed record, or Err when set.
type MockFetcher struct {
	Record model.PointsRecord
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPoints(_ context.Context, _ string) (*model.PointsRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	rec := m.Record
	return &rec, nil
}
