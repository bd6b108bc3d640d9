package ports

import (
	"context"

	"srtmon/internal/core/domain"
)

// StatsSource fetches one stats document per call.
type StatsSource interface {
	Fetch(ctx context.Context, statsURL string) (*domain.StatsSnapshot, error)
}

// SlotStore is a string-keyed store of JSON documents.
type SlotStore interface {
	// Get returns ok=false when the slot has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
}
