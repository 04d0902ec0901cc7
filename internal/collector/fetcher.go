package collector

import (
	"context"
	"time"

	"MASentinel/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}
