package collector

import (
	"context"

	"SmartBid/internal/model"
)

// Fetcher pulls one performance snapshot per campaign.
type Fetcher interface {
	Fetch(ctx context.Context, strat *model.Strategy) (*model.Snapshot, error)
	Name() string
}
