package collector

import (
	"context"
	"log"
	"time"

	"SmartBid/internal/model"
	"SmartBid/internal/wb"
)

// WBFetcher pulls campaign stats from the advert API and normalizes them
// into the controller's snapshot model. Transient failures are retried
// with exponential backoff; non-retryable errors propagate to the caller
// untouched.
type WBFetcher struct {
	Client      *wb.Client
	MaxAttempts int
	BaseDelay   time.Duration
}

// NewWBFetcher creates a fetcher over an advert API client.
func NewWBFetcher(client *wb.Client) *WBFetcher {
	return &WBFetcher{
		Client:      client,
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

func (f *WBFetcher) Name() string { return "wildberries" }

// Fetch retrieves the campaign's latest stats. CTR and ROI are derived by
// the snapshot itself, never read off the wire.
func (f *WBFetcher) Fetch(ctx context.Context, strat *model.Strategy) (*model.Snapshot, error) {
	var lastErr error
	delay := f.BaseDelay
	for attempt := 1; attempt <= f.MaxAttempts; attempt++ {
		stats, err := f.Client.GetStats(ctx, strat.CampaignID)
		if err == nil {
			return &model.Snapshot{
				CampaignID:  strat.CampaignID,
				Timestamp:   time.Now(),
				Impressions: stats.Shows,
				Clicks:      stats.Clicks,
				Spend:       stats.Spend,
				Revenue:     stats.Revenue,
			}, nil
		}
		lastErr = err
		if !wb.IsRetryable(err) {
			return nil, err
		}
		if attempt < f.MaxAttempts {
			log.Printf("[WARN] fetch campaign %d failed (attempt %d/%d): %v, retrying in %v",
				strat.CampaignID, attempt, f.MaxAttempts, err, delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return nil, lastErr
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Snapshots map[int64]*model.Snapshot
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, strat *model.Strategy) (*model.Snapshot, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if snap, ok := m.Snapshots[strat.CampaignID]; ok {
		copied := *snap
		copied.CampaignID = strat.CampaignID
		copied.Timestamp = time.Now()
		return &copied, nil
	}
	// Default to a healthy-looking campaign so a tokenless dev run is quiet.
	return &model.Snapshot{
		CampaignID:  strat.CampaignID,
		Timestamp:   time.Now(),
		Impressions: 1000,
		Clicks:      40,
		Spend:       500,
		Revenue:     1000,
	}, nil
}
