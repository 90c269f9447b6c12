package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"SmartBid/internal/alert"
	"SmartBid/internal/collector"
	"SmartBid/internal/executor"
	"SmartBid/internal/history"
	"SmartBid/internal/model"
	"SmartBid/internal/scheduler"
	"SmartBid/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closeTrackingRecorder flags whether Close ran before the process
// would have exited.
type closeTrackingRecorder struct {
	closed bool
}

func (r *closeTrackingRecorder) RecordDecision(*model.DecisionRecord) error { return nil }
func (r *closeTrackingRecorder) RecordAlert(*model.Alert) error             { return nil }
func (r *closeTrackingRecorder) LastImpressionsAt(int64) (time.Time, bool, error) {
	return time.Time{}, false, nil
}
func (r *closeTrackingRecorder) FirstRecordAt(int64) (time.Time, bool, error) {
	return time.Time{}, false, nil
}
func (r *closeTrackingRecorder) Close() error { r.closed = true; return nil }

type stubAPI struct{}

func (stubAPI) SetBid(context.Context, int64, int) error { return nil }
func (stubAPI) Pause(context.Context, int64) error       { return nil }

func newTestScheduler(t *testing.T, strategiesPath string, fetcher collector.Fetcher, rec *closeTrackingRecorder) *scheduler.Scheduler {
	t.Helper()
	tracker, err := history.NewTracker(filepath.Join(t.TempDir(), "states.json"))
	require.NoError(t, err)
	return scheduler.NewScheduler(strategy.NewStore(strategiesPath), fetcher, tracker,
		executor.New(stubAPI{}, 1), rec, alert.NewManager(alert.DefaultThresholds(), rec, nil), nil)
}

func TestRunSinglePass_CleanExitClosesRecorder(t *testing.T) {
	rec := &closeTrackingRecorder{}
	sched := newTestScheduler(t, filepath.Join(t.TempDir(), "missing.json"), &collector.MockFetcher{}, rec)

	code := runSinglePass(context.Background(), sched, rec)
	assert.Equal(t, 0, code)
	assert.True(t, rec.closed)
}

func TestRunSinglePass_PassErrorClosesRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategies.json")
	require.NoError(t, os.WriteFile(path, []byte("[not json"), 0644))

	rec := &closeTrackingRecorder{}
	sched := newTestScheduler(t, path, &collector.MockFetcher{}, rec)

	code := runSinglePass(context.Background(), sched, rec)
	assert.Equal(t, 1, code)
	assert.True(t, rec.closed)
}

func TestRunSinglePass_CampaignFailureClosesRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategies.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"keyword": "k", "region": "r", "campaign_id": 1,
		"target_ctr_min": 0.03, "target_ctr_max": 0.06, "target_roi": 1.8,
		"min_bid": 100, "max_bid": 500, "step": 10, "interval_hours": 2, "enabled": true}]`), 0644))

	rec := &closeTrackingRecorder{}
	fetcher := &collector.MockFetcher{Err: errors.New("stats backend down")}
	sched := newTestScheduler(t, path, fetcher, rec)

	code := runSinglePass(context.Background(), sched, rec)
	assert.Equal(t, 1, code)
	assert.True(t, rec.closed)
}
