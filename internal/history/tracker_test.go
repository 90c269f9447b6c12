package history

import (
	"path/filepath"
	"testing"
	"time"

	"SmartBid/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStrategy() *model.Strategy {
	return &model.Strategy{
		Keyword:    "k",
		Region:     "r",
		CampaignID: 7,
		TargetROI:  1.8,
		MinBid:     100,
		MaxBid:     500,
		Step:       10,
	}
}

func newTestTracker(t *testing.T) (*Tracker, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "states.json")
	tr, err := NewTracker(path)
	require.NoError(t, err)
	return tr, path
}

func TestLoad_DefaultsToStrategyFloor(t *testing.T) {
	tr, _ := newTestTracker(t)

	state := tr.Load(7, testStrategy())
	assert.Equal(t, 100, state.CurrentBid)
	assert.Equal(t, model.StatusActive, state.Status)
	assert.Equal(t, 0, state.LowROICycles)
	assert.Equal(t, model.ActionNoOp, state.LastAction)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	tr, path := newTestTracker(t)

	want := model.CampaignState{
		CampaignID:      7,
		CurrentBid:      230,
		LowROICycles:    2,
		LastAction:      model.ActionRaiseBid,
		LastEvaluatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Status:          model.StatusActive,
	}
	require.NoError(t, tr.Save(7, want))

	got := tr.Load(7, testStrategy())
	assert.Equal(t, want, got)

	// A fresh tracker over the same file sees the persisted state.
	reloaded, err := NewTracker(path)
	require.NoError(t, err)
	got = reloaded.Load(7, testStrategy())
	assert.True(t, got.LastEvaluatedAt.Equal(want.LastEvaluatedAt))
	got.LastEvaluatedAt = want.LastEvaluatedAt
	assert.Equal(t, want, got)
}

func TestSave_RejectsResumeFromPause(t *testing.T) {
	tr, _ := newTestTracker(t)

	paused := model.CampaignState{CampaignID: 7, CurrentBid: 200, Status: model.StatusPaused}
	require.NoError(t, tr.Save(7, paused))

	resumed := paused
	resumed.Status = model.StatusActive
	err := tr.Save(7, resumed)
	require.Error(t, err)

	// state unchanged
	got := tr.Load(7, testStrategy())
	assert.Equal(t, model.StatusPaused, got.Status)
}

func TestAdvanceCounter_Transitions(t *testing.T) {
	strat := testStrategy()

	tests := []struct {
		name    string
		cycles  int
		spend   float64
		revenue float64
		want    int
	}{
		{"shortfall increments", 0, 100, 100, 1}, // roi 1.0 < 1.8
		{"second shortfall", 1, 100, 170, 2},     // roi 1.7 < 1.8
		{"third shortfall", 2, 100, 100, 3},
		{"healthy roi resets", 2, 100, 200, 0},   // roi 2.0 >= 1.8
		{"roi at target resets", 2, 100, 180, 0}, // roi 1.8 >= 1.8
		{"undefined roi untouched", 2, 0, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := model.CampaignState{CampaignID: 7, LowROICycles: tt.cycles}
			snap := &model.Snapshot{CampaignID: 7, Impressions: 1000, Clicks: 40, Spend: tt.spend, Revenue: tt.revenue}
			got := AdvanceCounter(state, snap, strat)
			assert.Equal(t, tt.want, got.LowROICycles)
		})
	}
}

func TestSave_AtomicReplaceSurvivesReopen(t *testing.T) {
	tr, path := newTestTracker(t)

	for i := 0; i < 5; i++ {
		state := model.CampaignState{CampaignID: int64(i), CurrentBid: 100 + i, Status: model.StatusActive}
		require.NoError(t, tr.Save(int64(i), state))
	}

	reloaded, err := NewTracker(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got := reloaded.Load(int64(i), testStrategy())
		assert.Equal(t, 100+i, got.CurrentBid)
	}
}
