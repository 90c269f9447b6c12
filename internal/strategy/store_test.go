package strategy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStrategies(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategies.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return NewStore(path)
}

func TestStoreLoad_Valid(t *testing.T) {
	store := writeStrategies(t, `[
		{"keyword": "постельное белье", "region": "Москва", "campaign_id": 101,
		 "target_ctr_min": 0.03, "target_ctr_max": 0.06, "target_roi": 1.8,
		 "min_bid": 100, "max_bid": 500, "step": 10, "interval_hours": 2, "enabled": true},
		{"keyword": "подушки", "region": "СПб", "campaign_id": 102,
		 "target_ctr_min": 0.02, "target_ctr_max": 0.05, "target_roi": 1.5,
		 "min_bid": 50, "max_bid": 300, "step": 5, "interval_hours": 6, "enabled": false}
	]`)

	strategies, err := store.Load()
	require.NoError(t, err)
	require.Len(t, strategies, 2)
	assert.Equal(t, int64(101), strategies[0].CampaignID)
	assert.True(t, strategies[0].Enabled)
	assert.False(t, strategies[1].Enabled)
}

func TestStoreLoad_SkipsInvalidRecords(t *testing.T) {
	// second record has an inverted bid range, third inverted ctr targets
	store := writeStrategies(t, `[
		{"keyword": "ok", "region": "r", "campaign_id": 1,
		 "target_ctr_min": 0.03, "target_ctr_max": 0.06, "target_roi": 1.8,
		 "min_bid": 100, "max_bid": 500, "step": 10, "interval_hours": 2, "enabled": true},
		{"keyword": "bad-bids", "region": "r", "campaign_id": 2,
		 "target_ctr_min": 0.03, "target_ctr_max": 0.06, "target_roi": 1.8,
		 "min_bid": 500, "max_bid": 100, "step": 10, "interval_hours": 2, "enabled": true},
		{"keyword": "bad-ctr", "region": "r", "campaign_id": 3,
		 "target_ctr_min": 0.06, "target_ctr_max": 0.03, "target_roi": 1.8,
		 "min_bid": 100, "max_bid": 500, "step": 10, "interval_hours": 2, "enabled": true}
	]`)

	strategies, err := store.Load()
	require.NoError(t, err)
	require.Len(t, strategies, 1)
	assert.Equal(t, "ok", strategies[0].Keyword)
}

func TestStoreLoad_DuplicateKeyKeepsFirst(t *testing.T) {
	store := writeStrategies(t, `[
		{"keyword": "k", "region": "r", "campaign_id": 1,
		 "target_ctr_min": 0.03, "target_ctr_max": 0.06, "target_roi": 1.8,
		 "min_bid": 100, "max_bid": 500, "step": 10, "interval_hours": 2, "enabled": true},
		{"keyword": "k", "region": "r", "campaign_id": 2,
		 "target_ctr_min": 0.03, "target_ctr_max": 0.06, "target_roi": 1.8,
		 "min_bid": 100, "max_bid": 500, "step": 10, "interval_hours": 2, "enabled": true}
	]`)

	strategies, err := store.Load()
	require.NoError(t, err)
	require.Len(t, strategies, 1)
	assert.Equal(t, int64(1), strategies[0].CampaignID)
}

func TestStoreLoad_MissingFileIsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	strategies, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, strategies)
}

func TestStoreLoad_MalformedJSON(t *testing.T) {
	store := writeStrategies(t, `{not json`)
	_, err := store.Load()
	assert.Error(t, err)
}
