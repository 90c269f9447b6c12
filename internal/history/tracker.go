package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"SmartBid/internal/model"
)

// Tracker owns the rolling per-campaign state across cycles. One tracker
// instance is the single writer of its state file; concurrent processes
// over the same file are not supported.
type Tracker struct {
	mu       sync.Mutex
	states   map[int64]model.CampaignState
	filePath string
}

// NewTracker loads (or initializes) the state file.
func NewTracker(filePath string) (*Tracker, error) {
	states, err := loadStates(filePath)
	if err != nil {
		return nil, err
	}
	return &Tracker{states: states, filePath: filePath}, nil
}

// Load returns the state for a campaign, creating a default Active state
// at the strategy's floor bid when none exists yet.
func (t *Tracker) Load(campaignID int64, strat *model.Strategy) model.CampaignState {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state, ok := t.states[campaignID]; ok {
		return state
	}
	return model.CampaignState{
		CampaignID: campaignID,
		CurrentBid: strat.MinBid,
		LastAction: model.ActionNoOp,
		Status:     model.StatusActive,
	}
}

// Save replaces a campaign's state and persists the whole set atomically.
// A Paused campaign cannot be flipped back to Active from inside the
// controller; resuming is an operator action through configuration.
func (t *Tracker) Save(campaignID int64, state model.CampaignState) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.states[campaignID]; ok {
		if prev.Status == model.StatusPaused && state.Status == model.StatusActive {
			return fmt.Errorf("campaign %d is paused; resume is an operator action", campaignID)
		}
	}

	state.CampaignID = campaignID
	t.states[campaignID] = state
	if err := t.persist(); err != nil {
		return fmt.Errorf("persist campaign states: %w", err)
	}
	return nil
}

// AdvanceCounter applies the consecutive-low-ROI transition for one cycle:
// reset on roi >= target, +1 on a shortfall, untouched when ROI is
// undefined. The returned state is what the decision engine evaluates.
func AdvanceCounter(state model.CampaignState, snap *model.Snapshot, strat *model.Strategy) model.CampaignState {
	roi, defined := snap.ROI()
	if !defined {
		return state
	}
	if roi >= strat.TargetROI {
		state.LowROICycles = 0
	} else {
		state.LowROICycles++
	}
	return state
}

func loadStates(filePath string) (map[int64]model.CampaignState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[int64]model.CampaignState), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	var states map[int64]model.CampaignState
	if err := json.Unmarshal(data, &states); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	if states == nil {
		states = make(map[int64]model.CampaignState)
	}
	return states, nil
}

// persist writes the full state map via temp file + rename so a crashed
// write never leaves a torn file behind.
func (t *Tracker) persist() error {
	data, err := json.MarshalIndent(t.states, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(t.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".states-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), t.filePath)
}
