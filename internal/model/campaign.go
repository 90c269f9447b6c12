package model

import "time"

// Action is a bid-control decision.
type Action string

const (
	ActionRaiseBid Action = "RAISE_BID"
	ActionLowerBid Action = "LOWER_BID"
	ActionPause    Action = "PAUSE"
	ActionNoOp     Action = "NOOP"
)

// CampaignStatus is the controller-side view of a campaign.
type CampaignStatus string

const (
	StatusActive CampaignStatus = "ACTIVE"
	StatusPaused CampaignStatus = "PAUSED"
)

// PauseThreshold is the number of consecutive under-target ROI cycles
// after which a campaign is paused.
const PauseThreshold = 3

// CampaignState is the rolling per-campaign state carried across cycles.
// StatusPaused is terminal inside the controller: only an operator can
// bring a campaign back.
type CampaignState struct {
	CampaignID      int64          `json:"campaign_id"`
	CurrentBid      int            `json:"current_bid"`
	LowROICycles    int            `json:"consecutive_low_roi_cycles"`
	LastAction      Action         `json:"last_action"`
	LastEvaluatedAt time.Time      `json:"last_evaluated_at"`
	Status          CampaignStatus `json:"status"`
}

// Due reports whether the strategy's evaluation interval has elapsed.
func (c *CampaignState) Due(interval time.Duration, now time.Time) bool {
	if c.LastEvaluatedAt.IsZero() {
		return true
	}
	return now.Sub(c.LastEvaluatedAt) >= interval
}
