package model

import "time"

// DecisionRecord is one append-only audit entry: the snapshot a decision
// was made on, the decision, and how execution went. Records are never
// mutated or deleted by the controller.
type DecisionRecord struct {
	CampaignID  int64
	Keyword     string
	Region      string
	Timestamp   time.Time
	Impressions int
	Clicks      int
	Spend       float64
	Revenue     float64
	CTR         float64
	ROI         float64
	ROIDefined  bool
	Action      Action
	Reason      string
	OldBid      int
	NewBid      int
	Success     bool
	Error       string
}

// AlertType classifies alert events raised from the record stream.
type AlertType string

const (
	AlertBidJump       AlertType = "BID_JUMP"
	AlertAutoPause     AlertType = "AUTO_PAUSE"
	AlertNoImpressions AlertType = "NO_IMPRESSIONS"
	AlertExecFailed    AlertType = "EXEC_FAILED"
)

// Alert is a well-formed notification event. Delivery beyond the sink is
// best-effort.
type Alert struct {
	Type       AlertType
	CampaignID int64
	Keyword    string
	Message    string
	Timestamp  time.Time
}
