package model

import "time"

// Snapshot is one fetched performance reading for one campaign.
// It is immutable once built; CTR and ROI are always derived locally
// rather than trusted from the wire.
type Snapshot struct {
	CampaignID  int64
	Timestamp   time.Time
	Impressions int
	Clicks      int
	Spend       float64
	Revenue     float64
}

// CTR returns clicks/impressions, 0 when there were no impressions.
func (s *Snapshot) CTR() float64 {
	if s.Impressions == 0 {
		return 0
	}
	return float64(s.Clicks) / float64(s.Impressions)
}

// ROI returns revenue/spend. The second return is false when spend is
// zero: the ratio is undefined and no ROI-driven decision is possible.
func (s *Snapshot) ROI() (float64, bool) {
	if s.Spend == 0 {
		return 0, false
	}
	return s.Revenue / s.Spend, true
}
