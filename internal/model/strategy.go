package model

import "fmt"

// Strategy is one immutable bid policy, keyed by (keyword, region).
// Strategies are edited externally and read fresh each cycle; the core
// never writes them back.
type Strategy struct {
	Keyword       string  `json:"keyword"`
	Region        string  `json:"region"`
	CampaignID    int64   `json:"campaign_id"`
	TargetCTRMin  float64 `json:"target_ctr_min"`
	TargetCTRMax  float64 `json:"target_ctr_max"`
	TargetROI     float64 `json:"target_roi"`
	MinBid        int     `json:"min_bid"`
	MaxBid        int     `json:"max_bid"`
	Step          int     `json:"step"`
	IntervalHours float64 `json:"interval_hours"`
	Enabled       bool    `json:"enabled"`
}

// Key returns the unique strategy key.
func (s *Strategy) Key() string {
	return s.Keyword + "|" + s.Region
}

// Validate checks the field invariants of a single strategy record.
func (s *Strategy) Validate() error {
	if s.Keyword == "" {
		return fmt.Errorf("keyword is required")
	}
	if s.CampaignID <= 0 {
		return fmt.Errorf("campaign_id must be positive")
	}
	if s.TargetCTRMin < 0 || s.TargetCTRMax > 1 || s.TargetCTRMin >= s.TargetCTRMax {
		return fmt.Errorf("ctr targets must satisfy 0 <= min < max <= 1, got [%v, %v]", s.TargetCTRMin, s.TargetCTRMax)
	}
	if s.TargetROI <= 0 {
		return fmt.Errorf("target_roi must be positive, got %v", s.TargetROI)
	}
	if s.MinBid <= 0 || s.MinBid >= s.MaxBid {
		return fmt.Errorf("bid bounds must satisfy 0 < min_bid < max_bid, got [%d, %d]", s.MinBid, s.MaxBid)
	}
	if s.Step <= 0 {
		return fmt.Errorf("step must be positive, got %d", s.Step)
	}
	if s.IntervalHours <= 0 {
		return fmt.Errorf("interval_hours must be positive, got %v", s.IntervalHours)
	}
	return nil
}

// ClampBid forces a bid into the strategy's closed [MinBid, MaxBid] interval.
func (s *Strategy) ClampBid(bid int) int {
	if bid < s.MinBid {
		return s.MinBid
	}
	if bid > s.MaxBid {
		return s.MaxBid
	}
	return bid
}
