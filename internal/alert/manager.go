package alert

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"SmartBid/internal/model"
	"SmartBid/internal/recorder"
)

// Notifier delivers an alert text to an operator channel. Delivery is a
// side channel: failures are logged and never fail the cycle.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// NoopNotifier discards alerts, used when no channel is configured.
type NoopNotifier struct{}

func (NoopNotifier) SendWithRetry(context.Context, string, int) error { return nil }

// Thresholds configures the alert conditions.
type Thresholds struct {
	// BidJumpPercent triggers when one step moves the bid by more than
	// this share of the previous bid.
	BidJumpPercent float64
	// NoImpressionsWindow is how long a campaign may sit at zero
	// impressions before it is flagged.
	NoImpressionsWindow time.Duration
}

// DefaultThresholds mirrors the operational defaults: 50% bid jumps and a
// 24h zero-impression window.
func DefaultThresholds() Thresholds {
	return Thresholds{BidJumpPercent: 50, NoImpressionsWindow: 24 * time.Hour}
}

// Manager evaluates alert conditions over the decision record stream and
// fans resulting alerts out to the sink and the notifier.
type Manager struct {
	thresholds Thresholds
	rec        recorder.Recorder
	notifier   Notifier
}

// NewManager creates an alert manager.
func NewManager(thresholds Thresholds, rec recorder.Recorder, notifier Notifier) *Manager {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Manager{thresholds: thresholds, rec: rec, notifier: notifier}
}

// Evaluate returns the alerts raised by one decision record. It consults
// the sink only for the zero-impression lookback.
func (m *Manager) Evaluate(rec *model.DecisionRecord) []model.Alert {
	var alerts []model.Alert
	now := rec.Timestamp

	if !rec.Success {
		alerts = append(alerts, model.Alert{
			Type:       model.AlertExecFailed,
			CampaignID: rec.CampaignID,
			Keyword:    rec.Keyword,
			Timestamp:  now,
			Message: fmt.Sprintf("campaign %d (%s): %s failed: %s",
				rec.CampaignID, rec.Keyword, rec.Action, rec.Error),
		})
	}

	if rec.Success && rec.Action == model.ActionPause {
		alerts = append(alerts, model.Alert{
			Type:       model.AlertAutoPause,
			CampaignID: rec.CampaignID,
			Keyword:    rec.Keyword,
			Timestamp:  now,
			Message: fmt.Sprintf("campaign %d (%s) auto-paused: roi below target for %d consecutive cycles",
				rec.CampaignID, rec.Keyword, model.PauseThreshold),
		})
	}

	if rec.Success && rec.OldBid > 0 && rec.NewBid != rec.OldBid {
		jump := math.Abs(float64(rec.NewBid-rec.OldBid)) / float64(rec.OldBid) * 100
		if jump > m.thresholds.BidJumpPercent {
			alerts = append(alerts, model.Alert{
				Type:       model.AlertBidJump,
				CampaignID: rec.CampaignID,
				Keyword:    rec.Keyword,
				Timestamp:  now,
				Message: fmt.Sprintf("campaign %d (%s) bid moved %d -> %d (%.1f%%) in one step",
					rec.CampaignID, rec.Keyword, rec.OldBid, rec.NewBid, jump),
			})
		}
	}

	if rec.Impressions == 0 {
		lastSeen, ok, err := m.rec.LastImpressionsAt(rec.CampaignID)
		if err == nil && !ok {
			// Never had impressions on record: measure the window from
			// the campaign's first record instead.
			lastSeen, ok, err = m.rec.FirstRecordAt(rec.CampaignID)
		}
		if err != nil {
			log.Printf("[WARN] impression lookback for campaign %d: %v", rec.CampaignID, err)
		} else if ok && now.Sub(lastSeen) >= m.thresholds.NoImpressionsWindow {
			alerts = append(alerts, model.Alert{
				Type:       model.AlertNoImpressions,
				CampaignID: rec.CampaignID,
				Keyword:    rec.Keyword,
				Timestamp:  now,
				Message: fmt.Sprintf("campaign %d (%s) has had zero impressions since %s",
					rec.CampaignID, rec.Keyword, lastSeen.Format(time.RFC3339)),
			})
		}
	}

	return alerts
}

// Emit appends alerts to the sink and pushes them to the notifier, both
// best-effort.
func (m *Manager) Emit(ctx context.Context, alerts []model.Alert) {
	for i := range alerts {
		a := alerts[i]
		if err := m.rec.RecordAlert(&a); err != nil {
			log.Printf("[ERROR] record alert: %v", err)
		}
		if err := m.notifier.SendWithRetry(ctx, "⚠️ "+a.Message, 3); err != nil {
			log.Printf("[ERROR] deliver alert: %v", err)
		}
	}
}
