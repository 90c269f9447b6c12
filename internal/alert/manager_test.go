package alert

import (
	"context"
	"testing"
	"time"

	"SmartBid/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRecorder collects writes and answers the impression lookbacks.
type memRecorder struct {
	decisions []model.DecisionRecord
	alerts    []model.Alert
	lastSeen  time.Time
	seen      bool
	firstAt   time.Time
	hasFirst  bool
}

func (m *memRecorder) RecordDecision(rec *model.DecisionRecord) error {
	m.decisions = append(m.decisions, *rec)
	return nil
}

func (m *memRecorder) RecordAlert(a *model.Alert) error {
	m.alerts = append(m.alerts, *a)
	return nil
}

func (m *memRecorder) LastImpressionsAt(int64) (time.Time, bool, error) {
	return m.lastSeen, m.seen, nil
}

func (m *memRecorder) FirstRecordAt(int64) (time.Time, bool, error) {
	return m.firstAt, m.hasFirst, nil
}

func (m *memRecorder) Close() error { return nil }

func record(action model.Action, oldBid, newBid int, success bool) *model.DecisionRecord {
	return &model.DecisionRecord{
		CampaignID:  101,
		Keyword:     "k",
		Timestamp:   time.Now(),
		Impressions: 1000,
		Action:      action,
		OldBid:      oldBid,
		NewBid:      newBid,
		Success:     success,
	}
}

func alertTypes(alerts []model.Alert) []model.AlertType {
	types := make([]model.AlertType, len(alerts))
	for i, a := range alerts {
		types[i] = a.Type
	}
	return types
}

func TestEvaluate_BidJumpOverThreshold(t *testing.T) {
	m := NewManager(DefaultThresholds(), &memRecorder{}, nil)

	// 100 -> 160 is a 60% move
	alerts := m.Evaluate(record(model.ActionRaiseBid, 100, 160, true))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertBidJump, alerts[0].Type)

	// 100 -> 140 is within the 50% threshold
	alerts = m.Evaluate(record(model.ActionRaiseBid, 100, 140, true))
	assert.Empty(t, alerts)
}

func TestEvaluate_AutoPause(t *testing.T) {
	m := NewManager(DefaultThresholds(), &memRecorder{}, nil)

	alerts := m.Evaluate(record(model.ActionPause, 200, 200, true))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertAutoPause, alerts[0].Type)

	// A failed pause raises the execution alert instead.
	alerts = m.Evaluate(record(model.ActionPause, 200, 200, false))
	assert.Equal(t, []model.AlertType{model.AlertExecFailed}, alertTypes(alerts))
}

func TestEvaluate_ExecutionFailure(t *testing.T) {
	m := NewManager(DefaultThresholds(), &memRecorder{}, nil)

	rec := record(model.ActionRaiseBid, 100, 160, false)
	rec.Error = "all 3 attempts exhausted"
	alerts := m.Evaluate(rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertExecFailed, alerts[0].Type)
	assert.Contains(t, alerts[0].Message, "all 3 attempts exhausted")
}

func TestEvaluate_NoImpressionsSustained(t *testing.T) {
	mem := &memRecorder{lastSeen: time.Now().Add(-25 * time.Hour), seen: true}
	m := NewManager(DefaultThresholds(), mem, nil)

	rec := record(model.ActionNoOp, 200, 200, true)
	rec.Impressions = 0
	alerts := m.Evaluate(rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertNoImpressions, alerts[0].Type)

	// Recent impressions: inside the window, no alert.
	mem.lastSeen = time.Now().Add(-1 * time.Hour)
	assert.Empty(t, m.Evaluate(rec))
}

func TestEvaluate_NoImpressionsEver(t *testing.T) {
	// A campaign that never showed at all still alerts, measured from
	// its earliest record.
	mem := &memRecorder{firstAt: time.Now().Add(-25 * time.Hour), hasFirst: true}
	m := NewManager(DefaultThresholds(), mem, nil)

	rec := record(model.ActionNoOp, 200, 200, true)
	rec.Impressions = 0
	alerts := m.Evaluate(rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertNoImpressions, alerts[0].Type)

	// Brand-new campaign: first record inside the window, no alert yet.
	mem.firstAt = time.Now().Add(-1 * time.Hour)
	assert.Empty(t, m.Evaluate(rec))

	// No records at all: duration cannot be established.
	mem.hasFirst = false
	assert.Empty(t, m.Evaluate(rec))
}

func TestEmit_WritesSinkAndNotifier(t *testing.T) {
	mem := &memRecorder{}
	notes := &captureNotifier{}
	m := NewManager(DefaultThresholds(), mem, notes)

	alerts := m.Evaluate(record(model.ActionPause, 200, 200, true))
	m.Emit(context.Background(), alerts)

	require.Len(t, mem.alerts, 1)
	require.Len(t, notes.sent, 1)
	assert.Contains(t, notes.sent[0], "auto-paused")
}

type captureNotifier struct {
	sent []string
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.sent = append(c.sent, text)
	return nil
}
