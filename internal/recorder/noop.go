package recorder

import (
	"time"

	"SmartBid/internal/model"
)

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordDecision(_ *model.DecisionRecord) error { return nil }
func (n *NoopRecorder) RecordAlert(_ *model.Alert) error             { return nil }
func (n *NoopRecorder) LastImpressionsAt(_ int64) (time.Time, bool, error) {
	return time.Time{}, false, nil
}
func (n *NoopRecorder) FirstRecordAt(_ int64) (time.Time, bool, error) {
	return time.Time{}, false, nil
}
func (n *NoopRecorder) Close() error { return nil }
