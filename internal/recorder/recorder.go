package recorder

import (
	"time"

	"SmartBid/internal/model"
)

// Recorder is the append-only persistence sink for the audit trail.
// Writes must never abort a cycle; callers log failures and move on.
type Recorder interface {
	// RecordDecision appends one decision+outcome entry.
	RecordDecision(rec *model.DecisionRecord) error
	// RecordAlert appends one alert event.
	RecordAlert(alert *model.Alert) error
	// LastImpressionsAt returns the timestamp of the most recent decision
	// record for the campaign that saw a non-zero impression count. The
	// second return is false when no such record exists.
	LastImpressionsAt(campaignID int64) (time.Time, bool, error)
	// FirstRecordAt returns the timestamp of the campaign's earliest
	// decision record. The second return is false when the campaign has
	// no records at all.
	FirstRecordAt(campaignID int64) (time.Time, bool, error)
	Close() error
}
