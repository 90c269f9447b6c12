package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"SmartBid/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the decision and alert history to SQLite.
// Both tables are append-only; nothing here updates or deletes rows.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the dashboard can read while the optimizer writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS decision_records (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			campaign_id  INTEGER NOT NULL,
			keyword      TEXT,
			region       TEXT,
			impressions  INTEGER,
			clicks       INTEGER,
			spend        REAL,
			revenue      REAL,
			ctr          REAL,
			roi          REAL,
			roi_defined  INTEGER,
			action       TEXT,
			reason       TEXT,
			old_bid      INTEGER,
			new_bid      INTEGER,
			success      INTEGER,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_campaign_ts ON decision_records(campaign_id, timestamp)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			type        TEXT NOT NULL,
			campaign_id INTEGER,
			keyword     TEXT,
			message     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordDecision(rec *model.DecisionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO decision_records
		(timestamp, campaign_id, keyword, region, impressions, clicks, spend, revenue,
		 ctr, roi, roi_defined, action, reason, old_bid, new_bid, success, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.Timestamp.Unix(), rec.CampaignID, rec.Keyword, rec.Region,
		rec.Impressions, rec.Clicks, rec.Spend, rec.Revenue,
		rec.CTR, rec.ROI, boolToInt(rec.ROIDefined),
		string(rec.Action), rec.Reason, rec.OldBid, rec.NewBid,
		boolToInt(rec.Success), rec.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecordAlert(alert *model.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO alerts (timestamp, type, campaign_id, keyword, message)
		VALUES (?,?,?,?,?)`,
		alert.Timestamp.Unix(), string(alert.Type), alert.CampaignID, alert.Keyword, alert.Message,
	)
	return err
}

func (r *SQLiteRecorder) LastImpressionsAt(campaignID int64) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ts int64
	err := r.db.QueryRow(
		`SELECT timestamp FROM decision_records
		 WHERE campaign_id = ? AND impressions > 0
		 ORDER BY timestamp DESC LIMIT 1`, campaignID,
	).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(ts, 0), true, nil
}

func (r *SQLiteRecorder) FirstRecordAt(campaignID int64) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ts int64
	err := r.db.QueryRow(
		`SELECT timestamp FROM decision_records
		 WHERE campaign_id = ?
		 ORDER BY timestamp ASC LIMIT 1`, campaignID,
	).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(ts, 0), true, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
