package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"SmartBid/internal/alert"
	"SmartBid/internal/collector"
	"SmartBid/internal/executor"
	"SmartBid/internal/history"
	"SmartBid/internal/model"
	"SmartBid/internal/notifier"
	"SmartBid/internal/recorder"
	"SmartBid/internal/strategy"

	"github.com/robfig/cron/v3"
)

// Summary is the outcome of one full optimization pass.
type Summary struct {
	Evaluated int
	Updated   int
	Paused    int
	Skipped   int
	Failed    int
}

// Scheduler drives campaigns through Fetch -> Decide -> Execute -> Log.
// Run-once and interval modes share the same RunOnce path. One scheduler
// instance is the single writer of campaign state.
type Scheduler struct {
	Cron     *cron.Cron
	Store    *strategy.Store
	Fetcher  collector.Fetcher
	Tracker  *history.Tracker
	Executor *executor.Executor
	Recorder recorder.Recorder
	Alerts   *alert.Manager
	Notifier alert.Notifier

	// runMu serializes passes: the scheduler is the single writer of
	// campaign state, so at most one cycle may be live at a time.
	runMu sync.Mutex
	now   func() time.Time
}

// NewScheduler wires the cycle components together.
func NewScheduler(store *strategy.Store, fetcher collector.Fetcher, tracker *history.Tracker,
	exec *executor.Executor, rec recorder.Recorder, alerts *alert.Manager, notify alert.Notifier) *Scheduler {
	if notify == nil {
		notify = alert.NoopNotifier{}
	}
	return &Scheduler{
		Cron:     cron.New(),
		Store:    store,
		Fetcher:  fetcher,
		Tracker:  tracker,
		Executor: exec,
		Recorder: rec,
		Alerts:   alerts,
		Notifier: notify,
		now:      time.Now,
	}
}

// cycleItem carries one campaign through the phases of a pass.
type cycleItem struct {
	strat    model.Strategy
	state    model.CampaignState
	snap     *model.Snapshot
	fetchErr error
}

// RunOnce executes one full pass over all due strategies. Per-campaign
// failures are isolated: the pass always completes and reports them in
// the summary rather than aborting. An invocation overlapping a live
// pass returns an empty summary without running.
func (s *Scheduler) RunOnce(ctx context.Context) (Summary, error) {
	var sum Summary

	// A pass that outlives the interval must not overlap the next one:
	// two live cycles would double-execute and double-save the same
	// campaigns. Skip instead of queueing.
	if !s.runMu.TryLock() {
		log.Println("[WARN] previous pass still running, skipping this pass")
		return sum, nil
	}
	defer s.runMu.Unlock()

	strategies, err := s.Store.Load()
	if err != nil {
		return sum, fmt.Errorf("load strategies: %w", err)
	}

	now := s.now()
	due := make([]*cycleItem, 0, len(strategies))
	for i := range strategies {
		strat := strategies[i]
		if !strat.Enabled {
			sum.Skipped++
			continue
		}
		state := s.Tracker.Load(strat.CampaignID, &strat)
		if state.Status == model.StatusPaused {
			sum.Skipped++
			continue
		}
		interval := time.Duration(strat.IntervalHours * float64(time.Hour))
		if !state.Due(interval, now) {
			sum.Skipped++
			continue
		}
		due = append(due, &cycleItem{strat: strat, state: state})
	}

	if len(due) == 0 {
		log.Printf("[INFO] no strategies due (%d skipped)", sum.Skipped)
		return sum, nil
	}

	// Fetch phase: read-only, safe to run concurrently. Everything after
	// this point is sequential per campaign.
	log.Printf("[INFO] fetching stats for %d due campaigns", len(due))
	var wg sync.WaitGroup
	for _, item := range due {
		wg.Add(1)
		go func(it *cycleItem) {
			defer wg.Done()
			it.snap, it.fetchErr = s.Fetcher.Fetch(ctx, &it.strat)
		}(item)
	}
	wg.Wait()

	for _, item := range due {
		sum.Evaluated++
		s.evaluateOne(ctx, item, &sum)
	}

	log.Printf("[INFO] pass complete: evaluated=%d updated=%d paused=%d skipped=%d failed=%d",
		sum.Evaluated, sum.Updated, sum.Paused, sum.Skipped, sum.Failed)

	if sum.Updated+sum.Paused+sum.Failed > 0 {
		text := notifier.FormatCycleSummary(sum.Evaluated, sum.Updated, sum.Paused, sum.Skipped, sum.Failed)
		if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
			log.Printf("[ERROR] send cycle summary: %v", err)
		}
	}
	return sum, nil
}

// evaluateOne runs Decide -> Execute -> Log for one fetched campaign.
func (s *Scheduler) evaluateOne(ctx context.Context, item *cycleItem, sum *Summary) {
	now := s.now()
	strat := &item.strat

	if item.fetchErr != nil {
		log.Printf("[ERROR] fetch campaign %d (%s): %v", strat.CampaignID, strat.Keyword, item.fetchErr)
		rec := s.baseRecord(item, now)
		rec.Action = model.ActionNoOp
		rec.Reason = "fetch failed"
		rec.Success = false
		rec.Error = item.fetchErr.Error()
		s.record(ctx, rec)
		sum.Failed++
		return
	}

	// The counter transition happens before Decide so the pause check
	// sees the value that includes this cycle's shortfall.
	advanced := history.AdvanceCounter(item.state, item.snap, strat)
	decision := strategy.Decide(item.snap, strat, &advanced)

	res := s.Executor.Apply(ctx, strat.CampaignID, decision.Action, decision.NewBid)

	rec := s.baseRecord(item, now)
	rec.Action = decision.Action
	rec.Reason = decision.Reason
	rec.NewBid = decision.NewBid
	rec.Success = res.Success
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}

	if res.Success {
		next := advanced
		next.CurrentBid = decision.NewBid
		next.LastAction = decision.Action
		next.LastEvaluatedAt = now
		if decision.Action == model.ActionPause {
			next.Status = model.StatusPaused
		}
		if err := s.Tracker.Save(strat.CampaignID, next); err != nil {
			// Best effort: the next cycle re-derives from the last
			// persisted state, at worst one redundant decision.
			log.Printf("[ERROR] save state for campaign %d: %v", strat.CampaignID, err)
		}
		switch decision.Action {
		case model.ActionRaiseBid, model.ActionLowerBid:
			if decision.NewBid != item.state.CurrentBid {
				sum.Updated++
			}
		case model.ActionPause:
			sum.Paused++
		}
		log.Printf("[INFO] campaign %d (%s): %s bid %d -> %d (%s)",
			strat.CampaignID, strat.Keyword, decision.Action, item.state.CurrentBid, decision.NewBid, decision.Reason)
	} else {
		// State stays untouched so the next cycle re-evaluates from the
		// last known-good state.
		log.Printf("[ERROR] execute %s for campaign %d: %v", decision.Action, strat.CampaignID, res.Err)
		sum.Failed++
	}

	s.record(ctx, rec)
}

// baseRecord fills the identity and snapshot part of a decision record.
func (s *Scheduler) baseRecord(item *cycleItem, now time.Time) *model.DecisionRecord {
	rec := &model.DecisionRecord{
		CampaignID: item.strat.CampaignID,
		Keyword:    item.strat.Keyword,
		Region:     item.strat.Region,
		Timestamp:  now,
		OldBid:     item.state.CurrentBid,
		NewBid:     item.state.CurrentBid,
	}
	if item.snap != nil {
		rec.Impressions = item.snap.Impressions
		rec.Clicks = item.snap.Clicks
		rec.Spend = item.snap.Spend
		rec.Revenue = item.snap.Revenue
		rec.CTR = item.snap.CTR()
		rec.ROI, rec.ROIDefined = item.snap.ROI()
	}
	return rec
}

// record appends the decision to the sink and fans out alerts, both
// best-effort on the hot path.
func (s *Scheduler) record(ctx context.Context, rec *model.DecisionRecord) {
	if err := s.Recorder.RecordDecision(rec); err != nil {
		log.Printf("[ERROR] record decision for campaign %d: %v", rec.CampaignID, err)
	}
	s.Alerts.Emit(ctx, s.Alerts.Evaluate(rec))
}

// StartInterval runs a pass immediately, then repeats every interval
// until Stop. The cron entry reuses the exact RunOnce path.
func (s *Scheduler) StartInterval(ctx context.Context, interval time.Duration) error {
	runPass := func() {
		if _, err := s.RunOnce(ctx); err != nil {
			log.Printf("[ERROR] optimization pass: %v", err)
		}
	}
	if _, err := s.Cron.AddFunc(fmt.Sprintf("@every %s", interval), runPass); err != nil {
		return fmt.Errorf("register interval task: %w", err)
	}
	runPass()
	s.Cron.Start()
	log.Printf("[INFO] scheduler started, interval %s", interval)
	return nil
}

// Stop stops the interval scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}
