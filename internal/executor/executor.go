package executor

import (
	"context"
	"fmt"
	"log"
	"time"

	"SmartBid/internal/model"
	"SmartBid/internal/wb"
)

// API is the write side of the advert platform. All calls share the
// platform client's rate limiter.
type API interface {
	SetBid(ctx context.Context, campaignID int64, bid int) error
	Pause(ctx context.Context, campaignID int64) error
}

// Result is the outcome of applying one action.
type Result struct {
	Success    bool
	AppliedBid int
	Err        error
}

// Executor applies decisions against the advert API with bounded retries.
// A failed execution is reported, never silently treated as applied.
type Executor struct {
	api         API
	maxAttempts int
	baseDelay   time.Duration
}

// New creates an executor. maxAttempts <= 0 defaults to 3 attempts.
func New(api API, maxAttempts int) *Executor {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Executor{api: api, maxAttempts: maxAttempts, baseDelay: time.Second}
}

// Apply executes a decision. NoOp short-circuits without touching the
// network; RaiseBid and LowerBid issue a bid update even when the bid is
// already pinned at a bound (the outcome is still auditable); Pause issues
// a pause call.
func (e *Executor) Apply(ctx context.Context, campaignID int64, action model.Action, newBid int) Result {
	switch action {
	case model.ActionNoOp:
		return Result{Success: true, AppliedBid: newBid}
	case model.ActionRaiseBid, model.ActionLowerBid:
		if err := e.withRetry(ctx, campaignID, func() error {
			return e.api.SetBid(ctx, campaignID, newBid)
		}); err != nil {
			return Result{Success: false, AppliedBid: newBid, Err: err}
		}
		return Result{Success: true, AppliedBid: newBid}
	case model.ActionPause:
		if err := e.withRetry(ctx, campaignID, func() error {
			return e.api.Pause(ctx, campaignID)
		}); err != nil {
			return Result{Success: false, AppliedBid: newBid, Err: err}
		}
		return Result{Success: true, AppliedBid: newBid}
	default:
		return Result{Success: false, AppliedBid: newBid, Err: fmt.Errorf("unknown action %q", action)}
	}
}

// withRetry runs fn up to maxAttempts times with exponential backoff, but
// only for retryable failures. Unauthorized, NotFound and Rejected calls
// fail immediately.
func (e *Executor) withRetry(ctx context.Context, campaignID int64, fn func() error) error {
	var lastErr error
	delay := e.baseDelay
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !wb.IsRetryable(err) {
			return err
		}
		if attempt < e.maxAttempts {
			log.Printf("[WARN] execute for campaign %d failed (attempt %d/%d): %v, retrying in %v",
				campaignID, attempt, e.maxAttempts, err, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return fmt.Errorf("all %d attempts exhausted: %w", e.maxAttempts, lastErr)
}
