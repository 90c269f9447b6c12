package strategy

import (
	"fmt"

	"SmartBid/internal/model"
)

// LowVisibilityThreshold is the impression count below which a campaign
// is treated as having no reach, regardless of its ratios.
const LowVisibilityThreshold = 100

// Decision is the engine's verdict for one campaign in one cycle.
type Decision struct {
	Action model.Action
	NewBid int
	Reason string
}

// Decide computes the action for one (snapshot, strategy, state) triple.
// It is pure and deterministic: no clock, no I/O, no mutation of its
// inputs. The state passed in must already carry this cycle's low-ROI
// counter transition (see history.AdvanceCounter), so the pause check
// sees the value that includes the current shortfall.
//
// Rules are evaluated in fixed priority order, first match wins:
//  1. counter at threshold        -> Pause
//  2. impressions below reach     -> RaiseBid
//  3. low CTR with healthy ROI    -> RaiseBid
//  4. high CTR or weak ROI        -> LowerBid
//  5. otherwise                   -> NoOp
func Decide(snap *model.Snapshot, strat *model.Strategy, state *model.CampaignState) Decision {
	cur := state.CurrentBid

	if state.LowROICycles >= model.PauseThreshold {
		return Decision{
			Action: model.ActionPause,
			NewBid: strat.ClampBid(cur),
			Reason: fmt.Sprintf("roi below target for %d consecutive cycles", state.LowROICycles),
		}
	}

	if snap.Impressions < LowVisibilityThreshold {
		return Decision{
			Action: model.ActionRaiseBid,
			NewBid: strat.ClampBid(cur + strat.Step),
			Reason: fmt.Sprintf("impressions %d below reach threshold %d", snap.Impressions, LowVisibilityThreshold),
		}
	}

	roi, roiDefined := snap.ROI()
	if !roiDefined {
		return Decision{
			Action: model.ActionNoOp,
			NewBid: strat.ClampBid(cur),
			Reason: "roi undefined (zero spend), no decision possible",
		}
	}

	ctr := snap.CTR()
	if ctr < strat.TargetCTRMin && roi > strat.TargetROI {
		return Decision{
			Action: model.ActionRaiseBid,
			NewBid: strat.ClampBid(cur + strat.Step),
			Reason: fmt.Sprintf("ctr %.4f below target %.4f with roi %.2f above target %.2f", ctr, strat.TargetCTRMin, roi, strat.TargetROI),
		}
	}

	if ctr > strat.TargetCTRMax || roi < strat.TargetROI {
		return Decision{
			Action: model.ActionLowerBid,
			NewBid: strat.ClampBid(cur - strat.Step),
			Reason: fmt.Sprintf("ctr %.4f / roi %.2f outside targets", ctr, roi),
		}
	}

	return Decision{
		Action: model.ActionNoOp,
		NewBid: strat.ClampBid(cur),
		Reason: "metrics within targets",
	}
}
