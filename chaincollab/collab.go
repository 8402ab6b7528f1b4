// Package chaincollab defines the collaborator interfaces spec.md §6 says
// this core consumes but never implements: fee schedule, authority,
// evaluators, and the witness-schedule. These are supplied by the rest of
// the node; the maintenance core only calls through them.
package chaincollab

import (
	"time"

	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

// FeeSchedule calculates the fee for an operation (used to cap expired
// limit-order cancel fees, spec.md §4.5).
type FeeSchedule interface {
	CalculateCancelFee(order *chaintypes.LimitOrder) int64
}

// Authority applies an operation under a scoped context, optionally
// skipping authority and fee-schedule checks (spec.md §6).
type Authority interface {
	ApplyOperation(ctx ApplyContext, op interface{}) error
}

// ApplyContext carries the two skip flags spec.md §6 names.
type ApplyContext struct {
	SkipAuthorityCheck    bool
	SkipFeeScheduleCheck  bool
}

// Evaluators groups the evaluator-side operations the maintenance core
// invokes but does not implement (spec.md §6).
type Evaluators interface {
	PushProposal(p *chaintypes.Proposal) error
	GloballySettleAsset(asset *chaintypes.Asset, settlementPrice chaintypes.Price) error
	CancelOrder(orderID chaintypes.OrderID) error
	// Match attempts to fill a force-settlement order against a call
	// order at settlementPrice, up to max. It returns the amount
	// actually settled (denominated in the settlement asset) and, when
	// the match uncovers a black swan, a non-nil error wrapping
	// chainerr.ErrBlackSwanDuringMatch.
	Match(call *chaintypes.CallOrder, settle *chaintypes.ForceSettlementOrder, settlementPrice chaintypes.Price, max chaintypes.Amount) (chaintypes.Amount, error)
	CheckCallOrders(asset chaintypes.AssetID) error
	AdjustBalance(account chaintypes.AccountName, amount chaintypes.Amount) error
	DepositWitnessPay(witness chaintypes.WitnessID, pay int64) error
}

// Scheduler answers witness-schedule questions (spec.md §6); the schedule
// itself is computed elsewhere and simply consumed here.
type Scheduler interface {
	ScheduledWitness(slotOffset uint64) chaintypes.WitnessID
	SlotAtTime(t time.Time) uint64
}
