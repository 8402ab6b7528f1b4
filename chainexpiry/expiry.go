// Package chainexpiry sweeps the four time-indexed entity kinds spec.md
// §4.5 (C5) names: stale transaction-dedup entries, expired proposals,
// expired limit orders and expired withdraw permissions. Each sweeper is
// grounded on the matching clear_expired_* routine in db_update.cpp.
package chainexpiry

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/GravityProtocol/bitshares-core/chaincollab"
	"github.com/GravityProtocol/bitshares-core/chainerr"
	"github.com/GravityProtocol/bitshares-core/chainindex"
	"github.com/GravityProtocol/bitshares-core/chainlog"
	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

// ByExpiration orders any of the expiry-indexed entities ascending by
// their expiration time; all four sweepers below walk a View built with
// this comparator and stop at the first unexpired entry.
func ByExpiration[V any](expirationOf func(*V) time.Time) chainindex.Less[V] {
	return func(a, b V) bool { return expirationOf(&a).Before(expirationOf(&b)) }
}

// SweepTransactionDedup removes every dedup entry whose expiration has
// passed. Corresponds to clear_expired_transactions: past their
// expiration, a transaction id can never be replayed again, so there's
// nothing left to deduplicate against.
func SweepTransactionDedup(index *chainindex.View[chaintypes.TransactionDedupEntry], now time.Time, runID string) int {
	removed := 0
	for {
		front := index.Front()
		if front == nil || front.Expiration.After(now) {
			break
		}
		index.Remove(front)
		removed++
	}
	chainlog.Default().ExpiredRemoved("transaction", removed)
	return removed
}

// SweepWithdrawPermissions removes every withdraw permission past its
// expiration (update_withdraw_permissions).
func SweepWithdrawPermissions(index *chainindex.View[chaintypes.WithdrawPermission], now time.Time) int {
	removed := 0
	for {
		front := index.Front()
		if front == nil || front.Expiration.After(now) {
			break
		}
		index.Remove(front)
		removed++
	}
	chainlog.Default().ExpiredRemoved("withdraw_permission", removed)
	return removed
}

// SweepProposals walks proposals ordered by expiration and, for each one
// past its expiration, either executes it (if it has gathered its
// required approvals) or discards it — clear_expired_proposals'
// execute-or-delete branch; execution is PushProposal. A proposal whose
// push fails at expiration is logged and discarded rather than aborting the sweep: only
// update_global_dynamic_data, update_last_irreversible_block and
// consensus arithmetic are fatal to a block, per-entity expiry failures
// never are.
func SweepProposals(index *chainindex.View[chaintypes.Proposal], now time.Time, evaluators chaincollab.Evaluators, runID string) {
	executed, discarded, failed := 0, 0, 0
	for {
		front := index.Front()
		if front == nil || front.ExpirationTime.After(now) {
			break
		}
		if front.IsAuthorizedToExecute() {
			if err := applyProposalOperations(front, evaluators); err != nil {
				chainlog.Default().Logger().WithFields(logrus.Fields{
					"run_id":      runID,
					"proposal_id": front.ID,
					"error":       err.Error(),
				}).Warn("proposal execution failed at expiration, discarding")
				failed++
			} else {
				executed++
			}
		} else {
			discarded++
		}
		index.Remove(front)
	}
	chainlog.Default().ExpiredRemoved("proposal_executed", executed)
	chainlog.Default().ExpiredRemoved("proposal_discarded", discarded)
	chainlog.Default().ExpiredRemoved("proposal_failed", failed)
}

func applyProposalOperations(p *chaintypes.Proposal, evaluators chaincollab.Evaluators) error {
	if err := evaluators.PushProposal(p); err != nil {
		return errors.Wrapf(chainerr.ErrProposalExecutionFailed, "proposal %v: %v", p.ID, err)
	}
	return nil
}

// SweepLimitOrders cancels every limit order past its expiration. The
// seller's remaining balance is refunded in full; the deferred
// create-order fee pays the cancel fee CalculateCancelFee quotes, capped
// at the deferred fee, and whatever is left of the deferred fee is
// refunded — clear_expired_orders' "cancel fee capped at deferred_fee"
// step.
func SweepLimitOrders(index *chainindex.View[chaintypes.LimitOrder], now time.Time, feeSchedule chaincollab.FeeSchedule, evaluators chaincollab.Evaluators, coreAsset chaintypes.AssetID) error {
	removed := 0
	for {
		front := index.Front()
		if front == nil || front.Expiration.After(now) {
			break
		}
		if err := cancelExpiredLimitOrder(front, feeSchedule, evaluators, coreAsset); err != nil {
			return errors.Wrapf(err, "chainexpiry: cancelling expired limit order %v", front.ID)
		}
		index.Remove(front)
		removed++
	}
	chainlog.Default().ExpiredRemoved("limit_order", removed)
	return nil
}

func cancelExpiredLimitOrder(order *chaintypes.LimitOrder, feeSchedule chaincollab.FeeSchedule, evaluators chaincollab.Evaluators, coreAsset chaintypes.AssetID) error {
	if order.Balance.Value > 0 {
		if err := evaluators.AdjustBalance(order.Seller, order.Balance); err != nil {
			return err
		}
	}
	cancelFee := feeSchedule.CalculateCancelFee(order)
	if cancelFee > order.DeferredFee {
		cancelFee = order.DeferredFee
	}
	refund := order.DeferredFee - cancelFee
	if refund > 0 {
		if err := evaluators.AdjustBalance(order.Seller, chaintypes.NewAmount(refund, coreAsset)); err != nil {
			return err
		}
	}
	return evaluators.CancelOrder(order.ID)
}
