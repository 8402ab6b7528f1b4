package chainmarket

import (
	"time"

	"github.com/pkg/errors"

	"github.com/GravityProtocol/bitshares-core/chaincollab"
	"github.com/GravityProtocol/bitshares-core/chainerr"
	"github.com/GravityProtocol/bitshares-core/chainindex"
	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

// SettlementPrice derives the price a force-settlement round fills at:
// the current feed's settlement price discounted by
// ForceSettlementOffsetPercent, the same "feed minus offset" price
// clear_expired_orders computes before calling match().
func SettlementPrice(bitasset *chaintypes.BitAssetData) chaintypes.Price {
	feed := bitasset.CurrentFeed.SettlementPrice
	discount := feed.Quote.Value * bitasset.Options.ForceSettlementOffsetPercent / chaintypes.Percent100
	return chaintypes.Price{
		Base:  feed.Base,
		Quote: chaintypes.NewAmount(feed.Quote.Value-discount, feed.Quote.Asset),
	}
}

// ProcessForceSettlements fills pending settlement orders for asset
// against its least-collateralized call orders, up to the asset's
// volume cap for this round. Each iteration re-reads the front of
// callOrders and settlementOrders, matching db_update.cpp's outer loop
// that re-queries both indices after every fill because a match can
// close out the order it touched (or, on a black swan, the whole book).
//
// An order only fills once headTime has reached its SettlementDate —
// the mandatory force-settlement delay — so the earliest-queued order
// not yet due stops the round for the whole asset (settlementOrders is
// ordered ascending by SettlementDate, so nothing behind it is due
// either). An asset that can no longer legitimately force-settle
// (already globally settled, or without a current feed to price
// against) has every pending order cancelled and refunded instead of
// left queued forever.
//
// It returns the total amount settled this round and reports whether a
// black swan was uncovered mid-match, in which case the caller should
// not re-run settlement for this asset again this pass.
func ProcessForceSettlements(asset *chaintypes.Asset, settlementOrders *chainindex.View[chaintypes.ForceSettlementOrder], callOrders *chainindex.View[chaintypes.CallOrder], headTime time.Time, evaluators chaincollab.Evaluators) (int64, bool, error) {
	if asset.Bitasset == nil {
		return 0, false, nil
	}

	if asset.Bitasset.HasSettlement() || asset.Bitasset.CurrentFeed.SettlementPrice.IsNull() {
		if err := cancelAllSettlementOrders(settlementOrders, evaluators); err != nil {
			return 0, false, errors.Wrap(err, "chainmarket: cancelling settlement orders on settled/feed-null asset")
		}
		return 0, false, nil
	}

	maxVolume := asset.Bitasset.MaxForceSettlementVolume(asset.Dynamic.CurrentSupply)
	maxVolume -= asset.Bitasset.ForceSettledVolume
	if maxVolume <= 0 {
		return 0, false, nil
	}

	price := SettlementPrice(asset.Bitasset)
	settledTotal := int64(0)

	for settledTotal < maxVolume {
		settle := settlementOrders.Front()
		if settle == nil {
			break
		}
		if settle.SettlementDate.After(headTime) {
			break
		}
		call := callOrders.Front()
		if call == nil {
			break
		}

		remaining := maxVolume - settledTotal
		filled, err := evaluators.Match(call, settle, price, asset.Amount(remaining))
		if err != nil {
			if errors.Is(err, chainerr.ErrBlackSwanDuringMatch) {
				return settledTotal, true, nil
			}
			return settledTotal, false, errors.Wrap(err, "chainmarket: matching force settlement order")
		}
		if filled.Value <= 0 {
			// No progress possible against the current front of the
			// book (e.g. it no longer crosses); stop rather than spin.
			break
		}
		settledTotal += filled.Value
	}

	asset.Bitasset.ForceSettledVolume += settledTotal
	return settledTotal, false, nil
}

// cancelAllSettlementOrders refunds and cancels every pending
// settlement order, front to back, for an asset that can no longer
// legitimately force-settle.
func cancelAllSettlementOrders(settlementOrders *chainindex.View[chaintypes.ForceSettlementOrder], evaluators chaincollab.Evaluators) error {
	for {
		front := settlementOrders.Front()
		if front == nil {
			return nil
		}
		if front.Balance.Value > 0 {
			if err := evaluators.AdjustBalance(front.Owner, front.Balance); err != nil {
				return err
			}
		}
		if err := evaluators.CancelOrder(front.ID); err != nil {
			return err
		}
		settlementOrders.Remove(front)
	}
}
