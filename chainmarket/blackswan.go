// Package chainmarket groups the three components that must see a
// consistent view of one asset's call-order book within a single
// maintenance pass: force-settlement (C6), the black-swan detector (C7)
// it can trigger mid-match, and the feed refresher (C8) that must run
// before either reads the current feed. All three are grounded on
// db_update.cpp's clear_expired_orders, check_for_blackswan and
// update_expired_feeds.
package chainmarket

import (
	"github.com/pkg/errors"

	"github.com/GravityProtocol/bitshares-core/chaincollab"
	"github.com/GravityProtocol/bitshares-core/chainerr"
	"github.com/GravityProtocol/bitshares-core/chainindex"
	"github.com/GravityProtocol/bitshares-core/chainlog"
	"github.com/GravityProtocol/bitshares-core/chainprice"
	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

// ByCollateralizationAscending orders call orders worst-collateralized
// first: debt/collateral growing means the backing is thinning out, and
// that's the order a black-swan check and a force-settlement match both
// want examined first. chainprice orders a Collateralization price by
// debt/collateral, so the comparison is reversed to put the largest
// debt/collateral at the front.
func ByCollateralizationAscending(a, b chaintypes.CallOrder) bool {
	return chainprice.Less(b.Collateralization(), a.Collateralization())
}

// CheckForBlackSwan implements check_for_blackswan: if the worst
// collateralized call order's debt/collateral ratio has reached or
// passed the higher of the current feed price and the order book's
// highest bid, the backing asset can no longer cover the debt even in
// the best case. The LC/highest comparison always runs regardless of
// enableBlackSwan — that flag only controls what happens once a black
// swan is actually found: with it set the asset is globally settled;
// without it, detecting one is fatal (chainerr.ErrBlackSwanDisallowed),
// since the caller explicitly asked not to allow one here.
//
// highestBid may be the zero Price if there is no open bid; it is then
// ignored and only the feed price is compared.
func CheckForBlackSwan(asset *chaintypes.Asset, enableBlackSwan bool, callOrders *chainindex.View[chaintypes.CallOrder], highestBid chaintypes.Price, evaluators chaincollab.Evaluators, runID string) (bool, error) {
	if asset.Bitasset == nil || asset.Bitasset.HasSettlement() {
		return false, nil
	}
	feedPrice := asset.Bitasset.CurrentFeed.SettlementPrice
	if feedPrice.IsNull() || callOrders.Empty() {
		return false, nil
	}

	highest := feedPrice
	if !highestBid.IsNull() && chainprice.Less(highest, highestBid) {
		highest = highestBid
	}

	leastCollateralized := callOrders.Front()
	lc := leastCollateralized.Collateralization()
	if chainprice.Less(lc, highest) {
		return false, nil
	}

	if !enableBlackSwan {
		return false, chainerr.ErrBlackSwanDisallowed
	}

	if err := evaluators.GloballySettleAsset(asset, feedPrice); err != nil {
		return false, errors.Wrap(err, "chainmarket: globally settling asset on black swan")
	}
	chainlog.Default().BlackSwan(runID, asset.Symbol, feedPrice.String())
	return true, nil
}
