package chainmarket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GravityProtocol/bitshares-core/chaincollab/fake"
	"github.com/GravityProtocol/bitshares-core/chainerr"
	"github.com/GravityProtocol/bitshares-core/chainindex"
	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

var headTime = time.Unix(1_700_000_000, 0)

func settlementView(orders ...*chaintypes.ForceSettlementOrder) *chainindex.View[chaintypes.ForceSettlementOrder] {
	v := chainindex.NewView(func(a, b chaintypes.ForceSettlementOrder) bool {
		return a.SettlementDate.Before(b.SettlementDate)
	})
	for _, o := range orders {
		v.Insert(o)
	}
	return v
}

func marketAsset(supply, maxPct, offsetPct int64) *chaintypes.Asset {
	return &chaintypes.Asset{
		ID:     bitUSD,
		Symbol: "BITUSD",
		Dynamic: chaintypes.AssetDynamicData{CurrentSupply: supply},
		Bitasset: &chaintypes.BitAssetData{
			CurrentFeed: chaintypes.PriceFeed{
				SettlementPrice: chaintypes.Price{
					Base:  chaintypes.NewAmount(1, bitUSD),
					Quote: chaintypes.NewAmount(2, core),
				},
			},
			Options: chaintypes.BitAssetOptions{
				MaxForceSettlementVolumePct: maxPct,
				ForceSettlementOffsetPercent: offsetPct,
			},
		},
	}
}

func TestSettlementPrice_AppliesDiscount(t *testing.T) {
	asset := marketAsset(100_000, 2000, 500) // 5% offset
	p := SettlementPrice(asset.Bitasset)
	assert.Equal(t, int64(1), p.Base.Value)
	assert.Equal(t, int64(2)-(2*500/chaintypes.Percent100), p.Quote.Value)
}

func TestProcessForceSettlements_CapsAtMaxVolume(t *testing.T) {
	asset := marketAsset(100_000, 1000, 0) // 10% of supply = 10000 max
	settle := &chaintypes.ForceSettlementOrder{ID: 1, Owner: "alice", Balance: chaintypes.NewAmount(50_000, bitUSD)}
	call := &chaintypes.CallOrder{Borrower: "bob", Debt: chaintypes.NewAmount(50_000, bitUSD), Collateral: chaintypes.NewAmount(100_000, core)}

	settleView := settlementView(settle)
	callView := callOrderView(call)

	collab := fake.New()
	callRemaining := int64(10_000)
	collab.MatchFunc = func(c *chaintypes.CallOrder, s *chaintypes.ForceSettlementOrder, price chaintypes.Price, max chaintypes.Amount) (chaintypes.Amount, error) {
		fill := max.Value
		if fill > callRemaining {
			fill = callRemaining
		}
		callRemaining -= fill
		return chaintypes.NewAmount(fill, bitUSD), nil
	}

	settled, blackSwan, err := ProcessForceSettlements(asset, settleView, callView, headTime, collab)
	require.NoError(t, err)
	assert.False(t, blackSwan)
	assert.Equal(t, int64(10_000), settled)
	assert.Equal(t, int64(10_000), asset.Bitasset.ForceSettledVolume)
}

func TestProcessForceSettlements_StopsOnBlackSwan(t *testing.T) {
	asset := marketAsset(100_000, 10000, 0)
	settle := &chaintypes.ForceSettlementOrder{ID: 1, Owner: "alice", Balance: chaintypes.NewAmount(50_000, bitUSD)}
	call := &chaintypes.CallOrder{Borrower: "bob", Debt: chaintypes.NewAmount(50_000, bitUSD), Collateral: chaintypes.NewAmount(100_000, core)}

	settleView := settlementView(settle)
	callView := callOrderView(call)

	collab := fake.New()
	collab.MatchFunc = func(*chaintypes.CallOrder, *chaintypes.ForceSettlementOrder, chaintypes.Price, chaintypes.Amount) (chaintypes.Amount, error) {
		return chaintypes.Amount{}, chainerr.ErrBlackSwanDuringMatch
	}

	settled, blackSwan, err := ProcessForceSettlements(asset, settleView, callView, headTime, collab)
	require.NoError(t, err)
	assert.True(t, blackSwan)
	assert.Equal(t, int64(0), settled)
}

func TestProcessForceSettlements_NoOrdersIsNoop(t *testing.T) {
	asset := marketAsset(100_000, 10000, 0)
	settleView := settlementView()
	callView := callOrderView()
	collab := fake.New()

	settled, blackSwan, err := ProcessForceSettlements(asset, settleView, callView, headTime, collab)
	require.NoError(t, err)
	assert.False(t, blackSwan)
	assert.Equal(t, int64(0), settled)
}

func TestProcessForceSettlements_SkipsAssetWhenFrontOrderNotYetDue(t *testing.T) {
	asset := marketAsset(100_000, 10000, 0)
	settle := &chaintypes.ForceSettlementOrder{ID: 1, Owner: "alice", Balance: chaintypes.NewAmount(50_000, bitUSD), SettlementDate: headTime.Add(time.Hour)}
	call := &chaintypes.CallOrder{Borrower: "bob", Debt: chaintypes.NewAmount(50_000, bitUSD), Collateral: chaintypes.NewAmount(100_000, core)}

	settleView := settlementView(settle)
	callView := callOrderView(call)
	collab := fake.New()

	settled, blackSwan, err := ProcessForceSettlements(asset, settleView, callView, headTime, collab)
	require.NoError(t, err)
	assert.False(t, blackSwan)
	assert.Equal(t, int64(0), settled)
	assert.Equal(t, 1, settleView.Len())
}

func TestProcessForceSettlements_CancelsOrdersWhenAlreadySettled(t *testing.T) {
	asset := marketAsset(100_000, 10000, 0)
	settledPrice := chaintypes.Price{Base: chaintypes.NewAmount(1, bitUSD), Quote: chaintypes.NewAmount(2, core)}
	asset.Bitasset.SettlementPriceIfSettled = &settledPrice

	settle := &chaintypes.ForceSettlementOrder{ID: 1, Owner: "alice", Balance: chaintypes.NewAmount(50_000, bitUSD)}
	settleView := settlementView(settle)
	callView := callOrderView()
	collab := fake.New()

	settled, blackSwan, err := ProcessForceSettlements(asset, settleView, callView, headTime, collab)
	require.NoError(t, err)
	assert.False(t, blackSwan)
	assert.Equal(t, int64(0), settled)
	assert.Equal(t, 0, settleView.Len())
	assert.Equal(t, []chaintypes.OrderID{1}, collab.CancelledOrders)
	assert.Equal(t, []chaintypes.Amount{chaintypes.NewAmount(50_000, bitUSD)}, collab.Adjustments["alice"])
}

func TestProcessForceSettlements_CancelsOrdersWhenFeedIsNull(t *testing.T) {
	asset := marketAsset(100_000, 10000, 0)
	asset.Bitasset.CurrentFeed = chaintypes.PriceFeed{}

	settle := &chaintypes.ForceSettlementOrder{ID: 1, Owner: "alice", Balance: chaintypes.NewAmount(50_000, bitUSD)}
	settleView := settlementView(settle)
	callView := callOrderView()
	collab := fake.New()

	settled, blackSwan, err := ProcessForceSettlements(asset, settleView, callView, headTime, collab)
	require.NoError(t, err)
	assert.False(t, blackSwan)
	assert.Equal(t, int64(0), settled)
	assert.Equal(t, 0, settleView.Len())
	assert.Equal(t, []chaintypes.OrderID{1}, collab.CancelledOrders)
}
