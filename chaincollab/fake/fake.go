// Package fake provides a configurable, deterministic in-memory stand-in
// for the collaborator interfaces of package chaincollab, for tests and the
// cmd/chainmaint-sim harness. It is never imported by the shipped
// maintenance engine.
package fake

import (
	"time"

	"github.com/GravityProtocol/bitshares-core/chaincollab"
	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

// Collaborators implements chaincollab.FeeSchedule, chaincollab.Authority,
// chaincollab.Evaluators and chaincollab.Scheduler. Every behavior is an
// overridable func field; unset funcs fall back to a harmless default and
// every call is recorded for assertions.
type Collaborators struct {
	CalculateCancelFeeFunc  func(*chaintypes.LimitOrder) int64
	ApplyOperationFunc      func(chaincollab.ApplyContext, interface{}) error
	PushProposalFunc        func(*chaintypes.Proposal) error
	GloballySettleAssetFunc func(*chaintypes.Asset, chaintypes.Price) error
	CancelOrderFunc         func(chaintypes.OrderID) error
	MatchFunc               func(*chaintypes.CallOrder, *chaintypes.ForceSettlementOrder, chaintypes.Price, chaintypes.Amount) (chaintypes.Amount, error)
	CheckCallOrdersFunc     func(chaintypes.AssetID) error
	AdjustBalanceFunc       func(chaintypes.AccountName, chaintypes.Amount) error
	DepositWitnessPayFunc   func(chaintypes.WitnessID, int64) error
	ScheduledWitnessFunc    func(uint64) chaintypes.WitnessID
	SlotAtTimeFunc          func(time.Time) uint64

	AppliedOperations  []interface{}
	PushedProposals    []*chaintypes.Proposal
	SettledAssets      []chaintypes.AssetID
	CancelledOrders    []chaintypes.OrderID
	CheckedCallOrders  []chaintypes.AssetID
	Adjustments        map[chaintypes.AccountName][]chaintypes.Amount
	WitnessPayDeposits map[chaintypes.WitnessID]int64
}

// New constructs a Collaborators with empty recording maps.
func New() *Collaborators {
	return &Collaborators{
		Adjustments:        make(map[chaintypes.AccountName][]chaintypes.Amount),
		WitnessPayDeposits: make(map[chaintypes.WitnessID]int64),
	}
}

func (c *Collaborators) CalculateCancelFee(order *chaintypes.LimitOrder) int64 {
	if c.CalculateCancelFeeFunc != nil {
		return c.CalculateCancelFeeFunc(order)
	}
	return 0
}

func (c *Collaborators) ApplyOperation(ctx chaincollab.ApplyContext, op interface{}) error {
	c.AppliedOperations = append(c.AppliedOperations, op)
	if c.ApplyOperationFunc != nil {
		return c.ApplyOperationFunc(ctx, op)
	}
	return nil
}

func (c *Collaborators) PushProposal(p *chaintypes.Proposal) error {
	c.PushedProposals = append(c.PushedProposals, p)
	if c.PushProposalFunc != nil {
		return c.PushProposalFunc(p)
	}
	return nil
}

func (c *Collaborators) GloballySettleAsset(asset *chaintypes.Asset, settlementPrice chaintypes.Price) error {
	c.SettledAssets = append(c.SettledAssets, asset.ID)
	if c.GloballySettleAssetFunc != nil {
		return c.GloballySettleAssetFunc(asset, settlementPrice)
	}
	asset.Bitasset.SettlementPriceIfSettled = &settlementPrice
	return nil
}

func (c *Collaborators) CancelOrder(id chaintypes.OrderID) error {
	c.CancelledOrders = append(c.CancelledOrders, id)
	if c.CancelOrderFunc != nil {
		return c.CancelOrderFunc(id)
	}
	return nil
}

func (c *Collaborators) Match(call *chaintypes.CallOrder, settle *chaintypes.ForceSettlementOrder, price chaintypes.Price, max chaintypes.Amount) (chaintypes.Amount, error) {
	if c.MatchFunc != nil {
		return c.MatchFunc(call, settle, price, max)
	}
	return chaintypes.Amount{Asset: max.Asset}, nil
}

func (c *Collaborators) CheckCallOrders(asset chaintypes.AssetID) error {
	c.CheckedCallOrders = append(c.CheckedCallOrders, asset)
	if c.CheckCallOrdersFunc != nil {
		return c.CheckCallOrdersFunc(asset)
	}
	return nil
}

func (c *Collaborators) AdjustBalance(account chaintypes.AccountName, amount chaintypes.Amount) error {
	c.Adjustments[account] = append(c.Adjustments[account], amount)
	if c.AdjustBalanceFunc != nil {
		return c.AdjustBalanceFunc(account, amount)
	}
	return nil
}

func (c *Collaborators) DepositWitnessPay(witness chaintypes.WitnessID, pay int64) error {
	c.WitnessPayDeposits[witness] += pay
	if c.DepositWitnessPayFunc != nil {
		return c.DepositWitnessPayFunc(witness, pay)
	}
	return nil
}

func (c *Collaborators) ScheduledWitness(slotOffset uint64) chaintypes.WitnessID {
	if c.ScheduledWitnessFunc != nil {
		return c.ScheduledWitnessFunc(slotOffset)
	}
	return 0
}

func (c *Collaborators) SlotAtTime(t time.Time) uint64 {
	if c.SlotAtTimeFunc != nil {
		return c.SlotAtTimeFunc(t)
	}
	return 0
}
