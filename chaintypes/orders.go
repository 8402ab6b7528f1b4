package chaintypes

import "time"

// LimitOrder is a standing offer to sell Balance at SellPrice or better
// (spec.md §3).
type LimitOrder struct {
	ID           OrderID
	Seller       AccountName
	SellPrice    Price
	Balance      Amount
	Expiration   time.Time
	DeferredFee  int64
}

// CallOrder is a short position backing a market-issued asset (spec.md
// §3). Collateralization is collateral/debt, derived, never stored.
type CallOrder struct {
	Borrower              AccountName
	Collateral            Amount
	Debt                  Amount
	CallPrice             Price
	TargetCollateralRatio int64 // parts per Percent100, 0 if unset
}

// Collateralization returns collateral/debt as a Price, the ordering key
// for by_collateral (ascending — least collateralized first).
func (c CallOrder) Collateralization() Price {
	return Price{Base: c.Debt, Quote: c.Collateral}
}

// ForceSettlementOrder is a holder's pending redemption request (spec.md
// §3).
type ForceSettlementOrder struct {
	ID              OrderID
	Owner           AccountName
	Balance         Amount
	SettlementDate  time.Time
}

// SettlementAssetID is the asset being redeemed.
func (f ForceSettlementOrder) SettlementAssetID() AssetID {
	return f.Balance.Asset
}

// Proposal is a multi-signature pending transaction (spec.md §3).
type Proposal struct {
	ID                ProposalID
	ExpirationTime     time.Time
	RequiredApprovals  []AccountName
	CurrentApprovals   []AccountName
	Operations        []interface{}
}

// IsAuthorizedToExecute reports whether every required approver has
// signed off. The real authority graph (weighted keys, account
// hierarchies) is an external collaborator (spec.md §6); this is the
// simple approval-set check the core itself can make.
func (p *Proposal) IsAuthorizedToExecute() bool {
	have := make(map[AccountName]bool, len(p.CurrentApprovals))
	for _, a := range p.CurrentApprovals {
		have[a] = true
	}
	for _, need := range p.RequiredApprovals {
		if !have[need] {
			return false
		}
	}
	return true
}

// WithdrawPermission lets one account pull funds from another until it
// expires (spec.md §3).
type WithdrawPermission struct {
	ID         PermissionID
	Expiration time.Time
}

// TransactionDedupEntry records a transaction id until its expiration, to
// reject replays (spec.md §3).
type TransactionDedupEntry struct {
	TxID       [32]byte
	Expiration time.Time
}
