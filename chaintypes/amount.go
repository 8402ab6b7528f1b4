// Package chaintypes holds the consensus data model shared by every
// maintenance component: assets, amounts, prices, orders, witnesses and
// the two chain-wide singletons. Field names follow spec.md §3.
package chaintypes

import "fmt"

// AssetID identifies an asset (core token or market-issued synthetic).
type AssetID uint64

// WitnessID identifies a block-producing witness.
type WitnessID uint64

// AccountName is the unique human-readable account key; by_name iteration
// order is lexicographic over this type.
type AccountName string

// OrderID, ProposalID and PermissionID are primary keys of their
// respective ordered indices.
type OrderID uint64
type ProposalID uint64
type PermissionID uint64

// Amount is a signed integer quantity of a specific asset. All ledger
// arithmetic is integer; there is no floating point on this path.
type Amount struct {
	Value int64
	Asset AssetID
}

// NewAmount constructs an Amount.
func NewAmount(value int64, asset AssetID) Amount {
	return Amount{Value: value, Asset: asset}
}

// Add returns a+b. Panics if the assets differ — mixing assets is a
// programming error, never a runtime/consensus condition.
func (a Amount) Add(b Amount) Amount {
	a.mustMatch(b)
	return Amount{Value: a.Value + b.Value, Asset: a.Asset}
}

// Sub returns a-b.
func (a Amount) Sub(b Amount) Amount {
	a.mustMatch(b)
	return Amount{Value: a.Value - b.Value, Asset: a.Asset}
}

func (a Amount) mustMatch(b Amount) {
	if a.Asset != b.Asset {
		panic(fmt.Sprintf("chaintypes: asset mismatch %d != %d", a.Asset, b.Asset))
	}
}

func (a Amount) String() string {
	return fmt.Sprintf("%d@%d", a.Value, a.Asset)
}

// Price is an ordered pair (base@base_asset, quote@quote_asset); it
// expresses "base is worth quote", i.e. quote/base units of quote per
// unit of base. Arithmetic lives in package chainprice to keep this type
// free of behavior that needs wide integers.
type Price struct {
	Base  Amount
	Quote Amount
}

func (p Price) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

// IsNull reports whether the price is the zero value, the sentinel used
// throughout spec.md for "no feed".
func (p Price) IsNull() bool {
	return p.Base.Value == 0 && p.Quote.Value == 0 && p.Base.Asset == 0 && p.Quote.Asset == 0
}
