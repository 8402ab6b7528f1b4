// Package chainprice implements the exact rational Price arithmetic of
// spec.md §4.2 (C2): comparison, reciprocal, and amount*price
// multiplication, all under explicit floor rounding and with a wide
// (256-bit) intermediate for cross-multiplied comparisons so the
// "at least 128-bit intermediate" requirement is met with headroom.
package chainprice

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

// ErrNegativeAmount is returned when price arithmetic is asked to operate
// on a negative amount; prices and balances used in market math are never
// negative in this core.
var ErrNegativeAmount = errors.New("chainprice: negative amount")

func u256(v int64) (*uint256.Int, error) {
	if v < 0 {
		return nil, ErrNegativeAmount
	}
	return uint256.NewInt(uint64(v)), nil
}

// Reciprocal returns ~p: base and quote swapped.
func Reciprocal(p chaintypes.Price) chaintypes.Price {
	return chaintypes.Price{Base: p.Quote, Quote: p.Base}
}

// Compare returns -1, 0 or 1 as a<b, a==b, a>b, comparing a.base*b.quote
// against b.base*a.quote. Panics on mismatched asset pairs, the same way
// the teacher's strongly-typed price comparisons refuse to compare
// incommensurate pairs at the call site.
func Compare(a, b chaintypes.Price) int {
	if a.Base.Asset != b.Base.Asset || a.Quote.Asset != b.Quote.Asset {
		panic("chainprice: comparing prices over different asset pairs")
	}
	ab, err := u256(a.Base.Value)
	if err != nil {
		panic(err)
	}
	bq, err := u256(b.Quote.Value)
	if err != nil {
		panic(err)
	}
	bb, err := u256(b.Base.Value)
	if err != nil {
		panic(err)
	}
	aq, err := u256(a.Quote.Value)
	if err != nil {
		panic(err)
	}

	lhs := new(uint256.Int).Mul(ab, bq)
	rhs := new(uint256.Int).Mul(bb, aq)
	return lhs.Cmp(rhs)
}

// Less reports a < b.
func Less(a, b chaintypes.Price) bool { return Compare(a, b) < 0 }

// Equal reports a == b (by value, not by reference).
func Equal(a, b chaintypes.Price) bool { return Compare(a, b) == 0 }

// Max returns whichever of a, b compares greater.
func Max(a, b chaintypes.Price) chaintypes.Price {
	if Less(a, b) {
		return b
	}
	return a
}

// Min returns whichever of a, b compares lesser.
func Min(a, b chaintypes.Price) chaintypes.Price {
	if Less(b, a) {
		return b
	}
	return a
}

// MaxPrice returns the greatest representable price for the pair
// (base, quote): the largest base over one unit of quote (prices order
// by base/quote, see Compare), used for open-ended upper range scans
// (spec.md §4.2).
func MaxPrice(base, quote chaintypes.AssetID) chaintypes.Price {
	return chaintypes.Price{
		Base:  chaintypes.Amount{Value: math.MaxInt64, Asset: base},
		Quote: chaintypes.Amount{Value: 1, Asset: quote},
	}
}

// MinPrice returns the least representable price for the pair
// (base, quote), the reciprocal shape of MaxPrice, used for open-ended
// lower range scans.
func MinPrice(base, quote chaintypes.AssetID) chaintypes.Price {
	return chaintypes.Price{
		Base:  chaintypes.Amount{Value: 1, Asset: base},
		Quote: chaintypes.Amount{Value: math.MaxInt64, Asset: quote},
	}
}

// Mul multiplies an amount by a price, per spec.md §4.2: if a is
// denominated in price.Base.Asset the result is
// floor(a*price.Quote/price.Base) in price.Quote.Asset; if a is
// denominated in price.Quote.Asset the symmetric reciprocal computation
// applies. Any other asset on a is an error.
func Mul(a chaintypes.Amount, p chaintypes.Price) (chaintypes.Amount, error) {
	switch a.Asset {
	case p.Base.Asset:
		return mulFloor(a, p.Quote, p.Base)
	case p.Quote.Asset:
		return mulFloor(a, p.Base, p.Quote)
	default:
		return chaintypes.Amount{}, errors.Errorf("chainprice: amount asset %d is not part of price %s", a.Asset, p)
	}
}

// mulFloor computes floor(a.Value * numDenom.Value / denom.Value) as an
// amount of numDenom.Asset.
func mulFloor(a, num, denom chaintypes.Amount) (chaintypes.Amount, error) {
	av, err := u256(a.Value)
	if err != nil {
		return chaintypes.Amount{}, err
	}
	nv, err := u256(num.Value)
	if err != nil {
		return chaintypes.Amount{}, err
	}
	dv, err := u256(denom.Value)
	if err != nil {
		return chaintypes.Amount{}, err
	}
	if dv.IsZero() {
		return chaintypes.Amount{}, errors.New("chainprice: division by zero price component")
	}
	product := new(uint256.Int).Mul(av, nv)
	quotient := new(uint256.Int).Div(product, dv)
	if quotient.BitLen() > 63 {
		return chaintypes.Amount{}, errors.New("chainprice: multiplication overflows int64 result")
	}
	return chaintypes.Amount{Value: int64(quotient.Uint64()), Asset: num.Asset}, nil
}

// ToBig converts an amount's value to a big.Int for callers that need
// bignum interop outside this package (e.g. golden-ratio style checks in
// tests).
func ToBig(v int64) *big.Int { return big.NewInt(v) }
