// Package chainemission implements periodic gravity emission (spec.md
// §4.10, C10): minting new core-asset supply and distributing it across
// accounts weighted by balance share and activity score, grounded on
// db_update.cpp's process_gravity_emission and the gravity_index_calculator
// concept from singularity.hpp.
package chainemission

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"

	"github.com/GravityProtocol/bitshares-core/chaincollab"
	"github.com/GravityProtocol/bitshares-core/chainlog"
	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

const (
	// secondsPerYear is 365.25 days, expressed as an exact integer (the
	// quarter day is exactly 21600 seconds) so the year cap never needs
	// floating point.
	secondsPerYear = 365*24*3600 + 24*3600/4
	nanosPerSecond = 1_000_000_000

	// activityFixedPointScale quantizes an incoming [0,1] activity score
	// (chainactivity.Calculate's output type, a float64) into an exact
	// integer numerator. This is the one unavoidable float-to-integer
	// boundary conversion; every computation downstream of it is integer
	// or big.Int fixed-point arithmetic with explicit floor division.
	activityFixedPointScale = 1_000_000_000
)

// DistributeEmission mints one period's worth of emission and credits it
// to every account holding a balance or an activity score, proportional
// to a blend of the two controlled by params.ActivityWeight. The
// emission rate ramps in linearly over params.DelayKoefficient blocks so
// a freshly launched chain doesn't front-load its YearEmissionLimit.
//
// Flooring each account's share individually would lose a few units to
// rounding; instead every account but the last (in sorted-by-name order,
// for determinism) gets its floored share, and the last gets whatever is
// left, so sum(credited) == totalEmission exactly — the conservation
// invariant spec.md §8 tests for.
func DistributeEmission(dgp *chaintypes.DynamicGlobalState, params *chaintypes.GlobalParameters, currentSupply int64, balances map[chaintypes.AccountName]int64, activityScores map[chaintypes.AccountName]float64, coreAsset chaintypes.AssetID, evaluators chaincollab.Evaluators, runID string) (int64, error) {
	totalEmission := emissionBudget(dgp, *params, currentSupply)
	if totalEmission <= 0 {
		return 0, nil
	}

	shares := computeShares(balances, activityScores, params.ActivityWeight, totalEmission)
	if len(shares) == 0 {
		return 0, nil
	}
	accounts := sortedAccounts(shares)

	distributed := int64(0)
	for i, a := range accounts {
		var share int64
		if i == len(accounts)-1 {
			share = totalEmission - distributed
		} else {
			share = shares[a]
		}
		if share <= 0 {
			continue
		}
		if err := evaluators.AdjustBalance(a, chaintypes.NewAmount(share, coreAsset)); err != nil {
			return distributed, errors.Wrapf(err, "chainemission: crediting %s", a)
		}
		distributed += share
	}

	params.CurrentEmissionVolume = distributed
	chainlog.Default().EmissionDistributed(distributed)
	chainlog.Default().Tabular(chainlog.KindEmission, runID, map[string]interface{}{
		"block_number": dgp.HeadBlockNumber,
		"total_minted": distributed,
		"recipients":   len(accounts),
	})
	return distributed, nil
}

// emissionBudget computes how much may be minted this period: a fraction
// of current supply per params.EmissionScale, ramped in over
// params.DelayKoefficient blocks, and capped so the implied annual rate
// never exceeds params.YearEmissionLimit. Every step is integer
// arithmetic with explicit floor division; nothing here touches a
// float64.
func emissionBudget(dgp *chaintypes.DynamicGlobalState, params chaintypes.GlobalParameters, currentSupply int64) int64 {
	raw := currentSupply * params.EmissionScale / chaintypes.Percent100
	if raw <= 0 {
		return 0
	}

	if params.DelayKoefficient > 0 && dgp.HeadBlockNumber < uint64(params.DelayKoefficient) {
		raw = raw * int64(dgp.HeadBlockNumber) / params.DelayKoefficient
	}

	if params.BlockInterval > 0 && params.EmissionPeriod > 0 && params.YearEmissionLimit > 0 {
		periodNanos := int64(params.BlockInterval) * int64(params.EmissionPeriod)
		yearNanos := int64(secondsPerYear) * nanosPerSecond
		yearCap := new(big.Int).Mul(big.NewInt(params.YearEmissionLimit), big.NewInt(periodNanos))
		yearCap.Quo(yearCap, big.NewInt(yearNanos))
		if yearCap.IsInt64() && raw > yearCap.Int64() {
			raw = yearCap.Int64()
		}
	}
	return raw
}

// computeShares blends balance share and activity share per
// activityWeight (parts per chaintypes.Percent100) and scales the blend
// directly into absolute emission-share amounts out of totalEmission:
// share(a) = (1-w)*balance(a)/sum(balance)*totalEmission +
// w*activity(a)/sum(activity)*totalEmission. An account absent from one
// side contributes zero to that side rather than being excluded
// outright. Each term is a single big.Int floor division over a shared
// denominator, so no more precision is lost than the final result's
// integer nature already requires — no intermediate float64 ratio ever
// exists.
//
// activityScores arrives as float64 (chainactivity.Calculate's native
// output); it is quantized once, here, into an activityFixedPointScale
// fixed-point integer numerator before entering the big.Int math.
func computeShares(balances map[chaintypes.AccountName]int64, activityScores map[chaintypes.AccountName]float64, activityWeight, totalEmission int64) map[chaintypes.AccountName]int64 {
	totalBalance := int64(0)
	for _, b := range balances {
		totalBalance += b
	}

	scaledActivity := make(map[chaintypes.AccountName]int64, len(activityScores))
	totalActivityScaled := int64(0)
	for a, s := range activityScores {
		scaled := int64(s * activityFixedPointScale)
		scaledActivity[a] = scaled
		totalActivityScaled += scaled
	}

	accounts := make(map[chaintypes.AccountName]bool)
	for a := range balances {
		accounts[a] = true
	}
	for a := range activityScores {
		accounts[a] = true
	}

	w := big.NewInt(activityWeight)
	oneMinusW := big.NewInt(chaintypes.Percent100 - activityWeight)
	percent100 := big.NewInt(chaintypes.Percent100)
	total := big.NewInt(totalEmission)

	shares := make(map[chaintypes.AccountName]int64, len(accounts))
	for a := range accounts {
		share := new(big.Int)

		if totalBalance > 0 {
			balanceTerm := new(big.Int).Mul(oneMinusW, total)
			balanceTerm.Mul(balanceTerm, big.NewInt(balances[a]))
			balanceDenom := new(big.Int).Mul(percent100, big.NewInt(totalBalance))
			balanceTerm.Div(balanceTerm, balanceDenom)
			share.Add(share, balanceTerm)
		}

		if totalActivityScaled > 0 {
			activityTerm := new(big.Int).Mul(w, total)
			activityTerm.Mul(activityTerm, big.NewInt(scaledActivity[a]))
			activityDenom := new(big.Int).Mul(percent100, big.NewInt(totalActivityScaled))
			activityTerm.Div(activityTerm, activityDenom)
			share.Add(share, activityTerm)
		}

		shares[a] = share.Int64()
	}
	return shares
}

func sortedAccounts(shares map[chaintypes.AccountName]int64) []chaintypes.AccountName {
	out := make([]chaintypes.AccountName, 0, len(shares))
	for a := range shares {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
