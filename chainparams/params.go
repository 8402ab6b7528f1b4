// Package chainparams holds the consensus constants of spec.md's Glossary
// and Design Notes, plus YAML loading for GlobalParameters (the ambient
// configuration layer, SPEC_FULL §3).
package chainparams

import (
	"time"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

const (
	// RecentlyMissedIncrement and RecentlyMissedDecrement are the
	// consensus constants of spec.md's glossary entry for
	// "recently-missed count": the increment is strictly greater than
	// the decrement so a burst of misses is felt immediately but only
	// unwinds gradually.
	RecentlyMissedIncrement uint32 = 3
	RecentlyMissedDecrement uint32 = 1

	// MaxUndoHistory bounds head-last_irreversible, the gap C3 checks
	// on every block (spec.md §4.3 step 4, invariant 3).
	MaxUndoHistory uint64 = 10000

	// ActivityDecayKoefficient pulls an account's previous-period
	// activity score toward zero (parts per chaintypes.Percent100) each
	// time process_poi's period rolls over, so idle accounts cool down
	// rather than carrying an indefinite score.
	ActivityDecayKoefficient int64 = 1000
)

// MainnetGlobalParameters returns a representative, internally consistent
// default parameter set. Real chains override these via LoadParameters.
func MainnetGlobalParameters() chaintypes.GlobalParameters {
	return chaintypes.GlobalParameters{
		WitnessPayPerBlock:           1_000_000,
		BlockInterval:                3 * time.Second,
		EmissionPeriod:               100_000,
		EmissionScale:                chaintypes.Percent100,
		DelayKoefficient:             5000,
		YearEmissionLimit:            10_000_000_000,
		ActivityPeriod:               10_000,
		ActivityWeight:               5000,
		AccountAmountThreshold:       1_000,
		TransactionAmountThreshold:   100,
		ForceSettlementOffsetPercent: 100, // 1%
		IrreversibleThreshold:        0.7,
	}
}

// yamlParameters mirrors chaintypes.GlobalParameters with YAML-friendly
// field names and a plain-seconds duration encoding, the same flattening
// the teacher's own chain-config YAML front end applies to structured
// config before handing it to application code.
type yamlParameters struct {
	ActiveWitnesses              []uint64 `json:"active_witnesses"`
	WitnessPayPerBlock           int64    `json:"witness_pay_per_block"`
	BlockIntervalSeconds         int64    `json:"block_interval_seconds"`
	EmissionPeriod               uint64   `json:"emission_period"`
	EmissionScale                int64    `json:"emission_scale"`
	DelayKoefficient             int64    `json:"delay_koefficient"`
	YearEmissionLimit            int64    `json:"year_emission_limit"`
	ActivityPeriod               uint64   `json:"activity_period"`
	ActivityWeight               int64    `json:"activity_weight"`
	AccountAmountThreshold       int64    `json:"account_amount_threshold"`
	TransactionAmountThreshold   int64    `json:"transaction_amount_threshold"`
	ForceSettlementOffsetPercent int64    `json:"force_settlement_offset_percent"`
	IrreversibleThreshold        float64  `json:"irreversible_threshold"`
}

// LoadParameters parses a YAML document into GlobalParameters, starting
// from MainnetGlobalParameters for any field the document omits.
func LoadParameters(doc []byte) (chaintypes.GlobalParameters, error) {
	p := MainnetGlobalParameters()
	var y yamlParameters
	if err := yaml.Unmarshal(doc, &y); err != nil {
		return p, errors.Wrap(err, "chainparams: parsing global parameters yaml")
	}
	if len(y.ActiveWitnesses) > 0 {
		p.ActiveWitnesses = make([]chaintypes.WitnessID, len(y.ActiveWitnesses))
		for i, w := range y.ActiveWitnesses {
			p.ActiveWitnesses[i] = chaintypes.WitnessID(w)
		}
	}
	if y.WitnessPayPerBlock != 0 {
		p.WitnessPayPerBlock = y.WitnessPayPerBlock
	}
	if y.BlockIntervalSeconds != 0 {
		p.BlockInterval = time.Duration(y.BlockIntervalSeconds) * time.Second
	}
	if y.EmissionPeriod != 0 {
		p.EmissionPeriod = y.EmissionPeriod
	}
	if y.EmissionScale != 0 {
		p.EmissionScale = y.EmissionScale
	}
	if y.DelayKoefficient != 0 {
		p.DelayKoefficient = y.DelayKoefficient
	}
	if y.YearEmissionLimit != 0 {
		p.YearEmissionLimit = y.YearEmissionLimit
	}
	if y.ActivityPeriod != 0 {
		p.ActivityPeriod = y.ActivityPeriod
	}
	if y.ActivityWeight != 0 {
		p.ActivityWeight = y.ActivityWeight
	}
	if y.AccountAmountThreshold != 0 {
		p.AccountAmountThreshold = y.AccountAmountThreshold
	}
	if y.TransactionAmountThreshold != 0 {
		p.TransactionAmountThreshold = y.TransactionAmountThreshold
	}
	if y.ForceSettlementOffsetPercent != 0 {
		p.ForceSettlementOffsetPercent = y.ForceSettlementOffsetPercent
	}
	if y.IrreversibleThreshold != 0 {
		p.IrreversibleThreshold = y.IrreversibleThreshold
	}
	return p, nil
}
