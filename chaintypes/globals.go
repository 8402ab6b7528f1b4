package chaintypes

import "time"

// DynamicFlag is a bit in DynamicGlobalState.DynamicFlags.
type DynamicFlag uint32

const (
	// FlagMaintenance marks that the current block triggered a
	// maintenance interval (C3 design note, mirrors the teacher's
	// dynamic_global_property_object::maintenance_flag).
	FlagMaintenance DynamicFlag = 1 << 0
)

// DynamicGlobalState is the chain-wide singleton mutated once per block by
// C3/C4 (spec.md §3).
type DynamicGlobalState struct {
	HeadBlockNumber uint64
	HeadBlockID     [32]byte
	HeadTime        time.Time

	CurrentWitness WitnessID
	CurrentASlot   uint64

	// RecentSlotsFilled is a 64-bit sliding bitmap: bit 0 is the most
	// recently processed slot. Shifted left and OR'd in on every block
	// per spec.md §4.3 step 3 — this is exact fixed-width arithmetic the
	// spec pins down itself, not a candidate for a bignum/bitset library.
	RecentSlotsFilled    uint64
	RecentlyMissedCount  uint32
	LastIrreversibleBlock uint64
	WitnessBudget        int64
	DynamicFlags         DynamicFlag
}

// HasFlag reports whether f is set.
func (d *DynamicGlobalState) HasFlag(f DynamicFlag) bool {
	return d.DynamicFlags&f != 0
}

// GlobalParameters is the chain-wide, consensus-tunable singleton (spec.md
// §3). All ratios that are conceptually percentages are expressed in the
// same "parts per Percent100" convention the teacher's bitasset options
// use, to keep every ledger-affecting ratio an exact integer.
type GlobalParameters struct {
	ActiveWitnesses    []WitnessID
	WitnessPayPerBlock int64
	BlockInterval      time.Duration

	EmissionPeriod    uint64 // blocks
	EmissionScale     int64  // parts per Percent100
	DelayKoefficient  int64  // blocks over which emission ramps in linearly
	YearEmissionLimit int64

	ActivityPeriod             uint64 // blocks
	ActivityWeight             int64  // parts per Percent100
	AccountAmountThreshold     int64
	TransactionAmountThreshold int64

	CurrentEmissionVolume int64

	ForceSettlementOffsetPercent int64 // parts per Percent100

	// IrreversibleThreshold is a fraction in [0,1] (spec.md §3); kept as
	// a float because it is a governance-tunable ratio, never used in an
	// integer ledger-affecting computation itself (only to derive an
	// integer rank offset, see chainstate.UpdateLastIrreversibleBlock).
	IrreversibleThreshold float64
}

// Percent100 is the consensus "100%" scale: a field documented as "parts
// per Percent100" of X% is X*Percent100/100.
const Percent100 = 10000

// Witness is a block-producing witness account (spec.md §3). Only the
// fields this core mutates are modeled; evaluator-owned fields (keys,
// vote counts, ...) are out of scope.
type Witness struct {
	ID                       WitnessID
	LastASlot                uint64
	LastConfirmedBlockNumber uint64
	TotalMissed              uint64
}
