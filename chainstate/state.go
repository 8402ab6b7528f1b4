// Package chainstate advances the dynamic global state on every block
// (spec.md §4.3, the C3 component) and tracks the irreversible block
// number (§4.4, C4). Both are grounded on db_update.cpp's
// update_global_dynamic_data, update_signing_witness and
// update_last_irreversible_block.
package chainstate

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/GravityProtocol/bitshares-core/chaincollab"
	"github.com/GravityProtocol/bitshares-core/chainerr"
	"github.com/GravityProtocol/bitshares-core/chainlog"
	"github.com/GravityProtocol/bitshares-core/chainparams"
	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

// UpdateGlobalDynamicData advances dgp past the new block: it walks every
// slot between the previous head and this block (crediting misses for
// slots nobody produced into), rolls the 64-bit recent_slots_filled
// window, applies recently-missed-count hysteresis, and fails with
// ErrUndoHistoryExhausted once head is more than MaxUndoHistory blocks
// past last_irreversible. That error is returned after dgp and the
// witnesses' miss counters have already been updated; nothing is rolled
// back here.
//
// block.WitnessID must be the witness that actually signed block; missed
// slots are attributed to whichever witness the scheduler says owned
// them.
func UpdateGlobalDynamicData(dgp *chaintypes.DynamicGlobalState, witnesses map[chaintypes.WitnessID]*chaintypes.Witness, block chaintypes.Block, sched chaincollab.Scheduler, runID string) error {
	newSlot := sched.SlotAtTime(block.Timestamp)
	if dgp.HeadBlockNumber > 0 && newSlot <= dgp.CurrentASlot {
		return errors.Errorf("chainstate: block timestamp %s does not advance the slot (current aslot %d, got %d)", block.Timestamp, dgp.CurrentASlot, newSlot)
	}

	missedSlots := uint64(0)
	if dgp.HeadBlockNumber > 0 {
		missedSlots = newSlot - dgp.CurrentASlot - 1
	}
	for offset := uint64(1); offset <= missedSlots; offset++ {
		missedWitness := sched.ScheduledWitness(dgp.CurrentASlot + offset)
		if w, ok := witnesses[missedWitness]; ok {
			w.TotalMissed++
		}
	}

	// recent_slots_filled is a 64-bit bitmap: bit 0 is the most recent
	// slot. Shift in one zero per missed slot, then set bit 0 for the
	// slot this block filled.
	shift := missedSlots + 1
	if shift >= 64 {
		dgp.RecentSlotsFilled = 0
	} else {
		dgp.RecentSlotsFilled <<= shift
	}
	dgp.RecentSlotsFilled |= 1

	if missedSlots > 0 {
		dgp.RecentlyMissedCount += chainparams.RecentlyMissedIncrement * uint32(missedSlots)
	} else if dgp.RecentlyMissedCount > chainparams.RecentlyMissedDecrement {
		dgp.RecentlyMissedCount -= chainparams.RecentlyMissedDecrement
	} else {
		dgp.RecentlyMissedCount = 0
	}

	dgp.CurrentASlot = newSlot
	dgp.HeadBlockNumber = block.Number
	dgp.HeadBlockID = block.ID
	dgp.HeadTime = block.Timestamp
	dgp.CurrentWitness = block.WitnessID

	if dgp.HeadBlockNumber > dgp.LastIrreversibleBlock && dgp.HeadBlockNumber-dgp.LastIrreversibleBlock > chainparams.MaxUndoHistory {
		return errors.Wrapf(chainerr.ErrUndoHistoryExhausted, "head %d last_irreversible %d exceeds max undo history %d", dgp.HeadBlockNumber, dgp.LastIrreversibleBlock, chainparams.MaxUndoHistory)
	}

	if w, ok := witnesses[block.WitnessID]; ok {
		w.LastConfirmedBlockNumber = block.Number
		w.LastASlot = newSlot
	}

	chainlog.Default().BlockInfo(runID, dgp.HeadBlockNumber, missedSlots, dgp.CurrentASlot)
	return nil
}

// UpdateSigningWitness deposits the current witness's per-block pay, capped
// by the remaining witness budget (db_update.cpp pays out of
// witness_budget and never overdraws it).
func UpdateSigningWitness(dgp *chaintypes.DynamicGlobalState, params chaintypes.GlobalParameters, evaluators chaincollab.Evaluators) error {
	pay := params.WitnessPayPerBlock
	if pay > dgp.WitnessBudget {
		pay = dgp.WitnessBudget
	}
	if pay <= 0 {
		return nil
	}
	if err := evaluators.DepositWitnessPay(dgp.CurrentWitness, pay); err != nil {
		return errors.Wrap(err, "chainstate: depositing witness pay")
	}
	dgp.WitnessBudget -= pay
	return nil
}

// UpdateLastIrreversibleBlock recomputes last_irreversible_block_number as
// the order statistic at IrreversibleThreshold over active witnesses'
// last_confirmed_block_number — the same nth_element selection
// update_last_irreversible_block performs, expressed with a sort since
// the witness set here is small enough that partial-selection's
// asymptotic edge does not matter.
func UpdateLastIrreversibleBlock(dgp *chaintypes.DynamicGlobalState, witnesses map[chaintypes.WitnessID]*chaintypes.Witness, params chaintypes.GlobalParameters) {
	if len(params.ActiveWitnesses) == 0 {
		return
	}
	confirmed := make([]uint64, 0, len(params.ActiveWitnesses))
	for _, id := range params.ActiveWitnesses {
		if w, ok := witnesses[id]; ok {
			confirmed = append(confirmed, w.LastConfirmedBlockNumber)
		} else {
			confirmed = append(confirmed, 0)
		}
	}
	sort.Slice(confirmed, func(i, j int) bool { return confirmed[i] < confirmed[j] })

	// Index counting up from the least-confirmed witness: at threshold T,
	// rank floor(N*(1-T)) picks the value that at least a T fraction of
	// witnesses have confirmed at least that far.
	rank := int(float64(len(confirmed)) * (1 - params.IrreversibleThreshold))
	if rank >= len(confirmed) {
		rank = len(confirmed) - 1
	}
	if rank < 0 {
		rank = 0
	}
	candidate := confirmed[rank]
	if candidate > dgp.LastIrreversibleBlock {
		dgp.LastIrreversibleBlock = candidate
	}
}
