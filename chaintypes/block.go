package chaintypes

import "time"

// Block is the subset of a validated block the maintenance core needs.
// Signature and operation evaluation already happened upstream (spec §1).
type Block struct {
	Number    uint64
	ID        [32]byte
	Timestamp time.Time
	WitnessID WitnessID

	// Transfers is the supplemental extraction (SPEC_FULL §5) of every
	// transfer-shaped operation in the block, already converted to real
	// units, feeding the activity index (C9).
	Transfers []Transfer
}

// Transfer is one balance movement observed in a block, the record shape
// spec.md §4.9 requires for the activity index's rolling buffer.
type Transfer struct {
	From, To                     AccountName
	Amount, Fee                  Amount
	SourceBalance, TargetBalance Amount
	Timestamp                    time.Time
}
