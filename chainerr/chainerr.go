// Package chainerr defines the sentinel error kinds of the maintenance
// core (spec §7). Call sites wrap these with github.com/pkg/errors and
// callers match them with errors.Is.
package chainerr

import "errors"

var (
	// ErrUndoHistoryExhausted is fatal to the node: the gap between head
	// and last-irreversible has grown beyond the configured undo window.
	ErrUndoHistoryExhausted = errors.New("undo history exhausted: add a checkpoint")

	// ErrBlackSwanDisallowed is raised when a black swan is detected
	// during a context that forbids triggering one (e.g. a margin call
	// update outside of maintenance).
	ErrBlackSwanDisallowed = errors.New("black swan detected but not allowed in this context")

	// ErrBlackSwanDuringMatch is raised internally by a call/settlement
	// match when it discovers the backing asset has gone underwater;
	// force-settlement catches it and cancels the affected order.
	ErrBlackSwanDuringMatch = errors.New("black swan detected during match")

	// ErrProposalExecutionFailed marks a proposal that failed to apply
	// at expiration; the sweeper logs and removes it.
	ErrProposalExecutionFailed = errors.New("proposal execution failed at expiration")

	// ErrIndexInvariantViolated aborts the in-progress block.
	ErrIndexInvariantViolated = errors.New("index invariant violated")
)
