package ledger

import (
	paymentDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/payment"
)

// Entry settlement status. Status is always derived from (total, received)
// via ComputeStatus, never stored independently of its inputs.
const (
	StatusPending = "pending"
	StatusPartial = "partial"
	StatusFull    = "full"
)

const (
	EntryStatusActive  = "active"
	EntryStatusDeleted = "deleted"
)

// ComputeReceived sums the amounts of active payments. Soft-deleted
// payments keep their rows but no longer count.
func ComputeReceived(payments []paymentDatamodel.Payment) int64 {
	var received int64
	for _, p := range payments {
		if p.Status == paymentDatamodel.StatusActive {
			received += p.Amount
		}
	}
	return received
}

// ComputePending returns total - received without clamping. Callers must
// reject mutations that would drive pending below zero before writing; a
// negative result here is a bug surfacing, not a state to hide.
func ComputePending(total, received int64) int64 {
	return total - received
}

// ComputeStatus derives the settlement status from totals.
func ComputeStatus(total, received int64) string {
	switch {
	case received <= 0:
		return StatusPending
	case received < total:
		return StatusPartial
	default:
		return StatusFull
	}
}
