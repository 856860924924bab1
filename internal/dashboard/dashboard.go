package dashboard

import "time"

// Summary aggregates the ledger over a date range. Deleted entries,
// records and payments are excluded from every figure.
type Summary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	TotalPledged  int64 `json:"total_pledged"`
	TotalReceived int64 `json:"total_received"`
	TotalPending  int64 `json:"total_pending"`

	EntryCount   int64 `json:"entry_count"`
	PendingCount int64 `json:"pending_count"`
	PartialCount int64 `json:"partial_count"`
	FullCount    int64 `json:"full_count"`

	AdvanceCollected int64 `json:"advance_collected"`
	AdvanceApplied   int64 `json:"advance_applied"`
	AdvanceUnspent   int64 `json:"advance_unspent"`

	OutstandingTotal    int64 `json:"outstanding_total"`
	OutstandingReceived int64 `json:"outstanding_received"`
	OutstandingPending  int64 `json:"outstanding_pending"`

	ExpenseTotal int64 `json:"expense_total"`

	// Corpus is what the trust actually holds: money received against
	// entries plus advance credit collected, less money paid out.
	Corpus int64 `json:"corpus"`
}
