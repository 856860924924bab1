package advance

import (
	"time"

	advanceDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/advance"
	"github.com/frahmantamala/donation-ledger/internal/ledger"
)

// AdvancePayment is the JSON-facing view of a donor's standing credit.
type AdvancePayment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	ReceiptNo string    `json:"receipt_no"`
	Date      time.Time `json:"date"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Usage records credit consumed against an entry. Usages are never edited
// or deleted.
type Usage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	EntryID   int64     `json:"entry_id"`
	Amount    int64     `json:"amount"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// ApplyResult reports what an advance application did: how much credit was
// consumed, the balance left, and the entry after reconciliation.
type ApplyResult struct {
	Entry         *ledger.Entry `json:"entry"`
	AppliedAmount int64         `json:"applied_amount"`
	NewBalance    int64         `json:"new_balance"`
}

func FromDataModel(a *advanceDatamodel.AdvancePayment) *AdvancePayment {
	return &AdvancePayment{
		ID:        a.ID,
		UserID:    a.UserID,
		Amount:    a.Amount,
		ReceiptNo: a.ReceiptNo,
		Date:      a.Date,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
	}
}

func UsageFromDataModel(u *advanceDatamodel.AdvancePaymentUsage) *Usage {
	return &Usage{
		ID:        u.ID,
		UserID:    u.UserID,
		EntryID:   u.EntryID,
		Amount:    u.Amount,
		Date:      u.Date,
		CreatedAt: u.CreatedAt,
	}
}
