package txnlog

import (
	"encoding/json"
	"time"

	txnlogDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/txnlog"
)

// Transaction is the JSON-facing view of an audit trail row.
type Transaction struct {
	ID              int64           `json:"id"`
	EntryID         *int64          `json:"entry_id,omitempty"`
	UserID          int64           `json:"user_id"`
	TransactionType string          `json:"transaction_type"`
	Amount          int64           `json:"amount"`
	Description     string          `json:"description"`
	Details         json.RawMessage `json:"details,omitempty"`
	Date            time.Time       `json:"date"`
	CreatedAt       time.Time       `json:"timestamp"`
}

func FromDataModel(t *txnlogDatamodel.TransactionLog) *Transaction {
	return &Transaction{
		ID:              t.ID,
		EntryID:         t.EntryID,
		UserID:          t.UserID,
		TransactionType: t.TransactionType,
		Amount:          t.Amount,
		Description:     t.Description,
		Details:         t.Details,
		Date:            t.Date,
		CreatedAt:       t.CreatedAt,
	}
}

func FromDataModelSlice(rows []txnlogDatamodel.TransactionLog) []*Transaction {
	result := make([]*Transaction, len(rows))
	for i := range rows {
		result[i] = FromDataModel(&rows[i])
	}
	return result
}

// Filter narrows audit trail listings.
type Filter struct {
	EntryID *int64
	UserID  *int64
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}
