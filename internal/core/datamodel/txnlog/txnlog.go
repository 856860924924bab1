package txnlog

import (
	"encoding/json"
	"time"
)

const (
	TypeCredit        = "credit"
	TypeDebit         = "debit"
	TypeUpdatePayment = "update_payment"
	TypeUpdateEntry   = "update_entry"
)

// TransactionLog is append-only: rows are inserted in the same transaction
// as the mutation they describe and are never updated or deleted.
type TransactionLog struct {
	ID              int64           `gorm:"primaryKey"`
	EntryID         *int64          `gorm:"column:entry_id;index"`
	UserID          int64           `gorm:"column:user_id;not null;index"`
	TransactionType string          `gorm:"column:transaction_type;not null"`
	Amount          int64           `gorm:"column:amount;not null"`
	Description     string          `gorm:"column:description"`
	Details         json.RawMessage `gorm:"column:details;type:jsonb"`
	Date            time.Time       `gorm:"column:date;type:date;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;default:now()"`
}

func (TransactionLog) TableName() string {
	return "transaction_logs"
}
