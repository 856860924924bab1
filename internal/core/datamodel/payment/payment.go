package payment

import (
	"time"
)

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"

	ParentTypeEntry       = "entry"
	ParentTypeOutstanding = "outstanding"

	ModeCash       = "cash"
	ModeUPI        = "upi"
	ModeCheque     = "cheque"
	ModeNetbanking = "netbanking"
	ModeAdvance    = "advance_payment"
)

// Payment is a child row of an entry or a previous-outstanding record.
// Deletion is soft: status flips to deleted, everything else stays for audit.
type Payment struct {
	ID         int64     `gorm:"primaryKey"`
	ParentType string    `gorm:"column:parent_type;not null;index:idx_payments_parent"`
	ParentID   int64     `gorm:"column:parent_id;not null;index:idx_payments_parent"`
	Date       time.Time `gorm:"column:date;type:date;not null"`
	Amount     int64     `gorm:"column:amount;not null"`
	Mode       string    `gorm:"column:mode;not null"`
	FileURL    *string   `gorm:"column:file_url"`
	ReceiptNo  string    `gorm:"column:receipt_no;not null;uniqueIndex"`
	UpdatedBy  string    `gorm:"column:updated_by"`
	Status     string    `gorm:"column:status;default:active"`
	CreatedAt  time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time `gorm:"column:updated_at;default:now()"`
}

func (Payment) TableName() string {
	return "payments"
}

// RequiresProof reports whether the mode needs an uploaded proof file.
func RequiresProof(mode string) bool {
	switch mode {
	case ModeUPI, ModeCheque, ModeNetbanking:
		return true
	}
	return false
}

// ValidMode reports whether mode is one of the accepted payment modes.
func ValidMode(mode string) bool {
	switch mode {
	case ModeCash, ModeUPI, ModeCheque, ModeNetbanking, ModeAdvance:
		return true
	}
	return false
}
