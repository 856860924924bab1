package advance

import (
	"time"
)

// AdvancePayment is a standing credit a donor has pre-paid, independent of
// any entry until consumed.
type AdvancePayment struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Amount    int64     `gorm:"column:amount;not null"`
	ReceiptNo string    `gorm:"column:receipt_no;not null;uniqueIndex"`
	Date      time.Time `gorm:"column:date;type:date"`
	CreatedBy string    `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (AdvancePayment) TableName() string {
	return "advance_payments"
}

// AdvancePaymentUsage records that part of a donor's advance credit was
// applied to an entry. Rows are insert-only; the current balance is always
// sum(advance payments) - sum(usages).
type AdvancePaymentUsage struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	EntryID   int64     `gorm:"column:entry_id;not null;index"`
	Amount    int64     `gorm:"column:amount;not null"`
	Date      time.Time `gorm:"column:date;type:date;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (AdvancePaymentUsage) TableName() string {
	return "advance_payment_usages"
}
