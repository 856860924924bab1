package entry

import (
	"time"
)

// Entry is a pledged donation line item. Amount and quantity are fixed at
// creation; received/pending/status are recomputed inside the same
// transaction as every payment mutation, never adjusted in place.
type Entry struct {
	ID                    int64     `gorm:"primaryKey"`
	UserID                int64     `gorm:"column:user_id;not null;index"`
	SerialNumber          int64     `gorm:"column:serial_number;not null;uniqueIndex"`
	Item                  string    `gorm:"column:item"`
	Amount                int64     `gorm:"column:amount;not null"`
	Quantity              int64     `gorm:"column:quantity;not null;default:1"`
	TotalAmount           int64     `gorm:"column:total_amount;not null"`
	ReceivedAmount        int64     `gorm:"column:received_amount;not null;default:0"`
	PendingAmount         int64     `gorm:"column:pending_amount;not null"`
	Status                string    `gorm:"column:status;default:pending"`
	EntryStatus           string    `gorm:"column:entry_status;default:active"`
	ReceiptNumbers        string    `gorm:"column:receipt_numbers"`
	DeletedReceiptNumbers string    `gorm:"column:deleted_receipt_numbers"`
	EntryDate             time.Time `gorm:"column:entry_date;type:date"`
	CreatedBy             string    `gorm:"column:created_by"`
	CreatedAt             time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt             time.Time `gorm:"column:updated_at;default:now()"`
}

func (Entry) TableName() string {
	return "entries"
}
