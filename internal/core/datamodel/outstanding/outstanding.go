package outstanding

import (
	"time"
)

// OutstandingRecord is a legacy balance migrated from the prior paper
// system. It is structurally parallel to an entry and governed by the same
// money rules; its payments live in the payments table with
// parent_type=outstanding.
type OutstandingRecord struct {
	ID                    int64     `gorm:"primaryKey"`
	UserID                int64     `gorm:"column:user_id;not null;index"`
	Description           string    `gorm:"column:description"`
	OutstandingAmount     int64     `gorm:"column:outstanding_amount;not null"`
	ReceivedAmount        int64     `gorm:"column:received_amount;not null;default:0"`
	PendingAmount         int64     `gorm:"column:pending_amount;not null"`
	Status                string    `gorm:"column:status;default:pending"`
	RecordStatus          string    `gorm:"column:record_status;default:active"`
	ReceiptNumbers        string    `gorm:"column:receipt_numbers"`
	DeletedReceiptNumbers string    `gorm:"column:deleted_receipt_numbers"`
	CreatedBy             string    `gorm:"column:created_by"`
	CreatedAt             time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt             time.Time `gorm:"column:updated_at;default:now()"`
}

func (OutstandingRecord) TableName() string {
	return "previous_outstanding_records"
}
