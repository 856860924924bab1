package expense

import (
	"time"
)

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// ExpenseEntry is money paid out by the trust. Expenses feed the dashboard
// corpus arithmetic; they carry no reconciliation rules of their own.
type ExpenseEntry struct {
	ID          int64     `gorm:"primaryKey"`
	Description string    `gorm:"column:description;not null"`
	Category    string    `gorm:"column:category"`
	Amount      int64     `gorm:"column:amount;not null"`
	PaidTo      string    `gorm:"column:paid_to"`
	Mode        string    `gorm:"column:mode"`
	Status      string    `gorm:"column:status;default:active"`
	ExpenseDate time.Time `gorm:"column:expense_date;type:date;not null"`
	CreatedBy   string    `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (ExpenseEntry) TableName() string {
	return "expense_entries"
}
