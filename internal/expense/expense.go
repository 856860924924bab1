package expense

import (
	"time"

	errors "github.com/frahmantamala/donation-ledger/internal"
	"github.com/frahmantamala/donation-ledger/internal/core/common/validation"
	expenseDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/expense"
)

// Expense is money paid out by the trust. Expenses feed the dashboard corpus
// arithmetic and carry no reconciliation rules of their own.
type Expense struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Amount      int64     `json:"amount"`
	PaidTo      string    `json:"paid_to"`
	Mode        string    `json:"mode"`
	Status      string    `json:"status"`
	ExpenseDate time.Time `json:"expense_date"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(m *expenseDatamodel.ExpenseEntry) *Expense {
	return &Expense{
		ID:          m.ID,
		Description: m.Description,
		Category:    m.Category,
		Amount:      m.Amount,
		PaidTo:      m.PaidTo,
		Mode:        m.Mode,
		Status:      m.Status,
		ExpenseDate: m.ExpenseDate,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToDataModel(e *Expense) *expenseDatamodel.ExpenseEntry {
	return &expenseDatamodel.ExpenseEntry{
		ID:          e.ID,
		Description: e.Description,
		Category:    e.Category,
		Amount:      e.Amount,
		PaidTo:      e.PaidTo,
		Mode:        e.Mode,
		Status:      e.Status,
		ExpenseDate: e.ExpenseDate,
		CreatedBy:   e.CreatedBy,
	}
}

// CreateExpenseDTO is the request payload for recording an expense.
type CreateExpenseDTO struct {
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Amount      int64     `json:"amount"`
	PaidTo      string    `json:"paid_to"`
	Mode        string    `json:"mode"`
	ExpenseDate time.Time `json:"expense_date"`
}

func (dto CreateExpenseDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("description", dto.Description).Required().MaxLength(500)
	v.Field("amount", dto.Amount).Required().MinInt(1, errors.ErrCodeInvalidAmount)
	v.Field("expense_date", dto.ExpenseDate).NotFuture()
	return v.Validate()
}

// Filter narrows expense listings by date range.
type Filter struct {
	From     *time.Time
	To       *time.Time
	Category string
	Limit    int
	Offset   int
}
