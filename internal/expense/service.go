package expense

import (
	"context"
	"log/slog"

	expenseDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/expense"
)

// Repository defines the data access methods for expense entries.
type Repository interface {
	Create(ctx context.Context, expense *Expense) (*Expense, error)
	GetByID(ctx context.Context, id int64) (*Expense, error)
	List(ctx context.Context, filter Filter) ([]*Expense, error)
	SoftDelete(ctx context.Context, id int64, deletedBy string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateExpense(ctx context.Context, dto CreateExpenseDTO, createdBy string) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("expense validation failed", "error", err)
		return nil, err
	}

	created, err := s.repo.Create(ctx, &Expense{
		Description: dto.Description,
		Category:    dto.Category,
		Amount:      dto.Amount,
		PaidTo:      dto.PaidTo,
		Mode:        dto.Mode,
		Status:      expenseDatamodel.StatusActive,
		ExpenseDate: dto.ExpenseDate,
		CreatedBy:   createdBy,
	})
	if err != nil {
		s.logger.Error("failed to create expense", "error", err)
		return nil, err
	}

	s.logger.Info("expense recorded",
		"expense_id", created.ID,
		"amount", created.Amount,
		"category", created.Category)

	return created, nil
}

func (s *Service) GetExpense(ctx context.Context, id int64) (*Expense, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListExpenses(ctx context.Context, filter Filter) ([]*Expense, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) DeleteExpense(ctx context.Context, id int64, deletedBy string) error {
	if err := s.repo.SoftDelete(ctx, id, deletedBy); err != nil {
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id)
		return err
	}
	s.logger.Info("expense deleted", "expense_id", id, "deleted_by", deletedBy)
	return nil
}
