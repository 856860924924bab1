package postgres

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/frahmantamala/donation-ledger/internal"
	expenseDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/expense"
	"github.com/frahmantamala/donation-ledger/internal/expense"
	"gorm.io/gorm"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) (*expense.Expense, error) {
	model := expense.ToDataModel(e)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to create expense entry", err)
	}
	return expense.FromDataModel(model), nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*expense.Expense, error) {
	var model expenseDatamodel.ExpenseEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, err
	}
	return expense.FromDataModel(&model), nil
}

func (r *ExpenseRepository) List(ctx context.Context, filter expense.Filter) ([]*expense.Expense, error) {
	query := r.db.WithContext(ctx).Model(&expenseDatamodel.ExpenseEntry{}).
		Where("status = ?", expenseDatamodel.StatusActive)

	if filter.From != nil {
		query = query.Where("expense_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("expense_date <= ?", *filter.To)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var models []expenseDatamodel.ExpenseEntry
	err := query.Order("expense_date DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	result := make([]*expense.Expense, len(models))
	for i := range models {
		result[i] = expense.FromDataModel(&models[i])
	}
	return result, nil
}

func (r *ExpenseRepository) SoftDelete(ctx context.Context, id int64, deletedBy string) error {
	res := r.db.WithContext(ctx).Model(&expenseDatamodel.ExpenseEntry{}).
		Where("id = ? AND status = ?", id, expenseDatamodel.StatusActive).
		Updates(map[string]interface{}{
			"status":     expenseDatamodel.StatusDeleted,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}
