package postgres

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/frahmantamala/donation-ledger/internal"
	"github.com/frahmantamala/donation-ledger/internal/advance"
	advanceDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/advance"
	counterDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/counter"
	paymentDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/payment"
	txnlogDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/txnlog"
	"github.com/frahmantamala/donation-ledger/internal/ledger"
	ledgerPostgres "github.com/frahmantamala/donation-ledger/internal/ledger/postgres"
	receiptPostgres "github.com/frahmantamala/donation-ledger/internal/receipt/postgres"
	txnlogPostgres "github.com/frahmantamala/donation-ledger/internal/txnlog/postgres"
	"gorm.io/gorm"
)

// AdvanceRepository implements advance.Repository. Balance math is always
// recomputed from rows inside the transaction that depends on it.
type AdvanceRepository struct {
	db       *gorm.DB
	counters *receiptPostgres.CounterAllocator
	ledger   *ledgerPostgres.LedgerRepository
}

func NewAdvanceRepository(db *gorm.DB, counters *receiptPostgres.CounterAllocator, ledgerRepo *ledgerPostgres.LedgerRepository) *AdvanceRepository {
	return &AdvanceRepository{db: db, counters: counters, ledger: ledgerRepo}
}

func (r *AdvanceRepository) CreateAdvance(ctx context.Context, in *advance.AdvancePayment) (*advance.AdvancePayment, error) {
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	model := &advanceDatamodel.AdvancePayment{
		UserID:    in.UserID,
		Amount:    in.Amount,
		Date:      date,
		CreatedBy: in.CreatedBy,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		receiptNo, err := r.counters.NextInTx(tx, counterDatamodel.CategoryAdvance, date.Year())
		if err != nil {
			return err
		}
		model.ReceiptNo = receiptNo

		if err := tx.Create(model).Error; err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"receipt_no": receiptNo,
			"created_by": in.CreatedBy,
		})
		return txnlogPostgres.AppendInTx(tx, &txnlogDatamodel.TransactionLog{
			UserID:          in.UserID,
			TransactionType: txnlogDatamodel.TypeCredit,
			Amount:          in.Amount,
			Description:     "advance payment received",
			Details:         details,
			Date:            date,
		})
	})
	if err != nil {
		return nil, err
	}

	return advance.FromDataModel(model), nil
}

// balanceInTx sums the user's credit minus usage under whatever locks the
// caller already holds.
func balanceInTx(tx *gorm.DB, userID int64) (int64, error) {
	var credited int64
	err := tx.Model(&advanceDatamodel.AdvancePayment{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&credited).Error
	if err != nil {
		return 0, err
	}

	var used int64
	err = tx.Model(&advanceDatamodel.AdvancePaymentUsage{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&used).Error
	if err != nil {
		return 0, err
	}

	return credited - used, nil
}

func (r *AdvanceRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return balanceInTx(r.db.WithContext(ctx), userID)
}

func (r *AdvanceRepository) ApplyAdvance(ctx context.Context, entryID, userID int64, updatedBy string) (*advance.ApplyResult, error) {
	var result *advance.ApplyResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locking the user's advance rows serializes concurrent applies for
		// the same user before any balance is read, so two applies can never
		// both spend the same credit.
		var advances []advanceDatamodel.AdvancePayment
		err := ledgerPostgres.ForUpdate(tx).
			Where("user_id = ?", userID).
			Find(&advances).Error
		if err != nil {
			return err
		}

		balance, err := balanceInTx(tx, userID)
		if err != nil {
			return err
		}
		if balance <= 0 {
			return apperrors.ErrNoAdvanceBalance
		}

		entry, err := ledgerPostgres.LockEntry(tx, entryID)
		if err != nil {
			return err
		}
		if entry.EntryStatus != ledger.EntryStatusActive {
			return apperrors.ErrEntryDeleted
		}
		if entry.PendingAmount <= 0 {
			return apperrors.ErrNothingPending
		}

		applyAmount := balance
		if entry.PendingAmount < applyAmount {
			applyAmount = entry.PendingAmount
		}

		now := time.Now()
		usage := &advanceDatamodel.AdvancePaymentUsage{
			UserID:  userID,
			EntryID: entryID,
			Amount:  applyAmount,
			Date:    now,
		}
		if err := tx.Create(usage).Error; err != nil {
			return err
		}

		updated, _, err := r.ledger.RecordPaymentInTx(tx, entryID, ledger.RecordPaymentDTO{
			Amount: applyAmount,
			Date:   now,
			Mode:   paymentDatamodel.ModeAdvance,
		}, updatedBy)
		if err != nil {
			return err
		}

		payments, err := loadEntryPayments(tx, entryID)
		if err != nil {
			return err
		}

		result = &advance.ApplyResult{
			Entry:         ledger.FromDataModel(updated, payments),
			AppliedAmount: applyAmount,
			NewBalance:    balance - applyAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadEntryPayments(tx *gorm.DB, entryID int64) ([]paymentDatamodel.Payment, error) {
	var payments []paymentDatamodel.Payment
	err := tx.Where("parent_type = ? AND parent_id = ?", paymentDatamodel.ParentTypeEntry, entryID).
		Order("id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *AdvanceRepository) ListAdvances(ctx context.Context, userID *int64, limit, offset int) ([]*advance.AdvancePayment, error) {
	query := r.db.WithContext(ctx).Model(&advanceDatamodel.AdvancePayment{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var models []advanceDatamodel.AdvancePayment
	err := query.Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	result := make([]*advance.AdvancePayment, len(models))
	for i := range models {
		result[i] = advance.FromDataModel(&models[i])
	}
	return result, nil
}

func (r *AdvanceRepository) ListUsages(ctx context.Context, userID int64) ([]*advance.Usage, error) {
	var models []advanceDatamodel.AdvancePaymentUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	result := make([]*advance.Usage, len(models))
	for i := range models {
		result[i] = advance.UsageFromDataModel(&models[i])
	}
	return result, nil
}
