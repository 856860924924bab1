package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "github.com/frahmantamala/donation-ledger/internal"
	counterDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/counter"
	entryDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/entry"
	paymentDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/payment"
	txnlogDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/txnlog"
	"github.com/frahmantamala/donation-ledger/internal/ledger"
	receiptPostgres "github.com/frahmantamala/donation-ledger/internal/receipt/postgres"
	txnlogPostgres "github.com/frahmantamala/donation-ledger/internal/txnlog/postgres"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository implements ledger.Repository. Every mutating method is one
// transaction: lock the entry row, validate, write payment + entry + log,
// commit. A failed log write rolls the whole operation back.
type LedgerRepository struct {
	db       *gorm.DB
	counters *receiptPostgres.CounterAllocator
}

func NewLedgerRepository(db *gorm.DB, counters *receiptPostgres.CounterAllocator) *LedgerRepository {
	return &LedgerRepository{db: db, counters: counters}
}

// translateError maps driver-level lock and serialization failures to the
// retryable conflict error; everything else passes through.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.IsAppError(err); ok {
		return appErr
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return apperrors.ErrLockConflict.WithCause(err)
		}
	}
	return err
}

// ForUpdate adds a row lock on dialects that support one. SQLite has no
// FOR UPDATE; its single-writer transactions already serialize mutations.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// LockEntry reads the entry row under FOR UPDATE so concurrent mutations of
// the same entry serialize. Exported for the advance balance manager, which
// reads pending inside its own transaction before delegating here.
func LockEntry(tx *gorm.DB, entryID int64) (*entryDatamodel.Entry, error) {
	var e entryDatamodel.Entry
	err := ForUpdate(tx).
		Where("id = ?", entryID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, translateError(err)
	}
	return &e, nil
}

func loadPayments(tx *gorm.DB, parentType string, parentID int64) ([]paymentDatamodel.Payment, error) {
	var payments []paymentDatamodel.Payment
	err := tx.Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		Order("id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, translateError(err)
	}
	return payments, nil
}

// reconcileEntry recomputes received/pending/status from the payment rows
// and persists the entry. Status is derived, never adjusted in place.
func reconcileEntry(tx *gorm.DB, e *entryDatamodel.Entry, payments []paymentDatamodel.Payment) error {
	received := ledger.ComputeReceived(payments)
	pending := ledger.ComputePending(e.TotalAmount, received)
	if pending < 0 {
		return apperrors.NewIntegrityError("active payments exceed entry total", apperrors.ErrCodeBalanceBroken)
	}

	e.ReceivedAmount = received
	e.PendingAmount = pending
	e.Status = ledger.ComputeStatus(e.TotalAmount, received)
	e.UpdatedAt = time.Now()

	return translateError(tx.Save(e).Error)
}

func (r *LedgerRepository) CreateEntry(ctx context.Context, in *ledger.Entry) (*ledger.Entry, error) {
	model := &entryDatamodel.Entry{
		UserID:         in.UserID,
		Item:           in.Item,
		Amount:         in.Amount,
		Quantity:       in.Quantity,
		TotalAmount:    in.TotalAmount,
		ReceivedAmount: 0,
		PendingAmount:  in.TotalAmount,
		Status:         ledger.StatusPending,
		EntryStatus:    ledger.EntryStatusActive,
		EntryDate:      in.EntryDate,
		CreatedBy:      in.CreatedBy,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		serial, err := r.counters.NextSerialInTx(tx)
		if err != nil {
			return err
		}
		model.SerialNumber = serial

		if err := tx.Create(model).Error; err != nil {
			return translateError(err)
		}

		return txnlogPostgres.AppendInTx(tx, &txnlogDatamodel.TransactionLog{
			EntryID:         &model.ID,
			UserID:          model.UserID,
			TransactionType: txnlogDatamodel.TypeCredit,
			Amount:          model.TotalAmount,
			Description:     "entry created",
			Date:            model.EntryDate,
		})
	})
	if err != nil {
		return nil, err
	}

	return ledger.FromDataModel(model, nil), nil
}

func (r *LedgerRepository) GetEntry(ctx context.Context, id int64) (*ledger.Entry, error) {
	var model entryDatamodel.Entry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, translateError(err)
	}

	payments, err := loadPayments(r.db.WithContext(ctx), paymentDatamodel.ParentTypeEntry, model.ID)
	if err != nil {
		return nil, err
	}

	return ledger.FromDataModel(&model, payments), nil
}

func (r *LedgerRepository) ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	query := r.db.WithContext(ctx).Model(&entryDatamodel.Entry{}).
		Where("entry_status = ?", ledger.EntryStatusActive)

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("entry_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("entry_date <= ?", *filter.To)
	}

	var models []entryDatamodel.Entry
	err := query.Order("serial_number ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&models).Error
	if err != nil {
		return nil, translateError(err)
	}

	result := make([]*ledger.Entry, len(models))
	for i := range models {
		payments, err := loadPayments(r.db.WithContext(ctx), paymentDatamodel.ParentTypeEntry, models[i].ID)
		if err != nil {
			return nil, err
		}
		result[i] = ledger.FromDataModel(&models[i], payments)
	}
	return result, nil
}

func (r *LedgerRepository) RecordPayment(ctx context.Context, entryID int64, dto ledger.RecordPaymentDTO, updatedBy string) (*ledger.Entry, *ledger.Payment, error) {
	var (
		entryOut   *ledger.Entry
		paymentOut *ledger.Payment
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model, p, err := r.RecordPaymentInTx(tx, entryID, dto, updatedBy)
		if err != nil {
			return err
		}

		payments, err := loadPayments(tx, paymentDatamodel.ParentTypeEntry, model.ID)
		if err != nil {
			return err
		}
		entryOut = ledger.FromDataModel(model, payments)
		converted := ledger.PaymentsFromDataModel([]paymentDatamodel.Payment{*p})
		paymentOut = &converted[0]
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return entryOut, paymentOut, nil
}

// RecordPaymentInTx performs the full record-payment reconciliation inside
// an already-open transaction. The advance balance manager calls this so the
// usage debit and the payment commit together or not at all.
func (r *LedgerRepository) RecordPaymentInTx(tx *gorm.DB, entryID int64, dto ledger.RecordPaymentDTO, updatedBy string) (*entryDatamodel.Entry, *paymentDatamodel.Payment, error) {
	entry, err := LockEntry(tx, entryID)
	if err != nil {
		return nil, nil, err
	}
	if entry.EntryStatus != ledger.EntryStatusActive {
		return nil, nil, apperrors.ErrEntryDeleted
	}
	if dto.Amount <= 0 {
		return nil, nil, apperrors.NewValidationError("amount must be positive", apperrors.ErrCodeInvalidAmount)
	}
	if dto.Amount > entry.PendingAmount {
		return nil, nil, apperrors.ErrAmountExceedsPending
	}
	if paymentDatamodel.RequiresProof(dto.Mode) && (dto.FileURL == nil || *dto.FileURL == "") {
		return nil, nil, apperrors.ErrProofRequired
	}

	date := dto.Date
	if date.IsZero() {
		date = time.Now()
	}

	receiptNo, err := r.counters.NextInTx(tx, counterDatamodel.CategoryBoli, date.Year())
	if err != nil {
		return nil, nil, err
	}

	p := &paymentDatamodel.Payment{
		ParentType: paymentDatamodel.ParentTypeEntry,
		ParentID:   entry.ID,
		Date:       date,
		Amount:     dto.Amount,
		Mode:       dto.Mode,
		FileURL:    dto.FileURL,
		ReceiptNo:  receiptNo,
		UpdatedBy:  updatedBy,
		Status:     paymentDatamodel.StatusActive,
	}
	if err := tx.Create(p).Error; err != nil {
		return nil, nil, translateError(err)
	}

	payments, err := loadPayments(tx, paymentDatamodel.ParentTypeEntry, entry.ID)
	if err != nil {
		return nil, nil, err
	}

	entry.ReceiptNumbers = ledger.AppendReceipt(entry.ReceiptNumbers, receiptNo)
	if err := reconcileEntry(tx, entry, payments); err != nil {
		return nil, nil, err
	}

	details, _ := json.Marshal(map[string]interface{}{
		"mode":       dto.Mode,
		"receipt_no": receiptNo,
		"updated_by": updatedBy,
	})
	err = txnlogPostgres.AppendInTx(tx, &txnlogDatamodel.TransactionLog{
		EntryID:         &entry.ID,
		UserID:          entry.UserID,
		TransactionType: txnlogDatamodel.TypeDebit,
		Amount:          dto.Amount,
		Description:     "payment received",
		Details:         details,
		Date:            date,
	})
	if err != nil {
		return nil, nil, err
	}

	return entry, p, nil
}

func (r *LedgerRepository) DeletePayment(ctx context.Context, entryID int64, paymentIndex int, updatedBy string) (*ledger.Entry, *ledger.Payment, error) {
	var (
		entryOut   *ledger.Entry
		paymentOut *ledger.Payment
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := LockEntry(tx, entryID)
		if err != nil {
			return err
		}
		if entry.EntryStatus != ledger.EntryStatusActive {
			return apperrors.ErrEntryDeleted
		}

		payments, err := loadPayments(tx, paymentDatamodel.ParentTypeEntry, entry.ID)
		if err != nil {
			return err
		}
		if paymentIndex < 0 || paymentIndex >= len(payments) {
			return apperrors.ErrPaymentNotFound
		}

		target := &payments[paymentIndex]
		if target.Status != paymentDatamodel.StatusActive {
			return apperrors.ErrPaymentDeleted
		}

		target.Status = paymentDatamodel.StatusDeleted
		target.UpdatedBy = updatedBy
		target.UpdatedAt = time.Now()
		if err := tx.Save(target).Error; err != nil {
			return translateError(err)
		}

		// The number is voided, never reissued; the gap in the active list
		// preserves audit traceability.
		remaining, found := ledger.RemoveReceipt(entry.ReceiptNumbers, target.ReceiptNo)
		if !found {
			return apperrors.NewIntegrityError("receipt number missing from active list", apperrors.ErrCodeBalanceBroken)
		}
		entry.ReceiptNumbers = remaining
		entry.DeletedReceiptNumbers = ledger.AppendReceipt(entry.DeletedReceiptNumbers, target.ReceiptNo)

		if err := reconcileEntry(tx, entry, payments); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"receipt_no": target.ReceiptNo,
			"mode":       target.Mode,
			"deleted_by": updatedBy,
		})
		err = txnlogPostgres.AppendInTx(tx, &txnlogDatamodel.TransactionLog{
			EntryID:         &entry.ID,
			UserID:          entry.UserID,
			TransactionType: txnlogDatamodel.TypeCredit,
			Amount:          target.Amount,
			Description:     "payment deleted",
			Details:         details,
			Date:            time.Now(),
		})
		if err != nil {
			return err
		}

		entryOut = ledger.FromDataModel(entry, payments)
		converted := ledger.PaymentsFromDataModel([]paymentDatamodel.Payment{*target})
		paymentOut = &converted[0]
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return entryOut, paymentOut, nil
}

func (r *LedgerRepository) EditPayment(ctx context.Context, entryID int64, paymentIndex int, dto ledger.EditPaymentDTO, updatedBy string) (*ledger.Entry, error) {
	var entryOut *ledger.Entry

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := LockEntry(tx, entryID)
		if err != nil {
			return err
		}
		if entry.EntryStatus != ledger.EntryStatusActive {
			return apperrors.ErrEntryDeleted
		}

		payments, err := loadPayments(tx, paymentDatamodel.ParentTypeEntry, entry.ID)
		if err != nil {
			return err
		}
		if paymentIndex < 0 || paymentIndex >= len(payments) {
			return apperrors.ErrPaymentNotFound
		}

		target := &payments[paymentIndex]
		if target.Status != paymentDatamodel.StatusActive {
			return apperrors.ErrPaymentDeleted
		}

		before := *target

		if dto.Amount != nil {
			target.Amount = *dto.Amount
		}
		if dto.Mode != nil {
			target.Mode = *dto.Mode
		}
		if dto.Date != nil {
			target.Date = *dto.Date
		}
		if dto.FileURL != nil {
			target.FileURL = dto.FileURL
		}

		// Moving off cash onto a proof-requiring mode needs a fresh proof.
		if paymentDatamodel.RequiresProof(target.Mode) && (target.FileURL == nil || *target.FileURL == "") {
			return apperrors.ErrProofRequired
		}

		newReceived := ledger.ComputeReceived(payments)
		if newReceived > entry.TotalAmount {
			return apperrors.ErrAmountExceedsPending
		}

		target.UpdatedBy = updatedBy
		target.UpdatedAt = time.Now()
		if err := tx.Save(target).Error; err != nil {
			return translateError(err)
		}

		if err := reconcileEntry(tx, entry, payments); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"before": map[string]interface{}{
				"amount":   before.Amount,
				"mode":     before.Mode,
				"date":     before.Date,
				"file_url": before.FileURL,
			},
			"after": map[string]interface{}{
				"amount":   target.Amount,
				"mode":     target.Mode,
				"date":     target.Date,
				"file_url": target.FileURL,
			},
			"receipt_no": target.ReceiptNo,
			"updated_by": updatedBy,
		})
		err = txnlogPostgres.AppendInTx(tx, &txnlogDatamodel.TransactionLog{
			EntryID:         &entry.ID,
			UserID:          entry.UserID,
			TransactionType: txnlogDatamodel.TypeUpdatePayment,
			Amount:          target.Amount,
			Description:     "payment updated",
			Details:         details,
			Date:            time.Now(),
		})
		if err != nil {
			return err
		}

		entryOut = ledger.FromDataModel(entry, payments)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entryOut, nil
}

func (r *LedgerRepository) DeleteEntry(ctx context.Context, entryID int64, updatedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := LockEntry(tx, entryID)
		if err != nil {
			return err
		}
		if entry.EntryStatus != ledger.EntryStatusActive {
			return apperrors.ErrEntryDeleted
		}

		entry.EntryStatus = ledger.EntryStatusDeleted
		entry.UpdatedAt = time.Now()
		if err := tx.Save(entry).Error; err != nil {
			return translateError(err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"deleted_by": updatedBy,
		})
		return txnlogPostgres.AppendInTx(tx, &txnlogDatamodel.TransactionLog{
			EntryID:         &entry.ID,
			UserID:          entry.UserID,
			TransactionType: txnlogDatamodel.TypeUpdateEntry,
			Amount:          entry.TotalAmount,
			Description:     "entry deleted",
			Details:         details,
			Date:            time.Now(),
		})
	})
}
