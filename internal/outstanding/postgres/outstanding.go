package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "github.com/frahmantamala/donation-ledger/internal"
	counterDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/counter"
	outstandingDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/outstanding"
	paymentDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/payment"
	txnlogDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/txnlog"
	"github.com/frahmantamala/donation-ledger/internal/ledger"
	ledgerPostgres "github.com/frahmantamala/donation-ledger/internal/ledger/postgres"
	"github.com/frahmantamala/donation-ledger/internal/outstanding"
	receiptPostgres "github.com/frahmantamala/donation-ledger/internal/receipt/postgres"
	txnlogPostgres "github.com/frahmantamala/donation-ledger/internal/txnlog/postgres"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// OutstandingRepository implements outstanding.Repository with the same
// lock/reconcile/log discipline as the payment ledger, against the
// previous_outstanding_records table.
type OutstandingRepository struct {
	db       *gorm.DB
	counters *receiptPostgres.CounterAllocator
}

func NewOutstandingRepository(db *gorm.DB, counters *receiptPostgres.CounterAllocator) *OutstandingRepository {
	return &OutstandingRepository{db: db, counters: counters}
}

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

func lockRecord(tx *gorm.DB, recordID int64) (*outstandingDatamodel.OutstandingRecord, error) {
	var rec outstandingDatamodel.OutstandingRecord
	err := ledgerPostgres.ForUpdate(tx).
		Where("id = ?", recordID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func loadPayments(tx *gorm.DB, recordID int64) ([]paymentDatamodel.Payment, error) {
	var payments []paymentDatamodel.Payment
	err := tx.Where("parent_type = ? AND parent_id = ?", paymentDatamodel.ParentTypeOutstanding, recordID).
		Order("id ASC").
		Find(&payments).Error
	return payments, err
}

func reconcileRecord(tx *gorm.DB, rec *outstandingDatamodel.OutstandingRecord, payments []paymentDatamodel.Payment) error {
	received := ledger.ComputeReceived(payments)
	pending := ledger.ComputePending(rec.OutstandingAmount, received)
	if pending < 0 {
		return apperrors.NewIntegrityError("active payments exceed outstanding amount", apperrors.ErrCodeBalanceBroken)
	}

	rec.ReceivedAmount = received
	rec.PendingAmount = pending
	rec.Status = ledger.ComputeStatus(rec.OutstandingAmount, received)
	rec.UpdatedAt = time.Now()

	return tx.Save(rec).Error
}

func (r *OutstandingRepository) CreateRecord(ctx context.Context, in *outstanding.Record) (*outstanding.Record, error) {
	model := &outstandingDatamodel.OutstandingRecord{
		UserID:            in.UserID,
		Description:       in.Description,
		OutstandingAmount: in.OutstandingAmount,
		ReceivedAmount:    0,
		PendingAmount:     in.OutstandingAmount,
		Status:            ledger.StatusPending,
		RecordStatus:      outstanding.RecordStatusActive,
		CreatedBy:         in.CreatedBy,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"outstanding_record_id": model.ID,
			"created_by":            in.CreatedBy,
		})
		return txnlogPostgres.AppendInTx(tx, &txnlogDatamodel.TransactionLog{
			UserID:          model.UserID,
			TransactionType: txnlogDatamodel.TypeCredit,
			Amount:          model.OutstandingAmount,
			Description:     "previous outstanding record created",
			Details:         details,
			Date:            time.Now(),
		})
	})
	if err != nil {
		return nil, translateError(err)
	}

	return outstanding.FromDataModel(model, nil), nil
}

func (r *OutstandingRepository) GetRecord(ctx context.Context, id int64) (*outstanding.Record, error) {
	var model outstandingDatamodel.OutstandingRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, err
	}

	payments, err := loadPayments(r.db.WithContext(ctx), model.ID)
	if err != nil {
		return nil, err
	}

	return outstanding.FromDataModel(&model, payments), nil
}

func (r *OutstandingRepository) ListRecords(ctx context.Context, filter outstanding.RecordFilter) ([]*outstanding.Record, error) {
	query := r.db.WithContext(ctx).Model(&outstandingDatamodel.OutstandingRecord{}).
		Where("record_status = ?", outstanding.RecordStatusActive)

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var models []outstandingDatamodel.OutstandingRecord
	err := query.Order("id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	result := make([]*outstanding.Record, len(models))
	for i := range models {
		payments, err := loadPayments(r.db.WithContext(ctx), models[i].ID)
		if err != nil {
			return nil, err
		}
		result[i] = outstanding.FromDataModel(&models[i], payments)
	}
	return result, nil
}

func (r *OutstandingRepository) RecordPayment(ctx context.Context, recordID int64, dto ledger.RecordPaymentDTO, updatedBy string) (*outstanding.Record, error) {
	var out *outstanding.Record

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := lockRecord(tx, recordID)
		if err != nil {
			return err
		}
		if rec.RecordStatus != outstanding.RecordStatusActive {
			return apperrors.ErrRecordNotFound
		}
		if dto.Amount <= 0 {
			return apperrors.NewValidationError("amount must be positive", apperrors.ErrCodeInvalidAmount)
		}
		if dto.Amount > rec.PendingAmount {
			return apperrors.ErrAmountExceedsPending
		}
		if paymentDatamodel.RequiresProof(dto.Mode) && (dto.FileURL == nil || *dto.FileURL == "") {
			return apperrors.ErrProofRequired
		}

		date := dto.Date
		if date.IsZero() {
			date = time.Now()
		}

		receiptNo, err := r.counters.NextInTx(tx, counterDatamodel.CategoryOutstanding, date.Year())
		if err != nil {
			return err
		}

		p := &paymentDatamodel.Payment{
			ParentType: paymentDatamodel.ParentTypeOutstanding,
			ParentID:   rec.ID,
			Date:       date,
			Amount:     dto.Amount,
			Mode:       dto.Mode,
			FileURL:    dto.FileURL,
			ReceiptNo:  receiptNo,
			UpdatedBy:  updatedBy,
			Status:     paymentDatamodel.StatusActive,
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}

		payments, err := loadPayments(tx, rec.ID)
		if err != nil {
			return err
		}

		rec.ReceiptNumbers = ledger.AppendReceipt(rec.ReceiptNumbers, receiptNo)
		if err := reconcileRecord(tx, rec, payments); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"outstanding_record_id": rec.ID,
			"mode":                  dto.Mode,
			"receipt_no":            receiptNo,
			"updated_by":            updatedBy,
		})
		err = txnlogPostgres.AppendInTx(tx, &txnlogDatamodel.TransactionLog{
			UserID:          rec.UserID,
			TransactionType: txnlogDatamodel.TypeDebit,
			Amount:          dto.Amount,
			Description:     "outstanding payment received",
			Details:         details,
			Date:            date,
		})
		if err != nil {
			return err
		}

		out = outstanding.FromDataModel(rec, payments)
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

func (r *OutstandingRepository) DeletePayment(ctx context.Context, recordID int64, paymentIndex int, updatedBy string) (*outstanding.Record, error) {
	var out *outstanding.Record

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := lockRecord(tx, recordID)
		if err != nil {
			return err
		}
		if rec.RecordStatus != outstanding.RecordStatusActive {
			return apperrors.ErrRecordNotFound
		}

		payments, err := loadPayments(tx, rec.ID)
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
			return err
		}

		remaining, found := ledger.RemoveReceipt(rec.ReceiptNumbers, target.ReceiptNo)
		if !found {
			return apperrors.NewIntegrityError("receipt number missing from active list", apperrors.ErrCodeBalanceBroken)
		}
		rec.ReceiptNumbers = remaining
		rec.DeletedReceiptNumbers = ledger.AppendReceipt(rec.DeletedReceiptNumbers, target.ReceiptNo)

		if err := reconcileRecord(tx, rec, payments); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"outstanding_record_id": rec.ID,
			"receipt_no":            target.ReceiptNo,
			"deleted_by":            updatedBy,
		})
		err = txnlogPostgres.AppendInTx(tx, &txnlogDatamodel.TransactionLog{
			UserID:          rec.UserID,
			TransactionType: txnlogDatamodel.TypeCredit,
			Amount:          target.Amount,
			Description:     "outstanding payment deleted",
			Details:         details,
			Date:            time.Now(),
		})
		if err != nil {
			return err
		}

		out = outstanding.FromDataModel(rec, payments)
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

func (r *OutstandingRepository) EditPayment(ctx context.Context, recordID int64, paymentIndex int, dto ledger.EditPaymentDTO, updatedBy string) (*outstanding.Record, error) {
	var out *outstanding.Record

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := lockRecord(tx, recordID)
		if err != nil {
			return err
		}
		if rec.RecordStatus != outstanding.RecordStatusActive {
			return apperrors.ErrRecordNotFound
		}

		payments, err := loadPayments(tx, rec.ID)
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

		if paymentDatamodel.RequiresProof(target.Mode) && (target.FileURL == nil || *target.FileURL == "") {
			return apperrors.ErrProofRequired
		}

		if ledger.ComputeReceived(payments) > rec.OutstandingAmount {
			return apperrors.ErrAmountExceedsPending
		}

		target.UpdatedBy = updatedBy
		target.UpdatedAt = time.Now()
		if err := tx.Save(target).Error; err != nil {
			return err
		}

		if err := reconcileRecord(tx, rec, payments); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"outstanding_record_id": rec.ID,
			"before": map[string]interface{}{
				"amount": before.Amount,
				"mode":   before.Mode,
				"date":   before.Date,
			},
			"after": map[string]interface{}{
				"amount": target.Amount,
				"mode":   target.Mode,
				"date":   target.Date,
			},
			"receipt_no": target.ReceiptNo,
			"updated_by": updatedBy,
		})
		err = txnlogPostgres.AppendInTx(tx, &txnlogDatamodel.TransactionLog{
			UserID:          rec.UserID,
			TransactionType: txnlogDatamodel.TypeUpdatePayment,
			Amount:          target.Amount,
			Description:     "outstanding payment updated",
			Details:         details,
			Date:            time.Now(),
		})
		if err != nil {
			return err
		}

		out = outstanding.FromDataModel(rec, payments)
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}
