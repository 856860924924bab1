package postgres

import (
	"context"
	"time"

	apperrors "github.com/frahmantamala/donation-ledger/internal"
	txnlogDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/txnlog"
	"github.com/frahmantamala/donation-ledger/internal/txnlog"
	"gorm.io/gorm"
)

// AppendInTx inserts an audit row inside the caller's transaction. Mutating
// repositories call this last, so a failed log write aborts the whole
// operation; the ledger never diverges from its own audit trail.
func AppendInTx(tx *gorm.DB, row *txnlogDatamodel.TransactionLog) error {
	if row.Date.IsZero() {
		row.Date = time.Now()
	}
	if err := tx.Create(row).Error; err != nil {
		return apperrors.NewInternalError("failed to append transaction log", err)
	}
	return nil
}

// TxnLogRepository is the read side of the audit trail. There is no update
// or delete path anywhere in this package.
type TxnLogRepository struct {
	db *gorm.DB
}

func NewTxnLogRepository(db *gorm.DB) *TxnLogRepository {
	return &TxnLogRepository{db: db}
}

func (r *TxnLogRepository) List(ctx context.Context, filter txnlog.Filter) ([]*txnlog.Transaction, error) {
	query := r.db.WithContext(ctx).Model(&txnlogDatamodel.TransactionLog{})

	if filter.EntryID != nil {
		query = query.Where("entry_id = ?", *filter.EntryID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}

	var rows []txnlogDatamodel.TransactionLog
	err := query.Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return txnlog.FromDataModelSlice(rows), nil
}
