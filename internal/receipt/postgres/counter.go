package postgres

import (
	"context"

	errors "github.com/frahmantamala/donation-ledger/internal"
	counterDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/counter"
	"github.com/frahmantamala/donation-ledger/internal/receipt"
	"gorm.io/gorm"
)

// CounterAllocator hands out receipt numbers and entry serials from the
// receipt_counters table. Every allocation is a single atomic
// increment-and-read; two concurrent callers can never see the same value.
type CounterAllocator struct {
	db       *gorm.DB
	prefixes receipt.Prefixes
}

func NewCounterAllocator(db *gorm.DB, prefixes receipt.Prefixes) *CounterAllocator {
	return &CounterAllocator{db: db, prefixes: prefixes}
}

const nextValueSQL = `
INSERT INTO receipt_counters (category, year, value)
VALUES (?, ?, 1)
ON CONFLICT (category, year)
DO UPDATE SET value = value + 1
RETURNING value`

// NextInTx allocates the next receipt number for category/year inside an
// already-open transaction, so the number commits or rolls back together
// with the payment that carries it.
func (a *CounterAllocator) NextInTx(tx *gorm.DB, category string, year int) (string, error) {
	prefix, err := a.prefixes.ForCategory(category)
	if err != nil {
		return "", err
	}

	var value int64
	if err := tx.Raw(nextValueSQL, category, year).Scan(&value).Error; err != nil {
		return "", errors.NewInternalError("failed to advance receipt counter", err)
	}

	return receipt.FormatNumber(prefix, year, value), nil
}

// Next allocates a receipt number in its own transaction. Used for
// standalone issuance such as advance payment creation outside a larger
// ledger transaction.
func (a *CounterAllocator) Next(ctx context.Context, category string, year int) (string, error) {
	var number string
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := a.NextInTx(tx, category, year)
		if err != nil {
			return err
		}
		number = n
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// NextSerialInTx advances the global entry serial. Serials are not
// year-scoped; the row lives under year 0.
func (a *CounterAllocator) NextSerialInTx(tx *gorm.DB) (int64, error) {
	var value int64
	if err := tx.Raw(nextValueSQL, counterDatamodel.CategoryEntrySerial, 0).Scan(&value).Error; err != nil {
		return 0, errors.NewInternalError("failed to advance serial counter", err)
	}
	return value, nil
}
