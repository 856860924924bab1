package postgres

import (
	"context"
	"time"

	apperrors "github.com/frahmantamala/donation-ledger/internal"
	entryDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/entry"
	expenseDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/expense"
	outstandingDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/outstanding"
	"github.com/frahmantamala/donation-ledger/internal/dashboard"
	"github.com/frahmantamala/donation-ledger/internal/ledger"
	"github.com/frahmantamala/donation-ledger/internal/outstanding"
	"gorm.io/gorm"
)

type DashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

type entryAggregate struct {
	TotalPledged  int64
	TotalReceived int64
	TotalPending  int64
	EntryCount    int64
	PendingCount  int64
	PartialCount  int64
	FullCount     int64
}

type outstandingAggregate struct {
	OutstandingTotal    int64
	OutstandingReceived int64
	OutstandingPending  int64
}

func (r *DashboardRepository) Summary(ctx context.Context, from, to time.Time) (*dashboard.Summary, error) {
	db := r.db.WithContext(ctx)

	var entries entryAggregate
	err := db.Model(&entryDatamodel.Entry{}).
		Select(`COALESCE(SUM(total_amount), 0) AS total_pledged,
			COALESCE(SUM(received_amount), 0) AS total_received,
			COALESCE(SUM(pending_amount), 0) AS total_pending,
			COUNT(*) AS entry_count,
			COUNT(*) FILTER (WHERE status = ?) AS pending_count,
			COUNT(*) FILTER (WHERE status = ?) AS partial_count,
			COUNT(*) FILTER (WHERE status = ?) AS full_count`,
			ledger.StatusPending, ledger.StatusPartial, ledger.StatusFull).
		Where("entry_status = ? AND entry_date >= ? AND entry_date <= ?",
			ledger.EntryStatusActive, from, to).
		Scan(&entries).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate entries", err)
	}

	var advanceCollected int64
	err = db.Table("advance_payments").
		Select("COALESCE(SUM(amount), 0)").
		Where("date >= ? AND date <= ?", from, to).
		Scan(&advanceCollected).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate advance payments", err)
	}

	var advanceApplied int64
	err = db.Table("advance_payment_usages").
		Select("COALESCE(SUM(amount), 0)").
		Where("date >= ? AND date <= ?", from, to).
		Scan(&advanceApplied).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate advance usage", err)
	}

	var outstandingAgg outstandingAggregate
	err = db.Model(&outstandingDatamodel.OutstandingRecord{}).
		Select(`COALESCE(SUM(outstanding_amount), 0) AS outstanding_total,
			COALESCE(SUM(received_amount), 0) AS outstanding_received,
			COALESCE(SUM(pending_amount), 0) AS outstanding_pending`).
		Where("record_status = ?", outstanding.RecordStatusActive).
		Scan(&outstandingAgg).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate outstanding records", err)
	}

	var expenseTotal int64
	err = db.Model(&expenseDatamodel.ExpenseEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ? AND expense_date >= ? AND expense_date <= ?",
			expenseDatamodel.StatusActive, from, to).
		Scan(&expenseTotal).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate expenses", err)
	}

	return &dashboard.Summary{
		From: from,
		To:   to,

		TotalPledged:  entries.TotalPledged,
		TotalReceived: entries.TotalReceived,
		TotalPending:  entries.TotalPending,

		EntryCount:   entries.EntryCount,
		PendingCount: entries.PendingCount,
		PartialCount: entries.PartialCount,
		FullCount:    entries.FullCount,

		AdvanceCollected: advanceCollected,
		AdvanceApplied:   advanceApplied,
		AdvanceUnspent:   advanceCollected - advanceApplied,

		OutstandingTotal:    outstandingAgg.OutstandingTotal,
		OutstandingReceived: outstandingAgg.OutstandingReceived,
		OutstandingPending:  outstandingAgg.OutstandingPending,

		ExpenseTotal: expenseTotal,

		Corpus: entries.TotalReceived + outstandingAgg.OutstandingReceived + advanceCollected - expenseTotal,
	}, nil
}
