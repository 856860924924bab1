package ledger

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/donation-ledger/internal/core/events"
)

// Repository is the transactional storage contract for the payment ledger.
// Every mutating method runs as a single database transaction with the entry
// row locked, so received/pending/status can never be observed inconsistent
// with the payments underneath them.
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) (*Entry, error)
	GetEntry(ctx context.Context, id int64) (*Entry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error)
	RecordPayment(ctx context.Context, entryID int64, dto RecordPaymentDTO, updatedBy string) (*Entry, *Payment, error)
	DeletePayment(ctx context.Context, entryID int64, paymentIndex int, updatedBy string) (*Entry, *Payment, error)
	EditPayment(ctx context.Context, entryID int64, paymentIndex int, dto EditPaymentDTO, updatedBy string) (*Entry, error)
	DeleteEntry(ctx context.Context, entryID int64, updatedBy string) error
}

type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// CreateEntry registers a new pledge. The serial number is assigned from the
// global counter inside the repository transaction.
func (s *Service) CreateEntry(ctx context.Context, dto CreateEntryDTO, createdBy string) (*Entry, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("entry validation failed", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	quantity := dto.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	total := dto.TotalAmount()
	entry := &Entry{
		UserID:         dto.UserID,
		Item:           dto.Item,
		Amount:         dto.Amount,
		Quantity:       quantity,
		TotalAmount:    total,
		ReceivedAmount: 0,
		PendingAmount:  total,
		Status:         StatusPending,
		EntryStatus:    EntryStatusActive,
		EntryDate:      dto.EntryDate,
		CreatedBy:      createdBy,
	}

	created, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		s.logger.Error("failed to create entry", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	s.logger.Info("entry created",
		"entry_id", created.ID,
		"serial_number", created.SerialNumber,
		"user_id", created.UserID,
		"total_amount", created.TotalAmount)

	return created, nil
}

func (s *Service) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) ListEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.ListEntries(ctx, filter)
}

// RecordPayment applies a payment to an entry's pending balance. On success
// the downstream notification hook is invoked via the event bus; delivery is
// outside the ledger's transaction and never affects its outcome.
func (s *Service) RecordPayment(ctx context.Context, entryID int64, dto RecordPaymentDTO, updatedBy string) (*Entry, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("payment validation failed", "error", err, "entry_id", entryID)
		return nil, err
	}

	entry, payment, err := s.repo.RecordPayment(ctx, entryID, dto, updatedBy)
	if err != nil {
		s.logger.Error("failed to record payment", "error", err, "entry_id", entryID, "amount", dto.Amount)
		return nil, err
	}

	s.logger.Info("payment recorded",
		"entry_id", entry.ID,
		"amount", payment.Amount,
		"mode", payment.Mode,
		"receipt_no", payment.ReceiptNo,
		"pending_amount", entry.PendingAmount,
		"status", entry.Status)

	if s.bus != nil {
		event := events.NewPaymentRecordedEvent(entry.ID, entry.UserID, payment.Amount, payment.Mode, payment.ReceiptNo, entry.PendingAmount)
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish payment event", "error", err, "entry_id", entry.ID)
		}
	}

	return entry, nil
}

// DeletePayment soft-deletes a payment by its position in the entry's
// payment history. Deleting an already-deleted payment is rejected, not
// silently accepted.
func (s *Service) DeletePayment(ctx context.Context, entryID int64, paymentIndex int, updatedBy string) (*Entry, error) {
	entry, payment, err := s.repo.DeletePayment(ctx, entryID, paymentIndex, updatedBy)
	if err != nil {
		s.logger.Error("failed to delete payment", "error", err, "entry_id", entryID, "payment_index", paymentIndex)
		return nil, err
	}

	s.logger.Info("payment deleted",
		"entry_id", entry.ID,
		"payment_index", paymentIndex,
		"amount", payment.Amount,
		"receipt_no", payment.ReceiptNo,
		"pending_amount", entry.PendingAmount,
		"status", entry.Status)

	if s.bus != nil {
		event := events.NewPaymentDeletedEvent(entry.ID, entry.UserID, payment.Amount, payment.ReceiptNo)
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish payment deleted event", "error", err, "entry_id", entry.ID)
		}
	}

	return entry, nil
}

// EditPayment changes amount, mode, date or proof of an existing payment.
// The receipt number is kept; the before/after snapshot goes to the
// transaction log.
func (s *Service) EditPayment(ctx context.Context, entryID int64, paymentIndex int, dto EditPaymentDTO, updatedBy string) (*Entry, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("payment edit validation failed", "error", err, "entry_id", entryID)
		return nil, err
	}

	entry, err := s.repo.EditPayment(ctx, entryID, paymentIndex, dto, updatedBy)
	if err != nil {
		s.logger.Error("failed to edit payment", "error", err, "entry_id", entryID, "payment_index", paymentIndex)
		return nil, err
	}

	s.logger.Info("payment edited",
		"entry_id", entry.ID,
		"payment_index", paymentIndex,
		"pending_amount", entry.PendingAmount,
		"status", entry.Status)

	return entry, nil
}

// DeleteEntry soft-deletes the whole entry. The entry drops out of all
// aggregates but keeps its payments and invariants intact for audit.
func (s *Service) DeleteEntry(ctx context.Context, entryID int64, updatedBy string) error {
	if err := s.repo.DeleteEntry(ctx, entryID, updatedBy); err != nil {
		s.logger.Error("failed to delete entry", "error", err, "entry_id", entryID)
		return err
	}

	s.logger.Info("entry deleted", "entry_id", entryID, "deleted_by", updatedBy)
	return nil
}
