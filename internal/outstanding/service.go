package outstanding

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/donation-ledger/internal/ledger"
)

// Repository is the transactional storage contract for previous-outstanding
// records. Mutations carry the same locking and log discipline as the
// payment ledger.
type Repository interface {
	CreateRecord(ctx context.Context, rec *Record) (*Record, error)
	GetRecord(ctx context.Context, id int64) (*Record, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]*Record, error)
	RecordPayment(ctx context.Context, recordID int64, dto ledger.RecordPaymentDTO, updatedBy string) (*Record, error)
	DeletePayment(ctx context.Context, recordID int64, paymentIndex int, updatedBy string) (*Record, error)
	EditPayment(ctx context.Context, recordID int64, paymentIndex int, dto ledger.EditPaymentDTO, updatedBy string) (*Record, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateRecord(ctx context.Context, dto CreateRecordDTO, createdBy string) (*Record, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("outstanding record validation failed", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	created, err := s.repo.CreateRecord(ctx, &Record{
		UserID:            dto.UserID,
		Description:       dto.Description,
		OutstandingAmount: dto.OutstandingAmount,
		PendingAmount:     dto.OutstandingAmount,
		Status:            ledger.StatusPending,
		RecordStatus:      RecordStatusActive,
		CreatedBy:         createdBy,
	})
	if err != nil {
		s.logger.Error("failed to create outstanding record", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	s.logger.Info("outstanding record created",
		"record_id", created.ID,
		"user_id", created.UserID,
		"outstanding_amount", created.OutstandingAmount)

	return created, nil
}

func (s *Service) GetRecord(ctx context.Context, id int64) (*Record, error) {
	return s.repo.GetRecord(ctx, id)
}

func (s *Service) ListRecords(ctx context.Context, filter RecordFilter) ([]*Record, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.ListRecords(ctx, filter)
}

func (s *Service) RecordPayment(ctx context.Context, recordID int64, dto ledger.RecordPaymentDTO, updatedBy string) (*Record, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("outstanding payment validation failed", "error", err, "record_id", recordID)
		return nil, err
	}

	record, err := s.repo.RecordPayment(ctx, recordID, dto, updatedBy)
	if err != nil {
		s.logger.Error("failed to record outstanding payment", "error", err, "record_id", recordID, "amount", dto.Amount)
		return nil, err
	}

	s.logger.Info("outstanding payment recorded",
		"record_id", record.ID,
		"amount", dto.Amount,
		"pending_amount", record.PendingAmount,
		"status", record.Status)

	return record, nil
}

func (s *Service) DeletePayment(ctx context.Context, recordID int64, paymentIndex int, updatedBy string) (*Record, error) {
	record, err := s.repo.DeletePayment(ctx, recordID, paymentIndex, updatedBy)
	if err != nil {
		s.logger.Error("failed to delete outstanding payment", "error", err, "record_id", recordID, "payment_index", paymentIndex)
		return nil, err
	}

	s.logger.Info("outstanding payment deleted",
		"record_id", record.ID,
		"payment_index", paymentIndex,
		"pending_amount", record.PendingAmount,
		"status", record.Status)

	return record, nil
}

func (s *Service) EditPayment(ctx context.Context, recordID int64, paymentIndex int, dto ledger.EditPaymentDTO, updatedBy string) (*Record, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("outstanding payment edit validation failed", "error", err, "record_id", recordID)
		return nil, err
	}

	record, err := s.repo.EditPayment(ctx, recordID, paymentIndex, dto, updatedBy)
	if err != nil {
		s.logger.Error("failed to edit outstanding payment", "error", err, "record_id", recordID, "payment_index", paymentIndex)
		return nil, err
	}

	s.logger.Info("outstanding payment edited",
		"record_id", record.ID,
		"payment_index", paymentIndex,
		"pending_amount", record.PendingAmount,
		"status", record.Status)

	return record, nil
}
