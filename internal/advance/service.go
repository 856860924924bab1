package advance

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/donation-ledger/internal/core/events"
)

// Repository is the transactional storage contract for advance credit.
// ApplyAdvance must serialize per user: the balance check and the usage
// insert happen under the same row locks, never as read-then-write.
type Repository interface {
	CreateAdvance(ctx context.Context, a *AdvancePayment) (*AdvancePayment, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
	ApplyAdvance(ctx context.Context, entryID, userID int64, updatedBy string) (*ApplyResult, error)
	ListAdvances(ctx context.Context, userID *int64, limit, offset int) ([]*AdvancePayment, error)
	ListUsages(ctx context.Context, userID int64) ([]*Usage, error)
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

func (s *Service) CreateAdvance(ctx context.Context, dto CreateAdvanceDTO, createdBy string) (*AdvancePayment, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("advance validation failed", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	created, err := s.repo.CreateAdvance(ctx, &AdvancePayment{
		UserID:    dto.UserID,
		Amount:    dto.Amount,
		Date:      dto.Date,
		CreatedBy: createdBy,
	})
	if err != nil {
		s.logger.Error("failed to create advance payment", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	s.logger.Info("advance payment created",
		"advance_id", created.ID,
		"user_id", created.UserID,
		"amount", created.Amount,
		"receipt_no", created.ReceiptNo)

	return created, nil
}

// GetBalance is always recomputed from advance and usage rows; there is no
// cached balance anywhere to drift.
func (s *Service) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return s.repo.GetBalance(ctx, userID)
}

// ApplyAdvance consumes min(balance, pending) of the donor's credit against
// the entry. The usage row and the resulting payment commit together or not
// at all; a failure between them would silently burn credit.
func (s *Service) ApplyAdvance(ctx context.Context, entryID, userID int64, updatedBy string) (*ApplyResult, error) {
	result, err := s.repo.ApplyAdvance(ctx, entryID, userID, updatedBy)
	if err != nil {
		s.logger.Error("failed to apply advance", "error", err, "entry_id", entryID, "user_id", userID)
		return nil, err
	}

	s.logger.Info("advance applied",
		"entry_id", entryID,
		"user_id", userID,
		"applied_amount", result.AppliedAmount,
		"new_balance", result.NewBalance,
		"entry_status", result.Entry.Status)

	if s.bus != nil {
		event := events.NewAdvanceAppliedEvent(entryID, userID, result.AppliedAmount, result.NewBalance)
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish advance applied event", "error", err, "entry_id", entryID)
		}
	}

	return result, nil
}

func (s *Service) ListAdvances(ctx context.Context, userID *int64, limit, offset int) ([]*AdvancePayment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListAdvances(ctx, userID, limit, offset)
}

func (s *Service) ListUsages(ctx context.Context, userID int64) ([]*Usage, error) {
	return s.repo.ListUsages(ctx, userID)
}
