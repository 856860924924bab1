package txnlog

import (
	"context"
	"log/slog"
)

type Repository interface {
	List(ctx context.Context, filter Filter) ([]*Transaction, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Transaction, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	transactions, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err)
		return nil, err
	}
	return transactions, nil
}
