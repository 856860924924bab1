package dashboard

import (
	"context"
	"log/slog"
	"time"
)

// Repository folds stored rows into a Summary. The aggregation is
// read-only and adds no invariants of its own.
type Repository interface {
	Summary(ctx context.Context, from, to time.Time) (*Summary, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		// Default window covers the financial year to date.
		from = time.Date(to.Year(), time.April, 1, 0, 0, 0, 0, to.Location())
		if to.Before(from) {
			from = from.AddDate(-1, 0, 0)
		}
	}

	summary, err := s.repo.Summary(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to build dashboard summary", "error", err, "from", from, "to", to)
		return nil, err
	}
	return summary, nil
}
