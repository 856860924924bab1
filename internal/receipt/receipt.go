package receipt

import (
	"context"
	"fmt"

	errors "github.com/frahmantamala/donation-ledger/internal"
	counterDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/counter"
)

// Allocator issues receipt numbers that are unique across everything ever
// issued for a category. Sequences are strictly increasing and never reused,
// even when the payment carrying a number is later soft-deleted; the gap is
// the audit trail.
type Allocator interface {
	Next(ctx context.Context, category string, year int) (string, error)
}

// Prefixes maps receipt categories to their configured number prefixes.
type Prefixes struct {
	Boli        string
	Advance     string
	Outstanding string
}

func NewPrefixes(boli, advance, outstanding string) Prefixes {
	return Prefixes{Boli: boli, Advance: advance, Outstanding: outstanding}
}

func (p Prefixes) ForCategory(category string) (string, error) {
	switch category {
	case counterDatamodel.CategoryBoli:
		return p.Boli, nil
	case counterDatamodel.CategoryAdvance:
		return p.Advance, nil
	case counterDatamodel.CategoryOutstanding:
		return p.Outstanding, nil
	}
	return "", errors.NewInternalError(fmt.Sprintf("no receipt prefix for category %q", category), nil)
}

// FormatNumber renders a receipt number as <PREFIX>-<YYYY>-<5 digit
// zero-padded sequence>, e.g. SPDJMSJ-2025-00001. The format is part of the
// external contract and must not change.
func FormatNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%04d-%05d", prefix, year, seq)
}
