package advance

import (
	"time"

	errors "github.com/frahmantamala/donation-ledger/internal"
	"github.com/frahmantamala/donation-ledger/internal/core/common/validation"
)

// CreateAdvanceDTO is the request payload for registering pre-paid credit.
type CreateAdvanceDTO struct {
	UserID int64     `json:"user_id"`
	Amount int64     `json:"amount"`
	Date   time.Time `json:"date"`
}

func (dto CreateAdvanceDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("amount", dto.Amount).Required().MinInt(1, errors.ErrCodeInvalidAmount)
	v.Field("date", dto.Date).NotFuture()
	return v.Validate()
}

// ApplyAdvanceDTO names the donor whose credit is applied to the entry in
// the URL. The amount is not a caller choice: it is always
// min(balance, pending).
type ApplyAdvanceDTO struct {
	UserID int64 `json:"user_id"`
}

func (dto ApplyAdvanceDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	return v.Validate()
}
