package ledger

import (
	"time"

	errors "github.com/frahmantamala/donation-ledger/internal"
	"github.com/frahmantamala/donation-ledger/internal/core/common/validation"
	paymentDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/payment"
)

// CreateEntryDTO is the request payload for creating a pledged entry.
// Amount and quantity are fixed for the life of the entry.
type CreateEntryDTO struct {
	UserID    int64     `json:"user_id"`
	Item      string    `json:"item"`
	Amount    int64     `json:"amount"`
	Quantity  int64     `json:"quantity"`
	EntryDate time.Time `json:"entry_date"`
}

func (dto CreateEntryDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("amount", dto.Amount).Required().MinInt(1, errors.ErrCodeInvalidAmount)
	v.Field("quantity", dto.Quantity).MinInt(0, errors.ErrCodeInvalidQuantity)
	v.Field("item", dto.Item).MaxLength(200)
	return v.Validate()
}

// TotalAmount returns amount x quantity with quantity defaulting to 1.
func (dto CreateEntryDTO) TotalAmount() int64 {
	q := dto.Quantity
	if q <= 0 {
		q = 1
	}
	return dto.Amount * q
}

// RecordPaymentDTO is the request payload for recording a payment against an
// entry or an outstanding record.
type RecordPaymentDTO struct {
	Amount  int64     `json:"amount"`
	Date    time.Time `json:"date"`
	Mode    string    `json:"mode"`
	FileURL *string   `json:"file_url,omitempty"`
}

func (dto RecordPaymentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("amount", dto.Amount).Required().MinInt(1, errors.ErrCodeInvalidAmount)
	v.Field("mode", dto.Mode).Required().PaymentMode()
	v.Field("date", dto.Date).NotFuture()
	if err := v.Validate(); err != nil {
		return err
	}

	if paymentDatamodel.RequiresProof(dto.Mode) && (dto.FileURL == nil || *dto.FileURL == "") {
		return errors.ErrProofRequired
	}
	return nil
}

// EditPaymentDTO carries the editable payment fields. Nil means unchanged.
// Receipt numbers are never reissued on edit.
type EditPaymentDTO struct {
	Amount  *int64     `json:"amount,omitempty"`
	Mode    *string    `json:"mode,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
	FileURL *string    `json:"file_url,omitempty"`
}

func (dto EditPaymentDTO) Validate() *errors.AppError {
	if dto.Amount == nil && dto.Mode == nil && dto.Date == nil && dto.FileURL == nil {
		return errors.NewValidationError("no fields to update", errors.ErrCodeValidationFailed)
	}

	v := validation.NewValidator()
	if dto.Amount != nil {
		v.Field("amount", *dto.Amount).Required().MinInt(1, errors.ErrCodeInvalidAmount)
	}
	if dto.Mode != nil {
		v.Field("mode", *dto.Mode).Required().PaymentMode()
	}
	if dto.Date != nil {
		v.Field("date", *dto.Date).NotFuture()
	}
	return v.Validate()
}

// EntryFilter narrows entry listings.
type EntryFilter struct {
	UserID *int64
	Status string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
