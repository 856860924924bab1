package outstanding

import (
	"time"

	errors "github.com/frahmantamala/donation-ledger/internal"
	"github.com/frahmantamala/donation-ledger/internal/core/common/validation"
	outstandingDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/outstanding"
	paymentDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/payment"
	"github.com/frahmantamala/donation-ledger/internal/ledger"
)

const (
	RecordStatusActive  = "active"
	RecordStatusDeleted = "deleted"
)

// Record is the JSON-facing view of a migrated legacy balance. It mirrors
// an entry, with outstandingAmount in place of totalAmount, and is governed
// by the same money rules.
type Record struct {
	ID                    int64            `json:"id"`
	UserID                int64            `json:"user_id"`
	Description           string           `json:"description"`
	OutstandingAmount     int64            `json:"outstanding_amount"`
	ReceivedAmount        int64            `json:"received_amount"`
	PendingAmount         int64            `json:"pending_amount"`
	Status                string           `json:"status"`
	RecordStatus          string           `json:"record_status"`
	Payments              []ledger.Payment `json:"payments"`
	ReceiptNumbers        string           `json:"receipt_numbers"`
	DeletedReceiptNumbers string           `json:"deleted_receipt_numbers"`
	CreatedBy             string           `json:"created_by"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

func FromDataModel(m *outstandingDatamodel.OutstandingRecord, payments []paymentDatamodel.Payment) *Record {
	return &Record{
		ID:                    m.ID,
		UserID:                m.UserID,
		Description:           m.Description,
		OutstandingAmount:     m.OutstandingAmount,
		ReceivedAmount:        m.ReceivedAmount,
		PendingAmount:         m.PendingAmount,
		Status:                m.Status,
		RecordStatus:          m.RecordStatus,
		Payments:              ledger.PaymentsFromDataModel(payments),
		ReceiptNumbers:        m.ReceiptNumbers,
		DeletedReceiptNumbers: m.DeletedReceiptNumbers,
		CreatedBy:             m.CreatedBy,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// CreateRecordDTO is the request payload for migrating a legacy balance.
type CreateRecordDTO struct {
	UserID            int64  `json:"user_id"`
	Description       string `json:"description"`
	OutstandingAmount int64  `json:"outstanding_amount"`
}

func (dto CreateRecordDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("outstanding_amount", dto.OutstandingAmount).Required().MinInt(1, errors.ErrCodeInvalidAmount)
	v.Field("description", dto.Description).MaxLength(500)
	return v.Validate()
}

// RecordFilter narrows outstanding record listings.
type RecordFilter struct {
	UserID *int64
	Status string
	Limit  int
	Offset int
}
