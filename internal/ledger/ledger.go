package ledger

import (
	"strings"
	"time"

	entryDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/entry"
	paymentDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/payment"
)

// Payment is the JSON-facing view of a payment row, in insertion order
// within its parent entry.
type Payment struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	Amount    int64     `json:"amount"`
	Mode      string    `json:"mode"`
	FileURL   *string   `json:"file_url,omitempty"`
	ReceiptNo string    `json:"receipt_no"`
	UpdatedBy string    `json:"updated_by"`
	Status    string    `json:"status"`
}

// Entry is the JSON-facing view of a pledged donation, payments included.
// The receipt number lists stay comma-joined to preserve the stored shape.
type Entry struct {
	ID                    int64     `json:"id"`
	UserID                int64     `json:"user_id"`
	SerialNumber          int64     `json:"serial_number"`
	Item                  string    `json:"item"`
	Amount                int64     `json:"amount"`
	Quantity              int64     `json:"quantity"`
	TotalAmount           int64     `json:"total_amount"`
	ReceivedAmount        int64     `json:"received_amount"`
	PendingAmount         int64     `json:"pending_amount"`
	Status                string    `json:"status"`
	EntryStatus           string    `json:"entry_status"`
	Payments              []Payment `json:"payments"`
	ReceiptNumbers        string    `json:"receipt_numbers"`
	DeletedReceiptNumbers string    `json:"deleted_receipt_numbers"`
	EntryDate             time.Time `json:"entry_date"`
	CreatedBy             string    `json:"created_by"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func FromDataModel(e *entryDatamodel.Entry, payments []paymentDatamodel.Payment) *Entry {
	out := &Entry{
		ID:                    e.ID,
		UserID:                e.UserID,
		SerialNumber:          e.SerialNumber,
		Item:                  e.Item,
		Amount:                e.Amount,
		Quantity:              e.Quantity,
		TotalAmount:           e.TotalAmount,
		ReceivedAmount:        e.ReceivedAmount,
		PendingAmount:         e.PendingAmount,
		Status:                e.Status,
		EntryStatus:           e.EntryStatus,
		ReceiptNumbers:        e.ReceiptNumbers,
		DeletedReceiptNumbers: e.DeletedReceiptNumbers,
		EntryDate:             e.EntryDate,
		CreatedBy:             e.CreatedBy,
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
	}
	out.Payments = PaymentsFromDataModel(payments)
	return out
}

func PaymentsFromDataModel(payments []paymentDatamodel.Payment) []Payment {
	result := make([]Payment, len(payments))
	for i, p := range payments {
		result[i] = Payment{
			ID:        p.ID,
			Date:      p.Date,
			Amount:    p.Amount,
			Mode:      p.Mode,
			FileURL:   p.FileURL,
			ReceiptNo: p.ReceiptNo,
			UpdatedBy: p.UpdatedBy,
			Status:    p.Status,
		}
	}
	return result
}

// AppendReceipt adds a number to a comma-joined receipt list.
func AppendReceipt(list, number string) string {
	if list == "" {
		return number
	}
	return list + "," + number
}

// RemoveReceipt drops a number from a comma-joined receipt list, reporting
// whether it was present.
func RemoveReceipt(list, number string) (string, bool) {
	if list == "" {
		return "", false
	}
	parts := strings.Split(list, ",")
	kept := make([]string, 0, len(parts))
	found := false
	for _, p := range parts {
		if p == number && !found {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ","), found
}

// SplitReceipts returns the individual numbers in a comma-joined list.
func SplitReceipts(list string) []string {
	if list == "" {
		return nil
	}
	return strings.Split(list, ",")
}
