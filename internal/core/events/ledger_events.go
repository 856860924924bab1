package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentRecorded = "ledger.payment_recorded"
	EventTypePaymentDeleted  = "ledger.payment_deleted"
	EventTypeAdvanceApplied  = "ledger.advance_applied"
)

type PaymentRecordedEvent struct {
	BaseEvent
	EntryID   int64  `json:"entry_id"`
	UserID    int64  `json:"user_id"`
	Amount    int64  `json:"amount"`
	Mode      string `json:"mode"`
	ReceiptNo string `json:"receipt_no"`
	Pending   int64  `json:"pending_amount"`
}

func NewPaymentRecordedEvent(entryID, userID, amount int64, mode, receiptNo string, pending int64) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentRecorded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entry_id":       entryID,
				"user_id":        userID,
				"amount":         amount,
				"mode":           mode,
				"receipt_no":     receiptNo,
				"pending_amount": pending,
			},
		},
		EntryID:   entryID,
		UserID:    userID,
		Amount:    amount,
		Mode:      mode,
		ReceiptNo: receiptNo,
		Pending:   pending,
	}
}

type PaymentDeletedEvent struct {
	BaseEvent
	EntryID   int64  `json:"entry_id"`
	UserID    int64  `json:"user_id"`
	Amount    int64  `json:"amount"`
	ReceiptNo string `json:"receipt_no"`
}

func NewPaymentDeletedEvent(entryID, userID, amount int64, receiptNo string) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entry_id":   entryID,
				"user_id":    userID,
				"amount":     amount,
				"receipt_no": receiptNo,
			},
		},
		EntryID:   entryID,
		UserID:    userID,
		Amount:    amount,
		ReceiptNo: receiptNo,
	}
}

type AdvanceAppliedEvent struct {
	BaseEvent
	EntryID       int64 `json:"entry_id"`
	UserID        int64 `json:"user_id"`
	AppliedAmount int64 `json:"applied_amount"`
	NewBalance    int64 `json:"new_balance"`
}

func NewAdvanceAppliedEvent(entryID, userID, appliedAmount, newBalance int64) *AdvanceAppliedEvent {
	return &AdvanceAppliedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAdvanceApplied,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entry_id":       entryID,
				"user_id":        userID,
				"applied_amount": appliedAmount,
				"new_balance":    newBalance,
			},
		},
		EntryID:       entryID,
		UserID:        userID,
		AppliedAmount: appliedAmount,
		NewBalance:    newBalance,
	}
}
