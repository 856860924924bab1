package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/donation-ledger/internal/core/events"
)

// Notifier delivers a composed message to a donor-facing channel. Delivery
// is an external collaborator; failures are logged and never propagate back
// into ledger state.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string) error
}

// LogNotifier is the shipped implementation: it writes the composed message
// to the structured log so operators can see what would have been sent.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, userID int64, message string) error {
	n.logger.Info("notification", "user_id", userID, "message", message)
	return nil
}

// Dispatcher subscribes a Notifier to ledger events.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
}

func NewDispatcher(notifier Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, logger: logger}
}

// Register wires the dispatcher into the event bus. Handler errors are
// swallowed by the bus; the ledger transaction has already committed by the
// time any of these run.
func (d *Dispatcher) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypePaymentRecorded, d.handlePaymentRecorded)
	bus.Subscribe(events.EventTypePaymentDeleted, d.handlePaymentDeleted)
	bus.Subscribe(events.EventTypeAdvanceApplied, d.handleAdvanceApplied)
}

func (d *Dispatcher) handlePaymentRecorded(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PaymentRecordedEvent)
	if !ok {
		d.logger.Warn("unexpected event payload", "event_type", event.EventType())
		return nil
	}

	msg := fmt.Sprintf("Payment of %d received (receipt %s). Remaining balance: %d.",
		e.Amount, e.ReceiptNo, e.Pending)
	if err := d.notifier.Notify(ctx, e.UserID, msg); err != nil {
		d.logger.Error("notification delivery failed", "error", err, "user_id", e.UserID)
	}
	return nil
}

func (d *Dispatcher) handlePaymentDeleted(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PaymentDeletedEvent)
	if !ok {
		d.logger.Warn("unexpected event payload", "event_type", event.EventType())
		return nil
	}

	msg := fmt.Sprintf("Payment of %d (receipt %s) was voided.", e.Amount, e.ReceiptNo)
	if err := d.notifier.Notify(ctx, e.UserID, msg); err != nil {
		d.logger.Error("notification delivery failed", "error", err, "user_id", e.UserID)
	}
	return nil
}

func (d *Dispatcher) handleAdvanceApplied(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.AdvanceAppliedEvent)
	if !ok {
		d.logger.Warn("unexpected event payload", "event_type", event.EventType())
		return nil
	}

	msg := fmt.Sprintf("Advance credit of %d applied. Remaining advance balance: %d.",
		e.AppliedAmount, e.NewBalance)
	if err := d.notifier.Notify(ctx, e.UserID, msg); err != nil {
		d.logger.Error("notification delivery failed", "error", err, "user_id", e.UserID)
	}
	return nil
}
