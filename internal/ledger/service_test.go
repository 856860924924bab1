package ledger_test

import (
	"context"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/frahmantamala/donation-ledger/internal"
	"github.com/frahmantamala/donation-ledger/internal/core/events"
	"github.com/frahmantamala/donation-ledger/internal/ledger"
)

type mockLedgerRepository struct {
	entries       map[int64]*ledger.Entry
	nextID        int64
	recordErr     error
	deleteErr     error
	lastRecordDTO *ledger.RecordPaymentDTO
}

func newMockLedgerRepository() *mockLedgerRepository {
	return &mockLedgerRepository{entries: make(map[int64]*ledger.Entry), nextID: 1}
}

func (m *mockLedgerRepository) CreateEntry(ctx context.Context, e *ledger.Entry) (*ledger.Entry, error) {
	e.ID = m.nextID
	e.SerialNumber = m.nextID
	m.nextID++
	m.entries[e.ID] = e
	return e, nil
}

func (m *mockLedgerRepository) GetEntry(ctx context.Context, id int64) (*ledger.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, errors.ErrEntryNotFound
	}
	return e, nil
}

func (m *mockLedgerRepository) ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	out := make([]*ledger.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockLedgerRepository) RecordPayment(ctx context.Context, entryID int64, dto ledger.RecordPaymentDTO, updatedBy string) (*ledger.Entry, *ledger.Payment, error) {
	if m.recordErr != nil {
		return nil, nil, m.recordErr
	}
	e, ok := m.entries[entryID]
	if !ok {
		return nil, nil, errors.ErrEntryNotFound
	}
	m.lastRecordDTO = &dto
	e.ReceivedAmount += dto.Amount
	e.PendingAmount = e.TotalAmount - e.ReceivedAmount
	e.Status = ledger.ComputeStatus(e.TotalAmount, e.ReceivedAmount)
	p := ledger.Payment{ID: int64(len(e.Payments) + 1), Amount: dto.Amount, Mode: dto.Mode, ReceiptNo: "SPDJMSJ-2025-00001", Status: "active", UpdatedBy: updatedBy}
	e.Payments = append(e.Payments, p)
	return e, &p, nil
}

func (m *mockLedgerRepository) DeletePayment(ctx context.Context, entryID int64, paymentIndex int, updatedBy string) (*ledger.Entry, *ledger.Payment, error) {
	if m.deleteErr != nil {
		return nil, nil, m.deleteErr
	}
	e, ok := m.entries[entryID]
	if !ok {
		return nil, nil, errors.ErrEntryNotFound
	}
	if paymentIndex < 0 || paymentIndex >= len(e.Payments) {
		return nil, nil, errors.ErrPaymentNotFound
	}
	p := &e.Payments[paymentIndex]
	p.Status = "deleted"
	e.ReceivedAmount -= p.Amount
	e.PendingAmount = e.TotalAmount - e.ReceivedAmount
	e.Status = ledger.ComputeStatus(e.TotalAmount, e.ReceivedAmount)
	return e, p, nil
}

func (m *mockLedgerRepository) EditPayment(ctx context.Context, entryID int64, paymentIndex int, dto ledger.EditPaymentDTO, updatedBy string) (*ledger.Entry, error) {
	e, ok := m.entries[entryID]
	if !ok {
		return nil, errors.ErrEntryNotFound
	}
	return e, nil
}

func (m *mockLedgerRepository) DeleteEntry(ctx context.Context, entryID int64, updatedBy string) error {
	e, ok := m.entries[entryID]
	if !ok {
		return errors.ErrEntryNotFound
	}
	e.EntryStatus = ledger.EntryStatusDeleted
	return nil
}

var _ = Describe("Ledger Service", func() {
	var (
		repo    *mockLedgerRepository
		bus     *events.EventBus
		service *ledger.Service
		ctx     context.Context
	)

	yesterday := time.Now().Add(-24 * time.Hour)

	BeforeEach(func() {
		repo = newMockLedgerRepository()
		bus = events.NewEventBus(slog.Default())
		service = ledger.NewService(repo, bus, slog.Default())
		ctx = context.Background()
	})

	Describe("CreateEntry", func() {
		It("should create a pending entry with the full amount outstanding", func() {
			dto := ledger.CreateEntryDTO{UserID: 7, Item: "boli", Amount: 50000, Quantity: 2, EntryDate: yesterday}

			entry, err := service.CreateEntry(ctx, dto, "admin")

			Expect(err).To(BeNil())
			Expect(entry.TotalAmount).To(Equal(int64(100000)))
			Expect(entry.ReceivedAmount).To(Equal(int64(0)))
			Expect(entry.PendingAmount).To(Equal(int64(100000)))
			Expect(entry.Status).To(Equal(ledger.StatusPending))
			Expect(entry.EntryStatus).To(Equal(ledger.EntryStatusActive))
			Expect(entry.CreatedBy).To(Equal("admin"))
		})

		It("should reject an invalid entry before touching storage", func() {
			dto := ledger.CreateEntryDTO{UserID: 7, Amount: 0}

			entry, err := service.CreateEntry(ctx, dto, "admin")

			Expect(entry).To(BeNil())
			Expect(err).NotTo(BeNil())
			Expect(repo.entries).To(BeEmpty())
		})
	})

	Describe("RecordPayment", func() {
		var entryID int64

		BeforeEach(func() {
			entry, err := service.CreateEntry(ctx, ledger.CreateEntryDTO{UserID: 7, Amount: 100000, EntryDate: yesterday}, "admin")
			Expect(err).To(BeNil())
			entryID = entry.ID
		})

		It("should move the entry to partial and publish an event", func() {
			received := make(chan events.Event, 1)
			bus.Subscribe(events.EventTypePaymentRecorded, func(ctx context.Context, e events.Event) error {
				received <- e
				return nil
			})

			entry, err := service.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{Amount: 10000, Date: yesterday, Mode: "cash"}, "admin")

			Expect(err).To(BeNil())
			Expect(entry.ReceivedAmount).To(Equal(int64(10000)))
			Expect(entry.PendingAmount).To(Equal(int64(90000)))
			Expect(entry.Status).To(Equal(ledger.StatusPartial))

			var event events.Event
			Eventually(received).Should(Receive(&event))
			recorded, ok := event.(*events.PaymentRecordedEvent)
			Expect(ok).To(BeTrue())
			Expect(recorded.Amount).To(Equal(int64(10000)))
			Expect(recorded.EntryID).To(Equal(entryID))
		})

		It("should reject an invalid payment without reaching the repository", func() {
			entry, err := service.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{Amount: 0, Date: yesterday, Mode: "cash"}, "admin")

			Expect(entry).To(BeNil())
			Expect(err).NotTo(BeNil())
			Expect(repo.lastRecordDTO).To(BeNil())
		})

		It("should reject a non cash payment without proof", func() {
			_, err := service.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{Amount: 10000, Date: yesterday, Mode: "upi"}, "admin")

			Expect(err).To(Equal(errors.ErrProofRequired))
		})

		It("should pass repository errors through unchanged", func() {
			repo.recordErr = errors.ErrAmountExceedsPending

			_, err := service.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{Amount: 200000, Date: yesterday, Mode: "cash"}, "admin")

			Expect(err).To(Equal(errors.ErrAmountExceedsPending))
		})
	})

	Describe("DeletePayment", func() {
		var entryID int64

		BeforeEach(func() {
			entry, err := service.CreateEntry(ctx, ledger.CreateEntryDTO{UserID: 7, Amount: 100000, EntryDate: yesterday}, "admin")
			Expect(err).To(BeNil())
			entryID = entry.ID
			_, err = service.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{Amount: 10000, Date: yesterday, Mode: "cash"}, "admin")
			Expect(err).To(BeNil())
		})

		It("should restore the pending balance and publish an event", func() {
			received := make(chan events.Event, 1)
			bus.Subscribe(events.EventTypePaymentDeleted, func(ctx context.Context, e events.Event) error {
				received <- e
				return nil
			})

			entry, err := service.DeletePayment(ctx, entryID, 0, "admin")

			Expect(err).To(BeNil())
			Expect(entry.ReceivedAmount).To(Equal(int64(0)))
			Expect(entry.PendingAmount).To(Equal(int64(100000)))
			Expect(entry.Status).To(Equal(ledger.StatusPending))
			Eventually(received).Should(Receive())
		})

		It("should reject an out of range payment index", func() {
			_, err := service.DeletePayment(ctx, entryID, 5, "admin")

			Expect(err).To(Equal(errors.ErrPaymentNotFound))
		})
	})

	Describe("EditPayment", func() {
		It("should reject an empty edit", func() {
			_, err := service.EditPayment(ctx, 1, 0, ledger.EditPaymentDTO{}, "admin")

			Expect(err).NotTo(BeNil())
		})
	})

	Describe("ListEntries", func() {
		It("should clamp the page size", func() {
			_, err := service.ListEntries(ctx, ledger.EntryFilter{Limit: 5000})
			Expect(err).To(BeNil())
		})
	})

	Describe("DeleteEntry", func() {
		It("should soft delete the entry", func() {
			entry, err := service.CreateEntry(ctx, ledger.CreateEntryDTO{UserID: 7, Amount: 100000, EntryDate: yesterday}, "admin")
			Expect(err).To(BeNil())

			Expect(service.DeleteEntry(ctx, entry.ID, "admin")).To(Succeed())
			Expect(repo.entries[entry.ID].EntryStatus).To(Equal(ledger.EntryStatusDeleted))
		})
	})
})
