package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "github.com/frahmantamala/donation-ledger/internal"
	txnlogDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/txnlog"
	"github.com/frahmantamala/donation-ledger/internal/ledger"
	ledgerPostgres "github.com/frahmantamala/donation-ledger/internal/ledger/postgres"
	"github.com/frahmantamala/donation-ledger/internal/receipt"
	receiptPostgres "github.com/frahmantamala/donation-ledger/internal/receipt/postgres"
)

func TestLedgerPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ledger Postgres Suite")
}

// SQLite-compatible models for testing; the real models carry Postgres
// defaults that SQLite cannot migrate.
type SQLiteEntry struct {
	ID                    int64     `gorm:"primaryKey"`
	UserID                int64     `gorm:"column:user_id;not null;index"`
	SerialNumber          int64     `gorm:"column:serial_number;not null;uniqueIndex"`
	Item                  string    `gorm:"column:item"`
	Amount                int64     `gorm:"column:amount;not null"`
	Quantity              int64     `gorm:"column:quantity;not null;default:1"`
	TotalAmount           int64     `gorm:"column:total_amount;not null"`
	ReceivedAmount        int64     `gorm:"column:received_amount;not null;default:0"`
	PendingAmount         int64     `gorm:"column:pending_amount;not null"`
	Status                string    `gorm:"column:status;default:pending"`
	EntryStatus           string    `gorm:"column:entry_status;default:active"`
	ReceiptNumbers        string    `gorm:"column:receipt_numbers"`
	DeletedReceiptNumbers string    `gorm:"column:deleted_receipt_numbers"`
	EntryDate             time.Time `gorm:"column:entry_date"`
	CreatedBy             string    `gorm:"column:created_by"`
	CreatedAt             time.Time `gorm:"column:created_at"`
	UpdatedAt             time.Time `gorm:"column:updated_at"`
}

func (SQLiteEntry) TableName() string { return "entries" }

type SQLitePayment struct {
	ID         int64     `gorm:"primaryKey"`
	ParentType string    `gorm:"column:parent_type;not null;index:idx_payments_parent"`
	ParentID   int64     `gorm:"column:parent_id;not null;index:idx_payments_parent"`
	Date       time.Time `gorm:"column:date;not null"`
	Amount     int64     `gorm:"column:amount;not null"`
	Mode       string    `gorm:"column:mode;not null"`
	FileURL    *string   `gorm:"column:file_url"`
	ReceiptNo  string    `gorm:"column:receipt_no;not null;uniqueIndex"`
	UpdatedBy  string    `gorm:"column:updated_by"`
	Status     string    `gorm:"column:status;default:active"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (SQLitePayment) TableName() string { return "payments" }

type SQLiteCounter struct {
	ID       int64  `gorm:"primaryKey"`
	Category string `gorm:"column:category;not null;uniqueIndex:idx_counters_category_year"`
	Year     int    `gorm:"column:year;not null;uniqueIndex:idx_counters_category_year"`
	Value    int64  `gorm:"column:value;not null;default:0"`
}

func (SQLiteCounter) TableName() string { return "receipt_counters" }

type SQLiteTransactionLog struct {
	ID              int64     `gorm:"primaryKey"`
	EntryID         *int64    `gorm:"column:entry_id;index"`
	UserID          int64     `gorm:"column:user_id;not null;index"`
	TransactionType string    `gorm:"column:transaction_type;not null"`
	Amount          int64     `gorm:"column:amount;not null"`
	Description     string    `gorm:"column:description"`
	Details         []byte    `gorm:"column:details"`
	Date            time.Time `gorm:"column:date;not null"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (SQLiteTransactionLog) TableName() string { return "transaction_logs" }

func openTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())

	err = db.AutoMigrate(&SQLiteEntry{}, &SQLitePayment{}, &SQLiteCounter{}, &SQLiteTransactionLog{})
	Expect(err).NotTo(HaveOccurred())

	return db
}

var _ = Describe("Ledger PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo *ledgerPostgres.LedgerRepository
		ctx  context.Context
	)

	yesterday := time.Now().Add(-24 * time.Hour)

	createEntry := func(amount, quantity int64) *ledger.Entry {
		entry, err := repo.CreateEntry(ctx, &ledger.Entry{
			UserID:      7,
			Item:        "boli",
			Amount:      amount,
			Quantity:    quantity,
			TotalAmount: amount * quantity,
			EntryDate:   yesterday,
			CreatedBy:   "admin",
		})
		Expect(err).NotTo(HaveOccurred())
		return entry
	}

	assertConsistent := func(e *ledger.Entry) {
		Expect(e.ReceivedAmount + e.PendingAmount).To(Equal(e.TotalAmount))
		Expect(e.Status).To(Equal(ledger.ComputeStatus(e.TotalAmount, e.ReceivedAmount)))
	}

	BeforeEach(func() {
		db = openTestDB()
		prefixes := receipt.NewPrefixes("SPDJMSJ", "SPDJMSJ-ADV", "SPDJMSJ-PO")
		counters := receiptPostgres.NewCounterAllocator(db, prefixes)
		repo = ledgerPostgres.NewLedgerRepository(db, counters)
		ctx = context.Background()
	})

	Describe("CreateEntry", func() {
		It("should create a pending entry with a serial number and a log row", func() {
			entry := createEntry(50000, 2)

			Expect(entry.ID).To(BeNumerically(">", 0))
			Expect(entry.SerialNumber).To(Equal(int64(1)))
			Expect(entry.TotalAmount).To(Equal(int64(100000)))
			Expect(entry.PendingAmount).To(Equal(int64(100000)))
			Expect(entry.Status).To(Equal(ledger.StatusPending))
			assertConsistent(entry)

			var logs []SQLiteTransactionLog
			Expect(db.Find(&logs).Error).NotTo(HaveOccurred())
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].TransactionType).To(Equal(txnlogDatamodel.TypeCredit))
			Expect(logs[0].Amount).To(Equal(int64(100000)))
		})

		It("should assign strictly increasing serial numbers", func() {
			first := createEntry(10000, 1)
			second := createEntry(20000, 1)

			Expect(second.SerialNumber).To(Equal(first.SerialNumber + 1))
		})
	})

	Describe("RecordPayment", func() {
		var entryID int64

		BeforeEach(func() {
			entryID = createEntry(100000, 1).ID
		})

		It("should move the entry through partial to full", func() {
			entry, payment, err := repo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
				Amount: 10000, Date: yesterday, Mode: "cash",
			}, "admin")

			Expect(err).NotTo(HaveOccurred())
			Expect(payment.ReceiptNo).To(Equal(receipt.FormatNumber("SPDJMSJ", yesterday.Year(), 1)))
			Expect(entry.ReceivedAmount).To(Equal(int64(10000)))
			Expect(entry.PendingAmount).To(Equal(int64(90000)))
			Expect(entry.Status).To(Equal(ledger.StatusPartial))
			Expect(entry.ReceiptNumbers).To(Equal(payment.ReceiptNo))
			assertConsistent(entry)

			entry, _, err = repo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
				Amount: 90000, Date: yesterday, Mode: "cash",
			}, "admin")

			Expect(err).NotTo(HaveOccurred())
			Expect(entry.ReceivedAmount).To(Equal(int64(100000)))
			Expect(entry.PendingAmount).To(Equal(int64(0)))
			Expect(entry.Status).To(Equal(ledger.StatusFull))
			Expect(entry.Payments).To(HaveLen(2))
			assertConsistent(entry)
		})

		It("should reject a payment above the pending balance", func() {
			_, _, err := repo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
				Amount: 150000, Date: yesterday, Mode: "cash",
			}, "admin")

			Expect(err).To(Equal(apperrors.ErrAmountExceedsPending))

			entry, getErr := repo.GetEntry(ctx, entryID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(entry.ReceivedAmount).To(Equal(int64(0)))
			Expect(entry.Payments).To(BeEmpty())
		})

		It("should reject a payment once the entry is full", func() {
			_, _, err := repo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
				Amount: 100000, Date: yesterday, Mode: "cash",
			}, "admin")
			Expect(err).NotTo(HaveOccurred())

			_, _, err = repo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
				Amount: 1, Date: yesterday, Mode: "cash",
			}, "admin")
			Expect(err).To(Equal(apperrors.ErrAmountExceedsPending))
		})

		It("should reject a non cash payment without proof", func() {
			_, _, err := repo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
				Amount: 10000, Date: yesterday, Mode: "upi",
			}, "admin")

			Expect(err).To(Equal(apperrors.ErrProofRequired))
		})

		It("should reject payments against an unknown entry", func() {
			_, _, err := repo.RecordPayment(ctx, 999, ledger.RecordPaymentDTO{
				Amount: 10000, Date: yesterday, Mode: "cash",
			}, "admin")

			Expect(err).To(Equal(apperrors.ErrEntryNotFound))
		})

		It("should write a debit log row inside the same transaction", func() {
			_, _, err := repo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
				Amount: 10000, Date: yesterday, Mode: "cash",
			}, "admin")
			Expect(err).NotTo(HaveOccurred())

			var logs []SQLiteTransactionLog
			Expect(db.Where("transaction_type = ?", txnlogDatamodel.TypeDebit).Find(&logs).Error).NotTo(HaveOccurred())
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].Amount).To(Equal(int64(10000)))
			Expect(*logs[0].EntryID).To(Equal(entryID))
		})
	})

	Describe("DeletePayment", func() {
		var entryID int64

		BeforeEach(func() {
			entryID = createEntry(100000, 1).ID
			_, _, err := repo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
				Amount: 10000, Date: yesterday, Mode: "cash",
			}, "admin")
			Expect(err).NotTo(HaveOccurred())
			_, _, err = repo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
				Amount: 90000, Date: yesterday, Mode: "cash",
			}, "admin")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should restore the pending balance and move the receipt aside", func() {
			entry, payment, err := repo.DeletePayment(ctx, entryID, 0, "admin")

			Expect(err).NotTo(HaveOccurred())
			Expect(payment.Status).To(Equal("deleted"))
			Expect(entry.ReceivedAmount).To(Equal(int64(90000)))
			Expect(entry.PendingAmount).To(Equal(int64(10000)))
			Expect(entry.Status).To(Equal(ledger.StatusPartial))
			assertConsistent(entry)

			Expect(ledger.SplitReceipts(entry.ReceiptNumbers)).NotTo(ContainElement(payment.ReceiptNo))
			Expect(ledger.SplitReceipts(entry.DeletedReceiptNumbers)).To(ContainElement(payment.ReceiptNo))

			// the row survives soft deletion for audit
			Expect(entry.Payments).To(HaveLen(2))
			Expect(entry.Payments[0].Status).To(Equal("deleted"))
		})

		It("should reject deleting the same payment twice", func() {
			_, _, err := repo.DeletePayment(ctx, entryID, 0, "admin")
			Expect(err).NotTo(HaveOccurred())

			_, _, err = repo.DeletePayment(ctx, entryID, 0, "admin")
			Expect(err).To(Equal(apperrors.ErrPaymentDeleted))
		})

		It("should reject an out of range index", func() {
			_, _, err := repo.DeletePayment(ctx, entryID, 9, "admin")
			Expect(err).To(Equal(apperrors.ErrPaymentNotFound))
		})

		It("should never reuse the deleted receipt number", func() {
			_, deleted, err := repo.DeletePayment(ctx, entryID, 0, "admin")
			Expect(err).NotTo(HaveOccurred())

			entry, payment, err := repo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
				Amount: 10000, Date: yesterday, Mode: "cash",
			}, "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(payment.ReceiptNo).NotTo(Equal(deleted.ReceiptNo))
			assertConsistent(entry)
		})
	})

	Describe("EditPayment", func() {
		var entryID int64

		BeforeEach(func() {
			entryID = createEntry(100000, 1).ID
			_, _, err := repo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
				Amount: 10000, Date: yesterday, Mode: "cash",
			}, "admin")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should change the amount and reconcile, keeping the receipt number", func() {
			before, err := repo.GetEntry(ctx, entryID)
			Expect(err).NotTo(HaveOccurred())
			originalReceipt := before.Payments[0].ReceiptNo

			amount := int64(25000)
			entry, err := repo.EditPayment(ctx, entryID, 0, ledger.EditPaymentDTO{Amount: &amount}, "admin")

			Expect(err).NotTo(HaveOccurred())
			Expect(entry.ReceivedAmount).To(Equal(int64(25000)))
			Expect(entry.PendingAmount).To(Equal(int64(75000)))
			Expect(entry.Payments[0].ReceiptNo).To(Equal(originalReceipt))
			assertConsistent(entry)
		})

		It("should reject an edit that exceeds the total", func() {
			amount := int64(150000)
			_, err := repo.EditPayment(ctx, entryID, 0, ledger.EditPaymentDTO{Amount: &amount}, "admin")

			Expect(err).To(Equal(apperrors.ErrAmountExceedsPending))
		})

		It("should require proof when switching to a non cash mode", func() {
			mode := "upi"
			_, err := repo.EditPayment(ctx, entryID, 0, ledger.EditPaymentDTO{Mode: &mode}, "admin")

			Expect(err).To(Equal(apperrors.ErrProofRequired))
		})

		It("should write an update log row", func() {
			amount := int64(25000)
			_, err := repo.EditPayment(ctx, entryID, 0, ledger.EditPaymentDTO{Amount: &amount}, "admin")
			Expect(err).NotTo(HaveOccurred())

			var count int64
			err = db.Model(&SQLiteTransactionLog{}).
				Where("transaction_type = ?", txnlogDatamodel.TypeUpdatePayment).
				Count(&count).Error
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})
	})

	Describe("DeleteEntry", func() {
		It("should soft delete and then reject further mutations", func() {
			entryID := createEntry(100000, 1).ID

			Expect(repo.DeleteEntry(ctx, entryID, "admin")).To(Succeed())

			entry, err := repo.GetEntry(ctx, entryID)
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.EntryStatus).To(Equal(ledger.EntryStatusDeleted))

			_, _, err = repo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
				Amount: 10000, Date: yesterday, Mode: "cash",
			}, "admin")
			Expect(err).To(Equal(apperrors.ErrEntryDeleted))
		})

		It("should hide deleted entries from listings", func() {
			keep := createEntry(10000, 1)
			gone := createEntry(20000, 1)
			Expect(repo.DeleteEntry(ctx, gone.ID, "admin")).To(Succeed())

			entries, err := repo.ListEntries(ctx, ledger.EntryFilter{Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].ID).To(Equal(keep.ID))
		})
	})

	Describe("ListEntries", func() {
		It("should filter by settlement status", func() {
			createEntry(10000, 1)
			paid := createEntry(20000, 1)
			_, _, err := repo.RecordPayment(ctx, paid.ID, ledger.RecordPaymentDTO{
				Amount: 20000, Date: yesterday, Mode: "cash",
			}, "admin")
			Expect(err).NotTo(HaveOccurred())

			entries, err := repo.ListEntries(ctx, ledger.EntryFilter{Status: ledger.StatusFull, Limit: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].ID).To(Equal(paid.ID))
		})
	})
})
