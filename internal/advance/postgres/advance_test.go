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
	"github.com/frahmantamala/donation-ledger/internal/advance"
	advancePostgres "github.com/frahmantamala/donation-ledger/internal/advance/postgres"
	paymentDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/payment"
	"github.com/frahmantamala/donation-ledger/internal/ledger"
	ledgerPostgres "github.com/frahmantamala/donation-ledger/internal/ledger/postgres"
	"github.com/frahmantamala/donation-ledger/internal/receipt"
	receiptPostgres "github.com/frahmantamala/donation-ledger/internal/receipt/postgres"
)

func TestAdvancePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Advance Postgres Suite")
}

// SQLite-compatible models for testing
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

type SQLiteAdvancePayment struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Amount    int64     `gorm:"column:amount;not null"`
	ReceiptNo string    `gorm:"column:receipt_no;not null;uniqueIndex"`
	Date      time.Time `gorm:"column:date"`
	CreatedBy string    `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (SQLiteAdvancePayment) TableName() string { return "advance_payments" }

type SQLiteAdvancePaymentUsage struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	EntryID   int64     `gorm:"column:entry_id;not null;index"`
	Amount    int64     `gorm:"column:amount;not null"`
	Date      time.Time `gorm:"column:date;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (SQLiteAdvancePaymentUsage) TableName() string { return "advance_payment_usages" }

var _ = Describe("Advance PostgreSQL Repository", func() {
	var (
		db         *gorm.DB
		repo       *advancePostgres.AdvanceRepository
		ledgerRepo *ledgerPostgres.LedgerRepository
		ctx        context.Context
	)

	const userID = int64(7)
	yesterday := time.Now().Add(-24 * time.Hour)

	createEntry := func(total int64) int64 {
		entry, err := ledgerRepo.CreateEntry(ctx, &ledger.Entry{
			UserID:      userID,
			Item:        "boli",
			Amount:      total,
			Quantity:    1,
			TotalAmount: total,
			EntryDate:   yesterday,
			CreatedBy:   "admin",
		})
		Expect(err).NotTo(HaveOccurred())
		return entry.ID
	}

	payEntry := func(entryID, amount int64) {
		_, _, err := ledgerRepo.RecordPayment(ctx, entryID, ledger.RecordPaymentDTO{
			Amount: amount, Date: yesterday, Mode: "cash",
		}, "admin")
		Expect(err).NotTo(HaveOccurred())
	}

	createAdvance := func(amount int64) *advance.AdvancePayment {
		created, err := repo.CreateAdvance(ctx, &advance.AdvancePayment{
			UserID:    userID,
			Amount:    amount,
			Date:      yesterday,
			CreatedBy: "admin",
		})
		Expect(err).NotTo(HaveOccurred())
		return created
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&SQLiteEntry{}, &SQLitePayment{}, &SQLiteCounter{},
			&SQLiteTransactionLog{}, &SQLiteAdvancePayment{}, &SQLiteAdvancePaymentUsage{},
		)
		Expect(err).NotTo(HaveOccurred())

		counters := receiptPostgres.NewCounterAllocator(db, receipt.NewPrefixes("SPDJMSJ", "SPDJMSJ-ADV", "SPDJMSJ-PO"))
		ledgerRepo = ledgerPostgres.NewLedgerRepository(db, counters)
		repo = advancePostgres.NewAdvanceRepository(db, counters, ledgerRepo)
		ctx = context.Background()
	})

	Describe("CreateAdvance", func() {
		It("should issue an advance receipt and credit the balance", func() {
			created := createAdvance(5000)

			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.ReceiptNo).To(Equal(receipt.FormatNumber("SPDJMSJ-ADV", yesterday.Year(), 1)))

			balance, err := repo.GetBalance(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(balance).To(Equal(int64(5000)))
		})

		It("should accumulate the balance across advances", func() {
			createAdvance(5000)
			createAdvance(2500)

			balance, err := repo.GetBalance(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(balance).To(Equal(int64(7500)))
		})
	})

	Describe("ApplyAdvance", func() {
		It("should consume only what the entry still needs", func() {
			createAdvance(5000)
			entryID := createEntry(100000)
			payEntry(entryID, 97000)

			result, err := repo.ApplyAdvance(ctx, entryID, userID, "admin")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.AppliedAmount).To(Equal(int64(3000)))
			Expect(result.NewBalance).To(Equal(int64(2000)))
			Expect(result.Entry.Status).To(Equal(ledger.StatusFull))
			Expect(result.Entry.PendingAmount).To(Equal(int64(0)))

			var usages []SQLiteAdvancePaymentUsage
			Expect(db.Find(&usages).Error).NotTo(HaveOccurred())
			Expect(usages).To(HaveLen(1))
			Expect(usages[0].Amount).To(Equal(int64(3000)))
			Expect(usages[0].EntryID).To(Equal(entryID))
		})

		It("should consume the whole balance when the entry needs more", func() {
			createAdvance(5000)
			entryID := createEntry(100000)

			result, err := repo.ApplyAdvance(ctx, entryID, userID, "admin")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.AppliedAmount).To(Equal(int64(5000)))
			Expect(result.NewBalance).To(Equal(int64(0)))
			Expect(result.Entry.Status).To(Equal(ledger.StatusPartial))
			Expect(result.Entry.PendingAmount).To(Equal(int64(95000)))
		})

		It("should record the application as an advance mode payment", func() {
			createAdvance(5000)
			entryID := createEntry(100000)

			result, err := repo.ApplyAdvance(ctx, entryID, userID, "admin")
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Entry.Payments).To(HaveLen(1))
			Expect(result.Entry.Payments[0].Mode).To(Equal(paymentDatamodel.ModeAdvance))
			Expect(result.Entry.Payments[0].Amount).To(Equal(int64(5000)))
			Expect(result.Entry.Payments[0].ReceiptNo).NotTo(BeEmpty())
		})

		It("should reject a user with no advance balance", func() {
			entryID := createEntry(100000)

			_, err := repo.ApplyAdvance(ctx, entryID, userID, "admin")

			Expect(err).To(Equal(apperrors.ErrNoAdvanceBalance))
		})

		It("should reject an entry with nothing pending", func() {
			createAdvance(5000)
			entryID := createEntry(10000)
			payEntry(entryID, 10000)

			_, err := repo.ApplyAdvance(ctx, entryID, userID, "admin")

			Expect(err).To(Equal(apperrors.ErrNothingPending))
		})

		It("should reject a deleted entry", func() {
			createAdvance(5000)
			entryID := createEntry(100000)
			Expect(ledgerRepo.DeleteEntry(ctx, entryID, "admin")).To(Succeed())

			_, err := repo.ApplyAdvance(ctx, entryID, userID, "admin")

			Expect(err).To(Equal(apperrors.ErrEntryDeleted))
		})

		It("should conserve credit across repeated applications", func() {
			createAdvance(5000)
			first := createEntry(3000)
			second := createEntry(3000)

			r1, err := repo.ApplyAdvance(ctx, first, userID, "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(r1.AppliedAmount).To(Equal(int64(3000)))

			r2, err := repo.ApplyAdvance(ctx, second, userID, "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(r2.AppliedAmount).To(Equal(int64(2000)))
			Expect(r2.NewBalance).To(Equal(int64(0)))

			balance, err := repo.GetBalance(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(balance).To(Equal(int64(0)))

			_, err = repo.ApplyAdvance(ctx, second, userID, "admin")
			Expect(err).To(Equal(apperrors.ErrNoAdvanceBalance))
		})
	})

	Describe("ListAdvances", func() {
		It("should list a user's advances newest first", func() {
			createAdvance(5000)
			createAdvance(2500)

			uid := userID
			advances, err := repo.ListAdvances(ctx, &uid, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(advances).To(HaveLen(2))
		})
	})

	Describe("ListUsages", func() {
		It("should list the usage rows for a user", func() {
			createAdvance(5000)
			entryID := createEntry(3000)
			_, err := repo.ApplyAdvance(ctx, entryID, userID, "admin")
			Expect(err).NotTo(HaveOccurred())

			usages, err := repo.ListUsages(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(usages).To(HaveLen(1))
			Expect(usages[0].Amount).To(Equal(int64(3000)))
		})
	})
})
