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

	txnlogDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/txnlog"
	"github.com/frahmantamala/donation-ledger/internal/txnlog"
	txnlogPostgres "github.com/frahmantamala/donation-ledger/internal/txnlog/postgres"
)

func TestTxnlogPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Txnlog Postgres Suite")
}

// SQLite-compatible log model for testing
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

var _ = Describe("Txnlog PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo *txnlogPostgres.TxnLogRepository
		ctx  context.Context
	)

	yesterday := time.Now().Add(-24 * time.Hour)

	appendRow := func(entryID *int64, userID int64, txType string, amount int64, date time.Time) {
		err := db.Transaction(func(tx *gorm.DB) error {
			return txnlogPostgres.AppendInTx(tx, &txnlogDatamodel.TransactionLog{
				EntryID:         entryID,
				UserID:          userID,
				TransactionType: txType,
				Amount:          amount,
				Description:     "test row",
				Date:            date,
			})
		})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&SQLiteTransactionLog{})).To(Succeed())

		repo = txnlogPostgres.NewTxnLogRepository(db)
		ctx = context.Background()
	})

	It("should list rows newest first", func() {
		appendRow(nil, 7, txnlogDatamodel.TypeCredit, 100000, yesterday)
		appendRow(nil, 7, txnlogDatamodel.TypeDebit, 10000, yesterday)

		rows, err := repo.List(ctx, txnlog.Filter{Limit: 20})

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].TransactionType).To(Equal(txnlogDatamodel.TypeDebit))
		Expect(rows[1].TransactionType).To(Equal(txnlogDatamodel.TypeCredit))
	})

	It("should filter by entry", func() {
		entryID := int64(42)
		appendRow(&entryID, 7, txnlogDatamodel.TypeDebit, 10000, yesterday)
		appendRow(nil, 7, txnlogDatamodel.TypeCredit, 5000, yesterday)

		rows, err := repo.List(ctx, txnlog.Filter{EntryID: &entryID, Limit: 20})

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(*rows[0].EntryID).To(Equal(entryID))
	})

	It("should filter by user and date range", func() {
		weekAgo := time.Now().Add(-7 * 24 * time.Hour)
		appendRow(nil, 7, txnlogDatamodel.TypeCredit, 5000, weekAgo)
		appendRow(nil, 7, txnlogDatamodel.TypeCredit, 6000, yesterday)
		appendRow(nil, 8, txnlogDatamodel.TypeCredit, 7000, yesterday)

		userID := int64(7)
		from := time.Now().Add(-48 * time.Hour)
		rows, err := repo.List(ctx, txnlog.Filter{UserID: &userID, From: &from, Limit: 20})

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Amount).To(Equal(int64(6000)))
	})
})
