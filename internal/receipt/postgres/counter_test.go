package postgres_test

import (
	"context"
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	counterDatamodel "github.com/frahmantamala/donation-ledger/internal/core/datamodel/counter"
	"github.com/frahmantamala/donation-ledger/internal/receipt"
	receiptPostgres "github.com/frahmantamala/donation-ledger/internal/receipt/postgres"
)

func TestReceiptPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Receipt Postgres Suite")
}

// SQLite-compatible counter model for testing
type SQLiteCounter struct {
	ID       int64  `gorm:"primaryKey"`
	Category string `gorm:"column:category;not null;uniqueIndex:idx_counters_category_year"`
	Year     int    `gorm:"column:year;not null;uniqueIndex:idx_counters_category_year"`
	Value    int64  `gorm:"column:value;not null;default:0"`
}

func (SQLiteCounter) TableName() string { return "receipt_counters" }

var _ = Describe("Counter Allocator", func() {
	var (
		db        *gorm.DB
		allocator *receiptPostgres.CounterAllocator
		ctx       context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&SQLiteCounter{})).To(Succeed())

		allocator = receiptPostgres.NewCounterAllocator(db, receipt.NewPrefixes("SPDJMSJ", "SPDJMSJ-ADV", "SPDJMSJ-PO"))
		ctx = context.Background()
	})

	Describe("Next", func() {
		It("should start each sequence at one", func() {
			number, err := allocator.Next(ctx, counterDatamodel.CategoryBoli, 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(number).To(Equal("SPDJMSJ-2025-00001"))
		})

		It("should issue unique gapless numbers in sequence", func() {
			seen := make(map[string]bool)
			for i := 1; i <= 1000; i++ {
				number, err := allocator.Next(ctx, counterDatamodel.CategoryBoli, 2025)
				Expect(err).NotTo(HaveOccurred())
				Expect(number).To(Equal(fmt.Sprintf("SPDJMSJ-2025-%05d", i)))
				Expect(seen[number]).To(BeFalse())
				seen[number] = true
			}
		})

		It("should keep categories independent", func() {
			boli, err := allocator.Next(ctx, counterDatamodel.CategoryBoli, 2025)
			Expect(err).NotTo(HaveOccurred())

			adv, err := allocator.Next(ctx, counterDatamodel.CategoryAdvance, 2025)
			Expect(err).NotTo(HaveOccurred())

			Expect(boli).To(Equal("SPDJMSJ-2025-00001"))
			Expect(adv).To(Equal("SPDJMSJ-ADV-2025-00001"))
		})

		It("should keep years independent", func() {
			_, err := allocator.Next(ctx, counterDatamodel.CategoryBoli, 2024)
			Expect(err).NotTo(HaveOccurred())

			number, err := allocator.Next(ctx, counterDatamodel.CategoryBoli, 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(number).To(Equal("SPDJMSJ-2025-00001"))
		})

		It("should reject a category without a prefix", func() {
			_, err := allocator.Next(ctx, "unknown", 2025)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("NextSerialInTx", func() {
		It("should advance the global serial from one", func() {
			err := db.Transaction(func(tx *gorm.DB) error {
				serial, err := allocator.NextSerialInTx(tx)
				Expect(err).NotTo(HaveOccurred())
				Expect(serial).To(Equal(int64(1)))

				serial, err = allocator.NextSerialInTx(tx)
				Expect(err).NotTo(HaveOccurred())
				Expect(serial).To(Equal(int64(2)))
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should not collide with receipt sequences", func() {
			_, err := allocator.Next(ctx, counterDatamodel.CategoryBoli, 2025)
			Expect(err).NotTo(HaveOccurred())

			err = db.Transaction(func(tx *gorm.DB) error {
				serial, err := allocator.NextSerialInTx(tx)
				Expect(err).NotTo(HaveOccurred())
				Expect(serial).To(Equal(int64(1)))
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
