package counter

// Counter categories. Receipt sequences are per category per year; the
// entry serial sequence is global, stored under year 0.
const (
	CategoryBoli        = "boli"
	CategoryAdvance     = "advance"
	CategoryOutstanding = "previous_outstanding"
	CategoryEntrySerial = "entry_serial"
)

// Counter is a dedicated counter row, incremented with a single atomic
// upsert. Reading max+1 from issued numbers would race under concurrency.
type Counter struct {
	ID       int64  `gorm:"primaryKey"`
	Category string `gorm:"column:category;not null;uniqueIndex:idx_counters_category_year"`
	Year     int    `gorm:"column:year;not null;uniqueIndex:idx_counters_category_year"`
	Value    int64  `gorm:"column:value;not null;default:0"`
}

func (Counter) TableName() string {
	return "receipt_counters"
}
