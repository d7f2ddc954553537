package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace
// adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&grantRecord{},
		&userRecord{},
	)
}

// Order ledger schema mirrors the orders Postgres adapter.
type orderRecord struct {
	Reference     string         `gorm:"primaryKey;column:reference;size:128"`
	BeneficiaryID int64          `gorm:"column:beneficiary_id;index"`
	ProductID     int64          `gorm:"column:product_id"`
	AmountMinor   int64          `gorm:"column:amount_minor"`
	Currency      string         `gorm:"column:currency;size:8"`
	ProductNames  pq.StringArray `gorm:"column:product_names;type:text[]"`
	ProductCounts pq.Int64Array  `gorm:"column:product_counts;type:bigint[]"`
	ProductPrices pq.Int64Array  `gorm:"column:product_prices;type:bigint[]"`
	Status        string         `gorm:"column:status;type:varchar(16);index"`
	CreatedAt     time.Time      `gorm:"column:created_at;index"`
	ResolvedAt    *time.Time     `gorm:"column:resolved_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Access grant schema mirrors the grants Postgres adapter.
type grantRecord struct {
	ID                int64      `gorm:"primaryKey;autoIncrement;column:id"`
	BeneficiaryID     int64      `gorm:"column:beneficiary_id;index"`
	OrderReference    string     `gorm:"column:order_reference;uniqueIndex;size:128"`
	Token             string     `gorm:"column:token;size:512"`
	CapacityRemaining int        `gorm:"column:capacity_remaining"`
	Used              bool       `gorm:"column:used"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	RedeemedAt        *time.Time `gorm:"column:redeemed_at"`
}

func (grantRecord) TableName() string { return "access_grants" }

// Beneficiary schema mirrors the users Postgres adapter.
type userRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	LastActivity time.Time `gorm:"column:last_activity;index"`
	HasAccess    bool      `gorm:"column:has_access"`
}

func (userRecord) TableName() string { return "users" }
