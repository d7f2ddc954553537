package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/massagesobi/storefront/internal/domains/grants/domain"
	"github.com/massagesobi/storefront/internal/domains/grants/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists access grants in PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed grant store.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&grantRecord{})
	}
	return repo
}

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

// Create inserts the grant; the unique order reference index turns a
// concurrent double-issue into ErrAlreadyIssued.
func (r *Repository) Create(ctx context.Context, grant *domain.AccessGrant) (*domain.AccessGrant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if err := grant.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(grant)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrAlreadyIssued
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByOrderReference loads the grant owned by the order, if any.
func (r *Repository) GetByOrderReference(ctx context.Context, reference string) (*domain.AccessGrant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record grantRecord
	if err := r.db.WithContext(ctx).First(&record, "order_reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres grant repository not configured")
	}
	return nil
}

func toRecord(grant *domain.AccessGrant) grantRecord {
	record := grantRecord{
		ID:                grant.ID,
		BeneficiaryID:     grant.BeneficiaryID,
		OrderReference:    grant.OrderReference,
		Token:             grant.Token,
		CapacityRemaining: grant.CapacityRemaining,
		Used:              grant.Used,
		CreatedAt:         grant.CreatedAt,
	}
	if !grant.RedeemedAt.IsZero() {
		redeemed := grant.RedeemedAt
		record.RedeemedAt = &redeemed
	}
	return record
}

func (r grantRecord) toDomain() *domain.AccessGrant {
	grant := &domain.AccessGrant{
		ID:                r.ID,
		BeneficiaryID:     r.BeneficiaryID,
		OrderReference:    r.OrderReference,
		Token:             r.Token,
		CapacityRemaining: r.CapacityRemaining,
		Used:              r.Used,
		CreatedAt:         r.CreatedAt,
	}
	if r.RedeemedAt != nil {
		grant.RedeemedAt = *r.RedeemedAt
	}
	return grant
}
