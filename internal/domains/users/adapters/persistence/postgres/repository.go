package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/massagesobi/storefront/internal/domains/users/domain"
	"github.com/massagesobi/storefront/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists beneficiaries in PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed beneficiary store.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&userRecord{})
	}
	return repo
}

type userRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	LastActivity time.Time `gorm:"column:last_activity;index"`
	HasAccess    bool      `gorm:"column:has_access"`
}

func (userRecord) TableName() string { return "users" }

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &domain.User{ID: record.ID, LastActivity: record.LastActivity, HasAccess: record.HasAccess}, nil
}

func (r *Repository) Touch(ctx context.Context, id int64, at time.Time) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	record := userRecord{ID: id, LastActivity: at}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{"last_activity": at}),
		}).Create(&record).Error
}

func (r *Repository) SetAccess(ctx context.Context, id int64, granted bool) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	record := userRecord{ID: id, HasAccess: granted}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{"has_access": granted}),
		}).Create(&record).Error
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}
