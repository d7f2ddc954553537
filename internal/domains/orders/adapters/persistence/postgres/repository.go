package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/massagesobi/storefront/internal/domains/orders/domain"
	"github.com/massagesobi/storefront/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists the order ledger in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed ledger. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{})
	}
	return repo
}

// orderRecord maps the order aggregate to a relational table. The invoiced
// product lines are denormalized into array columns for audit.
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

// Create inserts a new ledger row; an existing reference is a conflict,
// never an upsert. References are minted once and never reused.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if order == nil {
		return errors.New("order is nil")
	}
	record := toRecord(order)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrDuplicateReference
		}
		return err
	}
	return nil
}

// GetByReference fetches one ledger row.
func (r *Repository) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Resolve transitions the row only while it is still pending. The
// conditional UPDATE doubles as the per-order lock: RowsAffected tells the
// caller whether it won the transition.
func (r *Repository) Resolve(ctx context.Context, reference string, to domain.Status, at time.Time) (*domain.Order, bool, error) {
	if err := r.ensureDB(); err != nil {
		return nil, false, err
	}
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("reference = ? AND status = ?", reference, string(domain.StatusPending)).
		Updates(map[string]any{"status": string(to), "resolved_at": at})
	if result.Error != nil {
		return nil, false, result.Error
	}
	order, err := r.GetByReference(ctx, reference)
	if err != nil {
		return nil, false, err
	}
	return order, result.RowsAffected == 1, nil
}

// ExpireStale bulk-expires pending orders older than the cutoff.
func (r *Repository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("status = ? AND created_at < ?", string(domain.StatusPending), cutoff).
		Updates(map[string]any{"status": string(domain.StatusExpired), "resolved_at": gorm.Expr("NOW()")})
	return result.RowsAffected, result.Error
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	record := orderRecord{
		Reference:     order.Reference,
		BeneficiaryID: order.BeneficiaryID,
		ProductID:     order.ProductID,
		AmountMinor:   order.AmountMinor,
		Currency:      order.Currency,
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
	}
	if !order.ResolvedAt.IsZero() {
		resolved := order.ResolvedAt
		record.ResolvedAt = &resolved
	}
	for _, line := range order.Lines {
		record.ProductNames = append(record.ProductNames, line.Name)
		record.ProductCounts = append(record.ProductCounts, line.Count)
		record.ProductPrices = append(record.ProductPrices, line.PriceMinor)
	}
	return record
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		Reference:     r.Reference,
		BeneficiaryID: r.BeneficiaryID,
		ProductID:     r.ProductID,
		AmountMinor:   r.AmountMinor,
		Currency:      r.Currency,
		Status:        domain.Status(r.Status),
		CreatedAt:     r.CreatedAt,
	}
	if r.ResolvedAt != nil {
		order.ResolvedAt = *r.ResolvedAt
	}
	for i := range r.ProductNames {
		line := domain.Line{Name: r.ProductNames[i]}
		if i < len(r.ProductCounts) {
			line.Count = r.ProductCounts[i]
		}
		if i < len(r.ProductPrices) {
			line.PriceMinor = r.ProductPrices[i]
		}
		order.Lines = append(order.Lines, line)
	}
	return order
}
