package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/timmy/vismatch/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRecord is the products table row. Position keeps the catalog order stable.
type ProductRecord struct {
	ID          string             `gorm:"type:varchar(64);primaryKey"`
	Position    int                `gorm:"index;not null"`
	Name        string             `gorm:"type:varchar(255);not null"`
	Category    string             `gorm:"type:varchar(64);index;not null"`
	Brand       string             `gorm:"type:varchar(128)"`
	Description string             `gorm:"type:text"`
	ImageURL    string             `gorm:"type:text"`
	Price       decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	Features    domain.StringArray `gorm:"type:text"`
}

// TableName specifies the table name for ProductRecord.
func (ProductRecord) TableName() string {
	return "products"
}

func toRecord(p domain.Product, position int) ProductRecord {
	return ProductRecord{
		ID:          p.ID,
		Position:    position,
		Name:        p.Name,
		Category:    p.Category,
		Brand:       p.Brand,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       p.Price,
		Features:    domain.StringArray(p.Features),
	}
}

func (r *ProductRecord) toDomain() domain.Product {
	return domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Brand:       r.Brand,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Price:       r.Price,
		Features:    []string(r.Features),
	}
}

// ProductRepository reads and writes catalog products.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListAll returns every product in catalog order.
func (r *ProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	var records []ProductRecord
	if err := r.db.WithContext(ctx).Order("position ASC, id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, nil
}

// UpsertAll makes the stored catalog match products in one transaction.
// Rows are upserted by id, the slice order becomes the stored position, and rows
// whose id is not in products are deleted.
//
// Parameters:
//   - ctx: context for cancellation
//   - products: the full catalog, in display order
//
// Returns:
//   - error: nil on success, otherwise the wrapped database error
func (r *ProductRepository) UpsertAll(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	records := make([]ProductRecord, 0, len(products))
	ids := make([]string, 0, len(products))
	for i, p := range products {
		records = append(records, toRecord(p, i))
		ids = append(ids, p.ID)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id NOT IN ?", ids).Delete(&ProductRecord{}).Error; err != nil {
			return fmt.Errorf("failed to prune stale products: %w", err)
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(records, 100).Error
		if err != nil {
			return fmt.Errorf("failed to upsert products: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored products.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ProductRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
