package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/catalogapi/internal/models"
	"github.com/example/catalogapi/internal/services"
)

// ProductRepository stores products and their dynamic attributes with gorm.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository constructs a ProductRepository.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Transaction runs fn inside a database transaction.
func (r *ProductRepository) Transaction(ctx context.Context, fn func(repo services.CatalogRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ProductRepository{db: tx})
	})
}

// CreateProduct inserts the product row only.
func (r *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

// FindOrCreateAttribute looks the attribute up by name and inserts it when
// missing. The insert ignores a conflicting concurrent insert and re-reads
// the winner's row, so one name never maps to two attributes.
func (r *ProductRepository) FindOrCreateAttribute(ctx context.Context, name string) (*models.DynamicAttribute, bool, error) {
	db := r.db.WithContext(ctx)

	attr, err := r.attributeByName(db, name)
	if err != nil || attr != nil {
		return attr, false, err
	}

	created := &models.DynamicAttribute{Name: name}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(created)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return created, true, nil
	}

	attr, err = r.attributeByName(db, name)
	if err != nil {
		return nil, false, err
	}
	if attr == nil {
		return nil, false, gorm.ErrRecordNotFound
	}
	return attr, false, nil
}

func (r *ProductRepository) attributeByName(db *gorm.DB, name string) (*models.DynamicAttribute, error) {
	var attr models.DynamicAttribute
	if err := db.Where("name = ?", name).Take(&attr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attr, nil
}

// CreateProductAttribute links a product to an attribute.
func (r *ProductRepository) CreateProductAttribute(ctx context.Context, pa *models.ProductAttribute) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(pa).Error
}

// ListProducts runs the listing query built by services.BuildListingQuery.
func (r *ProductRepository) ListProducts(ctx context.Context, q services.ListingQuery) ([]models.ProductListing, error) {
	var rows []models.ProductListing
	if err := r.db.WithContext(ctx).Raw(q.SQL, q.Args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountProducts runs the count query matching ListProducts.
func (r *ProductRepository) CountProducts(ctx context.Context, q services.ListingQuery) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Raw(q.CountSQL, q.CountArgs...).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
