package services

import (
	"context"

	"github.com/example/catalogapi/internal/models"
)

// UserRepository is the user store used by AuthService.
type UserRepository interface {
	// Transaction runs fn against a repository bound to one store
	// transaction, committing when fn returns nil.
	Transaction(ctx context.Context, fn func(repo UserRepository) error) error

	EmailExists(ctx context.Context, email string) (bool, error)
	MobileExists(ctx context.Context, mobile string) (bool, error)
	// Create inserts the user. A uniqueness violation is reported as
	// ErrEmailExists or ErrMobileExists.
	Create(ctx context.Context, user *models.User) error
	// FindByEmail returns nil, nil when no user has the email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// CatalogRepository is the product store used by CatalogService.
type CatalogRepository interface {
	Transaction(ctx context.Context, fn func(repo CatalogRepository) error) error

	CreateProduct(ctx context.Context, product *models.Product) error
	// FindOrCreateAttribute returns the attribute named name, creating it when
	// absent. created reports whether this call inserted it.
	FindOrCreateAttribute(ctx context.Context, name string) (attr *models.DynamicAttribute, created bool, err error)
	CreateProductAttribute(ctx context.Context, pa *models.ProductAttribute) error

	ListProducts(ctx context.Context, q ListingQuery) ([]models.ProductListing, error)
	CountProducts(ctx context.Context, q ListingQuery) (int64, error)
}
