package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/catalogapi/internal/metrics"
	"github.com/example/catalogapi/internal/models"
	"github.com/example/catalogapi/internal/storage"
)

// CatalogService adds products and serves the filtered product listing.
type CatalogService struct {
	repo           CatalogRepository
	storage        storage.Storage
	maxUploadBytes int64
	log            *zap.Logger
	metrics        *metrics.Metrics
	now            func() time.Time
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo CatalogRepository, store storage.Storage, maxUploadBytes int64, log *zap.Logger, m *metrics.Metrics) *CatalogService {
	return &CatalogService{
		repo:           repo,
		storage:        store,
		maxUploadBytes: maxUploadBytes,
		log:            log,
		metrics:        m,
		now:            time.Now,
	}
}

// PageInfo is the pagination block of a listing response.
type PageInfo struct {
	CurrentPage   int   `json:"current_page"`
	TotalProducts int64 `json:"total_products"`
	TotalPages    int64 `json:"total_pages"`
	Limit         int   `json:"limit"`
}

// ProductPage is one page of the product listing.
type ProductPage struct {
	Products   []models.ProductListing
	Pagination PageInfo
}

// AddProduct validates the input, stores an uploaded image and inserts the
// product with its attributes in one transaction. Attributes are looked up by
// name and created on first use.
func (s *CatalogService) AddProduct(ctx context.Context, in ProductInput) (uuid.UUID, error) {
	p, err := ValidateProductInput(in, s.maxUploadBytes)
	if err != nil {
		return uuid.Nil, err
	}

	image := p.PhotoURL
	var stored string
	if p.Upload != nil {
		stored = s.uploadName(p.Extension)
		if err := s.storage.Save(ctx, stored, p.Upload.Body, p.ContentType); err != nil {
			s.log.Error("store product image", zap.String("name", stored), zap.Error(err))
			return uuid.Nil, upstream(err)
		}
		image = stored
	}

	product := &models.Product{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       image,
		Category:    p.Category,
	}

	var newAttributes int
	err = s.repo.Transaction(ctx, func(repo CatalogRepository) error {
		newAttributes = 0

		if err := repo.CreateProduct(ctx, product); err != nil {
			return err
		}

		for _, a := range p.Attributes {
			attr, created, err := repo.FindOrCreateAttribute(ctx, a.Name)
			if err != nil {
				return err
			}
			if created {
				newAttributes++
			}

			if err := repo.CreateProductAttribute(ctx, &models.ProductAttribute{
				ProductID:   product.ID,
				AttributeID: attr.ID,
				Value:       a.Value,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if stored != "" {
			if derr := s.storage.Delete(ctx, stored); derr != nil {
				s.log.Warn("remove orphaned product image", zap.String("name", stored), zap.Error(derr))
			}
		}
		return uuid.Nil, wrapStoreError(s.log, "add product", err)
	}

	s.metrics.ProductCreated(newAttributes)
	s.log.Info("product added",
		zap.String("product_id", product.ID.String()),
		zap.String("created_by", in.CreatedBy.String()),
		zap.Int("attributes", len(p.Attributes)),
		zap.Int("new_attributes", newAttributes),
	)
	return product.ID, nil
}

// ListProducts returns one page of products matching params. The total
// counts products matching the same filters.
func (s *CatalogService) ListProducts(ctx context.Context, params ListParams) (ProductPage, error) {
	q := BuildListingQuery(params)

	products, err := s.repo.ListProducts(ctx, q)
	if err != nil {
		return ProductPage{}, wrapStoreError(s.log, "list products", err)
	}

	total, err := s.repo.CountProducts(ctx, q)
	if err != nil {
		return ProductPage{}, wrapStoreError(s.log, "count products", err)
	}

	if products == nil {
		products = []models.ProductListing{}
	}
	for i := range products {
		products[i].ImageURL = s.ImageURL(products[i].Image)
	}

	pg := normalizePage(params.Page)

	return ProductPage{
		Products: products,
		Pagination: PageInfo{
			CurrentPage:   pg.Page,
			TotalProducts: total,
			TotalPages:    pg.TotalPages(total),
			Limit:         pg.Limit,
		},
	}, nil
}

// ImageURL resolves a stored image reference. External URLs are returned
// unchanged.
func (s *CatalogService) ImageURL(image string) string {
	if image == "" || strings.Contains(image, "://") || s.storage == nil {
		return image
	}
	return s.storage.URL(image)
}

// uploadName is "<unix millis>-<random><ext>".
func (s *CatalogService) uploadName(ext string) string {
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString()[:8], ext)
}
