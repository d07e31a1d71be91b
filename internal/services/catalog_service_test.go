package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/catalogapi/internal/models"
	"github.com/example/catalogapi/internal/utils"
)

func newCatalog(repo CatalogRepository, store *memStorage) *CatalogService {
	s := NewCatalogService(repo, store, 0, zap.NewNop(), nil)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestAddProduct_CreatesAttributesOnFirstUse(t *testing.T) {
	t.Parallel()

	repo := newFakeCatalog()
	s := newCatalog(repo, newMemStorage())
	ctx := context.Background()

	in := validProduct()
	in.Attributes = []AttributeInput{{Name: "color", Value: "red"}, {Name: "size", Value: "M"}}

	id, err := s.AddProduct(ctx, in)
	require.NoError(t, err)
	require.Len(t, repo.products, 1)
	assert.Equal(t, id, repo.products[0].ID)
	assert.Equal(t, "https://cdn.example.com/lamp.jpg", repo.products[0].Image)
	assert.Len(t, repo.attrs, 2)
	assert.Len(t, repo.links, 2)
	for _, l := range repo.links {
		assert.Equal(t, id, l.ProductID)
	}

	in.Attributes = []AttributeInput{{Name: "color", Value: "blue"}, {Name: "weight", Value: "2kg"}}
	second, err := s.AddProduct(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, id, second)
	assert.Len(t, repo.attrs, 3, "color is reused")
	assert.Len(t, repo.links, 4)
	assert.Equal(t, repo.attrs["color"].ID, repo.links[2].AttributeID)
}

func TestAddProduct_StoresUpload(t *testing.T) {
	t.Parallel()

	repo := newFakeCatalog()
	store := newMemStorage()
	s := newCatalog(repo, store)

	in := validProduct()
	in.Upload = upload("lamp.png", pngBytes)

	_, err := s.AddProduct(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, store.files, 1)
	name := repo.products[0].Image
	assert.Regexp(t, regexp.MustCompile(`^1700000000000-[0-9a-f]{8}\.png$`), name)
	assert.Equal(t, pngBytes, store.files[name])
	assert.Equal(t, "image/png", store.types[name])
}

func TestAddProduct_RollsBackAndRemovesUpload(t *testing.T) {
	t.Parallel()

	repo := newFakeCatalog()
	repo.linkErr = errStore
	store := newMemStorage()
	s := newCatalog(repo, store)

	in := validProduct()
	in.Upload = upload("lamp.png", pngBytes)

	id, err := s.AddProduct(context.Background(), in)
	assert.Equal(t, uuid.Nil, id)
	assert.ErrorIs(t, err, ErrUpstream)

	assert.Empty(t, repo.products)
	assert.Empty(t, repo.attrs)
	assert.Empty(t, store.files)
	assert.Len(t, store.deleted, 1)
}

func TestAddProduct_InvalidInputTouchesNothing(t *testing.T) {
	t.Parallel()

	repo := newFakeCatalog()
	store := newMemStorage()
	s := newCatalog(repo, store)

	in := validProduct()
	in.Upload = upload("lamp.png", gifBytes)

	_, err := s.AddProduct(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidFileType)
	assert.Empty(t, repo.products)
	assert.Empty(t, store.files)
}

func TestAddProduct_StorageFailure(t *testing.T) {
	t.Parallel()

	repo := newFakeCatalog()
	store := newMemStorage()
	store.saveErr = errStore
	s := newCatalog(repo, store)

	in := validProduct()
	in.Upload = upload("lamp.png", pngBytes)

	_, err := s.AddProduct(context.Background(), in)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Empty(t, repo.products)
}

func TestListProducts_Page(t *testing.T) {
	t.Parallel()

	repo := newFakeCatalog()
	repo.rows = []models.ProductListing{
		{Name: "Lamp", Image: "1700000000000-abcdef12.png"},
		{Name: "Chair", Image: "https://cdn.example.com/chair.jpg"},
	}
	repo.total = 23
	s := newCatalog(repo, newMemStorage())

	params := ListParams{Category: "home", Page: utils.NewPagination("3", "10")}
	page, err := s.ListProducts(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, PageInfo{CurrentPage: 3, TotalProducts: 23, TotalPages: 3, Limit: 10}, page.Pagination)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "/uploads/1700000000000-abcdef12.png", page.Products[0].ImageURL)
	assert.Equal(t, "https://cdn.example.com/chair.jpg", page.Products[1].ImageURL)
	assert.Equal(t, BuildListingQuery(params), repo.lastQuery)
}

func TestListProducts_EmptyWithDefaults(t *testing.T) {
	t.Parallel()

	s := newCatalog(newFakeCatalog(), newMemStorage())

	page, err := s.ListProducts(context.Background(), ListParams{})
	require.NoError(t, err)

	assert.NotNil(t, page.Products)
	assert.Empty(t, page.Products)
	assert.Equal(t, PageInfo{CurrentPage: 1, TotalProducts: 0, TotalPages: 0, Limit: 10}, page.Pagination)
}

func TestListProducts_StoreFailure(t *testing.T) {
	t.Parallel()

	repo := newFakeCatalog()
	repo.countErr = errStore
	s := newCatalog(repo, newMemStorage())

	_, err := s.ListProducts(context.Background(), ListParams{})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestAddProduct_LogsCaller(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	s := NewCatalogService(newFakeCatalog(), newMemStorage(), 0, zap.New(core), nil)

	caller := uuid.New()
	in := validProduct()
	in.CreatedBy = caller

	id, err := s.AddProduct(context.Background(), in)
	require.NoError(t, err)

	entries := logs.FilterMessage("product added").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, id.String(), fields["product_id"])
	assert.Equal(t, caller.String(), fields["created_by"])
}
