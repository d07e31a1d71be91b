package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/example/catalogapi/internal/models"
)

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	mobiles map[string]bool
	err     error
	created int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*models.User{}, mobiles: map[string]bool{}}
}

func (f *fakeUsers) Transaction(ctx context.Context, fn func(repo UserRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f)
}

func (f *fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUsers) MobileExists(ctx context.Context, mobile string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.mobiles[mobile], nil
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error {
	if f.err != nil {
		return f.err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	u := *user
	f.byEmail[u.Email] = &u
	f.mobiles[u.Mobile] = true
	f.created++
	return nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// fakeCatalog rolls its state back when a transaction function fails.
type fakeCatalog struct {
	products []*models.Product
	attrs    map[string]*models.DynamicAttribute
	links    []models.ProductAttribute
	linkErr  error

	rows      []models.ProductListing
	total     int64
	listErr   error
	countErr  error
	lastQuery ListingQuery
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{attrs: map[string]*models.DynamicAttribute{}}
}

func (f *fakeCatalog) Transaction(ctx context.Context, fn func(repo CatalogRepository) error) error {
	products, links := len(f.products), len(f.links)
	attrs := make(map[string]*models.DynamicAttribute, len(f.attrs))
	for k, v := range f.attrs {
		attrs[k] = v
	}

	if err := fn(f); err != nil {
		f.products = f.products[:products]
		f.links = f.links[:links]
		f.attrs = attrs
		return err
	}
	return nil
}

func (f *fakeCatalog) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.products = append(f.products, product)
	return nil
}

func (f *fakeCatalog) FindOrCreateAttribute(ctx context.Context, name string) (*models.DynamicAttribute, bool, error) {
	if a, ok := f.attrs[name]; ok {
		return a, false, nil
	}
	a := &models.DynamicAttribute{Name: name}
	a.ID = uuid.New()
	f.attrs[name] = a
	return a, true, nil
}

func (f *fakeCatalog) CreateProductAttribute(ctx context.Context, pa *models.ProductAttribute) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	f.links = append(f.links, *pa)
	return nil
}

func (f *fakeCatalog) ListProducts(ctx context.Context, q ListingQuery) ([]models.ProductListing, error) {
	f.lastQuery = q
	return f.rows, f.listErr
}

func (f *fakeCatalog) CountProducts(ctx context.Context, q ListingQuery) (int64, error) {
	return f.total, f.countErr
}

type memStorage struct {
	files   map[string][]byte
	types   map[string]string
	deleted []string
	saveErr error
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStorage) Save(ctx context.Context, name string, r io.Reader, contentType string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[name] = b
	m.types[name] = contentType
	return nil
}

func (m *memStorage) Delete(ctx context.Context, name string) error {
	delete(m.files, name)
	m.deleted = append(m.deleted, name)
	return nil
}

func (m *memStorage) URL(name string) string {
	return "/uploads/" + name
}

var errStore = errors.New("connection refused")

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00"), make([]byte, 32)...)
	jpegBytes = append([]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00"), make([]byte, 32)...)
	gifBytes  = append([]byte("GIF89a\x01\x00\x01\x00\x80\x00\x00"), make([]byte, 32)...)
)

func upload(name string, body []byte) *ImageUpload {
	return &ImageUpload{Filename: name, Size: int64(len(body)), Body: bytes.NewReader(body)}
}
