package product

import (
	"context"
	"testing"

	"github.com/nanayawb/kentecart/internal/storage"
	"github.com/nanayawb/kentecart/internal/types/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProductRepo struct {
	products map[int64]*product.Product
	nextID   int64
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[int64]*product.Product)}
}

func (r *stubProductRepo) CreateProduct(ctx context.Context, p *product.Product) error {
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) UpdateProduct(ctx context.Context, p *product.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return storage.ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindProductByID(ctx context.Context, id int64) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return p, nil
}

func (r *stubProductRepo) ListProducts(ctx context.Context, category string, activeOnly bool) ([]product.Product, error) {
	var out []product.Product
	for _, p := range r.products {
		if category != "" && p.Category != category {
			continue
		}
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductRepo) SetProductActive(ctx context.Context, id int64, active bool) error {
	p, ok := r.products[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Active = active
	return nil
}

func (r *stubProductRepo) AdjustStock(ctx context.Context, id int64, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return storage.ErrNotFound
	}
	if p.Stock+delta < 0 {
		return storage.ErrStockConflict
	}
	p.Stock += delta
	return nil
}

func seed(t *testing.T, svc *Service) *product.Product {
	t.Helper()
	p := &product.Product{
		Name:     "Adinkra Maxi Dress",
		Category: "dresses",
		Price:    120,
		Stock:    8,
		Sizes:    []string{"S", "M"},
	}
	require.NoError(t, svc.Create(context.Background(), p))
	return p
}

func TestCreateProduct(t *testing.T) {
	svc := NewService(newStubProductRepo())
	p := seed(t, svc)

	assert.NotZero(t, p.ID)
	assert.True(t, p.Active)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestCreateProductInvalid(t *testing.T) {
	svc := NewService(newStubProductRepo())

	err := svc.Create(context.Background(), &product.Product{Name: "no price", Category: "dresses"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.Create(context.Background(), &product.Product{Category: "dresses", Price: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetHidesInactive(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewService(repo)
	p := seed(t, svc)

	require.NoError(t, svc.Deactivate(context.Background(), p.ID))

	_, err := svc.Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// soft delete: the row survives for order history
	all, err := svc.ListAll(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.False(t, all[0].Active)
}

func TestListFiltersBySize(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewService(repo)
	seed(t, svc)
	require.NoError(t, svc.Create(context.Background(), &product.Product{
		Name: "Batakari Smock", Category: "tops", Price: 90, Stock: 3, Sizes: []string{"L", "XL"},
	}))

	large, err := svc.List(context.Background(), "", "XL")
	require.NoError(t, err)
	require.Len(t, large, 1)
	assert.Equal(t, "Batakari Smock", large[0].Name)
}

func TestAdjustStock(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewService(repo)
	p := seed(t, svc)

	require.NoError(t, svc.AdjustStock(context.Background(), p.ID, -3))
	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	err = svc.AdjustStock(context.Background(), p.ID, -10)
	assert.ErrorIs(t, err, ErrStockConflict)

	err = svc.AdjustStock(context.Background(), 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
