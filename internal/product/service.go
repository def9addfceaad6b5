package product

import (
	"context"
	"errors"
	"time"

	"github.com/nanayawb/kentecart/internal/storage"
	"github.com/nanayawb/kentecart/internal/types/product"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrInvalidInput  = errors.New("invalid product")
	ErrStockConflict = errors.New("stock cannot go negative")
)

type Service struct {
	repo ProductRepository
}

func NewService(r ProductRepository) *Service {
	return &Service{repo: r}
}

func validate(p *product.Product) error {
	if p.Name == "" || p.Category == "" || p.Price <= 0 || p.Stock < 0 {
		return ErrInvalidInput
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *product.Product) error {
	if err := validate(p); err != nil {
		return err
	}
	now := time.Now().UTC()
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.repo.CreateProduct(ctx, p)
}

func (s *Service) Update(ctx context.Context, p *product.Product) error {
	if err := validate(p); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Get returns an active product; inactive products are invisible to the
// storefront.
func (s *Service) Get(ctx context.Context, id int64) (*product.Product, error) {
	p, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !p.Active {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, category, size string) ([]product.Product, error) {
	products, err := s.repo.ListProducts(ctx, category, true)
	if err != nil {
		return nil, err
	}
	if size == "" {
		return products, nil
	}
	filtered := products[:0]
	for _, p := range products {
		if p.HasSize(size) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *Service) ListAll(ctx context.Context, category string) ([]product.Product, error) {
	return s.repo.ListProducts(ctx, category, false)
}

// Deactivate is the soft delete: the row stays for order-item history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if err := s.repo.SetProductActive(ctx, id, false); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) error {
	err := s.repo.AdjustStock(ctx, id, delta)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrStockConflict):
		return ErrStockConflict
	}
	return err
}
