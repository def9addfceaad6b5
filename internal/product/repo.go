package product

import (
	"context"

	"github.com/nanayawb/kentecart/internal/types/product"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *product.Product) error
	UpdateProduct(ctx context.Context, p *product.Product) error
	FindProductByID(ctx context.Context, id int64) (*product.Product, error)
	ListProducts(ctx context.Context, category string, activeOnly bool) ([]product.Product, error)
	SetProductActive(ctx context.Context, id int64, active bool) error
	AdjustStock(ctx context.Context, id int64, delta int) error
}
