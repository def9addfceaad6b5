package order

import (
	"context"

	"github.com/nanayawb/kentecart/internal/types/order"
	"github.com/nanayawb/kentecart/internal/types/product"
)

type OrderRepository interface {
	PlaceOrder(ctx context.Context, o *order.Order) error
	FindOrderByNumber(ctx context.Context, number string) (*order.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]order.Order, error)
	ListOrders(ctx context.Context, status order.Status) ([]order.Order, error)
	CancelOrder(ctx context.Context, orderID int64, note string) error
	UpdateOrderStatus(ctx context.Context, orderID int64, st order.Status, note, tracking string) error
}

// ProductReader is the catalog view order placement validates against.
type ProductReader interface {
	FindProductByID(ctx context.Context, id int64) (*product.Product, error)
}

// PromoResolver turns a code plus subtotal into a discount.
type PromoResolver interface {
	Resolve(ctx context.Context, code string, subtotal float64) (float64, error)
}
