package storage

import (
	"context"
	"errors"

	"github.com/nanayawb/kentecart/internal/types/order"
	"github.com/nanayawb/kentecart/internal/types/product"
	"github.com/nanayawb/kentecart/internal/types/promo"
	"github.com/nanayawb/kentecart/internal/types/user"
)

// Sentinel errors shared by all implementations so services can classify
// failures without knowing the backing store.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrStockConflict means a stock guard rejected a decrement: the
	// requested quantity exceeded what was available at commit time.
	ErrStockConflict = errors.New("insufficient stock")
	// ErrPromoExhausted means the promo use counter hit its limit at
	// commit time.
	ErrPromoExhausted = errors.New("promo code exhausted")
	// ErrStatusConflict means a status guard rejected the change: the
	// order moved to another status between read and commit.
	ErrStatusConflict = errors.New("order status conflict")
)

// UserRepository handles staff accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByLogin(ctx context.Context, login string) (*user.User, error)
}

// ProductRepository handles the catalog.
type ProductRepository interface {
	CreateProduct(ctx context.Context, p *product.Product) error
	UpdateProduct(ctx context.Context, p *product.Product) error
	FindProductByID(ctx context.Context, id int64) (*product.Product, error)
	ListProducts(ctx context.Context, category string, activeOnly bool) ([]product.Product, error)
	SetProductActive(ctx context.Context, id int64, active bool) error
	AdjustStock(ctx context.Context, id int64, delta int) error
}

// OrderRepository handles orders. PlaceOrder, CancelOrder and
// UpdateOrderStatus run their multi-row writes (stock mutations, promo use
// counters, history appends) inside a single transaction: a failure partway
// leaves nothing behind.
type OrderRepository interface {
	PlaceOrder(ctx context.Context, o *order.Order) error
	FindOrderByNumber(ctx context.Context, number string) (*order.Order, error)
	FindOrderByReference(ctx context.Context, reference string) (*order.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]order.Order, error)
	ListOrders(ctx context.Context, status order.Status) ([]order.Order, error)
	CancelOrder(ctx context.Context, orderID int64, note string) error
	UpdateOrderStatus(ctx context.Context, orderID int64, st order.Status, note, tracking string) error
	SetPaymentReference(ctx context.Context, orderID int64, reference string) error
	// MarkOrderPaid flips payment_status to paid and status to confirmed in
	// one conditional update. It reports whether the update applied, which
	// is false when the order was already paid.
	MarkOrderPaid(ctx context.Context, reference string) (bool, error)
	MarkPaymentFailed(ctx context.Context, reference string) error
	ListAwaitingPayment(ctx context.Context) ([]order.Order, error)
}

// PromoRepository handles discount codes.
type PromoRepository interface {
	CreatePromo(ctx context.Context, p *promo.PromoCode) error
	UpdatePromo(ctx context.Context, p *promo.PromoCode) error
	FindPromoByCode(ctx context.Context, code string) (*promo.PromoCode, error)
	ListPromos(ctx context.Context) ([]promo.PromoCode, error)
}

// Storage aggregates all repositories.
type Storage interface {
	UserRepository
	ProductRepository
	OrderRepository
	PromoRepository

	Ping(ctx context.Context) error
	Close() error
}
