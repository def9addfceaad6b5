package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nanayawb/kentecart/internal/storage"
	"github.com/nanayawb/kentecart/internal/types/order"
)

const (
	PayGateway        = "paystack"
	PayCashOnDelivery = "cod"
)

var (
	ErrProductUnavailable = errors.New("product not available")
	ErrSizeUnavailable    = errors.New("size not offered for product")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOrderNotFound      = errors.New("order not found")
	ErrNotOwner           = errors.New("email does not match order")
	ErrNotCancellable     = errors.New("order can no longer be cancelled")
	ErrInvalidStatus      = errors.New("unknown order status")
	ErrBadTransition      = errors.New("status transition not allowed")
)

// ValidationError carries per-field messages for the 400 envelope.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

type ItemRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

type CreateRequest struct {
	CustomerName   string        `json:"customer_name"`
	CustomerEmail  string        `json:"customer_email"`
	CustomerPhone  string        `json:"customer_phone"`
	Region         string        `json:"region"`
	Address        string        `json:"address"`
	ShippingMethod string        `json:"shipping_method"`
	PaymentMethod  string        `json:"payment_method"`
	PromoCode      string        `json:"promo_code"`
	Items          []ItemRequest `json:"items"`
}

func (r *CreateRequest) validate() error {
	var fields []string
	if strings.TrimSpace(r.CustomerName) == "" {
		fields = append(fields, "customer_name is required")
	}
	if !strings.Contains(r.CustomerEmail, "@") {
		fields = append(fields, "customer_email is invalid")
	}
	if strings.TrimSpace(r.Region) == "" {
		fields = append(fields, "region is required")
	}
	if strings.TrimSpace(r.Address) == "" {
		fields = append(fields, "address is required")
	}
	if r.PaymentMethod != PayGateway && r.PaymentMethod != PayCashOnDelivery {
		fields = append(fields, "payment_method must be paystack or cod")
	}
	if len(r.Items) == 0 {
		fields = append(fields, "at least one item is required")
	}
	for i, it := range r.Items {
		if it.Quantity < 1 {
			fields = append(fields, fmt.Sprintf("items[%d]: quantity must be at least 1", i))
		}
		if strings.TrimSpace(it.Size) == "" {
			fields = append(fields, fmt.Sprintf("items[%d]: size is required", i))
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

type Service struct {
	repo     OrderRepository
	products ProductReader
	promos   PromoResolver
}

func NewService(repo OrderRepository, products ProductReader, promos PromoResolver) *Service {
	return &Service{repo: repo, products: products, promos: promos}
}

// Place runs guest checkout. Items are validated and priced against the
// live catalog, then handed to the repository which decrements stock and
// persists everything in one transaction. Stock is reserved here, at
// placement, not at payment time: an unpaid order holds its units until it
// is cancelled.
func (s *Service) Place(ctx context.Context, req *CreateRequest) (*order.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	shipping, err := ShippingCost(req.ShippingMethod, req.Region)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"shipping_method must be standard or express"}}
	}

	var subtotal float64
	items := make([]order.Item, 0, len(req.Items))
	for _, ir := range req.Items {
		p, err := s.products.FindProductByID(ctx, ir.ProductID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("product %d: %w", ir.ProductID, ErrProductUnavailable)
			}
			return nil, err
		}
		if !p.Active {
			return nil, fmt.Errorf("product %d: %w", ir.ProductID, ErrProductUnavailable)
		}
		if !p.HasSize(ir.Size) {
			return nil, fmt.Errorf("product %d size %s: %w", ir.ProductID, ir.Size, ErrSizeUnavailable)
		}
		if ir.Quantity > p.Stock {
			return nil, fmt.Errorf("product %d: %w", ir.ProductID, ErrInsufficientStock)
		}
		items = append(items, order.Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Size:      ir.Size,
			Quantity:  ir.Quantity,
		})
		subtotal += p.Price * float64(ir.Quantity)
	}

	var discount float64
	promoCode := strings.ToUpper(strings.TrimSpace(req.PromoCode))
	if promoCode != "" {
		discount, err = s.promos.Resolve(ctx, promoCode, subtotal)
		if err != nil {
			return nil, err
		}
	}

	// No VAT is applied at the moment.
	const tax = 0.0

	o := &order.Order{
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerEmail:  strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:  strings.TrimSpace(req.CustomerPhone),
		Region:         strings.TrimSpace(req.Region),
		Address:        strings.TrimSpace(req.Address),
		ShippingMethod: req.ShippingMethod,
		PaymentMethod:  req.PaymentMethod,
		Items:          items,
		Subtotal:       subtotal,
		ShippingCost:   shipping,
		Tax:            tax,
		Discount:       discount,
		Total:          subtotal + shipping + tax - discount,
		PromoCode:      promoCode,
		Status:         order.StatusPending,
		PaymentStatus:  order.PaymentPending,
		CreatedAt:      time.Now().UTC(),
	}
	o.UpdatedAt = o.CreatedAt

	if err := s.repo.PlaceOrder(ctx, o); err != nil {
		switch {
		case errors.Is(err, storage.ErrStockConflict):
			return nil, ErrInsufficientStock
		case errors.Is(err, storage.ErrPromoExhausted):
			return nil, fmt.Errorf("promo %s: %w", promoCode, storage.ErrPromoExhausted)
		}
		return nil, err
	}
	return o, nil
}

// Track returns an order by number when the email matches. A mismatch is
// reported as not found so the endpoint does not confirm order numbers to
// strangers.
func (s *Service) Track(ctx context.Context, number, email string) (*order.Order, error) {
	o, err := s.findOwned(ctx, number, email)
	if errors.Is(err, ErrNotOwner) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (s *Service) findOwned(ctx context.Context, number, email string) (*order.Order, error) {
	o, err := s.repo.FindOrderByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !strings.EqualFold(o.CustomerEmail, strings.TrimSpace(email)) {
		return nil, ErrNotOwner
	}
	return o, nil
}

func (s *Service) ListByEmail(ctx context.Context, email string) ([]order.Order, error) {
	return s.repo.ListOrdersByEmail(ctx, strings.TrimSpace(email))
}

// Cancel is the customer-facing cancellation: email-checked, only from
// pending or confirmed, restores stock for every line.
func (s *Service) Cancel(ctx context.Context, number, email string) (*order.Order, error) {
	o, err := s.findOwned(ctx, number, email)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusPending && o.Status != order.StatusConfirmed {
		return nil, ErrNotCancellable
	}
	if err := s.repo.CancelOrder(ctx, o.ID, "cancelled by customer"); err != nil {
		if errors.Is(err, storage.ErrStatusConflict) {
			return nil, ErrNotCancellable
		}
		return nil, err
	}
	return s.repo.FindOrderByNumber(ctx, number)
}

// UpdateStatus applies a staff status change. Transitions are forward-only;
// a cancellation through this path restores stock the same way a customer
// cancellation does.
func (s *Service) UpdateStatus(ctx context.Context, number string, st order.Status, note, tracking string) (*order.Order, error) {
	if !order.ValidStatus(st) {
		return nil, ErrInvalidStatus
	}
	o, err := s.repo.FindOrderByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !order.CanTransition(o.Status, st) {
		return nil, fmt.Errorf("%s -> %s: %w", o.Status, st, ErrBadTransition)
	}
	if st == order.StatusCancelled {
		err = s.repo.CancelOrder(ctx, o.ID, note)
	} else {
		err = s.repo.UpdateOrderStatus(ctx, o.ID, st, note, tracking)
	}
	if err != nil {
		if errors.Is(err, storage.ErrStatusConflict) {
			return nil, fmt.Errorf("%s -> %s: %w", o.Status, st, ErrBadTransition)
		}
		return nil, err
	}
	return s.repo.FindOrderByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, status order.Status) ([]order.Order, error) {
	if status != "" && !order.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.repo.ListOrders(ctx, status)
}
