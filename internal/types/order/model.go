package order

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// transitions is the forward-only status machine. A status missing from the
// map is terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusProcessing, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusShipped, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Item is a snapshot of the product at placement time, not a live reference.
type Item struct {
	ID        int64   `db:"id" json:"-"`
	OrderID   int64   `db:"order_id" json:"-"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	Size      string  `db:"size" json:"size"`
	Quantity  int     `db:"quantity" json:"quantity"`
}

type HistoryEntry struct {
	ID        int64     `db:"id" json:"-"`
	OrderID   int64     `db:"order_id" json:"-"`
	Status    Status    `db:"status" json:"status"`
	Note      string    `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Order struct {
	ID               int64          `db:"id" json:"-"`
	Number           string         `db:"number" json:"number"`
	CustomerName     string         `db:"customer_name" json:"customer_name"`
	CustomerEmail    string         `db:"customer_email" json:"customer_email"`
	CustomerPhone    string         `db:"customer_phone" json:"customer_phone"`
	Region           string         `db:"region" json:"region"`
	Address          string         `db:"address" json:"address"`
	ShippingMethod   string         `db:"shipping_method" json:"shipping_method"`
	PaymentMethod    string         `db:"payment_method" json:"payment_method"`
	Items            []Item         `json:"items"`
	Subtotal         float64        `db:"subtotal" json:"subtotal"`
	ShippingCost     float64        `db:"shipping_cost" json:"shipping_cost"`
	Tax              float64        `db:"tax" json:"tax"`
	Discount         float64        `db:"discount" json:"discount"`
	Total            float64        `db:"total" json:"total"`
	PromoCode        string         `db:"promo_code" json:"promo_code,omitempty"`
	Status           Status         `db:"status" json:"status"`
	PaymentStatus    PaymentStatus  `db:"payment_status" json:"payment_status"`
	PaymentReference string         `db:"payment_reference" json:"payment_reference,omitempty"`
	TrackingNumber   string         `db:"tracking_number" json:"tracking_number,omitempty"`
	History          []HistoryEntry `json:"history,omitempty"`
	DeliveredAt      *time.Time     `db:"delivered_at" json:"delivered_at,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}
