package promo

import "time"

type Kind string

const (
	KindPercent Kind = "percent"
	KindFixed   Kind = "fixed"
)

type PromoCode struct {
	ID          int64      `db:"id" json:"id"`
	Code        string     `db:"code" json:"code"`
	Kind        Kind       `db:"kind" json:"kind"`
	Value       float64    `db:"value" json:"value"`
	MinSubtotal float64    `db:"min_subtotal" json:"min_subtotal"`
	MaxUses     int        `db:"max_uses" json:"max_uses"`
	Uses        int        `db:"uses" json:"uses"`
	ExpiresAt   *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	Active      bool       `db:"active" json:"active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
