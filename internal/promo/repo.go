package promo

import (
	"context"

	"github.com/nanayawb/kentecart/internal/types/promo"
)

type PromoRepository interface {
	CreatePromo(ctx context.Context, p *promo.PromoCode) error
	UpdatePromo(ctx context.Context, p *promo.PromoCode) error
	FindPromoByCode(ctx context.Context, code string) (*promo.PromoCode, error)
	ListPromos(ctx context.Context) ([]promo.PromoCode, error)
}
