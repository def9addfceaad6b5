package promo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nanayawb/kentecart/internal/storage"
	"github.com/nanayawb/kentecart/internal/types/promo"
)

var (
	ErrNotFound     = errors.New("promo code not found")
	ErrInactive     = errors.New("promo code is not active")
	ErrExpired      = errors.New("promo code has expired")
	ErrExhausted    = errors.New("promo code has no uses left")
	ErrBelowMinimum = errors.New("order subtotal below promo minimum")
	ErrInvalidPromo = errors.New("invalid promo code definition")
)

type Service struct {
	repo PromoRepository
}

func NewService(r PromoRepository) *Service {
	return &Service{repo: r}
}

// Resolve checks a code against a subtotal and returns the discount it
// grants. It does not consume a use; that happens inside the order
// placement transaction.
func (s *Service) Resolve(ctx context.Context, code string, subtotal float64) (float64, error) {
	p, err := s.repo.FindPromoByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if !p.Active {
		return 0, ErrInactive
	}
	if p.ExpiresAt != nil && time.Now().UTC().After(*p.ExpiresAt) {
		return 0, ErrExpired
	}
	if p.MaxUses > 0 && p.Uses >= p.MaxUses {
		return 0, ErrExhausted
	}
	if subtotal < p.MinSubtotal {
		return 0, ErrBelowMinimum
	}
	return Discount(p, subtotal), nil
}

// Discount never exceeds the subtotal.
func Discount(p *promo.PromoCode, subtotal float64) float64 {
	var d float64
	switch p.Kind {
	case promo.KindPercent:
		d = subtotal * p.Value / 100
	case promo.KindFixed:
		d = p.Value
	}
	if d > subtotal {
		d = subtotal
	}
	return d
}

func validate(p *promo.PromoCode) error {
	if p.Code == "" || p.Value <= 0 {
		return ErrInvalidPromo
	}
	if p.Kind != promo.KindPercent && p.Kind != promo.KindFixed {
		return ErrInvalidPromo
	}
	if p.Kind == promo.KindPercent && p.Value > 100 {
		return ErrInvalidPromo
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *promo.PromoCode) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	if err := validate(p); err != nil {
		return err
	}
	p.Active = true
	p.CreatedAt = time.Now().UTC()
	return s.repo.CreatePromo(ctx, p)
}

func (s *Service) Update(ctx context.Context, p *promo.PromoCode) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	if err := validate(p); err != nil {
		return err
	}
	if err := s.repo.UpdatePromo(ctx, p); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]promo.PromoCode, error) {
	return s.repo.ListPromos(ctx)
}
