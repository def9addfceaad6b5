package promo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nanayawb/kentecart/internal/storage"
	"github.com/nanayawb/kentecart/internal/types/promo"
)

type stubPromoRepo struct {
	promos    map[string]*promo.PromoCode
	errCreate error
}

func newStubPromoRepo() *stubPromoRepo {
	return &stubPromoRepo{promos: make(map[string]*promo.PromoCode)}
}

func (r *stubPromoRepo) CreatePromo(ctx context.Context, p *promo.PromoCode) error {
	if r.errCreate != nil {
		return r.errCreate
	}
	if _, exists := r.promos[p.Code]; exists {
		return storage.ErrAlreadyExists
	}
	p.ID = int64(len(r.promos) + 1)
	r.promos[p.Code] = p
	return nil
}

func (r *stubPromoRepo) UpdatePromo(ctx context.Context, p *promo.PromoCode) error {
	if _, ok := r.promos[p.Code]; !ok {
		return storage.ErrNotFound
	}
	r.promos[p.Code] = p
	return nil
}

func (r *stubPromoRepo) FindPromoByCode(ctx context.Context, code string) (*promo.PromoCode, error) {
	p, ok := r.promos[code]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return p, nil
}

func (r *stubPromoRepo) ListPromos(ctx context.Context) ([]promo.PromoCode, error) {
	var out []promo.PromoCode
	for _, p := range r.promos {
		out = append(out, *p)
	}
	return out, nil
}

func TestResolve(t *testing.T) {
	repo := newStubPromoRepo()
	repo.promos["AKWAABA10"] = &promo.PromoCode{
		Code: "AKWAABA10", Kind: promo.KindPercent, Value: 10, Active: true,
	}
	repo.promos["GH20OFF"] = &promo.PromoCode{
		Code: "GH20OFF", Kind: promo.KindFixed, Value: 20, MinSubtotal: 100, Active: true,
	}
	svc := NewService(repo)

	t.Run("percent discount", func(t *testing.T) {
		d, err := svc.Resolve(context.Background(), "akwaaba10", 200)
		if err != nil {
			t.Fatal(err)
		}
		if d != 20 {
			t.Errorf("expected discount 20, got %v", d)
		}
	})

	t.Run("fixed discount", func(t *testing.T) {
		d, err := svc.Resolve(context.Background(), "GH20OFF", 150)
		if err != nil {
			t.Fatal(err)
		}
		if d != 20 {
			t.Errorf("expected discount 20, got %v", d)
		}
	})

	t.Run("below minimum", func(t *testing.T) {
		_, err := svc.Resolve(context.Background(), "GH20OFF", 50)
		if !errors.Is(err, ErrBelowMinimum) {
			t.Errorf("expected ErrBelowMinimum, got %v", err)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.Resolve(context.Background(), "NOPE", 100)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("inactive code", func(t *testing.T) {
		repo.promos["OLD"] = &promo.PromoCode{Code: "OLD", Kind: promo.KindFixed, Value: 5}
		_, err := svc.Resolve(context.Background(), "OLD", 100)
		if !errors.Is(err, ErrInactive) {
			t.Errorf("expected ErrInactive, got %v", err)
		}
	})

	t.Run("expired code", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Hour)
		repo.promos["XMAS"] = &promo.PromoCode{Code: "XMAS", Kind: promo.KindFixed, Value: 5, Active: true, ExpiresAt: &past}
		_, err := svc.Resolve(context.Background(), "XMAS", 100)
		if !errors.Is(err, ErrExpired) {
			t.Errorf("expected ErrExpired, got %v", err)
		}
	})

	t.Run("exhausted code", func(t *testing.T) {
		repo.promos["RARE"] = &promo.PromoCode{Code: "RARE", Kind: promo.KindFixed, Value: 5, Active: true, MaxUses: 3, Uses: 3}
		_, err := svc.Resolve(context.Background(), "RARE", 100)
		if !errors.Is(err, ErrExhausted) {
			t.Errorf("expected ErrExhausted, got %v", err)
		}
	})
}

func TestDiscountNeverExceedsSubtotal(t *testing.T) {
	p := &promo.PromoCode{Code: "BIG", Kind: promo.KindFixed, Value: 500, Active: true}
	if d := Discount(p, 80); d != 80 {
		t.Errorf("expected discount capped at 80, got %v", d)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newStubPromoRepo())

	tests := []struct {
		name  string
		promo promo.PromoCode
	}{
		{"empty code", promo.PromoCode{Kind: promo.KindFixed, Value: 5}},
		{"zero value", promo.PromoCode{Code: "X", Kind: promo.KindFixed}},
		{"bad kind", promo.PromoCode{Code: "X", Kind: "lucky", Value: 5}},
		{"percent over 100", promo.PromoCode{Code: "X", Kind: promo.KindPercent, Value: 150}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.promo
			if err := svc.Create(context.Background(), &p); !errors.Is(err, ErrInvalidPromo) {
				t.Errorf("expected ErrInvalidPromo, got %v", err)
			}
		})
	}
}

func TestCreateUppercasesCode(t *testing.T) {
	repo := newStubPromoRepo()
	svc := NewService(repo)

	p := &promo.PromoCode{Code: " akwaaba10 ", Kind: promo.KindPercent, Value: 10}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if p.Code != "AKWAABA10" {
		t.Errorf("expected normalized code AKWAABA10, got %q", p.Code)
	}
	if !p.Active {
		t.Error("new promo should be active")
	}
}
