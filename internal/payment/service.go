package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"math"
	"strings"

	"github.com/nanayawb/kentecart/internal/storage"
	"github.com/nanayawb/kentecart/internal/types/order"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNotOwner      = errors.New("email does not match order")
	ErrAlreadyPaid   = errors.New("order is already paid")
	ErrNotGateway    = errors.New("order is not payable through the gateway")
	ErrOrderClosed   = errors.New("order can no longer be paid")
)

// OrderPayments is the slice of the order store the payment flow touches.
type OrderPayments interface {
	FindOrderByNumber(ctx context.Context, number string) (*order.Order, error)
	FindOrderByReference(ctx context.Context, reference string) (*order.Order, error)
	SetPaymentReference(ctx context.Context, orderID int64, reference string) error
	MarkOrderPaid(ctx context.Context, reference string) (bool, error)
	MarkPaymentFailed(ctx context.Context, reference string) error
	ListAwaitingPayment(ctx context.Context) ([]order.Order, error)
}

type Service struct {
	gateway GatewayClient
	repo    OrderPayments
	secret  string
}

func NewService(gateway GatewayClient, repo OrderPayments, webhookSecret string) *Service {
	return &Service{gateway: gateway, repo: repo, secret: webhookSecret}
}

// pesewas converts a GHS amount to the gateway's integer minor unit.
func pesewas(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Initialize starts a gateway transaction for an unpaid order and stores
// the generated reference on it.
func (s *Service) Initialize(ctx context.Context, number, email string) (*InitializeResult, error) {
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
	if o.PaymentStatus == order.PaymentPaid {
		return nil, ErrAlreadyPaid
	}
	if o.PaymentMethod != "paystack" {
		return nil, ErrNotGateway
	}
	if o.Status != order.StatusPending && o.Status != order.StatusConfirmed {
		return nil, ErrOrderClosed
	}

	reference := uuid.NewString()
	res, err := s.gateway.Initialize(ctx, o.CustomerEmail, pesewas(o.Total), reference)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPaymentReference(ctx, o.ID, reference); err != nil {
		return nil, err
	}
	res.Reference = reference
	return res, nil
}

// Verify asks the gateway about a reference and applies the outcome. It
// reports whether this call was the one that marked the order paid.
// Failures and references that were already paid report false; the paid
// transition itself is a conditional update, so a concurrent webhook
// cannot double-apply it.
func (s *Service) Verify(ctx context.Context, reference string) (bool, error) {
	vr, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return false, err
	}
	switch vr.Status {
	case GatewaySuccess:
		return s.repo.MarkOrderPaid(ctx, reference)
	case GatewayFailed, GatewayAbandoned:
		return false, s.repo.MarkPaymentFailed(ctx, reference)
	}
	return false, nil
}

// WebhookEvent is the subset of the gateway's callback payload we act on.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// CheckSignature authenticates a webhook body against the gateway's
// HMAC-SHA512 signature header.
func (s *Service) CheckSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(s.secret))
	mac.Write(body)
	expected := mac.Sum(nil)
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, expected)
}

// HandleWebhook applies an authenticated gateway callback. Shares the
// conditional paid transition with Verify.
func (s *Service) HandleWebhook(ctx context.Context, ev *WebhookEvent) error {
	switch ev.Event {
	case "charge.success":
		_, err := s.repo.MarkOrderPaid(ctx, ev.Data.Reference)
		return err
	case "charge.failed":
		return s.repo.MarkPaymentFailed(ctx, ev.Data.Reference)
	}
	return nil
}

func (s *Service) GetByReference(ctx context.Context, reference string) (*order.Order, error) {
	o, err := s.repo.FindOrderByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *Service) ListAwaitingPayment(ctx context.Context) ([]order.Order, error) {
	return s.repo.ListAwaitingPayment(ctx)
}
