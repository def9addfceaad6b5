package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/nanayawb/kentecart/internal/storage"
	"github.com/nanayawb/kentecart/internal/types/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderStore struct {
	orders      map[string]*order.Order // keyed by number
	confirmed   int                     // times the paid transition actually applied
	failedRefs  []string
	refsSet     map[int64]string
	errFind     error
	errMarkPaid error
}

func newStubOrderStore() *stubOrderStore {
	return &stubOrderStore{orders: make(map[string]*order.Order), refsSet: make(map[int64]string)}
}

func (s *stubOrderStore) FindOrderByNumber(ctx context.Context, number string) (*order.Order, error) {
	if s.errFind != nil {
		return nil, s.errFind
	}
	o, ok := s.orders[number]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return o, nil
}

func (s *stubOrderStore) FindOrderByReference(ctx context.Context, reference string) (*order.Order, error) {
	for _, o := range s.orders {
		if o.PaymentReference == reference {
			return o, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *stubOrderStore) SetPaymentReference(ctx context.Context, orderID int64, reference string) error {
	s.refsSet[orderID] = reference
	for _, o := range s.orders {
		if o.ID == orderID {
			o.PaymentReference = reference
		}
	}
	return nil
}

func (s *stubOrderStore) MarkOrderPaid(ctx context.Context, reference string) (bool, error) {
	if s.errMarkPaid != nil {
		return false, s.errMarkPaid
	}
	for _, o := range s.orders {
		if o.PaymentReference != reference || o.PaymentStatus == order.PaymentPaid {
			continue
		}
		if o.Status != order.StatusPending && o.Status != order.StatusConfirmed {
			// record the late payment, leave the status alone
			if o.Status == order.StatusCancelled {
				o.PaymentStatus = order.PaymentPaid
			}
			return false, nil
		}
		o.PaymentStatus = order.PaymentPaid
		o.Status = order.StatusConfirmed
		s.confirmed++
		return true, nil
	}
	return false, nil
}

func (s *stubOrderStore) MarkPaymentFailed(ctx context.Context, reference string) error {
	s.failedRefs = append(s.failedRefs, reference)
	return nil
}

func (s *stubOrderStore) ListAwaitingPayment(ctx context.Context) ([]order.Order, error) {
	var out []order.Order
	for _, o := range s.orders {
		if o.PaymentStatus == order.PaymentPending && o.PaymentReference != "" {
			out = append(out, *o)
		}
	}
	return out, nil
}

type stubGateway struct {
	verifyResults map[string]*VerifyResult
	verifyErr     error
	initResult    *InitializeResult
	initErr       error
	lastAmount    int64
	lastEmail     string
}

func (g *stubGateway) Initialize(ctx context.Context, email string, amountPesewas int64, reference string) (*InitializeResult, error) {
	g.lastEmail = email
	g.lastAmount = amountPesewas
	if g.initErr != nil {
		return nil, g.initErr
	}
	res := *g.initResult
	res.Reference = reference
	return &res, nil
}

func (g *stubGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verifyResults[reference], nil
}

func unpaidOrder() *order.Order {
	return &order.Order{
		ID:               7,
		Number:           "KC-20260829-0001",
		CustomerEmail:    "ama@example.com",
		PaymentMethod:    "paystack",
		Total:            95.5,
		Status:           order.StatusPending,
		PaymentStatus:    order.PaymentPending,
		PaymentReference: "ref-1",
	}
}

func TestVerifySuccessIsIdempotent(t *testing.T) {
	store := newStubOrderStore()
	store.orders["KC-20260829-0001"] = unpaidOrder()
	gw := &stubGateway{verifyResults: map[string]*VerifyResult{
		"ref-1": {Reference: "ref-1", Status: GatewaySuccess},
	}}
	svc := NewService(gw, store, "whsec")

	applied, err := svc.Verify(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.True(t, applied)

	// second verification of the same reference must not re-apply
	applied, err = svc.Verify(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.False(t, applied)

	assert.Equal(t, 1, store.confirmed, "confirmed transition must apply exactly once")
	o := store.orders["KC-20260829-0001"]
	assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, order.StatusConfirmed, o.Status)
}

func TestVerifyAndWebhookRace(t *testing.T) {
	store := newStubOrderStore()
	store.orders["KC-20260829-0001"] = unpaidOrder()
	gw := &stubGateway{verifyResults: map[string]*VerifyResult{
		"ref-1": {Reference: "ref-1", Status: GatewaySuccess},
	}}
	svc := NewService(gw, store, "whsec")

	_, err := svc.Verify(context.Background(), "ref-1")
	require.NoError(t, err)

	ev := &WebhookEvent{Event: "charge.success"}
	ev.Data.Reference = "ref-1"
	require.NoError(t, svc.HandleWebhook(context.Background(), ev))

	assert.Equal(t, 1, store.confirmed)
}

func TestVerifySuccessDoesNotResurrectCancelledOrder(t *testing.T) {
	store := newStubOrderStore()
	o := unpaidOrder()
	o.Status = order.StatusCancelled
	store.orders[o.Number] = o
	gw := &stubGateway{verifyResults: map[string]*VerifyResult{
		"ref-1": {Reference: "ref-1", Status: GatewaySuccess},
	}}
	svc := NewService(gw, store, "whsec")

	applied, err := svc.Verify(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, order.StatusCancelled, o.Status, "cancelled order must stay cancelled")
	assert.Zero(t, store.confirmed)
	// the money did arrive; the payment is recorded for staff to refund
	assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
}

func TestVerifyFailedMarksPaymentFailed(t *testing.T) {
	store := newStubOrderStore()
	store.orders["KC-20260829-0001"] = unpaidOrder()
	gw := &stubGateway{verifyResults: map[string]*VerifyResult{
		"ref-1": {Reference: "ref-1", Status: GatewayFailed},
	}}
	svc := NewService(gw, store, "whsec")

	applied, err := svc.Verify(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, []string{"ref-1"}, store.failedRefs)
	assert.Zero(t, store.confirmed)
}

func TestInitialize(t *testing.T) {
	store := newStubOrderStore()
	o := unpaidOrder()
	o.PaymentReference = ""
	store.orders[o.Number] = o
	gw := &stubGateway{initResult: &InitializeResult{
		AuthorizationURL: "https://checkout.paystack.com/abc123",
		AccessCode:       "abc123",
	}}
	svc := NewService(gw, store, "whsec")

	res, err := svc.Initialize(context.Background(), o.Number, "AMA@example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.paystack.com/abc123", res.AuthorizationURL)
	assert.NotEmpty(t, res.Reference)
	assert.Equal(t, res.Reference, store.refsSet[o.ID])
	assert.Equal(t, int64(9550), gw.lastAmount, "amount must be in pesewas")
	assert.Equal(t, "ama@example.com", gw.lastEmail)
}

func TestInitializeGuards(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *order.Order)
		email   string
		wantErr error
	}{
		{"wrong email", func(o *order.Order) {}, "kofi@example.com", ErrNotOwner},
		{"already paid", func(o *order.Order) { o.PaymentStatus = order.PaymentPaid }, "ama@example.com", ErrAlreadyPaid},
		{"cash on delivery", func(o *order.Order) { o.PaymentMethod = "cod" }, "ama@example.com", ErrNotGateway},
		{"cancelled", func(o *order.Order) { o.Status = order.StatusCancelled }, "ama@example.com", ErrOrderClosed},
		{"shipped", func(o *order.Order) { o.Status = order.StatusShipped }, "ama@example.com", ErrOrderClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStubOrderStore()
			o := unpaidOrder()
			tt.mutate(o)
			store.orders[o.Number] = o
			svc := NewService(&stubGateway{initResult: &InitializeResult{}}, store, "whsec")

			_, err := svc.Initialize(context.Background(), o.Number, tt.email)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing order", func(t *testing.T) {
		svc := NewService(&stubGateway{}, newStubOrderStore(), "whsec")
		_, err := svc.Initialize(context.Background(), "KC-00000000-0000", "ama@example.com")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestCheckSignature(t *testing.T) {
	svc := NewService(&stubGateway{}, newStubOrderStore(), "whsec")
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)

	mac := hmac.New(sha512.New, []byte("whsec"))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, svc.CheckSignature(body, valid))
	assert.False(t, svc.CheckSignature(body, "deadbeef"))
	assert.False(t, svc.CheckSignature(body, "not-hex!"))
	assert.False(t, svc.CheckSignature([]byte("tampered"), valid))
}

func TestVerifyGatewayError(t *testing.T) {
	store := newStubOrderStore()
	store.orders["KC-20260829-0001"] = unpaidOrder()
	gw := &stubGateway{verifyErr: errors.New("gateway down")}
	svc := NewService(gw, store, "whsec")

	_, err := svc.Verify(context.Background(), "ref-1")
	assert.Error(t, err)
	assert.Zero(t, store.confirmed)
	assert.Empty(t, store.failedRefs)
}
