package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nanayawb/kentecart/internal/logger"
	"github.com/nanayawb/kentecart/internal/rest"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type initializeReq struct {
	OrderNumber string `json:"order_number"`
	Email       string `json:"email"`
}

func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req initializeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OrderNumber == "" || req.Email == "" {
		rest.ValidationError(w, []string{"order_number and email are required"})
		return
	}
	res, err := h.svc.Initialize(r.Context(), req.OrderNumber, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			rest.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotOwner):
			rest.Error(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrAlreadyPaid), errors.Is(err, ErrNotGateway), errors.Is(err, ErrOrderClosed):
			rest.Error(w, http.StatusConflict, err.Error())
		default:
			logger.Log.Error("payment initialize", zap.Error(err))
			rest.Error(w, http.StatusInternalServerError, "payment gateway unavailable")
		}
		return
	}
	rest.OK(w, http.StatusOK, res)
}

type verifyResp struct {
	Paid      bool   `json:"paid"`
	Reference string `json:"reference"`
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	o, err := h.svc.GetByReference(r.Context(), reference)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			rest.Error(w, http.StatusNotFound, err.Error())
			return
		}
		rest.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if _, err := h.svc.Verify(r.Context(), reference); err != nil {
		logger.Log.Error("payment verify", zap.Error(err))
		rest.Error(w, http.StatusInternalServerError, "payment gateway unavailable")
		return
	}
	// Re-read to report the post-verification state.
	o, err = h.svc.GetByReference(r.Context(), reference)
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	rest.OK(w, http.StatusOK, verifyResp{Paid: o.PaymentStatus == "paid", Reference: reference})
}

func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		rest.Error(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if !h.svc.CheckSignature(body, r.Header.Get("X-Paystack-Signature")) {
		rest.Error(w, http.StatusUnauthorized, "invalid signature")
		return
	}
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		rest.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.svc.HandleWebhook(r.Context(), &ev); err != nil {
		logger.Log.Error("payment webhook", zap.Error(err), zap.String("event", ev.Event))
		rest.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	rest.Message(w, http.StatusOK, "ok")
}
