package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nanayawb/kentecart/internal/middleware"
	"github.com/nanayawb/kentecart/internal/promo"
	"github.com/nanayawb/kentecart/internal/rest"
	"github.com/nanayawb/kentecart/internal/storage"
	"github.com/nanayawb/kentecart/internal/types/order"
	"github.com/nanayawb/kentecart/internal/types/user"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.svc.Place(r.Context(), &req)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			rest.ValidationError(w, verr.Fields)
		case errors.Is(err, ErrProductUnavailable):
			rest.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrSizeUnavailable):
			rest.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrInsufficientStock), errors.Is(err, storage.ErrPromoExhausted):
			rest.Error(w, http.StatusConflict, err.Error())
		case isPromoRejection(err):
			rest.Error(w, http.StatusUnprocessableEntity, err.Error())
		default:
			rest.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	rest.OK(w, http.StatusCreated, o)
}

func isPromoRejection(err error) bool {
	return errors.Is(err, promo.ErrNotFound) ||
		errors.Is(err, promo.ErrInactive) ||
		errors.Is(err, promo.ErrExpired) ||
		errors.Is(err, promo.ErrExhausted) ||
		errors.Is(err, promo.ErrBelowMinimum)
}

func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	number := r.URL.Query().Get("number")
	email := r.URL.Query().Get("email")
	if number == "" || email == "" {
		rest.ValidationError(w, []string{"number and email query parameters are required"})
		return
	}
	o, err := h.svc.Track(r.Context(), number, email)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			rest.Error(w, http.StatusNotFound, err.Error())
			return
		}
		rest.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	rest.OK(w, http.StatusOK, o)
}

func (h *Handler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		rest.ValidationError(w, []string{"email query parameter is required"})
		return
	}
	orders, err := h.svc.ListByEmail(r.Context(), email)
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	rest.OK(w, http.StatusOK, orders)
}

type cancelReq struct {
	Email string `json:"email"`
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	var req cancelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		rest.ValidationError(w, []string{"email is required"})
		return
	}
	o, err := h.svc.Cancel(r.Context(), number, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			rest.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotOwner):
			rest.Error(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrNotCancellable):
			rest.Error(w, http.StatusConflict, err.Error())
		default:
			rest.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	rest.OK(w, http.StatusOK, o)
}

// List is the staff order overview, optionally filtered by status.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireRole(r.Context(), user.RoleStaff); err != nil {
		rest.Error(w, http.StatusForbidden, "forbidden")
		return
	}
	orders, err := h.svc.List(r.Context(), order.Status(r.URL.Query().Get("status")))
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			rest.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		rest.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	rest.OK(w, http.StatusOK, orders)
}

type statusReq struct {
	Status         order.Status `json:"status"`
	Note           string       `json:"note"`
	TrackingNumber string       `json:"tracking_number"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireRole(r.Context(), user.RoleAdmin); err != nil {
		rest.Error(w, http.StatusForbidden, "admin role required")
		return
	}
	number := chi.URLParam(r, "number")
	var req statusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.svc.UpdateStatus(r.Context(), number, req.Status, req.Note, req.TrackingNumber)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrBadTransition):
			rest.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrOrderNotFound):
			rest.Error(w, http.StatusNotFound, err.Error())
		default:
			rest.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	rest.OK(w, http.StatusOK, o)
}
