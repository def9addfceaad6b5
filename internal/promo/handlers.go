package promo

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nanayawb/kentecart/internal/middleware"
	"github.com/nanayawb/kentecart/internal/rest"
	"github.com/nanayawb/kentecart/internal/storage"
	"github.com/nanayawb/kentecart/internal/types/promo"
	"github.com/nanayawb/kentecart/internal/types/user"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireRole(r.Context(), user.RoleAdmin); err != nil {
		rest.Error(w, http.StatusForbidden, "admin role required")
		return
	}
	var p promo.PromoCode
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		rest.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Create(r.Context(), &p); err != nil {
		switch {
		case errors.Is(err, ErrInvalidPromo):
			rest.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrAlreadyExists):
			rest.Error(w, http.StatusConflict, "promo code already exists")
		default:
			rest.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	rest.OK(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireRole(r.Context(), user.RoleAdmin); err != nil {
		rest.Error(w, http.StatusForbidden, "admin role required")
		return
	}
	var p promo.PromoCode
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		rest.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Update(r.Context(), &p); err != nil {
		switch {
		case errors.Is(err, ErrInvalidPromo):
			rest.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			rest.Error(w, http.StatusNotFound, err.Error())
		default:
			rest.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	rest.OK(w, http.StatusOK, p)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireRole(r.Context(), user.RoleStaff); err != nil {
		rest.Error(w, http.StatusForbidden, "forbidden")
		return
	}
	promos, err := h.svc.List(r.Context())
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	rest.OK(w, http.StatusOK, promos)
}
