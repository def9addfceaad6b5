package product

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nanayawb/kentecart/internal/middleware"
	"github.com/nanayawb/kentecart/internal/rest"
	"github.com/nanayawb/kentecart/internal/types/product"
	"github.com/nanayawb/kentecart/internal/types/user"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context(), r.URL.Query().Get("category"), r.URL.Query().Get("size"))
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	rest.OK(w, http.StatusOK, products)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		rest.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			rest.Error(w, http.StatusNotFound, err.Error())
			return
		}
		rest.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	rest.OK(w, http.StatusOK, p)
}

// ListAll includes inactive products. Staff view.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireRole(r.Context(), user.RoleStaff); err != nil {
		rest.Error(w, http.StatusForbidden, "forbidden")
		return
	}
	products, err := h.svc.ListAll(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		rest.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	rest.OK(w, http.StatusOK, products)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireRole(r.Context(), user.RoleAdmin); err != nil {
		rest.Error(w, http.StatusForbidden, "admin role required")
		return
	}
	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		rest.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Create(r.Context(), &p); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			rest.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		rest.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	rest.OK(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireRole(r.Context(), user.RoleAdmin); err != nil {
		rest.Error(w, http.StatusForbidden, "admin role required")
		return
	}
	id, err := idParam(r)
	if err != nil {
		rest.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		rest.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	p.ID = id
	if err := h.svc.Update(r.Context(), &p); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
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

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireRole(r.Context(), user.RoleAdmin); err != nil {
		rest.Error(w, http.StatusForbidden, "admin role required")
		return
	}
	id, err := idParam(r)
	if err != nil {
		rest.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.svc.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			rest.Error(w, http.StatusNotFound, err.Error())
			return
		}
		rest.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	rest.Message(w, http.StatusOK, "product deactivated")
}

type stockReq struct {
	Delta int `json:"delta"`
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireRole(r.Context(), user.RoleAdmin); err != nil {
		rest.Error(w, http.StatusForbidden, "admin role required")
		return
	}
	id, err := idParam(r)
	if err != nil {
		rest.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req stockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Delta == 0 {
		rest.Error(w, http.StatusBadRequest, "delta must be a non-zero integer")
		return
	}
	if err := h.svc.AdjustStock(r.Context(), id, req.Delta); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			rest.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrStockConflict):
			rest.Error(w, http.StatusConflict, err.Error())
		default:
			rest.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	rest.Message(w, http.StatusOK, "stock updated")
}
