package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nanayawb/kentecart/internal/middleware"
	"github.com/nanayawb/kentecart/internal/rest"
	"github.com/nanayawb/kentecart/internal/types/user"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type credentialsReq struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type createStaffReq struct {
	Login    string    `json:"login"`
	Password string    `json:"password"`
	Role     user.Role `json:"role"`
}

type tokenResp struct {
	Token string `json:"token"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := h.svc.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		rest.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	rest.OK(w, http.StatusOK, tokenResp{Token: token})
}

// CreateStaff provisions a staff account. Admin only.
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireRole(r.Context(), user.RoleAdmin); err != nil {
		rest.Error(w, http.StatusForbidden, "admin role required")
		return
	}
	var req createStaffReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Role == "" {
		req.Role = user.RoleStaff
	}
	u, err := h.svc.Register(r.Context(), req.Login, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrInvalidRole):
			rest.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserExists):
			rest.Error(w, http.StatusConflict, err.Error())
		default:
			rest.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	rest.OK(w, http.StatusCreated, u)
}
