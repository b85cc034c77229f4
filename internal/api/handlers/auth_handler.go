package handlers

import (
	"net/http"
	"time"

	"github.com/iqueue/staffing/internal/api/types"
	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/services"
	"github.com/iqueue/staffing/internal/validators"
	appErr "github.com/iqueue/staffing/pkg/errors"
)

type AuthHandler struct {
	auth services.AuthService
	ttl  time.Duration
}

func NewAuthHandler(auth services.AuthService, ttl time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, ttl: ttl}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	token, u, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, h.tokenResponse(token, u))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validators.Struct(req); err != nil {
		writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, "email and password are required"))
		return
	}
	token, u, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, h.tokenResponse(token, u))
}

func (h *AuthHandler) tokenResponse(token string, u *models.User) types.TokenResponse {
	return types.TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresIn: int64(h.ttl.Seconds()), User: u}
}
