package handler

import (
	"encoding/json"
	"net/http"

	"github.com/devsaround/blog-api/internal/httpx"
	"github.com/devsaround/blog-api/internal/middleware"
	"github.com/devsaround/blog-api/internal/model"
	"github.com/devsaround/blog-api/internal/service"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service   *service.AuthService
	translate httpx.Translator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, translate httpx.Translator) *AuthHandler {
	return &AuthHandler{service: svc, translate: translate}
}

// HandleSignup handles POST /api/v1/auth/signup requests.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Signup(r.Context(), req)
	if err != nil {
		h.translate.Err(w, r, err)
		return
	}

	httpx.Success(w, http.StatusCreated, "user registered successfully", resp)
}

// HandleLogin handles POST /api/v1/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.translate.Err(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "login successful", resp)
}

// HandleMe handles GET /api/v1/auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	user, err := h.service.GetMe(r.Context(), userID)
	if err != nil {
		h.translate.Err(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "user fetched successfully", map[string]any{"user": user})
}

// HandleLogout handles POST /api/v1/auth/logout requests. Tokens are
// stateless, so logout only acknowledges; the client discards its token.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	httpx.Success(w, http.StatusOK, "logged out successfully", nil)
}

const maxBodySize = 1 << 20 // 1MB

// decodeBody decodes a size-capped JSON request body, writing the error
// response itself when decoding fails.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if err.Error() == "http: request body too large" {
			httpx.Fail(w, http.StatusRequestEntityTooLarge, "request body too large", nil)
			return false
		}
		httpx.Fail(w, http.StatusBadRequest, "invalid request body", nil)
		return false
	}
	return true
}
