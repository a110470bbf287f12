package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studentms/internal/api/middleware"
	"studentms/internal/app/service"
	"studentms/internal/common"
	"studentms/internal/common/security"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
}

func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/logout", h.logout)
	r.Get("/verify", h.verify)
}

// RegisterAdminRoutes holds the routes only an Admin session may call.
func (h *AuthHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/register", h.register)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}

	user, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusCreated, "Account created successfully", user.Summary())
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}

	user, token, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	security.SetSessionCookie(w, token)
	common.RespondWithMessage(w, http.StatusCreated, "Registration successful", user.Summary())
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}

	user, token, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	security.SetSessionCookie(w, token)
	common.RespondWithMessage(w, http.StatusOK, "Login successful", user.Summary())
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	security.ClearSessionCookie(w)
	common.RespondWithMessage(w, http.StatusOK, "Logged out successfully", nil)
}

// verify echoes the authenticated account so clients can restore a session
// from the cookie alone.
func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeAuthenticationRequired, "Authentication required")
		return
	}
	common.RespondWithData(w, http.StatusOK, user.Summary())
}
