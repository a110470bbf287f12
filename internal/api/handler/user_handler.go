package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"studentms/internal/api/middleware"
	"studentms/internal/app/service"
	"studentms/internal/common"
)

// UserHandler exposes the admin user management endpoints.
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/stats", h.stats)
	r.Get("/{userID}", h.get)
	r.Put("/{userID}/ban", h.ban)
	r.Put("/{userID}/unban", h.unban)
	r.Delete("/{userID}", h.remove)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	search := r.URL.Query().Get("search")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	users, pagination, err := h.userService.List(r.Context(), role, search, page, limit)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"users":      users,
		"pagination": pagination,
	})
}

func (h *UserHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userService.Stats(r.Context())
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, stats)
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, user)
}

func (h *UserHandler) ban(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeAuthenticationRequired, "Authentication required")
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	// An empty body is acceptable, the ban reason then defaults.
	_ = json.NewDecoder(r.Body).Decode(&req)

	user, err := h.userService.Ban(r.Context(), actorID, chi.URLParam(r, "userID"), req.Reason)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "User banned successfully", user)
}

func (h *UserHandler) unban(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Unban(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "User unbanned successfully", user)
}

func (h *UserHandler) remove(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeAuthenticationRequired, "Authentication required")
		return
	}
	user, err := h.userService.Delete(r.Context(), actorID, chi.URLParam(r, "userID"))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "User deleted successfully", user.Summary())
}
