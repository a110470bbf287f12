package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studentms/internal/api/middleware"
	"studentms/internal/app/service"
	"studentms/internal/common"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.update)
	r.Get("/preferences", h.getPreferences)
	r.Put("/preferences", h.updatePreferences)
	r.Put("/password", h.changePassword)
	r.Put("/avatar", h.updateAvatar)
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeAuthenticationRequired, "Authentication required")
		return
	}
	user, err := h.profileService.Get(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, user)
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeAuthenticationRequired, "Authentication required")
		return
	}
	var req service.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}
	user, err := h.profileService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Profile updated successfully", user)
}

func (h *ProfileHandler) getPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeAuthenticationRequired, "Authentication required")
		return
	}
	prefs, err := h.profileService.GetPreferences(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, prefs)
}

func (h *ProfileHandler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeAuthenticationRequired, "Authentication required")
		return
	}
	var req service.UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}
	prefs, err := h.profileService.UpdatePreferences(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Preferences updated successfully", prefs)
}

func (h *ProfileHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeAuthenticationRequired, "Authentication required")
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}
	if err := h.profileService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Password changed successfully", nil)
}

func (h *ProfileHandler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		common.RespondWithErrorMessage(w, http.StatusUnauthorized, common.CodeAuthenticationRequired, "Authentication required")
		return
	}
	var req struct {
		ProfilePicture string `json:"profile_picture"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}
	picture, err := h.profileService.UpdateAvatar(r.Context(), userID, req.ProfilePicture)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Profile picture updated successfully", map[string]string{"profile_picture": picture})
}
