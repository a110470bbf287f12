package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studentms/internal/app/service"
	"studentms/internal/common"
)

type SectionHandler struct {
	sectionService *service.SectionService
}

func NewSectionHandler(sectionService *service.SectionService) *SectionHandler {
	return &SectionHandler{sectionService: sectionService}
}

func (h *SectionHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{sectionID}", h.get)
}

func (h *SectionHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Put("/{sectionID}", h.update)
	r.Delete("/{sectionID}", h.remove)
}

func (h *SectionHandler) list(w http.ResponseWriter, r *http.Request) {
	sections, err := h.sectionService.List(r.Context(), r.URL.Query().Get("department_id"))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, sections)
}

func (h *SectionHandler) get(w http.ResponseWriter, r *http.Request) {
	section, err := h.sectionService.Get(r.Context(), chi.URLParam(r, "sectionID"))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, section)
}

func (h *SectionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}
	section, err := h.sectionService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusCreated, "Section created successfully", section)
}

func (h *SectionHandler) update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}
	section, err := h.sectionService.Update(r.Context(), chi.URLParam(r, "sectionID"), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Section updated successfully", section)
}

func (h *SectionHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.sectionService.Delete(r.Context(), chi.URLParam(r, "sectionID")); err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Section deleted successfully", nil)
}
