package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studentms/internal/app/service"
	"studentms/internal/common"
)

type DepartmentHandler struct {
	departmentService *service.DepartmentService
}

func NewDepartmentHandler(departmentService *service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

func (h *DepartmentHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{departmentID}", h.get)
	r.Get("/{departmentID}/sections", h.listSections)
}

func (h *DepartmentHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Put("/{departmentID}", h.update)
	r.Delete("/{departmentID}", h.remove)
}

func (h *DepartmentHandler) list(w http.ResponseWriter, r *http.Request) {
	departments, err := h.departmentService.List(r.Context())
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, departments)
}

func (h *DepartmentHandler) get(w http.ResponseWriter, r *http.Request) {
	department, err := h.departmentService.Get(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, department)
}

func (h *DepartmentHandler) listSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.departmentService.ListSections(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, sections)
}

func (h *DepartmentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}
	department, err := h.departmentService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusCreated, "Department created successfully", department)
}

func (h *DepartmentHandler) update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}
	department, err := h.departmentService.Update(r.Context(), chi.URLParam(r, "departmentID"), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Department updated successfully", department)
}

func (h *DepartmentHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.departmentService.Delete(r.Context(), chi.URLParam(r, "departmentID")); err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Department deleted successfully", nil)
}
