package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studentms/internal/app/service"
	"studentms/internal/common"
)

type StudentHandler struct {
	studentService *service.StudentService
}

func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

func (h *StudentHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{studentID}", h.get)
}

func (h *StudentHandler) RegisterWriteRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Put("/{studentID}", h.update)
	r.Delete("/{studentID}", h.remove)
}

func (h *StudentHandler) list(w http.ResponseWriter, r *http.Request) {
	departmentID := r.URL.Query().Get("department_id")
	sectionID := r.URL.Query().Get("section_id")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	students, pagination, err := h.studentService.List(r.Context(), departmentID, sectionID, page, limit)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"students":   students,
		"pagination": pagination,
	})
}

func (h *StudentHandler) get(w http.ResponseWriter, r *http.Request) {
	student, err := h.studentService.Get(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, student)
}

func (h *StudentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}
	student, err := h.studentService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusCreated, "Student created successfully", student)
}

func (h *StudentHandler) update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithErrorMessage(w, http.StatusBadRequest, common.CodeValidationError, "Invalid request payload")
		return
	}
	student, err := h.studentService.Update(r.Context(), chi.URLParam(r, "studentID"), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Student updated successfully", student)
}

func (h *StudentHandler) remove(w http.ResponseWriter, r *http.Request) {
	student, err := h.studentService.Delete(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Student deleted successfully", student)
}
