package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studentms/internal/app/service"
	"studentms/internal/common"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/department", h.department)
	r.Get("/section", h.section)
	r.Get("/complete", h.complete)
	r.Get("/export", h.exportCSV)
}

func reportRequestFromQuery(r *http.Request) service.ReportRequest {
	q := r.URL.Query()
	return service.ReportRequest{
		DepartmentID: q.Get("department_id"),
		SectionID:    q.Get("section_id"),
		StartDate:    q.Get("start_date"),
		EndDate:      q.Get("end_date"),
	}
}

func (h *ReportHandler) department(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.DepartmentReport(r.Context(), reportRequestFromQuery(r))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, report)
}

func (h *ReportHandler) section(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.SectionReport(r.Context(), reportRequestFromQuery(r))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, report)
}

func (h *ReportHandler) complete(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.CompleteReport(r.Context(), reportRequestFromQuery(r))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, report)
}

func (h *ReportHandler) exportCSV(w http.ResponseWriter, r *http.Request) {
	export, err := h.reportService.ExportCSV(r.Context(), reportRequestFromQuery(r))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(export.Content)
}
