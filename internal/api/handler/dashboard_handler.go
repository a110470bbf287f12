package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"studentms/internal/app/service"
	"studentms/internal/common"
)

type DashboardHandler struct {
	statsService *service.StatsService
}

func NewDashboardHandler(statsService *service.StatsService) *DashboardHandler {
	return &DashboardHandler{statsService: statsService}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats", h.stats)
}

func (h *DashboardHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, cached, err := h.statsService.GetDashboardStats(r.Context())
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.Envelope{
		Success: true,
		Data:    map[string]interface{}{"stats": stats, "cached": cached},
	})
}
