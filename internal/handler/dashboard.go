package handler

import (
	"net/http"

	"github.com/uangku/uangku/internal/ctxkeys"
	"github.com/uangku/uangku/internal/render"
	"github.com/uangku/uangku/internal/service"
)

type dashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *dashboardHandler {
	return &dashboardHandler{dashboardService: dashboardService}
}

func (h *dashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	dashboard, err := h.dashboardService.Summary(user.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, dashboard)
}
