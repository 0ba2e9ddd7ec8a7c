package handler

import (
	"net/http"

	"github.com/uangku/uangku/internal/render"
	"github.com/uangku/uangku/internal/service"
)

type homeHandler struct {
	siteViewService *service.SiteViewService
}

func NewHomeHandler(siteViewService *service.SiteViewService) *homeHandler {
	return &homeHandler{siteViewService: siteViewService}
}

// Home serves the landing payload with the public visitor counters.
func (h *homeHandler) Home(w http.ResponseWriter, r *http.Request) {
	stats, err := h.siteViewService.Stats(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, stats)
}

func (h *homeHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
