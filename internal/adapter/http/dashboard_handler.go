package http

import (
	"net/http"

	"github.com/chiwei-platform/lifecycle-tracker/internal/service"
	"github.com/chiwei-platform/lifecycle-tracker/internal/stats"
)

type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *DashboardHandler) StatusDrift(w http.ResponseWriter, r *http.Request) {
	drift, err := h.svc.StatusDrift(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if drift == nil {
		drift = []stats.Drift{}
	}
	writeJSON(w, http.StatusOK, drift)
}
