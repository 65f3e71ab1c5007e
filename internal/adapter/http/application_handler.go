package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
	"github.com/chiwei-platform/lifecycle-tracker/internal/service"
)

type ApplicationHandler struct {
	svc *service.ApplicationService
}

func NewApplicationHandler(svc *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.svc.CreateApplication(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.ListApplications(r.Context(), port.ApplicationFilter{Query: r.URL.Query().Get("q")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.svc.UpdateApplication(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) Orphaned(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.OrphanedApplications(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}
