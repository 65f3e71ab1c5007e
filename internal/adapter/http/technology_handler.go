package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
	"github.com/chiwei-platform/lifecycle-tracker/internal/service"
)

type TechnologyHandler struct {
	svc *service.TechnologyService
}

func NewTechnologyHandler(svc *service.TechnologyService) *TechnologyHandler {
	return &TechnologyHandler{svc: svc}
}

func (h *TechnologyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTechnologyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tech, err := h.svc.CreateTechnology(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tech)
}

// List supports ?q= over name, version and category and ?status=.
func (h *TechnologyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	techs, err := h.svc.ListTechnologies(r.Context(), port.TechnologyFilter{
		Query:  q.Get("q"),
		Status: domain.SupportStatus(q.Get("status")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, techs)
}

func (h *TechnologyHandler) Get(w http.ResponseWriter, r *http.Request) {
	tech, err := h.svc.GetTechnology(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tech)
}

func (h *TechnologyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateTechnologyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tech, err := h.svc.UpdateTechnology(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tech)
}
