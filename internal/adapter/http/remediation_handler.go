package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
	"github.com/chiwei-platform/lifecycle-tracker/internal/service"
)

type RemediationHandler struct {
	svc *service.RemediationService
}

func NewRemediationHandler(svc *service.RemediationService) *RemediationHandler {
	return &RemediationHandler{svc: svc}
}

func (h *RemediationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRemediationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.svc.CreateRemediation(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *RemediationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	views, err := h.svc.ListRemediations(r.Context(), port.RemediationFilter{
		ServerID:     q.Get("server_id"),
		TechnologyID: q.Get("technology_id"),
		Status:       domain.RemediationStatus(q.Get("status")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *RemediationHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetRemediation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RemediationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateRemediationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.svc.UpdateRemediation(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RemediationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteRemediation(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
