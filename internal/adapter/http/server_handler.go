package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
	"github.com/chiwei-platform/lifecycle-tracker/internal/service"
)

type ServerHandler struct {
	svc *service.ServerService
}

func NewServerHandler(svc *service.ServerService) *ServerHandler {
	return &ServerHandler{svc: svc}
}

func (h *ServerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateServerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	srv, err := h.svc.CreateServer(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, srv)
}

func (h *ServerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	servers, err := h.svc.ListServers(r.Context(), port.ServerFilter{
		Query:  q.Get("q"),
		Status: domain.ServerStatus(q.Get("status")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, servers)
}

func (h *ServerHandler) Get(w http.ResponseWriter, r *http.Request) {
	srv, err := h.svc.GetServer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, srv)
}

func (h *ServerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateServerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	srv, err := h.svc.UpdateServer(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, srv)
}

func (h *ServerHandler) Technologies(w http.ResponseWriter, r *http.Request) {
	techs, err := h.svc.ServerTechnologies(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, techs)
}
