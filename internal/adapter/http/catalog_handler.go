package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/service"
)

type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Products lists one catalog page; ?page= and ?per_page= default when omitted.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := paging(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Products(r.Context(), page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) Instances(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := paging(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Instances(r.Context(), page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CatalogHandler) Instance(w http.ResponseWriter, r *http.Request) {
	inst, err := h.svc.Instance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

type importRequest struct {
	ProductIDs []string `json:"product_ids"`
}

// Import accepts an empty body to import the whole catalog.
func (h *CatalogHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil && !isEmptyBody(err) {
			writeError(w, r, err)
			return
		}
	}
	res, err := h.svc.Import(r.Context(), req.ProductIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type importInstancesRequest struct {
	InstanceIDs []string `json:"instance_ids"`
}

// ImportInstances accepts an empty body to import every instance.
func (h *CatalogHandler) ImportInstances(w http.ResponseWriter, r *http.Request) {
	var req importInstancesRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil && !isEmptyBody(err) {
			writeError(w, r, err)
			return
		}
	}
	res, err := h.svc.ImportInstances(r.Context(), req.InstanceIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// paging reads ?page= and ?per_page=, writing the error response itself.
func paging(w http.ResponseWriter, r *http.Request) (page, perPage int, ok bool) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		writeError(w, r, err)
		return 0, 0, false
	}
	perPage, err = intParam(r, "per_page", 0)
	if err != nil {
		writeError(w, r, err)
		return 0, 0, false
	}
	return page, perPage, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, name)
	}
	return n, nil
}

func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}
