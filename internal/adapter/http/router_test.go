package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chiwei-platform/lifecycle-tracker/internal/adapter/fixture"
	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/metrics"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
	"github.com/chiwei-platform/lifecycle-tracker/internal/service"
	"github.com/chiwei-platform/lifecycle-tracker/internal/stats"
)

type stubCatalog struct {
	page      port.CatalogPage
	instances port.CatalogInstancePage
	err       error
}

func (s *stubCatalog) ListProducts(_ context.Context, page, perPage int) (port.CatalogPage, error) {
	if s.err != nil {
		return port.CatalogPage{}, s.err
	}
	res := s.page
	res.Page = page
	if perPage > 0 {
		res.PerPage = perPage
	}
	return res, nil
}

func (s *stubCatalog) GetProduct(_ context.Context, id string) (*port.CatalogProduct, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.page.Products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrCatalogItemNotFound
}

func (s *stubCatalog) ListInstances(_ context.Context, page, _ int) (port.CatalogInstancePage, error) {
	if s.err != nil {
		return port.CatalogInstancePage{}, s.err
	}
	res := s.instances
	res.Page = page
	return res, nil
}

func (s *stubCatalog) GetInstance(_ context.Context, id string) (*port.CatalogInstance, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, i := range s.instances.Instances {
		if i.ID == id {
			return &i, nil
		}
	}
	return nil, domain.ErrCatalogItemNotFound
}

type unavailableServers struct{}

func (unavailableServers) Save(context.Context, *domain.Server) error   { return domain.ErrUnavailable }
func (unavailableServers) Update(context.Context, *domain.Server) error { return domain.ErrUnavailable }
func (unavailableServers) FindByID(context.Context, string) (*domain.Server, error) {
	return nil, domain.ErrUnavailable
}
func (unavailableServers) FindAll(context.Context, port.ServerFilter) ([]*domain.Server, error) {
	return nil, domain.ErrUnavailable
}

type storeWithServers struct {
	port.Store
	servers port.ServerRepository
}

func (s storeWithServers) Servers() port.ServerRepository { return s.servers }

type testEnv struct {
	handler http.Handler
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T, store port.Store, catalog port.Catalog, opts RouterOptions) *testEnv {
	t.Helper()
	if store == nil {
		data, err := fixture.Default()
		require.NoError(t, err)
		fs, err := fixture.NewStore(data)
		require.NoError(t, err)
		store = fs
	}
	if catalog == nil {
		catalog = &stubCatalog{err: domain.ErrCatalogDisabled}
	}
	m := metrics.New()
	opts.Metrics = m.Handler()
	opts.Observer = m
	log := zap.NewNop()

	h := NewRouter(
		NewTechnologyHandler(service.NewTechnologyService(store.Technologies())),
		NewServerHandler(service.NewServerService(store.Servers(), store.Technologies())),
		NewApplicationHandler(service.NewApplicationService(store.Applications(), store.Servers(), store.Technologies())),
		NewRemediationHandler(service.NewRemediationService(store.Remediations(), store.Servers(), store.Technologies())),
		NewDashboardHandler(service.NewDashboardService(store, m)),
		NewCatalogHandler(service.NewCatalogService(catalog, store.Technologies(), store.Servers(), log)),
		opts,
		log,
	)
	return &testEnv{handler: h, metrics: m}
}

type response struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var resp response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, nil, nil, RouterOptions{APIToken: "secret"})
	rec, resp := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(resp.Data))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t, nil, nil, RouterOptions{APIToken: "secret"})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/technologies", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", resp.Error)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/technologies", nil)
	req.Header.Set("X-API-Key", "secret")
	ok := httptest.NewRecorder()
	env.handler.ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)
}

func TestTechnologyRoutes(t *testing.T) {
	env := newTestEnv(t, nil, nil, RouterOptions{})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/technologies?status=EOL", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var techs []domain.Technology
	require.NoError(t, json.Unmarshal(resp.Data, &techs))
	assert.Len(t, techs, 6)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/technologies?status=Retired", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/technologies/t404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = env.do(t, http.MethodPost, "/api/v1/technologies", `{
		"name": "Ubuntu", "version": "20.04", "category": "Operating System",
		"support_status": "SS", "support_end_date": "2025-04-30"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Technology
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "2025-04-30", created.SupportEndDate.String())

	rec, _ = env.do(t, http.MethodPost, "/api/v1/technologies", `{
		"name": "ubuntu", "version": "20.04", "support_status": "SS", "support_end_date": "2025-04-30"
	}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp = env.do(t, http.MethodPost, "/api/v1/technologies", `{"name": "x", "support_end_date": "30/04/2025"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "invalid input")

	rec, _ = env.do(t, http.MethodPut, "/api/v1/technologies/"+created.ID, `{
		"name": "Ubuntu", "version": "20.04", "category": "Operating System",
		"support_status": "ES", "support_end_date": "2030-04-30"
	}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerRoutes(t *testing.T) {
	env := newTestEnv(t, nil, nil, RouterOptions{})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/servers/s1/technologies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var techs []domain.Technology
	require.NoError(t, json.Unmarshal(resp.Data, &techs))
	require.Len(t, techs, 4)
	assert.Equal(t, "t1", techs[0].ID)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/servers", `{"name": "NEW01", "status": "Active", "technologies": ["t999"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = env.do(t, http.MethodGet, "/api/v1/servers?q=infrastructure", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var servers []domain.Server
	require.NoError(t, json.Unmarshal(resp.Data, &servers))
	assert.Len(t, servers, 3)
}

func TestApplicationRoutes(t *testing.T) {
	env := newTestEnv(t, nil, nil, RouterOptions{})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/applications/orphaned", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var orphaned []domain.Application
	require.NoError(t, json.Unmarshal(resp.Data, &orphaned))
	require.Len(t, orphaned, 1)
	assert.Equal(t, "a8", orphaned[0].ID)

	rec, resp = env.do(t, http.MethodGet, "/api/v1/applications/a2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail domain.ApplicationDetail
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	assert.Len(t, detail.ServerList, 2)
	assert.Len(t, detail.TechnologyList, 4)
}

func TestRemediationRoutes(t *testing.T) {
	env := newTestEnv(t, nil, nil, RouterOptions{})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/remediations?status=Completed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var views []domain.RemediationView
	require.NoError(t, json.Unmarshal(resp.Data, &views))
	assert.Len(t, views, 3)
	for _, v := range views {
		assert.False(t, v.Overdue)
	}

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/remediations/r1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(t, http.MethodDelete, "/api/v1/remediations/r1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/remediations", `{
		"server_id": "s1", "status": "Not started", "assigned_to": "Sam",
		"remediation_type": "Upgrade", "start_date": "2024-09-01", "target_completion_date": "2024-08-01"
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardRoute(t *testing.T) {
	env := newTestEnv(t, nil, nil, RouterOptions{})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary stats.Summary
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Equal(t, 17, summary.Totals.Technologies)
	assert.Equal(t, 3, summary.Totals.ExposedServers)

	// The same inventory always renders the same document.
	_, again := env.do(t, http.MethodGet, "/api/v1/dashboard", "")
	assert.Equal(t, string(resp.Data), string(again.Data))

	rec, resp = env.do(t, http.MethodGet, "/api/v1/reports/status-drift", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(string(resp.Data), "["))
}

func TestDashboardRoute_BackendUnavailable(t *testing.T) {
	data, err := fixture.Default()
	require.NoError(t, err)
	fs, err := fixture.NewStore(data)
	require.NoError(t, err)
	env := newTestEnv(t, storeWithServers{Store: fs, servers: unavailableServers{}}, nil, RouterOptions{})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/dashboard", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, retryAfterSeconds, rec.Header().Get("Retry-After"))
	assert.NotEmpty(t, resp.Error)
}

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t, nil, nil, RouterOptions{})
	rec, resp := env.do(t, http.MethodGet, "/api/v1/catalog/products", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, resp.Error, "catalog integration disabled")

	eol := domain.NewDate(2030, 4, 30)
	catalog := &stubCatalog{page: port.CatalogPage{
		Products: []port.CatalogProduct{{ID: "p1", Name: "Ubuntu", Version: "20.04", EOLDate: &eol}},
		Total:    1,
		PerPage:  10,
	}}
	env = newTestEnv(t, nil, catalog, RouterOptions{})

	rec, _ = env.do(t, http.MethodGet, "/api/v1/catalog/products?page=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = env.do(t, http.MethodGet, "/api/v1/catalog/products?page=1&per_page=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page port.CatalogPage
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.Equal(t, 5, page.PerPage)
	assert.Len(t, page.Products, 1)

	rec, resp = env.do(t, http.MethodPost, "/api/v1/catalog/import", `{"product_ids": ["p1", "p2"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var result service.ImportResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Len(t, result.Created, 1)
	assert.Equal(t, []string{"p2"}, result.Unknown)

	rec, resp = env.do(t, http.MethodPost, "/api/v1/catalog/import", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, []string{"p1"}, result.Existing)
}

func TestCatalogInstanceRoutes(t *testing.T) {
	env := newTestEnv(t, nil, nil, RouterOptions{})
	for _, path := range []string{"/api/v1/catalog/instances", "/api/v1/catalog/instances/i1", "/api/v1/catalog/products/p1"} {
		rec, _ := env.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}

	eol := domain.NewDate(2023, 10, 10)
	catalog := &stubCatalog{
		page: port.CatalogPage{
			Products: []port.CatalogProduct{{ID: "p1", Name: "Windows Server", Version: "2012 R2", EOLDate: &eol}},
			Total:    1,
			PerPage:  10,
		},
		instances: port.CatalogInstancePage{
			Instances: []port.CatalogInstance{
				{ID: "i1", Hostname: "NEWSRV01", InstalledProducts: []string{"p1"}},
			},
			Total:   1,
			PerPage: 10,
		},
	}
	env = newTestEnv(t, nil, catalog, RouterOptions{})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/catalog/products/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var product port.CatalogProduct
	require.NoError(t, json.Unmarshal(resp.Data, &product))
	assert.Equal(t, "Windows Server", product.Name)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/catalog/products/p9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/catalog/instances?per_page=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = env.do(t, http.MethodGet, "/api/v1/catalog/instances?page=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page port.CatalogInstancePage
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	require.Len(t, page.Instances, 1)
	assert.Equal(t, []string{"p1"}, page.Instances[0].InstalledProducts)

	rec, resp = env.do(t, http.MethodGet, "/api/v1/catalog/instances/i1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var inst port.CatalogInstance
	require.NoError(t, json.Unmarshal(resp.Data, &inst))
	assert.Equal(t, "NEWSRV01", inst.Hostname)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/catalog/instances/i9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = env.do(t, http.MethodPost, "/api/v1/catalog/instances/import", `{"instance_ids": ["i1", "i2"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var result service.InstanceImportResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	require.Len(t, result.Created, 1)
	assert.Equal(t, []string{"t1"}, result.Created[0].Technologies)
	assert.Equal(t, []string{"i2"}, result.Unknown)

	rec, resp = env.do(t, http.MethodPost, "/api/v1/catalog/instances/import", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, []string{"i1"}, result.Unchanged)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil, nil, RouterOptions{})
	env.do(t, http.MethodGet, "/api/v1/technologies/t1", "")
	env.do(t, http.MethodGet, "/api/v1/dashboard", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `route="/api/v1/technologies/{id}`)
	assert.NotContains(t, body, `route="/api/v1/technologies/t1`)
	assert.Contains(t, body, "lifecycle_eol_exposed_servers 3")
}
