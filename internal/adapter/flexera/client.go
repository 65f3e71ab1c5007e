package flexera

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

var _ port.Catalog = (*Client)(nil)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Client reads software products and discovered instances from the Flexera
// catalog API. Every response, list pages and single entries alike, is
// cached for the configured TTL under its own key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *ttlcache.Cache[string, any]
	observe    func(outcome string)
}

type Option func(*Client)

// WithObserver registers a callback run once per upstream call with
// "ok", "error" or "cached".
func WithObserver(fn func(outcome string)) Option {
	return func(c *Client) { c.observe = fn }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL, apiKey string, cacheTTL time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:   ttlcache.New(ttlcache.WithTTL[string, any](cacheTTL)),
		observe: func(string) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start runs expired-entry cleanup until ctx is done.
func (c *Client) Start(ctx context.Context) {
	go c.cache.Start()
	<-ctx.Done()
	c.cache.Stop()
}

func (c *Client) ListProducts(ctx context.Context, page, perPage int) (port.CatalogPage, error) {
	page, perPage = clampPaging(page, perPage)
	key := fmt.Sprintf("products/%d/%d", page, perPage)
	return cached(c, key, func() (port.CatalogPage, error) {
		var res listResponse[port.CatalogProduct]
		if err := c.get(ctx, "/products", pageQuery(page, perPage), &res); err != nil {
			return port.CatalogPage{}, err
		}
		out := port.CatalogPage{
			Products: res.Data,
			Total:    res.Meta.Total,
			Page:     res.Meta.Page,
			PerPage:  res.Meta.PerPage,
		}
		if out.Products == nil {
			out.Products = []port.CatalogProduct{}
		}
		return out, nil
	})
}

func (c *Client) GetProduct(ctx context.Context, id string) (*port.CatalogProduct, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrInvalidInput)
	}
	p, err := cached(c, "product/"+id, func() (port.CatalogProduct, error) {
		var res itemResponse[port.CatalogProduct]
		if err := c.get(ctx, "/products/"+url.PathEscape(id), nil, &res); err != nil {
			return port.CatalogProduct{}, err
		}
		return res.Data, nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListInstances(ctx context.Context, page, perPage int) (port.CatalogInstancePage, error) {
	page, perPage = clampPaging(page, perPage)
	key := fmt.Sprintf("instances/%d/%d", page, perPage)
	return cached(c, key, func() (port.CatalogInstancePage, error) {
		var res listResponse[instance]
		if err := c.get(ctx, "/instances", pageQuery(page, perPage), &res); err != nil {
			return port.CatalogInstancePage{}, err
		}
		out := port.CatalogInstancePage{
			Instances: make([]port.CatalogInstance, 0, len(res.Data)),
			Total:     res.Meta.Total,
			Page:      res.Meta.Page,
			PerPage:   res.Meta.PerPage,
		}
		for _, inst := range res.Data {
			out.Instances = append(out.Instances, inst.toPort())
		}
		return out, nil
	})
}

func (c *Client) GetInstance(ctx context.Context, id string) (*port.CatalogInstance, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: instance id is required", domain.ErrInvalidInput)
	}
	inst, err := cached(c, "instance/"+id, func() (port.CatalogInstance, error) {
		var res itemResponse[instance]
		if err := c.get(ctx, "/instances/"+url.PathEscape(id), nil, &res); err != nil {
			return port.CatalogInstance{}, err
		}
		return res.Data.toPort(), nil
	})
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// cached serves key from the cache or stores what load returns. Failed loads
// are not cached.
func cached[T any](c *Client, key string, load func() (T, error)) (T, error) {
	var zero T
	if c.apiKey == "" {
		return zero, domain.ErrCatalogDisabled
	}
	if item := c.cache.Get(key); item != nil {
		if v, ok := item.Value().(T); ok {
			c.observe("cached")
			return v, nil
		}
	}
	v, err := load()
	if err != nil {
		c.observe("error")
		return zero, err
	}
	c.observe("ok")
	c.cache.Set(key, v, ttlcache.DefaultTTL)
	return v, nil
}

func clampPaging(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

func pageQuery(page, perPage int) url.Values {
	return url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("flexera: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("flexera: request failed: %w: %w", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("flexera: %s: %w", path, domain.ErrCatalogItemNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("flexera: unexpected status %d: %w", resp.StatusCode, domain.ErrUnavailable)
	default:
		return fmt.Errorf("flexera: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("flexera: decode response: %w", err)
	}
	return nil
}

// Response envelopes (only the fields we use).

type listResponse[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		Total   int `json:"total"`
		Page    int `json:"page"`
		PerPage int `json:"per_page"`
	} `json:"meta"`
}

type itemResponse[T any] struct {
	Data T `json:"data"`
}

type instance struct {
	ID                string            `json:"id"`
	Hostname          string            `json:"hostname"`
	IPAddress         string            `json:"ip_address"`
	OperatingSystem   string            `json:"operating_system"`
	OSVersion         string            `json:"os_version"`
	LastSeen          *time.Time        `json:"last_seen"`
	InstalledProducts installedProducts `json:"installed_products"`
}

func (i instance) toPort() port.CatalogInstance {
	ids := []string(i.InstalledProducts)
	if ids == nil {
		ids = []string{}
	}
	return port.CatalogInstance{
		ID:                i.ID,
		Hostname:          i.Hostname,
		IPAddress:         i.IPAddress,
		OperatingSystem:   i.OperatingSystem,
		OSVersion:         i.OSVersion,
		LastSeen:          i.LastSeen,
		InstalledProducts: ids,
	}
}

// installedProducts accepts either product ids or full product objects, both
// of which the API has been seen to send.
type installedProducts []string

func (p *installedProducts) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*p = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			ids = append(ids, id)
			continue
		}
		var product struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &product); err != nil {
			return fmt.Errorf("installed_products: %w", err)
		}
		ids = append(ids, product.ID)
	}
	*p = ids
	return nil
}
