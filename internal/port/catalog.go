package port

import (
	"context"
	"time"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
)

// CatalogProduct is a software product as published by an external catalog.
type CatalogProduct struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Version             string       `json:"version"`
	Vendor              string       `json:"vendor"`
	EOLDate             *domain.Date `json:"eol_date,omitempty"`
	EOSDate             *domain.Date `json:"eos_date,omitempty"`
	ExtendedSupportDate *domain.Date `json:"extended_support_date,omitempty"`
	RiskLevel           string       `json:"risk_level,omitempty"`
}

type CatalogPage struct {
	Products []CatalogProduct `json:"products"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
}

// CatalogInstance is a host the catalog has discovered, with the ids of the
// products installed on it.
type CatalogInstance struct {
	ID                string     `json:"id"`
	Hostname          string     `json:"hostname"`
	IPAddress         string     `json:"ip_address"`
	OperatingSystem   string     `json:"operating_system"`
	OSVersion         string     `json:"os_version"`
	LastSeen          *time.Time `json:"last_seen,omitempty"`
	InstalledProducts []string   `json:"installed_products"`
}

type CatalogInstancePage struct {
	Instances []CatalogInstance `json:"instances"`
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	PerPage   int               `json:"per_page"`
}

// Catalog reads products with end-of-support dates, and the hosts they are
// installed on, from an external source. Lookups by id return an error
// wrapping domain.ErrNotFound when the catalog has no such entry.
type Catalog interface {
	// ListProducts returns one page. Out-of-range paging is clamped, not rejected.
	ListProducts(ctx context.Context, page, perPage int) (CatalogPage, error)
	GetProduct(ctx context.Context, id string) (*CatalogProduct, error)
	// ListInstances returns one page of discovered hosts.
	ListInstances(ctx context.Context, page, perPage int) (CatalogInstancePage, error)
	GetInstance(ctx context.Context, id string) (*CatalogInstance, error)
}
