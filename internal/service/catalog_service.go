package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

const (
	catalogPageSize = 100
	// ImportedCategory is given to technologies created from the catalog,
	// which carries no category of its own.
	ImportedCategory = "Uncategorized"
	syncTimeout      = 10 * time.Minute
)

// CatalogService reads the external catalog and turns its entries into
// tracked records. Products become technologies; discovered instances become
// servers linked to the technologies of their installed products.
type CatalogService struct {
	catalog    port.Catalog
	techRepo   port.TechnologyRepository
	serverRepo port.ServerRepository
	log        *zap.Logger
	now        func() time.Time
}

func NewCatalogService(catalog port.Catalog, techRepo port.TechnologyRepository, serverRepo port.ServerRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, techRepo: techRepo, serverRepo: serverRepo, log: log, now: time.Now}
}

// ImportResult reports what an import did with each requested product.
type ImportResult struct {
	Created []domain.Technology `json:"created"`
	// Existing holds product ids whose name and version are already tracked.
	Existing []string `json:"existing"`
	// Unknown holds requested ids the catalog does not list.
	Unknown []string `json:"unknown"`
	// Invalid holds product ids without the dates a technology needs.
	Invalid []string `json:"invalid"`
}

// InstanceImportResult reports what an instance import did with each
// requested instance.
type InstanceImportResult struct {
	Created []domain.Server `json:"created"`
	// Linked holds existing servers, matched by hostname, that gained
	// technology links.
	Linked []domain.Server `json:"linked"`
	// Unchanged holds instance ids whose server already had every link.
	Unchanged []string `json:"unchanged"`
	Unknown   []string `json:"unknown"`
	// Untracked holds installed product ids with no matching technology.
	Untracked []string `json:"untracked"`
}

func (s *CatalogService) Products(ctx context.Context, page, perPage int) (port.CatalogPage, error) {
	return s.catalog.ListProducts(ctx, page, perPage)
}

func (s *CatalogService) Product(ctx context.Context, id string) (*port.CatalogProduct, error) {
	return s.catalog.GetProduct(ctx, id)
}

func (s *CatalogService) Instances(ctx context.Context, page, perPage int) (port.CatalogInstancePage, error) {
	return s.catalog.ListInstances(ctx, page, perPage)
}

func (s *CatalogService) Instance(ctx context.Context, id string) (*port.CatalogInstance, error) {
	return s.catalog.GetInstance(ctx, id)
}

// Import creates a technology for each listed product that is not tracked
// yet. An empty productIDs imports the whole catalog.
func (s *CatalogService) Import(ctx context.Context, productIDs []string) (*ImportResult, error) {
	products, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Created:  []domain.Technology{},
		Existing: []string{},
		Unknown:  []string{},
		Invalid:  []string{},
	}
	if len(productIDs) > 0 {
		byID := lo.KeyBy(products, func(p port.CatalogProduct) string { return p.ID })
		wanted := domain.NormalizeIDs(productIDs)
		result.Unknown = lo.Filter(wanted, func(id string, _ int) bool {
			_, ok := byID[id]
			return !ok
		})
		products = lo.FilterMap(wanted, func(id string, _ int) (port.CatalogProduct, bool) {
			p, ok := byID[id]
			return p, ok
		})
	}

	existing, err := s.techRepo.FindAll(ctx, port.TechnologyFilter{})
	if err != nil {
		return nil, err
	}
	tracked := lo.SliceToMap(existing, func(t *domain.Technology) (string, bool) {
		return releaseKey(t.Name, t.Version), true
	})

	today := domain.DateOf(s.now())
	for _, p := range products {
		key := releaseKey(p.Name, p.Version)
		if tracked[key] {
			result.Existing = append(result.Existing, p.ID)
			continue
		}
		tech, ok := s.technologyFromProduct(p, today)
		if !ok {
			result.Invalid = append(result.Invalid, p.ID)
			continue
		}
		if err := s.techRepo.Save(ctx, tech); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				result.Existing = append(result.Existing, p.ID)
				continue
			}
			return nil, fmt.Errorf("import product %s: %w", p.ID, err)
		}
		tracked[key] = true
		result.Created = append(result.Created, *tech)
	}

	s.log.Info("catalog import finished",
		zap.Int("created", len(result.Created)),
		zap.Int("existing", len(result.Existing)),
		zap.Int("unknown", len(result.Unknown)),
		zap.Int("invalid", len(result.Invalid)),
	)
	return result, nil
}

// ImportInstances creates an active server for each listed instance whose
// hostname is not tracked yet, and links servers to the technologies of the
// products installed on them. A product maps to a technology by name and
// version; products with no such technology are reported, not created. An
// empty instanceIDs imports every instance. Existing links are never removed.
func (s *CatalogService) ImportInstances(ctx context.Context, instanceIDs []string) (*InstanceImportResult, error) {
	// Narrow the catalog to the requested instances
	instances, err := s.allInstances(ctx)
	if err != nil {
		return nil, err
	}
	result := &InstanceImportResult{
		Created:   []domain.Server{},
		Linked:    []domain.Server{},
		Unchanged: []string{},
		Unknown:   []string{},
		Untracked: []string{},
	}
	if len(instanceIDs) > 0 {
		byID := lo.KeyBy(instances, func(i port.CatalogInstance) string { return i.ID })
		wanted := domain.NormalizeIDs(instanceIDs)
		result.Unknown = lo.Filter(wanted, func(id string, _ int) bool {
			_, ok := byID[id]
			return !ok
		})
		instances = lo.FilterMap(wanted, func(id string, _ int) (port.CatalogInstance, bool) {
			i, ok := byID[id]
			return i, ok
		})
	}
	if len(instances) == 0 {
		return result, nil
	}

	// Index products, tracked releases and servers
	products, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}
	techs, err := s.techRepo.FindAll(ctx, port.TechnologyFilter{})
	if err != nil {
		return nil, err
	}
	servers, err := s.serverRepo.FindAll(ctx, port.ServerFilter{})
	if err != nil {
		return nil, err
	}
	productKeys := lo.SliceToMap(products, func(p port.CatalogProduct) (string, string) {
		return p.ID, releaseKey(p.Name, p.Version)
	})
	techByRelease := lo.SliceToMap(techs, func(t *domain.Technology) (string, string) {
		return releaseKey(t.Name, t.Version), t.ID
	})
	serverByHost := lo.SliceToMap(servers, func(sv *domain.Server) (string, *domain.Server) {
		return hostKey(sv.Name), sv
	})

	untracked := map[string]bool{}
	for _, inst := range instances {
		var techIDs []string
		for _, pid := range inst.InstalledProducts {
			techID, ok := techByRelease[productKeys[pid]]
			if !ok {
				untracked[pid] = true
				continue
			}
			techIDs = append(techIDs, techID)
		}

		// Create the server when the hostname is new
		now := s.now()
		server, exists := serverByHost[hostKey(inst.Hostname)]
		if !exists {
			server = &domain.Server{
				ID:           uuid.NewString(),
				Name:         strings.TrimSpace(inst.Hostname),
				Status:       domain.ServerStatusActive,
				Comments:     instanceComment(inst),
				Technologies: techIDs,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := domain.ValidateServer(server); err != nil {
				return nil, fmt.Errorf("import instance %s: %w", inst.ID, err)
			}
			if err := s.serverRepo.Save(ctx, server); err != nil {
				return nil, fmt.Errorf("import instance %s: %w", inst.ID, err)
			}
			serverByHost[hostKey(server.Name)] = server
			result.Created = append(result.Created, *server)
			continue
		}

		// Otherwise only add the missing links
		missing := lo.Without(lo.Uniq(techIDs), server.Technologies...)
		if len(missing) == 0 {
			result.Unchanged = append(result.Unchanged, inst.ID)
			continue
		}
		server.Technologies = append(server.Technologies, missing...)
		server.UpdatedAt = now
		if err := s.serverRepo.Update(ctx, server); err != nil {
			return nil, fmt.Errorf("link instance %s: %w", inst.ID, err)
		}
		result.Linked = append(result.Linked, *server)
	}
	result.Untracked = lo.Keys(untracked)
	slices.Sort(result.Untracked)

	s.log.Info("catalog instance import finished",
		zap.Int("created", len(result.Created)),
		zap.Int("linked", len(result.Linked)),
		zap.Int("unchanged", len(result.Unchanged)),
		zap.Int("unknown", len(result.Unknown)),
		zap.Int("untracked_products", len(result.Untracked)),
	)
	return result, nil
}

// StartSync imports the whole catalog on the cron schedule spec until ctx is
// done. It returns once the schedule is running.
func (s *CatalogService) StartSync(ctx context.Context, spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, syncTimeout)
		defer cancel()
		if _, err := s.Import(runCtx, nil); err != nil {
			s.log.Error("scheduled catalog sync failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%w: catalog sync schedule %q: %v", domain.ErrInvalidInput, spec, err)
	}
	c.Start()
	s.log.Info("catalog sync scheduled", zap.String("schedule", spec))
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}

func (s *CatalogService) allProducts(ctx context.Context) ([]port.CatalogProduct, error) {
	var all []port.CatalogProduct
	for page := 1; ; page++ {
		res, err := s.catalog.ListProducts(ctx, page, catalogPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Products...)
		perPage := res.PerPage
		if perPage <= 0 {
			perPage = catalogPageSize
		}
		if len(res.Products) == 0 || page*perPage >= res.Total {
			return all, nil
		}
	}
}

func (s *CatalogService) allInstances(ctx context.Context) ([]port.CatalogInstance, error) {
	var all []port.CatalogInstance
	for page := 1; ; page++ {
		res, err := s.catalog.ListInstances(ctx, page, catalogPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Instances...)
		perPage := res.PerPage
		if perPage <= 0 {
			perPage = catalogPageSize
		}
		if len(res.Instances) == 0 || page*perPage >= res.Total {
			return all, nil
		}
	}
}

func instanceComment(inst port.CatalogInstance) string {
	parts := lo.Compact([]string{
		strings.TrimSpace(inst.OperatingSystem + " " + inst.OSVersion),
		inst.IPAddress,
	})
	comment := "Imported from catalog instance " + inst.ID
	if len(parts) > 0 {
		comment += " (" + strings.Join(parts, ", ") + ")"
	}
	return comment
}

func hostKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// technologyFromProduct picks the initial status from the product dates as
// of today. Later status changes stay manual.
func (s *CatalogService) technologyFromProduct(p port.CatalogProduct, today domain.Date) (*domain.Technology, bool) {
	if p.EOLDate == nil || p.EOLDate.IsZero() {
		return nil, false
	}
	now := s.now()
	tech := &domain.Technology{
		ID:                            uuid.NewString(),
		Name:                          p.Name,
		Version:                       p.Version,
		Category:                      ImportedCategory,
		SupportEndDate:                *p.EOLDate,
		StandardSupportEndDate:        p.EOSDate,
		ExtendedSupportEndDate:        p.EOLDate,
		ExtendedSecurityUpdateEndDate: p.ExtendedSupportDate,
		CreatedAt:                     now,
		UpdatedAt:                     now,
	}
	status, known := tech.ExpectedStatus(today)
	if !known {
		status = domain.SupportStatusSS
	}
	tech.SupportStatus = status
	if err := domain.ValidateTechnology(tech); err != nil {
		return nil, false
	}
	return tech, true
}

func releaseKey(name, version string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "\x00" + strings.ToLower(strings.TrimSpace(version))
}
