package fixture

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

var (
	_ port.Store                 = (*Store)(nil)
	_ port.TechnologyRepository  = (*TechnologyRepo)(nil)
	_ port.ServerRepository      = (*ServerRepo)(nil)
	_ port.ApplicationRepository = (*ApplicationRepo)(nil)
	_ port.RemediationRepository = (*RemediationRepo)(nil)
)

// Store is a process-local data source seeded from fixtures. Writes are
// kept in memory only.
type Store struct {
	technologies *TechnologyRepo
	servers      *ServerRepo
	applications *ApplicationRepo
	remediations *RemediationRepo
}

func NewStore(data *Data) (*Store, error) {
	s := &Store{
		technologies: &TechnologyRepo{t: newTable(cloneTechnology)},
		servers:      &ServerRepo{t: newTable(cloneServer)},
		applications: &ApplicationRepo{t: newTable(cloneApplication)},
		remediations: &RemediationRepo{t: newTable(cloneRemediation)},
	}
	if data == nil {
		return s, nil
	}
	ctx := context.Background()
	now := time.Now()
	for _, t := range data.Technologies {
		stampZero(&t.CreatedAt, &t.UpdatedAt, now)
		if err := s.technologies.Save(ctx, &t); err != nil {
			return nil, err
		}
	}
	for _, srv := range data.Servers {
		stampZero(&srv.CreatedAt, &srv.UpdatedAt, now)
		if err := s.servers.Save(ctx, &srv); err != nil {
			return nil, err
		}
	}
	for _, a := range data.Applications {
		stampZero(&a.CreatedAt, &a.UpdatedAt, now)
		if err := s.applications.Save(ctx, &a); err != nil {
			return nil, err
		}
	}
	for _, r := range data.Remediations {
		stampZero(&r.CreatedAt, &r.UpdatedAt, now)
		if err := s.remediations.Save(ctx, &r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Technologies() port.TechnologyRepository  { return s.technologies }
func (s *Store) Servers() port.ServerRepository           { return s.servers }
func (s *Store) Applications() port.ApplicationRepository { return s.applications }
func (s *Store) Remediations() port.RemediationRepository { return s.remediations }

func stampZero(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = now
	}
}

type TechnologyRepo struct {
	t *table[domain.Technology]
}

func sameRelease(tech *domain.Technology) func(domain.Technology) bool {
	return func(existing domain.Technology) bool {
		return strings.ToLower(existing.Name) == strings.ToLower(tech.Name) &&
			strings.ToLower(existing.Version) == strings.ToLower(tech.Version)
	}
}

func (r *TechnologyRepo) Save(ctx context.Context, tech *domain.Technology) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.t.insert(tech.ID, *tech, sameRelease(tech))
}

func (r *TechnologyRepo) FindByID(ctx context.Context, id string) (*domain.Technology, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := r.t.get(id)
	if !ok {
		return nil, domain.ErrTechnologyNotFound
	}
	return &t, nil
}

func (r *TechnologyRepo) FindAll(ctx context.Context, filter port.TechnologyFilter) ([]*domain.Technology, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := r.t.list(func(t domain.Technology) bool {
		if filter.Status != "" && t.SupportStatus != filter.Status {
			return false
		}
		return matches(filter.Query, t.Name, t.Version, t.Category)
	})
	return pointers(rows), nil
}

func (r *TechnologyRepo) Update(ctx context.Context, tech *domain.Technology) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	found, err := r.t.replace(tech.ID, *tech, sameRelease(tech))
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrTechnologyNotFound
	}
	return nil
}

type ServerRepo struct {
	t *table[domain.Server]
}

func (r *ServerRepo) Save(ctx context.Context, server *domain.Server) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.t.insert(server.ID, *server, nil)
}

func (r *ServerRepo) FindByID(ctx context.Context, id string) (*domain.Server, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := r.t.get(id)
	if !ok {
		return nil, domain.ErrServerNotFound
	}
	return &s, nil
}

func (r *ServerRepo) FindAll(ctx context.Context, filter port.ServerFilter) ([]*domain.Server, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := r.t.list(func(s domain.Server) bool {
		if filter.Status != "" && s.Status != filter.Status {
			return false
		}
		return matches(filter.Query, s.Name, s.Owner, s.Team)
	})
	return pointers(rows), nil
}

func (r *ServerRepo) Update(ctx context.Context, server *domain.Server) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	found, err := r.t.replace(server.ID, *server, nil)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrServerNotFound
	}
	return nil
}

type ApplicationRepo struct {
	t *table[domain.Application]
}

func (r *ApplicationRepo) Save(ctx context.Context, app *domain.Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.t.insert(app.ID, *app, nil)
}

func (r *ApplicationRepo) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, ok := r.t.get(id)
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	return &a, nil
}

func (r *ApplicationRepo) FindAll(ctx context.Context, filter port.ApplicationFilter) ([]*domain.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := r.t.list(func(a domain.Application) bool {
		return matches(filter.Query, a.Name, a.Owner, a.Team, a.Description)
	})
	return pointers(rows), nil
}

func (r *ApplicationRepo) Update(ctx context.Context, app *domain.Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	found, err := r.t.replace(app.ID, *app, nil)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrApplicationNotFound
	}
	return nil
}

type RemediationRepo struct {
	t *table[domain.Remediation]
}

func (r *RemediationRepo) Save(ctx context.Context, rem *domain.Remediation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.t.insert(rem.ID, *rem, nil)
}

func (r *RemediationRepo) FindByID(ctx context.Context, id string) (*domain.Remediation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rem, ok := r.t.get(id)
	if !ok {
		return nil, domain.ErrRemediationNotFound
	}
	return &rem, nil
}

func (r *RemediationRepo) FindAll(ctx context.Context, filter port.RemediationFilter) ([]*domain.Remediation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := r.t.list(func(rem domain.Remediation) bool {
		return (filter.ServerID == "" || rem.ServerID == filter.ServerID) &&
			(filter.TechnologyID == "" || rem.TechnologyID == filter.TechnologyID) &&
			(filter.Status == "" || rem.Status == filter.Status)
	})
	return pointers(rows), nil
}

func (r *RemediationRepo) Update(ctx context.Context, rem *domain.Remediation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	found, err := r.t.replace(rem.ID, *rem, nil)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrRemediationNotFound
	}
	return nil
}

func (r *RemediationRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.t.remove(id) {
		return domain.ErrRemediationNotFound
	}
	return nil
}

func pointers[T any](rows []T) []*T {
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}

func cloneDate(d *domain.Date) *domain.Date {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}

func cloneTechnology(t domain.Technology) domain.Technology {
	t.StandardSupportEndDate = cloneDate(t.StandardSupportEndDate)
	t.ExtendedSupportEndDate = cloneDate(t.ExtendedSupportEndDate)
	t.ExtendedSecurityUpdateEndDate = cloneDate(t.ExtendedSecurityUpdateEndDate)
	return t
}

func cloneServer(s domain.Server) domain.Server {
	s.Technologies = cloneIDs(s.Technologies)
	return s
}

func cloneApplication(a domain.Application) domain.Application {
	a.Servers = cloneIDs(a.Servers)
	a.Technologies = cloneIDs(a.Technologies)
	return a
}

func cloneRemediation(r domain.Remediation) domain.Remediation {
	r.StartDate = cloneDate(r.StartDate)
	r.ActualCompletionDate = cloneDate(r.ActualCompletionDate)
	return r
}
