package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
	"github.com/chiwei-platform/lifecycle-tracker/internal/stats"
)

type ApplicationService struct {
	appRepo    port.ApplicationRepository
	serverRepo port.ServerRepository
	techRepo   port.TechnologyRepository
	now        func() time.Time
}

func NewApplicationService(appRepo port.ApplicationRepository, serverRepo port.ServerRepository, techRepo port.TechnologyRepository) *ApplicationService {
	return &ApplicationService{appRepo: appRepo, serverRepo: serverRepo, techRepo: techRepo, now: time.Now}
}

type CreateApplicationRequest struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Owner        string             `json:"owner"`
	Team         string             `json:"team"`
	Criticality  domain.Criticality `json:"criticality"`
	Servers      []string           `json:"servers"`
	Technologies []string           `json:"technologies"`
}

type UpdateApplicationRequest CreateApplicationRequest

func (s *ApplicationService) CreateApplication(ctx context.Context, req CreateApplicationRequest) (*domain.Application, error) {
	now := s.now()
	app := &domain.Application{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyApplicationFields(app, req)
	if err := s.check(ctx, app); err != nil {
		return nil, err
	}
	if err := s.appRepo.Save(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// GetApplication returns the application with its servers and technologies
// resolved. References that no longer resolve are left out of the lists.
func (s *ApplicationService) GetApplication(ctx context.Context, id string) (*domain.ApplicationDetail, error) {
	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var (
		servers []*domain.Server
		techs   []*domain.Technology
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		servers, err = s.serverRepo.FindAll(gctx, port.ServerFilter{})
		return err
	})
	g.Go(func() (err error) {
		techs, err = s.techRepo.FindAll(gctx, port.TechnologyFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	serverByID := lo.KeyBy(values(servers), func(s domain.Server) string { return s.ID })
	techByID := lo.KeyBy(values(techs), func(t domain.Technology) string { return t.ID })
	return &domain.ApplicationDetail{
		Application: *app,
		ServerList: lo.FilterMap(lo.Uniq(app.Servers), func(id string, _ int) (domain.Server, bool) {
			srv, ok := serverByID[id]
			return srv, ok
		}),
		TechnologyList: stats.Resolve(app.Technologies, techByID),
	}, nil
}

func (s *ApplicationService) ListApplications(ctx context.Context, filter port.ApplicationFilter) ([]*domain.Application, error) {
	return s.appRepo.FindAll(ctx, filter)
}

func (s *ApplicationService) UpdateApplication(ctx context.Context, id string, req UpdateApplicationRequest) (*domain.Application, error) {
	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyApplicationFields(app, CreateApplicationRequest(req))
	if err := s.check(ctx, app); err != nil {
		return nil, err
	}
	app.UpdatedAt = s.now()
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// OrphanedApplications lists applications with neither a server nor a
// technology that resolves.
func (s *ApplicationService) OrphanedApplications(ctx context.Context) ([]domain.Application, error) {
	var (
		apps    []*domain.Application
		servers []*domain.Server
		techs   []*domain.Technology
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		apps, err = s.appRepo.FindAll(gctx, port.ApplicationFilter{})
		return err
	})
	g.Go(func() (err error) {
		servers, err = s.serverRepo.FindAll(gctx, port.ServerFilter{})
		return err
	})
	g.Go(func() (err error) {
		techs, err = s.techRepo.FindAll(gctx, port.TechnologyFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats.OrphanedApplications(values(apps), values(servers), values(techs)), nil
}

func (s *ApplicationService) check(ctx context.Context, app *domain.Application) error {
	if err := domain.ValidateApplication(app); err != nil {
		return err
	}
	if err := requireServers(ctx, s.serverRepo, app.Servers); err != nil {
		return err
	}
	return requireTechnologies(ctx, s.techRepo, app.Technologies)
}

func applyApplicationFields(app *domain.Application, req CreateApplicationRequest) {
	app.Name = req.Name
	app.Description = req.Description
	app.Owner = req.Owner
	app.Team = req.Team
	app.Criticality = req.Criticality
	app.Servers = req.Servers
	app.Technologies = req.Technologies
}
