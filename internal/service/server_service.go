package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
	"github.com/chiwei-platform/lifecycle-tracker/internal/stats"
)

type ServerService struct {
	serverRepo port.ServerRepository
	techRepo   port.TechnologyRepository
	now        func() time.Time
}

func NewServerService(serverRepo port.ServerRepository, techRepo port.TechnologyRepository) *ServerService {
	return &ServerService{serverRepo: serverRepo, techRepo: techRepo, now: time.Now}
}

type CreateServerRequest struct {
	Name         string              `json:"name"`
	Status       domain.ServerStatus `json:"status"`
	Owner        string              `json:"owner"`
	Team         string              `json:"team"`
	Comments     string              `json:"comments"`
	Technologies []string            `json:"technologies"`
}

type UpdateServerRequest CreateServerRequest

func (s *ServerService) CreateServer(ctx context.Context, req CreateServerRequest) (*domain.Server, error) {
	now := s.now()
	server := &domain.Server{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyServerFields(server, req)
	if err := s.check(ctx, server); err != nil {
		return nil, err
	}
	if err := s.serverRepo.Save(ctx, server); err != nil {
		return nil, err
	}
	return server, nil
}

func (s *ServerService) GetServer(ctx context.Context, id string) (*domain.Server, error) {
	return s.serverRepo.FindByID(ctx, id)
}

func (s *ServerService) ListServers(ctx context.Context, filter port.ServerFilter) ([]*domain.Server, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: status %q is not a server status", domain.ErrInvalidInput, filter.Status)
	}
	return s.serverRepo.FindAll(ctx, filter)
}

func (s *ServerService) UpdateServer(ctx context.Context, id string, req UpdateServerRequest) (*domain.Server, error) {
	server, err := s.serverRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyServerFields(server, CreateServerRequest(req))
	if err := s.check(ctx, server); err != nil {
		return nil, err
	}
	server.UpdatedAt = s.now()
	if err := s.serverRepo.Update(ctx, server); err != nil {
		return nil, err
	}
	return server, nil
}

// ServerTechnologies returns the technologies a server references, in
// reference order. Ids that no longer resolve are skipped.
func (s *ServerService) ServerTechnologies(ctx context.Context, id string) ([]domain.Technology, error) {
	server, err := s.serverRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	techs, err := s.techRepo.FindAll(ctx, port.TechnologyFilter{})
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(values(techs), func(t domain.Technology) string { return t.ID })
	return stats.Resolve(server.Technologies, byID), nil
}

func (s *ServerService) check(ctx context.Context, server *domain.Server) error {
	if err := domain.ValidateServer(server); err != nil {
		return err
	}
	return requireTechnologies(ctx, s.techRepo, server.Technologies)
}

func applyServerFields(srv *domain.Server, req CreateServerRequest) {
	srv.Name = req.Name
	srv.Status = req.Status
	srv.Owner = req.Owner
	srv.Team = req.Team
	srv.Comments = req.Comments
	srv.Technologies = req.Technologies
}
