package port

import (
	"context"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
)

// TechnologyFilter narrows FindAll. Zero values match everything.
type TechnologyFilter struct {
	Query  string
	Status domain.SupportStatus
}

type ServerFilter struct {
	Query  string
	Status domain.ServerStatus
}

type ApplicationFilter struct {
	Query string
}

type RemediationFilter struct {
	ServerID     string
	TechnologyID string
	Status       domain.RemediationStatus
}

type TechnologyRepository interface {
	Save(ctx context.Context, tech *domain.Technology) error
	FindByID(ctx context.Context, id string) (*domain.Technology, error)
	FindAll(ctx context.Context, filter TechnologyFilter) ([]*domain.Technology, error)
	Update(ctx context.Context, tech *domain.Technology) error
}

type ServerRepository interface {
	Save(ctx context.Context, server *domain.Server) error
	FindByID(ctx context.Context, id string) (*domain.Server, error)
	FindAll(ctx context.Context, filter ServerFilter) ([]*domain.Server, error)
	Update(ctx context.Context, server *domain.Server) error
}

type ApplicationRepository interface {
	Save(ctx context.Context, app *domain.Application) error
	FindByID(ctx context.Context, id string) (*domain.Application, error)
	FindAll(ctx context.Context, filter ApplicationFilter) ([]*domain.Application, error)
	Update(ctx context.Context, app *domain.Application) error
}

type RemediationRepository interface {
	Save(ctx context.Context, r *domain.Remediation) error
	FindByID(ctx context.Context, id string) (*domain.Remediation, error)
	FindAll(ctx context.Context, filter RemediationFilter) ([]*domain.Remediation, error)
	Update(ctx context.Context, r *domain.Remediation) error
	Delete(ctx context.Context, id string) error
}

// Store groups the repositories of one data source. The source is chosen
// once at startup and never switched per query.
type Store interface {
	Technologies() TechnologyRepository
	Servers() ServerRepository
	Applications() ApplicationRepository
	Remediations() RemediationRepository
}
