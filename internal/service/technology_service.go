package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

type TechnologyService struct {
	repo port.TechnologyRepository
	now  func() time.Time
}

func NewTechnologyService(repo port.TechnologyRepository) *TechnologyService {
	return &TechnologyService{repo: repo, now: time.Now}
}

type CreateTechnologyRequest struct {
	Name                          string               `json:"name"`
	Version                       string               `json:"version"`
	Category                      string               `json:"category"`
	SupportStatus                 domain.SupportStatus `json:"support_status"`
	SupportEndDate                domain.Date          `json:"support_end_date"`
	StandardSupportEndDate        *domain.Date         `json:"standard_support_end_date"`
	ExtendedSupportEndDate        *domain.Date         `json:"extended_support_end_date"`
	ExtendedSecurityUpdateEndDate *domain.Date         `json:"extended_security_update_end_date"`
}

// UpdateTechnologyRequest replaces every editable field.
type UpdateTechnologyRequest CreateTechnologyRequest

func (s *TechnologyService) CreateTechnology(ctx context.Context, req CreateTechnologyRequest) (*domain.Technology, error) {
	now := s.now()
	tech := &domain.Technology{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyTechnologyFields(tech, req)
	if err := domain.ValidateTechnology(tech); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tech); err != nil {
		return nil, err
	}
	return tech, nil
}

func (s *TechnologyService) GetTechnology(ctx context.Context, id string) (*domain.Technology, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TechnologyService) ListTechnologies(ctx context.Context, filter port.TechnologyFilter) ([]*domain.Technology, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: status %q is not a support status", domain.ErrInvalidInput, filter.Status)
	}
	return s.repo.FindAll(ctx, filter)
}

func (s *TechnologyService) UpdateTechnology(ctx context.Context, id string, req UpdateTechnologyRequest) (*domain.Technology, error) {
	tech, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyTechnologyFields(tech, CreateTechnologyRequest(req))
	if err := domain.ValidateTechnology(tech); err != nil {
		return nil, err
	}
	tech.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, tech); err != nil {
		return nil, err
	}
	return tech, nil
}

func applyTechnologyFields(t *domain.Technology, req CreateTechnologyRequest) {
	t.Name = req.Name
	t.Version = req.Version
	t.Category = req.Category
	t.SupportStatus = req.SupportStatus
	t.SupportEndDate = req.SupportEndDate
	t.StandardSupportEndDate = req.StandardSupportEndDate
	t.ExtendedSupportEndDate = req.ExtendedSupportEndDate
	t.ExtendedSecurityUpdateEndDate = req.ExtendedSecurityUpdateEndDate
}
