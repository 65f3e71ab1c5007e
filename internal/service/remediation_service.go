package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

type RemediationService struct {
	remRepo    port.RemediationRepository
	serverRepo port.ServerRepository
	techRepo   port.TechnologyRepository
	now        func() time.Time
}

func NewRemediationService(remRepo port.RemediationRepository, serverRepo port.ServerRepository, techRepo port.TechnologyRepository) *RemediationService {
	return &RemediationService{remRepo: remRepo, serverRepo: serverRepo, techRepo: techRepo, now: time.Now}
}

type CreateRemediationRequest struct {
	ServerID             string                   `json:"server_id"`
	TechnologyID         string                   `json:"technology_id"`
	Status               domain.RemediationStatus `json:"status"`
	AssignedTo           string                   `json:"assigned_to"`
	RemediationType      domain.RemediationType   `json:"remediation_type"`
	StartDate            *domain.Date             `json:"start_date"`
	TargetCompletionDate domain.Date              `json:"target_completion_date"`
	ActualCompletionDate *domain.Date             `json:"actual_completion_date"`
	Comments             string                   `json:"comments"`
}

type UpdateRemediationRequest CreateRemediationRequest

func (s *RemediationService) today() domain.Date {
	return domain.DateOf(s.now())
}

func (s *RemediationService) CreateRemediation(ctx context.Context, req CreateRemediationRequest) (*domain.RemediationView, error) {
	now := s.now()
	rem := &domain.Remediation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.applyFields(rem, req)
	if err := s.check(ctx, rem); err != nil {
		return nil, err
	}
	if err := s.remRepo.Save(ctx, rem); err != nil {
		return nil, err
	}
	view := domain.NewRemediationView(*rem, s.today())
	return &view, nil
}

func (s *RemediationService) GetRemediation(ctx context.Context, id string) (*domain.RemediationView, error) {
	rem, err := s.remRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := domain.NewRemediationView(*rem, s.today())
	return &view, nil
}

func (s *RemediationService) ListRemediations(ctx context.Context, filter port.RemediationFilter) ([]domain.RemediationView, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: status %q is not a remediation status", domain.ErrInvalidInput, filter.Status)
	}
	rems, err := s.remRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	today := s.today()
	return lo.Map(rems, func(r *domain.Remediation, _ int) domain.RemediationView {
		return domain.NewRemediationView(*r, today)
	}), nil
}

func (s *RemediationService) UpdateRemediation(ctx context.Context, id string, req UpdateRemediationRequest) (*domain.RemediationView, error) {
	rem, err := s.remRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyFields(rem, CreateRemediationRequest(req))
	if err := s.check(ctx, rem); err != nil {
		return nil, err
	}
	rem.UpdatedAt = s.now()
	if err := s.remRepo.Update(ctx, rem); err != nil {
		return nil, err
	}
	view := domain.NewRemediationView(*rem, s.today())
	return &view, nil
}

func (s *RemediationService) DeleteRemediation(ctx context.Context, id string) error {
	if _, err := s.remRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.remRepo.Delete(ctx, id)
}

// applyFields copies the request; a completed remediation without an actual
// completion date is stamped with today.
func (s *RemediationService) applyFields(rem *domain.Remediation, req CreateRemediationRequest) {
	rem.ServerID = req.ServerID
	rem.TechnologyID = req.TechnologyID
	rem.Status = req.Status
	rem.AssignedTo = req.AssignedTo
	rem.RemediationType = req.RemediationType
	rem.StartDate = req.StartDate
	rem.TargetCompletionDate = req.TargetCompletionDate
	rem.ActualCompletionDate = req.ActualCompletionDate
	rem.Comments = req.Comments
	if rem.Status == domain.RemediationStatusCompleted && rem.ActualCompletionDate == nil {
		today := s.today()
		rem.ActualCompletionDate = &today
	}
}

func (s *RemediationService) check(ctx context.Context, rem *domain.Remediation) error {
	if err := domain.ValidateRemediation(rem); err != nil {
		return err
	}
	if rem.ServerID != "" {
		if err := requireServers(ctx, s.serverRepo, []string{rem.ServerID}); err != nil {
			return err
		}
	}
	if rem.TechnologyID != "" {
		if err := requireTechnologies(ctx, s.techRepo, []string{rem.TechnologyID}); err != nil {
			return err
		}
	}
	return nil
}
