package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

var _ port.RemediationRepository = (*RemediationRepo)(nil)

type RemediationRepo struct {
	db *gorm.DB
}

func NewRemediationRepo(db *gorm.DB) *RemediationRepo {
	return &RemediationRepo{db: db}
}

func (r *RemediationRepo) Save(ctx context.Context, rem *domain.Remediation) error {
	result := r.db.WithContext(ctx).Create(remediationToModel(rem))
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return domain.ErrAlreadyExists
		}
		return result.Error
	}
	return nil
}

func (r *RemediationRepo) FindByID(ctx context.Context, id string) (*domain.Remediation, error) {
	var m RemediationModel
	result := r.db.WithContext(ctx).First(&m, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRemediationNotFound
		}
		return nil, unavailable("get remediation", result.Error)
	}
	return modelToRemediation(&m), nil
}

func (r *RemediationRepo) FindAll(ctx context.Context, filter port.RemediationFilter) ([]*domain.Remediation, error) {
	q := r.db.WithContext(ctx)
	if filter.ServerID != "" {
		q = q.Where("server_id = ?", filter.ServerID)
	}
	if filter.TechnologyID != "" {
		q = q.Where("technology_id = ?", filter.TechnologyID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	var models []RemediationModel
	if err := q.Order("target_completion_date, id").Find(&models).Error; err != nil {
		return nil, unavailable("list remediations", err)
	}
	rems := make([]*domain.Remediation, 0, len(models))
	for i := range models {
		rems = append(rems, modelToRemediation(&models[i]))
	}
	return rems, nil
}

func (r *RemediationRepo) Update(ctx context.Context, rem *domain.Remediation) error {
	return r.db.WithContext(ctx).Save(remediationToModel(rem)).Error
}

func (r *RemediationRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&RemediationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrRemediationNotFound
	}
	return nil
}

func remediationToModel(r *domain.Remediation) *RemediationModel {
	return &RemediationModel{
		ID:                   r.ID,
		ServerID:             r.ServerID,
		TechnologyID:         r.TechnologyID,
		Status:               string(r.Status),
		AssignedTo:           r.AssignedTo,
		RemediationType:      string(r.RemediationType),
		StartDate:            r.StartDate.TimePtr(),
		TargetCompletionDate: r.TargetCompletionDate.Time,
		ActualCompletionDate: r.ActualCompletionDate.TimePtr(),
		Comments:             r.Comments,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func modelToRemediation(m *RemediationModel) *domain.Remediation {
	return &domain.Remediation{
		ID:                   m.ID,
		ServerID:             m.ServerID,
		TechnologyID:         m.TechnologyID,
		Status:               domain.RemediationStatus(m.Status),
		AssignedTo:           m.AssignedTo,
		RemediationType:      domain.RemediationType(m.RemediationType),
		StartDate:            domain.DatePtr(m.StartDate),
		TargetCompletionDate: dateOf(m.TargetCompletionDate),
		ActualCompletionDate: domain.DatePtr(m.ActualCompletionDate),
		Comments:             m.Comments,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
