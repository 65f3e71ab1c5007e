package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

var _ port.TechnologyRepository = (*TechnologyRepo)(nil)

type TechnologyRepo struct {
	db *gorm.DB
}

func NewTechnologyRepo(db *gorm.DB) *TechnologyRepo {
	return &TechnologyRepo{db: db}
}

func (r *TechnologyRepo) Save(ctx context.Context, tech *domain.Technology) error {
	result := r.db.WithContext(ctx).Create(technologyToModel(tech))
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return domain.ErrAlreadyExists
		}
		return result.Error
	}
	return nil
}

func (r *TechnologyRepo) FindByID(ctx context.Context, id string) (*domain.Technology, error) {
	var m TechnologyModel
	result := r.db.WithContext(ctx).First(&m, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTechnologyNotFound
		}
		return nil, unavailable("get technology", result.Error)
	}
	return modelToTechnology(&m), nil
}

func (r *TechnologyRepo) FindAll(ctx context.Context, filter port.TechnologyFilter) ([]*domain.Technology, error) {
	q := matchQuery(r.db.WithContext(ctx), filter.Query, "name", "version", "category")
	if filter.Status != "" {
		q = q.Where("support_status = ?", string(filter.Status))
	}
	var models []TechnologyModel
	if err := q.Order("created_at, id").Find(&models).Error; err != nil {
		return nil, unavailable("list technologies", err)
	}
	techs := make([]*domain.Technology, 0, len(models))
	for i := range models {
		techs = append(techs, modelToTechnology(&models[i]))
	}
	return techs, nil
}

func (r *TechnologyRepo) Update(ctx context.Context, tech *domain.Technology) error {
	err := r.db.WithContext(ctx).Save(technologyToModel(tech)).Error
	if isUniqueConstraintError(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func technologyToModel(t *domain.Technology) *TechnologyModel {
	return &TechnologyModel{
		ID:                            t.ID,
		Name:                          t.Name,
		Version:                       t.Version,
		NameKey:                       strings.ToLower(t.Name),
		VersionKey:                    strings.ToLower(t.Version),
		Category:                      t.Category,
		SupportStatus:                 string(t.SupportStatus),
		SupportEndDate:                t.SupportEndDate.Time,
		StandardSupportEndDate:        t.StandardSupportEndDate.TimePtr(),
		ExtendedSupportEndDate:        t.ExtendedSupportEndDate.TimePtr(),
		ExtendedSecurityUpdateEndDate: t.ExtendedSecurityUpdateEndDate.TimePtr(),
		CreatedAt:                     t.CreatedAt,
		UpdatedAt:                     t.UpdatedAt,
	}
}

func modelToTechnology(m *TechnologyModel) *domain.Technology {
	return &domain.Technology{
		ID:                            m.ID,
		Name:                          m.Name,
		Version:                       m.Version,
		Category:                      m.Category,
		SupportStatus:                 domain.SupportStatus(m.SupportStatus),
		SupportEndDate:                dateOf(m.SupportEndDate),
		StandardSupportEndDate:        domain.DatePtr(m.StandardSupportEndDate),
		ExtendedSupportEndDate:        domain.DatePtr(m.ExtendedSupportEndDate),
		ExtendedSecurityUpdateEndDate: domain.DatePtr(m.ExtendedSecurityUpdateEndDate),
		CreatedAt:                     m.CreatedAt,
		UpdatedAt:                     m.UpdatedAt,
	}
}
