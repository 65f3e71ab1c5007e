package repository

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

var _ port.ApplicationRepository = (*ApplicationRepo)(nil)

type ApplicationRepo struct {
	db *gorm.DB
}

func NewApplicationRepo(db *gorm.DB) *ApplicationRepo {
	return &ApplicationRepo{db: db}
}

func (r *ApplicationRepo) Save(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(applicationToModel(app)).Error; err != nil {
			if isUniqueConstraintError(err) {
				return domain.ErrAlreadyExists
			}
			return err
		}
		return writeApplicationRelations(tx, app)
	})
}

func (r *ApplicationRepo) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	var m ApplicationModel
	result := r.db.WithContext(ctx).First(&m, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, unavailable("get application", result.Error)
	}
	servers, techs, err := loadApplicationRelations(r.db.WithContext(ctx), []string{id})
	if err != nil {
		return nil, unavailable("get application relations", err)
	}
	return modelToApplication(&m, servers[id], techs[id]), nil
}

func (r *ApplicationRepo) FindAll(ctx context.Context, filter port.ApplicationFilter) ([]*domain.Application, error) {
	db := r.db.WithContext(ctx)
	var models []ApplicationModel
	q := matchQuery(db, filter.Query, "name", "owner", "team", "description")
	if err := q.Order("created_at, id").Find(&models).Error; err != nil {
		return nil, unavailable("list applications", err)
	}
	servers, techs, err := loadApplicationRelations(db, lo.Map(models, func(m ApplicationModel, _ int) string { return m.ID }))
	if err != nil {
		return nil, unavailable("list application relations", err)
	}
	apps := make([]*domain.Application, 0, len(models))
	for i := range models {
		id := models[i].ID
		apps = append(apps, modelToApplication(&models[i], servers[id], techs[id]))
	}
	return apps, nil
}

func (r *ApplicationRepo) Update(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(applicationToModel(app)).Error; err != nil {
			return err
		}
		if err := tx.Where("application_id = ?", app.ID).Delete(&ApplicationServerModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("application_id = ?", app.ID).Delete(&ApplicationTechnologyModel{}).Error; err != nil {
			return err
		}
		return writeApplicationRelations(tx, app)
	})
}

func writeApplicationRelations(tx *gorm.DB, app *domain.Application) error {
	if len(app.Servers) > 0 {
		rows := lo.Map(app.Servers, func(id string, i int) ApplicationServerModel {
			return ApplicationServerModel{ApplicationID: app.ID, ServerID: id, Position: i}
		})
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	if len(app.Technologies) > 0 {
		rows := lo.Map(app.Technologies, func(id string, i int) ApplicationTechnologyModel {
			return ApplicationTechnologyModel{ApplicationID: app.ID, TechnologyID: id, Position: i}
		})
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

func loadApplicationRelations(db *gorm.DB, appIDs []string) (servers, techs map[string][]string, err error) {
	servers = make(map[string][]string, len(appIDs))
	techs = make(map[string][]string, len(appIDs))
	if len(appIDs) == 0 {
		return servers, techs, nil
	}
	var serverRows []ApplicationServerModel
	if err := db.Where("application_id IN ?", appIDs).Order("application_id, position").Find(&serverRows).Error; err != nil {
		return nil, nil, err
	}
	for _, row := range serverRows {
		servers[row.ApplicationID] = append(servers[row.ApplicationID], row.ServerID)
	}
	var techRows []ApplicationTechnologyModel
	if err := db.Where("application_id IN ?", appIDs).Order("application_id, position").Find(&techRows).Error; err != nil {
		return nil, nil, err
	}
	for _, row := range techRows {
		techs[row.ApplicationID] = append(techs[row.ApplicationID], row.TechnologyID)
	}
	return servers, techs, nil
}

func applicationToModel(a *domain.Application) *ApplicationModel {
	return &ApplicationModel{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Owner:       a.Owner,
		Team:        a.Team,
		Criticality: string(a.Criticality),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func modelToApplication(m *ApplicationModel, serverIDs, techIDs []string) *domain.Application {
	if serverIDs == nil {
		serverIDs = []string{}
	}
	if techIDs == nil {
		techIDs = []string{}
	}
	return &domain.Application{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Owner:        m.Owner,
		Team:         m.Team,
		Criticality:  domain.Criticality(m.Criticality),
		Servers:      serverIDs,
		Technologies: techIDs,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
