package repository

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

var _ port.ServerRepository = (*ServerRepo)(nil)

type ServerRepo struct {
	db *gorm.DB
}

func NewServerRepo(db *gorm.DB) *ServerRepo {
	return &ServerRepo{db: db}
}

func (r *ServerRepo) Save(ctx context.Context, server *domain.Server) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(serverToModel(server)).Error; err != nil {
			if isUniqueConstraintError(err) {
				return domain.ErrAlreadyExists
			}
			return err
		}
		return writeServerTechnologies(tx, server.ID, server.Technologies)
	})
}

func (r *ServerRepo) FindByID(ctx context.Context, id string) (*domain.Server, error) {
	var m ServerModel
	result := r.db.WithContext(ctx).First(&m, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrServerNotFound
		}
		return nil, unavailable("get server", result.Error)
	}
	refs, err := loadServerTechnologies(r.db.WithContext(ctx), []string{id})
	if err != nil {
		return nil, unavailable("get server technologies", err)
	}
	return modelToServer(&m, refs[id]), nil
}

func (r *ServerRepo) FindAll(ctx context.Context, filter port.ServerFilter) ([]*domain.Server, error) {
	db := r.db.WithContext(ctx)
	q := matchQuery(db, filter.Query, "name", "owner", "team")
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	var models []ServerModel
	if err := q.Order("created_at, id").Find(&models).Error; err != nil {
		return nil, unavailable("list servers", err)
	}
	refs, err := loadServerTechnologies(db, lo.Map(models, func(m ServerModel, _ int) string { return m.ID }))
	if err != nil {
		return nil, unavailable("list server technologies", err)
	}
	servers := make([]*domain.Server, 0, len(models))
	for i := range models {
		servers = append(servers, modelToServer(&models[i], refs[models[i].ID]))
	}
	return servers, nil
}

func (r *ServerRepo) Update(ctx context.Context, server *domain.Server) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(serverToModel(server)).Error; err != nil {
			return err
		}
		if err := tx.Where("server_id = ?", server.ID).Delete(&ServerTechnologyModel{}).Error; err != nil {
			return err
		}
		return writeServerTechnologies(tx, server.ID, server.Technologies)
	})
}

func writeServerTechnologies(tx *gorm.DB, serverID string, techIDs []string) error {
	if len(techIDs) == 0 {
		return nil
	}
	rows := lo.Map(techIDs, func(id string, i int) ServerTechnologyModel {
		return ServerTechnologyModel{ServerID: serverID, TechnologyID: id, Position: i}
	})
	return tx.Create(&rows).Error
}

func loadServerTechnologies(db *gorm.DB, serverIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(serverIDs))
	if len(serverIDs) == 0 {
		return out, nil
	}
	var rows []ServerTechnologyModel
	if err := db.Where("server_id IN ?", serverIDs).Order("server_id, position").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ServerID] = append(out[row.ServerID], row.TechnologyID)
	}
	return out, nil
}

func serverToModel(s *domain.Server) *ServerModel {
	return &ServerModel{
		ID:        s.ID,
		Name:      s.Name,
		Status:    string(s.Status),
		Owner:     s.Owner,
		Team:      s.Team,
		Comments:  s.Comments,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func modelToServer(m *ServerModel, techIDs []string) *domain.Server {
	if techIDs == nil {
		techIDs = []string{}
	}
	return &domain.Server{
		ID:           m.ID,
		Name:         m.Name,
		Status:       domain.ServerStatus(m.Status),
		Owner:        m.Owner,
		Team:         m.Team,
		Comments:     m.Comments,
		Technologies: techIDs,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
