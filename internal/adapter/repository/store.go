package repository

import (
	"gorm.io/gorm"

	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

var _ port.Store = (*Store)(nil)

// Store is the relational data source.
type Store struct {
	technologies *TechnologyRepo
	servers      *ServerRepo
	applications *ApplicationRepo
	remediations *RemediationRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		technologies: NewTechnologyRepo(db),
		servers:      NewServerRepo(db),
		applications: NewApplicationRepo(db),
		remediations: NewRemediationRepo(db),
	}
}

func (s *Store) Technologies() port.TechnologyRepository  { return s.technologies }
func (s *Store) Servers() port.ServerRepository           { return s.servers }
func (s *Store) Applications() port.ApplicationRepository { return s.applications }
func (s *Store) Remediations() port.RemediationRepository { return s.remediations }
