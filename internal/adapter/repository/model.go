package repository

import "time"

// TechnologyModel is the persistence model of domain.Technology.
// NameKey and VersionKey hold the lowercased name and version so a release is
// unique regardless of letter case.
type TechnologyModel struct {
	ID                            string `gorm:"primaryKey"`
	Name                          string `gorm:"index"`
	Version                       string
	NameKey                       string `gorm:"uniqueIndex:idx_technology_release"`
	VersionKey                    string `gorm:"uniqueIndex:idx_technology_release"`
	Category                      string `gorm:"index"`
	SupportStatus                 string `gorm:"index"`
	SupportEndDate                time.Time
	StandardSupportEndDate        *time.Time
	ExtendedSupportEndDate        *time.Time
	ExtendedSecurityUpdateEndDate *time.Time
	CreatedAt                     time.Time
	UpdatedAt                     time.Time
}

func (TechnologyModel) TableName() string { return "technologies" }

type ServerModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"index"`
	Status    string `gorm:"index"`
	Owner     string
	Team      string
	Comments  string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ServerModel) TableName() string { return "servers" }

type ApplicationModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"index"`
	Description string `gorm:"type:text"`
	Owner       string
	Team        string
	Criticality string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ApplicationModel) TableName() string { return "applications" }

type RemediationModel struct {
	ID                   string `gorm:"primaryKey"`
	ServerID             string `gorm:"index"`
	TechnologyID         string `gorm:"index"`
	Status               string `gorm:"index"`
	AssignedTo           string
	RemediationType      string
	StartDate            *time.Time
	TargetCompletionDate time.Time
	ActualCompletionDate *time.Time
	Comments             string `gorm:"type:text"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (RemediationModel) TableName() string { return "remediations" }

// Join rows keep the position of each reference so relations read back in
// the order they were written.

type ServerTechnologyModel struct {
	ServerID     string `gorm:"primaryKey"`
	TechnologyID string `gorm:"primaryKey;index"`
	Position     int
}

func (ServerTechnologyModel) TableName() string { return "server_technologies" }

type ApplicationServerModel struct {
	ApplicationID string `gorm:"primaryKey"`
	ServerID      string `gorm:"primaryKey;index"`
	Position      int
}

func (ApplicationServerModel) TableName() string { return "application_servers" }

type ApplicationTechnologyModel struct {
	ApplicationID string `gorm:"primaryKey"`
	TechnologyID  string `gorm:"primaryKey;index"`
	Position      int
}

func (ApplicationTechnologyModel) TableName() string { return "application_technologies" }
