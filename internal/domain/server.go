package domain

import "time"

// ServerStatus is the lifecycle state of a server.
type ServerStatus string

const (
	ServerStatusActive          ServerStatus = "Active"
	ServerStatusUpgraded        ServerStatus = "Upgraded"
	ServerStatusMigratedToCloud ServerStatus = "Migrated to cloud"
	ServerStatusDecommissioned  ServerStatus = "Decommissioned"
)

var ServerStatuses = []ServerStatus{
	ServerStatusActive,
	ServerStatusUpgraded,
	ServerStatusMigratedToCloud,
	ServerStatusDecommissioned,
}

func (s ServerStatus) Valid() bool {
	switch s {
	case ServerStatusActive, ServerStatusUpgraded, ServerStatusMigratedToCloud, ServerStatusDecommissioned:
		return true
	}
	return false
}

// Server is a host running a set of technologies.
type Server struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Status       ServerStatus `json:"status"`
	Owner        string       `json:"owner"`
	Team         string       `json:"team"`
	Comments     string       `json:"comments"`
	Technologies []string     `json:"technologies"` // Technology IDs
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsLive reports whether the server still carries production risk.
// Only active servers do; upgraded, migrated and decommissioned ones do not.
func (s *Server) IsLive() bool {
	return s.Status == ServerStatusActive
}
