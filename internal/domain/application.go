package domain

import "time"

type Criticality string

const (
	CriticalityLow      Criticality = "Low"
	CriticalityMedium   Criticality = "Medium"
	CriticalityHigh     Criticality = "High"
	CriticalityCritical Criticality = "Critical"
)

func (c Criticality) Valid() bool {
	switch c {
	case CriticalityLow, CriticalityMedium, CriticalityHigh, CriticalityCritical:
		return true
	}
	return false
}

// Application relates independently to servers and technologies; an
// application may list technologies none of its servers run.
type Application struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Owner        string      `json:"owner"`
	Team         string      `json:"team"`
	Criticality  Criticality `json:"criticality"`
	Servers      []string    `json:"servers"`      // Server IDs
	Technologies []string    `json:"technologies"` // Technology IDs
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ApplicationDetail is an application with its relations resolved.
type ApplicationDetail struct {
	Application
	ServerList     []Server     `json:"server_list"`
	TechnologyList []Technology `json:"technology_list"`
}
