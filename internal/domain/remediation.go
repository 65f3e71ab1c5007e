package domain

import "time"

// RemediationStatus tracks progress of a remediation.
// Not started → In progress → Completed
type RemediationStatus string

const (
	RemediationStatusNotStarted RemediationStatus = "Not started"
	RemediationStatusInProgress RemediationStatus = "In progress"
	RemediationStatusCompleted  RemediationStatus = "Completed"
)

var RemediationStatuses = []RemediationStatus{
	RemediationStatusNotStarted,
	RemediationStatusInProgress,
	RemediationStatusCompleted,
}

func (s RemediationStatus) Valid() bool {
	switch s {
	case RemediationStatusNotStarted, RemediationStatusInProgress, RemediationStatusCompleted:
		return true
	}
	return false
}

type RemediationType string

const (
	RemediationTypeUpgrade      RemediationType = "Upgrade"
	RemediationTypeMigration    RemediationType = "Migration"
	RemediationTypeDecommission RemediationType = "Decommission"
	RemediationTypeOther        RemediationType = "Other"
)

func (t RemediationType) Valid() bool {
	switch t {
	case RemediationTypeUpgrade, RemediationTypeMigration, RemediationTypeDecommission, RemediationTypeOther:
		return true
	}
	return false
}

// Remediation is a planned or completed action that resolves a server's use
// of an at-risk technology. Both references are optional.
type Remediation struct {
	ID                   string            `json:"id"`
	ServerID             string            `json:"server_id,omitempty"`
	TechnologyID         string            `json:"technology_id,omitempty"`
	Status               RemediationStatus `json:"status"`
	AssignedTo           string            `json:"assigned_to"`
	RemediationType      RemediationType   `json:"remediation_type"`
	StartDate            *Date             `json:"start_date,omitempty"`
	TargetCompletionDate Date              `json:"target_completion_date"`
	ActualCompletionDate *Date             `json:"actual_completion_date,omitempty"`
	Comments             string            `json:"comments"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// DaysUntilTarget is negative once the target date has passed.
func (r *Remediation) DaysUntilTarget(today Date) int {
	return r.TargetCompletionDate.DaysSince(today)
}

func (r *Remediation) IsOverdue(today Date) bool {
	return r.Status != RemediationStatusCompleted && today.After(r.TargetCompletionDate.Time)
}

// RemediationView decorates a remediation with schedule information for listings.
type RemediationView struct {
	Remediation
	DaysUntilTarget int  `json:"days_until_target"`
	Overdue         bool `json:"overdue"`
}

func NewRemediationView(r Remediation, today Date) RemediationView {
	return RemediationView{
		Remediation:     r,
		DaysUntilTarget: r.DaysUntilTarget(today),
		Overdue:         r.IsOverdue(today),
	}
}
