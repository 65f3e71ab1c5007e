package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// labelRegex accepts 1-255 characters with no control characters.
var labelRegex = regexp.MustCompile(`^[^\x00-\x1f\x7f]{1,255}$`)

// ValidateLabel checks a required free-text field such as a name.
func ValidateLabel(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if !labelRegex.MatchString(value) {
		return fmt.Errorf("%w: %s %q contains invalid characters or is too long", ErrInvalidInput, field, value)
	}
	return nil
}

// NormalizeIDs trims ids, drops blanks and removes duplicates, keeping first-seen order.
func NormalizeIDs(ids []string) []string {
	out := lo.FilterMap(ids, func(id string, _ int) (string, bool) {
		id = strings.TrimSpace(id)
		return id, id != ""
	})
	return lo.Uniq(out)
}

func ValidateTechnology(t *Technology) error {
	if err := ValidateLabel("name", t.Name); err != nil {
		return err
	}
	if err := ValidateLabel("version", t.Version); err != nil {
		return err
	}
	if !t.SupportStatus.Valid() {
		return fmt.Errorf("%w: support_status %q must be one of EOL, SS, ES, ESU", ErrInvalidInput, t.SupportStatus)
	}
	if t.SupportEndDate.IsZero() {
		return fmt.Errorf("%w: support_end_date is required", ErrInvalidInput)
	}
	return nil
}

func ValidateServer(s *Server) error {
	if err := ValidateLabel("name", s.Name); err != nil {
		return err
	}
	if !s.Status.Valid() {
		return fmt.Errorf("%w: status %q is not a server status", ErrInvalidInput, s.Status)
	}
	s.Technologies = NormalizeIDs(s.Technologies)
	return nil
}

func ValidateApplication(a *Application) error {
	if err := ValidateLabel("name", a.Name); err != nil {
		return err
	}
	if !a.Criticality.Valid() {
		return fmt.Errorf("%w: criticality %q must be one of Low, Medium, High, Critical", ErrInvalidInput, a.Criticality)
	}
	a.Servers = NormalizeIDs(a.Servers)
	a.Technologies = NormalizeIDs(a.Technologies)
	return nil
}

func ValidateRemediation(r *Remediation) error {
	if !r.Status.Valid() {
		return fmt.Errorf("%w: status %q is not a remediation status", ErrInvalidInput, r.Status)
	}
	if !r.RemediationType.Valid() {
		return fmt.Errorf("%w: remediation_type %q must be one of Upgrade, Migration, Decommission, Other", ErrInvalidInput, r.RemediationType)
	}
	if err := ValidateLabel("assigned_to", r.AssignedTo); err != nil {
		return err
	}
	if r.TargetCompletionDate.IsZero() {
		return fmt.Errorf("%w: target_completion_date is required", ErrInvalidInput)
	}
	if r.StartDate != nil && r.TargetCompletionDate.Before(r.StartDate.Time) {
		return fmt.Errorf("%w: target_completion_date precedes start_date", ErrInvalidInput)
	}
	r.ServerID = strings.TrimSpace(r.ServerID)
	r.TechnologyID = strings.TrimSpace(r.TechnologyID)
	return nil
}
