package fixture

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
)

//go:embed default.yaml
var defaultFixtures []byte

// Data is a validated inventory snapshot.
type Data struct {
	Technologies []domain.Technology
	Servers      []domain.Server
	Applications []domain.Application
	Remediations []domain.Remediation
}

type technologyRecord struct {
	ID                            string `yaml:"id"`
	Name                          string `yaml:"name"`
	Version                       string `yaml:"version"`
	Category                      string `yaml:"category"`
	SupportStatus                 string `yaml:"support_status"`
	SupportEndDate                string `yaml:"support_end_date"`
	StandardSupportEndDate        string `yaml:"standard_support_end_date"`
	ExtendedSupportEndDate        string `yaml:"extended_support_end_date"`
	ExtendedSecurityUpdateEndDate string `yaml:"extended_security_update_end_date"`
}

type serverRecord struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Status       string   `yaml:"status"`
	Owner        string   `yaml:"owner"`
	Team         string   `yaml:"team"`
	Comments     string   `yaml:"comments"`
	Technologies []string `yaml:"technologies"`
}

type applicationRecord struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Owner        string   `yaml:"owner"`
	Team         string   `yaml:"team"`
	Criticality  string   `yaml:"criticality"`
	Servers      []string `yaml:"servers"`
	Technologies []string `yaml:"technologies"`
}

type remediationRecord struct {
	ID                   string `yaml:"id"`
	ServerID             string `yaml:"server_id"`
	TechnologyID         string `yaml:"technology_id"`
	Status               string `yaml:"status"`
	AssignedTo           string `yaml:"assigned_to"`
	RemediationType      string `yaml:"remediation_type"`
	StartDate            string `yaml:"start_date"`
	TargetCompletionDate string `yaml:"target_completion_date"`
	ActualCompletionDate string `yaml:"actual_completion_date"`
	Comments             string `yaml:"comments"`
}

type fixtureFile struct {
	Technologies []technologyRecord  `yaml:"technologies"`
	Servers      []serverRecord      `yaml:"servers"`
	Applications []applicationRecord `yaml:"applications"`
	Remediations []remediationRecord `yaml:"remediations"`
}

// Default returns the embedded sample inventory.
func Default() (*Data, error) {
	return Parse(defaultFixtures)
}

// LoadFromFile reads a fixture file, or the embedded sample when path is empty.
func LoadFromFile(path string) (*Data, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates fixtures. Every record must pass the same
// validation as an API write, and ids must be unique per collection.
// References to unknown ids are kept; readers skip them.
func Parse(b []byte) (*Data, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	d := &Data{
		Technologies: make([]domain.Technology, 0, len(f.Technologies)),
		Servers:      make([]domain.Server, 0, len(f.Servers)),
		Applications: make([]domain.Application, 0, len(f.Applications)),
		Remediations: make([]domain.Remediation, 0, len(f.Remediations)),
	}

	seen := map[string]bool{}
	for _, rec := range f.Technologies {
		t, err := rec.toDomain()
		if err == nil {
			err = domain.ValidateTechnology(&t)
		}
		if err == nil {
			err = checkID(seen, "t:", rec.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("fixture technology %q: %w", rec.ID, err)
		}
		d.Technologies = append(d.Technologies, t)
	}
	for _, rec := range f.Servers {
		s := domain.Server{
			ID:           rec.ID,
			Name:         rec.Name,
			Status:       domain.ServerStatus(rec.Status),
			Owner:        rec.Owner,
			Team:         rec.Team,
			Comments:     rec.Comments,
			Technologies: rec.Technologies,
		}
		err := domain.ValidateServer(&s)
		if err == nil {
			err = checkID(seen, "s:", rec.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("fixture server %q: %w", rec.ID, err)
		}
		d.Servers = append(d.Servers, s)
	}
	for _, rec := range f.Applications {
		a := domain.Application{
			ID:           rec.ID,
			Name:         rec.Name,
			Description:  rec.Description,
			Owner:        rec.Owner,
			Team:         rec.Team,
			Criticality:  domain.Criticality(rec.Criticality),
			Servers:      rec.Servers,
			Technologies: rec.Technologies,
		}
		err := domain.ValidateApplication(&a)
		if err == nil {
			err = checkID(seen, "a:", rec.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("fixture application %q: %w", rec.ID, err)
		}
		d.Applications = append(d.Applications, a)
	}
	for _, rec := range f.Remediations {
		r, err := rec.toDomain()
		if err == nil {
			err = domain.ValidateRemediation(&r)
		}
		if err == nil {
			err = checkID(seen, "r:", rec.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("fixture remediation %q: %w", rec.ID, err)
		}
		d.Remediations = append(d.Remediations, r)
	}
	return d, nil
}

// Stamp sets missing creation and update times to now.
func (d *Data) Stamp(now time.Time) {
	for i := range d.Technologies {
		stampZero(&d.Technologies[i].CreatedAt, &d.Technologies[i].UpdatedAt, now)
	}
	for i := range d.Servers {
		stampZero(&d.Servers[i].CreatedAt, &d.Servers[i].UpdatedAt, now)
	}
	for i := range d.Applications {
		stampZero(&d.Applications[i].CreatedAt, &d.Applications[i].UpdatedAt, now)
	}
	for i := range d.Remediations {
		stampZero(&d.Remediations[i].CreatedAt, &d.Remediations[i].UpdatedAt, now)
	}
}

func checkID(seen map[string]bool, kind, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	if seen[kind+id] {
		return fmt.Errorf("%w: duplicate id", domain.ErrAlreadyExists)
	}
	seen[kind+id] = true
	return nil
}

func (rec technologyRecord) toDomain() (domain.Technology, error) {
	t := domain.Technology{
		ID:            rec.ID,
		Name:          rec.Name,
		Version:       rec.Version,
		Category:      rec.Category,
		SupportStatus: domain.SupportStatus(rec.SupportStatus),
	}
	var err error
	if rec.SupportEndDate != "" {
		if t.SupportEndDate, err = domain.ParseDate(rec.SupportEndDate); err != nil {
			return t, err
		}
	}
	if t.StandardSupportEndDate, err = domain.ParseOptionalDate(rec.StandardSupportEndDate); err != nil {
		return t, err
	}
	if t.ExtendedSupportEndDate, err = domain.ParseOptionalDate(rec.ExtendedSupportEndDate); err != nil {
		return t, err
	}
	if t.ExtendedSecurityUpdateEndDate, err = domain.ParseOptionalDate(rec.ExtendedSecurityUpdateEndDate); err != nil {
		return t, err
	}
	return t, nil
}

func (rec remediationRecord) toDomain() (domain.Remediation, error) {
	r := domain.Remediation{
		ID:              rec.ID,
		ServerID:        rec.ServerID,
		TechnologyID:    rec.TechnologyID,
		Status:          domain.RemediationStatus(rec.Status),
		AssignedTo:      rec.AssignedTo,
		RemediationType: domain.RemediationType(rec.RemediationType),
		Comments:        rec.Comments,
	}
	var err error
	if rec.TargetCompletionDate != "" {
		if r.TargetCompletionDate, err = domain.ParseDate(rec.TargetCompletionDate); err != nil {
			return r, err
		}
	}
	if r.StartDate, err = domain.ParseOptionalDate(rec.StartDate); err != nil {
		return r, err
	}
	if r.ActualCompletionDate, err = domain.ParseOptionalDate(rec.ActualCompletionDate); err != nil {
		return r, err
	}
	return r, nil
}
