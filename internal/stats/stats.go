// Package stats derives dashboard figures from the tracked collections.
// Everything here is pure: no I/O, no clock, no shared state.
package stats

import (
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
)

// Input is a consistent snapshot of all four collections. Relations are
// carried as id sets and resolved against these slices only.
type Input struct {
	Technologies []domain.Technology
	Servers      []domain.Server
	Applications []domain.Application
	Remediations []domain.Remediation
}

// Exposure is an Active server together with the EOL technologies it runs.
type Exposure struct {
	Server          domain.Server       `json:"server"`
	EOLTechnologies []domain.Technology `json:"eol_technologies"`
}

type Totals struct {
	Technologies   int `json:"technologies"`
	Servers        int `json:"servers"`
	Applications   int `json:"applications"`
	Remediations   int `json:"remediations"`
	ExposedServers int `json:"exposed_servers"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type Summary struct {
	TechnologyStatus     map[domain.SupportStatus]int     `json:"technology_status"`
	ServerStatus         map[domain.ServerStatus]int      `json:"server_status"`
	RemediationStatus    map[domain.RemediationStatus]int `json:"remediation_status"`
	EOLExposure          []Exposure                       `json:"eol_exposure"`
	OrphanedApplications []domain.Application             `json:"orphaned_applications"`
	Totals               Totals                           `json:"totals"`
	SupportPercentages   map[domain.SupportStatus]int     `json:"support_percentages"`
	Categories           []CategoryCount                  `json:"categories"`
}

// Compute builds the summary for a snapshot. It never fails: ids that do not
// resolve are skipped and values outside an enum are left out of every bucket.
func Compute(in Input) Summary {
	techStatus := TechnologyStatusCounts(in.Technologies)
	exposure := EOLExposure(in.Technologies, in.Servers)
	return Summary{
		TechnologyStatus:     techStatus,
		ServerStatus:         ServerStatusCounts(in.Servers),
		RemediationStatus:    RemediationStatusCounts(in.Remediations),
		EOLExposure:          exposure,
		OrphanedApplications: OrphanedApplications(in.Applications, in.Servers, in.Technologies),
		Totals: Totals{
			Technologies:   len(in.Technologies),
			Servers:        len(in.Servers),
			Applications:   len(in.Applications),
			Remediations:   len(in.Remediations),
			ExposedServers: len(exposure),
		},
		SupportPercentages: SupportPercentages(techStatus),
		Categories:         CategoryCounts(in.Technologies),
	}
}

func TechnologyStatusCounts(techs []domain.Technology) map[domain.SupportStatus]int {
	counts := make(map[domain.SupportStatus]int, len(domain.SupportStatuses))
	for _, s := range domain.SupportStatuses {
		counts[s] = 0
	}
	for _, t := range techs {
		if t.SupportStatus.Valid() {
			counts[t.SupportStatus]++
		}
	}
	return counts
}

func ServerStatusCounts(servers []domain.Server) map[domain.ServerStatus]int {
	counts := make(map[domain.ServerStatus]int, len(domain.ServerStatuses))
	for _, s := range domain.ServerStatuses {
		counts[s] = 0
	}
	for _, s := range servers {
		if s.Status.Valid() {
			counts[s.Status]++
		}
	}
	return counts
}

func RemediationStatusCounts(rems []domain.Remediation) map[domain.RemediationStatus]int {
	counts := make(map[domain.RemediationStatus]int, len(domain.RemediationStatuses))
	for _, s := range domain.RemediationStatuses {
		counts[s] = 0
	}
	for _, r := range rems {
		if r.Status.Valid() {
			counts[r.Status]++
		}
	}
	return counts
}

// EOLExposure lists Active servers that reference at least one EOL technology.
// Servers in any other status are never exposed, whatever they run.
func EOLExposure(techs []domain.Technology, servers []domain.Server) []Exposure {
	byID := lo.KeyBy(techs, func(t domain.Technology) string { return t.ID })
	out := make([]Exposure, 0)
	for _, s := range servers {
		if !s.IsLive() {
			continue
		}
		eol := lo.Filter(Resolve(s.Technologies, byID), func(t domain.Technology, _ int) bool {
			return t.IsEOL()
		})
		if len(eol) > 0 {
			out = append(out, Exposure{Server: s, EOLTechnologies: eol})
		}
	}
	return out
}

// OrphanedApplications returns applications with no resolvable server and no
// resolvable technology. Having either one is enough to not be orphaned.
func OrphanedApplications(apps []domain.Application, servers []domain.Server, techs []domain.Technology) []domain.Application {
	serverIDs := lo.SliceToMap(servers, func(s domain.Server) (string, struct{}) { return s.ID, struct{}{} })
	techIDs := lo.SliceToMap(techs, func(t domain.Technology) (string, struct{}) { return t.ID, struct{}{} })
	out := make([]domain.Application, 0)
	for _, a := range apps {
		hasServer := lo.ContainsBy(a.Servers, func(id string) bool { _, ok := serverIDs[id]; return ok })
		hasTech := lo.ContainsBy(a.Technologies, func(id string) bool { _, ok := techIDs[id]; return ok })
		if !hasServer && !hasTech {
			out = append(out, a)
		}
	}
	return out
}

// Resolve maps ids to the matching technologies in reference order, skipping
// unknown ids and repeats.
func Resolve(ids []string, byID map[string]domain.Technology) []domain.Technology {
	return lo.FilterMap(lo.Uniq(ids), func(id string, _ int) (domain.Technology, bool) {
		t, ok := byID[id]
		return t, ok
	})
}

// SupportPercentages rounds each status share of the counted technologies to
// a whole percent. All shares are 0 when nothing is counted.
func SupportPercentages(counts map[domain.SupportStatus]int) map[domain.SupportStatus]int {
	total := lo.Sum(lo.Values(counts))
	out := make(map[domain.SupportStatus]int, len(domain.SupportStatuses))
	for _, s := range domain.SupportStatuses {
		if total == 0 {
			out[s] = 0
			continue
		}
		out[s] = int(math.Round(float64(counts[s]) / float64(total) * 100))
	}
	return out
}

// CategoryCounts groups technologies by category, sorted by category name.
func CategoryCounts(techs []domain.Technology) []CategoryCount {
	groups := lo.GroupBy(techs, func(t domain.Technology) string { return t.Category })
	names := lo.Keys(groups)
	slices.Sort(names)
	return lo.Map(names, func(name string, _ int) CategoryCount {
		return CategoryCount{Category: name, Count: len(groups[name])}
	})
}
