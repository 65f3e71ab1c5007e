package stats

import (
	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
)

// Drift is a technology whose recorded support status disagrees with its
// phase end dates. Expected is empty when the dates only rule out the
// recorded value.
type Drift struct {
	Technology domain.Technology    `json:"technology"`
	Recorded   domain.SupportStatus `json:"recorded"`
	Expected   domain.SupportStatus `json:"expected,omitempty"`
	Reason     string               `json:"reason"`
}

// DetectStatusDrift reports disagreements as of asOf. Recorded statuses are
// never changed.
func DetectStatusDrift(techs []domain.Technology, asOf domain.Date) []Drift {
	out := make([]Drift, 0)
	for _, t := range techs {
		expected, known := t.ExpectedStatus(asOf)
		switch {
		case known && expected != t.SupportStatus:
			out = append(out, Drift{
				Technology: t,
				Recorded:   t.SupportStatus,
				Expected:   expected,
				Reason:     "phase end dates place the technology in " + string(expected) + " on " + asOf.String(),
			})
		case !known && t.IsEOL() && !t.SupportEndDate.IsZero():
			out = append(out, Drift{
				Technology: t,
				Recorded:   t.SupportStatus,
				Reason:     "recorded EOL but support ends on " + t.SupportEndDate.String(),
			})
		}
	}
	return out
}
