package domain

import "time"

// SupportStatus is the vendor support phase a technology is in.
type SupportStatus string

const (
	SupportStatusEOL SupportStatus = "EOL" // end of life
	SupportStatusSS  SupportStatus = "SS"  // standard support
	SupportStatusES  SupportStatus = "ES"  // extended support
	SupportStatusESU SupportStatus = "ESU" // extended security updates
)

// SupportStatuses lists every support status in display order.
var SupportStatuses = []SupportStatus{
	SupportStatusEOL,
	SupportStatusSS,
	SupportStatusES,
	SupportStatusESU,
}

func (s SupportStatus) Valid() bool {
	switch s {
	case SupportStatusEOL, SupportStatusSS, SupportStatusES, SupportStatusESU:
		return true
	}
	return false
}

// Technology is an installable product version with end-of-support dates.
// SupportStatus is recorded explicitly and is never derived from the dates.
type Technology struct {
	ID                            string        `json:"id"`
	Name                          string        `json:"name"`
	Version                       string        `json:"version"`
	Category                      string        `json:"category"`
	SupportStatus                 SupportStatus `json:"support_status"`
	SupportEndDate                Date          `json:"support_end_date"`
	StandardSupportEndDate        *Date         `json:"standard_support_end_date,omitempty"`
	ExtendedSupportEndDate        *Date         `json:"extended_support_end_date,omitempty"`
	ExtendedSecurityUpdateEndDate *Date         `json:"extended_security_update_end_date,omitempty"`
	CreatedAt                     time.Time     `json:"created_at"`
	UpdatedAt                     time.Time     `json:"updated_at"`
}

func (t *Technology) IsEOL() bool {
	return t.SupportStatus == SupportStatusEOL
}

// ExpectedStatus infers the phase the dates place the technology in on day asOf.
// known is false when the dates cannot tell: support has not ended but no
// phase end date covers asOf.
func (t *Technology) ExpectedStatus(asOf Date) (status SupportStatus, known bool) {
	phases := []struct {
		end    *Date
		status SupportStatus
	}{
		{t.StandardSupportEndDate, SupportStatusSS},
		{t.ExtendedSupportEndDate, SupportStatusES},
		{t.ExtendedSecurityUpdateEndDate, SupportStatusESU},
	}
	for _, p := range phases {
		if p.end != nil && !asOf.After(p.end.Time) {
			return p.status, true
		}
	}
	if t.SupportEndDate.IsZero() {
		return "", false
	}
	if asOf.After(t.SupportEndDate.Time) {
		return SupportStatusEOL, true
	}
	return "", false
}

// DaysUntilSupportEnd is negative once support has ended.
func (t *Technology) DaysUntilSupportEnd(today Date) int {
	return t.SupportEndDate.DaysSince(today)
}
