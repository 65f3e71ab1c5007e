package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
)

func date(y int, m time.Month, d int) *domain.Date {
	v := domain.NewDate(y, m, d)
	return &v
}

func TestDetectStatusDrift(t *testing.T) {
	asOf := domain.NewDate(2024, time.June, 1)
	techs := []domain.Technology{
		{
			ID:                     "stale-ss",
			SupportStatus:          domain.SupportStatusSS,
			SupportEndDate:         domain.NewDate(2026, 1, 1),
			StandardSupportEndDate: date(2023, 1, 1),
			ExtendedSupportEndDate: date(2026, 1, 1),
		},
		{
			ID:                     "in-sync",
			SupportStatus:          domain.SupportStatusES,
			SupportEndDate:         domain.NewDate(2026, 1, 1),
			StandardSupportEndDate: date(2023, 1, 1),
			ExtendedSupportEndDate: date(2026, 1, 1),
		},
		{
			ID:             "ended",
			SupportStatus:  domain.SupportStatusSS,
			SupportEndDate: domain.NewDate(2024, 1, 1),
		},
		{
			ID:             "early-eol",
			SupportStatus:  domain.SupportStatusEOL,
			SupportEndDate: domain.NewDate(2025, 1, 1),
		},
		{
			ID:             "no-phase-dates",
			SupportStatus:  domain.SupportStatusSS,
			SupportEndDate: domain.NewDate(2025, 1, 1),
		},
	}

	got := DetectStatusDrift(techs, asOf)
	require.Len(t, got, 3)

	assert.Equal(t, "stale-ss", got[0].Technology.ID)
	assert.Equal(t, domain.SupportStatusSS, got[0].Recorded)
	assert.Equal(t, domain.SupportStatusES, got[0].Expected)

	assert.Equal(t, "ended", got[1].Technology.ID)
	assert.Equal(t, domain.SupportStatusEOL, got[1].Expected)

	assert.Equal(t, "early-eol", got[2].Technology.ID)
	assert.Empty(t, got[2].Expected)

	assert.Equal(t, domain.SupportStatusSS, techs[0].SupportStatus)
}

func TestDetectStatusDrift_EmptyInput(t *testing.T) {
	got := DetectStatusDrift(nil, domain.NewDate(2024, 1, 1))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
