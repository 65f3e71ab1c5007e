package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/stats"
)

func TestSummary_DefaultInventory(t *testing.T) {
	rec := &countingRecorder{}
	svc := NewDashboardService(newFixtureStore(t), rec)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[domain.SupportStatus]int{
		domain.SupportStatusEOL: 6,
		domain.SupportStatusSS:  6,
		domain.SupportStatusES:  4,
		domain.SupportStatusESU: 1,
	}, summary.TechnologyStatus)
	assert.Equal(t, map[domain.ServerStatus]int{
		domain.ServerStatusActive:          7,
		domain.ServerStatusUpgraded:        1,
		domain.ServerStatusMigratedToCloud: 1,
		domain.ServerStatusDecommissioned:  1,
	}, summary.ServerStatus)
	assert.Equal(t, map[domain.RemediationStatus]int{
		domain.RemediationStatusNotStarted: 2,
		domain.RemediationStatusInProgress: 2,
		domain.RemediationStatusCompleted:  3,
	}, summary.RemediationStatus)

	exposed := make([]string, 0, len(summary.EOLExposure))
	for _, e := range summary.EOLExposure {
		exposed = append(exposed, e.Server.ID)
	}
	assert.Equal(t, []string{"s1", "s3", "s6"}, exposed)

	require.Len(t, summary.OrphanedApplications, 1)
	assert.Equal(t, "a8", summary.OrphanedApplications[0].ID)
	assert.Equal(t, stats.Totals{
		Technologies:   17,
		Servers:        10,
		Applications:   8,
		Remediations:   7,
		ExposedServers: 3,
	}, summary.Totals)

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, summary.Totals, rec.last.Totals)
}

func TestSummary_EmptyInventory(t *testing.T) {
	svc := NewDashboardService(emptyStore(t), nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	for _, s := range domain.SupportStatuses {
		assert.Zero(t, summary.TechnologyStatus[s])
	}
	assert.Empty(t, summary.EOLExposure)
	assert.Empty(t, summary.OrphanedApplications)
}

func TestSummary_FetchErrorSkipsAggregation(t *testing.T) {
	rec := &countingRecorder{}
	store := storeWithRemediations{
		Store:        newFixtureStore(t),
		remediations: &failingRemediationRepo{err: domain.ErrUnavailable},
	}
	svc := NewDashboardService(store, rec)

	_, err := svc.Summary(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Zero(t, rec.calls)
}

func TestStatusDrift(t *testing.T) {
	svc := NewDashboardService(newFixtureStore(t), nil)
	svc.now = fixedNow

	drift, err := svc.StatusDrift(context.Background())
	require.NoError(t, err)

	byID := map[string]stats.Drift{}
	for _, d := range drift {
		byID[d.Technology.ID] = d
	}
	// Tomcat 8.5 and .NET Framework 4.6 are correctly EOL by mid 2024.
	assert.NotContains(t, byID, "t11")
	assert.NotContains(t, byID, "t15")
	// RHEL 7 extended support runs to 2024-06-30.
	assert.NotContains(t, byID, "t4")
	// Windows Server 2019 left standard support in January 2024.
	require.Contains(t, byID, "t3")
	assert.Equal(t, domain.SupportStatusES, byID["t3"].Expected)
}
