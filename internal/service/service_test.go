package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chiwei-platform/lifecycle-tracker/internal/adapter/fixture"
	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
	"github.com/chiwei-platform/lifecycle-tracker/internal/stats"
)

// fixedNow is 2024-06-15 10:00 UTC.
var fixedNow = func() time.Time { return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC) }

func newFixtureStore(t *testing.T) *fixture.Store {
	t.Helper()
	d, err := fixture.Default()
	require.NoError(t, err)
	s, err := fixture.NewStore(d)
	require.NoError(t, err)
	return s
}

func emptyStore(t *testing.T) *fixture.Store {
	t.Helper()
	s, err := fixture.NewStore(nil)
	require.NoError(t, err)
	return s
}

// --- stubs ---

type stubTechRepo struct {
	techs []*domain.Technology
	err   error
	saved []*domain.Technology
}

func (s *stubTechRepo) Save(_ context.Context, t *domain.Technology) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, t)
	s.techs = append(s.techs, t)
	return nil
}
func (s *stubTechRepo) FindByID(_ context.Context, id string) (*domain.Technology, error) {
	for _, t := range s.techs {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrTechnologyNotFound
}
func (s *stubTechRepo) FindAll(_ context.Context, _ port.TechnologyFilter) ([]*domain.Technology, error) {
	return s.techs, s.err
}
func (s *stubTechRepo) Update(_ context.Context, _ *domain.Technology) error { return s.err }

type failingRemediationRepo struct{ err error }

func (f *failingRemediationRepo) Save(_ context.Context, _ *domain.Remediation) error   { return f.err }
func (f *failingRemediationRepo) Update(_ context.Context, _ *domain.Remediation) error { return f.err }
func (f *failingRemediationRepo) Delete(_ context.Context, _ string) error              { return f.err }
func (f *failingRemediationRepo) FindByID(_ context.Context, _ string) (*domain.Remediation, error) {
	return nil, f.err
}
func (f *failingRemediationRepo) FindAll(_ context.Context, _ port.RemediationFilter) ([]*domain.Remediation, error) {
	return nil, f.err
}

// storeWithRemediations swaps the remediation repository of a store.
type storeWithRemediations struct {
	port.Store
	remediations port.RemediationRepository
}

func (s storeWithRemediations) Remediations() port.RemediationRepository { return s.remediations }

type countingRecorder struct {
	calls int
	last  stats.Summary
}

func (c *countingRecorder) RecordSummary(s stats.Summary) {
	c.calls++
	c.last = s
}
