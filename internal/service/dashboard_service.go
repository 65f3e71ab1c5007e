package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
	"github.com/chiwei-platform/lifecycle-tracker/internal/stats"
)

// SummaryRecorder receives every computed summary, e.g. to export gauges.
type SummaryRecorder interface {
	RecordSummary(stats.Summary)
}

type DashboardService struct {
	store    port.Store
	recorder SummaryRecorder
	now      func() time.Time
}

// NewDashboardService accepts a nil recorder.
func NewDashboardService(store port.Store, recorder SummaryRecorder) *DashboardService {
	return &DashboardService{store: store, recorder: recorder, now: time.Now}
}

// Summary fetches the four collections concurrently and aggregates them only
// once all fetches have succeeded. The first fetch error is returned as is
// and nothing is aggregated.
func (s *DashboardService) Summary(ctx context.Context) (stats.Summary, error) {
	in, err := s.snapshot(ctx)
	if err != nil {
		return stats.Summary{}, err
	}
	summary := stats.Compute(in)
	if s.recorder != nil {
		s.recorder.RecordSummary(summary)
	}
	return summary, nil
}

// StatusDrift lists technologies whose recorded status disagrees with their
// end dates as of today.
func (s *DashboardService) StatusDrift(ctx context.Context) ([]stats.Drift, error) {
	techs, err := s.store.Technologies().FindAll(ctx, port.TechnologyFilter{})
	if err != nil {
		return nil, err
	}
	return stats.DetectStatusDrift(values(techs), domain.DateOf(s.now())), nil
}

func (s *DashboardService) snapshot(ctx context.Context) (stats.Input, error) {
	var (
		techs   []*domain.Technology
		servers []*domain.Server
		apps    []*domain.Application
		rems    []*domain.Remediation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		techs, err = s.store.Technologies().FindAll(gctx, port.TechnologyFilter{})
		return err
	})
	g.Go(func() (err error) {
		servers, err = s.store.Servers().FindAll(gctx, port.ServerFilter{})
		return err
	})
	g.Go(func() (err error) {
		apps, err = s.store.Applications().FindAll(gctx, port.ApplicationFilter{})
		return err
	})
	g.Go(func() (err error) {
		rems, err = s.store.Remediations().FindAll(gctx, port.RemediationFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return stats.Input{}, err
	}
	return stats.Input{
		Technologies: values(techs),
		Servers:      values(servers),
		Applications: values(apps),
		Remediations: values(rems),
	}, nil
}
