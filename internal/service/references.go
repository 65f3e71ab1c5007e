package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

// requireTechnologies fails with ErrInvalidInput naming the first id that
// does not exist.
func requireTechnologies(ctx context.Context, repo port.TechnologyRepository, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	techs, err := repo.FindAll(ctx, port.TechnologyFilter{})
	if err != nil {
		return err
	}
	known := lo.SliceToMap(techs, func(t *domain.Technology) (string, bool) { return t.ID, true })
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("%w: technology %q does not exist", domain.ErrInvalidInput, id)
		}
	}
	return nil
}

func requireServers(ctx context.Context, repo port.ServerRepository, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	servers, err := repo.FindAll(ctx, port.ServerFilter{})
	if err != nil {
		return err
	}
	known := lo.SliceToMap(servers, func(s *domain.Server) (string, bool) { return s.ID, true })
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("%w: server %q does not exist", domain.ErrInvalidInput, id)
		}
	}
	return nil
}

func values[T any](ptrs []*T) []T {
	return lo.Map(ptrs, func(p *T, _ int) T { return *p })
}
