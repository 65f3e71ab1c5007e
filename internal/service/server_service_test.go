package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

func TestCreateServer(t *testing.T) {
	store := newFixtureStore(t)
	svc := NewServerService(store.Servers(), store.Technologies())

	srv, err := svc.CreateServer(context.Background(), CreateServerRequest{
		Name:         "NEWSRV01",
		Status:       domain.ServerStatusActive,
		Technologies: []string{"t3", "t3", "t7"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"t3", "t7"}, srv.Technologies)

	got, err := svc.GetServer(context.Background(), srv.ID)
	require.NoError(t, err)
	assert.Equal(t, "NEWSRV01", got.Name)
}

func TestCreateServer_UnknownTechnology(t *testing.T) {
	store := newFixtureStore(t)
	svc := NewServerService(store.Servers(), store.Technologies())

	_, err := svc.CreateServer(context.Background(), CreateServerRequest{
		Name:         "NEWSRV01",
		Status:       domain.ServerStatusActive,
		Technologies: []string{"t1", "t404"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateServer(t *testing.T) {
	store := newFixtureStore(t)
	svc := NewServerService(store.Servers(), store.Technologies())

	srv, err := svc.UpdateServer(context.Background(), "s1", UpdateServerRequest{
		Name:         "PRDSRV01",
		Status:       domain.ServerStatusDecommissioned,
		Technologies: []string{"t1"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ServerStatusDecommissioned, srv.Status)

	_, err = svc.UpdateServer(context.Background(), "s404", UpdateServerRequest{Name: "x", Status: domain.ServerStatusActive})
	assert.ErrorIs(t, err, domain.ErrServerNotFound)

	_, err = svc.UpdateServer(context.Background(), "s1", UpdateServerRequest{Name: "x", Status: "Sleeping"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestServerTechnologies_SkipsDanglingIDs(t *testing.T) {
	store := newFixtureStore(t)
	require.NoError(t, store.Servers().Save(context.Background(), &domain.Server{
		ID:           "s99",
		Name:         "ORPHAN",
		Status:       domain.ServerStatusActive,
		Technologies: []string{"t404", "t11", "t4"},
	}))
	svc := NewServerService(store.Servers(), store.Technologies())

	techs, err := svc.ServerTechnologies(context.Background(), "s99")
	require.NoError(t, err)
	ids := make([]string, 0, len(techs))
	for _, tc := range techs {
		ids = append(ids, tc.ID)
	}
	assert.Equal(t, []string{"t11", "t4"}, ids)

	_, err = svc.ServerTechnologies(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListServers_InvalidStatus(t *testing.T) {
	store := newFixtureStore(t)
	svc := NewServerService(store.Servers(), store.Technologies())
	_, err := svc.ListServers(context.Background(), port.ServerFilter{Status: "Retired"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	active, err := svc.ListServers(context.Background(), port.ServerFilter{Status: domain.ServerStatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 7)
}
