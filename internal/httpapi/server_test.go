package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashfall-games/simcore/internal/ecs"
	"github.com/ashfall-games/simcore/internal/eventbus"
	"github.com/ashfall-games/simcore/internal/job"
	"github.com/ashfall-games/simcore/internal/job/eventlog"
	"github.com/ashfall-games/simcore/internal/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthzReturnsAlive(t *testing.T) {
	srv := NewServer(Config{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alive", body["status"])
}

func TestBusesListsRegisteredBuses(t *testing.T) {
	registry := eventbus.NewRegistry()
	eventbus.GetOrCreateBus[map[string]interface{}](registry, "job_events")

	srv := NewServer(Config{Buses: registry})
	req := httptest.NewRequest(http.MethodGet, "/buses", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var buses []eventbus.BusInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buses))
	require.Len(t, buses, 1)
	assert.Equal(t, "job_events", buses[0].Name)
}

func TestBusesWithoutRegistryReturns500(t *testing.T) {
	srv := NewServer(Config{})
	req := httptest.NewRequest(http.MethodGet, "/buses", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestJobsReturnsOpenJobsSnapshot(t *testing.T) {
	board := job.NewBoard(1, 20)
	board.Add(&job.Job{ID: ecs.EntityID(1), JobType: "haul_wood", State: job.StatePending, Priority: 3}, 0)

	srv := NewServer(Config{Board: board})
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snap jobsSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.Total)
	require.Len(t, snap.OpenJobs, 1)
	assert.Equal(t, "haul_wood", snap.OpenJobs[0].JobType)
}

func TestPluginsReturnsLoadedAndFailures(t *testing.T) {
	host := plugin.NewHostWithOpener(noopOpener{}, 100, 10)
	srv := NewServer(Config{Plugins: host})

	req := httptest.NewRequest(http.MethodGet, "/plugins", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snap pluginsSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Empty(t, snap.Loaded)
	assert.Empty(t, snap.Failures)
}

func TestEventsReturnsLoggedRecords(t *testing.T) {
	log := eventlog.New(eventlog.DefaultConfig())
	log.Append("job_events", map[string]interface{}{"entity": float64(1)})

	srv := NewServer(Config{Events: log})
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var records []eventlog.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "job_events", records[0].EventName)
}

func TestEventsWithoutLogReturns500(t *testing.T) {
	srv := NewServer(Config{})
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestShutdownBeforeStartIsANoop(t *testing.T) {
	srv := NewServer(Config{})
	require.NoError(t, srv.Shutdown(context.Background()))
}

type noopOpener struct{}

func (noopOpener) Open(path string) (plugin.OpenedPlugin, error) {
	return nil, nil
}
