package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ashfall-games/simcore/internal/config"
	"github.com/ashfall-games/simcore/internal/ecs"
	"github.com/ashfall-games/simcore/internal/worldgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSymbolTable map[string]Symbol

type fakePlugin struct {
	symbols fakeSymbolTable
}

func (f fakePlugin) Lookup(name string) (Symbol, error) {
	sym, ok := f.symbols[name]
	if !ok {
		return nil, errors.New("symbol not found")
	}
	return sym, nil
}

type fakeOpener struct {
	plugins map[string]fakePlugin
	openErr map[string]error
}

func (f fakeOpener) Open(path string) (OpenedPlugin, error) {
	if err, ok := f.openErr[path]; ok {
		return nil, err
	}
	p, ok := f.plugins[path]
	if !ok {
		return nil, errors.New("no such plugin image")
	}
	return p, nil
}

func newTestWorld(t *testing.T) *ecs.World {
	t.Helper()
	return ecs.NewWorld(ecs.NewComponentRegistry(), config.ModeColony)
}

func TestLoadRunsInitAndRecordsSuccess(t *testing.T) {
	var initCalled bool
	opener := fakeOpener{plugins: map[string]fakePlugin{
		"good.so": {symbols: fakeSymbolTable{
			"PluginInit": func(api EngineAPI) error {
				initCalled = true
				api.SpawnEntity()
				return nil
			},
		}},
	}}

	host := NewHostWithOpener(opener, 100, 10)
	world := newTestWorld(t)
	err := host.Load(context.Background(), "good.so", NewEngineAPI(world), worldgen.NewRegistry())
	require.NoError(t, err)
	assert.True(t, initCalled)

	loaded := host.Loaded()
	require.Len(t, loaded, 1)
	assert.Equal(t, "good.so", loaded[0].Path)
	assert.False(t, loaded[0].HasWorldgen)
	assert.Empty(t, host.Failures())
}

func TestLoadRunsRegisterWorldgenWhenPresent(t *testing.T) {
	opener := fakeOpener{plugins: map[string]fakePlugin{
		"withgen.so": {symbols: fakeSymbolTable{
			"PluginInit": func(api EngineAPI) error { return nil },
			"RegisterWorldgen": func(r *worldgen.Registry) error {
				r.Register("plugin_gen", func(_ json.RawMessage) (json.RawMessage, error) { return nil, nil })
				return nil
			},
		}},
	}}

	host := NewHostWithOpener(opener, 100, 10)
	world := newTestWorld(t)
	registry := worldgen.NewRegistry()
	require.NoError(t, host.Load(context.Background(), "withgen.so", NewEngineAPI(world), registry))

	assert.Contains(t, registry.ListNames(), "plugin_gen")
	loaded := host.Loaded()
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].HasWorldgen)
}

func TestLoadFailureIsNonTransactional(t *testing.T) {
	opener := fakeOpener{
		plugins: map[string]fakePlugin{
			"good.so": {symbols: fakeSymbolTable{"PluginInit": func(api EngineAPI) error { return nil }}},
		},
		openErr: map[string]error{"bad.so": errors.New("no such file")},
	}

	host := NewHostWithOpener(opener, 100, 10)
	world := newTestWorld(t)
	registry := worldgen.NewRegistry()

	require.NoError(t, host.Load(context.Background(), "good.so", NewEngineAPI(world), registry))
	err := host.Load(context.Background(), "bad.so", NewEngineAPI(world), registry)
	require.Error(t, err)

	assert.Len(t, host.Loaded(), 1, "the earlier successful load must survive a later failure")
	assert.Len(t, host.Failures(), 1)
}

func TestLoadMissingPluginInitSymbolFails(t *testing.T) {
	opener := fakeOpener{plugins: map[string]fakePlugin{"noinit.so": {symbols: fakeSymbolTable{}}}}
	host := NewHostWithOpener(opener, 100, 10)
	world := newTestWorld(t)

	err := host.Load(context.Background(), "noinit.so", NewEngineAPI(world), worldgen.NewRegistry())
	require.Error(t, err)
	assert.Len(t, host.Failures(), 1)
}

func TestLoadWrongSignatureSymbolFails(t *testing.T) {
	opener := fakeOpener{plugins: map[string]fakePlugin{
		"wrongsig.so": {symbols: fakeSymbolTable{"PluginInit": func() {}}},
	}}
	host := NewHostWithOpener(opener, 100, 10)
	world := newTestWorld(t)

	err := host.Load(context.Background(), "wrongsig.so", NewEngineAPI(world), worldgen.NewRegistry())
	require.Error(t, err)
}

func TestLoadInitErrorIsRecordedAsFailure(t *testing.T) {
	opener := fakeOpener{plugins: map[string]fakePlugin{
		"failinit.so": {symbols: fakeSymbolTable{
			"PluginInit": func(api EngineAPI) error { return errors.New("boom") },
		}},
	}}
	host := NewHostWithOpener(opener, 100, 10)
	world := newTestWorld(t)

	err := host.Load(context.Background(), "failinit.so", NewEngineAPI(world), worldgen.NewRegistry())
	require.Error(t, err)
	assert.Len(t, host.Failures(), 1)
	assert.Empty(t, host.Loaded())
}

func TestHealthReportsLoadedAndFailureCounts(t *testing.T) {
	opener := fakeOpener{
		plugins: map[string]fakePlugin{
			"good.so": {symbols: fakeSymbolTable{"PluginInit": func(api EngineAPI) error { return nil }}},
		},
		openErr: map[string]error{"bad.so": errors.New("no such file")},
	}
	host := NewHostWithOpener(opener, 100, 10)
	world := newTestWorld(t)
	registry := worldgen.NewRegistry()
	require.NoError(t, host.Load(context.Background(), "good.so", NewEngineAPI(world), registry))
	_ = host.Load(context.Background(), "bad.so", NewEngineAPI(world), registry)

	snap, err := host.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.LoadedCount)
	assert.Equal(t, 1, snap.FailureCount)
}
