// Command engine-debugd is the optional long-running process spec.md's
// CLI section leaves implicit alongside engine-cli: it runs internal/engine's
// full per-tick sequence on a timer, keeps a cron-driven job scheduler
// running alongside the board, and serves internal/httpapi's introspection
// endpoints, exercising the metrics/chi/gopsutil/cron wiring end to end.
// Grounded on the teacher's cmd/appserver/main.go: flag-based config, a
// signal.Notify shutdown loop, a bounded shutdown timeout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ashfall-games/simcore/internal/config"
	"github.com/ashfall-games/simcore/internal/ecs"
	"github.com/ashfall-games/simcore/internal/engine"
	"github.com/ashfall-games/simcore/internal/eventbus"
	"github.com/ashfall-games/simcore/internal/httpapi"
	"github.com/ashfall-games/simcore/internal/job"
	"github.com/ashfall-games/simcore/internal/job/eventlog"
	"github.com/ashfall-games/simcore/internal/job/schedule"
	"github.com/ashfall-games/simcore/internal/logging"
	"github.com/ashfall-games/simcore/internal/metrics"
	"github.com/ashfall-games/simcore/internal/plugin"
	"github.com/ashfall-games/simcore/internal/system"
	"github.com/ashfall-games/simcore/internal/worldgen"
)

func main() {
	addr := flag.String("addr", ":8080", "introspection HTTP listen address")
	configPath := flag.String("config", "", "path to a TOML configuration file (defaults applied when empty)")
	schemasDir := flag.String("schemas", "", "directory of component schema JSON files (spec section 6.2)")
	mode := flag.String("mode", string(config.ModeColony), "gameplay mode the world runs under")
	tickInterval := flag.Duration("tick-interval", time.Second, "wall-clock interval between simulation ticks")
	flag.Parse()

	logger := logging.NewFromEnv("engine-debugd")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	registry := ecs.NewComponentRegistry()
	if *schemasDir != "" {
		decls, err := ecs.LoadComponentSchemasFromDir(*schemasDir)
		if err != nil {
			logger.Fatalf("load component schemas: %v", err)
		}
		for _, decl := range decls {
			if err := registry.RegisterExternalSchema(decl); err != nil {
				logger.Fatalf("register component %s: %v", decl.Name, err)
			}
		}
	}

	world := ecs.NewWorld(registry, config.Mode(*mode))
	board := job.NewBoard(cfg.Jobs.AgingRate, cfg.Jobs.PriorityCap)
	systems := system.NewRegistry()
	metrics.Init(cfg.Title)
	pluginHost := plugin.NewHost(10, 5)
	wgRegistry := worldgen.NewRegistry()
	worldgen.RegisterBuiltins(wgRegistry)

	for _, path := range cfg.Plugins.Native {
		if err := pluginHost.Load(context.Background(), path, plugin.NewEngineAPI(world), wgRegistry); err != nil {
			logger.Errorf("load plugin %s: %v", path, err)
		}
	}

	eventLog := eventlog.New(eventlog.DefaultConfig())
	eventbus.GetOrCreateBus[map[string]interface{}](world.Buses, "job_events").Subscribe(func(payload map[string]interface{}) {
		eventLog.Append("job_events", payload)
	})

	server := httpapi.NewServer(httpapi.Config{
		Buses:   world.Buses,
		Board:   board,
		Plugins: pluginHost,
		Events:  eventLog,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &engine.Runner{
		World:    world,
		Board:    board,
		Handlers: job.NewHandlerRegistry(),
		Effects:  job.NewEffectRegistry(),
		Systems:  systems,
	}
	var currentTick atomic.Uint64
	scheduler := schedule.NewScheduler(board, currentTick.Load)
	scheduler.Start()
	defer scheduler.Stop()
	go runTickLoop(ctx, runner, &currentTick, *tickInterval)

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Start(ctx, *addr) }()
	logger.Infof("engine-debugd listening on %s", *addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-serveErr:
		if err != nil {
			logger.Errorf("http server error: %v", err)
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "engine-debugd stopped")
}

func runTickLoop(ctx context.Context, runner *engine.Runner, tick *atomic.Uint64, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runner.RunTick(tick.Load())
			tick.Add(1)
		}
	}
}
