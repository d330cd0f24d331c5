// Command engine-cli implements spec.md section 6.6: it loads the
// scripting bridge and runs a single script against a fresh world,
// exiting 0 on success and 1 on I/O or script error. Grounded on the
// teacher's cmd/appserver/main.go: flag-based configuration (not
// spf13/cobra, even though cobra appears in other pack repos), a
// component-schema directory and a config file as optional inputs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ashfall-games/simcore/internal/config"
	"github.com/ashfall-games/simcore/internal/ecs"
	"github.com/ashfall-games/simcore/internal/job"
	"github.com/ashfall-games/simcore/internal/logging"
	"github.com/ashfall-games/simcore/internal/script"
	"github.com/ashfall-games/simcore/internal/worldgen"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("engine-cli", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML configuration file (defaults applied when empty)")
	schemasDir := fs.String("schemas", "", "directory of component schema JSON files (spec section 6.2)")
	mode := fs.String("mode", string(config.ModeColony), "gameplay mode the fresh world runs under")
	entryPoint := fs.String("entrypoint", "main", "script function to call with the decoded input")
	input := fs.String("input", "{}", "JSON-decodable input passed to the entry point")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: engine-cli [flags] <script>")
		return 1
	}
	scriptPath := fs.Arg(0)

	logger := logging.NewFromEnv("engine-cli")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Errorf("load config: %v", err)
			return 1
		}
		cfg = loaded
	}

	scriptBody, err := os.ReadFile(scriptPath)
	if err != nil {
		logger.Errorf("read script %s: %v", scriptPath, err)
		return 1
	}

	registry := ecs.NewComponentRegistry()
	if *schemasDir != "" {
		decls, err := ecs.LoadComponentSchemasFromDir(*schemasDir)
		if err != nil {
			logger.Errorf("load component schemas: %v", err)
			return 1
		}
		for _, decl := range decls {
			if err := registry.RegisterExternalSchema(decl); err != nil {
				logger.Errorf("register component %s: %v", decl.Name, err)
				return 1
			}
		}
	}

	world := ecs.NewWorld(registry, config.Mode(*mode))
	board := job.NewBoard(cfg.Jobs.AgingRate, cfg.Jobs.PriorityCap)
	wgRegistry := worldgen.NewRegistry()
	worldgen.RegisterBuiltins(wgRegistry)

	var inputValue interface{}
	if err := decodeJSON(*input, &inputValue); err != nil {
		logger.Errorf("decode input: %v", err)
		return 1
	}

	bridge := script.NewBridge(world, board, wgRegistry, func() uint64 { return 0 })
	result, err := bridge.Run(string(scriptBody), *entryPoint, inputValue)
	if err != nil {
		logger.Errorf("run script: %v", err)
		return 1
	}

	for _, line := range result.Logs {
		fmt.Println(line)
	}
	if err := printJSON(result.Output); err != nil {
		logger.Errorf("encode result: %v", err)
		return 1
	}
	return 0
}
